// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package pebble adapts a pebble instance to avalanchego's
// [database.Database] so the queue can persist its records on disk.
package pebble

import (
	"bytes"
	"context"
	"errors"
	"runtime"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/utils/units"
	"github.com/cockroachdb/pebble"
	"github.com/prometheus/client_golang/prometheus"
)

var _ database.Database = (*Database)(nil)

type Config struct {
	CacheSize                   int  `json:"cacheSize" yaml:"cacheSize"`
	BytesPerSync                int  `json:"bytesPerSync" yaml:"bytesPerSync"`
	WALBytesPerSync             int  `json:"walBytesPerSync" yaml:"walBytesPerSync"`
	MemTableStopWritesThreshold int  `json:"memTableStopWritesThreshold" yaml:"memTableStopWritesThreshold"`
	MemTableSize                int  `json:"memTableSize" yaml:"memTableSize"`
	MaxOpenFiles                int  `json:"maxOpenFiles" yaml:"maxOpenFiles"`
	ConcurrentCompactions       int  `json:"concurrentCompactions" yaml:"concurrentCompactions"`
	Sync                        bool `json:"sync" yaml:"sync"`
}

// NewDefaultConfig favors durability: every write is synced because a lost
// cursor update would make the queue replay or skip an operation.
func NewDefaultConfig() Config {
	return Config{
		CacheSize:                   64 * units.MiB,
		BytesPerSync:                1 * units.MiB,
		WALBytesPerSync:             0,
		MemTableStopWritesThreshold: 8,
		MemTableSize:                16 * units.MiB,
		MaxOpenFiles:                1_024,
		ConcurrentCompactions:       runtime.NumCPU(),
		Sync:                        true,
	}
}

type Database struct {
	db       *pebble.DB
	metrics  *metrics
	writeOpt *pebble.WriteOptions

	lock    sync.RWMutex
	closed  bool
	closing chan struct{}
	done    sync.WaitGroup
}

// New opens (or creates) the pebble instance in [file] and registers its
// metrics on [reg].
func New(file string, cfg Config, reg prometheus.Registerer) (*Database, error) {
	m, err := newMetrics(reg)
	if err != nil {
		return nil, err
	}
	d := &Database{
		metrics:  m,
		writeOpt: &pebble.WriteOptions{Sync: cfg.Sync},
		closing:  make(chan struct{}),
	}
	opts := &pebble.Options{
		Cache:                       pebble.NewCache(int64(cfg.CacheSize)),
		BytesPerSync:                cfg.BytesPerSync,
		Comparer:                    pebble.DefaultComparer,
		WALBytesPerSync:             cfg.WALBytesPerSync,
		MemTableStopWritesThreshold: cfg.MemTableStopWritesThreshold,
		MemTableSize:                uint64(cfg.MemTableSize),
		MaxOpenFiles:                cfg.MaxOpenFiles,
		MaxConcurrentCompactions:    func() int { return cfg.ConcurrentCompactions },
		EventListener: &pebble.EventListener{
			CompactionBegin: d.onCompactionBegin,
			CompactionEnd:   d.onCompactionEnd,
			WriteStallBegin: d.onWriteStallBegin,
			WriteStallEnd:   d.onWriteStallEnd,
		},
	}
	defer opts.Cache.Unref()
	db, err := pebble.Open(file, opts)
	if err != nil {
		return nil, err
	}
	d.db = db

	d.done.Add(1)
	go func() {
		defer d.done.Done()
		d.collectMetrics()
	}()
	return d, nil
}

func (db *Database) Close() error {
	db.lock.Lock()
	defer db.lock.Unlock()

	if db.closed {
		return database.ErrClosed
	}
	db.closed = true
	close(db.closing)
	db.done.Wait()
	return updateError(db.db.Close())
}

func (db *Database) HealthCheck(context.Context) (interface{}, error) {
	db.lock.RLock()
	defer db.lock.RUnlock()

	if db.closed {
		return nil, database.ErrClosed
	}
	return nil, nil
}

func (db *Database) Has(key []byte) (bool, error) {
	db.lock.RLock()
	defer db.lock.RUnlock()

	if db.closed {
		return false, database.ErrClosed
	}
	_, closer, err := db.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, closer.Close()
}

func (db *Database) Get(key []byte) ([]byte, error) {
	db.lock.RLock()
	defer db.lock.RUnlock()

	if db.closed {
		return nil, database.ErrClosed
	}
	start := time.Now()
	data, closer, err := db.db.Get(key)
	db.metrics.getLatency.Observe(float64(time.Since(start)))
	if err != nil {
		return nil, updateError(err)
	}
	ret := bytes.Clone(data)
	return ret, closer.Close()
}

func (db *Database) Put(key []byte, value []byte) error {
	db.lock.RLock()
	defer db.lock.RUnlock()

	if db.closed {
		return database.ErrClosed
	}
	return db.db.Set(key, value, db.writeOpt)
}

func (db *Database) Delete(key []byte) error {
	db.lock.RLock()
	defer db.lock.RUnlock()

	if db.closed {
		return database.ErrClosed
	}
	return db.db.Delete(key, db.writeOpt)
}

func (db *Database) Compact(start []byte, limit []byte) error {
	db.lock.RLock()
	defer db.lock.RUnlock()

	if db.closed {
		return database.ErrClosed
	}
	if limit == nil {
		// Compact everything after [start].
		it, err := db.db.NewIter(&pebble.IterOptions{LowerBound: start})
		if err != nil {
			return err
		}
		if !it.Last() {
			return it.Close()
		}
		limit = append(bytes.Clone(it.Key()), 0)
		if err := it.Close(); err != nil {
			return err
		}
	}
	return db.db.Compact(start, limit, true)
}

func (db *Database) NewIterator() database.Iterator {
	return db.NewIteratorWithStartAndPrefix(nil, nil)
}

func (db *Database) NewIteratorWithStart(start []byte) database.Iterator {
	return db.NewIteratorWithStartAndPrefix(start, nil)
}

func (db *Database) NewIteratorWithPrefix(prefix []byte) database.Iterator {
	return db.NewIteratorWithStartAndPrefix(nil, prefix)
}

func (db *Database) NewIteratorWithStartAndPrefix(start, prefix []byte) database.Iterator {
	db.lock.RLock()
	defer db.lock.RUnlock()

	if db.closed {
		return &database.IteratorError{Err: database.ErrClosed}
	}
	it, err := db.db.NewIter(keyRange(start, prefix))
	if err != nil {
		return &database.IteratorError{Err: err}
	}
	return &iterator{db: db, it: it}
}

func updateError(err error) error {
	switch {
	case errors.Is(err, pebble.ErrNotFound):
		return database.ErrNotFound
	case errors.Is(err, pebble.ErrClosed):
		return database.ErrClosed
	default:
		return err
	}
}

// keyRange bounds an iteration to keys >= [start] that carry [prefix].
func keyRange(start, prefix []byte) *pebble.IterOptions {
	opts := &pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixUpperBound(prefix),
	}
	if bytes.Compare(start, prefix) == 1 {
		opts.LowerBound = start
	}
	return opts
}

// prefixUpperBound returns the smallest key that is larger than every key
// with [prefix], or nil if no such key exists.
func prefixUpperBound(prefix []byte) []byte {
	upper := bytes.Clone(prefix)
	for i := len(upper) - 1; i >= 0; i-- {
		if upper[i] == 0xFF {
			continue
		}
		upper[i]++
		return upper[:i+1]
	}
	return nil
}
