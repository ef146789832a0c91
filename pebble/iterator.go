// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pebble

import (
	"bytes"

	"github.com/ava-labs/avalanchego/database"
	"github.com/cockroachdb/pebble"
)

var _ database.Iterator = (*iterator)(nil)

// iterator copies keys and values out of pebble so they stay valid after
// Next is called.
type iterator struct {
	db *Database
	it *pebble.Iterator

	started bool
	valid   bool
	err     error

	key   []byte
	value []byte
}

func (it *iterator) Next() bool {
	it.db.lock.RLock()
	closed := it.db.closed
	it.db.lock.RUnlock()
	if closed {
		it.valid = false
		it.err = database.ErrClosed
		return false
	}
	if it.err != nil {
		return false
	}

	if !it.started {
		it.valid = it.it.First()
		it.started = true
	} else {
		it.valid = it.it.Next()
	}
	if !it.valid {
		it.key, it.value = nil, nil
		it.err = it.it.Error()
		return false
	}
	it.key = bytes.Clone(it.it.Key())
	it.value = bytes.Clone(it.it.Value())
	return true
}

func (it *iterator) Error() error {
	return it.err
}

func (it *iterator) Key() []byte {
	if !it.valid {
		return nil
	}
	return it.key
}

func (it *iterator) Value() []byte {
	if !it.valid {
		return nil
	}
	return it.value
}

func (it *iterator) Release() {
	it.db.lock.RLock()
	defer it.db.lock.RUnlock()

	// pebble panics when closing iterators on a closed DB.
	if it.db.closed {
		return
	}
	_ = it.it.Close()
}
