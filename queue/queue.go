// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package queue implements the persistent FIFO of bridge priority
// operations.
//
// Records live in a key-value store at monotonically increasing indexes.
// Pushing writes at index head and pops delete at index tail, so no record is
// ever moved and no index is ever reused.
package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/ava-labs/bridgequeue/event"
	"github.com/ava-labs/bridgequeue/priority"
	"github.com/ava-labs/bridgequeue/state"

	bqlogging "github.com/ava-labs/bridgequeue/internal/logging"
	bqtrace "github.com/ava-labs/bridgequeue/trace"
	oteltrace "go.opentelemetry.io/otel/trace"
)

type Option func(*Queue)

func WithLogger(log logging.Logger) Option {
	return func(q *Queue) {
		q.log = log
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(q *Queue) {
		q.tracer = tracer
	}
}

func WithLayout(layout Layout) Option {
	return func(q *Queue) {
		q.layout = layout
	}
}

// WithRegisterer registers the queue metrics on [r] instead of a private
// registry.
func WithRegisterer(r prometheus.Registerer) Option {
	return func(q *Queue) {
		q.registerer = r
	}
}

// WithSubscriptions adds subscriptions that are notified of every committed
// push and pop.
func WithSubscriptions(subs ...event.Subscription[Event]) Option {
	return func(q *Queue) {
		q.subs = append(q.subs, subs...)
	}
}

// Queue is a FIFO of priority operations persisted in a database.
//
// Mutations are serialized by a write lock and committed in a single batch
// together with the cursor they advance. Reads share a read lock, so they
// never observe a cursor without its record. The cursors are cached after
// they are loaded in New, which makes the cursor getters infallible.
//
// A database that holds no queue keys is an empty queue.
type Queue struct {
	db         database.Database
	layout     Layout
	log        logging.Logger
	tracer     trace.Tracer
	registerer prometheus.Registerer
	metrics    *metrics
	subs       []event.Subscription[Event]

	lock    sync.RWMutex
	cursors Cursors
}

// New opens the queue stored in [db]. The caller must not write the queue's
// keys through any other path while the queue is in use.
func New(ctx context.Context, db database.Database, opts ...Option) (*Queue, error) {
	q := &Queue{
		db:         db,
		layout:     NewDefaultLayout(),
		log:        &bqlogging.Noop{},
		registerer: prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(q)
	}
	if q.tracer == nil {
		tracer, err := bqtrace.New(&bqtrace.Config{})
		if err != nil {
			return nil, err
		}
		q.tracer = tracer
	}
	if HasConflictingPrefixes(q.layout, nil) {
		return nil, ErrConflictingLayout
	}

	metrics, err := newMetrics(q.registerer)
	if err != nil {
		return nil, err
	}
	q.metrics = metrics

	cursors, err := GetCursors(ctx, state.NewReader(db), q.layout)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to load cursors", err)
	}
	q.cursors = cursors
	q.metrics.setCursors(cursors)
	q.log.Info("loaded priority queue",
		zap.Uint64("head", cursors.Head),
		zap.Uint64("tail", cursors.Tail),
	)
	return q, nil
}

// FirstUnprocessed returns the index of the oldest live operation, which is
// also the number of operations ever popped.
func (q *Queue) FirstUnprocessed() uint64 {
	return q.Snapshot().Tail
}

// Total returns the number of operations ever pushed.
func (q *Queue) Total() uint64 {
	return q.Snapshot().Head
}

func (q *Queue) Size() uint64 {
	return q.Snapshot().Size()
}

func (q *Queue) IsEmpty() bool {
	return q.Snapshot().IsEmpty()
}

// Snapshot returns both cursors as of the same instant.
func (q *Queue) Snapshot() Cursors {
	q.lock.RLock()
	defer q.lock.RUnlock()

	return q.cursors
}

// Front returns the oldest live operation without removing it.
func (q *Queue) Front(ctx context.Context) (*priority.Operation, error) {
	_, op, err := q.FrontWithIndex(ctx)
	return op, err
}

// FrontWithIndex is Front that also returns the index of the operation.
func (q *Queue) FrontWithIndex(ctx context.Context) (uint64, *priority.Operation, error) {
	ctx, span := q.tracer.Start(ctx, "Queue.Front")
	defer span.End()

	q.lock.RLock()
	defer q.lock.RUnlock()

	op, err := front(ctx, state.NewReader(q.db), q.layout, q.cursors)
	if errors.Is(err, ErrEmptyQueue) {
		q.metrics.emptyErrors.Inc()
	}
	if err != nil {
		return 0, nil, err
	}
	return q.cursors.Tail, op, nil
}

// Operation reads the slot at [index] directly. Popped and not yet pushed
// indexes return [database.ErrNotFound].
func (q *Queue) Operation(ctx context.Context, index uint64) (*priority.Operation, error) {
	ctx, span := q.tracer.Start(ctx, "Queue.Operation", oteltrace.WithAttributes(
		attribute.Int64("index", int64(index)),
	))
	defer span.End()

	q.lock.RLock()
	defer q.lock.RUnlock()

	return GetOperation(ctx, state.NewReader(q.db), q.layout, index)
}

// PushBack appends [op] and returns the index it was stored at.
func (q *Queue) PushBack(ctx context.Context, op *priority.Operation) (uint64, error) {
	ctx, span := q.tracer.Start(ctx, "Queue.PushBack")
	defer span.End()

	q.lock.Lock()
	defer q.lock.Unlock()

	index := q.cursors.Head
	mu := state.NewSimpleMutable(q.db)
	if err := pushBack(ctx, mu, q.layout, q.cursors, op); err != nil {
		q.metrics.failures.Inc()
		return 0, err
	}
	// Subscribers get the record as stored, detached from the caller's.
	stored, err := priority.Parse(op.Bytes())
	if err != nil {
		return 0, err
	}
	if err := q.commit(ctx, mu); err != nil {
		return 0, fmt.Errorf("%w: unable to commit push of index %d", err, index)
	}
	q.cursors.Head++

	q.metrics.pushes.Inc()
	q.metrics.setCursors(q.cursors)
	q.log.Debug("pushed priority operation",
		zap.Uint64("index", index),
		zap.Stringer("hash", op.CanonicalTxHash),
		zap.Uint64("expirationBlock", op.ExpirationBlock),
	)
	q.notify(ctx, Event{
		Kind:      Pushed,
		Index:     index,
		Operation: stored,
		Cursors:   q.cursors,
	})
	return index, nil
}

// PopFront removes and returns the oldest live operation.
func (q *Queue) PopFront(ctx context.Context) (*priority.Operation, error) {
	_, op, err := q.PopFrontWithIndex(ctx)
	return op, err
}

// PopFrontWithIndex is PopFront that also returns the index the operation
// was stored at.
func (q *Queue) PopFrontWithIndex(ctx context.Context) (uint64, *priority.Operation, error) {
	ctx, span := q.tracer.Start(ctx, "Queue.PopFront")
	defer span.End()

	q.lock.Lock()
	defer q.lock.Unlock()

	index := q.cursors.Tail
	mu := state.NewSimpleMutable(q.db)
	op, err := popFront(ctx, mu, q.layout, q.cursors)
	if errors.Is(err, ErrEmptyQueue) {
		q.metrics.emptyErrors.Inc()
		return 0, nil, err
	}
	if err != nil {
		q.metrics.failures.Inc()
		q.log.Error("unable to pop priority operation",
			zap.Uint64("index", index),
			zap.Error(err),
		)
		return 0, nil, err
	}
	if err := q.commit(ctx, mu); err != nil {
		return 0, nil, fmt.Errorf("%w: unable to commit pop of index %d", err, index)
	}
	q.cursors.Tail++

	q.metrics.pops.Inc()
	q.metrics.setCursors(q.cursors)
	q.log.Debug("popped priority operation",
		zap.Uint64("index", index),
		zap.Stringer("hash", op.CanonicalTxHash),
	)
	q.notify(ctx, Event{
		Kind:      Popped,
		Index:     index,
		Operation: op,
		Cursors:   q.cursors,
	})
	return index, op, nil
}

// commit must be called with the write lock held.
func (q *Queue) commit(ctx context.Context, mu *state.SimpleMutable) error {
	start := time.Now()
	if err := mu.Commit(ctx); err != nil {
		mu.Abort()
		q.metrics.failures.Inc()
		return err
	}
	q.metrics.commitLatency.Observe(float64(time.Since(start)))
	return nil
}

// notify is called with the write lock held so subscriptions see events in
// commit order. Subscriptions must not call back into the queue.
func (q *Queue) notify(ctx context.Context, e Event) {
	if len(q.subs) == 0 {
		return
	}
	if err := event.NotifyAll(ctx, e, q.subs...); err != nil {
		q.log.Warn("subscription rejected queue event",
			zap.Stringer("kind", e.Kind),
			zap.Uint64("index", e.Index),
			zap.Error(err),
		)
	}
}
