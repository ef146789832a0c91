// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package queue

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/ava-labs/bridgequeue/consts"
	"github.com/ava-labs/bridgequeue/event"
	"github.com/ava-labs/bridgequeue/pebble"
	"github.com/ava-labs/bridgequeue/priority"
	"github.com/ava-labs/bridgequeue/state"
)

var errWriteFailed = errors.New("write failed")

func testOperation(b byte, expiration uint64, tip uint64) *priority.Operation {
	return &priority.Operation{
		CanonicalTxHash: common.BytesToHash(bytes.Repeat([]byte{b}, common.HashLength)),
		ExpirationBlock: expiration,
		Layer2Tip:       uint256.NewInt(tip),
	}
}

func newTestQueue(t *testing.T, db database.Database, opts ...Option) *Queue {
	q, err := New(context.Background(), db, opts...)
	require.NoError(t, err)
	return q
}

func requireInvariants(t *testing.T, q *Queue) {
	t.Helper()

	require := require.New(t)
	head, tail := q.Total(), q.FirstUnprocessed()
	require.LessOrEqual(tail, head)
	require.Equal(q.IsEmpty(), tail == head)
	require.Equal(head-tail, q.Size())
}

func TestEmptyQueue(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	q := newTestQueue(t, memdb.New())
	require.Zero(q.FirstUnprocessed())
	require.Zero(q.Total())
	require.Zero(q.Size())
	require.True(q.IsEmpty())

	_, err := q.Front(ctx)
	require.ErrorIs(err, ErrEmptyQueue)
	_, err = q.PopFront(ctx)
	require.ErrorIs(err, ErrEmptyQueue)

	// Failed calls do not move the cursors.
	require.Equal(Cursors{}, q.Snapshot())
	requireInvariants(t, q)
}

func TestPushPopScenario(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	db := memdb.New()
	q := newTestQueue(t, db)
	opA := testOperation(0xAA, 100, 5)
	opB := testOperation(0xBB, 200, 7)

	index, err := q.PushBack(ctx, opA)
	require.NoError(err)
	require.Zero(index)
	index, err = q.PushBack(ctx, opB)
	require.NoError(err)
	require.Equal(uint64(1), index)

	require.Equal(uint64(2), q.Total())
	require.Zero(q.FirstUnprocessed())
	require.Equal(uint64(2), q.Size())
	require.False(q.IsEmpty())

	front, err := q.Front(ctx)
	require.NoError(err)
	require.True(opA.Equal(front))
	require.Equal(uint64(2), q.Size())

	popped, err := q.PopFront(ctx)
	require.NoError(err)
	require.True(opA.Equal(popped))
	require.Equal(uint64(1), q.FirstUnprocessed())
	require.Equal(uint64(1), q.Size())

	// The popped slot is deleted from the store.
	_, err = db.Get(NewDefaultLayout().OperationKey(0))
	require.ErrorIs(err, database.ErrNotFound)
	_, err = q.Operation(ctx, 0)
	require.ErrorIs(err, database.ErrNotFound)

	popped, err = q.PopFront(ctx)
	require.NoError(err)
	require.True(opB.Equal(popped))
	require.Equal(uint64(2), q.FirstUnprocessed())
	require.Equal(uint64(2), q.Total())
	require.True(q.IsEmpty())

	_, err = q.PopFront(ctx)
	require.ErrorIs(err, ErrEmptyQueue)
	require.Equal(Cursors{Head: 2, Tail: 2}, q.Snapshot())
	requireInvariants(t, q)
}

func TestFIFOAndNoReuse(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	q := newTestQueue(t, memdb.New())
	var (
		pushed []*priority.Operation
		seen   = map[uint64]struct{}{}
	)
	// Interleave pushes and pops so indexes keep growing while the queue
	// repeatedly drains.
	for round := 0; round < 5; round++ {
		for i := 0; i < 4; i++ {
			op := testOperation(byte(round*4+i), uint64(round), uint64(i))
			index, err := q.PushBack(ctx, op)
			require.NoError(err)
			_, ok := seen[index]
			require.False(ok, "index %d reused", index)
			seen[index] = struct{}{}
			pushed = append(pushed, op)
			requireInvariants(t, q)
		}
		for i := 0; i < 3; i++ {
			op, err := q.PopFront(ctx)
			require.NoError(err)
			require.True(pushed[0].Equal(op))
			pushed = pushed[1:]
			requireInvariants(t, q)
		}
	}
	for len(pushed) > 0 {
		op, err := q.PopFront(ctx)
		require.NoError(err)
		require.True(pushed[0].Equal(op))
		pushed = pushed[1:]
	}
	require.Equal(uint64(20), q.Total())
	require.Equal(uint64(20), q.FirstUnprocessed())
	require.True(q.IsEmpty())
}

func TestReadsAreIdempotent(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	q := newTestQueue(t, memdb.New())
	op := testOperation(0x01, 1, 1)
	_, err := q.PushBack(ctx, op)
	require.NoError(err)

	before := q.Snapshot()
	for i := 0; i < 3; i++ {
		front, err := q.Front(ctx)
		require.NoError(err)
		require.True(op.Equal(front))
		require.Equal(uint64(1), q.Size())
		require.False(q.IsEmpty())
	}
	require.Equal(before, q.Snapshot())
}

func TestPushRejectsInvalidOperation(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	db := memdb.New()
	q := newTestQueue(t, db)
	op := testOperation(0x01, 1, 0)
	op.Layer2Tip = new(uint256.Int).Lsh(uint256.NewInt(1), 192)

	_, err := q.PushBack(ctx, op)
	require.ErrorIs(err, priority.ErrTipOverflow)
	require.Equal(Cursors{}, q.Snapshot())
	has, err := db.Has(NewDefaultLayout().OperationKey(0))
	require.NoError(err)
	require.False(has)

	// A nil tip is stored as zero.
	op.Layer2Tip = nil
	_, err = q.PushBack(ctx, op)
	require.NoError(err)
	front, err := q.Front(ctx)
	require.NoError(err)
	require.True(front.Layer2Tip.IsZero())
}

func TestReopen(t *testing.T) {
	tests := []struct {
		name string
		open func(t *testing.T, dir string) database.Database
	}{
		{
			name: "pebble",
			open: func(t *testing.T, dir string) database.Database {
				cfg := pebble.NewDefaultConfig()
				cfg.Sync = false
				db, err := pebble.New(dir, cfg, prometheus.NewRegistry())
				require.NoError(t, err)
				return db
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			ctx := context.Background()

			dir := t.TempDir()
			db := tt.open(t, dir)
			q := newTestQueue(t, db)
			for i := 0; i < 3; i++ {
				_, err := q.PushBack(ctx, testOperation(byte(i), uint64(i), uint64(i)))
				require.NoError(err)
			}
			_, err := q.PopFront(ctx)
			require.NoError(err)
			require.NoError(db.Close())

			db = tt.open(t, dir)
			q = newTestQueue(t, db)
			require.Equal(Cursors{Head: 3, Tail: 1}, q.Snapshot())
			front, err := q.Front(ctx)
			require.NoError(err)
			require.True(testOperation(1, 1, 1).Equal(front))
			require.NoError(db.Close())
		})
	}
}

func TestNamespacedQueuesShareDatabase(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	db := memdb.New()
	a := newTestQueue(t, db, WithLayout(NewNamespacedLayout([]byte("a"))))
	b := newTestQueue(t, db, WithLayout(NewNamespacedLayout([]byte("b"))))

	_, err := a.PushBack(ctx, testOperation(0xAA, 1, 1))
	require.NoError(err)
	require.Equal(uint64(1), a.Size())
	require.True(b.IsEmpty())
	_, err = b.Front(ctx)
	require.ErrorIs(err, ErrEmptyQueue)
}

func TestConflictingLayout(t *testing.T) {
	_, err := New(
		context.Background(),
		memdb.New(),
		WithLayout(NewLayout([]byte{0}, []byte{0, 1}, []byte{2})),
	)
	require.ErrorIs(t, err, ErrConflictingLayout)
}

func TestCorruptCursors(t *testing.T) {
	require := require.New(t)

	l := NewDefaultLayout()
	db := memdb.New()
	require.NoError(db.Put(l.HeadKey(), database.PackUInt64(1)))
	require.NoError(db.Put(l.TailKey(), database.PackUInt64(2)))
	_, err := New(context.Background(), db)
	require.ErrorIs(err, ErrCorruptQueue)

	require.NoError(db.Put(l.TailKey(), []byte{1}))
	_, err = New(context.Background(), db)
	require.ErrorIs(err, ErrCorruptQueue)
}

func TestMissingLiveSlot(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	db := memdb.New()
	q := newTestQueue(t, db)
	_, err := q.PushBack(ctx, testOperation(0x01, 1, 1))
	require.NoError(err)
	require.NoError(db.Delete(NewDefaultLayout().OperationKey(0)))

	_, err = q.Front(ctx)
	require.ErrorIs(err, ErrCorruptQueue)
	_, err = q.PopFront(ctx)
	require.ErrorIs(err, ErrCorruptQueue)
	require.Equal(Cursors{Head: 1}, q.Snapshot())
}

// failingDB fails every batch write.
type failingDB struct {
	database.Database
}

func (f *failingDB) NewBatch() database.Batch {
	return &failingBatch{Batch: f.Database.NewBatch()}
}

type failingBatch struct {
	database.Batch
}

func (*failingBatch) Write() error {
	return errWriteFailed
}

func TestFailedCommitLeavesQueueUnchanged(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	inner := memdb.New()
	q := newTestQueue(t, inner)
	_, err := q.PushBack(ctx, testOperation(0x01, 1, 1))
	require.NoError(err)

	// Reopen on a store whose batches never land.
	reg := prometheus.NewRegistry()
	q = newTestQueue(t, &failingDB{Database: inner}, WithRegisterer(reg))
	_, err = q.PushBack(ctx, testOperation(0x02, 2, 2))
	require.ErrorIs(err, errWriteFailed)
	_, err = q.PopFront(ctx)
	require.ErrorIs(err, errWriteFailed)

	require.Equal(Cursors{Head: 1}, q.Snapshot())
	has, err := inner.Has(NewDefaultLayout().OperationKey(1))
	require.NoError(err)
	require.False(has)
	has, err = inner.Has(NewDefaultLayout().TailKey())
	require.NoError(err)
	require.False(has)
	front, err := q.Front(ctx)
	require.NoError(err)
	require.True(testOperation(0x01, 1, 1).Equal(front))
	require.Equal(float64(2), testutil.ToFloat64(q.metrics.failures))
}

func TestConcurrentPushes(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	const (
		workers   = 8
		perWorker = 25
	)
	q := newTestQueue(t, memdb.New())

	var (
		lock    sync.Mutex
		indexes = map[uint64]struct{}{}
	)
	var eg errgroup.Group
	for w := 0; w < workers; w++ {
		w := w
		eg.Go(func() error {
			for i := 0; i < perWorker; i++ {
				index, err := q.PushBack(ctx, testOperation(byte(w), uint64(i), 0))
				if err != nil {
					return err
				}
				lock.Lock()
				indexes[index] = struct{}{}
				lock.Unlock()
			}
			return nil
		})
	}
	require.NoError(eg.Wait())

	require.Equal(uint64(workers*perWorker), q.Total())
	require.Len(indexes, workers*perWorker)
	for i := uint64(0); i < workers*perWorker; i++ {
		require.Contains(indexes, i)
	}

	// Each worker's operations come out in the order it pushed them.
	next := make([]uint64, workers)
	for !q.IsEmpty() {
		op, err := q.PopFront(ctx)
		require.NoError(err)
		w := op.CanonicalTxHash[0]
		require.Equal(next[w], op.ExpirationBlock)
		next[w]++
	}
}

func TestEvents(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	var events []Event
	sub := event.SubscriptionFunc[Event]{
		AcceptF: func(_ context.Context, e Event) error {
			events = append(events, e)
			return nil
		},
	}
	failing := event.SubscriptionFunc[Event]{
		AcceptF: func(context.Context, Event) error {
			return errWriteFailed
		},
	}
	q := newTestQueue(t, memdb.New(), WithSubscriptions(failing, sub))

	op := testOperation(0xAA, 100, 5)
	_, err := q.PushBack(ctx, op)
	require.NoError(err)
	_, err = q.PopFront(ctx)
	require.NoError(err)
	_, err = q.PopFront(ctx)
	require.ErrorIs(err, ErrEmptyQueue)

	require.Equal([]Event{
		{Kind: Pushed, Index: 0, Operation: op, Cursors: Cursors{Head: 1}},
		{Kind: Popped, Index: 0, Operation: op, Cursors: Cursors{Head: 1, Tail: 1}},
	}, events)
}

func TestPushedEventIsStoredRecord(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	var events []Event
	sub := event.SubscriptionFunc[Event]{
		AcceptF: func(_ context.Context, e Event) error {
			events = append(events, e)
			return nil
		},
	}
	q := newTestQueue(t, memdb.New(), WithSubscriptions(sub))

	op := testOperation(0xAA, 100, 0)
	op.Layer2Tip = nil
	_, err := q.PushBack(ctx, op)
	require.NoError(err)

	// Later changes by the caller must not reach subscribers.
	op.ExpirationBlock = 200
	op.CanonicalTxHash[0] = 0xBB

	require.Len(events, 1)
	pushed := events[0].Operation
	require.NotSame(op, pushed)
	require.NotNil(pushed.Layer2Tip)
	require.True(pushed.Layer2Tip.IsZero())
	require.Equal(uint64(100), pushed.ExpirationBlock)
	require.Equal(byte(0xAA), pushed.CanonicalTxHash[0])

	stored, err := q.Front(ctx)
	require.NoError(err)
	require.Equal(stored, pushed)
}

func TestPushBackIndexSpaceExhausted(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	l := NewDefaultLayout()
	db := memdb.New()
	require.NoError(db.Put(l.HeadKey(), database.PackUInt64(consts.MaxUint64)))
	require.NoError(db.Put(l.TailKey(), database.PackUInt64(consts.MaxUint64)))
	q := newTestQueue(t, db)
	require.True(q.IsEmpty())

	_, err := q.PushBack(ctx, testOperation(0xAA, 100, 5))
	require.ErrorIs(err, ErrQueueFull)

	require.Equal(Cursors{Head: consts.MaxUint64, Tail: consts.MaxUint64}, q.Snapshot())
	requireInvariants(t, q)

	// Nothing was written at the exhausted index.
	_, err = GetOperation(ctx, state.NewReader(db), l, consts.MaxUint64)
	require.ErrorIs(err, database.ErrNotFound)

	// A fresh load sees the same cursors.
	reopened := newTestQueue(t, db)
	require.Equal(q.Snapshot(), reopened.Snapshot())
}

func TestMetrics(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	reg := prometheus.NewRegistry()
	q := newTestQueue(t, memdb.New(), WithRegisterer(reg))
	for i := 0; i < 3; i++ {
		_, err := q.PushBack(ctx, testOperation(byte(i), 1, 1))
		require.NoError(err)
	}
	_, err := q.PopFront(ctx)
	require.NoError(err)
	_, err = q.Front(ctx)
	require.NoError(err)

	require.Equal(float64(3), testutil.ToFloat64(q.metrics.head))
	require.Equal(float64(1), testutil.ToFloat64(q.metrics.tail))
	require.Equal(float64(2), testutil.ToFloat64(q.metrics.size))
	require.Equal(float64(3), testutil.ToFloat64(q.metrics.pushes))
	require.Equal(float64(1), testutil.ToFloat64(q.metrics.pops))

	_, err = New(ctx, memdb.New(), WithRegisterer(reg))
	require.Error(err) //nolint:forbidigo
}
