// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"

	"github.com/ava-labs/bridgequeue/consts"
	"github.com/ava-labs/bridgequeue/priority"
	"github.com/ava-labs/bridgequeue/state"
)

// The functions in this file implement the queue directly on a
// [state.Mutable]. They do not lock and they stage more than one write per
// mutation, so the caller must own [mu] exclusively and discard it if any
// call returns an error.

// Cursors delimits the live window [Tail, Head) of a queue.
type Cursors struct {
	// Head is the number of operations ever pushed.
	Head uint64 `json:"head"`
	// Tail is the number of operations ever popped.
	Tail uint64 `json:"tail"`
}

func (c Cursors) Size() uint64 {
	return c.Head - c.Tail
}

func (c Cursors) IsEmpty() bool {
	return c.Head == c.Tail
}

// GetCursors reads both cursors. A store that has never been written to is
// an empty queue.
func GetCursors(ctx context.Context, im state.Immutable, l Layout) (Cursors, error) {
	head, err := getCursor(ctx, im, l.HeadKey())
	if err != nil {
		return Cursors{}, err
	}
	tail, err := getCursor(ctx, im, l.TailKey())
	if err != nil {
		return Cursors{}, err
	}
	if tail > head {
		return Cursors{}, fmt.Errorf("%w: tail %d is ahead of head %d", ErrCorruptQueue, tail, head)
	}
	return Cursors{Head: head, Tail: tail}, nil
}

func getCursor(ctx context.Context, im state.Immutable, k []byte) (uint64, error) {
	v, err := im.GetValue(ctx, k)
	if errors.Is(err, database.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if len(v) != consts.Uint64Len {
		return 0, fmt.Errorf("%w: cursor has %d bytes", ErrCorruptQueue, len(v))
	}
	return database.ParseUInt64(v)
}

func setCursor(ctx context.Context, mu state.Mutable, k []byte, v uint64) error {
	return mu.Insert(ctx, k, database.PackUInt64(v))
}

// GetOperation reads the slot at [index] directly. Slots outside the live
// window return [database.ErrNotFound].
func GetOperation(
	ctx context.Context,
	im state.Immutable,
	l Layout,
	index uint64,
) (*priority.Operation, error) {
	v, err := im.GetValue(ctx, l.OperationKey(index))
	if err != nil {
		return nil, err
	}
	op, err := priority.Parse(v)
	if err != nil {
		return nil, fmt.Errorf("%w: slot %d: %w", ErrCorruptQueue, index, err)
	}
	return op, nil
}

// getLiveOperation reads a slot that must exist because it is inside the
// live window.
func getLiveOperation(
	ctx context.Context,
	im state.Immutable,
	l Layout,
	index uint64,
) (*priority.Operation, error) {
	op, err := GetOperation(ctx, im, l, index)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: live slot %d is missing", ErrCorruptQueue, index)
	}
	return op, err
}

// Front returns the oldest live operation without removing it.
func Front(ctx context.Context, im state.Immutable, l Layout) (*priority.Operation, error) {
	c, err := GetCursors(ctx, im, l)
	if err != nil {
		return nil, err
	}
	return front(ctx, im, l, c)
}

func front(ctx context.Context, im state.Immutable, l Layout, c Cursors) (*priority.Operation, error) {
	if c.IsEmpty() {
		return nil, ErrEmptyQueue
	}
	return getLiveOperation(ctx, im, l, c.Tail)
}

// PushBack stores [op] at the head of the queue and returns its index.
func PushBack(
	ctx context.Context,
	mu state.Mutable,
	l Layout,
	op *priority.Operation,
) (uint64, error) {
	c, err := GetCursors(ctx, mu, l)
	if err != nil {
		return 0, err
	}
	return c.Head, pushBack(ctx, mu, l, c, op)
}

func pushBack(
	ctx context.Context,
	mu state.Mutable,
	l Layout,
	c Cursors,
	op *priority.Operation,
) error {
	if err := op.Verify(); err != nil {
		return err
	}
	if c.Head == consts.MaxUint64 {
		return ErrQueueFull
	}
	// The record is written before the cursor so that a failure part way
	// never exposes a head pointing past a missing record.
	if err := mu.Insert(ctx, l.OperationKey(c.Head), op.Bytes()); err != nil {
		return err
	}
	return setCursor(ctx, mu, l.HeadKey(), c.Head+1)
}

// PopFront removes and returns the oldest live operation. Its slot is
// deleted, not overwritten.
func PopFront(ctx context.Context, mu state.Mutable, l Layout) (*priority.Operation, error) {
	c, err := GetCursors(ctx, mu, l)
	if err != nil {
		return nil, err
	}
	return popFront(ctx, mu, l, c)
}

func popFront(ctx context.Context, mu state.Mutable, l Layout, c Cursors) (*priority.Operation, error) {
	op, err := front(ctx, mu, l, c)
	if err != nil {
		return nil, err
	}
	if err := mu.Remove(ctx, l.OperationKey(c.Tail)); err != nil {
		return nil, err
	}
	if err := setCursor(ctx, mu, l.TailKey(), c.Tail+1); err != nil {
		return nil, err
	}
	return op, nil
}
