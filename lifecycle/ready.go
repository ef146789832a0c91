// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package lifecycle

import (
	"sync"

	"go.uber.org/atomic"
)

type Ready interface {
	Ready() bool
}

// ChanReady implements the Ready interface with a channel that
// can be marked ready by the caller.
type ChanReady struct {
	readyOnce sync.Once
	ready     chan struct{}
}

func NewChanReady() *ChanReady {
	return &ChanReady{ready: make(chan struct{})}
}

func (c *ChanReady) Ready() bool {
	select {
	case <-c.ready:
		return true
	default:
		return false
	}
}

func (c *ChanReady) AwaitReady(done <-chan struct{}) bool {
	select {
	case <-c.ready:
		return true
	case <-done:
		return false
	}
}

func (c *ChanReady) MarkReady() {
	c.readyOnce.Do(func() { close(c.ready) })
}

// AtomicBoolReady can move back to not ready, for example while shutting
// down.
type AtomicBoolReady struct {
	b *atomic.Bool
}

func NewAtomicBoolReady(initialState bool) *AtomicBoolReady {
	return &AtomicBoolReady{b: atomic.NewBool(initialState)}
}

func (a *AtomicBoolReady) Ready() bool {
	return a.b.Load()
}

func (a *AtomicBoolReady) MarkReady() {
	a.b.Store(true)
}

func (a *AtomicBoolReady) MarkNotReady() {
	a.b.Store(false)
}

// All is ready when every one of its members is ready.
type All []Ready

func (a All) Ready() bool {
	for _, r := range a {
		if !r.Ready() {
			return false
		}
	}
	return true
}
