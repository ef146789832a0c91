// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package event

import (
	"context"
	"errors"
	"sync"
)

var (
	_ Subscription[struct{}] = (*SubscriptionFunc[struct{}])(nil)
	_ Subscription[struct{}] = (*Feed[struct{}])(nil)
)

// Subscription defines how to consume events
type Subscription[T any] interface {
	// Accept returns fatal errors
	Accept(ctx context.Context, t T) error
	// Close returns fatal errors
	Close() error
}

type SubscriptionFunc[T any] struct {
	AcceptF func(ctx context.Context, t T) error
}

func (s SubscriptionFunc[T]) Accept(ctx context.Context, t T) error {
	return s.AcceptF(ctx, t)
}

func (SubscriptionFunc[_]) Close() error {
	return nil
}

// SubscriptionFactory returns a new instance of a subscription
type SubscriptionFactory[T any] interface {
	New() (Subscription[T], error)
}

func NotifyAll[T any](ctx context.Context, e T, subs ...Subscription[T]) error {
	var errs []error
	for _, sub := range subs {
		if err := sub.Accept(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Feed is a Subscription that forwards every event to a dynamic set of
// subscriptions. Subscriptions may be added while events are delivered.
type Feed[T any] struct {
	lock sync.RWMutex
	subs []Subscription[T]
}

func NewFeed[T any](subs ...Subscription[T]) *Feed[T] {
	return &Feed[T]{subs: subs}
}

func (f *Feed[T]) Subscribe(sub Subscription[T]) {
	f.lock.Lock()
	defer f.lock.Unlock()

	f.subs = append(f.subs, sub)
}

func (f *Feed[T]) Accept(ctx context.Context, t T) error {
	f.lock.RLock()
	defer f.lock.RUnlock()

	return NotifyAll(ctx, t, f.subs...)
}

// Close closes every subscription and drops them from the feed.
func (f *Feed[T]) Close() error {
	f.lock.Lock()
	defer f.lock.Unlock()

	var errs []error
	for _, sub := range f.subs {
		if err := sub.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	f.subs = nil
	return errors.Join(errs...)
}
