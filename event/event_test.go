// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package event

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

var errTest = errors.New("test")

func TestNotifyAllJoinsErrors(t *testing.T) {
	require := require.New(t)

	var got []int
	ok := SubscriptionFunc[int]{AcceptF: func(_ context.Context, i int) error {
		got = append(got, i)
		return nil
	}}
	failing := SubscriptionFunc[int]{AcceptF: func(context.Context, int) error {
		return errTest
	}}

	err := NotifyAll[int](context.Background(), 7, ok, failing, ok)
	require.ErrorIs(err, errTest)
	require.Equal([]int{7, 7}, got)
}

type closeCounter struct {
	SubscriptionFunc[int]
	closed int
}

func (c *closeCounter) Close() error {
	c.closed++
	return nil
}

func TestFeed(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	var got []int
	sub := &closeCounter{SubscriptionFunc: SubscriptionFunc[int]{AcceptF: func(_ context.Context, i int) error {
		got = append(got, i)
		return nil
	}}}

	feed := NewFeed[int]()
	require.NoError(feed.Accept(ctx, 1))
	feed.Subscribe(sub)
	require.NoError(feed.Accept(ctx, 2))
	require.NoError(feed.Accept(ctx, 3))
	require.Equal([]int{2, 3}, got)

	require.NoError(feed.Close())
	require.Equal(1, sub.closed)
	require.NoError(feed.Accept(ctx, 4))
	require.Equal([]int{2, 3}, got)
}
