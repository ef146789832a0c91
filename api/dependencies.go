// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"context"

	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"

	"github.com/ava-labs/bridgequeue/priority"
	"github.com/ava-labs/bridgequeue/queue"
)

var _ Queue = (*queue.Queue)(nil)

// Queue is the part of [queue.Queue] exposed over the APIs.
type Queue interface {
	Snapshot() queue.Cursors
	FrontWithIndex(ctx context.Context) (uint64, *priority.Operation, error)
	PushBack(ctx context.Context, op *priority.Operation) (uint64, error)
	PopFrontWithIndex(ctx context.Context) (uint64, *priority.Operation, error)
	Operation(ctx context.Context, index uint64) (*priority.Operation, error)
}

// Backend is what API handlers are built from.
type Backend interface {
	Tracer() trace.Tracer
	Logger() logging.Logger
	Queue() Queue
}
