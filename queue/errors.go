// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package queue

import "errors"

var (
	ErrEmptyQueue        = errors.New("queue is empty")
	ErrCorruptQueue      = errors.New("queue state is corrupt")
	ErrQueueFull         = errors.New("queue index space exhausted")
	ErrConflictingLayout = errors.New("layout has conflicting prefixes")
)
