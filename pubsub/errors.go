// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pubsub

import "errors"

var (
	ErrClosed          = errors.New("closed")
	ErrMessageTooLarge = errors.New("message too large")
	ErrTooManyMessages = errors.New("too many messages in batch")
)
