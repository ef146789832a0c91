// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pubsub

import (
	"fmt"

	"github.com/ava-labs/bridgequeue/codec"
)

const intLen = 4

// CreateBatchMessage packs [msgs] as a count followed by length-prefixed
// messages.
func CreateBatchMessage(msgs [][]byte) []byte {
	size := intLen
	for _, msg := range msgs {
		size += intLen + len(msg)
	}
	p := codec.NewWriter(size, size)
	p.PackInt(uint32(len(msgs)))
	for _, msg := range msgs {
		p.PackBytes(msg)
	}
	return p.Bytes()
}

// ParseBatchMessage unpacks a message created by [CreateBatchMessage] of at
// most [maxSize] bytes.
func ParseBatchMessage(maxSize int, msg []byte) ([][]byte, error) {
	if len(msg) > maxSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrMessageTooLarge, len(msg), maxSize)
	}
	p := codec.NewReader(msg, maxSize)
	count := p.UnpackInt()
	if count > maxMessageBatchCount {
		return nil, fmt.Errorf("%w: %d", ErrTooManyMessages, count)
	}
	msgs := make([][]byte, 0, count)
	for i := uint32(0); i < count && p.Err() == nil; i++ {
		var b []byte
		p.UnpackBytes(maxSize, &b)
		msgs = append(msgs, b)
	}
	if err := p.Done(); err != nil {
		return nil, err
	}
	return msgs, nil
}
