// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ws

import (
	"encoding/json"

	"github.com/ava-labs/bridgequeue/codec"
	"github.com/ava-labs/bridgequeue/consts"
	"github.com/ava-labs/bridgequeue/queue"
)

// The first byte of every message is its mode.
const (
	// EventMode subscribes a connection to queue events (client to server)
	// and carries a JSON encoded event (server to client).
	EventMode byte = 0
	// StatusMode requests the queue cursors (client to server) and carries
	// them as head and tail (server to client).
	StatusMode byte = 1
)

const statusMessageLen = consts.ByteLen + 2*consts.Uint64Len

func packEventMessage(e queue.Event) ([]byte, error) {
	b, err := e.Bytes()
	if err != nil {
		return nil, err
	}
	return append([]byte{EventMode}, b...), nil
}

func unpackEventMessage(b []byte) (*queue.Event, error) {
	var e queue.Event
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func packStatusMessage(c queue.Cursors) []byte {
	p := codec.NewWriter(statusMessageLen, statusMessageLen)
	p.PackByte(StatusMode)
	p.PackUint64(c.Head)
	p.PackUint64(c.Tail)
	return p.Bytes()
}

func unpackStatusMessage(b []byte) (queue.Cursors, error) {
	p := codec.NewReader(b, statusMessageLen-consts.ByteLen)
	c := queue.Cursors{
		Head: p.UnpackUint64(),
		Tail: p.UnpackUint64(),
	}
	return c, p.Done()
}
