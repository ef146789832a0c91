// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pubsub

import (
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/timer"
	"go.uber.org/zap"
)

// MessageBuffer batches outbound messages of a connection. A batch is
// flushed to [Queue] when it would exceed the size limit or when the oldest
// message in it has waited for the configured timeout.
type MessageBuffer struct {
	Queue chan []byte

	l            sync.Mutex
	log          logging.Logger
	pending      [][]byte
	pendingSize  int
	maxSize      int
	timeout      time.Duration
	pendingTimer *timer.Timer
	closed       bool
}

func NewMessageBuffer(log logging.Logger, pending int, maxSize int, timeout time.Duration) *MessageBuffer {
	m := &MessageBuffer{
		Queue:   make(chan []byte, pending),
		log:     log,
		maxSize: maxSize,
		timeout: timeout,
	}
	m.pendingTimer = timer.NewTimer(m.flush)
	go m.pendingTimer.Dispatch()
	return m
}

func (m *MessageBuffer) flush() {
	m.l.Lock()
	defer m.l.Unlock()

	if m.closed {
		return
	}
	if count := len(m.pending); count > 0 {
		m.clearPending()
		m.log.Verbo("flushed pending messages", zap.Int("count", count))
	}
}

// Close flushes the pending batch and closes [Queue]. The caller must drain
// [Queue] to deliver the last batch.
func (m *MessageBuffer) Close() error {
	m.l.Lock()
	defer m.l.Unlock()

	if m.closed {
		return ErrClosed
	}
	if len(m.pending) > 0 {
		m.clearPending()
	}
	m.pendingTimer.Stop()
	m.closed = true
	close(m.Queue)
	return nil
}

// Assumes [m.l] is held
func (m *MessageBuffer) clearPending() {
	select {
	case m.Queue <- CreateBatchMessage(m.pending):
	default:
		m.log.Debug("dropped pending messages",
			zap.Int("count", len(m.pending)),
		)
	}
	m.pendingSize = 0
	m.pending = nil
}

func (m *MessageBuffer) Send(msg []byte) error {
	m.l.Lock()
	defer m.l.Unlock()

	if m.closed {
		return ErrClosed
	}
	// Each message costs its length prefix in the batch.
	l := intLen + len(msg)
	if intLen+l > m.maxSize {
		return ErrMessageTooLarge
	}
	if m.pendingSize+l > m.maxSize-intLen {
		m.pendingTimer.Cancel()
		m.clearPending()
	}

	m.pendingSize += l
	m.pending = append(m.pending, msg)
	if len(m.pending) == 1 {
		m.pendingTimer.SetTimeoutIn(m.timeout)
	}
	return nil
}
