// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pubsub

import (
	"time"

	"github.com/ava-labs/avalanchego/utils/units"
)

const (
	readBufferSize       = units.KiB
	writeBufferSize      = units.KiB
	writeWait            = 10 * time.Second
	pongWait             = 60 * time.Second
	pingPeriod           = (pongWait * 9) / 10
	maxReadMessageSize   = 4 * units.KiB
	maxWriteMessageSize  = 256 * units.KiB
	maxPendingMessages   = 1024
	maxMessageBatchCount = 512
	messageBufferTimeout = 50 * time.Millisecond
)

type ServerConfig struct {
	// Size of the ws read buffer
	ReadBufferSize int `json:"readBufferSize" yaml:"readBufferSize"`
	// Size of the ws write buffer
	WriteBufferSize int `json:"writeBufferSize" yaml:"writeBufferSize"`
	// Time allowed to write a message to the peer.
	WriteWait time.Duration `json:"writeWait" yaml:"writeWait"`
	// Time allowed to read the next pong message from the peer.
	PongWait time.Duration `json:"pongWait" yaml:"pongWait"`
	// Send pings to peer with this period. Must be less than pongWait.
	PingPeriod time.Duration `json:"pingPeriod" yaml:"pingPeriod"`
	// Maximum message size in bytes allowed from peer.
	MaxReadMessageSize int `json:"maxReadMessageSize" yaml:"maxReadMessageSize"`
	// Maximum size of a batch of messages written to a peer.
	MaxWriteMessageSize int `json:"maxWriteMessageSize" yaml:"maxWriteMessageSize"`
	// Maximum number of pending batches to send to a peer.
	MaxPendingMessages int `json:"maxPendingMessages" yaml:"maxPendingMessages"`
	// Maximum time a message waits to be batched with others.
	MessageBufferTimeout time.Duration `json:"messageBufferTimeout" yaml:"messageBufferTimeout"`
}

func NewDefaultServerConfig() ServerConfig {
	return ServerConfig{
		ReadBufferSize:       readBufferSize,
		WriteBufferSize:      writeBufferSize,
		WriteWait:            writeWait,
		PongWait:             pongWait,
		PingPeriod:           pingPeriod,
		MaxReadMessageSize:   maxReadMessageSize,
		MaxWriteMessageSize:  maxWriteMessageSize,
		MaxPendingMessages:   maxPendingMessages,
		MessageBufferTimeout: messageBufferTimeout,
	}
}
