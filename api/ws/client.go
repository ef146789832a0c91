// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ws

import (
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/ava-labs/bridgequeue/pubsub"
	"github.com/ava-labs/bridgequeue/queue"
)

type WebSocketClient struct {
	conn           *websocket.Conn
	maxMessageSize int

	wl sync.Mutex
	rl sync.Mutex
	cl sync.Once

	// mode --> messages read but not yet returned
	pending map[byte][][]byte
}

// NewWebSocketClient dials the feed of the node at [uri], for example
// http://127.0.0.1:9650/ext.
func NewWebSocketClient(uri string, maxMessageSize int) (*WebSocketClient, error) {
	uri = strings.Replace(strings.TrimSuffix(uri, "/"), "http", "ws", 1) + Endpoint
	conn, resp, err := websocket.DefaultDialer.Dial(uri, nil)
	if err != nil {
		return nil, err
	}
	// not using resp for now
	_ = resp.Body.Close()
	return &WebSocketClient{
		conn:           conn,
		maxMessageSize: maxMessageSize,
		pending:        map[byte][][]byte{},
	}, nil
}

// RegisterEvents subscribes the connection to queue events. Events
// committed before the server processes the request are not delivered.
func (c *WebSocketClient) RegisterEvents() error {
	return c.write([]byte{EventMode})
}

// ListenEvent blocks until the next queue event arrives.
func (c *WebSocketClient) ListenEvent() (*queue.Event, error) {
	msg, err := c.next(EventMode)
	if err != nil {
		return nil, err
	}
	return unpackEventMessage(msg)
}

// Status requests the queue cursors and waits for the reply.
func (c *WebSocketClient) Status() (queue.Cursors, error) {
	if err := c.write([]byte{StatusMode}); err != nil {
		return queue.Cursors{}, err
	}
	msg, err := c.next(StatusMode)
	if err != nil {
		return queue.Cursors{}, err
	}
	return unpackStatusMessage(msg)
}

func (c *WebSocketClient) write(msg []byte) error {
	c.wl.Lock()
	defer c.wl.Unlock()

	return c.conn.WriteMessage(websocket.BinaryMessage, pubsub.CreateBatchMessage([][]byte{msg}))
}

// next returns the next message of [mode] without its mode byte. Messages
// of other modes read in the meantime are kept for their readers.
func (c *WebSocketClient) next(mode byte) ([]byte, error) {
	c.rl.Lock()
	defer c.rl.Unlock()

	for {
		if msgs := c.pending[mode]; len(msgs) > 0 {
			c.pending[mode] = msgs[1:]
			return msgs[0], nil
		}
		_, batch, err := c.conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		msgs, err := pubsub.ParseBatchMessage(c.maxMessageSize, batch)
		if err != nil {
			return nil, err
		}
		for _, msg := range msgs {
			if len(msg) == 0 {
				continue
			}
			c.pending[msg[0]] = append(c.pending[msg[0]], msg[1:])
		}
	}
}

// Close closes the connection to the feed.
func (c *WebSocketClient) Close() error {
	var err error
	c.cl.Do(func() {
		err = c.conn.Close()
	})
	return err
}
