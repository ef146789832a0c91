// Copyright (C) 2019-2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package pubsub fans messages out to websocket clients.
package pubsub

import (
	"net/http"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var _ http.Handler = (*Server)(nil)

// Server maintains the set of active clients and sends messages to them.
//
// Mount it on an HTTP router and connect with websocket.DefaultDialer.Dial().
type Server struct {
	log      logging.Logger
	config   ServerConfig
	upgrader websocket.Upgrader
	// conns a set of all our connections
	conns *Connections
	// called with every message received from a client, may be nil
	callback Callback
}

// New returns a new Server instance. [callback] is called for every message
// a client sends, if not nil.
func New(log logging.Logger, config ServerConfig, callback Callback) *Server {
	return &Server{
		log:    log,
		config: config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},
		conns:    NewConnections(),
		callback: callback,
	}
}

// ServeHTTP upgrades the request to a websocket connection, adds it to the
// server and starts go routines for reading and writing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	wsConn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("failed to upgrade",
			zap.Error(err),
		)
		return
	}
	conn := &Connection{
		s:    s,
		conn: wsConn,
		mb: NewMessageBuffer(
			s.log,
			s.config.MaxPendingMessages,
			s.config.MaxWriteMessageSize,
			s.config.MessageBufferTimeout,
		),
	}
	conn.active.Store(true)
	s.conns.Add(conn)

	go conn.writePump()
	go conn.readPump()
}

// Connections returns the set of all active connections.
func (s *Server) Connections() *Connections {
	return s.conns
}

// Publish sends [msg] to every connection in [toConns] that is still
// connected to [s].
func (s *Server) Publish(msg []byte, toConns *Connections) {
	for _, conn := range toConns.Conns() {
		if !s.conns.Has(conn) {
			continue
		}
		if !conn.Send(msg) {
			s.log.Verbo(
				"dropping message to subscribed connection due to too many pending messages",
			)
		}
	}
}

func (s *Server) removeConnection(conn *Connection) {
	s.conns.Remove(conn)
}

// Close disconnects every client.
func (s *Server) Close() error {
	for _, conn := range s.conns.Conns() {
		s.removeConnection(conn)
		conn.deactivate()
	}
	return nil
}
