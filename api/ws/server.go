// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ws streams queue events to websocket clients.
package ws

import (
	"context"

	"go.uber.org/zap"

	"github.com/ava-labs/bridgequeue/api"
	"github.com/ava-labs/bridgequeue/event"
	"github.com/ava-labs/bridgequeue/pubsub"
	"github.com/ava-labs/bridgequeue/queue"
)

const (
	Endpoint  = "/feed"
	Namespace = "websocket"
)

var (
	_ api.HandlerFactory[api.Backend] = (*WebSocketServerFactory)(nil)
	_ event.Subscription[queue.Event] = (*WebSocketServer)(nil)
)

type Config struct {
	Enabled bool                `json:"enabled"`
	Server  pubsub.ServerConfig `json:"server"`
}

func NewDefaultConfig() Config {
	return Config{
		Enabled: true,
		Server:  pubsub.NewDefaultServerConfig(),
	}
}

func With() api.Option {
	return api.NewOption(Namespace, NewDefaultConfig(), OptionFunc)
}

func OptionFunc(b api.Backend, config Config) (api.Opt, error) {
	if !config.Enabled {
		return api.NewOpt(), nil
	}

	server, handler := NewWebSocketServer(b, config.Server)
	webSocketFactory := NewWebSocketServerFactory(handler)
	return api.NewOpt(
		api.WithEventSubscriptions(subscriptionFactory{server: server}),
		api.WithAPIs(webSocketFactory),
	), nil
}

// subscriptionFactory hands out the server itself so closing the
// subscription disconnects the clients.
type subscriptionFactory struct {
	server *WebSocketServer
}

func (s subscriptionFactory) New() (event.Subscription[queue.Event], error) {
	return s.server, nil
}

func NewWebSocketServerFactory(server *pubsub.Server) *WebSocketServerFactory {
	return &WebSocketServerFactory{
		handler: server,
	}
}

type WebSocketServerFactory struct {
	handler *pubsub.Server
}

func (w WebSocketServerFactory) New(api.Backend) (api.Handler, error) {
	return api.Handler{
		Path:    Endpoint,
		Handler: w.handler,
	}, nil
}

type WebSocketServer struct {
	backend api.Backend
	s       *pubsub.Server

	eventListeners *pubsub.Connections
}

func NewWebSocketServer(b api.Backend, config pubsub.ServerConfig) (*WebSocketServer, *pubsub.Server) {
	w := &WebSocketServer{
		backend:        b,
		eventListeners: pubsub.NewConnections(),
	}
	w.s = pubsub.New(b.Logger(), config, w.MessageCallback())
	return w, w.s
}

// Accept publishes [e] to every connection that registered for events.
func (w *WebSocketServer) Accept(_ context.Context, e queue.Event) error {
	if w.eventListeners.Len() == 0 {
		return nil
	}
	msg, err := packEventMessage(e)
	if err != nil {
		return err
	}
	w.s.Publish(msg, w.eventListeners)
	return nil
}

// Close disconnects every client.
func (w *WebSocketServer) Close() error {
	return w.s.Close()
}

func (w *WebSocketServer) MessageCallback() pubsub.Callback {
	log := w.backend.Logger()
	return func(msgBytes []byte, c *pubsub.Connection) {
		_, span := w.backend.Tracer().Start(context.Background(), "WebSocketServer.Callback")
		defer span.End()

		if len(msgBytes) == 0 {
			log.Debug("dropping empty message")
			return
		}

		switch msgBytes[0] {
		case EventMode:
			w.eventListeners.Add(c)
			log.Debug("added event listener")
		case StatusMode:
			c.Send(packStatusMessage(w.backend.Queue().Snapshot()))
		default:
			log.Debug("unexpected message type",
				zap.Int("len", len(msgBytes)),
				zap.Uint8("mode", msgBytes[0]),
			)
		}
	}
}
