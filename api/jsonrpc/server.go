// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package jsonrpc

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/ava-labs/bridgequeue/api"
	"github.com/ava-labs/bridgequeue/priority"

	avajson "github.com/ava-labs/avalanchego/utils/json"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const (
	Endpoint  = "/queue"
	Namespace = "jsonrpc"
)

var _ api.HandlerFactory[api.Backend] = (*JSONRPCServerFactory)(nil)

type Config struct {
	Enabled bool `json:"enabled"`
	// ReadOnly disables pushBack and popFront.
	ReadOnly bool `json:"readOnly"`
}

func NewDefaultConfig() Config {
	return Config{Enabled: true}
}

func With() api.Option {
	return api.NewOption(Namespace, NewDefaultConfig(), OptionFunc)
}

func OptionFunc(_ api.Backend, config Config) (api.Opt, error) {
	if !config.Enabled {
		return api.NewOpt(), nil
	}
	return api.WithAPIs(JSONRPCServerFactory{readOnly: config.ReadOnly}), nil
}

type JSONRPCServerFactory struct {
	readOnly bool
}

func (f JSONRPCServerFactory) New(b api.Backend) (api.Handler, error) {
	handler, err := api.NewJSONRPCHandler(api.Name, NewJSONRPCServer(b, f.readOnly))
	if err != nil {
		return api.Handler{}, err
	}

	return api.Handler{
		Path:    Endpoint,
		Handler: handler,
	}, nil
}

type JSONRPCServer struct {
	backend  api.Backend
	readOnly bool
}

func NewJSONRPCServer(b api.Backend, readOnly bool) *JSONRPCServer {
	return &JSONRPCServer{backend: b, readOnly: readOnly}
}

type PingReply struct {
	Success bool `json:"success"`
}

func (j *JSONRPCServer) Ping(_ *http.Request, _ *struct{}, reply *PingReply) (err error) {
	j.backend.Logger().Info("ping")
	reply.Success = true
	return nil
}

type StatusReply struct {
	// Head is the number of operations ever pushed.
	Head avajson.Uint64 `json:"head"`
	// Tail is the index of the first unprocessed operation.
	Tail  avajson.Uint64 `json:"tail"`
	Size  avajson.Uint64 `json:"size"`
	Empty bool           `json:"empty"`
}

func (j *JSONRPCServer) Status(req *http.Request, _ *struct{}, reply *StatusReply) error {
	_, span := j.backend.Tracer().Start(req.Context(), "JSONRPCServer.Status")
	defer span.End()

	c := j.backend.Queue().Snapshot()
	reply.Head = avajson.Uint64(c.Head)
	reply.Tail = avajson.Uint64(c.Tail)
	reply.Size = avajson.Uint64(c.Size())
	reply.Empty = c.IsEmpty()
	return nil
}

type OperationReply struct {
	Index     avajson.Uint64      `json:"index"`
	Operation *priority.Operation `json:"operation"`
}

func (j *JSONRPCServer) Front(req *http.Request, _ *struct{}, reply *OperationReply) error {
	ctx, span := j.backend.Tracer().Start(req.Context(), "JSONRPCServer.Front")
	defer span.End()

	index, op, err := j.backend.Queue().FrontWithIndex(ctx)
	if err != nil {
		return err
	}
	reply.Index = avajson.Uint64(index)
	reply.Operation = op
	return nil
}

type PushBackArgs struct {
	Operation *priority.Operation `json:"operation"`
}

type PushBackReply struct {
	Index avajson.Uint64 `json:"index"`
}

func (j *JSONRPCServer) PushBack(req *http.Request, args *PushBackArgs, reply *PushBackReply) error {
	ctx, span := j.backend.Tracer().Start(req.Context(), "JSONRPCServer.PushBack")
	defer span.End()

	if j.readOnly {
		return ErrReadOnly
	}
	if args.Operation == nil {
		return ErrMissingOperation
	}
	index, err := j.backend.Queue().PushBack(ctx, args.Operation)
	if err != nil {
		return err
	}
	j.backend.Logger().Debug("pushed operation over jsonrpc",
		zap.Uint64("index", index),
	)
	reply.Index = avajson.Uint64(index)
	return nil
}

func (j *JSONRPCServer) PopFront(req *http.Request, _ *struct{}, reply *OperationReply) error {
	ctx, span := j.backend.Tracer().Start(req.Context(), "JSONRPCServer.PopFront")
	defer span.End()

	if j.readOnly {
		return ErrReadOnly
	}
	index, op, err := j.backend.Queue().PopFrontWithIndex(ctx)
	if err != nil {
		return err
	}
	reply.Index = avajson.Uint64(index)
	reply.Operation = op
	return nil
}

type OperationArgs struct {
	Index avajson.Uint64 `json:"index"`
}

func (j *JSONRPCServer) Operation(req *http.Request, args *OperationArgs, reply *OperationReply) error {
	ctx, span := j.backend.Tracer().Start(req.Context(), "JSONRPCServer.Operation", oteltrace.WithAttributes(
		attribute.Int64("index", int64(args.Index)),
	))
	defer span.End()

	op, err := j.backend.Queue().Operation(ctx, uint64(args.Index))
	if err != nil {
		return err
	}
	reply.Index = args.Index
	reply.Operation = op
	return nil
}
