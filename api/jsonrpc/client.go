// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package jsonrpc

import (
	"context"
	"fmt"
	"strings"

	"github.com/ava-labs/avalanchego/database"

	"github.com/ava-labs/bridgequeue/api"
	"github.com/ava-labs/bridgequeue/priority"
	"github.com/ava-labs/bridgequeue/queue"
	"github.com/ava-labs/bridgequeue/requester"

	avajson "github.com/ava-labs/avalanchego/utils/json"
)

// knownErrors are recovered from JSON-RPC error messages so callers can
// match them with errors.Is.
var knownErrors = []error{
	queue.ErrEmptyQueue,
	queue.ErrCorruptQueue,
	queue.ErrQueueFull,
	priority.ErrTipOverflow,
	priority.ErrInvalidOperation,
	ErrReadOnly,
	ErrMissingOperation,
	database.ErrNotFound,
}

type JSONRPCClient struct {
	requester *requester.EndpointRequester
}

// NewJSONRPCClient returns a client for the node at [uri], for example
// http://127.0.0.1:9650/ext.
func NewJSONRPCClient(uri string) *JSONRPCClient {
	uri = strings.TrimSuffix(uri, "/")
	uri += Endpoint
	req := requester.New(uri, api.Name)
	return &JSONRPCClient{requester: req}
}

func (cli *JSONRPCClient) Ping(ctx context.Context) (bool, error) {
	resp := new(PingReply)
	err := cli.send(ctx,
		"ping",
		nil,
		resp,
	)
	return resp.Success, err
}

// Status returns the queue cursors.
func (cli *JSONRPCClient) Status(ctx context.Context) (queue.Cursors, error) {
	resp := new(StatusReply)
	err := cli.send(
		ctx,
		"status",
		nil,
		resp,
	)
	return queue.Cursors{Head: uint64(resp.Head), Tail: uint64(resp.Tail)}, err
}

// Front returns the oldest unprocessed operation and its index.
func (cli *JSONRPCClient) Front(ctx context.Context) (uint64, *priority.Operation, error) {
	resp := new(OperationReply)
	err := cli.send(
		ctx,
		"front",
		nil,
		resp,
	)
	return uint64(resp.Index), resp.Operation, err
}

// PushBack appends [op] and returns its index.
func (cli *JSONRPCClient) PushBack(ctx context.Context, op *priority.Operation) (uint64, error) {
	resp := new(PushBackReply)
	err := cli.send(
		ctx,
		"pushBack",
		&PushBackArgs{Operation: op},
		resp,
	)
	return uint64(resp.Index), err
}

// PopFront removes the oldest unprocessed operation and returns it with its
// index.
func (cli *JSONRPCClient) PopFront(ctx context.Context) (uint64, *priority.Operation, error) {
	resp := new(OperationReply)
	err := cli.send(
		ctx,
		"popFront",
		nil,
		resp,
	)
	return uint64(resp.Index), resp.Operation, err
}

// Operation reads the slot at [index].
func (cli *JSONRPCClient) Operation(ctx context.Context, index uint64) (*priority.Operation, error) {
	resp := new(OperationReply)
	err := cli.send(
		ctx,
		"operation",
		&OperationArgs{Index: avajson.Uint64(index)},
		resp,
	)
	return resp.Operation, err
}

func (cli *JSONRPCClient) send(ctx context.Context, method string, params interface{}, reply interface{}) error {
	err := cli.requester.SendRequest(ctx, method, params, reply)
	if err == nil {
		return nil
	}
	msg := err.Error()
	for _, known := range knownErrors {
		if strings.Contains(msg, known.Error()) {
			return fmt.Errorf("%w: %s", known, msg)
		}
	}
	return err
}
