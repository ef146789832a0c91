// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package admin

import (
	"context"
	"fmt"
	"strings"

	"github.com/ava-labs/bridgequeue/internal/logging"
	"github.com/ava-labs/bridgequeue/requester"
)

type Client struct {
	requester *requester.EndpointRequester
}

// NewClient returns a client for the admin service of the node at [uri],
// for example http://127.0.0.1:9650/ext.
func NewClient(uri string) *Client {
	uri = strings.TrimSuffix(uri, "/") + Endpoint
	return &Client{requester: requester.New(uri, Name)}
}

func (c *Client) Loggers(ctx context.Context) ([]string, error) {
	resp := new(LoggersReply)
	err := c.send(ctx, "loggers", nil, resp)
	return resp.LoggerNames, err
}

func (c *Client) SetLoggerLevel(ctx context.Context, name, logLevel, displayLevel string) error {
	resp := new(SetLoggerLevelReply)
	return c.send(ctx,
		"setLoggerLevel",
		&SetLoggerLevelArgs{
			LoggerName:   name,
			LogLevel:     logLevel,
			DisplayLevel: displayLevel,
		},
		resp,
	)
}

func (c *Client) send(ctx context.Context, method string, params interface{}, reply interface{}) error {
	err := c.requester.SendRequest(ctx, method, params, reply)
	if err != nil && strings.Contains(err.Error(), logging.ErrUnknownLogger.Error()) {
		return fmt.Errorf("%w: %s", logging.ErrUnknownLogger, err)
	}
	return err
}
