// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package requester issues JSON-RPC requests against a single service
// endpoint.
package requester

import (
	"context"
	"fmt"
	"net/url"

	"github.com/ava-labs/avalanchego/utils/rpc"
)

type EndpointRequester struct {
	uri  string
	base string
}

// New returns a requester for the service [base] served at [uri].
func New(uri, base string) *EndpointRequester {
	return &EndpointRequester{
		uri:  uri,
		base: base,
	}
}

// SendRequest calls "[base].[method]" with [params] and decodes the result
// into [reply].
func (e *EndpointRequester) SendRequest(
	ctx context.Context,
	method string,
	params interface{},
	reply interface{},
) error {
	uri, err := url.Parse(e.uri)
	if err != nil {
		return err
	}
	return rpc.SendJSONRequest(
		ctx,
		uri,
		fmt.Sprintf("%s.%s", e.base, method),
		params,
		reply,
	)
}
