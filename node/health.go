// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package node

import (
	"encoding/json"
	"net/http"

	"github.com/ava-labs/avalanchego/api/health"

	"github.com/ava-labs/bridgequeue/lifecycle"
)

type HealthReply struct {
	Healthy  bool   `json:"healthy"`
	Ready    bool   `json:"ready"`
	Database string `json:"database,omitempty"`
}

func newHealthHandler(db health.Checker, ready lifecycle.Ready) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reply := HealthReply{Ready: ready.Ready()}
		reply.Healthy = reply.Ready
		if _, err := db.HealthCheck(r.Context()); err != nil {
			reply.Healthy = false
			reply.Database = err.Error()
		}

		w.Header().Set("Content-Type", "application/json")
		if !reply.Healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(reply)
	})
}
