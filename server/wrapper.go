// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"net/http"

	"github.com/ava-labs/avalanchego/utils/logging"
	"go.uber.org/zap"
)

type Wrapper interface {
	// WrapHandler wraps an http.Handler.
	WrapHandler(h http.Handler) http.Handler
}

// WrapperFunc adapts a function to a [Wrapper].
type WrapperFunc func(h http.Handler) http.Handler

func (f WrapperFunc) WrapHandler(h http.Handler) http.Handler {
	return f(h)
}

// NewRequestLogger logs every request at debug level.
func NewRequestLogger(log logging.Logger) Wrapper {
	return WrapperFunc(func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Debug("serving request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote", r.RemoteAddr),
			)
			h.ServeHTTP(w, r)
		})
	})
}
