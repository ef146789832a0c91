// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/stretchr/testify/require"
)

func okHandler(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	})
}

func TestRouter(t *testing.T) {
	require := require.New(t)

	r := newRouter()
	require.NoError(r.AddRouter("/ext/queue", "", okHandler("queue")))
	err := r.AddRouter("/ext/queue", "", okHandler("queue"))
	require.ErrorIs(err, errAlreadyReserved)

	_, err = r.GetHandler("/ext/queue", "")
	require.NoError(err)
	_, err = r.GetHandler("/ext/missing", "")
	require.ErrorIs(err, errUnknownBaseURL)
	_, err = r.GetHandler("/ext/queue", "/x")
	require.ErrorIs(err, errUnknownEndpoint)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ext/queue", nil))
	require.Equal("queue", w.Body.String())
}

func TestFilterInvalidHosts(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		host    string
		status  int
	}{
		{"wildcard", []string{"*"}, "example.com", http.StatusOK},
		{"allowed", []string{"localhost"}, "LOCALHOST:9650", http.StatusOK},
		{"ip", []string{"localhost"}, "127.0.0.1:9650", http.StatusOK},
		{"empty host", []string{"localhost"}, "", http.StatusOK},
		{"rejected", []string{"localhost"}, "evil.com", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := filterInvalidHosts(okHandler("ok"), tt.allowed)
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Host = tt.host
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			require.Equal(t, tt.status, w.Code)
		})
	}
}

func TestServerDispatch(t *testing.T) {
	require := require.New(t)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(err)

	s, err := New(
		"/ext",
		logging.NoLog{},
		listener,
		NewDefaultHTTPConfig(),
		[]string{"*"},
		[]string{"localhost"},
		time.Second,
		NewRequestLogger(logging.NoLog{}),
	)
	require.NoError(err)
	require.NoError(s.AddRoute(okHandler("healthy"), "/health", ""))

	done := make(chan error, 1)
	go func() {
		done <- s.Dispatch()
	}()

	resp, err := http.Get("http://" + s.Addr().String() + "/ext/health")
	require.NoError(err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(err)
	require.NoError(resp.Body.Close())
	require.Equal("healthy", string(body))

	require.NoError(s.Shutdown())
	require.ErrorIs(<-done, http.ErrServerClosed)
}
