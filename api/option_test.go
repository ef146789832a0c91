// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

type testFactory struct {
	path string
}

func (f testFactory) New(Backend) (Handler, error) {
	return Handler{Path: f.path, Handler: http.NotFoundHandler()}, nil
}

func newTestOption() Option {
	return NewOption("test", testConfig{Enabled: true, Path: "/default"}, func(_ Backend, c testConfig) (Opt, error) {
		if !c.Enabled {
			return NewOpt(), nil
		}
		return WithAPIs(testFactory{path: c.Path}), nil
	})
}

func TestApplyDefaults(t *testing.T) {
	require := require.New(t)

	o, err := Apply(nil, nil, newTestOption())
	require.NoError(err)
	require.Len(o.HandlerFactories, 1)
	h, err := o.HandlerFactories[0].New(nil)
	require.NoError(err)
	require.Equal("/default", h.Path)
}

func TestApplyConfig(t *testing.T) {
	require := require.New(t)

	o, err := Apply(nil, map[string]json.RawMessage{
		"test": json.RawMessage(`{"path": "/custom"}`),
	}, newTestOption())
	require.NoError(err)
	h, err := o.HandlerFactories[0].New(nil)
	require.NoError(err)
	require.Equal("/custom", h.Path)

	o, err = Apply(nil, map[string]json.RawMessage{
		"test": json.RawMessage(`{"enabled": false}`),
	}, newTestOption())
	require.NoError(err)
	require.Empty(o.HandlerFactories)

	_, err = Apply(nil, map[string]json.RawMessage{
		"test": json.RawMessage(`{`),
	}, newTestOption())
	require.ErrorContains(err, `failed to unmarshal "test" config`)
}

func TestApplyConfigDurations(t *testing.T) {
	require := require.New(t)

	var got time.Duration
	option := NewOption("timed", time.Minute, func(_ Backend, timeout time.Duration) (Opt, error) {
		got = timeout
		return NewOpt(), nil
	})

	_, err := Apply(nil, nil, option)
	require.NoError(err)
	require.Equal(time.Minute, got)

	type timedConfig struct {
		Timeout time.Duration `json:"timeout"`
	}
	var cfg timedConfig
	structOption := NewOption("timed", timedConfig{Timeout: time.Minute}, func(_ Backend, c timedConfig) (Opt, error) {
		cfg = c
		return NewOpt(), nil
	})
	_, err = Apply(nil, map[string]json.RawMessage{
		"timed": json.RawMessage(`{"timeout": "250ms"}`),
	}, structOption)
	require.NoError(err)
	require.Equal(250*time.Millisecond, cfg.Timeout)
}
