// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/bridgequeue/queue"
	"github.com/ava-labs/bridgequeue/server"
)

func writeFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaults(t *testing.T) {
	require := require.New(t)

	c, err := Load("")
	require.NoError(err)
	require.NoError(c.Verify())
	require.Equal("127.0.0.1:9650", c.GetHTTPAddress())
	require.Equal(filepath.Join(c.DataDir, "logs"), c.GetLogDir())

	l, err := c.GetQueueLayout()
	require.NoError(err)
	require.Equal(queue.NewDefaultLayout(), l)
}

func TestLoadYAML(t *testing.T) {
	require := require.New(t)

	path := writeFile(t, "config.yaml", `
dataDir: /tmp/bridgequeue
logLevel: debug
httpPort: 9999
httpShutdownTimeout: 5s
http:
  readTimeout: 1m30s
profiler:
  frequency: 1000000000
queueNamespace: "0a0b"
pebble:
  cacheSize: 134217728
  sync: false
services:
  jsonrpc:
    readOnly: true
  websocket:
    enabled: false
`)
	c, err := Load(path)
	require.NoError(err)
	require.NoError(c.Verify())
	require.Equal("/tmp/bridgequeue", c.DataDir)
	require.Equal(uint16(9999), c.HTTPPort)
	require.Equal(5*time.Second, c.HTTPShutdownTimeout)
	require.Equal(90*time.Second, c.HTTP.ReadTimeout)
	require.Equal(server.NewDefaultHTTPConfig().WriteTimeout, c.HTTP.WriteTimeout)
	require.Equal(time.Second, c.Profiler.Frequency)
	require.Equal(134217728, c.Pebble.CacheSize)
	require.False(c.Pebble.Sync)
	// Unset fields keep their defaults.
	require.Equal(1_024, c.Pebble.MaxOpenFiles)
	require.JSONEq(`{"readOnly": true}`, string(c.Services["jsonrpc"]))
	require.JSONEq(`{"enabled": false}`, string(c.Services["websocket"]))

	logConfig, err := c.GetLogConfig()
	require.NoError(err)
	require.Equal(logging.Debug, logConfig.LogLevel)

	l, err := c.GetQueueLayout()
	require.NoError(err)
	require.Equal([]byte{0x0a, 0x0b, 0x0}, l.HeadKey())
}

func TestLoadJSON(t *testing.T) {
	require := require.New(t)

	path := writeFile(t, "config.json", `{"dataDir": "/data", "httpAllowedHosts": ["*"], "httpShutdownTimeout": "2s"}`)
	c, err := Load(path)
	require.NoError(err)
	require.Equal("/data", c.DataDir)
	require.Equal([]string{"*"}, c.HTTPAllowedHosts)
	require.Equal(2*time.Second, c.HTTPShutdownTimeout)
}

func TestLoadErrors(t *testing.T) {
	require := require.New(t)

	_, err := Load(writeFile(t, "config.toml", ``))
	require.ErrorIs(err, ErrUnknownFormat)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	require.ErrorIs(err, os.ErrNotExist)

	_, err = Load(writeFile(t, "config.yaml", "httpShutdownTimeout: soon\n"))
	require.Error(err)

	c := NewDefaultConfig()
	c.QueueNamespace = "zz"
	require.ErrorIs(c.Verify(), ErrInvalidNamespace)

	c = NewDefaultConfig()
	c.DataDir = ""
	require.ErrorIs(c.Verify(), ErrMissingDataDir)

	c = NewDefaultConfig()
	c.HTTPShutdownTimeout = 0
	require.ErrorIs(c.Verify(), ErrInvalidValue)
}
