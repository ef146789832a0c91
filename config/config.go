// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config holds the bridgequeued node configuration.
package config

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/profiler"
	"github.com/ava-labs/avalanchego/utils/units"

	"github.com/ava-labs/bridgequeue/pebble"
	"github.com/ava-labs/bridgequeue/queue"
	"github.com/ava-labs/bridgequeue/server"
	"github.com/ava-labs/bridgequeue/trace"
)

const (
	defaultHTTPHost            = "127.0.0.1"
	defaultHTTPPort            = 9650
	defaultHTTPShutdownTimeout = 10 * time.Second
	defaultLogMaxSize          = 8   // MB
	defaultLogMaxFiles         = 7   // files
	defaultLogMaxAge           = 0   // days, 0 keeps files forever
	defaultProfilerFrequency   = 15 * time.Minute
	defaultProfilerMaxFiles    = 5
	defaultDirName             = ".bridgequeued"
)

type ProfilerConfig struct {
	Enabled     bool          `json:"enabled"`
	Frequency   time.Duration `json:"frequency"`
	MaxNumFiles int           `json:"maxNumFiles"`
}

type Config struct {
	// Directory for the database, logs and profiles.
	DataDir string `json:"dataDir"`

	LogLevel        string `json:"logLevel"`
	LogDisplayLevel string `json:"logDisplayLevel"`
	LogFormat       string `json:"logFormat"`
	// Defaults to [DataDir]/logs.
	LogDir      string `json:"logDir"`
	LogMaxSize  int    `json:"logMaxSize"`
	LogMaxFiles int    `json:"logMaxFiles"`
	LogMaxAge   int    `json:"logMaxAge"`
	LogCompress bool   `json:"logCompress"`

	HTTPHost            string            `json:"httpHost"`
	HTTPPort            uint16            `json:"httpPort"`
	HTTP                server.HTTPConfig `json:"http"`
	HTTPAllowedOrigins  []string          `json:"httpAllowedOrigins"`
	HTTPAllowedHosts    []string          `json:"httpAllowedHosts"`
	HTTPShutdownTimeout time.Duration     `json:"httpShutdownTimeout"`

	Pebble   pebble.Config  `json:"pebble"`
	Trace    trace.Config   `json:"trace"`
	Profiler ProfilerConfig `json:"profiler"`

	// Hex encoded prefix of every queue key. Empty uses the default layout.
	QueueNamespace string `json:"queueNamespace"`

	// Per-service configuration keyed by service namespace.
	Services map[string]json.RawMessage `json:"services"`
}

func NewDefaultConfig() Config {
	dataDir := defaultDirName
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, defaultDirName)
	}
	return Config{
		DataDir:             dataDir,
		LogLevel:            logging.Info.String(),
		LogDisplayLevel:     logging.Info.String(),
		LogFormat:           "auto",
		LogMaxSize:          defaultLogMaxSize,
		LogMaxFiles:         defaultLogMaxFiles,
		LogMaxAge:           defaultLogMaxAge,
		HTTPHost:            defaultHTTPHost,
		HTTPPort:            defaultHTTPPort,
		HTTP:                server.NewDefaultHTTPConfig(),
		HTTPAllowedOrigins:  []string{"*"},
		HTTPAllowedHosts:    []string{"localhost"},
		HTTPShutdownTimeout: defaultHTTPShutdownTimeout,
		Pebble:              pebble.NewDefaultConfig(),
		Trace: trace.Config{
			TraceSampleRate: 0.1,
			AppName:         "bridgequeue",
			Agent:           "bridgequeued",
		},
		Profiler: ProfilerConfig{
			Frequency:   defaultProfilerFrequency,
			MaxNumFiles: defaultProfilerMaxFiles,
		},
		Services: map[string]json.RawMessage{},
	}
}

func (c *Config) GetLogDir() string {
	if c.LogDir != "" {
		return c.LogDir
	}
	return filepath.Join(c.DataDir, "logs")
}

func (c *Config) GetHTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.HTTPHost, c.HTTPPort)
}

// GetLogConfig converts the log settings to avalanchego's logging config.
func (c *Config) GetLogConfig() (logging.Config, error) {
	level, err := logging.ToLevel(c.LogLevel)
	if err != nil {
		return logging.Config{}, err
	}
	displayLevel, err := logging.ToLevel(c.LogDisplayLevel)
	if err != nil {
		return logging.Config{}, err
	}
	format, err := logging.ToFormat(c.LogFormat, os.Stderr.Fd())
	if err != nil {
		return logging.Config{}, err
	}
	return logging.Config{
		RotatingWriterConfig: logging.RotatingWriterConfig{
			MaxSize:   c.LogMaxSize,
			MaxFiles:  c.LogMaxFiles,
			MaxAge:    c.LogMaxAge,
			Directory: c.GetLogDir(),
			Compress:  c.LogCompress,
		},
		LogLevel:     level,
		DisplayLevel: displayLevel,
		LogFormat:    format,
	}, nil
}

func (c *Config) GetProfilerConfig() profiler.Config {
	return profiler.Config{
		Dir:         filepath.Join(c.DataDir, "profiles"),
		Enabled:     c.Profiler.Enabled,
		Freq:        c.Profiler.Frequency,
		MaxNumFiles: c.Profiler.MaxNumFiles,
	}
}

// GetQueueLayout returns the key layout selected by [QueueNamespace].
func (c *Config) GetQueueLayout() (queue.Layout, error) {
	if c.QueueNamespace == "" {
		return queue.NewDefaultLayout(), nil
	}
	namespace, err := hex.DecodeString(c.QueueNamespace)
	if err != nil {
		return queue.Layout{}, fmt.Errorf("%w: %q", ErrInvalidNamespace, c.QueueNamespace)
	}
	return queue.NewNamespacedLayout(namespace), nil
}

// Verify checks the values that cannot be defaulted.
func (c *Config) Verify() error {
	if c.DataDir == "" {
		return ErrMissingDataDir
	}
	if c.HTTPShutdownTimeout <= 0 {
		return fmt.Errorf("%w: httpShutdownTimeout %s", ErrInvalidValue, c.HTTPShutdownTimeout)
	}
	if c.Pebble.CacheSize < units.MiB {
		return fmt.Errorf("%w: pebble cacheSize %d < 1 MiB", ErrInvalidValue, c.Pebble.CacheSize)
	}
	if _, err := c.GetQueueLayout(); err != nil {
		return err
	}
	_, err := c.GetLogConfig()
	return err
}
