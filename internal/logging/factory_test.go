// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/stretchr/testify/require"
)

func newTestFactory(t *testing.T) (*Factory, string) {
	dir := t.TempDir()
	return NewFactory(logging.Config{
		RotatingWriterConfig: logging.RotatingWriterConfig{
			MaxSize:   1,
			MaxFiles:  1,
			MaxAge:    1,
			Directory: dir,
		},
		DisableWriterDisplaying: true,
		LogLevel:                logging.Debug,
		DisplayLevel:            logging.Off,
		LogFormat:               logging.Plain,
	}), dir
}

func TestFactoryWritesFile(t *testing.T) {
	require := require.New(t)

	f, dir := newTestFactory(t)
	log, err := f.Make("queue")
	require.NoError(err)

	log.Info("hello")
	f.Close()

	b, err := os.ReadFile(filepath.Join(dir, "queue.log"))
	require.NoError(err)
	require.Contains(string(b), "hello")
}

func TestFactoryDuplicateName(t *testing.T) {
	require := require.New(t)

	f, _ := newTestFactory(t)
	defer f.Close()

	_, err := f.Make("queue")
	require.NoError(err)
	_, err = f.Make("queue")
	require.ErrorContains(err, "already exists")
	require.Equal([]string{"queue"}, f.LoggerNames())

	_, err = f.Make("api")
	require.NoError(err)
	require.Equal([]string{"api", "queue"}, f.LoggerNames())
}

func TestFactorySetLevels(t *testing.T) {
	require := require.New(t)

	f, dir := newTestFactory(t)
	log, err := f.Make("queue")
	require.NoError(err)

	require.NoError(f.SetLevels("queue", logging.Error, logging.Off))
	log.Info("suppressed")
	log.Error("kept")
	f.Close()

	b, err := os.ReadFile(filepath.Join(dir, "queue.log"))
	require.NoError(err)
	require.NotContains(string(b), "suppressed")
	require.Contains(string(b), "kept")

	err = NewFactory(logging.Config{}).SetLevels("missing", logging.Info, logging.Info)
	require.ErrorIs(err, ErrUnknownLogger)
}
