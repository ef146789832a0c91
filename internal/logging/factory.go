// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/ava-labs/avalanchego/utils/logging"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gopkg.in/natefinch/lumberjack.v2"
)

var ErrUnknownLogger = errors.New("unknown logger")

type logWrapper struct {
	logger       logging.Logger
	displayLevel zap.AtomicLevel
	logLevel     zap.AtomicLevel
}

// Factory creates named loggers that write to the console and to a rotating
// file in the configured directory.
type Factory struct {
	config logging.Config
	lock   sync.RWMutex

	// logger name --> logger
	loggers map[string]logWrapper
}

func NewFactory(config logging.Config) *Factory {
	return &Factory{
		config:  config,
		loggers: make(map[string]logWrapper),
	}
}

// Assumes [f.lock] is held
func (f *Factory) makeLogger(config logging.Config) (logging.Logger, error) {
	if _, ok := f.loggers[config.LoggerName]; ok {
		return nil, fmt.Errorf("logger with name %q already exists", config.LoggerName)
	}
	consoleEnc := config.LogFormat.ConsoleEncoder()
	fileEnc := config.LogFormat.FileEncoder()

	var consoleWriter io.WriteCloser = os.Stderr
	if config.DisableWriterDisplaying {
		consoleWriter = discardWriteCloser{io.Discard}
	}
	consoleCore := logging.NewWrappedCore(config.DisplayLevel, consoleWriter, consoleEnc)
	consoleCore.WriterDisabled = config.DisableWriterDisplaying

	rw := &lumberjack.Logger{
		Filename:   filepath.Join(config.Directory, config.LoggerName+".log"),
		MaxSize:    config.MaxSize,  // megabytes
		MaxAge:     config.MaxAge,   // days
		MaxBackups: config.MaxFiles, // files
		Compress:   config.Compress,
	}
	fileCore := logging.NewWrappedCore(config.LogLevel, rw, fileEnc)
	prefix := config.LogFormat.WrapPrefix(config.MsgPrefix)

	l := logging.NewLogger(prefix, consoleCore, fileCore)
	f.loggers[config.LoggerName] = logWrapper{
		logger:       l,
		displayLevel: consoleCore.AtomicLevel,
		logLevel:     fileCore.AtomicLevel,
	}
	return l, nil
}

// Make returns a new logger called [name]. Names must be unique per factory.
func (f *Factory) Make(name string) (logging.Logger, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	config := f.config
	config.LoggerName = name
	return f.makeLogger(config)
}

// SetLevels changes the file and display levels of the logger called [name].
func (f *Factory) SetLevels(name string, logLevel, displayLevel logging.Level) error {
	f.lock.RLock()
	defer f.lock.RUnlock()

	lw, ok := f.loggers[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLogger, name)
	}
	lw.logLevel.SetLevel(zapcore.Level(logLevel))
	lw.displayLevel.SetLevel(zapcore.Level(displayLevel))
	return nil
}

// LoggerNames returns the sorted names of all loggers created by this factory.
func (f *Factory) LoggerNames() []string {
	f.lock.RLock()
	defer f.lock.RUnlock()

	names := maps.Keys(f.loggers)
	slices.Sort(names)
	return names
}

func (f *Factory) Close() {
	f.lock.Lock()
	defer f.lock.Unlock()

	for _, lw := range f.loggers {
		lw.logger.Stop()
	}
	f.loggers = nil
}

type discardWriteCloser struct {
	io.Writer
}

func (discardWriteCloser) Close() error {
	return nil
}
