// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package admin

import (
	"net/http"

	"github.com/ava-labs/avalanchego/utils/logging"
	"go.uber.org/zap"

	"github.com/ava-labs/bridgequeue/api"
)

const (
	Name      = "admin"
	Endpoint  = "/admin"
	Namespace = "admin"
)

var _ api.HandlerFactory[api.Backend] = (*AdminServerFactory)(nil)

// LogLevels is the log factory state the admin service controls.
type LogLevels interface {
	LoggerNames() []string
	SetLevels(name string, logLevel, displayLevel logging.Level) error
}

// Config is disabled by default since the service changes node behavior.
type Config struct {
	Enabled bool `json:"enabled"`
}

func NewDefaultConfig() Config {
	return Config{}
}

func With(levels LogLevels) api.Option {
	return api.NewOption(Namespace, NewDefaultConfig(), func(_ api.Backend, config Config) (api.Opt, error) {
		if !config.Enabled {
			return api.NewOpt(), nil
		}
		return api.WithAPIs(AdminServerFactory{levels: levels}), nil
	})
}

type AdminServerFactory struct {
	levels LogLevels
}

func (f AdminServerFactory) New(b api.Backend) (api.Handler, error) {
	handler, err := api.NewJSONRPCHandler(Name, &AdminServer{backend: b, levels: f.levels})
	if err != nil {
		return api.Handler{}, err
	}
	return api.Handler{
		Path:    Endpoint,
		Handler: handler,
	}, nil
}

type AdminServer struct {
	backend api.Backend
	levels  LogLevels
}

type LoggersReply struct {
	LoggerNames []string `json:"loggerNames"`
}

func (a *AdminServer) Loggers(req *http.Request, _ *struct{}, reply *LoggersReply) error {
	_, span := a.backend.Tracer().Start(req.Context(), "AdminServer.Loggers")
	defer span.End()

	reply.LoggerNames = a.levels.LoggerNames()
	return nil
}

type SetLoggerLevelArgs struct {
	LoggerName   string `json:"loggerName"`
	LogLevel     string `json:"logLevel"`
	DisplayLevel string `json:"displayLevel"`
}

type SetLoggerLevelReply struct {
	Success bool `json:"success"`
}

func (a *AdminServer) SetLoggerLevel(req *http.Request, args *SetLoggerLevelArgs, reply *SetLoggerLevelReply) error {
	_, span := a.backend.Tracer().Start(req.Context(), "AdminServer.SetLoggerLevel")
	defer span.End()

	logLevel, err := logging.ToLevel(args.LogLevel)
	if err != nil {
		return err
	}
	displayLevel, err := logging.ToLevel(args.DisplayLevel)
	if err != nil {
		return err
	}
	if err := a.levels.SetLevels(args.LoggerName, logLevel, displayLevel); err != nil {
		return err
	}

	a.backend.Logger().Info("changed logger levels",
		zap.String("loggerName", args.LoggerName),
		zap.Stringer("logLevel", logLevel),
		zap.Stringer("displayLevel", displayLevel),
	)
	reply.Success = true
	return nil
}
