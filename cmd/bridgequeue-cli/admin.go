// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ava-labs/bridgequeue/api/admin"
)

var loggersCmd = &cobra.Command{
	Use:   "loggers",
	Short: "List the node's loggers (requires the admin service)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		endpoint, err := getConfigValue(cmd, "endpoint", true)
		if err != nil {
			return fmt.Errorf("failed to get endpoint: %w", err)
		}
		names, err := admin.NewClient(endpoint).Loggers(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list loggers: %w", err)
		}
		return printValue(cmd, loggersCmdResponse{LoggerNames: names})
	},
}

type loggersCmdResponse struct {
	LoggerNames []string `json:"loggerNames"`
}

func (r loggersCmdResponse) String() string {
	return strings.Join(r.LoggerNames, "\n")
}

var logLevelCmd = &cobra.Command{
	Use:   "log-level [logger]",
	Short: "Change a logger's file and display levels (requires the admin service)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint, err := getConfigValue(cmd, "endpoint", true)
		if err != nil {
			return fmt.Errorf("failed to get endpoint: %w", err)
		}
		level, err := cmd.Flags().GetString("level")
		if err != nil {
			return fmt.Errorf("failed to get level flag: %w", err)
		}
		displayLevel, err := cmd.Flags().GetString("display-level")
		if err != nil {
			return fmt.Errorf("failed to get display-level flag: %w", err)
		}
		if err := admin.NewClient(endpoint).SetLoggerLevel(cmd.Context(), args[0], level, displayLevel); err != nil {
			return fmt.Errorf("failed to set levels of %s: %w", args[0], err)
		}
		return printValue(cmd, logLevelCmdResponse{
			LoggerName:   args[0],
			LogLevel:     level,
			DisplayLevel: displayLevel,
		})
	},
}

type logLevelCmdResponse struct {
	LoggerName   string `json:"loggerName"`
	LogLevel     string `json:"logLevel"`
	DisplayLevel string `json:"displayLevel"`
}

func (r logLevelCmdResponse) String() string {
	return fmt.Sprintf("%s: log level %s, display level %s", r.LoggerName, r.LogLevel, r.DisplayLevel)
}

func init() {
	logLevelCmd.Flags().String("level", "info", "File log level")
	logLevelCmd.Flags().String("display-level", "info", "Console log level")

	rootCmd.AddCommand(loggersCmd, logLevelCmd)
}
