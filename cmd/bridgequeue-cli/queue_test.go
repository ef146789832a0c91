// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/bridgequeue/codec"
	"github.com/ava-labs/bridgequeue/priority"
)

func newPushCmd(t *testing.T, flags map[string]string) *cobra.Command {
	cmd := &cobra.Command{}
	addOperationFlags(cmd)
	for name, value := range flags {
		require.NoError(t, cmd.Flags().Set(name, value))
	}
	return cmd
}

func TestOperationFromFlags(t *testing.T) {
	hash := "0xaa" + strings.Repeat("00", 31)
	tests := []struct {
		name        string
		flags       map[string]string
		expectedErr error
	}{
		{
			name: "valid",
			flags: map[string]string{
				"hash":       hash,
				"expiration": "100",
				"tip":        "5",
			},
		},
		{
			name:        "missing hash",
			flags:       map[string]string{"expiration": "100"},
			expectedErr: errMissingHash,
		},
		{
			name:        "short hash",
			flags:       map[string]string{"hash": "0xaa"},
			expectedErr: codec.ErrInvalidSize,
		},
		{
			name: "tip too wide",
			flags: map[string]string{
				"hash": hash,
				"tip":  "0x1000000000000000000000000000000000000000000000000",
			},
			expectedErr: priority.ErrTipOverflow,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := require.New(t)

			op, err := operationFromFlags(newPushCmd(t, tt.flags))
			r.ErrorIs(err, tt.expectedErr)
			if tt.expectedErr != nil {
				return
			}
			r.Equal(uint64(100), op.ExpirationBlock)
			r.Equal(uint64(5), op.Tip().Uint64())
			r.Equal(byte(0xaa), op.CanonicalTxHash[0])
		})
	}
}

func TestResponseStrings(t *testing.T) {
	r := require.New(t)

	status := statusCmdResponse{Head: 3, Tail: 1, Size: 2}
	r.Contains(status.String(), "3")

	op := &priority.Operation{ExpirationBlock: 42}
	r.Contains(operationCmdResponse{Index: 7, Operation: op}.String(), "42")
}

func TestAdminResponseStrings(t *testing.T) {
	r := require.New(t)

	r.Equal("main\nqueue", loggersCmdResponse{LoggerNames: []string{"main", "queue"}}.String())
	r.Equal(
		"queue: log level debug, display level off",
		logLevelCmdResponse{LoggerName: "queue", LogLevel: "debug", DisplayLevel: "off"}.String(),
	)
}
