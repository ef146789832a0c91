// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/ava-labs/bridgequeue/codec"
	"github.com/ava-labs/bridgequeue/priority"
	"github.com/ava-labs/bridgequeue/utils"
)

var errMissingHash = errors.New("hash is required")

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the queue cursors",
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		cursors, err := client.Status(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get status: %w", err)
		}
		return printValue(cmd, statusCmdResponse{
			Head:  cursors.Head,
			Tail:  cursors.Tail,
			Size:  cursors.Head - cursors.Tail,
			Empty: cursors.Head == cursors.Tail,
		})
	},
}

type statusCmdResponse struct {
	Head  uint64 `json:"head"`
	Tail  uint64 `json:"tail"`
	Size  uint64 `json:"size"`
	Empty bool   `json:"empty"`
}

func (r statusCmdResponse) String() string {
	return utils.Sprintf(
		"{{yellow}}head:{{/}} %d {{yellow}}tail:{{/}} %d {{yellow}}size:{{/}} %d",
		r.Head,
		r.Tail,
		r.Size,
	)
}

var frontCmd = &cobra.Command{
	Use:   "front",
	Short: "Show the oldest unprocessed operation",
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		index, op, err := client.Front(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get front: %w", err)
		}
		return printValue(cmd, operationCmdResponse{Index: index, Operation: op})
	},
}

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Append an operation to the queue",
	RunE: func(cmd *cobra.Command, _ []string) error {
		op, err := operationFromFlags(cmd)
		if err != nil {
			return err
		}
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		index, err := client.PushBack(cmd.Context(), op)
		if err != nil {
			return fmt.Errorf("failed to push operation: %w", err)
		}
		return printValue(cmd, operationCmdResponse{Index: index, Operation: op})
	},
}

var popCmd = &cobra.Command{
	Use:   "pop",
	Short: "Remove and show the oldest unprocessed operation",
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		index, op, err := client.PopFront(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to pop operation: %w", err)
		}
		return printValue(cmd, operationCmdResponse{Index: index, Operation: op})
	},
}

var getCmd = &cobra.Command{
	Use:   "get [index]",
	Short: "Show the operation stored at an index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("failed to parse index: %w", err)
		}
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		op, err := client.Operation(cmd.Context(), index)
		if err != nil {
			return fmt.Errorf("failed to get operation %d: %w", index, err)
		}
		return printValue(cmd, operationCmdResponse{Index: index, Operation: op})
	},
}

type operationCmdResponse struct {
	Index     uint64              `json:"index"`
	Operation *priority.Operation `json:"operation"`
}

func (r operationCmdResponse) String() string {
	return utils.Sprintf(
		"{{yellow}}index:{{/}} %d {{yellow}}hash:{{/}} %s {{yellow}}expiration:{{/}} %d {{yellow}}tip:{{/}} %s",
		r.Index,
		r.Operation.CanonicalTxHash,
		r.Operation.ExpirationBlock,
		r.Operation.Tip().Dec(),
	)
}

func operationFromFlags(cmd *cobra.Command) (*priority.Operation, error) {
	hashStr, err := cmd.Flags().GetString("hash")
	if err != nil {
		return nil, fmt.Errorf("failed to get hash flag: %w", err)
	}
	if hashStr == "" {
		return nil, errMissingHash
	}
	hash, err := codec.LoadHex(hashStr, common.HashLength)
	if err != nil {
		return nil, fmt.Errorf("failed to decode hash: %w", err)
	}
	expiration, err := cmd.Flags().GetUint64("expiration")
	if err != nil {
		return nil, fmt.Errorf("failed to get expiration flag: %w", err)
	}
	tipStr, err := cmd.Flags().GetString("tip")
	if err != nil {
		return nil, fmt.Errorf("failed to get tip flag: %w", err)
	}
	tip, err := priority.ParseTip(tipStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse tip: %w", err)
	}
	op := &priority.Operation{
		CanonicalTxHash: common.BytesToHash(hash),
		ExpirationBlock: expiration,
		Layer2Tip:       tip,
	}
	return op, op.Verify()
}

func addOperationFlags(cmd *cobra.Command) {
	cmd.Flags().String("hash", "", "Canonical transaction hash as hex")
	cmd.Flags().Uint64("expiration", 0, "Expiration block height")
	cmd.Flags().String("tip", "0", "Layer 2 tip as decimal or 0x-prefixed hex")
}

func init() {
	addOperationFlags(pushCmd)

	rootCmd.AddCommand(statusCmd, frontCmd, pushCmd, popCmd, getCmd)
}
