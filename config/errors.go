// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import "errors"

var (
	ErrMissingDataDir   = errors.New("missing data dir")
	ErrInvalidNamespace = errors.New("queue namespace must be hex")
	ErrInvalidValue     = errors.New("invalid config value")
	ErrUnknownFormat    = errors.New("unknown config file format")
)
