// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import "errors"

var (
	ErrInvalidSize = errors.New("invalid size")
	ErrExtraBytes  = errors.New("extra bytes")
)
