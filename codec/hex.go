// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"encoding/hex"
	"strings"
)

// AnySize disables the length check of LoadHex.
const AnySize = -1

// LoadHex decodes [s], with or without a 0x prefix, and checks that it
// decodes to [expectedSize] bytes.
func LoadHex(s string, expectedSize int) ([]byte, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, err
	}
	if expectedSize != AnySize && len(b) != expectedSize {
		return nil, ErrInvalidSize
	}
	return b, nil
}
