// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package priority

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	avajson "github.com/ava-labs/avalanchego/utils/json"
)

// operationJSON is the API representation of an Operation. The expiration
// block and tip are encoded as decimal strings so that no JSON consumer
// loses precision.
type operationJSON struct {
	CanonicalTxHash common.Hash    `json:"canonicalTxHash"`
	ExpirationBlock avajson.Uint64 `json:"expirationBlock"`
	Layer2Tip       string         `json:"layer2Tip"`
}

func (o *Operation) MarshalJSON() ([]byte, error) {
	return json.Marshal(operationJSON{
		CanonicalTxHash: o.CanonicalTxHash,
		ExpirationBlock: avajson.Uint64(o.ExpirationBlock),
		Layer2Tip:       o.Tip().Dec(),
	})
}

func (o *Operation) UnmarshalJSON(b []byte) error {
	var raw operationJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	tip, err := ParseTip(raw.Layer2Tip)
	if err != nil {
		return err
	}
	o.CanonicalTxHash = raw.CanonicalTxHash
	o.ExpirationBlock = uint64(raw.ExpirationBlock)
	o.Layer2Tip = tip
	return nil
}

// ParseTip parses a decimal or 0x-prefixed hexadecimal tip and checks that
// it fits in 192 bits. The empty string parses as zero.
func ParseTip(s string) (*uint256.Int, error) {
	if s == "" {
		return new(uint256.Int), nil
	}
	var (
		tip *uint256.Int
		err error
	)
	if len(s) > 2 && s[:2] == "0x" {
		tip, err = uint256.FromHex(s)
	} else {
		tip, err = uint256.FromDecimal(s)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, s)
	}
	if tip.BitLen() > 192 {
		return nil, fmt.Errorf("%w: %s", ErrTipOverflow, s)
	}
	return tip, nil
}
