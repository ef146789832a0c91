// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package priority

import (
	"encoding/json"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/bridgequeue/codec"
	"github.com/ava-labs/bridgequeue/consts"
)

func maxTip() *uint256.Int {
	// 2^192 - 1
	return new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 192), uint256.NewInt(1))
}

func TestOperationLayout(t *testing.T) {
	require := require.New(t)

	op := &Operation{
		CanonicalTxHash: common.HexToHash("0xaa"),
		ExpirationBlock: 0x0102030405060708,
		Layer2Tip:       uint256.NewInt(5),
	}
	b := op.Bytes()
	require.Len(b, consts.OperationLen)
	require.Equal(2*consts.SlotLen, len(b))

	// First slot holds the hash only.
	require.Equal(op.CanonicalTxHash[:], b[:consts.SlotLen])
	// Second slot packs the expiration block and the tip.
	require.Equal([]byte{1, 2, 3, 4, 5, 6, 7, 8}, b[consts.SlotLen:consts.SlotLen+consts.Uint64Len])
	require.Equal(byte(5), b[len(b)-1])

	parsed, err := Parse(b)
	require.NoError(err)
	require.True(op.Equal(parsed))
}

func TestOperationVerify(t *testing.T) {
	tests := []struct {
		name string
		op   *Operation
		err  error
	}{
		{
			name: "nil operation",
			op:   nil,
			err:  ErrInvalidOperation,
		},
		{
			name: "nil tip",
			op:   &Operation{ExpirationBlock: 1},
		},
		{
			name: "max tip",
			op:   &Operation{Layer2Tip: maxTip()},
		},
		{
			name: "tip overflow",
			op:   &Operation{Layer2Tip: new(uint256.Int).Lsh(uint256.NewInt(1), 192)},
			err:  ErrTipOverflow,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, tt.op.Verify(), tt.err)
		})
	}
}

func TestOperationMaxValuesRoundTrip(t *testing.T) {
	require := require.New(t)

	var hash common.Hash
	for i := range hash {
		hash[i] = 0xff
	}
	op := &Operation{
		CanonicalTxHash: hash,
		ExpirationBlock: consts.MaxUint64,
		Layer2Tip:       maxTip(),
	}
	require.NoError(op.Verify())

	parsed, err := Parse(op.Bytes())
	require.NoError(err)
	require.True(op.Equal(parsed))
}

func TestParseInvalidLength(t *testing.T) {
	require := require.New(t)

	_, err := Parse(make([]byte, consts.OperationLen-1))
	require.ErrorIs(err, codec.ErrInvalidSize)

	_, err = Parse(make([]byte, consts.OperationLen+1))
	require.ErrorIs(err, codec.ErrInvalidSize)
}

func TestOperationJSON(t *testing.T) {
	require := require.New(t)

	op := &Operation{
		CanonicalTxHash: common.HexToHash("0xbb"),
		ExpirationBlock: 200,
		Layer2Tip:       maxTip(),
	}
	b, err := json.Marshal(op)
	require.NoError(err)
	require.Contains(string(b), `"expirationBlock":"200"`)
	require.Contains(string(b), `"layer2Tip":"6277101735386680763835789423207666416102355444464034512895"`)

	var decoded Operation
	require.NoError(json.Unmarshal(b, &decoded))
	require.True(op.Equal(&decoded))
}

func TestParseTip(t *testing.T) {
	require := require.New(t)

	tip, err := ParseTip("")
	require.NoError(err)
	require.True(tip.IsZero())

	tip, err = ParseTip("7")
	require.NoError(err)
	require.Equal(uint64(7), tip.Uint64())

	tip, err = ParseTip("0x10")
	require.NoError(err)
	require.Equal(uint64(16), tip.Uint64())

	_, err = ParseTip("6277101735386680763835789423207666416102355444464034512896")
	require.ErrorIs(err, ErrTipOverflow)

	_, err = ParseTip("not a number")
	require.Error(err)
}

func TestOperationEqual(t *testing.T) {
	require := require.New(t)

	a := &Operation{ExpirationBlock: 1}
	b := &Operation{ExpirationBlock: 1, Layer2Tip: uint256.NewInt(0)}
	require.True(a.Equal(b))

	b.Layer2Tip = uint256.NewInt(1)
	require.False(a.Equal(b))

	var nilOp *Operation
	require.False(a.Equal(nilOp))
	require.True(nilOp.Equal(nil))
}
