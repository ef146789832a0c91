// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package priority

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/ava-labs/bridgequeue/codec"
	"github.com/ava-labs/bridgequeue/consts"
)

var (
	ErrTipOverflow      = errors.New("tip exceeds 192 bits")
	ErrInvalidOperation = errors.New("invalid priority operation")
)

// Operation is a cross-layer request waiting to be processed on layer 2.
//
// The serialized form is exactly [consts.OperationLen] bytes: the canonical
// transaction hash occupies one slot and the expiration block and tip share
// the second one.
type Operation struct {
	// CanonicalTxHash identifies the layer 1 transaction data. It is opaque to
	// the queue.
	CanonicalTxHash common.Hash
	// ExpirationBlock is the layer 1 block by which the operation must be
	// processed.
	ExpirationBlock uint64
	// Layer2Tip is paid to whoever executes the operation on layer 2. It must
	// fit in 192 bits. A nil tip is treated as zero.
	Layer2Tip *uint256.Int
}

// Verify returns an error if [o] cannot be stored.
func (o *Operation) Verify() error {
	if o == nil {
		return fmt.Errorf("%w: nil operation", ErrInvalidOperation)
	}
	if o.Layer2Tip != nil && o.Layer2Tip.BitLen() > consts.TipBits {
		return fmt.Errorf("%w: tip uses %d bits", ErrTipOverflow, o.Layer2Tip.BitLen())
	}
	return nil
}

// Tip returns the layer 2 tip, substituting zero for nil.
func (o *Operation) Tip() *uint256.Int {
	if o.Layer2Tip == nil {
		return new(uint256.Int)
	}
	return o.Layer2Tip
}

// Equal reports whether [o] and [other] carry the same fields.
func (o *Operation) Equal(other *Operation) bool {
	if o == nil || other == nil {
		return o == other
	}
	return o.CanonicalTxHash == other.CanonicalTxHash &&
		o.ExpirationBlock == other.ExpirationBlock &&
		o.Tip().Eq(other.Tip())
}

func (o *Operation) Marshal(p *codec.Packer) {
	tip := o.Tip().Bytes32()
	p.PackFixedBytes(o.CanonicalTxHash[:])
	p.PackUint64(o.ExpirationBlock)
	p.PackFixedBytes(tip[consts.SlotLen-consts.TipLen:])
}

// Bytes returns the fixed-width encoding of [o]. The caller must have called
// Verify first; an oversized tip is truncated to its low 192 bits.
func (o *Operation) Bytes() []byte {
	p := codec.NewWriter(consts.OperationLen, consts.OperationLen)
	o.Marshal(p)
	return p.Bytes()
}

func Unmarshal(p *codec.Packer) (*Operation, error) {
	var (
		o    Operation
		hash = make([]byte, consts.HashLen)
		tip  = make([]byte, consts.TipLen)
	)
	p.UnpackFixedBytes(consts.HashLen, &hash)
	o.ExpirationBlock = p.UnpackUint64()
	p.UnpackFixedBytes(consts.TipLen, &tip)
	if err := p.Err(); err != nil {
		return nil, err
	}
	o.CanonicalTxHash = common.BytesToHash(hash)
	o.Layer2Tip = new(uint256.Int).SetBytes(tip)
	return &o, nil
}

// Parse decodes a record produced by Bytes.
func Parse(b []byte) (*Operation, error) {
	if len(b) != consts.OperationLen {
		return nil, fmt.Errorf("%w: expected %d bytes but found %d", codec.ErrInvalidSize, consts.OperationLen, len(b))
	}
	p := codec.NewReader(b, consts.OperationLen)
	o, err := Unmarshal(p)
	if err != nil {
		return nil, err
	}
	return o, p.Done()
}

func (o *Operation) String() string {
	return fmt.Sprintf("hash=%s expiration=%d tip=%s", o.CanonicalTxHash.Hex(), o.ExpirationBlock, o.Tip().Dec())
}
