// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package consts

const (
	ByteLen   = 1
	Uint64Len = 8
	MaxUint64 = ^uint64(0)

	// HashLen is the width of a canonical transaction hash and also the width
	// of a single storage slot.
	HashLen = 32
	SlotLen = 32

	// TipBits is the maximum bit width of a layer 2 tip.
	TipBits = 192
	TipLen  = TipBits / 8

	// OperationLen is the serialized width of a priority operation: the hash
	// fills one slot, the expiration block and the tip share a second one.
	OperationLen = HashLen + Uint64Len + TipLen
)
