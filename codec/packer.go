// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"fmt"

	"github.com/ava-labs/avalanchego/utils/wrappers"
)

// Packer is a wrapper struct for the Packer struct
// from avalanchego/utils/wrappers/packing.go. It adds
// fixed-width helpers used by the storage layouts of this module.
type Packer struct {
	p *wrappers.Packer
}

// NewReader returns a Packer instance with the initial byte length of [src]
// and a maximum size of [limit].
func NewReader(src []byte, limit int) *Packer {
	return &Packer{
		p: &wrappers.Packer{Bytes: src, MaxSize: limit},
	}
}

// NewWriter returns a Packer instance with an initial size of [initial] and a
// maximum size of [limit].
func NewWriter(initial, limit int) *Packer {
	return &Packer{
		p: &wrappers.Packer{MaxSize: limit, Bytes: make([]byte, 0, initial)},
	}
}

// PackFixedBytes packs [b] without a length prefix.
func (p *Packer) PackFixedBytes(b []byte) {
	p.p.PackFixedBytes(b)
}

// UnpackFixedBytes reads exactly [size] bytes into [dest].
func (p *Packer) UnpackFixedBytes(size int, dest *[]byte) {
	copy((*dest), p.p.UnpackFixedBytes(size))
}

func (p *Packer) PackUint64(v uint64) {
	p.p.PackLong(v)
}

func (p *Packer) UnpackUint64() uint64 {
	return p.p.UnpackLong()
}

func (p *Packer) PackByte(b byte) {
	p.p.PackByte(b)
}

func (p *Packer) PackInt(v uint32) {
	p.p.PackInt(v)
}

func (p *Packer) UnpackInt() uint32 {
	return p.p.UnpackInt()
}

// PackBytes packs [b] with a 4-byte length prefix.
func (p *Packer) PackBytes(b []byte) {
	p.p.PackBytes(b)
}

// UnpackBytes reads a length-prefixed byte slice of at most [limit] bytes
// into [dest]. A negative [limit] means no limit.
func (p *Packer) UnpackBytes(limit int, dest *[]byte) {
	b := p.p.UnpackBytes()
	if limit >= 0 && len(b) > limit {
		p.addErr(fmt.Errorf("%w: %d > %d", ErrInvalidSize, len(b), limit))
		return
	}
	*dest = b
}

func (p *Packer) addErr(err error) {
	if p.p.Err == nil {
		p.p.Err = err
	}
}

// Bytes returns the packed bytes.
func (p *Packer) Bytes() []byte {
	return p.p.Bytes
}

// Empty returns true if all bytes have been read.
func (p *Packer) Empty() bool {
	return p.p.Offset == len(p.p.Bytes)
}

// Err returns any error encountered while packing or unpacking.
func (p *Packer) Err() error {
	return p.p.Err
}

// Done returns an error if there are unread bytes left or if an error was
// already encountered.
func (p *Packer) Done() error {
	if p.p.Err != nil {
		return p.p.Err
	}
	if !p.Empty() {
		return fmt.Errorf("%w: %d unread bytes", ErrExtraBytes, len(p.p.Bytes)-p.p.Offset)
	}
	return nil
}
