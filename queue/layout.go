// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package queue

import (
	"bytes"
	"encoding/binary"
	"slices"

	"github.com/ava-labs/avalanchego/utils/set"

	"github.com/ava-labs/bridgequeue/consts"
)

// State
// 0x0/ (head)
// 0x1/ (tail)
// 0x2/ (operations)
//   -> [index] => operation

const (
	defaultHeadPrefix      byte = 0x0
	defaultTailPrefix      byte = 0x1
	defaultOperationPrefix byte = 0x2

	// DefaultMinimumPrefix is the first prefix not used by the default layout.
	DefaultMinimumPrefix byte = 0x3
)

// Layout describes where a queue keeps its cursors and records.
type Layout struct {
	headKey         []byte
	tailKey         []byte
	operationPrefix []byte
}

func NewLayout(
	headKey []byte,
	tailKey []byte,
	operationPrefix []byte,
) Layout {
	return Layout{
		headKey:         headKey,
		tailKey:         tailKey,
		operationPrefix: operationPrefix,
	}
}

func NewDefaultLayout() Layout {
	return Layout{
		headKey:         []byte{defaultHeadPrefix},
		tailKey:         []byte{defaultTailPrefix},
		operationPrefix: []byte{defaultOperationPrefix},
	}
}

// NewNamespacedLayout returns the default layout with every key prefixed by
// [namespace], so that several queues can share one database.
func NewNamespacedLayout(namespace []byte) Layout {
	withNamespace := func(b byte) []byte {
		return append(slices.Clone(namespace), b)
	}
	return Layout{
		headKey:         withNamespace(defaultHeadPrefix),
		tailKey:         withNamespace(defaultTailPrefix),
		operationPrefix: withNamespace(defaultOperationPrefix),
	}
}

func (l Layout) HeadKey() []byte {
	return l.headKey
}

func (l Layout) TailKey() []byte {
	return l.tailKey
}

func (l Layout) OperationPrefix() []byte {
	return l.operationPrefix
}

// [operationPrefix] + [index]
//
// Indexes are big-endian so that records iterate in queue order.
func (l Layout) OperationKey(index uint64) []byte {
	k := make([]byte, len(l.operationPrefix)+consts.Uint64Len)
	copy(k, l.operationPrefix)
	binary.BigEndian.PutUint64(k[len(l.operationPrefix):], index)
	return k
}

// Returns true if any two keys or prefixes in [l] and [other] overlap
func HasConflictingPrefixes(
	l Layout,
	other [][]byte,
) bool {
	prefixes := [][]byte{
		l.HeadKey(),
		l.TailKey(),
		l.OperationPrefix(),
	}

	prefixes = append(prefixes, other...)
	verifiedPrefixes := set.Set[string]{}

	for _, p := range prefixes {
		for vp := range verifiedPrefixes {
			if bytes.HasPrefix(p, []byte(vp)) || bytes.HasPrefix([]byte(vp), p) {
				return true
			}
		}

		verifiedPrefixes.Add(string(p))
	}

	return false
}
