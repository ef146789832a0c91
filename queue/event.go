// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package queue

import (
	"encoding/json"
	"fmt"

	"github.com/ava-labs/bridgequeue/priority"
)

type EventKind uint8

const (
	Pushed EventKind = iota
	Popped
)

func (k EventKind) String() string {
	switch k {
	case Pushed:
		return "pushed"
	case Popped:
		return "popped"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *EventKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "pushed":
		*k = Pushed
	case "popped":
		*k = Popped
	default:
		return fmt.Errorf("unknown event kind %q", b)
	}
	return nil
}

// Event is emitted after a push or pop has been committed.
type Event struct {
	Kind      EventKind           `json:"kind"`
	Index     uint64              `json:"index"`
	Operation *priority.Operation `json:"operation"`
	// Cursors after the mutation.
	Cursors Cursors `json:"cursors"`
}

func (e Event) Bytes() ([]byte, error) {
	return json.Marshal(e)
}
