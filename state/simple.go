// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"context"
	"slices"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/utils/maybe"
)

var _ Mutable = (*SimpleMutable)(nil)

// SimpleMutable stages changes on top of a database and writes all of them
// in a single batch on Commit. Until Commit is called nothing is visible to
// other readers of the database.
type SimpleMutable struct {
	db database.Database

	changes map[string]maybe.Maybe[[]byte]
}

func NewSimpleMutable(db database.Database) *SimpleMutable {
	return &SimpleMutable{db, make(map[string]maybe.Maybe[[]byte])}
}

func (s *SimpleMutable) GetValue(_ context.Context, k []byte) ([]byte, error) {
	if v, ok := s.changes[string(k)]; ok {
		if v.IsNothing() {
			return nil, database.ErrNotFound
		}
		return v.Value(), nil
	}
	return s.db.Get(k)
}

func (s *SimpleMutable) Insert(_ context.Context, k []byte, v []byte) error {
	s.changes[string(k)] = maybe.Some(slices.Clone(v))
	return nil
}

func (s *SimpleMutable) Remove(_ context.Context, k []byte) error {
	s.changes[string(k)] = maybe.Nothing[[]byte]()
	return nil
}

// Len returns the number of staged keys.
func (s *SimpleMutable) Len() int {
	return len(s.changes)
}

// Commit atomically writes all staged changes and clears the overlay. If the
// write fails the overlay is kept so the caller may discard it.
func (s *SimpleMutable) Commit(context.Context) error {
	batch := s.db.NewBatch()
	for k, v := range s.changes {
		var err error
		if v.IsNothing() {
			err = batch.Delete([]byte(k))
		} else {
			err = batch.Put([]byte(k), v.Value())
		}
		if err != nil {
			return err
		}
	}
	if err := batch.Write(); err != nil {
		return err
	}
	s.Abort()
	return nil
}

// Abort drops all staged changes.
func (s *SimpleMutable) Abort() {
	clear(s.changes)
}
