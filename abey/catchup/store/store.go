// Copyright 2015 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

// Package store is the Block Store Adapter (spec.md §4.1.5, §4.1.6, §6):
// current tip, index deltas from a given hash, and atomic block apply.
package store

import (
	"errors"

	"github.com/abeychain/go-abey/abey/catchup/types"
)

// ErrNotFound is returned by HeightOf when the requested hash is unknown.
var ErrNotFound = errors.New("catchup/store: hash not found")

// Store is the narrow contract the Catch-Up Coordinator drives. Apply is
// not idempotent: callers (the coordinator) must never replay a height,
// a guarantee the coordinator's popping semantics in §4.1.5 provide.
type Store interface {
	Latest() (height types.Height, hash types.Hash)
	HeightOf(hash types.Hash) (types.Height, error)
	LastNIndex(n uint64) []types.IndexEntry
	Apply(body types.Body) error
	BodyAt(height types.Height) (types.Body, error)
}
