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

package store

import (
	"sort"
	"sync"

	"github.com/abeychain/go-abey/abey/catchup/types"
)

// MemStore is the in-memory reference Store, modeled on the teacher's
// downloadTester fixture (ownHashes/ownBlocks maps in
// abey/downloader/downloader_test.go): good enough for tests and for a
// delegate node that never needs durability.
type MemStore struct {
	mu      sync.RWMutex
	height  types.Height
	hash    types.Hash
	bodies  map[types.Height]types.Body
	hashes  map[types.Height]types.Hash
	owners  map[types.Height][]types.PeerID
	byHash  map[types.Hash]types.Height
}

// NewMemStore returns a MemStore seeded at genesis (height 0).
func NewMemStore(genesisHash types.Hash) *MemStore {
	return &MemStore{
		height: 0,
		hash:   genesisHash,
		bodies: make(map[types.Height]types.Body),
		hashes: map[types.Height]types.Hash{0: genesisHash},
		owners: make(map[types.Height][]types.PeerID),
		byHash: map[types.Hash]types.Height{genesisHash: 0},
	}
}

// SetOwners records which masternodes claim to hold the body at height —
// bookkeeping the core Store contract doesn't name but which a concrete
// masternode-side adapter needs to answer LastNIndex truthfully.
func (s *MemStore) SetOwners(height types.Height, owners []types.PeerID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]types.PeerID, len(owners))
	copy(cp, owners)
	s.owners[height] = cp
}

func (s *MemStore) Latest() (types.Height, types.Hash) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.height, s.hash
}

func (s *MemStore) HeightOf(hash types.Hash) (types.Height, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.byHash[hash]
	if !ok {
		return 0, ErrNotFound
	}
	return h, nil
}

func (s *MemStore) LastNIndex(n uint64) []types.IndexEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n == 0 {
		return nil
	}
	start := uint64(s.height) - n + 1
	out := make([]types.IndexEntry, 0, n)
	for h := start; h <= uint64(s.height); h++ {
		height := types.Height(h)
		out = append(out, types.IndexEntry{
			Height: height,
			Hash:   s.hashes[height],
			Owners: s.owners[height],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Height < out[j].Height })
	return out
}

func (s *MemStore) BodyAt(height types.Height) (types.Body, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bodies[height]
	if !ok {
		return nil, ErrNotFound
	}
	return b, nil
}

func (s *MemStore) Apply(body types.Body) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bodies[body.Height()] = body
	s.hashes[body.Height()] = body.Hash()
	s.byHash[body.Hash()] = body.Height()
	s.height = body.Height()
	s.hash = body.Hash()
	return nil
}
