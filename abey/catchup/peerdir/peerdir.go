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

// Package peerdir classifies known peers as masternode, delegate, or
// unknown — the directory the Catch-Up Coordinator consults to gate its
// index-request service and to size its quorum.
package peerdir

import (
	"sync"

	mapset "github.com/deckarep/golang-set"

	"github.com/abeychain/go-abey/abey/catchup/types"
)

// Directory is the narrow contract spec.md §6 grants the coordinator:
// enumerate masternodes and classify a single peer.
type Directory interface {
	Masternodes() []types.PeerID
	IsMasternode(id types.PeerID) bool
	IsDelegate(id types.PeerID) bool
}

// roster is the reference Directory, backed by two mapset.Set the same
// way abey/peer.go's peerSet tracks known item sets per connected peer.
type roster struct {
	lock        sync.RWMutex
	masternodes mapset.Set
	delegates   mapset.Set
}

// New returns an empty Directory. Callers populate it with
// RegisterMasternode/RegisterDelegate as the peer-discovery overlay
// (out of scope here, see spec.md §1) reports identities.
func New() Directory {
	return &roster{
		masternodes: mapset.NewSet(),
		delegates:   mapset.NewSet(),
	}
}

func (r *roster) RegisterMasternode(id types.PeerID) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.masternodes.Add(id)
}

func (r *roster) RegisterDelegate(id types.PeerID) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.delegates.Add(id)
}

func (r *roster) Unregister(id types.PeerID) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.masternodes.Remove(id)
	r.delegates.Remove(id)
}

func (r *roster) Masternodes() []types.PeerID {
	r.lock.RLock()
	defer r.lock.RUnlock()
	out := make([]types.PeerID, 0, r.masternodes.Cardinality())
	for v := range r.masternodes.Iter() {
		out = append(out, v.(types.PeerID))
	}
	return out
}

func (r *roster) IsMasternode(id types.PeerID) bool {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.masternodes.Contains(id)
}

func (r *roster) IsDelegate(id types.PeerID) bool {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.delegates.Contains(id)
}

// Mutable exposes the registration methods to callers (node wiring) that
// need to populate the directory without forcing every consumer of
// Directory to see them.
type Mutable interface {
	Directory
	RegisterMasternode(id types.PeerID)
	RegisterDelegate(id types.PeerID)
	Unregister(id types.PeerID)
}

// NewMutable is New, typed so callers that need to populate the roster
// don't have to type-assert.
func NewMutable() Mutable { return New().(Mutable) }
