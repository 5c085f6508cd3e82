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

// Package types holds the wire-level data model shared by every catch-up
// collaborator (peerdir, store, state, transport) and the coordinator
// itself: peer identities, block heights/hashes, index entries and the
// five catch-up messages.
package types

import (
	"encoding/hex"
	"fmt"
)

// PeerID is an opaque, fixed-width verifying key. Equality and hashing
// are byte-exact, so PeerID is comparable and safe as a map key.
type PeerID [32]byte

// PeerIDFromHex parses a 64-hex-digit verifying key.
func PeerIDFromHex(s string) (PeerID, error) {
	var id PeerID
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, err
	}
	if len(b) != len(id) {
		return id, fmt.Errorf("catchup: peer id must be %d bytes, got %d", len(id), len(b))
	}
	copy(id[:], b)
	return id, nil
}

func (p PeerID) String() string { return hex.EncodeToString(p[:]) }

// Height is a monotonically increasing, dense block height. Genesis is 0.
type Height uint64

// Hash is an opaque, fixed-width block digest.
type Hash [32]byte

func (h Hash) String() string { return hex.EncodeToString(h[:]) }

// IsZero reports whether h is the zero hash (used to represent "no block
// committed yet" alongside a zero Height).
func (h Hash) IsZero() bool { return h == Hash{} }

// IndexEntry is the (height, hash, owners) triple a masternode reports
// for any block it knows about but the requester may be missing.
// Owners must be non-empty for any height reported as missing.
type IndexEntry struct {
	Height Height
	Hash   Hash
	Owners []PeerID
}

// Body is the opaque payload a Block Store Adapter and State Driver fold
// into local state. The coordinator never inspects it beyond Height/Hash.
type Body interface {
	Height() Height
	Hash() Hash
}

// --- Wire messages (spec.md §6) ---

// BlockIndexRequest is broadcast to all masternodes.
type BlockIndexRequest struct {
	BlockHash Hash
}

// BlockIndexReply answers a BlockIndexRequest, unicast to the requester.
// Indices is sorted ascending by height, contiguous, and may be empty.
type BlockIndexReply struct {
	Indices []IndexEntry
}

// BlockDataRequest asks a single owner for one block's body.
type BlockDataRequest struct {
	Height Height
}

// BlockData is a full block body, unicast to the requester.
type BlockData struct {
	Body Body
}

// NewBlockNotification is broadcast to announce a freshly produced block
// and the masternodes known to hold it.
type NewBlockNotification struct {
	Height Height
	Owners []PeerID
}
