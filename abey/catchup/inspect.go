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

package catchup

import (
	"github.com/davecgh/go-spew/spew"

	"github.com/abeychain/go-abey/abey/catchup/types"
)

// StateSnapshot is a point-in-time, read-only copy of the Coordinator's
// run state, returned by State(). The crash dump an InvariantViolation
// produces comes from debugDump instead. It exists so a caller or a
// test can observe progress without reaching into loop-owned fields
// from another goroutine.
type StateSnapshot struct {
	RunID         string
	Phase         Phase
	Target        types.Height
	TargetHash    types.Hash
	PendingLen    int
	OutOfOrderLen int
	ReplyCount    int
	Quorum        int
}

// snapshot builds a StateSnapshot. Must only be called from the loop
// goroutine — every field it reads is loop-owned.
func (c *Coordinator) snapshot() StateSnapshot {
	return StateSnapshot{
		RunID:         c.runID,
		Phase:         c.phase,
		Target:        c.target.Height,
		TargetHash:    c.target.Hash,
		PendingLen:    len(c.pendingIndex),
		OutOfOrderLen: len(c.outOfOrder),
		ReplyCount:    c.idxReplyPeers.Cardinality(),
		Quorum:        c.quorum(),
	}
}

// State returns a snapshot of the Coordinator's current run state,
// requested and answered through the same event loop every other
// Coordinator method uses — so a concurrent State() call is never torn
// against an in-flight handler.
func (c *Coordinator) State() StateSnapshot {
	reply := make(chan StateSnapshot, 1)
	select {
	case c.stateCh <- reply:
	case <-c.quit:
		return StateSnapshot{}
	}
	select {
	case s := <-reply:
		return s
	case <-c.quit:
		return StateSnapshot{}
	}
}

// debugDump renders the full loop-owned state as a string, the Go
// counterpart to cilantro's dump_debug_info: called from the
// InvariantViolation fatal path (errors.go) so an operator sees every
// buffered height and owner set that led to the crash, not just the
// summary StateSnapshot.
func (c *Coordinator) debugDump() string {
	owners := make(map[types.Height][]types.PeerID, len(c.awaitingOwners))
	for h, set := range c.awaitingOwners {
		ids := make([]types.PeerID, 0, set.Cardinality())
		for v := range set.Iter() {
			ids = append(ids, v.(types.PeerID))
		}
		owners[h] = ids
	}

	return spew.Sdump(struct {
		RunID          string
		Phase          Phase
		Target         types.IndexEntry
		NextToRequest  types.Height
		PendingIndex   map[types.Height]types.IndexEntry
		OutOfOrder     map[types.Height]types.Body
		AwaitingOwners map[types.Height][]types.PeerID
	}{
		RunID:          c.runID,
		Phase:          c.phase,
		Target:         c.target,
		NextToRequest:  c.nextToRequest,
		PendingIndex:   c.pendingIndex,
		OutOfOrder:     c.outOfOrder,
		AwaitingOwners: owners,
	})
}
