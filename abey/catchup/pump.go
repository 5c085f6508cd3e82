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
	mapset "github.com/deckarep/golang-set"

	"github.com/abeychain/go-abey/abey/catchup/types"
)

// pump drives the Fetching phase's request frontier (spec.md §4.1.4).
// It recomputes its starting point from local height on every call
// rather than trusting a separately tracked pointer — spec.md §9 notes
// the Python original keeps a redundant blk_req_ptr_idx alongside
// next_to_request/local_height that can drift from them; this
// Coordinator has nothing to drift, because nextToRequest is always
// clamped forward to localHeight+1 before use.
//
// For every contiguous height we have owners for, it sends a
// BlockDataRequest to every owner, not just one — redundant fan-out
// means the first valid reply wins and the rest are deduplicated in
// handleDataReply, trading bandwidth for not having to detect and
// recover from a single non-responsive owner.
func (c *Coordinator) pump() {
	height, _ := c.store.Latest()
	if c.nextToRequest <= height {
		c.nextToRequest = height + 1
	}

	h := c.nextToRequest
	for h <= c.target.Height {
		entry, ok := c.pendingIndex[h]
		if !ok || len(entry.Owners) == 0 {
			break
		}
		if _, inFlight := c.awaitingOwners[h]; !inFlight {
			c.requestHeight(entry)
		}
		h++
	}
	c.nextToRequest = h

	c.maybeFinish()
}

// requestHeight unicasts a BlockDataRequest to every claimed owner of entry.
func (c *Coordinator) requestHeight(entry types.IndexEntry) {
	owners := mapset.NewSet()
	for _, id := range entry.Owners {
		owners.Add(id)
		if err := c.eps.UnicastDataRequest(id, types.BlockDataRequest{Height: entry.Height}); err != nil {
			c.logger.Debug("catchup: data request send failed", "height", entry.Height, "to", id, "err", err)
		}
	}
	c.awaitingOwners[entry.Height] = owners
	c.met.dataRequestsOut.Mark(1)
}

// maybeFinish transitions Fetching -> Done once local height has caught
// up to target and there is nothing left in flight or buffered — and,
// per spec.md §3 Invariant 5 / §4.1.1 / §4.1.3 step 4, only once
// local_hash also matches target.Hash. A height match with a hash
// mismatch means the chain committed does not match what the index
// discovery phase or a NewBlockNotification promised: that is corrupted
// peer data or a bookkeeping bug in this Coordinator, not something a
// retry can fix, so it escalates as an InvariantViolation (spec.md §7)
// rather than silently finishing on the wrong block.
func (c *Coordinator) maybeFinish() {
	if c.phase != Fetching {
		return
	}
	height, hash := c.store.Latest()
	if height < c.target.Height || len(c.awaitingOwners) != 0 || len(c.outOfOrder) != 0 {
		return
	}
	c.invariant(hash == c.target.Hash, "local hash does not match target hash on completion",
		"height", height, "local_hash", hash, "target_hash", c.target.Hash)

	c.transition(Done)
	c.met.runsCompleted.Mark(1)
	c.logger.Info("catchup: run complete", "run", c.runID, "height", height)
	c.reset()
}

// reset clears every piece of transient round state on entry to Done
// (spec.md §3 "Lifecycle": the buffer and pending list are destroyed
// upon entering Done), the same cleanup cilantro's check_catchup_done
// performs on its rcv_block_dict/block_delta_list before the next run.
// It leaves phase, target and runID alone — those describe the run that
// just finished, not the next one, and handleStart reinitializes them.
func (c *Coordinator) reset() {
	c.pendingIndex = make(map[types.Height]types.IndexEntry)
	c.outOfOrder = make(map[types.Height]types.Body)
	c.awaitingOwners = make(map[types.Height]mapset.Set)
}
