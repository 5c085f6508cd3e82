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

// handleIndexRequest answers a BlockIndexRequest (spec.md §4.1.6): the
// masternode-only index-request service. Delegates (StoreFullBlocks
// false) never reach here on the send side and silently ignore it on
// the receive side, the same split cilantro's recv_block_idx_req draws
// with its masternode-only guard.
func (c *Coordinator) handleIndexRequest(ev idxReqEvent) {
	if !c.cfg.StoreFullBlocks {
		return
	}
	if ev.from == c.self {
		c.logger.Debug("catchup: self index request, ignoring")
		return
	}
	if !c.dir.IsMasternode(ev.from) && !c.dir.IsDelegate(ev.from) {
		c.logger.Debug("catchup: index request from unknown peer, rejecting", "from", ev.from)
		return
	}

	height, _ := c.store.Latest()
	var n uint64
	if ev.req.BlockHash.IsZero() {
		n = uint64(height)
	} else if h, err := c.store.HeightOf(ev.req.BlockHash); err == nil {
		if height > h {
			n = uint64(height - h)
		}
	} else {
		// Unknown pivot hash: answer conservatively with everything we
		// have rather than guess at how far back the requester needs.
		n = uint64(height)
	}

	reply := types.BlockIndexReply{Indices: c.store.LastNIndex(n)}
	if err := c.eps.UnicastIndexReply(ev.from, reply); err != nil {
		c.logger.Debug("catchup: index reply send failed", "to", ev.from, "err", err)
	}
}

// handleIndexReply assimilates one masternode's BlockIndexReply into
// pendingIndex (spec.md §4.1.2). Entries are merged element-wise, one
// height at a time: the Python original's
// `self.block_delta_list.append(update_list)` nests a fresh list inside
// the accumulator on every reply instead of extending it (spec.md §9) —
// this Go Coordinator keeps a map precisely so "extend" is the only
// operation available; there is no way to accidentally nest here.
//
// Replies keep arriving after quorum is first reached — a slower
// masternode's fatter index can still extend the frontier while
// Fetching is already underway (spec.md §4.1.2 step 4, "later, fatter
// reply from another peer"), so this handler runs in both Discovering
// and Fetching, not just the former; only Idle/Done treat a reply as
// stray.
func (c *Coordinator) handleIndexReply(ev idxReplyEvent) {
	if c.phase != Discovering && c.phase != Fetching {
		c.logger.Debug("catchup: stray index reply, ignoring", "from", ev.from, "phase", c.phase)
		return
	}
	if !c.dir.IsMasternode(ev.from) {
		c.logger.Debug("catchup: index reply from non-masternode, ignoring", "from", ev.from)
		return
	}
	if c.idxReplyPeers.Contains(ev.from) {
		c.logger.Debug("catchup: duplicate index reply, ignoring", "from", ev.from)
		return
	}

	c.idxReplyPeers.Add(ev.from)
	c.met.idxRepliesIn.Mark(1)

	if err := c.validateIndexReply(ev.reply.Indices); err != nil {
		c.protocolViolation("dropping malformed index reply", "from", ev.from, "err", err)
	} else {
		for _, entry := range ev.reply.Indices {
			existing, ok := c.pendingIndex[entry.Height]
			if !ok {
				c.pendingIndex[entry.Height] = entry
			} else {
				existing.Owners = mergeOwners(existing.Owners, entry.Owners)
				c.pendingIndex[entry.Height] = existing
			}
			if entry.Height > c.target.Height {
				c.target = entry
			}
		}
	}

	if c.phase == Discovering {
		if c.idxReplyPeers.Cardinality() < c.quorum() {
			return
		}
		c.logger.Info("catchup: discovery quorum reached", "run", c.runID,
			"replies", c.idxReplyPeers.Cardinality(), "target", c.target.Height)
		c.met.discoveryTimer.UpdateSince(c.discoveryStarted)
		c.transition(Fetching)
	}

	// Either the transition above just happened, or we were already
	// Fetching and this reply may have extended target: either way the
	// pump needs another look.
	c.pump()
}

// validateIndexReply checks a BlockIndexReply's indices against spec.md
// §7's ProtocolViolation list before a single entry is merged into
// pendingIndex: mis-ordered or non-contiguous (§6, "sorted ascending by
// height, contiguous"), a gap where the new suffix joins the existing
// target (§4.1.2, "the first spliced height equals old_target.height +
// 1"), or an entry overlapping a height already known with a
// conflicting hash (the chain is single-branch, append-only — spec.md
// §1 Non-goals excludes forks/reorgs, so two different hashes at one
// height can never both be legitimate). Any violation drops the whole
// reply rather than merging the entries that happen to look fine,
// since a reply that breaks its own contract cannot be trusted
// piecewise.
func (c *Coordinator) validateIndexReply(indices []types.IndexEntry) error {
	if len(indices) == 0 {
		return nil
	}
	for i, entry := range indices {
		if i > 0 && entry.Height != indices[i-1].Height+1 {
			return newErr(ErrProtocolViolation, "index reply is mis-ordered or non-contiguous")
		}
		if existing, ok := c.pendingIndex[entry.Height]; ok && existing.Hash != entry.Hash {
			return newErr(ErrProtocolViolation, "index reply overlaps a known height with a conflicting hash")
		}
	}
	if first := indices[0]; first.Height > c.target.Height+1 {
		return newErr(ErrProtocolViolation, "index reply leaves a gap before the current frontier")
	}
	return nil
}

// mergeOwners unions two owner lists, deduplicating by PeerID. Order is
// not meaningful; callers only need "does at least one owner remain".
func mergeOwners(a, b []types.PeerID) []types.PeerID {
	set := mapset.NewSet()
	for _, id := range a {
		set.Add(id)
	}
	for _, id := range b {
		set.Add(id)
	}
	out := make([]types.PeerID, 0, set.Cardinality())
	for v := range set.Iter() {
		out = append(out, v.(types.PeerID))
	}
	return out
}

// handleNewBlockNotification reacts to an announced new block (spec.md
// §4.1, §5): consumed only while a run is active (phase != Idle; Done is
// the caller's responsibility to avoid per spec.md §4.1). It is treated
// as authoritative — notice.height exists and notice.owners hold it —
// and extends the frontier in place rather than restarting discovery:
// pending_index must never be reset mid-fetch (spec.md §5), so this
// upserts one entry and fires a direct BlockDataRequest to every named
// owner, the same redundant fan-out the request pump itself uses
// (pump.go), independent of wherever next_to_request currently is.
func (c *Coordinator) handleNewBlockNotification(ev newBlockEvent) {
	if c.phase == Idle {
		return
	}
	height, _ := c.store.Latest()
	if ev.n.Height <= height {
		return
	}

	existing, ok := c.pendingIndex[ev.n.Height]
	if !ok {
		existing = types.IndexEntry{Height: ev.n.Height, Owners: ev.n.Owners}
	} else {
		existing.Owners = mergeOwners(existing.Owners, ev.n.Owners)
	}
	c.pendingIndex[ev.n.Height] = existing

	// The notification carries no hash (spec.md §6), so the frontier's
	// hash is left unknown here; commitAndDrain (datareply.go) fills it
	// in from the body's own hash once this exact height commits.
	if ev.n.Height > c.target.Height {
		c.target = types.IndexEntry{Height: ev.n.Height}
	}

	if _, inFlight := c.awaitingOwners[ev.n.Height]; !inFlight {
		c.requestHeight(existing)
	}
}
