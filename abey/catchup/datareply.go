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

import "github.com/abeychain/go-abey/abey/catchup/types"

// handleDataRequest answers a BlockDataRequest (spec.md §6): any node
// that happens to hold the body at the requested height replies with
// it, masternode or not — unlike the index-request service this isn't
// gated by StoreFullBlocks, since the request already named a specific
// owner who claimed to have the block.
func (c *Coordinator) handleDataRequest(ev dataReqEvent) {
	if ev.from == c.self {
		return
	}
	body, err := c.store.BodyAt(ev.req.Height)
	if err != nil {
		c.logger.Debug("catchup: data request for unknown height, ignoring",
			"height", ev.req.Height, "from", ev.from, "err", err)
		return
	}
	if err := c.eps.UnicastData(ev.from, types.BlockData{Body: body}); err != nil {
		c.logger.Debug("catchup: data reply send failed", "to", ev.from, "err", err)
	}
}

// handleDataReply is the ordered-commit path (spec.md §4.1.3): drop
// anything already committed, buffer anything that arrived ahead of the
// commit frontier, and otherwise apply it and drain whatever the buffer
// now makes contiguous. The drain is an explicit loop, never recursion
// (spec.md §9): each iteration's apply can only ever unblock the single
// next height, so there is nothing a recursive call would express that
// the loop doesn't.
func (c *Coordinator) handleDataReply(ev dataReplyEvent) {
	c.met.dataRepliesIn.Mark(1)

	body := ev.data.Body
	height := body.Height()

	local, _ := c.store.Latest()
	if height <= local {
		return
	}

	awaited := local + 1
	if height > awaited {
		c.outOfOrder[height] = body
		return
	}

	c.commitAndDrain(body)
}

// commitAndDrain applies body (known to be exactly the next expected
// height) and then keeps applying whatever the out-of-order buffer has
// waiting at the new frontier, in order, until a gap remains.
func (c *Coordinator) commitAndDrain(body types.Body) {
	for {
		if err := c.applyBody(body); err != nil {
			c.invariant(false, "block apply failed", "height", body.Height(), "err", err)
			return
		}
		height := body.Height()
		delete(c.pendingIndex, height)
		delete(c.awaitingOwners, height)

		// A NewBlockNotification extends target.Height without naming a
		// hash (spec.md §6: the notification carries no hash field), so
		// target.Hash is still whatever the frontier was before the
		// notification arrived. Once the body at that exact height
		// commits, its hash becomes the authoritative target hash the
		// same way the notification's owners were already trusted —
		// this only ever fills in a still-unknown hash, it never
		// overrides one an index reply already supplied.
		if height == c.target.Height && c.target.Hash.IsZero() {
			c.target.Hash = body.Hash()
		}

		next, ok := c.outOfOrder[height+1]
		if !ok {
			break
		}
		delete(c.outOfOrder, height+1)
		body = next
	}

	c.pump()
}
