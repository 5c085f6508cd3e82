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

import "time"

// forceSyncCycle and minDesiredPeerCount are kept at the teacher's own
// values (abey/sync.go) — RunLoop is an adaptation of
// ProtocolManager.syncer, not a new policy.
const (
	forceSyncCycle      = 10 * time.Second
	minDesiredPeerCount = 5
)

// RunLoop drives catch-up the way abey/sync.go's ProtocolManager.syncer
// drives full/fast sync: a forced ticker plus an event signalling a new
// peer joined, gated on having enough peers to bother. The teacher's
// version chooses a best peer and compares total difficulty before
// calling synchronise; that comparison belongs to the consensus/TD
// Non-goal this package excludes (spec.md §1), so RunLoop collapses it
// to a single, peer-agnostic RunCatchup(false) — the Coordinator itself
// decides, via quorum, whether there is anything to fetch.
//
// newPeerCh should receive a value every time a peer directory gains a
// masternode; noMorePeers, closed at node shutdown, ends the loop. Both
// are owned by the caller (the peer-discovery overlay, out of scope per
// spec.md §1), mirroring pm.newPeerCh/pm.noMorePeers.
func (c *Coordinator) RunLoop(newPeerCh <-chan struct{}, noMorePeers <-chan struct{}) {
	forceSync := time.NewTicker(forceSyncCycle)
	defer forceSync.Stop()

	for {
		select {
		case <-newPeerCh:
			if len(c.dir.Masternodes()) < minDesiredPeerCount {
				break
			}
			c.RunCatchup(false)

		case <-forceSync.C:
			c.RunCatchup(false)

		case <-noMorePeers:
			return
		}
	}
}
