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
	"time"

	mapset "github.com/deckarep/golang-set"

	"github.com/abeychain/go-abey/abey/catchup/types"
)

// pollTicker wraps time.Ticker behind a small C/Stop interface, hoisted
// to a named type since the Coordinator's timer is long-lived across
// many checks, not reset and drained per event. The loop always builds
// a real wall-clock ticker through newPollTicker.
type pollTicker interface {
	C() <-chan time.Time
	Stop()
}

type realTicker struct{ t *time.Ticker }

func newPollTicker(d time.Duration) pollTicker {
	return &realTicker{t: time.NewTicker(d)}
}

func (r *realTicker) C() <-chan time.Time { return r.t.C }
func (r *realTicker) Stop()               { r.t.Stop() }

// resetDiscoveryDeadline arms the Timeout Scheduler for a fresh
// discovery round (spec.md §4.2): T_idx from now.
func (c *Coordinator) resetDiscoveryDeadline() {
	c.discoveryDeadline = time.Now().Add(c.cfg.IdxTimeout)
}

// checkTimeout is the Timeout Scheduler's only job: on every T_poll
// tick, see whether a Discovering round has overrun T_idx, and if so
// rebroadcast. This mirrors cilantro's CatchupManager._check_timeout
// poll loop, collapsed into the Coordinator's own cooperative timer
// rather than a second asyncio task — there is exactly one ticker,
// created by loop() and shared by every run for the Coordinator's
// lifetime.
func (c *Coordinator) checkTimeout() {
	if c.phase != Discovering {
		return
	}
	if time.Now().Before(c.discoveryDeadline) {
		return
	}

	c.logger.Warn("catchup: discovery round timed out, retrying", "run", c.runID,
		"replies", c.idxReplyPeers.Cardinality(), "quorum", c.quorum())
	c.met.discoveryRetry.Mark(1)
	c.idxReplyPeers = mapset.NewSet()

	_, hash := c.store.Latest()
	if err := c.eps.BroadcastIndexRequest(types.BlockIndexRequest{BlockHash: hash}); err != nil {
		c.logger.Warn("catchup: retry broadcast failed", "run", c.runID, "err", err)
	}
	c.resetDiscoveryDeadline()
}
