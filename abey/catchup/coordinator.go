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

// Package catchup implements the block catch-up subsystem: a Catch-Up
// Coordinator that drives a two-phase protocol (quorum-gated index
// discovery, then per-height redundant-fanout data fetch) to bring a
// node from its local tip up to a target height known to the network.
//
// The Coordinator follows the same single-goroutine, channel-driven
// event loop the teacher uses for its Fetcher (abey/fetcher/fetcher.go):
// one loop goroutine owns every piece of run state; every public method
// only ever sends a value into a channel the loop selects on. No field
// on Coordinator is ever touched by two goroutines, so none needs a
// lock — correctness comes from the single owner, not from
// synchronization.
package catchup

import (
	"time"

	mapset "github.com/deckarep/golang-set"
	"github.com/pborman/uuid"

	"github.com/abeychain/go-abey/abey/catchup/peerdir"
	"github.com/abeychain/go-abey/abey/catchup/state"
	"github.com/abeychain/go-abey/abey/catchup/store"
	"github.com/abeychain/go-abey/abey/catchup/transport"
	"github.com/abeychain/go-abey/abey/catchup/types"
	"github.com/abeychain/go-abey/log"
)

// startEvent requests a new catch-up run. The round's pivot is always
// this node's own current (height, hash) — BlockIndexRequest asks
// masternodes "what do you have after this?", it does not name a
// target (spec.md §6: BlockIndexRequest carries the requester's hash).
// force allows pre-empting a run already in progress; the pre-empted
// run's round state is discarded and a fresh run starts (handleStart).
type startEvent struct {
	force bool
}

type idxReqEvent struct {
	from types.PeerID
	req  types.BlockIndexRequest
}

type idxReplyEvent struct {
	from  types.PeerID
	reply types.BlockIndexReply
}

type dataReqEvent struct {
	from types.PeerID
	req  types.BlockDataRequest
}

type dataReplyEvent struct {
	from types.PeerID
	data types.BlockData
}

type newBlockEvent struct {
	from types.PeerID
	n    types.NewBlockNotification
}

// Coordinator is the Catch-Up Coordinator (spec.md §3). Construct with
// New, then Start the loop before feeding it events.
type Coordinator struct {
	cfg    Config
	self   types.PeerID
	dir    peerdir.Directory
	store  store.Store
	driver state.Driver
	eps    transport.Endpoints
	logger log.Logger
	met    *catchupMetrics

	startCh     chan startEvent
	idxReqCh    chan idxReqEvent
	idxReplyCh  chan idxReplyEvent
	dataReqCh   chan dataReqEvent
	dataReplyCh chan dataReplyEvent
	newBlockCh  chan newBlockEvent
	stateCh     chan chan StateSnapshot
	quit        chan struct{}
	done        chan struct{}

	// --- loop-owned state; never touched outside the loop goroutine ---

	runID string
	phase Phase

	// target is the last entry of pendingIndex (spec.md §3): the
	// frontier's height AND the hash the just-completed run must match
	// before Done is reached (spec.md §3 Invariant 5, §4.1.1, §4.1.3
	// step 4). Both fields travel together so maybeFinish can check
	// local_hash == target.Hash, not just local_height == target.Height.
	target types.IndexEntry

	// pendingIndex accumulates IndexEntry rows reported by masternode
	// replies during Discovering and Fetching, keyed by height. Populated by
	// handleIndexReply and handleNewBlockNotification (indexreply.go),
	// element-wise extended never
	// wholesale-appended — see that file's doc comment for why.
	pendingIndex map[types.Height]types.IndexEntry

	// idxReplyPeers is the set of masternodes that have answered the
	// current round's BlockIndexRequest, used only to size against quorum.
	idxReplyPeers mapset.Set

	// nextToRequest is the request pump's pointer: the next height the
	// pump has not yet sent a BlockDataRequest for. It is derived
	// state, recomputed from localHeight whenever the pump advances —
	// spec.md §9 flags the Python original's separate blk_req_ptr_idx as
	// redundant, and this Coordinator does not carry an equivalent field.
	nextToRequest types.Height

	// outOfOrder buffers received-but-not-yet-contiguous bodies,
	// keyed by height, until drainCommits can apply them in order.
	outOfOrder map[types.Height]types.Body

	// awaitingOwners records, per height currently in flight, the set
	// of owners we have outstanding BlockDataRequests to — duplicate or
	// late replies from other owners are accepted but not re-applied.
	awaitingOwners map[types.Height]mapset.Set

	discoveryDeadline time.Time // see timeout.go
	discoveryStarted  time.Time // discoveryTimer start, see metrics.go and indexreply.go
}

// New constructs a Coordinator. self is this node's own identity,
// excluded from quorum counting and from broadcast fan-out.
func New(self types.PeerID, cfg Config, dir peerdir.Directory, st store.Store, driver state.Driver, eps transport.Endpoints) *Coordinator {
	return &Coordinator{
		cfg:    cfg,
		self:   self,
		dir:    dir,
		store:  st,
		driver: driver,
		eps:    eps,
		logger: log.New("module", "catchup"),
		met:    newCatchupMetrics(),

		startCh:     make(chan startEvent),
		idxReqCh:    make(chan idxReqEvent, cfg.EventBuffer),
		idxReplyCh:  make(chan idxReplyEvent, cfg.EventBuffer),
		dataReqCh:   make(chan dataReqEvent, cfg.EventBuffer),
		dataReplyCh: make(chan dataReplyEvent, cfg.EventBuffer),
		newBlockCh:  make(chan newBlockEvent, cfg.EventBuffer),
		stateCh:     make(chan chan StateSnapshot),
		quit:        make(chan struct{}),
		done:        make(chan struct{}),

		phase:          Idle,
		pendingIndex:   make(map[types.Height]types.IndexEntry),
		idxReplyPeers:  mapset.NewSet(),
		outOfOrder:     make(map[types.Height]types.Body),
		awaitingOwners: make(map[types.Height]mapset.Set),
	}
}

// Start launches the Coordinator's event loop in its own goroutine,
// mirroring the teacher's Fetcher.Start (abey/fetcher/fetcher.go).
func (c *Coordinator) Start() {
	go c.loop()
}

// Stop terminates the event loop. Safe to call once; a second call
// would close an already-closed channel and panic, same contract as
// the teacher's Fetcher.Stop.
func (c *Coordinator) Stop() {
	close(c.quit)
	<-c.done
}

// RunCatchup starts a new catch-up run from this node's current tip. If
// a run is already in progress and force is false, the request is
// dropped — the caller is expected to await completion (observable via
// State()) rather than queue runs, matching spec.md's
// single-run-at-a-time model.
func (c *Coordinator) RunCatchup(force bool) {
	select {
	case c.startCh <- startEvent{force: force}:
	case <-c.quit:
	}
}

// RecvBlockIndexRequest implements transport.Inbox: another node is
// asking us (a masternode) for the index of blocks since from's hash.
func (c *Coordinator) RecvBlockIndexRequest(from types.PeerID, req types.BlockIndexRequest) {
	select {
	case c.idxReqCh <- idxReqEvent{from: from, req: req}:
	case <-c.quit:
	}
}

// RecvBlockIndexReply implements transport.Inbox.
func (c *Coordinator) RecvBlockIndexReply(from types.PeerID, reply types.BlockIndexReply) {
	select {
	case c.idxReplyCh <- idxReplyEvent{from: from, reply: reply}:
	case <-c.quit:
	}
}

// RecvBlockDataRequest implements transport.Inbox.
func (c *Coordinator) RecvBlockDataRequest(from types.PeerID, req types.BlockDataRequest) {
	select {
	case c.dataReqCh <- dataReqEvent{from: from, req: req}:
	case <-c.quit:
	}
}

// RecvBlockData implements transport.Inbox.
func (c *Coordinator) RecvBlockData(from types.PeerID, data types.BlockData) {
	select {
	case c.dataReplyCh <- dataReplyEvent{from: from, data: data}:
	case <-c.quit:
	}
}

// RecvNewBlockNotification implements transport.Inbox.
func (c *Coordinator) RecvNewBlockNotification(from types.PeerID, n types.NewBlockNotification) {
	select {
	case c.newBlockCh <- newBlockEvent{from: from, n: n}:
	case <-c.quit:
	}
}

// loop is the single owner of all Coordinator run state. Every branch
// below runs to completion before the next select iteration, so
// handlers never need to worry about concurrent mutation — the same
// discipline the teacher's Fetcher.loop follows.
func (c *Coordinator) loop() {
	defer close(c.done)

	ticker := newPollTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case ev := <-c.startCh:
			c.handleStart(ev)

		case ev := <-c.idxReqCh:
			c.handleIndexRequest(ev)

		case ev := <-c.idxReplyCh:
			c.handleIndexReply(ev)

		case ev := <-c.dataReqCh:
			c.handleDataRequest(ev)

		case ev := <-c.dataReplyCh:
			c.handleDataReply(ev)

		case ev := <-c.newBlockCh:
			c.handleNewBlockNotification(ev)

		case <-ticker.C():
			c.checkTimeout()

		case reply := <-c.stateCh:
			reply <- c.snapshot()

		case <-c.quit:
			return
		}
	}
}

func (c *Coordinator) handleStart(ev startEvent) {
	if c.phase != Idle && c.phase != Done && !ev.force {
		c.logger.Debug("catchup: run already in progress, ignoring", "phase", c.phase)
		return
	}

	height, hash := c.store.Latest()

	c.runID = uuid.New()
	c.pendingIndex = make(map[types.Height]types.IndexEntry)
	c.idxReplyPeers = mapset.NewSet()
	c.outOfOrder = make(map[types.Height]types.Body)
	c.awaitingOwners = make(map[types.Height]mapset.Set)
	c.target = types.IndexEntry{Height: height, Hash: hash}
	c.nextToRequest = height + 1

	c.discoveryStarted = time.Now()
	c.transition(Discovering)
	c.met.runsStarted.Mark(1)
	c.logger.Info("catchup: starting run", "run", c.runID, "from_height", height, "from_hash", hash)

	if err := c.eps.BroadcastIndexRequest(types.BlockIndexRequest{BlockHash: hash}); err != nil {
		c.logger.Warn("catchup: broadcast index request failed", "run", c.runID, "err", err)
	}
	c.met.idxRequestsOut.Mark(1)

	// With no masternodes to ask (or a quorum of zero), there is
	// nothing to wait for: move straight to Fetching, which will find
	// pendingIndex empty and fall through to Done.
	if c.quorum() == 0 {
		c.transition(Fetching)
		c.pump()
		return
	}
	c.resetDiscoveryDeadline()
}

// quorum returns Q = ceil(2/3 * M) - 1 (spec.md §4.1.2, §9). M is the
// raw masternode count from the Peer Directory; the -1 is itself what
// excludes self from M, so self is not filtered out of Masternodes()
// here as well — doing both would under-count quorum by one should a
// Directory ever list self among its own masternodes.
func (c *Coordinator) quorum() int {
	m := len(c.dir.Masternodes())
	q := (2*m + 2) / 3 // ceil(2/3 * m)
	q--
	if q < 0 {
		q = 0
	}
	return q
}
