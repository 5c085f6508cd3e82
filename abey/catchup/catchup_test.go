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
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/abeychain/go-abey/abey/catchup/peerdir"
	"github.com/abeychain/go-abey/abey/catchup/state"
	"github.com/abeychain/go-abey/abey/catchup/store"
	"github.com/abeychain/go-abey/abey/catchup/transport"
	"github.com/abeychain/go-abey/abey/catchup/types"
)

// testBody is the reference types.Body used by every test in this
// package, modeled on the teacher's downloadTester using plain structs
// to stand in for real block types (abey/downloader/downloader_test.go).
type testBody struct {
	height types.Height
	hash   types.Hash
}

func (b testBody) Height() types.Height { return b.height }
func (b testBody) Hash() types.Hash     { return b.hash }

func peerID(b byte) types.PeerID {
	var id types.PeerID
	id[0] = b
	return id
}

func testHash(b byte) types.Hash {
	var h types.Hash
	h[0] = b
	return h
}

// harness bundles one Coordinator plus the fakes it needs wired the way
// every scenario in spec.md §8 sets one up: a directory with a fixed
// masternode set, a MemStore seeded at genesis, a MemDriver, and a
// FakeNetwork so replies can be injected directly through the
// Coordinator's own Recv* methods without a real transport.
type harness struct {
	t       *testing.T
	self    types.PeerID
	dir     peerdir.Mutable
	st      *store.MemStore
	driver  *state.MemDriver
	net     *transport.FakeNetwork
	eps     *transport.FakeEndpoints
	coord   *Coordinator
}

func newHarness(t *testing.T, masternodes ...types.PeerID) *harness {
	t.Helper()
	self := peerID(0xFF)
	dir := peerdir.NewMutable()
	for _, id := range masternodes {
		dir.RegisterMasternode(id)
	}

	genesis := testHash(0)
	st := store.NewMemStore(genesis)
	driver := state.NewMemDriver(genesis)
	net := transport.NewFakeNetwork(dir)

	cfg := DefaultConfig
	cfg.IdxTimeout = 50 * time.Millisecond
	cfg.PollInterval = 5 * time.Millisecond

	h := &harness{t: t, self: self, dir: dir, st: st, driver: driver, net: net}
	h.coord = New(self, cfg, dir, st, driver, nil)
	h.eps = transport.NewFakeEndpoints(self, net, h.coord)
	h.coord2Eps(h.eps)
	h.coord.Start()
	t.Cleanup(h.coord.Stop)
	return h
}

// coord2Eps plugs eps into the already-constructed Coordinator. New's
// signature takes Endpoints up front, but FakeEndpoints must itself be
// constructed after the Coordinator (it registers the Coordinator as an
// Inbox) — so tests wire it through this one extra step instead of
// reordering New's collaborators away from spec.md §6's natural
// dependency order (directory/store/driver before transport).
func (h *harness) coord2Eps(eps transport.Endpoints) {
	h.coord.eps = eps
}

// registerPeer wires a masternode's own inbox into the network so it
// can receive broadcasts/unicasts the test sends it, and returns the
// FakeEndpoints a test uses to reply as that peer.
func (h *harness) registerPeer(id types.PeerID, inbox transport.Inbox) *transport.FakeEndpoints {
	return transport.NewFakeEndpoints(id, h.net, inbox)
}

// nullInbox answers nothing; used for masternode peers whose only role
// in a test is to receive requests and have the test hand-craft replies
// via the Coordinator's Recv* methods directly.
type nullInbox struct{}

func (nullInbox) RecvBlockIndexRequest(types.PeerID, types.BlockIndexRequest)         {}
func (nullInbox) RecvBlockIndexReply(types.PeerID, types.BlockIndexReply)             {}
func (nullInbox) RecvBlockDataRequest(types.PeerID, types.BlockDataRequest)           {}
func (nullInbox) RecvBlockData(types.PeerID, types.BlockData)                         {}
func (nullInbox) RecvNewBlockNotification(types.PeerID, types.NewBlockNotification)   {}

func awaitPhase(t *testing.T, c *Coordinator, want Phase) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c.State().Phase == want {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	require.Equal(t, want, c.State().Phase, "phase never reached")
}

// Scenario 1 (spec.md §8): already at tip. Two masternodes both reply
// empty; the coordinator must finish at Done without issuing a single
// data request and without moving local height.
func TestAlreadyAtTip(t *testing.T) {
	p1, p2 := peerID(1), peerID(2)
	h := newHarness(t, p1, p2)
	h.registerPeer(p1, nullInbox{})
	h.registerPeer(p2, nullInbox{})

	h.st.Apply(testBody{height: 10, hash: testHash(10)})

	h.coord.RunCatchup(false)
	awaitPhase(t, h.coord, Discovering)

	h.coord.RecvBlockIndexReply(p1, types.BlockIndexReply{})
	h.coord.RecvBlockIndexReply(p2, types.BlockIndexReply{})

	awaitPhase(t, h.coord, Done)
	height, _ := h.st.Latest()
	require.EqualValues(t, 10, height)
	require.NotContains(t, h.eps.Sent(), "UnicastDataRequest")
}

// Scenario 2 (spec.md §8): simple catch-up. P1 reports only height 1;
// P2's fatter reply extends the frontier to height 2. Both heights are
// fetched from both owners and applied in order.
func TestSimpleCatchup(t *testing.T) {
	p1, p2 := peerID(1), peerID(2)
	h := newHarness(t, p1, p2)
	h.registerPeer(p1, nullInbox{})
	h.registerPeer(p2, nullInbox{})

	h1, h2 := testHash(1), testHash(2)

	h.coord.RunCatchup(false)
	awaitPhase(t, h.coord, Discovering)

	h.coord.RecvBlockIndexReply(p1, types.BlockIndexReply{Indices: []types.IndexEntry{
		{Height: 1, Hash: h1, Owners: []types.PeerID{p1, p2}},
	}})
	h.coord.RecvBlockIndexReply(p2, types.BlockIndexReply{Indices: []types.IndexEntry{
		{Height: 1, Hash: h1, Owners: []types.PeerID{p1, p2}},
		{Height: 2, Hash: h2, Owners: []types.PeerID{p1, p2}},
	}})

	awaitPhase(t, h.coord, Fetching)

	h.coord.RecvBlockData(p1, types.BlockData{Body: testBody{height: 1, hash: h1}})
	h.coord.RecvBlockData(p1, types.BlockData{Body: testBody{height: 2, hash: h2}})

	awaitPhase(t, h.coord, Done)
	height, hash := h.st.Latest()
	require.EqualValues(t, 2, height)
	require.Equal(t, h2, hash)
}

// Scenario 3 (spec.md §8): out-of-order delivery. Height 2 arrives
// before height 1; it must be buffered, not applied, until height 1
// commits and the buffer drains it.
func TestOutOfOrderDelivery(t *testing.T) {
	// Two masternodes (quorum 1) so the run actually waits on p1's
	// reply instead of the m=1 degenerate case where quorum is 0 and
	// handleStart finishes the phase machine before any reply exists.
	p1, p2 := peerID(1), peerID(2)
	h := newHarness(t, p1, p2)
	h.registerPeer(p1, nullInbox{})
	h.registerPeer(p2, nullInbox{})

	h1, h2 := testHash(1), testHash(2)
	h.coord.RunCatchup(false)
	awaitPhase(t, h.coord, Discovering)
	h.coord.RecvBlockIndexReply(p1, types.BlockIndexReply{Indices: []types.IndexEntry{
		{Height: 1, Hash: h1, Owners: []types.PeerID{p1}},
		{Height: 2, Hash: h2, Owners: []types.PeerID{p1}},
	}})
	awaitPhase(t, h.coord, Fetching)

	h.coord.RecvBlockData(p1, types.BlockData{Body: testBody{height: 2, hash: h2}})
	time.Sleep(20 * time.Millisecond)
	height, _ := h.st.Latest()
	require.Zero(t, height, "height 2 must stay buffered, not applied early")
	require.EqualValues(t, 1, h.coord.State().OutOfOrderLen)

	h.coord.RecvBlockData(p1, types.BlockData{Body: testBody{height: 1, hash: h1}})
	awaitPhase(t, h.coord, Done)
	height, hash := h.st.Latest()
	require.EqualValues(t, 2, height)
	require.Equal(t, h2, hash)
}

// Scenario 4 (spec.md §8): duplicate delivery. The same height arrives
// twice from two different owners; the second copy must be dropped by
// the local_height guard, never re-applied.
func TestDuplicateDeliveryDropped(t *testing.T) {
	p1, p2 := peerID(1), peerID(2)
	h := newHarness(t, p1, p2)
	h.registerPeer(p1, nullInbox{})
	h.registerPeer(p2, nullInbox{})

	h1 := testHash(1)
	h.coord.RunCatchup(false)
	awaitPhase(t, h.coord, Discovering)
	h.coord.RecvBlockIndexReply(p1, types.BlockIndexReply{Indices: []types.IndexEntry{
		{Height: 1, Hash: h1, Owners: []types.PeerID{p1, p2}},
	}})
	h.coord.RecvBlockIndexReply(p2, types.BlockIndexReply{Indices: []types.IndexEntry{
		{Height: 1, Hash: h1, Owners: []types.PeerID{p1, p2}},
	}})
	awaitPhase(t, h.coord, Fetching)

	h.coord.RecvBlockData(p1, types.BlockData{Body: testBody{height: 1, hash: h1}})
	awaitPhase(t, h.coord, Done)

	// Second copy, arriving after Done, must be a silent no-op.
	h.coord.RecvBlockData(p2, types.BlockData{Body: testBody{height: 1, hash: h1}})
	time.Sleep(10 * time.Millisecond)

	height, hash := h.st.Latest()
	require.EqualValues(t, 1, height)
	require.Equal(t, h1, hash)
}

// Scenario 5 (spec.md §8): frontier extension mid-fetch. A
// NewBlockNotification for a height beyond the current target must not
// reset pending state; once the prior heights commit, the new height's
// data reply commits too.
func TestNewBlockNotificationExtendsFrontier(t *testing.T) {
	// Two masternodes (quorum 1) so the index round genuinely waits for
	// a reply instead of the m=1 degenerate case (quorum 0) where
	// handleStart would finish the run before any reply or data ever
	// changes hands.
	p1, p2 := peerID(1), peerID(2)
	h := newHarness(t, p1, p2)
	h.registerPeer(p1, nullInbox{})
	h.registerPeer(p2, nullInbox{})

	h1, h2, h3 := testHash(1), testHash(2), testHash(3)
	h.coord.RunCatchup(false)
	awaitPhase(t, h.coord, Discovering)
	h.coord.RecvBlockIndexReply(p1, types.BlockIndexReply{Indices: []types.IndexEntry{
		{Height: 1, Hash: h1, Owners: []types.PeerID{p1}},
		{Height: 2, Hash: h2, Owners: []types.PeerID{p1}},
	}})
	awaitPhase(t, h.coord, Fetching)

	// Commit height 1 only — height 2 stays outstanding so the run is
	// still genuinely mid-fetch when the notification lands.
	h.coord.RecvBlockData(p1, types.BlockData{Body: testBody{height: 1, hash: h1}})

	h.coord.RecvNewBlockNotification(p1, types.NewBlockNotification{Height: 3, Owners: []types.PeerID{p1}})
	time.Sleep(10 * time.Millisecond)
	require.Equal(t, Fetching, h.coord.State().Phase, "notification must not finish or reset the run")

	h.coord.RecvBlockData(p1, types.BlockData{Body: testBody{height: 2, hash: h2}})
	h.coord.RecvBlockData(p1, types.BlockData{Body: testBody{height: 3, hash: h3}})
	awaitPhase(t, h.coord, Done)

	height, hash := h.st.Latest()
	require.EqualValues(t, 3, height)
	require.Equal(t, h3, hash)
}

// Scenario 6 (spec.md §8): discovery timeout and retry. 4 masternodes
// need quorum 2 (ceil(8/3)-1 = 2); only one replies before IdxTimeout
// elapses, forcing a retry broadcast that clears the reply set, after
// which two further peers answer and reach quorum.
func TestQuorumRequiresMultipleRepliesAndRetries(t *testing.T) {
	p1, p2, p3, p4 := peerID(1), peerID(2), peerID(3), peerID(4)
	h := newHarness(t, p1, p2, p3, p4)
	for _, p := range []types.PeerID{p1, p2, p3, p4} {
		h.registerPeer(p, nullInbox{})
	}
	require.Equal(t, 2, h.coord.quorum())

	h.coord.RunCatchup(false)
	awaitPhase(t, h.coord, Discovering)

	h.coord.RecvBlockIndexReply(p1, types.BlockIndexReply{})
	time.Sleep(120 * time.Millisecond) // outlast IdxTimeout, force a retry

	h.coord.RecvBlockIndexReply(p2, types.BlockIndexReply{})
	h.coord.RecvBlockIndexReply(p3, types.BlockIndexReply{})

	awaitPhase(t, h.coord, Done)
}

// TestIdempotentIndexReply covers spec.md §8's idempotent-replies
// property: a duplicate reply from the same peer must not double-count
// toward quorum or mutate pendingIndex a second time.
func TestIdempotentIndexReply(t *testing.T) {
	p1, p2 := peerID(1), peerID(2)
	h := newHarness(t, p1, p2)
	h.registerPeer(p1, nullInbox{})
	h.registerPeer(p2, nullInbox{})

	h1 := testHash(1)
	h.coord.RunCatchup(false)
	awaitPhase(t, h.coord, Discovering)

	reply := types.BlockIndexReply{Indices: []types.IndexEntry{
		{Height: 1, Hash: h1, Owners: []types.PeerID{p1}},
	}}
	h.coord.RecvBlockIndexReply(p1, reply)
	h.coord.RecvBlockIndexReply(p1, reply) // duplicate, must be a no-op

	time.Sleep(10 * time.Millisecond)
	require.Equal(t, 1, h.coord.State().ReplyCount)
}

// TestNoSelfTraffic covers spec.md §8's no-self-traffic property: the
// masternode index-request service must never answer its own peer id.
func TestNoSelfTraffic(t *testing.T) {
	h := newHarness(t)
	h.coord.cfg.StoreFullBlocks = true

	h.coord.RecvBlockIndexRequest(h.self, types.BlockIndexRequest{})
	time.Sleep(10 * time.Millisecond)
	require.NotContains(t, h.eps.Sent(), "UnicastIndexReply")
}

// TestErrorKindClassification exercises errors.go's classification
// helpers directly (spec.md §7): a StoreApplyFailure must not be
// reported as transient, and IsTransient must correctly recognize the
// one kind the Coordinator's retry paths are allowed to swallow.
func TestErrorKindClassification(t *testing.T) {
	applyErr := wrapErr(ErrStoreApplyFailure, errors.New("boom"), "apply failed")
	require.False(t, IsTransient(applyErr))
	require.Equal(t, ErrStoreApplyFailure, applyErr.Code)

	transientErr := newErr(ErrTransientPeer, "peer unreachable")
	require.True(t, IsTransient(transientErr))
}
