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

package transport

import (
	"sync"

	"github.com/abeychain/go-abey/abey/catchup/peerdir"
	"github.com/abeychain/go-abey/abey/catchup/types"
)

// Inbox is the receive-side contract the coordinator implements. The
// names mirror the catch-up protocol's five message kinds one-to-one
// (spec.md §6) so a reader can match a FakeNetwork delivery directly to
// the coordinator method it invokes.
type Inbox interface {
	RecvBlockIndexRequest(from types.PeerID, req types.BlockIndexRequest)
	RecvBlockIndexReply(from types.PeerID, reply types.BlockIndexReply)
	RecvBlockDataRequest(from types.PeerID, req types.BlockDataRequest)
	RecvBlockData(from types.PeerID, data types.BlockData)
	RecvNewBlockNotification(from types.PeerID, n types.NewBlockNotification)
}

// FakeNetwork is an in-memory registry of Inbox handlers keyed by peer,
// playing the role the teacher's downloadTester plays for the
// downloader: a hand-rolled fixture standing in for the real wire, used
// by both unit tests and FakeEndpoints below.
type FakeNetwork struct {
	mu    sync.RWMutex
	peers map[types.PeerID]Inbox
	dir   peerdir.Directory
}

// NewFakeNetwork returns an empty network gated by dir for broadcast fan-out.
func NewFakeNetwork(dir peerdir.Directory) *FakeNetwork {
	return &FakeNetwork{peers: make(map[types.PeerID]Inbox), dir: dir}
}

// Register wires id's Inbox into the network so other endpoints can
// reach it via Unicast/Broadcast.
func (n *FakeNetwork) Register(id types.PeerID, inbox Inbox) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.peers[id] = inbox
}

func (n *FakeNetwork) Unregister(id types.PeerID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.peers, id)
}

func (n *FakeNetwork) lookup(id types.PeerID) (Inbox, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	inbox, ok := n.peers[id]
	return inbox, ok
}

// FakeEndpoints is an Endpoints backed by a FakeNetwork: delivery is
// synchronous and in-process, the same tradeoff the teacher's
// downloadTester makes for deterministic tests over a real transport.
type FakeEndpoints struct {
	Self    types.PeerID
	Network *FakeNetwork

	mu  sync.Mutex
	log []string
}

// NewFakeEndpoints returns a FakeEndpoints for self, registered into net
// under inbox.
func NewFakeEndpoints(self types.PeerID, net *FakeNetwork, inbox Inbox) *FakeEndpoints {
	net.Register(self, inbox)
	return &FakeEndpoints{Self: self, Network: net}
}

func (f *FakeEndpoints) record(what string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log = append(f.log, what)
}

// Sent returns the list of message kinds this endpoint has sent, in
// order — tests assert on it instead of intercepting the network directly.
func (f *FakeEndpoints) Sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.log))
	copy(out, f.log)
	return out
}

func (f *FakeEndpoints) BroadcastIndexRequest(req types.BlockIndexRequest) error {
	f.record("BroadcastIndexRequest")
	for _, id := range f.Network.dir.Masternodes() {
		if id == f.Self {
			continue
		}
		if inbox, ok := f.Network.lookup(id); ok {
			inbox.RecvBlockIndexRequest(f.Self, req)
		}
	}
	return nil
}

func (f *FakeEndpoints) UnicastIndexReply(to types.PeerID, reply types.BlockIndexReply) error {
	f.record("UnicastIndexReply")
	inbox, ok := f.Network.lookup(to)
	if !ok {
		return ErrUnknownPeer
	}
	inbox.RecvBlockIndexReply(f.Self, reply)
	return nil
}

func (f *FakeEndpoints) UnicastDataRequest(to types.PeerID, req types.BlockDataRequest) error {
	f.record("UnicastDataRequest")
	inbox, ok := f.Network.lookup(to)
	if !ok {
		return ErrUnknownPeer
	}
	inbox.RecvBlockDataRequest(f.Self, req)
	return nil
}

func (f *FakeEndpoints) UnicastData(to types.PeerID, data types.BlockData) error {
	f.record("UnicastData")
	inbox, ok := f.Network.lookup(to)
	if !ok {
		return ErrUnknownPeer
	}
	inbox.RecvBlockData(f.Self, data)
	return nil
}

func (f *FakeEndpoints) BroadcastNewBlock(n types.NewBlockNotification) error {
	f.record("BroadcastNewBlock")
	for _, id := range f.Network.dir.Masternodes() {
		if id == f.Self {
			continue
		}
		if inbox, ok := f.Network.lookup(id); ok {
			inbox.RecvNewBlockNotification(f.Self, n)
		}
	}
	return nil
}
