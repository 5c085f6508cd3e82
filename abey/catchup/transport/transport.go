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

// Package transport is the Message Endpoints collaborator (spec.md §1,
// §6): broadcast to all masternodes, unicast to one peer. Wire framing
// and peer discovery live below this interface and are out of scope —
// the coordinator only ever calls Broadcast/Unicast and receives
// delivered messages back through its own event-loop channels.
package transport

import (
	"github.com/abeychain/go-abey/abey/catchup/types"
)

// Endpoints is the narrow send-side contract the coordinator drives.
type Endpoints interface {
	BroadcastIndexRequest(req types.BlockIndexRequest) error
	UnicastIndexReply(to types.PeerID, reply types.BlockIndexReply) error
	UnicastDataRequest(to types.PeerID, req types.BlockDataRequest) error
	UnicastData(to types.PeerID, data types.BlockData) error
	BroadcastNewBlock(n types.NewBlockNotification) error
}
