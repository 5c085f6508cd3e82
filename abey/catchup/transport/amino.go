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
	"github.com/tendermint/go-amino"

	"github.com/abeychain/go-abey/abey/catchup/types"
)

// cdc is the shared wire codec, registered the same way abey's own
// consensus/tbft/wire.go registers its message set: one codec, one
// init-time registration block, concrete types named by string so the
// wire format is stable across binary revisions.
var cdc = amino.NewCodec()

func init() {
	cdc.RegisterConcrete(types.BlockIndexRequest{}, "abey/catchup/BlockIndexRequest", nil)
	cdc.RegisterConcrete(types.BlockIndexReply{}, "abey/catchup/BlockIndexReply", nil)
	cdc.RegisterConcrete(types.BlockDataRequest{}, "abey/catchup/BlockDataRequest", nil)
	cdc.RegisterConcrete(types.NewBlockNotification{}, "abey/catchup/NewBlockNotification", nil)
}

// RawSender is the only thing AminoEndpoints needs from an actual
// transport: deliver an encoded frame to one peer, or to every
// masternode. Dialing, framing, and peer liveness are out of scope
// (spec.md §1) and belong to whatever implements RawSender.
type RawSender interface {
	SendTo(peer types.PeerID, frame []byte) error
	SendToMasternodes(frame []byte) error
}

// BodyCodec lets AminoEndpoints serialize the opaque Body payload of a
// BlockData message without the transport package needing to know the
// concrete block type — callers register their own amino concrete type
// for Body the same way init() above does for the fixed message kinds.
type BodyCodec interface {
	Encode(types.Body) ([]byte, error)
	Decode([]byte) (types.Body, error)
}

// AminoEndpoints is the reference Endpoints adapter, wire-encoding every
// message with go-amino before handing it to a RawSender. It exists to
// show the Endpoints contract driving a real codec; it is not wired
// into the Coordinator's own tests, which use FakeEndpoints instead.
type AminoEndpoints struct {
	sender RawSender
	bodies BodyCodec
}

// NewAminoEndpoints returns an Endpoints that amino-encodes messages
// before handing them to sender.
func NewAminoEndpoints(sender RawSender, bodies BodyCodec) *AminoEndpoints {
	return &AminoEndpoints{sender: sender, bodies: bodies}
}

func (a *AminoEndpoints) BroadcastIndexRequest(req types.BlockIndexRequest) error {
	frame, err := cdc.MarshalBinaryBare(req)
	if err != nil {
		return err
	}
	return a.sender.SendToMasternodes(frame)
}

func (a *AminoEndpoints) UnicastIndexReply(to types.PeerID, reply types.BlockIndexReply) error {
	frame, err := cdc.MarshalBinaryBare(reply)
	if err != nil {
		return err
	}
	return a.sender.SendTo(to, frame)
}

func (a *AminoEndpoints) UnicastDataRequest(to types.PeerID, req types.BlockDataRequest) error {
	frame, err := cdc.MarshalBinaryBare(req)
	if err != nil {
		return err
	}
	return a.sender.SendTo(to, frame)
}

func (a *AminoEndpoints) UnicastData(to types.PeerID, data types.BlockData) error {
	bodyBytes, err := a.bodies.Encode(data.Body)
	if err != nil {
		return err
	}
	frame, err := cdc.MarshalBinaryBare(bodyBytes)
	if err != nil {
		return err
	}
	return a.sender.SendTo(to, frame)
}

func (a *AminoEndpoints) BroadcastNewBlock(n types.NewBlockNotification) error {
	frame, err := cdc.MarshalBinaryBare(n)
	if err != nil {
		return err
	}
	return a.sender.SendToMasternodes(frame)
}

// DecodeIndexRequest is the receive-side counterpart a RawSender
// implementation calls before handing the message to an Inbox.
func DecodeIndexRequest(frame []byte) (types.BlockIndexRequest, error) {
	var req types.BlockIndexRequest
	err := cdc.UnmarshalBinaryBare(frame, &req)
	return req, err
}
