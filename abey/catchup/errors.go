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
	"github.com/pkg/errors"

	"github.com/abeychain/go-abey/log"
)

// errCode classifies every failure the Coordinator can produce
// (spec.md §7), following the teacher's errCode/errorToString pattern
// in abey/protocol.go.
type errCode int

const (
	// ErrTransientPeer means a single collaborator call failed in a way
	// that does not implicate protocol state — retry or try another peer.
	ErrTransientPeer errCode = iota
	// ErrProtocolViolation means a peer sent a message that breaks the
	// protocol's own invariants (e.g. non-contiguous index reply).
	ErrProtocolViolation
	// ErrStoreApplyFailure means Store.Apply or Driver.Apply rejected a
	// body the Coordinator believed was next.
	ErrStoreApplyFailure
	// ErrQuorumTimeout means a discovery round's deadline elapsed
	// without reaching quorum.
	ErrQuorumTimeout
	// ErrInvariantViolation means the Coordinator's own internal
	// bookkeeping broke an invariant it is supposed to maintain by
	// construction — this is a programming bug, not an operational
	// fault, and is fatal.
	ErrInvariantViolation
)

func (e errCode) String() string { return errorToString[e] }

var errorToString = map[errCode]string{
	ErrTransientPeer:      "transient peer error",
	ErrProtocolViolation:  "protocol violation",
	ErrStoreApplyFailure:  "store apply failure",
	ErrQuorumTimeout:      "quorum timeout",
	ErrInvariantViolation: "invariant violation",
}

// CatchupError wraps an errCode with context, stack-traced via
// pkg/errors so an operator can see where in the loop it originated.
type CatchupError struct {
	Code errCode
	err  error
}

func (e *CatchupError) Error() string { return e.Code.String() + ": " + e.err.Error() }
func (e *CatchupError) Unwrap() error { return e.err }
func (e *CatchupError) Code_() errCode { return e.Code }

func newErr(code errCode, msg string) *CatchupError {
	return &CatchupError{Code: code, err: errors.New(msg)}
}

func wrapErr(code errCode, err error, msg string) *CatchupError {
	return &CatchupError{Code: code, err: errors.Wrap(err, msg)}
}

// IsTransient reports whether err is a TransientPeerError, the only
// kind the Coordinator's retry paths should swallow silently.
func IsTransient(err error) bool {
	ce, ok := err.(*CatchupError)
	return ok && ce.Code == ErrTransientPeer
}

// protocolViolation logs a ProtocolViolation (spec.md §7): a peer sent a
// message that breaks the protocol's own contract — mis-ordered,
// non-contiguous, or overlapping indices, a self-reply, or similar.
// Always non-fatal: logged at warning level and the offending message
// is dropped, never escalated.
func (c *Coordinator) protocolViolation(msg string, ctx ...interface{}) {
	err := newErr(ErrProtocolViolation, msg)
	c.met.protocolViolations.Mark(1)
	allCtx := append([]interface{}{"run", c.runID, "err", err}, ctx...)
	c.logger.Warn("catchup: protocol violation", allCtx...)
}

// invariant crashes the process via log.Crit (which logs then exits,
// see log/logger.go) after attaching a full state dump, matching
// the teacher's own Crit-logs-then-exits convention rather than a bare
// Go panic that a recover() elsewhere in the process could swallow.
func (c *Coordinator) invariant(cond bool, msg string, extra ...interface{}) {
	if cond {
		return
	}
	dump := c.debugDump()
	ctx := append([]interface{}{"run", c.runID, "msg", msg, "state", dump}, extra...)
	c.logger.Error("catchup invariant violation", ctx...)
	log.Crit("catchup: invariant violation, see preceding dump", "msg", msg)
}
