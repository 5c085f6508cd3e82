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

// Package state is the State Driver collaborator (spec.md §1, §6): the
// thing that actually folds an applied block's effects into whatever
// local consensus state the host node keeps. The coordinator treats
// "apply succeeded" as a boolean signal and never inspects state
// beyond that — transaction execution and validation are non-goals
// (spec.md Non-goals) and live entirely inside the Driver.
package state

import (
	"sync"

	"github.com/abeychain/go-abey/abey/catchup/types"
)

// Driver is the narrow contract the coordinator's Apply path drives
// (spec.md §4.1.5): fold body into state, or report why it could not.
type Driver interface {
	Apply(body types.Body) error
	Latest() (types.Height, types.Hash)
}

// MemDriver is a reference Driver: it tracks only the latest
// (height, hash) pair, overwritten by every Apply. It does not check
// that heights arrive in order.
type MemDriver struct {
	mu     sync.RWMutex
	height types.Height
	hash   types.Hash
}

// NewMemDriver returns a MemDriver seeded at genesis.
func NewMemDriver(genesisHash types.Hash) *MemDriver {
	return &MemDriver{height: 0, hash: genesisHash}
}

func (d *MemDriver) Apply(body types.Body) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.height = body.Height()
	d.hash = body.Hash()
	return nil
}

func (d *MemDriver) Latest() (types.Height, types.Hash) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.height, d.hash
}

// RejectingDriver always fails Apply, a fault-injection Driver for
// exercising the StoreApplyFailure escalation path (spec.md §7).
type RejectingDriver struct {
	Err error
}

func (d *RejectingDriver) Apply(types.Body) error { return d.Err }
func (d *RejectingDriver) Latest() (types.Height, types.Hash) {
	return 0, types.Hash{}
}
