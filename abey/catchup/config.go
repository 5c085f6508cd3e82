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

// Config tunes the Catch-Up Coordinator, following the same
// Config/DefaultConfig shape the teacher uses at the abey package level
// (see abey/config.go).
type Config struct {
	// IdxTimeout is T_idx (spec.md §4.2): how long a discovery round
	// waits for quorum before rebroadcasting BlockIndexRequest.
	IdxTimeout time.Duration

	// PollInterval is T_poll (spec.md §4.2): the cooperative timer tick
	// the Timeout Scheduler uses to check elapsed time against
	// IdxTimeout. It bounds timer granularity, not protocol behavior.
	PollInterval time.Duration

	// StoreFullBlocks marks this node as a masternode that persists
	// applied bodies to Store and answers index requests from others
	// (spec.md §4.1.6). Delegates leave this false: they fold blocks
	// into the State Driver only and never serve BlockIndexRequest.
	StoreFullBlocks bool

	// EventBuffer sizes the Coordinator's event channels.
	EventBuffer int
}

// DefaultConfig mirrors the spec's stated defaults (spec.md §4.2):
// T_idx = 10s, T_poll = 1s.
var DefaultConfig = Config{
	IdxTimeout:      10 * time.Second,
	PollInterval:    1 * time.Second,
	StoreFullBlocks: false,
	EventBuffer:     64,
}
