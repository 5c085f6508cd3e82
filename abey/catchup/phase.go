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

// Phase is the Coordinator's run state (spec.md §4.1.1). A run moves
// strictly forward: Idle -> Discovering -> Fetching -> Done. Done is
// terminal for the run; a fresh RunCatchup starts a new run from Idle.
type Phase int

const (
	// Idle means no catch-up run is in progress.
	Idle Phase = iota
	// Discovering means a BlockIndexRequest is outstanding and the
	// Coordinator is assimilating BlockIndexReply messages toward quorum.
	Discovering
	// Fetching means quorum was reached and the Coordinator is pumping
	// BlockDataRequests and committing bodies in height order.
	Fetching
	// Done means every height up to target has been committed.
	Done
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Discovering:
		return "discovering"
	case Fetching:
		return "fetching"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// transition moves the Coordinator to next, logging the edge. Every
// phase change in the loop goes through here so a reader of the log can
// reconstruct a run's history from one grep.
func (c *Coordinator) transition(next Phase) {
	c.logger.Debug("catchup phase transition", "run", c.runID, "from", c.phase, "to", next)
	c.phase = next
}
