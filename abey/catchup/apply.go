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

import "github.com/abeychain/go-abey/abey/catchup/types"

// applyBody folds one body into local state (spec.md §4.1.5): always
// through the State Driver, and additionally through the Block Store
// Adapter for masternodes that persist full history
// (cfg.StoreFullBlocks). "Apply succeeded" is the only signal the
// Coordinator inspects — transaction execution and validation above
// that boolean are the Driver's business, not this package's (spec.md
// Non-goals).
//
// A failure here is escalated as InvariantViolation rather than
// retried: by the time applyBody runs, handleDataReply/commitAndDrain
// have already verified body.Height() is exactly the next expected height, so a
// rejection means either the Driver/Store detected corruption or this
// Coordinator's own bookkeeping is wrong. Neither is safe to paper over
// with a retry.
func (c *Coordinator) applyBody(body types.Body) error {
	if c.cfg.StoreFullBlocks {
		if err := c.store.Apply(body); err != nil {
			c.met.applyFailures.Mark(1)
			return wrapErr(ErrStoreApplyFailure, err, "store apply failed")
		}
	}
	if err := c.driver.Apply(body); err != nil {
		c.met.applyFailures.Mark(1)
		return wrapErr(ErrStoreApplyFailure, err, "state driver apply failed")
	}
	c.met.bodiesCommitted.Mark(1)
	return nil
}
