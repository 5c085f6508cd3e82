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

// Contains the metrics collected by the catch-up subsystem, following
// the teacher's per-subsystem metrics file convention (see
// abey/downloader/metrics.go, abey/fetcher/metrics.go).

package catchup

import (
	"github.com/abeychain/go-abey/metrics"
)

// catchupMetrics bundles every meter/timer a Coordinator reports. Each
// Coordinator holds its own bundle, but every meter in it is looked up
// by a fixed name in the default registry, so all Coordinators in one
// process (tests spin up many) report into the same shared meters.
type catchupMetrics struct {
	runsStarted     metrics.Meter
	runsCompleted   metrics.Meter
	idxRepliesIn    metrics.Meter
	idxRequestsOut  metrics.Meter
	dataRepliesIn   metrics.Meter
	dataRequestsOut metrics.Meter
	bodiesCommitted metrics.Meter
	discoveryRetry  metrics.Meter
	applyFailures   metrics.Meter
	discoveryTimer  metrics.Timer

	protocolViolations metrics.Meter
}

func newCatchupMetrics() *catchupMetrics {
	return &catchupMetrics{
		runsStarted:     metrics.NewRegisteredMeter("abey/catchup/runs/started", nil),
		runsCompleted:   metrics.NewRegisteredMeter("abey/catchup/runs/completed", nil),
		idxRepliesIn:    metrics.NewRegisteredMeter("abey/catchup/index/replies/in", nil),
		idxRequestsOut:  metrics.NewRegisteredMeter("abey/catchup/index/requests/out", nil),
		dataRepliesIn:   metrics.NewRegisteredMeter("abey/catchup/data/replies/in", nil),
		dataRequestsOut: metrics.NewRegisteredMeter("abey/catchup/data/requests/out", nil),
		bodiesCommitted: metrics.NewRegisteredMeter("abey/catchup/bodies/committed", nil),
		discoveryRetry:  metrics.NewRegisteredMeter("abey/catchup/index/retries", nil),
		applyFailures:   metrics.NewRegisteredMeter("abey/catchup/apply/failures", nil),
		discoveryTimer:  metrics.NewRegisteredTimer("abey/catchup/discovery/duration", nil),

		protocolViolations: metrics.NewRegisteredMeter("abey/catchup/protocol/violations", nil),
	}
}
