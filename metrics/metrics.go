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

// Package metrics provides the lightweight meter/timer/counter registry
// used across go-abey's subsystems (abey/downloader, abey/fetcher,
// abey/catchup, ...).
package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Meter counts events; it keeps no rate.
type Meter interface {
	Mark(n int64)
	Count() int64
}

type meter struct {
	count int64
}

func (m *meter) Mark(n int64) { atomic.AddInt64(&m.count, n) }
func (m *meter) Count() int64 { return atomic.LoadInt64(&m.count) }

// Timer records the number of events and their total duration.
type Timer interface {
	Update(d time.Duration)
	UpdateSince(t time.Time)
	Count() int64
}

type timer struct {
	count int64
	mu    sync.Mutex
	total time.Duration
}

func (t *timer) Update(d time.Duration) {
	atomic.AddInt64(&t.count, 1)
	t.mu.Lock()
	t.total += d
	t.mu.Unlock()
}
func (t *timer) UpdateSince(start time.Time) { t.Update(time.Since(start)) }
func (t *timer) Count() int64                { return atomic.LoadInt64(&t.count) }

// Counter is a simple monotonic/adjustable integer gauge.
type Counter interface {
	Inc(n int64)
	Dec(n int64)
	Count() int64
}

type counter struct{ count int64 }

func (c *counter) Inc(n int64) { atomic.AddInt64(&c.count, n) }
func (c *counter) Dec(n int64) { atomic.AddInt64(&c.count, -n) }
func (c *counter) Count() int64 { return atomic.LoadInt64(&c.count) }

// Registry keeps every named metric created through the NewRegistered*
// constructors, the way go-ethereum's metrics.DefaultRegistry does.
type Registry struct {
	mu sync.Mutex
	m  map[string]interface{}
}

// DefaultRegistry is the process-wide registry every NewRegistered* call
// feeds into unless an explicit Registry is passed.
var DefaultRegistry = &Registry{m: make(map[string]interface{})}

func (r *Registry) getOrRegister(name string, make func() interface{}) interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.m[name]; ok {
		return v
	}
	v := make()
	r.m[name] = v
	return v
}

// Get returns the metric registered under name, or nil.
func (r *Registry) Get(name string) interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.m[name]
}

// NewRegisteredMeter creates (or looks up) a Meter named name in r, or in
// DefaultRegistry when r is nil — matching every call site in the teacher
// tree, e.g. metrics.NewRegisteredMeter("abey/downloader/headers/in", nil).
func NewRegisteredMeter(name string, r *Registry) Meter {
	if r == nil {
		r = DefaultRegistry
	}
	return r.getOrRegister(name, func() interface{} { return &meter{} }).(Meter)
}

// NewRegisteredTimer creates (or looks up) a Timer named name in r.
func NewRegisteredTimer(name string, r *Registry) Timer {
	if r == nil {
		r = DefaultRegistry
	}
	return r.getOrRegister(name, func() interface{} { return &timer{} }).(Timer)
}

// NewRegisteredCounter creates (or looks up) a Counter named name in r.
func NewRegisteredCounter(name string, r *Registry) Counter {
	if r == nil {
		r = DefaultRegistry
	}
	return r.getOrRegister(name, func() interface{} { return &counter{} }).(Counter)
}
