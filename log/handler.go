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

package log

import (
	"io"
	"sync"
)

// Handler dispatches log Records somewhere (a stream, a file, a filter).
type Handler interface {
	Log(r *Record) error
}

// FuncHandler turns a function into a Handler.
type FuncHandler func(r *Record) error

func (h FuncHandler) Log(r *Record) error { return h(r) }

// StreamHandler writes log records to wr, formatted with fmtr.
func StreamHandler(wr io.Writer, fmtr Format) Handler {
	h := FuncHandler(func(r *Record) error {
		_, err := wr.Write(fmtr.Format(r))
		return err
	})
	return LazyHandler(SyncHandler(h))
}

// SyncHandler synchronizes concurrent writes to h.
func SyncHandler(h Handler) Handler {
	var mu sync.Mutex
	return FuncHandler(func(r *Record) error {
		mu.Lock()
		defer mu.Unlock()
		return h.Log(r)
	})
}

// LazyHandler is a placeholder for the real implementation's lazy value
// evaluation; go-abey's catch-up subsystem never passes Lazy-wrapped
// context values, so this simply forwards.
func LazyHandler(h Handler) Handler { return h }

// LvlFilterHandler returns a Handler that only forwards records at or
// above the given level.
func LvlFilterHandler(maxLvl Lvl, h Handler) Handler {
	return FuncHandler(func(r *Record) error {
		if r.Lvl > maxLvl {
			return nil
		}
		return h.Log(r)
	})
}

// MultiHandler fans a record out to every handler in hs.
func MultiHandler(hs ...Handler) Handler {
	return FuncHandler(func(r *Record) error {
		for _, h := range hs {
			_ = h.Log(r)
		}
		return nil
	})
}

// DiscardHandler drops every record.
func DiscardHandler() Handler {
	return FuncHandler(func(*Record) error { return nil })
}

// swapHandler lets a Logger's handler be replaced after construction
// (root.SetHandler, per-child loggers).
type swapHandler struct {
	mu sync.Mutex
	h  Handler
}

func (s *swapHandler) Log(r *Record) error {
	s.mu.Lock()
	h := s.h
	s.mu.Unlock()
	if h == nil {
		return nil
	}
	return h.Log(r)
}

func (s *swapHandler) Swap(h Handler) {
	s.mu.Lock()
	s.h = h
	s.mu.Unlock()
}

func (s *swapHandler) Get() Handler {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.h
}
