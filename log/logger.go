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

// Package log provides the structured, leveled logger used across go-abey.
package log

import (
	"fmt"
	"os"
	"time"
)

// Lvl is a log level, ordered from most to least severe.
type Lvl int

const (
	LvlCrit Lvl = iota
	LvlError
	LvlWarn
	LvlInfo
	LvlDebug
	LvlTrace
)

func (l Lvl) String() string {
	switch l {
	case LvlTrace:
		return "trce"
	case LvlDebug:
		return "dbug"
	case LvlInfo:
		return "info"
	case LvlWarn:
		return "warn"
	case LvlError:
		return "eror"
	case LvlCrit:
		return "crit"
	default:
		return "unkn"
	}
}

// LvlFromString parses s into a Lvl, defaulting to LvlInfo on failure.
func LvlFromString(s string) Lvl {
	switch s {
	case "trace", "trce":
		return LvlTrace
	case "debug", "dbug":
		return LvlDebug
	case "warn":
		return LvlWarn
	case "error", "eror":
		return LvlError
	case "crit":
		return LvlCrit
	default:
		return LvlInfo
	}
}

// Record is a single log event captured by a Logger.
type Record struct {
	Time    time.Time
	Lvl     Lvl
	Msg     string
	Ctx     []interface{}
	Call    string
}

// Logger writes structured, key/value annotated log records.
type Logger interface {
	New(ctx ...interface{}) Logger

	Trace(msg string, ctx ...interface{})
	Debug(msg string, ctx ...interface{})
	Info(msg string, ctx ...interface{})
	Warn(msg string, ctx ...interface{})
	Error(msg string, ctx ...interface{})
	Crit(msg string, ctx ...interface{})

	GetHandler() Handler
	SetHandler(h Handler)
}

type logger struct {
	ctx []interface{}
	h   *swapHandler
}

func (l *logger) write(msg string, lvl Lvl, ctx []interface{}) {
	l.h.Log(&Record{
		Time: time.Now(),
		Lvl:  lvl,
		Msg:  msg,
		Ctx:  newContext(l.ctx, ctx),
	})
}

func (l *logger) New(ctx ...interface{}) Logger {
	child := &logger{newContext(l.ctx, ctx), new(swapHandler)}
	child.SetHandler(l.h)
	return child
}

func newContext(prefix []interface{}, suffix []interface{}) []interface{} {
	normalizedSuffix := normalize(suffix)
	newCtx := make([]interface{}, len(prefix)+len(normalizedSuffix))
	n := copy(newCtx, prefix)
	copy(newCtx[n:], normalizedSuffix)
	return newCtx
}

func normalize(ctx []interface{}) []interface{} {
	if len(ctx)%2 != 0 {
		ctx = append(ctx, nil, "lvl-mismatch-missing-value")
		copy(ctx[len(ctx)-2:], ctx[len(ctx)-3:])
		ctx[len(ctx)-3] = fmt.Sprintf("odd-context-key-%d", len(ctx)/2)
	}
	return ctx
}

func (l *logger) Trace(msg string, ctx ...interface{}) { l.write(msg, LvlTrace, ctx) }
func (l *logger) Debug(msg string, ctx ...interface{}) { l.write(msg, LvlDebug, ctx) }
func (l *logger) Info(msg string, ctx ...interface{})  { l.write(msg, LvlInfo, ctx) }
func (l *logger) Warn(msg string, ctx ...interface{})  { l.write(msg, LvlWarn, ctx) }
func (l *logger) Error(msg string, ctx ...interface{}) { l.write(msg, LvlError, ctx) }
func (l *logger) Crit(msg string, ctx ...interface{}) {
	l.write(msg, LvlCrit, ctx)
	os.Exit(1)
}

func (l *logger) GetHandler() Handler { return l.h.Get() }
func (l *logger) SetHandler(h Handler) { l.h.Swap(h) }

// New returns a new Logger with ctx appended to the root logger's context.
func New(ctx ...interface{}) Logger { return root.New(ctx...) }
