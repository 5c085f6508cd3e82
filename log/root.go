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
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

var root = &logger{nil, new(swapHandler)}

func init() {
	usecolor := isatty.IsTerminal(os.Stderr.Fd())
	var out = os.Stderr
	if usecolor {
		root.SetHandler(StreamHandler(colorable.NewColorable(out), TerminalFormat(true)))
	} else {
		root.SetHandler(StreamHandler(out, TerminalFormat(false)))
	}
}

// Root returns the root logger.
func Root() Logger { return root }

// PrintOrigins toggles whether call-site info is attached; kept for
// interface parity with the teacher's usage, go-abey's minimal renderer
// doesn't surface it today.
func PrintOrigins(bool) {}

func Trace(msg string, ctx ...interface{}) { root.Trace(msg, ctx...) }
func Debug(msg string, ctx ...interface{}) { root.Debug(msg, ctx...) }
func Info(msg string, ctx ...interface{})  { root.Info(msg, ctx...) }
func Warn(msg string, ctx ...interface{})  { root.Warn(msg, ctx...) }
func Error(msg string, ctx ...interface{}) { root.Error(msg, ctx...) }
func Crit(msg string, ctx ...interface{})  { root.Crit(msg, ctx...) }
