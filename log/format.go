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
	"bytes"
	"fmt"
)

// Format turns a Record into bytes ready to write to a stream.
type Format interface {
	Format(r *Record) []byte
}

type formatFunc func(*Record) []byte

func (f formatFunc) Format(r *Record) []byte { return f(r) }

var (
	lvlColor = map[Lvl]int{
		LvlCrit:  35,
		LvlError: 31,
		LvlWarn:  33,
		LvlInfo:  32,
		LvlDebug: 36,
		LvlTrace: 34,
	}
)

// TerminalFormat renders records the way an interactive go-abey node does:
// colorized level, bracketed timestamp, message, then "k=v" pairs. Colorization is
// only applied when usecolor is true (the caller is expected to gate this
// on isatty, as cmd/gabey does).
func TerminalFormat(usecolor bool) Format {
	return formatFunc(func(r *Record) []byte {
		var b bytes.Buffer
		ts := r.Time.Format("01-02|15:04:05.000")
		if usecolor {
			color := lvlColor[r.Lvl]
			fmt.Fprintf(&b, "\x1b[%dm%s\x1b[0m[%s] %s", color, r.Lvl.String(), ts, r.Msg)
		} else {
			fmt.Fprintf(&b, "%s[%s] %s", r.Lvl.String(), ts, r.Msg)
		}
		for i := 0; i < len(r.Ctx); i += 2 {
			fmt.Fprintf(&b, " %v=%v", r.Ctx[i], r.Ctx[i+1])
		}
		b.WriteByte('\n')
		return b.Bytes()
	})
}

// LogfmtFormat renders records as logfmt (key=value, no color), suited to
// log aggregation pipelines.
func LogfmtFormat() Format {
	return formatFunc(func(r *Record) []byte {
		var b bytes.Buffer
		fmt.Fprintf(&b, "t=%s lvl=%s msg=%q", r.Time.Format("2006-01-02T15:04:05.000Z0700"), r.Lvl, r.Msg)
		for i := 0; i < len(r.Ctx); i += 2 {
			fmt.Fprintf(&b, " %v=%q", r.Ctx[i], fmt.Sprintf("%v", r.Ctx[i+1]))
		}
		b.WriteByte('\n')
		return b.Bytes()
	})
}
