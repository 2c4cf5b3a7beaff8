// log/stack.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package log

import (
	"log/slog"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

const (
	modulePrefix = "github.com/mmp/dafif/"
	maxFrames    = 16
)

type StackFrame struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Function string `json:"function"`
}

func (f StackFrame) String() string {
	return f.File + ":" + strconv.Itoa(f.Line) + ":" + f.Function
}

// Stack is the chain of callers recorded with a log message, innermost
// first. It is logged as a single "file:line:function < ..." string.
type Stack []StackFrame

func (s Stack) String() string {
	var b strings.Builder
	for i, f := range s {
		if i > 0 {
			b.WriteString(" < ")
		}
		b.WriteString(f.String())
	}
	return b.String()
}

func (s Stack) LogValue() slog.Value {
	return slog.StringValue(s.String())
}

// Callstack returns the callers of the logging method that called it,
// reusing fr's storage. Only frames in this module or in package main are
// kept; standard library and runtime frames are skipped.
func Callstack(fr Stack) Stack {
	var pcs [maxFrames]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	fr = fr[:0]
	for {
		frame, more := frames.Next()

		fn, ours := strings.CutPrefix(frame.Function, modulePrefix)
		if main, ok := strings.CutPrefix(frame.Function, "main."); ok {
			fn, ours = main, true
		}
		if ours {
			fr = append(fr, StackFrame{
				File:     filepath.Base(frame.File),
				Line:     frame.Line,
				Function: fn,
			})
		}

		if !more || frame.Function == "main.main" {
			return fr
		}
	}
}
