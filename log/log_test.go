// log/log_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package log

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	for _, tc := range []struct {
		s    string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
	} {
		if got := ParseLevel(tc.s); got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, expected %v", tc.s, got, tc.want)
		}
	}
}

func TestParseLevelInvalid(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	stderr := os.Stderr
	os.Stderr = w
	lvl := ParseLevel("verbose")
	os.Stderr = stderr
	w.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if lvl != slog.LevelInfo {
		t.Errorf("expected LevelInfo for an unknown level, got %v", lvl)
	}
	if string(out) != "verbose: invalid log level\n" {
		t.Errorf("unexpected stderr output %q", out)
	}
}

func TestNilLogger(t *testing.T) {
	var lg *Logger
	// None of these should crash.
	lg.Debug("debug")
	lg.Debugf("debug %d", 1)
	lg.Info("info")
	lg.Infof("info %d", 1)
	if lg.With("a", 1) != nil {
		t.Errorf("With on a nil Logger should give a nil Logger")
	}
}

func TestNewWritesLogFile(t *testing.T) {
	dir := t.TempDir()
	lg := New(false, "info", dir)
	lg.Info("loaded airports", slog.Int("count", 12))

	b, err := os.ReadFile(filepath.Join(dir, "dafif.slog"))
	if err != nil {
		t.Fatalf("unable to read log file: %v", err)
	}
	if !strings.Contains(string(b), "loaded airports") {
		t.Errorf("log file is missing the logged message")
	}
	if lg.LogFile != filepath.Join(dir, "dafif.slog") {
		t.Errorf("unexpected log file path %q", lg.LogFile)
	}
}

func TestCallstack(t *testing.T) {
	fr := func() Stack { return Callstack(nil) }()
	if len(fr) == 0 {
		t.Fatalf("empty call stack")
	}
	if fr[0].File != "log_test.go" || fr[0].Function != "log.TestCallstack" {
		t.Errorf("expected first frame in log.TestCallstack, got %s", fr[0])
	}
	// The testing package's frames are skipped.
	for _, f := range fr {
		if strings.HasPrefix(f.Function, "testing.") {
			t.Errorf("unexpected frame %s", f)
		}
	}
}

func TestStackLogValue(t *testing.T) {
	s := Stack{{File: "airport.go", Line: 12, Function: "dafif.LoadAirports"},
		{File: "main.go", Line: 3, Function: "main"}}
	if got, want := s.LogValue().String(), "airport.go:12:dafif.LoadAirports < main.go:3:main"; got != want {
		t.Errorf("got %q, expected %q", got, want)
	}
	if len(Stack(nil).String()) != 0 {
		t.Errorf("expected an empty string for an empty stack")
	}
}
