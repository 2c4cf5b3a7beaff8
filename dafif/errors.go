// dafif/errors.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package dafif

import (
	"errors"
	"fmt"

	"github.com/mmp/dafif/record"
)

var (
	ErrCapacityExceeded    = errors.New("Database capacity exceeded")
	ErrMissingPairedRecord = errors.New("Missing paired record")

	// ErrOpen is returned (wrapped in an *OpenError) when the backing
	// source is unavailable.
	ErrOpen = record.ErrOpen
	// ErrRecordLength is reported when a source's record length doesn't
	// match RecordLength.
	ErrRecordLength = record.ErrRecordLen
)

type OpenError = record.OpenError

// LoadError reports a structural problem found while loading a source;
// it aborts the load.
type LoadError struct {
	Source string
	Record int
	Format int
	Err    error
}

func (e *LoadError) Error() string {
	if e.Format != 0 {
		return fmt.Sprintf("%s: record %d (format %d): %v", e.Source, e.Record, e.Format, e.Err)
	}
	return fmt.Sprintf("%s: record %d: %v", e.Source, e.Record, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
