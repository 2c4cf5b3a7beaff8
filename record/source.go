// record/source.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package record provides access to DAFIF flat files: sequences of
// fixed-length ASCII records addressed by record number, and decoding of
// the typed fields within a record.
package record

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mmp/dafif/util"

	"github.com/klauspost/compress/zstd"
)

var (
	ErrOpen        = errors.New("Unable to open record source")
	ErrRecordRange = errors.New("Record number out of range")
	ErrRecordLen   = errors.New("Invalid record length")
)

// OpenError is returned when a record source cannot be opened.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return e.Path + ": " + ErrOpen.Error() + ": " + e.Err.Error()
}

func (e *OpenError) Unwrap() []error {
	return []error{ErrOpen, e.Err}
}

// Source provides random access to the fixed-length records of a flat
// file. Record returns a slice that is only valid until the next call;
// callers that keep it must copy it.
type Source interface {
	Name() string
	RecordLen() int
	NumRecords() int
	Record(n int) ([]byte, error)
	Close() error
}

// Records may be followed by a newline or CRLF; stride returns the
// distance between the starts of consecutive records given the bytes
// that follow the first one.
func stride(recordLen int, after []byte) int {
	if len(after) > 0 && after[0] == '\n' {
		return recordLen + 1
	} else if len(after) > 1 && after[0] == '\r' && after[1] == '\n' {
		return recordLen + 2
	}
	return recordLen
}

// countRecords returns the number of records in a source of the given
// size; tail holds its final size%stride bytes. The last record may be
// missing its line terminator or its trailing blanks; a tail holding
// only whitespace is not a record.
func countRecords(size int64, recordLen, stride int, tail []byte) int {
	n := int(size / int64(stride))
	if rem := size % int64(stride); rem >= int64(recordLen) || len(bytes.TrimSpace(tail)) > 0 {
		n++
	}
	return n
}

// padRecord returns a short final record padded with blanks.
func padRecord(b []byte, recordLen int) []byte {
	return Pad(bytes.TrimRight(b, "\r\n"), recordLen)
}

///////////////////////////////////////////////////////////////////////////
// MemorySource

// MemorySource is a Source over records held in memory.
type MemorySource struct {
	name      string
	data      []byte
	recordLen int
	stride    int
	n         int
}

func NewMemorySource(name string, data []byte, recordLen int) (*MemorySource, error) {
	if recordLen <= 0 {
		return nil, fmt.Errorf("%d: %w", recordLen, ErrRecordLen)
	}
	var after []byte
	if len(data) > recordLen {
		after = data[recordLen:]
	}
	st := stride(recordLen, after)
	return &MemorySource{
		name:      name,
		data:      data,
		recordLen: recordLen,
		stride:    st,
		n:         countRecords(int64(len(data)), recordLen, st, data[len(data)-len(data)%st:]),
	}, nil
}

// MakeMemorySource builds a newline-separated MemorySource from the given
// lines, space-padding or truncating each to recordLen.
func MakeMemorySource(name string, recordLen int, lines ...string) *MemorySource {
	var buf bytes.Buffer
	for _, l := range lines {
		buf.Write(Pad([]byte(l), recordLen))
		buf.WriteByte('\n')
	}
	ms, err := NewMemorySource(name, buf.Bytes(), recordLen)
	if err != nil {
		panic(err)
	}
	return ms
}

func (m *MemorySource) Name() string    { return m.name }
func (m *MemorySource) RecordLen() int  { return m.recordLen }
func (m *MemorySource) NumRecords() int { return m.n }
func (m *MemorySource) Close() error    { return nil }

func (m *MemorySource) Record(n int) ([]byte, error) {
	if n < 0 || n >= m.n {
		return nil, fmt.Errorf("%s: %d: %w", m.name, n, ErrRecordRange)
	}
	start := n * m.stride
	if end := start + m.recordLen; end <= len(m.data) {
		return m.data[start:end], nil
	}
	return padRecord(m.data[start:], m.recordLen), nil
}

///////////////////////////////////////////////////////////////////////////
// FileSource

// FileSource reads records on demand from an uncompressed local file.
type FileSource struct {
	f         *os.File
	recordLen int
	stride    int
	n         int
	buf       []byte
}

func (f *FileSource) Name() string    { return f.f.Name() }
func (f *FileSource) RecordLen() int  { return f.recordLen }
func (f *FileSource) NumRecords() int { return f.n }
func (f *FileSource) Close() error    { return f.f.Close() }

func (f *FileSource) Record(n int) ([]byte, error) {
	if n < 0 || n >= f.n {
		return nil, fmt.Errorf("%s: %d: %w", f.Name(), n, ErrRecordRange)
	}
	nr, err := f.f.ReadAt(f.buf, int64(n)*int64(f.stride))
	if err != nil && err != io.EOF {
		return nil, err
	}
	if nr < f.recordLen {
		return padRecord(f.buf[:nr], f.recordLen), nil
	}
	return f.buf, nil
}

func openFile(path string, recordLen int) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	head := make([]byte, recordLen+2)
	nr, err := f.ReadAt(head, 0)
	if err != nil && err != io.EOF {
		f.Close()
		return nil, err
	}
	var after []byte
	if nr > recordLen {
		after = head[recordLen:nr]
	}
	st := stride(recordLen, after)

	tail := make([]byte, fi.Size()%int64(st))
	if _, err := f.ReadAt(tail, fi.Size()-int64(len(tail))); err != nil && err != io.EOF {
		f.Close()
		return nil, err
	}

	return &FileSource{
		f:         f,
		recordLen: recordLen,
		stride:    st,
		n:         countRecords(fi.Size(), recordLen, st, tail),
		buf:       make([]byte, recordLen),
	}, nil
}

///////////////////////////////////////////////////////////////////////////

// Open opens the flat file at path as a Source of recordLen-byte records.
// Files with a .zst extension are decompressed into memory; gs:// and
// s3:// URLs are fetched from cloud storage. All failures are reported as
// an *OpenError.
func Open(path string, recordLen int) (Source, error) {
	return OpenContext(context.Background(), path, recordLen)
}

func OpenContext(ctx context.Context, path string, recordLen int) (Source, error) {
	if recordLen <= 0 {
		return nil, &OpenError{Path: path, Err: fmt.Errorf("%d: %w", recordLen, ErrRecordLen)}
	}

	if !util.IsRemotePath(path) && filepath.Ext(path) != ".zst" {
		fs, err := openFile(path, recordLen)
		if err != nil {
			return nil, &OpenError{Path: path, Err: err}
		}
		return fs, nil
	}

	var data []byte
	var err error
	if util.IsRemotePath(path) {
		data, err = util.FetchObject(ctx, path)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}

	if filepath.Ext(path) == ".zst" {
		if data, err = decompress(data); err != nil {
			return nil, &OpenError{Path: path, Err: err}
		}
	}

	ms, err := NewMemorySource(path, data, recordLen)
	if err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}
	return ms, nil
}

func decompress(data []byte) ([]byte, error) {
	zr, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	return zr.DecodeAll(data, nil)
}

// Pad returns b space-padded or truncated to n bytes.
func Pad(b []byte, n int) []byte {
	r := make([]byte, n)
	m := copy(r, b)
	for i := m; i < n; i++ {
		r[i] = ' '
	}
	return r
}
