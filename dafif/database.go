// dafif/database.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package dafif

import (
	"cmp"
	"slices"
	"sort"
	"strings"

	"github.com/mmp/dafif/log"
	"github.com/mmp/dafif/math"
	"github.com/mmp/dafif/record"
)

// RecordLength is the length in bytes of a DAFIF record, not including
// any line terminator.
const RecordLength = 142

// Options control how a source is loaded.
type Options struct {
	// Country, if set, restricts loading to records for the given
	// two-letter country code.
	Country string
	// MaxRecords caps the number of primary records; zero selects the
	// database's default.
	MaxRecords int
}

// Database holds the state common to all of the loaders: the record
// source, the primary key array sorted by key, the ICAO index, and the
// reference point and limit that apply to queries.
type Database[K Keyed] struct {
	lg         *log.Logger
	src        record.Source
	maxRecords int
	pending    []K

	keys *Index[K]
	icao *Index[K]

	ref   math.Reference
	limit int
}

func byId[K Keyed](a, b K) int {
	return strings.Compare(a.Base().Id, b.Base().Id)
}

func byICAO[K Keyed](a, b K) int {
	return strings.Compare(a.Base().ICAO, b.Base().ICAO)
}

func (db *Database[K]) open(src record.Source, maxRecords int, lg *log.Logger) error {
	if src == nil {
		return &OpenError{Path: "(nil)", Err: ErrOpen}
	}
	if src.RecordLen() != RecordLength {
		return &OpenError{Path: src.Name(), Err: ErrRecordLength}
	}
	db.src = src
	db.maxRecords = maxRecords
	db.lg = lg
	return nil
}

// add appends a primary key; it fails if doing so would exceed the
// database's capacity.
func (db *Database[K]) add(k K) error {
	if len(db.pending) >= db.maxRecords {
		return &LoadError{Source: db.src.Name(), Record: k.Base().RecordIndex, Err: ErrCapacityExceeded}
	}
	db.pending = append(db.pending, k)
	return nil
}

// finish sorts the primary keys and builds the ICAO index.
func (db *Database[K]) finish() {
	db.keys = NewIndex(db.pending, byId[K])
	db.icao = FilterIndex(db.keys.Keys(), func(k K) bool { return len(k.Base().ICAO) > 2 }, byICAO[K])
	db.pending = nil
}

func (db *Database[K]) Close() error {
	if db.src == nil {
		return nil
	}
	return db.src.Close()
}

func (db *Database[K]) Source() record.Source { return db.src }

// SetReference sets the point that ranges are measured from and the
// maximum range in nm of query results; maxRange <= 0 disables the range
// cutoff.
func (db *Database[K]) SetReference(lat, lon, maxRange float64) {
	db.ref = math.MakeReference(lat, lon, maxRange)
}

func (db *Database[K]) Reference() math.Reference { return db.ref }

// SetQueryLimit caps the number of results returned by a query; zero
// means no limit.
func (db *Database[K]) SetQueryLimit(n int) {
	db.limit = max(n, 0)
}

func (db *Database[K]) QueryLimit() int { return db.limit }

// RangeSq returns the flat-earth squared distance in nm² from the
// reference point.
func (db *Database[K]) RangeSq(lat, lon float64) float64 {
	return db.ref.RangeSq(lat, lon)
}

// NumRecords returns the number of primary keys.
func (db *Database[K]) NumRecords() int { return db.keys.Len() }

// Key returns the nth primary key in key order.
func (db *Database[K]) Key(n int) (K, bool) {
	if n < 0 || n >= db.keys.Len() {
		var k K
		return k, false
	}
	return db.keys.At(n), true
}

// Record returns a copy of the raw record(s) for the nth primary key.
func (db *Database[K]) Record(n int) ([]byte, error) {
	k, ok := db.Key(n)
	if !ok {
		return nil, record.ErrRecordRange
	}
	return db.RecordBytes(k)
}

// Keys returns the primary keys in key order; the slice must not be
// modified.
func (db *Database[K]) Keys() []K { return db.keys.Keys() }

// IndexSorted reports whether the primary array and the ICAO index are
// sorted.
func (db *Database[K]) IndexSorted() bool {
	return db.keys.Sorted() && db.icao.Sorted()
}

// RecordBytes returns a copy of the raw record(s) for a key.
func (db *Database[K]) RecordBytes(k Keyed) ([]byte, error) {
	return readRecords(db.src, k.Base())
}

func readRecords(src record.Source, k *Key) ([]byte, error) {
	n := max(k.RecordSize/src.RecordLen(), 1)
	b := make([]byte, 0, n*src.RecordLen())
	for i := range n {
		rec, err := src.Record(k.RecordIndex + i)
		if err != nil {
			return nil, err
		}
		b = append(b, rec...)
	}
	return b, nil
}

// QueryByKey returns the entity with the given primary key, if present,
// regardless of its range.
func (db *Database[K]) QueryByKey(id string) []Result[K] {
	k, ok := db.keys.Find(func(k K) int { return strings.Compare(k.Base().Id, id) })
	if !ok {
		return nil
	}
	return []Result[K]{{Key: k, RangeSq: db.ref.RangeSq(k.Base().Lat, k.Base().Lon)}}
}

// QueryByICAO returns the entities with the given ICAO identifier.
func (db *Database[K]) QueryByICAO(icao string) []Result[K] {
	return db.rangeSort(db.icao.FindAll(func(k K) int { return strings.Compare(k.Base().ICAO, icao) }))
}

// QueryByRange returns all of the entities within range.
func (db *Database[K]) QueryByRange() []Result[K] {
	return db.scan(func(K) bool { return true })
}

// scan returns the primary keys matching pred, range sorted.
func (db *Database[K]) scan(pred func(K) bool) []Result[K] {
	var cands []K
	maxSq := db.ref.MaxRangeSq()
	for _, k := range db.keys.Keys() {
		b := k.Base()
		if db.ref.RangeSq(b.Lat, b.Lon) <= maxSq && pred(k) {
			cands = append(cands, k)
		}
	}
	return db.rangeSort(cands)
}

func (db *Database[K]) rangeSort(cands []K) []Result[K] {
	return RangeSort(db.ref, db.limit, cands)
}

// RangeSort returns results for the candidates ordered by increasing
// range from ref, with entries beyond ref's maximum range dropped and at
// most limit results (if limit > 0).  Candidates at equal range keep
// their relative order.
func RangeSort[K Keyed](ref math.Reference, limit int, cands []K) []Result[K] {
	results := make([]Result[K], len(cands))
	for i, k := range cands {
		b := k.Base()
		results[i] = Result[K]{Key: k, RangeSq: ref.RangeSq(b.Lat, b.Lon)}
	}
	slices.SortStableFunc(results, func(a, b Result[K]) int { return cmp.Compare(a.RangeSq, b.RangeSq) })

	maxSq := ref.MaxRangeSq()
	results = results[:sort.Search(len(results), func(i int) bool { return results[i].RangeSq > maxSq })]
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}
