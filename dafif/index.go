// dafif/index.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package dafif

import (
	"slices"
	"sort"
)

// Index is an array of keys sorted by a comparator. Lookups are done with
// a match function that compares a key to the sought-for value; match
// must order keys consistently with the index's comparator.
type Index[K any] struct {
	keys []K
	cmp  func(a, b K) int
}

// NewIndex sorts keys in place and returns an index over them. Keys that
// compare equal keep their relative order.
func NewIndex[K any](keys []K, cmp func(a, b K) int) *Index[K] {
	slices.SortStableFunc(keys, cmp)
	return &Index[K]{keys: keys, cmp: cmp}
}

// FilterIndex returns an index over the keys for which keep returns true.
// The given slice is not modified.
func FilterIndex[K any](keys []K, keep func(K) bool, cmp func(a, b K) int) *Index[K] {
	var filtered []K
	for _, k := range keys {
		if keep(k) {
			filtered = append(filtered, k)
		}
	}
	return NewIndex(filtered, cmp)
}

func (ix *Index[K]) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.keys)
}

func (ix *Index[K]) At(i int) K {
	return ix.keys[i]
}

// Keys returns the sorted keys; the caller must not modify the slice.
func (ix *Index[K]) Keys() []K {
	if ix == nil {
		return nil
	}
	return ix.keys
}

// Sorted reports whether the keys are in comparator order.
func (ix *Index[K]) Sorted() bool {
	return ix == nil || slices.IsSortedFunc(ix.keys, ix.cmp)
}

// Find returns the first key for which match returns 0.
func (ix *Index[K]) Find(match func(K) int) (K, bool) {
	if ix == nil {
		var k K
		return k, false
	}
	i, ok := slices.BinarySearchFunc(ix.keys, struct{}{}, func(k K, _ struct{}) int { return match(k) })
	if !ok {
		var k K
		return k, false
	}
	return ix.keys[i], true
}

// FindAll returns the contiguous run of keys for which match returns 0,
// in index order. The returned slice aliases the index and is capped so
// that appending to it doesn't clobber the index.
func (ix *Index[K]) FindAll(match func(K) int) []K {
	if ix == nil {
		return nil
	}
	lo, ok := slices.BinarySearchFunc(ix.keys, struct{}{}, func(k K, _ struct{}) int { return match(k) })
	if !ok {
		return nil
	}
	rest := ix.keys[lo:]
	hi := lo + sort.Search(len(rest), func(i int) bool { return match(rest[i]) > 0 })
	return ix.keys[lo:hi:hi]
}
