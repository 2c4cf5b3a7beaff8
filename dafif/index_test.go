// dafif/index_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package dafif

import (
	"cmp"
	"slices"
	"testing"

	"github.com/mmp/dafif/math"
)

func TestIndex(t *testing.T) {
	ix := NewIndex([]int{5, 3, 9, 3, 1, 3, 7}, cmp.Compare[int])
	if !ix.Sorted() || ix.Len() != 7 {
		t.Fatalf("index %v not sorted", ix.Keys())
	}

	match := func(v int) func(int) int {
		return func(k int) int { return cmp.Compare(k, v) }
	}
	for _, test := range []struct {
		v     int
		count int
	}{
		{3, 3}, {1, 1}, {9, 1}, {4, 0}, {0, 0}, {10, 0},
	} {
		all := ix.FindAll(match(test.v))
		if len(all) != test.count {
			t.Errorf("FindAll(%d): got %v, expected %d", test.v, all, test.count)
		}
		for _, v := range all {
			if v != test.v {
				t.Errorf("FindAll(%d): got %d", test.v, v)
			}
		}
		if v, ok := ix.Find(match(test.v)); ok != (test.count > 0) || (ok && v != test.v) {
			t.Errorf("Find(%d): got %d, %v", test.v, v, ok)
		}
	}

	// Appending to a result mustn't disturb the index.
	threes := ix.FindAll(match(3))
	_ = append(threes, 100)
	if !slices.Equal(ix.Keys(), []int{1, 3, 3, 3, 5, 7, 9}) {
		t.Errorf("index modified: %v", ix.Keys())
	}

	odd := FilterIndex(ix.Keys(), func(v int) bool { return v > 4 }, cmp.Compare[int])
	if !slices.Equal(odd.Keys(), []int{5, 7, 9}) {
		t.Errorf("filtered index: %v", odd.Keys())
	}

	var empty *Index[int]
	if empty.Len() != 0 || empty.FindAll(match(1)) != nil || !empty.Sorted() {
		t.Errorf("nil index misbehaves")
	}
	if _, ok := empty.Find(match(1)); ok {
		t.Errorf("nil index found a key")
	}
}

func TestRangeSort(t *testing.T) {
	keys := []*WaypointKey{
		{Key: Key{Id: "far", Lat: 0, Lon: 2}},
		{Key: Key{Id: "tie1", Lat: 1, Lon: 0}},
		{Key: Key{Id: "near", Lat: 0, Lon: 0.5}},
		{Key: Key{Id: "tie2", Lat: -1, Lon: 0}},
	}
	ref := math.MakeReference(0, 0, 0)

	checkIds(t, "all", RangeSort(ref, 0, keys), "near", "tie1", "tie2", "far")
	checkIds(t, "limited", RangeSort(ref, 2, keys), "near", "tie1")
	checkIds(t, "in range", RangeSort(math.MakeReference(0, 0, 60), 0, keys), "near", "tie1", "tie2")
	checkIds(t, "none", RangeSort(ref, 0, []*WaypointKey(nil)))

	if keys[0].Id != "far" {
		t.Errorf("candidates reordered")
	}
}

func TestCompareFrequency(t *testing.T) {
	for _, test := range []struct {
		a, b     float64
		expected int
	}{
		{108.10, 108.0999, 0},
		{108.10, 108.1004, 0},
		{108.10, 108.15, -1},
		{108.100, 108.101, -1},
		{108.15, 108.10, 1},
		{113.9, 113.90, 0},
		{0, 0, 0},
	} {
		if c := CompareFrequency(test.a, test.b); c != test.expected {
			t.Errorf("CompareFrequency(%f, %f) = %d, expected %d", test.a, test.b, c, test.expected)
		}
	}
}

func TestSignedChannel(t *testing.T) {
	if SignedChannel(17, YBand) != -17 || SignedChannel(17, XBand) != 17 || SignedChannel(-17, XBand) != 17 {
		t.Errorf("unexpected channel encoding")
	}
}
