// dafif/navaid_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package dafif

import (
	"errors"
	"testing"

	"github.com/mmp/dafif/record"
)

func navaidRecord(ident, typ, country, freq, channel string, lat, lon float64) string {
	return makeRecord(formatNavaid,
		fv(navaidKey, padRight(ident, 4)+typ+country+"1"), fv(navaidName, ident+" NAVAID"),
		fv(navaidState, "IL"), fv(navaidWAC, "0123"), fv(navaidFreq, freq), fv(navaidChannel, channel),
		fv(navaidLat, formatLat(lat)), fv(navaidLon, formatLon(lon)), fv(navaidElev, "700"),
		fv(navaidMagVar, "W002.00"), fv(navaidRange, "130"), fv(navaidICAO, "K5"))
}

func testNavaidLines() []string {
	return []string{
		navaidRecord("ABCD", "5", "US", "350.000", "", 40+nm, -90),
		navaidRecord("ABC", "2", "US", "113.900", "086X", 40+3*nm, -90),
		makeRecord(formatRunway, fv(runwayKey, "US00001")),
		navaidRecord("AB", "3", "US", "", "017Y", 40+2*nm, -90),
		navaidRecord("ABC", "1", "CA", "113.900", "", 40+30*nm, -90),
	}
}

func loadTestNavaids(t *testing.T, opts Options) *NavaidLoader {
	t.Helper()
	src := record.MakeMemorySource("navaids", RecordLength, testNavaidLines()...)
	nl, err := LoadNavaids(src, opts, nil)
	if err != nil {
		t.Fatalf("LoadNavaids: %v", err)
	}
	return nl
}

func TestLoadNavaids(t *testing.T) {
	nl := loadTestNavaids(t, Options{})

	if nl.NumRecords() != 4 {
		t.Errorf("got %d navaids, expected 4", nl.NumRecords())
	}
	if !nl.IndexSorted() {
		t.Errorf("indices not sorted")
	}
	var ids []string
	for _, k := range nl.Keys() {
		ids = append(ids, k.Id)
	}
	if len(ids) != 4 || ids[0] != "AB  3US1" || ids[3] != "ABCD5US1" {
		t.Errorf("primary order %q", ids)
	}
}

func TestNavaidQueries(t *testing.T) {
	nl := loadTestNavaids(t, Options{})
	nl.SetReference(40, -90, 0)

	checkIds(t, "ident", nl.QueryByIdent("ABC"), "ABC 2US1", "ABC 1CA1")
	checkIds(t, "short ident", nl.QueryByIdent("AB"), "AB  3US1")
	checkIds(t, "long ident", nl.QueryByIdent("ABCD"), "ABCD5US1")
	checkIds(t, "missing ident", nl.QueryByIdent("XYZ"))
	checkIds(t, "key", nl.QueryByKey("ABC 1CA1"), "ABC 1CA1")

	checkIds(t, "freq", nl.QueryByFreq(113.9), "ABC 2US1", "ABC 1CA1")
	checkIds(t, "freq tolerance", nl.QueryByFreq(113.8999), "ABC 2US1", "ABC 1CA1")
	checkIds(t, "ndb freq", nl.QueryByFreq(350), "ABCD5US1")
	checkIds(t, "other freq", nl.QueryByFreq(113.95))

	checkIds(t, "y channel", nl.QueryByChannel(17, YBand), "AB  3US1")
	checkIds(t, "x channel", nl.QueryByChannel(86, XBand), "ABC 2US1")
	checkIds(t, "wrong band", nl.QueryByChannel(17, XBand))

	checkIds(t, "type", nl.QueryByType(Ndb), "ABCD5US1")
	checkIds(t, "any", nl.QueryByType(AnyNavaid), "ABCD5US1", "AB  3US1", "ABC 2US1", "ABC 1CA1")

	nl.SetReference(40, -90, 10)
	checkIds(t, "ident in range", nl.QueryByIdent("ABC"), "ABC 2US1")
	nl.SetQueryLimit(2)
	checkIds(t, "limited", nl.QueryByRange(), "ABCD5US1", "AB  3US1")
}

func TestNavaidCountryFilter(t *testing.T) {
	nl := loadTestNavaids(t, Options{Country: "CA"})
	checkIds(t, "ident", nl.QueryByIdent("ABC"), "ABC 1CA1")
	if nl.NumRecords() != 1 {
		t.Errorf("got %d navaids, expected 1", nl.NumRecords())
	}
}

func TestDecodeNavaid(t *testing.T) {
	nl := loadTestNavaids(t, Options{})

	r := nl.QueryByKey("ABC 2US1")
	if len(r) != 1 {
		t.Fatalf("navaid not found")
	}
	nav, err := nl.Navaid(r[0].Key)
	if err != nil {
		t.Fatal(err)
	}
	if nav.Ident != "ABC" || nav.Type != Vortac || nav.Country != "US" || nav.Name != "ABC NAVAID" ||
		nav.Freq != 113.9 || nav.Channel != 86 || nav.Range != 130 || nav.MagVar != -2 || nav.ICAO != "K5" {
		t.Errorf("navaid decoded as %+v", nav)
	}
}

func TestNavaidLoadErrors(t *testing.T) {
	_, err := LoadNavaids(record.MakeMemorySource("navaids", RecordLength, testNavaidLines()...),
		Options{MaxRecords: 3}, nil)
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Errorf("got %v, expected capacity error", err)
	}

	bad := navaidRecord("ABC", "6", "US", "113.900", "", 40, -90)
	_, err = LoadNavaids(record.MakeMemorySource("navaids", RecordLength, bad), Options{}, nil)
	var le *LoadError
	if !errors.Is(err, record.ErrBadField) || !errors.As(err, &le) || le.Record != 0 {
		t.Errorf("got %v, expected bad field error", err)
	}
}
