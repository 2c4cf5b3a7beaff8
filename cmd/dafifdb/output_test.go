// cmd/dafifdb/output_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mmp/dafif/dafif"
	"github.com/mmp/dafif/server"
)

func TestRecordMap(t *testing.T) {
	rw := dafif.Runway{
		Id:     "US00001 04L",
		Length: 8000,
		High:   dafif.RunwayEnd{Ident: "22R", Heading: 220},
		Low:    dafif.RunwayEnd{Ident: "04L", Heading: 40},
	}
	om := recordMap(rw)

	keys := om.Keys()
	want := []string{"Id", "AirportId", "Length", "Width", "Surface", "High", "Low"}
	if strings.Join(keys, ",") != strings.Join(want, ",") {
		t.Errorf("keys: got %v, want %v", keys, want)
	}

	text := strings.Join(textFields(om, ""), " ")
	for _, s := range []string{`Id="US00001 04L"`, "Length=8000", `High.Ident="22R"`, "Low.Heading=40"} {
		if !strings.Contains(text, s) {
			t.Errorf("%q: missing from %q", s, text)
		}
	}

	ap := recordMap(dafif.Airport{Id: "US00001", Type: dafif.CivilAirport})
	if v, _ := ap.Get("Type"); v != dafif.CivilAirport.String() {
		t.Errorf("Type: got %v, want %q", v, dafif.CivilAirport.String())
	}
}

func TestRecordMapJSON(t *testing.T) {
	b, err := json.Marshal(recordMap(dafif.RunwayEnd{Ident: "09", Elevation: 12}))
	if err != nil {
		t.Fatal(err)
	}
	if want := `{"Ident":"09","Lat":0,"Lon":0,"Elevation":12,"Heading":0}`; string(b) != want {
		t.Errorf("got %s, want %s", b, want)
	}
}

func TestWriteOutput(t *testing.T) {
	magvar := server.Request{RecordType: server.MagVarRecords, Kind: server.ByRange}
	resp := &server.Response{Count: 1, RecordSize: 7, Payload: []byte("W003.20")}

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		if err := writeOutput(&buf, "text", magvar, resp); err != nil {
			t.Fatal(err)
		}
		if got := buf.String(); got != "MagVar=-3.2\n" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		if err := writeOutput(&buf, "json", magvar, resp); err != nil {
			t.Fatal(err)
		}
		var recs []map[string]float64
		if err := json.Unmarshal(buf.Bytes(), &recs); err != nil {
			t.Fatalf("%s: %v", buf.String(), err)
		}
		if len(recs) != 1 || recs[0]["MagVar"] != -3.2 {
			t.Errorf("got %v", recs)
		}
	})

	t.Run("dump", func(t *testing.T) {
		var buf bytes.Buffer
		if err := writeOutput(&buf, "dump", magvar, resp); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "MagVar") {
			t.Errorf("dump output missing field: %q", buf.String())
		}
	})

	t.Run("count", func(t *testing.T) {
		var buf bytes.Buffer
		req := server.Request{RecordType: server.NavaidRecords, Kind: server.Count}
		if err := writeOutput(&buf, "text", req, &server.Response{Count: 1234}); err != nil {
			t.Fatal(err)
		}
		if got := buf.String(); got != "1234\n" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("bad format", func(t *testing.T) {
		if err := writeOutput(&bytes.Buffer{}, "xml", magvar, resp); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("bad record", func(t *testing.T) {
		bad := &server.Response{Count: 1, RecordSize: 7, Payload: []byte("Q003.20")}
		if err := writeOutput(&bytes.Buffer{}, "text", magvar, bad); err == nil {
			t.Error("expected error")
		}
	})
}
