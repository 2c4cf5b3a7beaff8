// util/json_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"slices"
	"strings"
	"testing"
)

func TestFindDuplicateJSONKeys(t *testing.T) {
	tests := []struct {
		name     string
		json     string
		expected []string
	}{
		{name: "no duplicates", json: `{"a": 1, "b": 2, "c": 3}`},
		{name: "duplicate", json: `{"a": 1, "b": 2, "a": 3}`, expected: []string{"a"}},
		{name: "nested keys ignored", json: `{"outer": {"inner": 1, "inner": 2}}`},
		{name: "multiple", json: `{"a": 1, "a": 2, "b": [1, 2], "b": {"x": 1}}`, expected: []string{"a", "b"}},
		{name: "not an object", json: `[1, 2, 3]`},
		{name: "malformed", json: `{"a": 1, "b"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := FindDuplicateJSONKeys([]byte(tt.json)); !slices.Equal(result, tt.expected) {
				t.Errorf("got %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestUnmarshalJSONBytes(t *testing.T) {
	var v struct{ Port int }
	if err := UnmarshalJSONBytes([]byte(`{"Port": 6510}`), &v); err != nil || v.Port != 6510 {
		t.Fatalf("got %+v, %v", v, err)
	}

	err := UnmarshalJSONBytes([]byte("{\n  \"Port\": \"x\"\n}"), &v)
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("type error: got %v", err)
	}

	err = UnmarshalJSONBytes([]byte("{\n\n  \"Port\": ,\n}"), &v)
	if err == nil || !strings.Contains(err.Error(), "line 3") {
		t.Errorf("syntax error: got %v", err)
	}
}

func TestCheckJSON(t *testing.T) {
	type settings struct {
		Name    string
		Port    int
		Verbose bool
		Files   []string
		Renamed string `json:"alias"`
		Hidden  string `json:"-"`
	}

	tests := []struct {
		name   string
		json   string
		errors []string
	}{
		{name: "ok", json: `{"Name": "x", "port": 1, "Verbose": true, "Files": ["a"], "alias": "y"}`},
		{name: "null", json: `{"Name": null}`},
		{name: "unknown", json: `{"Nmae": "x"}`, errors: []string{`"Nmae": unknown setting`}},
		{name: "tagged name", json: `{"Renamed": "x"}`, errors: []string{`"Renamed": unknown setting`}},
		{name: "ignored field", json: `{"Hidden": "x"}`, errors: []string{`"Hidden": unknown setting`}},
		{name: "wrong kind", json: `{"Port": "6510", "Verbose": 1}`, errors: []string{"Port: 6510", "Verbose: 1"}},
		{name: "repeated", json: `{"Port": 1, "Port": 2}`, errors: []string{`"Port": setting given more than once`}},
		{name: "syntax", json: `{"Port": }`, errors: []string{"line 1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e ErrorLogger
			CheckJSON[settings]([]byte(tt.json), &e)
			if len(tt.errors) == 0 && e.HaveErrors() {
				t.Errorf("unexpected errors: %s", e.String())
			}
			for _, s := range tt.errors {
				if !strings.Contains(e.String(), s) {
					t.Errorf("%q: not found in errors %q", s, e.String())
				}
			}
		})
	}
}
