// util/json.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
)

// FindDuplicateJSONKeys returns the keys of the top-level JSON object in
// data that appear more than once.
func FindDuplicateJSONKeys(data []byte) []string {
	dec := json.NewDecoder(bytes.NewReader(data))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil
	}

	seen := make(map[string]bool)
	var dups []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		key, _ := tok.(string)
		if seen[key] {
			dups = append(dups, key)
		}
		seen[key] = true

		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			break
		}
	}
	return dups
}

// UnmarshalJSONBytes unmarshals b into out; syntax and type errors report
// the line and character where they occurred.
func UnmarshalJSONBytes[T any](b []byte, out *T) error {
	err := json.Unmarshal(b, out)
	if err == nil {
		return nil
	}

	position := func(offset int64) (line, char int) {
		line, char = 1, 1
		for _, c := range b[:min(int(offset), len(b))] {
			if c == '\n' {
				line, char = line+1, 1
			} else {
				char++
			}
		}
		return
	}

	switch jerr := err.(type) {
	case *json.SyntaxError:
		line, char := position(jerr.Offset)
		return fmt.Errorf("line %d, character %d: %w", line, char, jerr)
	case *json.UnmarshalTypeError:
		line, char := position(jerr.Offset)
		return fmt.Errorf("line %d, character %d: %s value invalid for %s (%s)",
			line, char, jerr.Value, jerr.Field, jerr.Type)
	default:
		return err
	}
}

// CheckJSON reports problems in a JSON object that is to be decoded into
// the struct type T: invalid syntax, repeated keys, keys that match no
// field of T, and values of the wrong kind.
func CheckJSON[T any](contents []byte, e *ErrorLogger) {
	var items map[string]any
	if err := UnmarshalJSONBytes(contents, &items); err != nil {
		e.Error(err)
		return
	}

	for _, k := range FindDuplicateJSONKeys(contents) {
		e.ErrorString("%q: setting given more than once", k)
	}

	// encoding/json matches field names case-insensitively.
	fields := make(map[string]reflect.Type)
	for _, f := range reflect.VisibleFields(reflect.TypeFor[T]()) {
		if !f.IsExported() || f.Anonymous {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup("json"); ok {
			if tag == "-" {
				continue
			}
			if n, _, _ := strings.Cut(tag, ","); n != "" {
				name = n
			}
		}
		fields[strings.ToLower(name)] = f.Type
	}

	for _, k := range slices.Sorted(maps.Keys(items)) {
		ty, ok := fields[strings.ToLower(k)]
		if !ok {
			e.ErrorString("%q: unknown setting. Is it misspelled?", k)
		} else if !jsonKindMatches(items[k], ty) {
			e.ErrorString("%s: %v: expected a %s value", k, items[k], ty)
		}
	}
}

func jsonKindMatches(v any, ty reflect.Type) bool {
	switch v.(type) {
	case nil:
		return true
	case bool:
		return ty.Kind() == reflect.Bool
	case string:
		return ty.Kind() == reflect.String
	case float64:
		switch ty.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64:
			return true
		}
		return false
	case []any:
		return ty.Kind() == reflect.Slice || ty.Kind() == reflect.Array
	case map[string]any:
		return ty.Kind() == reflect.Struct || ty.Kind() == reflect.Map
	default:
		return false
	}
}
