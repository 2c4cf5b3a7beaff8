// cmd/dafifdb/output.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/mmp/dafif/dafif"
	"github.com/mmp/dafif/record"
	"github.com/mmp/dafif/server"

	"github.com/goforj/godump"
	"github.com/iancoleman/orderedmap"
)

type MagVar struct {
	MagVar float64
}

// decodeRecords decodes the records in a response according to the
// request's record type.
func decodeRecords(rt server.RecordType, resp *server.Response) ([]any, error) {
	var recs []any
	for _, rec := range resp.Records() {
		var v any
		var err error
		switch rt {
		case server.AirportRecords:
			v, err = dafif.DecodeAirport(rec)
		case server.RunwayRecords:
			v, err = dafif.DecodeRunway(rec)
		case server.IlsRecords:
			v, err = dafif.DecodeIls(rec)
		case server.NavaidRecords:
			v, err = dafif.DecodeNavaid(rec)
		case server.WaypointRecords:
			v, err = dafif.DecodeWaypoint(rec)
		case server.MagVarRecords:
			var mv float64
			mv, err = record.Field{Offset: 0, Len: len(rec)}.MagVar(rec)
			v = MagVar{MagVar: mv}
		}
		if err != nil {
			return nil, err
		}
		recs = append(recs, v)
	}
	return recs, nil
}

// recordMap returns the exported fields of a decoded record in
// declaration order. Nested structs become nested maps and enumerants
// are given by name.
func recordMap(v any) *orderedmap.OrderedMap {
	om := orderedmap.New()
	rv := reflect.ValueOf(v)
	rt := rv.Type()
	for i := range rt.NumField() {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		fv := rv.Field(i).Interface()
		if s, ok := fv.(fmt.Stringer); ok {
			om.Set(f.Name, s.String())
		} else if rv.Field(i).Kind() == reflect.Struct {
			om.Set(f.Name, recordMap(fv))
		} else {
			om.Set(f.Name, fv)
		}
	}
	return om
}

func textFields(om *orderedmap.OrderedMap, prefix string) []string {
	var fields []string
	for _, k := range om.Keys() {
		v, _ := om.Get(k)
		if sub, ok := v.(*orderedmap.OrderedMap); ok {
			fields = append(fields, textFields(sub, prefix+k+".")...)
		} else if s, ok := v.(string); ok {
			fields = append(fields, fmt.Sprintf("%s%s=%q", prefix, k, s))
		} else {
			fields = append(fields, fmt.Sprintf("%s%s=%v", prefix, k, v))
		}
	}
	return fields
}

func writeOutput(w io.Writer, format string, req server.Request, resp *server.Response) error {
	if req.Kind == server.Count && req.RecordType != server.MagVarRecords {
		_, err := fmt.Fprintln(w, resp.Count)
		return err
	}

	recs, err := decodeRecords(req.RecordType, resp)
	if err != nil {
		return err
	}

	switch format {
	case "text":
		for _, r := range recs {
			if _, err := fmt.Fprintln(w, strings.Join(textFields(recordMap(r), ""), " ")); err != nil {
				return err
			}
		}

	case "json":
		maps := make([]*orderedmap.OrderedMap, len(recs))
		for i, r := range recs {
			maps[i] = recordMap(r)
		}
		b, err := json.MarshalIndent(maps, "", "  ")
		if err != nil {
			return err
		}
		if _, err := w.Write(append(b, '\n')); err != nil {
			return err
		}

	case "dump":
		godump.Fdump(w, recs...)

	default:
		return fmt.Errorf("%s: unknown output format", format)
	}
	return nil
}
