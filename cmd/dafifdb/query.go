// cmd/dafifdb/query.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mmp/dafif/dafif"
	"github.com/mmp/dafif/server"
)

var (
	ErrMissingArgument = errors.New("Query requires an argument")
	ErrUnknownKind     = errors.New("Unknown query kind")
	ErrUnknownType     = errors.New("Unknown record type")
	ErrUnknownValue    = errors.New("Unknown type value")
)

var recordTypes = map[string]server.RecordType{
	"airport":  server.AirportRecords,
	"runway":   server.RunwayRecords,
	"ils":      server.IlsRecords,
	"navaid":   server.NavaidRecords,
	"waypoint": server.WaypointRecords,
	"magvar":   server.MagVarRecords,
}

var queryKinds = map[string]server.QueryKind{
	"number":  server.ByNumber,
	"ident":   server.ByIdent,
	"key":     server.ByKey,
	"icao":    server.ByICAO,
	"range":   server.ByRange,
	"type":    server.ByType,
	"length":  server.ByLength,
	"freq":    server.ByFreq,
	"channel": server.ByChannel,
	"count":   server.Count,
}

// parseRequest builds a request for the given record type and query kind;
// arg is interpreted according to the kind.
func parseRequest(typ, kind, arg string) (server.Request, error) {
	rt, ok := recordTypes[strings.ToLower(typ)]
	if !ok {
		return server.Request{}, fmt.Errorf("%s: %w", typ, ErrUnknownType)
	}
	qk, ok := queryKinds[strings.ToLower(kind)]
	if !ok {
		return server.Request{}, fmt.Errorf("%s: %w", kind, ErrUnknownKind)
	}
	if qk == server.ByICAO && rt != server.AirportRecords {
		// Navaid and waypoint records only carry a two-letter ICAO region.
		return server.Request{}, fmt.Errorf("%s %s: %w", typ, kind, ErrUnknownKind)
	}
	req := server.Request{RecordType: rt, Kind: qk}
	if rt == server.MagVarRecords {
		return req, nil
	}

	needArg := func() error {
		if arg == "" {
			return fmt.Errorf("%s: %w", kind, ErrMissingArgument)
		}
		return nil
	}

	switch qk {
	case server.ByNumber:
		n, err := strconv.Atoi(arg)
		if err != nil {
			return req, err
		}
		req.RecordNumber = int32(n)

	case server.ByIdent, server.ByKey, server.ByICAO:
		if err := needArg(); err != nil {
			return req, err
		}
		req.Arg = server.StringValue(arg)

	case server.ByType:
		if err := needArg(); err != nil {
			return req, err
		}
		a, err := parseType(rt, arg)
		if err != nil {
			return req, err
		}
		req.Arg = a

	case server.ByLength:
		n, err := strconv.Atoi(arg)
		if err != nil {
			return req, err
		}
		req.Arg = server.IntValue(n)

	case server.ByFreq:
		f, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return req, err
		}
		req.Arg = server.FloatValue(f)

	case server.ByChannel:
		if err := needArg(); err != nil {
			return req, err
		}
		band := byte('X')
		if c := arg[len(arg)-1]; c == 'X' || c == 'x' || c == 'Y' || c == 'y' {
			band, arg = c&^0x20, arg[:len(arg)-1]
		}
		ch, err := strconv.Atoi(arg)
		if err != nil {
			return req, err
		}
		req.Arg = server.ChannelValue(ch, band)
	}

	return req, nil
}

type enum interface {
	~int
	String() string
}

// lookupEnum returns the value in [0, last] whose name matches s.
func lookupEnum[T enum](s string, last T) (T, error) {
	for v := T(0); v <= last; v++ {
		if strings.EqualFold(v.String(), s) {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%s: %w", s, ErrUnknownValue)
}

func parseType(rt server.RecordType, s string) (server.Arg, error) {
	var v int
	switch rt {
	case server.AirportRecords:
		t, err := lookupEnum(s, dafif.InactiveAirport)
		if err != nil {
			return server.Arg{}, err
		}
		v = int(t)
	case server.IlsRecords:
		t, err := lookupEnum(s, dafif.UnknownIls)
		if err != nil {
			return server.Arg{}, err
		}
		v = int(t)
	case server.NavaidRecords:
		t, err := lookupEnum(s, dafif.Dme)
		if err != nil {
			return server.Arg{}, err
		}
		v = int(t)
	case server.WaypointRecords:
		return server.StringValue(strings.ToUpper(s)), nil
	default:
		return server.Arg{}, fmt.Errorf("%s: %w", rt, ErrUnknownKind)
	}
	return server.IntValue(v), nil
}
