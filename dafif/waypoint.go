// dafif/waypoint.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package dafif

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/mmp/dafif/log"
	"github.com/mmp/dafif/record"
)

const (
	DefaultMaxWaypoints = 250000

	formatWaypoint = 1
)

type WaypointKey struct {
	Key
	Ident   string
	Country string
	State   string
	Type    string
}

// Waypoint is a fully decoded waypoint record.
type Waypoint struct {
	Id       string
	Ident    string
	Country  string
	State    string
	WAC      int
	Type     string
	Name     string
	Lat, Lon float64
	MagVar   float64
	ICAO     string
}

// DecodeWaypoint decodes a waypoint record.
func DecodeWaypoint(rec []byte) (Waypoint, error) {
	d := decoder{rec: rec}
	wp := Waypoint{
		Id:      keyString(waypointKey, rec),
		Ident:   d.str(waypointIdent),
		Country: d.str(waypointCountry),
		State:   d.str(waypointState),
		WAC:     d.integer(waypointWAC),
		Type:    d.str(waypointType),
		Name:    d.str(waypointName),
		Lat:     d.latitude(waypointLat),
		Lon:     d.longitude(waypointLon),
		MagVar:  d.magVar(waypointMagVar),
		ICAO:    d.str(waypointICAO),
	}
	return wp, d.err
}

// WaypointLoader indexes a waypoint file.
type WaypointLoader struct {
	Database[*WaypointKey]
}

// OpenWaypoints opens and loads the waypoint file at path.
func OpenWaypoints(ctx context.Context, path string, opts Options, lg *log.Logger) (*WaypointLoader, error) {
	src, err := record.OpenContext(ctx, path, RecordLength)
	if err != nil {
		return nil, err
	}
	wl, err := LoadWaypoints(src, opts, lg)
	if err != nil {
		src.Close()
		return nil, err
	}
	return wl, nil
}

func LoadWaypoints(src record.Source, opts Options, lg *log.Logger) (*WaypointLoader, error) {
	start := time.Now()
	if opts.MaxRecords == 0 {
		opts.MaxRecords = DefaultMaxWaypoints
	}

	wl := &WaypointLoader{}
	if err := wl.open(src, opts.MaxRecords, lg); err != nil {
		return nil, err
	}

	for n := 0; n < src.NumRecords(); n++ {
		rec, err := src.Record(n)
		if err != nil {
			return nil, err
		}
		if format, err := fieldFormat.Int(rec); err != nil || format != formatWaypoint {
			lg.Debugf("%s: record %d: skipping non-waypoint record", src.Name(), n)
			continue
		}
		if opts.Country != "" && waypointCountry.String(rec) != opts.Country {
			continue
		}

		wp, err := DecodeWaypoint(rec)
		if err != nil {
			return nil, &LoadError{Source: src.Name(), Record: n, Format: formatWaypoint, Err: err}
		}
		k := &WaypointKey{
			Key: Key{
				RecordIndex: n,
				RecordSize:  RecordLength,
				Id:          wp.Id,
				ICAO:        wp.ICAO,
				Lat:         wp.Lat,
				Lon:         wp.Lon,
			},
			Ident:   wp.Ident,
			Country: wp.Country,
			State:   wp.State,
			Type:    wp.Type,
		}
		if err := wl.add(k); err != nil {
			return nil, err
		}
	}

	wl.finish()

	lg.Info("loaded waypoints", slog.String("source", src.Name()), slog.Int("waypoints", wl.NumRecords()),
		slog.Duration("elapsed", time.Since(start)))

	return wl, nil
}

// QueryByIdent returns the waypoints with the given identifier.
func (wl *WaypointLoader) QueryByIdent(ident string) []Result[*WaypointKey] {
	return wl.rangeSort(wl.keys.FindAll(func(k *WaypointKey) int { return strings.Compare(k.Ident, ident) }))
}

// QueryByType returns the waypoints in range of the given type, e.g.
// "RP" for reporting points.
func (wl *WaypointLoader) QueryByType(t string) []Result[*WaypointKey] {
	return wl.scan(func(k *WaypointKey) bool { return k.Type == t })
}

// Waypoint decodes the full record for a waypoint key.
func (wl *WaypointLoader) Waypoint(k *WaypointKey) (Waypoint, error) {
	rec, err := wl.RecordBytes(k)
	if err != nil {
		return Waypoint{}, err
	}
	return DecodeWaypoint(rec)
}
