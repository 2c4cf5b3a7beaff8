// dafif/layout.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package dafif

import (
	"strings"

	"github.com/mmp/dafif/record"
)

// Record format codes, stored in the first two bytes of each record.
const (
	formatAirport       = 1
	formatRunway        = 2
	formatRunwayLow     = 3
	formatArrestingGear = 4
	formatIls           = 5
	formatIlsLocation   = 6
)

var fieldFormat = record.Field{Offset: 0, Len: 2}

// Airport records
var (
	airportKey     = record.Field{Offset: 3, Len: 7}
	airportICAO    = record.Field{Offset: 10, Len: 4}
	airportName    = record.Field{Offset: 14, Len: 38}
	airportType    = record.Field{Offset: 52, Len: 1}
	airportCountry = record.Field{Offset: 53, Len: 2}
	airportState   = record.Field{Offset: 55, Len: 2}
	airportWAC     = record.Field{Offset: 57, Len: 4}
	airportLat     = record.Field{Offset: 61, Len: 9}
	airportLon     = record.Field{Offset: 70, Len: 10}
	airportElev    = record.Field{Offset: 80, Len: 6}
	airportMagVar  = record.Field{Offset: 86, Len: 7}
)

// Runway records come in pairs: the first describes the runway and its
// high end, the second its low end. The runway key is the airport key
// followed by the high and low end identifiers.
var (
	runwayKey        = record.Field{Offset: 3, Len: 13}
	runwayAirportKey = record.Field{Offset: 3, Len: 7}
	runwayHighIdent  = record.Field{Offset: 10, Len: 3}
	runwayLowIdent   = record.Field{Offset: 13, Len: 3}
	runwayLength     = record.Field{Offset: 16, Len: 5}
	runwayWidth      = record.Field{Offset: 21, Len: 4}
	runwaySurface    = record.Field{Offset: 25, Len: 3}
	runwayHighLat    = record.Field{Offset: 28, Len: 9}
	runwayHighLon    = record.Field{Offset: 37, Len: 10}
	runwayHighElev   = record.Field{Offset: 47, Len: 6}
	runwayHighHdg    = record.Field{Offset: 53, Len: 5}

	runwayLowLat  = record.Field{Offset: 16, Len: 9}
	runwayLowLon  = record.Field{Offset: 25, Len: 10}
	runwayLowElev = record.Field{Offset: 35, Len: 6}
	runwayLowHdg  = record.Field{Offset: 41, Len: 5}
)

// ILS component records are paired as well. The ILS key is the runway
// key, the runway end, and the component type code:
//
//	Z localizer, G glideslope, I/M/O inner/middle/outer marker,
//	L locator, D DME, B backcourse marker
var (
	ilsKey       = record.Field{Offset: 3, Len: 17}
	ilsRunwayKey = record.Field{Offset: 3, Len: 13}
	ilsEnd       = record.Field{Offset: 16, Len: 3}
	ilsType      = record.Field{Offset: 19, Len: 1}
	ilsIdent     = record.Field{Offset: 20, Len: 4}
	ilsFreq      = record.Field{Offset: 24, Len: 7}
	ilsChannel   = record.Field{Offset: 31, Len: 4}
	ilsName      = record.Field{Offset: 35, Len: 38}

	ilsLat    = record.Field{Offset: 20, Len: 9}
	ilsLon    = record.Field{Offset: 29, Len: 10}
	ilsElev   = record.Field{Offset: 39, Len: 6}
	ilsSlope  = record.Field{Offset: 45, Len: 5}
	ilsMagVar = record.Field{Offset: 50, Len: 7}
)

// Navaid records. The key is the ident, the type code, the country, and
// a disambiguating key code.
var (
	navaidKey     = record.Field{Offset: 3, Len: 8}
	navaidIdent   = record.Field{Offset: 3, Len: 4}
	navaidType    = record.Field{Offset: 7, Len: 1}
	navaidCountry = record.Field{Offset: 8, Len: 2}
	navaidName    = record.Field{Offset: 11, Len: 38}
	navaidState   = record.Field{Offset: 49, Len: 2}
	navaidWAC     = record.Field{Offset: 51, Len: 4}
	navaidFreq    = record.Field{Offset: 55, Len: 7}
	navaidChannel = record.Field{Offset: 62, Len: 4}
	navaidLat     = record.Field{Offset: 66, Len: 9}
	navaidLon     = record.Field{Offset: 75, Len: 10}
	navaidElev    = record.Field{Offset: 85, Len: 6}
	navaidMagVar  = record.Field{Offset: 91, Len: 7}
	navaidRange   = record.Field{Offset: 98, Len: 3}
	navaidICAO    = record.Field{Offset: 101, Len: 2}
)

// Waypoint records. The key is the ident, the country, and the state.
var (
	waypointKey     = record.Field{Offset: 3, Len: 9}
	waypointIdent   = record.Field{Offset: 3, Len: 5}
	waypointCountry = record.Field{Offset: 8, Len: 2}
	waypointState   = record.Field{Offset: 10, Len: 2}
	waypointWAC     = record.Field{Offset: 12, Len: 4}
	waypointType    = record.Field{Offset: 16, Len: 2}
	waypointName    = record.Field{Offset: 18, Len: 38}
	waypointLat     = record.Field{Offset: 56, Len: 9}
	waypointLon     = record.Field{Offset: 65, Len: 10}
	waypointMagVar  = record.Field{Offset: 75, Len: 7}
	waypointICAO    = record.Field{Offset: 82, Len: 2}
)

// keyString returns a key field with trailing padding removed; interior
// padding is kept so that keys sort by their leading components.
func keyString(f record.Field, rec []byte) string {
	return strings.TrimRight(string(f.Bytes(rec)), " ")
}

// decoder parses a sequence of fields from a record, keeping the first
// error encountered.
type decoder struct {
	rec []byte
	err error
}

func (d *decoder) str(f record.Field) string {
	return f.String(d.rec)
}

func (d *decoder) integer(f record.Field) int {
	if d.err != nil {
		return 0
	}
	v, err := f.Int(d.rec)
	d.err = err
	return v
}

func (d *decoder) float(f record.Field) float64 {
	if d.err != nil {
		return 0
	}
	v, err := f.Float(d.rec)
	d.err = err
	return v
}

func (d *decoder) latitude(f record.Field) float64 {
	if d.err != nil {
		return 0
	}
	v, err := f.Latitude(d.rec)
	d.err = err
	return v
}

func (d *decoder) longitude(f record.Field) float64 {
	if d.err != nil {
		return 0
	}
	v, err := f.Longitude(d.rec)
	d.err = err
	return v
}

func (d *decoder) channel(f record.Field) int {
	if d.err != nil {
		return 0
	}
	v, err := f.Channel(d.rec)
	d.err = err
	return v
}

func (d *decoder) magVar(f record.Field) float64 {
	if d.err != nil {
		return 0
	}
	v, err := f.MagVar(d.rec)
	d.err = err
	return v
}
