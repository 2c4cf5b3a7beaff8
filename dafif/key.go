// dafif/key.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package dafif

import (
	gomath "math"

	"github.com/mmp/dafif/math"
)

// Key holds the fields common to every indexed entity: where its record
// lives in the source and where it is.
type Key struct {
	// RecordIndex is the number of the (first) record in the source.
	RecordIndex int
	// RecordSize is the size in bytes of the entity's record(s); paired
	// runway and ILS records are two records long.
	RecordSize int
	// Id is the entity's primary key string.
	Id       string
	ICAO     string
	Lat, Lon float64
}

func (k *Key) Base() *Key { return k }

// Keyed is implemented by pointers to all of the key types via the
// embedded Key.
type Keyed interface {
	Base() *Key
}

// Result is a single query match along with its squared distance in nm²
// from the reference point in effect when the query was made.
type Result[K Keyed] struct {
	Key     K
	RangeSq float64
}

// Range returns the distance to the match in nm.
func (r Result[K]) Range() float64 {
	return gomath.Sqrt(r.RangeSq)
}

// ResultKeys returns just the keys from a slice of results.
func ResultKeys[K Keyed](r []Result[K]) []K {
	keys := make([]K, len(r))
	for i, res := range r {
		keys[i] = res.Key
	}
	return keys
}

///////////////////////////////////////////////////////////////////////////
// Frequencies and channels

// FrequencyResolution is the granularity (in MHz) at which frequencies
// are compared. Frequencies are compared at 1 kHz, so 108.10 and 108.0999
// are equal.
const FrequencyResolution = 0.001

// CompareFrequency orders two frequencies, treating those that round to
// the same FrequencyResolution step as equal.
func CompareFrequency(a, b float64) int {
	qa, qb := math.Quantize(a, FrequencyResolution), math.Quantize(b, FrequencyResolution)
	if qa < qb {
		return -1
	} else if qa > qb {
		return 1
	}
	return 0
}

// Band is a TACAN channel band.
type Band byte

const (
	XBand Band = 'X'
	YBand Band = 'Y'
)

// SignedChannel returns the signed channel encoding used in keys: Y-band
// channels are negative.
func SignedChannel(channel int, band Band) int {
	channel = math.Abs(channel)
	if band == YBand {
		return -channel
	}
	return channel
}

///////////////////////////////////////////////////////////////////////////
// Types

type AirportType int

const (
	AnyAirport AirportType = iota
	CivilAirport
	JointAirport
	MilitaryAirport
	InactiveAirport
)

func (t AirportType) String() string {
	return [...]string{"Any", "Civil", "Joint", "Military", "Inactive"}[t]
}

func airportTypeFromCode(c string) (AirportType, bool) {
	switch c {
	case "A":
		return CivilAirport, true
	case "B":
		return JointAirport, true
	case "C":
		return MilitaryAirport, true
	case "D":
		return InactiveAirport, true
	default:
		return AnyAirport, false
	}
}

type IlsType int

const (
	AnyIls IlsType = iota
	Localizer
	Glideslope
	InnerMarker
	MiddleMarker
	OuterMarker
	Locator
	IlsDme
	BackcourseMarker
	UnknownIls
)

func (t IlsType) String() string {
	return [...]string{"Any", "Localizer", "Glideslope", "InnerMarker", "MiddleMarker", "OuterMarker",
		"Locator", "Dme", "BackcourseMarker", "Unknown"}[t]
}

func ilsTypeFromCode(c string) IlsType {
	switch c {
	case "Z":
		return Localizer
	case "G":
		return Glideslope
	case "I":
		return InnerMarker
	case "M":
		return MiddleMarker
	case "O":
		return OuterMarker
	case "L":
		return Locator
	case "D":
		return IlsDme
	case "B":
		return BackcourseMarker
	default:
		return UnknownIls
	}
}

type NavaidType int

const (
	AnyNavaid NavaidType = iota
	Vor
	Vortac
	Tacan
	VorDme
	Ndb
	NdbDme
	Dme
)

func (t NavaidType) String() string {
	return [...]string{"Any", "VOR", "VORTAC", "TACAN", "VOR-DME", "NDB", "NDB-DME", "DME"}[t]
}

func navaidTypeFromCode(c string) (NavaidType, bool) {
	switch c {
	case "1":
		return Vor, true
	case "2":
		return Vortac, true
	case "3":
		return Tacan, true
	case "4":
		return VorDme, true
	case "5":
		return Ndb, true
	case "7":
		return NdbDme, true
	case "9":
		return Dme, true
	default:
		return AnyNavaid, false
	}
}
