// math/flatearth.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import gomath "math"

const NMPerLatitude = 60

// Reference is a query center for the flat-earth range approximation.
// Distances are in nautical miles with one degree of latitude taken as
// 60nm and longitude scaled by the cosine of the reference latitude.
// There is no great-circle correction, so ranges are only accurate near
// the reference latitude.
type Reference struct {
	Lat, Lon float64
	// MaxRange is in nm; values <= 0 disable the range cutoff.
	MaxRange float64

	cosLat float64
}

func MakeReference(lat, lon, maxRange float64) Reference {
	return Reference{
		Lat:      lat,
		Lon:      lon,
		MaxRange: maxRange,
		cosLat:   gomath.Cos(Radians(lat)),
	}
}

// RangeSq returns the squared flat-earth distance in nm² from the
// reference point to the given position.
func (r Reference) RangeSq(lat, lon float64) float64 {
	cosLat := r.cosLat
	if cosLat == 0 && r.Lat == 0 {
		// Zero-value Reference; cos(0) is 1.
		cosLat = 1
	}
	dx := (lat - r.Lat) * NMPerLatitude
	dy := (lon - r.Lon) * NMPerLatitude * cosLat
	return dx*dx + dy*dy
}

// MaxRangeSq returns the squared range cutoff or +Inf if there is none.
func (r Reference) MaxRangeSq() float64 {
	if r.MaxRange <= 0 {
		return gomath.Inf(1)
	}
	return Sqr(r.MaxRange)
}

// InRange reports whether a squared range is within the cutoff.
func (r Reference) InRange(rangeSq float64) bool {
	return rangeSq <= r.MaxRangeSq()
}
