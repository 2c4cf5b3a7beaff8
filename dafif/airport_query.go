// dafif/airport_query.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package dafif

import (
	"slices"
	"strings"
)

// Airport key lengths; runway keys start with the airport key and ILS
// keys with the runway key.
const (
	AirportKeyLength = 7
	RunwayKeyLength  = 13
)

// QueryByType returns the airports of the given type (AnyAirport
// matches all) within range.
func (al *AirportLoader) QueryByType(t AirportType) []Result[*AirportKey] {
	return al.QueryAirport(t, 0)
}

// QueryByLength returns the airports within range that have a runway at
// least minLength feet long.
func (al *AirportLoader) QueryByLength(minLength int) []Result[*AirportKey] {
	return al.QueryAirport(AnyAirport, minLength)
}

// QueryAirport returns the airports of the given type that have at least
// one runway at least minLength feet long; minLength == 0 doesn't
// require any runways.
func (al *AirportLoader) QueryAirport(t AirportType, minLength int) []Result[*AirportKey] {
	return al.scan(func(ap *AirportKey) bool {
		if t != AnyAirport && ap.Type != t {
			return false
		}
		return minLength == 0 || slices.ContainsFunc(ap.Runways, func(rw RunwayKey) bool {
			return rw.Length >= minLength
		})
	})
}

// QueryByFreq returns the airports with an ILS component on the given
// frequency.
func (al *AirportLoader) QueryByFreq(freq float64) []Result[*AirportKey] {
	return al.scan(func(ap *AirportKey) bool {
		return hasIls(ap, func(ils *IlsKey) bool { return CompareFrequency(ils.Freq, freq) == 0 })
	})
}

// QueryByChannel returns the airports with an ILS component on the given
// channel.
func (al *AirportLoader) QueryByChannel(channel int, band Band) []Result[*AirportKey] {
	ch := SignedChannel(channel, band)
	return al.scan(func(ap *AirportKey) bool {
		return hasIls(ap, func(ils *IlsKey) bool { return ils.Channel == ch })
	})
}

func hasIls(ap *AirportKey, pred func(*IlsKey) bool) bool {
	for i := range ap.Runways {
		for j := range ap.Runways[i].Ils {
			if pred(&ap.Runways[i].Ils[j]) {
				return true
			}
		}
	}
	return false
}

// MagVar returns the magnetic variation at the nearest airport within
// range, if there is one.
func (al *AirportLoader) MagVar() (float64, bool) {
	near := RangeSort(al.ref, 1, al.inRange())
	if len(near) == 0 {
		return 0, false
	}
	ap, err := al.Airport(near[0].Key)
	if err != nil {
		al.lg.Warnf("%s: %v", near[0].Key.Id, err)
		return 0, false
	}
	return ap.MagVar, true
}

// inRange returns the airports within range, ignoring the query limit.
func (al *AirportLoader) inRange() []*AirportKey {
	var aps []*AirportKey
	maxSq := al.ref.MaxRangeSq()
	for _, ap := range al.Keys() {
		if al.ref.RangeSq(ap.Lat, ap.Lon) <= maxSq {
			aps = append(aps, ap)
		}
	}
	return aps
}

func (al *AirportLoader) airport(id string) (*AirportKey, bool) {
	return al.keys.Find(func(ap *AirportKey) int { return strings.Compare(ap.Id, id) })
}

///////////////////////////////////////////////////////////////////////////
// Runways

// runways returns the runways of airports in range that satisfy pred,
// range sorted and limited.
func (al *AirportLoader) runways(pred func(*RunwayKey) bool) []Result[*RunwayKey] {
	var cands []*RunwayKey
	for _, ap := range al.inRange() {
		for i := range ap.Runways {
			if rw := &ap.Runways[i]; pred(rw) {
				cands = append(cands, rw)
			}
		}
	}
	return RangeSort(al.ref, al.limit, cands)
}

func (al *AirportLoader) runway(id string) (*RunwayKey, bool) {
	if len(id) < AirportKeyLength {
		return nil, false
	}
	ap, ok := al.airport(strings.TrimRight(id[:AirportKeyLength], " "))
	if !ok {
		return nil, false
	}
	for i := range ap.Runways {
		if ap.Runways[i].Id == id {
			return &ap.Runways[i], true
		}
	}
	return nil, false
}

func (al *AirportLoader) runwayResult(rw *RunwayKey) []Result[*RunwayKey] {
	return []Result[*RunwayKey]{{Key: rw, RangeSq: al.RangeSq(rw.Lat, rw.Lon)}}
}

// QueryRunwayByKey returns the runway with the given key.
func (al *AirportLoader) QueryRunwayByKey(key string) []Result[*RunwayKey] {
	if rw, ok := al.runway(strings.TrimRight(key, " ")); ok {
		return al.runwayResult(rw)
	}
	return nil
}

// QueryRunwayByIdent returns the runway identified by an airport key
// followed by the identifier of either of the runway's ends, e.g.
// "US12345" + "09L".
func (al *AirportLoader) QueryRunwayByIdent(id string) []Result[*RunwayKey] {
	if len(id) <= AirportKeyLength {
		return nil
	}
	ap, ok := al.airport(strings.TrimRight(id[:AirportKeyLength], " "))
	if !ok {
		return nil
	}
	end := strings.TrimSpace(id[AirportKeyLength:])
	for i := range ap.Runways {
		if rw := &ap.Runways[i]; rw.HighIdent == end || rw.LowIdent == end {
			return al.runwayResult(rw)
		}
	}
	return nil
}

// QueryRunwayByLength returns the runways in range at least minLength
// feet long.
func (al *AirportLoader) QueryRunwayByLength(minLength int) []Result[*RunwayKey] {
	return al.runways(func(rw *RunwayKey) bool { return rw.Length >= minLength })
}

// QueryRunwayByFreq returns the runways in range with an ILS component
// on the given frequency.
func (al *AirportLoader) QueryRunwayByFreq(freq float64) []Result[*RunwayKey] {
	return al.runways(func(rw *RunwayKey) bool {
		return slices.ContainsFunc(rw.Ils, func(ils IlsKey) bool { return CompareFrequency(ils.Freq, freq) == 0 })
	})
}

// QueryRunwayByChannel returns the runways in range with an ILS
// component on the given channel.
func (al *AirportLoader) QueryRunwayByChannel(channel int, band Band) []Result[*RunwayKey] {
	ch := SignedChannel(channel, band)
	return al.runways(func(rw *RunwayKey) bool {
		return slices.ContainsFunc(rw.Ils, func(ils IlsKey) bool { return ils.Channel == ch })
	})
}

///////////////////////////////////////////////////////////////////////////
// ILS

func (al *AirportLoader) ils(pred func(*IlsKey) bool) []Result[*IlsKey] {
	var cands []*IlsKey
	for _, ap := range al.inRange() {
		for i := range ap.Runways {
			rw := &ap.Runways[i]
			for j := range rw.Ils {
				if ils := &rw.Ils[j]; pred(ils) {
					cands = append(cands, ils)
				}
			}
		}
	}
	return RangeSort(al.ref, al.limit, cands)
}

// QueryIlsByKey returns the ILS component with the given key.
func (al *AirportLoader) QueryIlsByKey(key string) []Result[*IlsKey] {
	key = strings.TrimRight(key, " ")
	if len(key) < RunwayKeyLength {
		return nil
	}
	rw, ok := al.runway(strings.TrimRight(key[:RunwayKeyLength], " "))
	if !ok {
		return nil
	}
	for i := range rw.Ils {
		if ils := &rw.Ils[i]; ils.Id == key {
			return []Result[*IlsKey]{{Key: ils, RangeSq: al.RangeSq(ils.Lat, ils.Lon)}}
		}
	}
	return nil
}

// QueryIlsByIdent returns the ILS components in range with the given
// identifier.
func (al *AirportLoader) QueryIlsByIdent(ident string) []Result[*IlsKey] {
	return al.ils(func(ils *IlsKey) bool { return ils.Ident == ident })
}

// QueryIlsByType returns the ILS components in range of the given type;
// AnyIls matches all of them.
func (al *AirportLoader) QueryIlsByType(t IlsType) []Result[*IlsKey] {
	return al.ils(func(ils *IlsKey) bool { return t == AnyIls || ils.Type == t })
}

// QueryIlsByFreq returns the ILS components in range on the given
// frequency.
func (al *AirportLoader) QueryIlsByFreq(freq float64) []Result[*IlsKey] {
	return al.ils(func(ils *IlsKey) bool { return CompareFrequency(ils.Freq, freq) == 0 })
}

// QueryIlsByChannel returns the ILS components in range on the given
// channel.
func (al *AirportLoader) QueryIlsByChannel(channel int, band Band) []Result[*IlsKey] {
	ch := SignedChannel(channel, band)
	return al.ils(func(ils *IlsKey) bool { return ils.Channel == ch })
}

// FindGlideSlope returns the glideslope that goes with a localizer: the
// runway's glideslope component whose key matches the localizer's in
// everything but the component type.
func (al *AirportLoader) FindGlideSlope(rw *RunwayKey, loc *IlsKey) (*IlsKey, bool) {
	if rw == nil || loc == nil || len(loc.Id) == 0 {
		return nil, false
	}
	prefix := loc.Id[:len(loc.Id)-1]
	for i := range rw.Ils {
		if gs := &rw.Ils[i]; gs.Type == Glideslope && strings.HasPrefix(gs.Id, prefix) {
			return gs, true
		}
	}
	return nil, false
}
