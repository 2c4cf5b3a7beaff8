// dafif/navaid.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package dafif

import (
	"cmp"
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/mmp/dafif/log"
	"github.com/mmp/dafif/math"
	"github.com/mmp/dafif/record"
)

const (
	DefaultMaxNavaids = 20000

	formatNavaid = 1
)

type NavaidKey struct {
	Key
	Ident   string
	Type    NavaidType
	Country string
	Freq    float64 // MHz for VHF aids, kHz for NDBs
	Channel int     // negative for the Y band
}

// Navaid is a fully decoded navaid record.
type Navaid struct {
	Id        string
	Ident     string
	Type      NavaidType
	Country   string
	State     string
	Name      string
	WAC       int
	Freq      float64
	Channel   int
	Lat, Lon  float64
	Elevation int
	MagVar    float64
	Range     int // nm
	ICAO      string
}

// DecodeNavaid decodes a navaid record.
func DecodeNavaid(rec []byte) (Navaid, error) {
	d := decoder{rec: rec}
	nav := Navaid{
		Id:        keyString(navaidKey, rec),
		Ident:     d.str(navaidIdent),
		Country:   d.str(navaidCountry),
		State:     d.str(navaidState),
		Name:      d.str(navaidName),
		WAC:       d.integer(navaidWAC),
		Freq:      d.float(navaidFreq),
		Channel:   d.channel(navaidChannel),
		Lat:       d.latitude(navaidLat),
		Lon:       d.longitude(navaidLon),
		Elevation: d.integer(navaidElev),
		MagVar:    d.magVar(navaidMagVar),
		Range:     d.integer(navaidRange),
		ICAO:      d.str(navaidICAO),
	}
	if d.err != nil {
		return Navaid{}, d.err
	}
	var ok bool
	if nav.Type, ok = navaidTypeFromCode(d.str(navaidType)); !ok {
		return Navaid{}, record.ErrBadField
	}
	return nav, nil
}

// NavaidLoader indexes a navaid file. Along with the primary key array,
// which is also used for ident lookups since keys start with the ident,
// it maintains frequency and channel indices.
type NavaidLoader struct {
	Database[*NavaidKey]

	freq    *Index[*NavaidKey]
	channel *Index[*NavaidKey]
}

func compareNavaidFreq(a, b *NavaidKey) int {
	return CompareFrequency(a.Freq, b.Freq)
}

func compareNavaidChannel(a, b *NavaidKey) int {
	return cmp.Compare(a.Channel, b.Channel)
}

// OpenNavaids opens and loads the navaid file at path.
func OpenNavaids(ctx context.Context, path string, opts Options, lg *log.Logger) (*NavaidLoader, error) {
	src, err := record.OpenContext(ctx, path, RecordLength)
	if err != nil {
		return nil, err
	}
	nl, err := LoadNavaids(src, opts, lg)
	if err != nil {
		src.Close()
		return nil, err
	}
	return nl, nil
}

func LoadNavaids(src record.Source, opts Options, lg *log.Logger) (*NavaidLoader, error) {
	start := time.Now()
	if opts.MaxRecords == 0 {
		opts.MaxRecords = DefaultMaxNavaids
	}

	nl := &NavaidLoader{}
	if err := nl.open(src, opts.MaxRecords, lg); err != nil {
		return nil, err
	}

	for n := 0; n < src.NumRecords(); n++ {
		rec, err := src.Record(n)
		if err != nil {
			return nil, err
		}
		if format, err := fieldFormat.Int(rec); err != nil || format != formatNavaid {
			lg.Debugf("%s: record %d: skipping non-navaid record", src.Name(), n)
			continue
		}
		if opts.Country != "" && navaidCountry.String(rec) != opts.Country {
			continue
		}

		nav, err := DecodeNavaid(rec)
		if err != nil {
			return nil, &LoadError{Source: src.Name(), Record: n, Format: formatNavaid, Err: err}
		}
		k := &NavaidKey{
			Key: Key{
				RecordIndex: n,
				RecordSize:  RecordLength,
				Id:          nav.Id,
				ICAO:        nav.ICAO,
				Lat:         nav.Lat,
				Lon:         nav.Lon,
			},
			Ident:   nav.Ident,
			Type:    nav.Type,
			Country: nav.Country,
			Freq:    nav.Freq,
			Channel: nav.Channel,
		}
		if err := nl.add(k); err != nil {
			return nil, err
		}
	}

	nl.finish()
	nl.freq = FilterIndex(nl.Keys(), func(k *NavaidKey) bool { return k.Freq > 0 }, compareNavaidFreq)
	nl.channel = FilterIndex(nl.Keys(), func(k *NavaidKey) bool { return k.Channel != 0 }, compareNavaidChannel)

	lg.Info("loaded navaids", slog.String("source", src.Name()), slog.Int("navaids", nl.NumRecords()),
		slog.Duration("elapsed", time.Since(start)))

	return nl, nil
}

// IndexSorted reports whether all of the navaid indices are sorted.
func (nl *NavaidLoader) IndexSorted() bool {
	return nl.Database.IndexSorted() && nl.freq.Sorted() && nl.channel.Sorted()
}

// QueryByIdent returns the navaids with the given identifier; there may
// be more than one, in different countries.
func (nl *NavaidLoader) QueryByIdent(ident string) []Result[*NavaidKey] {
	return nl.rangeSort(nl.keys.FindAll(func(k *NavaidKey) int { return strings.Compare(k.Ident, ident) }))
}

// QueryByType returns the navaids in range of the given type; AnyNavaid
// matches all of them.
func (nl *NavaidLoader) QueryByType(t NavaidType) []Result[*NavaidKey] {
	return nl.scan(func(k *NavaidKey) bool { return t == AnyNavaid || k.Type == t })
}

func (nl *NavaidLoader) QueryByFreq(freq float64) []Result[*NavaidKey] {
	q := math.Quantize(freq, FrequencyResolution)
	return nl.rangeSort(nl.freq.FindAll(func(k *NavaidKey) int {
		return cmp.Compare(math.Quantize(k.Freq, FrequencyResolution), q)
	}))
}

func (nl *NavaidLoader) QueryByChannel(channel int, band Band) []Result[*NavaidKey] {
	ch := SignedChannel(channel, band)
	return nl.rangeSort(nl.channel.FindAll(func(k *NavaidKey) int { return cmp.Compare(k.Channel, ch) }))
}

// Navaid decodes the full record for a navaid key.
func (nl *NavaidLoader) Navaid(k *NavaidKey) (Navaid, error) {
	rec, err := nl.RecordBytes(k)
	if err != nil {
		return Navaid{}, err
	}
	return DecodeNavaid(rec)
}
