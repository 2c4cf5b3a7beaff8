// dafif/airport.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package dafif

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/mmp/dafif/log"
	"github.com/mmp/dafif/record"
)

const DefaultMaxAirports = 50000

// AirportKey indexes an airport record and owns the keys for the
// airport's runways.
type AirportKey struct {
	Key
	Type    AirportType
	Runways []RunwayKey
}

// RunwayKey indexes a runway's pair of records; Airport is the load
// ordinal of the owning airport (see AirportLoader.RunwayAirport). Its
// location is the midpoint of the runway's two ends.
type RunwayKey struct {
	Key
	Airport   int
	HighIdent string
	LowIdent  string
	Length    int // feet
	Ils       []IlsKey
}

// IlsKey indexes an ILS component's pair of records. Airport and Runway
// identify the owner: the airport's load ordinal and the runway's index
// in its Runways.
type IlsKey struct {
	Key
	Airport int
	Runway  int
	Type    IlsType
	Ident   string
	Freq    float64 // MHz
	Channel int     // negative for the Y band
}

// Airport is a fully decoded airport record.
type Airport struct {
	Id        string
	ICAO      string
	Name      string
	Type      AirportType
	Country   string
	State     string
	WAC       int
	Lat, Lon  float64
	Elevation int // feet
	MagVar    float64
}

type RunwayEnd struct {
	Ident     string
	Lat, Lon  float64
	Elevation int
	Heading   float64 // true
}

// Runway is a fully decoded runway record pair.
type Runway struct {
	Id        string
	AirportId string
	Length    int // feet
	Width     int // feet
	Surface   string
	High, Low RunwayEnd
}

// Ils is a fully decoded ILS component record pair.
type Ils struct {
	Id         string
	RunwayId   string
	RunwayEnd  string
	Type       IlsType
	Ident      string
	Name       string
	Freq       float64
	Channel    int
	Lat, Lon   float64
	Elevation  int
	GlideSlope float64 // degrees
	MagVar     float64
}

// DecodeAirport decodes an airport record.
func DecodeAirport(rec []byte) (Airport, error) {
	d := decoder{rec: rec}
	ap := Airport{
		Id:        keyString(airportKey, rec),
		ICAO:      d.str(airportICAO),
		Name:      d.str(airportName),
		Country:   d.str(airportCountry),
		State:     d.str(airportState),
		WAC:       d.integer(airportWAC),
		Lat:       d.latitude(airportLat),
		Lon:       d.longitude(airportLon),
		Elevation: d.integer(airportElev),
		MagVar:    d.magVar(airportMagVar),
	}
	if d.err != nil {
		return Airport{}, d.err
	}
	var ok bool
	if ap.Type, ok = airportTypeFromCode(d.str(airportType)); !ok {
		return Airport{}, record.ErrBadField
	}
	return ap, nil
}

// parseRunway decodes a runway from its high- and low-end records.
func parseRunway(high, low []byte) (Runway, error) {
	d := decoder{rec: high}
	rw := Runway{
		Id:        keyString(runwayKey, high),
		AirportId: keyString(runwayAirportKey, high),
		Length:    d.integer(runwayLength),
		Width:     d.integer(runwayWidth),
		Surface:   d.str(runwaySurface),
		High: RunwayEnd{
			Ident:     d.str(runwayHighIdent),
			Lat:       d.latitude(runwayHighLat),
			Lon:       d.longitude(runwayHighLon),
			Elevation: d.integer(runwayHighElev),
			Heading:   d.float(runwayHighHdg),
		},
	}
	if d.err != nil {
		return Runway{}, d.err
	}

	d = decoder{rec: low}
	rw.Low = RunwayEnd{
		Ident:     runwayLowIdent.String(high),
		Lat:       d.latitude(runwayLowLat),
		Lon:       d.longitude(runwayLowLon),
		Elevation: d.integer(runwayLowElev),
		Heading:   d.float(runwayLowHdg),
	}
	return rw, d.err
}

// DecodeRunway decodes a runway from its two consecutive records.
func DecodeRunway(rec []byte) (Runway, error) {
	if len(rec) < 2*RecordLength {
		return Runway{}, ErrMissingPairedRecord
	}
	return parseRunway(rec[:RecordLength], rec[RecordLength:])
}

// DecodeIls decodes an ILS component from its two consecutive records.
func DecodeIls(rec []byte) (Ils, error) {
	if len(rec) < 2*RecordLength {
		return Ils{}, ErrMissingPairedRecord
	}
	return parseIls(rec[:RecordLength], rec[RecordLength:])
}

func parseIls(first, second []byte) (Ils, error) {
	d := decoder{rec: first}
	ils := Ils{
		Id:        keyString(ilsKey, first),
		RunwayId:  keyString(ilsRunwayKey, first),
		RunwayEnd: d.str(ilsEnd),
		Type:      ilsTypeFromCode(d.str(ilsType)),
		Ident:     d.str(ilsIdent),
		Name:      d.str(ilsName),
		Freq:      d.float(ilsFreq),
		Channel:   d.channel(ilsChannel),
	}
	if d.err != nil {
		return Ils{}, d.err
	}

	d = decoder{rec: second}
	ils.Lat = d.latitude(ilsLat)
	ils.Lon = d.longitude(ilsLon)
	ils.Elevation = d.integer(ilsElev)
	ils.GlideSlope = d.float(ilsSlope)
	ils.MagVar = d.magVar(ilsMagVar)
	return ils, d.err
}

///////////////////////////////////////////////////////////////////////////
// AirportLoader

// AirportLoader indexes an airport file: airports, and as their
// children, runways and ILS components.
type AirportLoader struct {
	Database[*AirportKey]

	// Airports in load order; RunwayKey.Airport and IlsKey.Airport
	// index this.
	airports   []*AirportKey
	numRunways int
	numIls     int
}

// OpenAirports opens the airport file at path (a local file, optionally
// zstd-compressed, or a gs:// or s3:// URL) and loads it.
func OpenAirports(ctx context.Context, path string, opts Options, lg *log.Logger) (*AirportLoader, error) {
	src, err := record.OpenContext(ctx, path, RecordLength)
	if err != nil {
		return nil, err
	}
	al, err := LoadAirports(src, opts, lg)
	if err != nil {
		src.Close()
		return nil, err
	}
	return al, nil
}

// LoadAirports indexes the airport records in src. Runway and ILS
// records must follow the airport that owns them; those whose owner
// isn't present are skipped. A first-half runway or ILS record that
// isn't followed by its second half is an error.
func LoadAirports(src record.Source, opts Options, lg *log.Logger) (*AirportLoader, error) {
	start := time.Now()
	if opts.MaxRecords == 0 {
		opts.MaxRecords = DefaultMaxAirports
	}

	al := &AirportLoader{}
	if err := al.open(src, opts.MaxRecords, lg); err != nil {
		return nil, err
	}

	type runwayRef struct{ airport, runway int }
	airportOrdinal := make(map[string]int)
	runways := make(map[string]runwayRef)

	loadErr := func(n, format int, err error) error {
		return &LoadError{Source: src.Name(), Record: n, Format: format, Err: err}
	}
	orphan := func(n int, what, owner string) {
		if opts.Country != "" {
			lg.Debugf("%s: record %d: %s owner %q not loaded", src.Name(), n, what, owner)
		} else {
			lg.Warnf("%s: record %d: %s owner %q not found", src.Name(), n, what, owner)
		}
	}

	// paired returns copies of records n and n+1, checking that the
	// second is of the given format and has the same key.
	paired := func(n, format int, key record.Field) ([]byte, []byte, error) {
		first, err := src.Record(n)
		if err != nil {
			return nil, nil, err
		}
		first = bytes.Clone(first)
		if n+1 >= src.NumRecords() {
			return nil, nil, loadErr(n, format-1, ErrMissingPairedRecord)
		}
		second, err := src.Record(n + 1)
		if err != nil {
			return nil, nil, err
		}
		if f, err := fieldFormat.Int(second); err != nil || f != format ||
			!bytes.Equal(key.Bytes(first), key.Bytes(second)) {
			return nil, nil, loadErr(n, format-1, ErrMissingPairedRecord)
		}
		return first, bytes.Clone(second), nil
	}

	for n := 0; n < src.NumRecords(); n++ {
		rec, err := src.Record(n)
		if err != nil {
			return nil, err
		}
		format, err := fieldFormat.Int(rec)
		if err != nil {
			return nil, loadErr(n, 0, err)
		}

		switch format {
		case formatAirport:
			if opts.Country != "" && airportCountry.String(rec) != opts.Country {
				continue
			}
			ap, err := DecodeAirport(rec)
			if err != nil {
				return nil, loadErr(n, format, err)
			}
			k := &AirportKey{
				Key: Key{
					RecordIndex: n,
					RecordSize:  RecordLength,
					Id:          ap.Id,
					ICAO:        ap.ICAO,
					Lat:         ap.Lat,
					Lon:         ap.Lon,
				},
				Type: ap.Type,
			}
			if err := al.add(k); err != nil {
				return nil, err
			}
			airportOrdinal[k.Id] = len(al.airports)
			al.airports = append(al.airports, k)

		case formatRunway:
			high, low, err := paired(n, formatRunwayLow, runwayKey)
			if err != nil {
				return nil, err
			}
			rw, err := parseRunway(high, low)
			if err != nil {
				return nil, loadErr(n, format, err)
			}
			ord, ok := airportOrdinal[rw.AirportId]
			if !ok {
				orphan(n, "runway", rw.AirportId)
				n++
				continue
			}
			ap := al.airports[ord]
			runways[rw.Id] = runwayRef{airport: ord, runway: len(ap.Runways)}
			ap.Runways = append(ap.Runways, RunwayKey{
				Key: Key{
					RecordIndex: n,
					RecordSize:  2 * RecordLength,
					Id:          rw.Id,
					ICAO:        ap.ICAO,
					Lat:         (rw.High.Lat + rw.Low.Lat) / 2,
					Lon:         (rw.High.Lon + rw.Low.Lon) / 2,
				},
				Airport:   ord,
				HighIdent: rw.High.Ident,
				LowIdent:  rw.Low.Ident,
				Length:    rw.Length,
			})
			al.numRunways++
			n++

		case formatIls:
			first, second, err := paired(n, formatIlsLocation, ilsKey)
			if err != nil {
				return nil, err
			}
			ils, err := parseIls(first, second)
			if err != nil {
				return nil, loadErr(n, format, err)
			}
			ref, ok := runways[ils.RunwayId]
			if !ok {
				orphan(n, "ILS", ils.RunwayId)
				n++
				continue
			}
			ap := al.airports[ref.airport]
			rw := &ap.Runways[ref.runway]
			rw.Ils = append(rw.Ils, IlsKey{
				Key: Key{
					RecordIndex: n,
					RecordSize:  2 * RecordLength,
					Id:          ils.Id,
					ICAO:        ap.ICAO,
					Lat:         ils.Lat,
					Lon:         ils.Lon,
				},
				Airport: ref.airport,
				Runway:  ref.runway,
				Type:    ils.Type,
				Ident:   ils.Ident,
				Freq:    ils.Freq,
				Channel: ils.Channel,
			})
			al.numIls++
			n++

		case formatRunwayLow, formatIlsLocation:
			return nil, loadErr(n, format, ErrMissingPairedRecord)

		case formatArrestingGear:

		default:
			lg.Debugf("%s: record %d: skipping unknown format %d", src.Name(), n, format)
		}
	}

	al.finish()

	lg.Info("loaded airports", slog.String("source", src.Name()), slog.Int("airports", al.NumRecords()),
		slog.Int("runways", al.numRunways), slog.Int("ils", al.numIls),
		slog.Duration("elapsed", time.Since(start)))

	return al, nil
}

func (al *AirportLoader) NumRunways() int { return al.numRunways }
func (al *AirportLoader) NumIls() int     { return al.numIls }

// RunwayAirport returns the airport that owns a runway.
func (al *AirportLoader) RunwayAirport(rw *RunwayKey) *AirportKey {
	return al.airports[rw.Airport]
}

// IlsRunway returns the runway that owns an ILS component.
func (al *AirportLoader) IlsRunway(ils *IlsKey) *RunwayKey {
	return &al.airports[ils.Airport].Runways[ils.Runway]
}

// Airport decodes the full record for an airport key.
func (al *AirportLoader) Airport(k *AirportKey) (Airport, error) {
	rec, err := al.RecordBytes(k)
	if err != nil {
		return Airport{}, err
	}
	return DecodeAirport(rec)
}

// Runway decodes the full record pair for a runway key.
func (al *AirportLoader) Runway(k *RunwayKey) (Runway, error) {
	rec, err := al.RecordBytes(k)
	if err != nil {
		return Runway{}, err
	}
	return DecodeRunway(rec)
}

// Ils decodes the full record pair for an ILS key.
func (al *AirportLoader) Ils(k *IlsKey) (Ils, error) {
	rec, err := al.RecordBytes(k)
	if err != nil {
		return Ils{}, err
	}
	return DecodeIls(rec)
}
