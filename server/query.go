// server/query.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package server

import (
	"fmt"
	"log/slog"
	gomath "math"

	"github.com/mmp/dafif/dafif"
	"github.com/mmp/dafif/log"
	"github.com/mmp/dafif/record"
)

// maxRecordSize is the size of the largest entity: a runway or ILS record
// pair.
const maxRecordSize = 2 * dafif.RecordLength

// Databases holds the loaded databases that requests are answered from;
// any of them may be nil.
type Databases struct {
	Airports  *dafif.AirportLoader
	Navaids   *dafif.NavaidLoader
	Waypoints *dafif.WaypointLoader
}

type recordReader interface {
	RecordBytes(k dafif.Keyed) ([]byte, error)
}

// answer is the result of a query: either keys whose records are read
// from db, a count, or (for magvar) a single synthesized record.
type answer struct {
	db     recordReader
	keys   []dafif.Keyed
	count  int
	record []byte
}

func keyed[K dafif.Keyed](db recordReader, results []dafif.Result[K]) answer {
	a := answer{db: db, keys: make([]dafif.Keyed, len(results)), count: len(results)}
	for i, r := range results {
		a.keys[i] = r.Key
	}
	return a
}

func byNumber[K dafif.Keyed](db *dafif.Database[K], n int32) answer {
	if k, ok := db.Key(int(n)); ok {
		return answer{db: db, keys: []dafif.Keyed{k}, count: 1}
	}
	return answer{}
}

// referencer is implemented by all of the loaders.
type referencer interface {
	SetReference(lat, lon, maxRange float64)
	SetQueryLimit(n int)
}

func (dbs *Databases) query(req *Request, limit int) (answer, error) {
	prep := func(db referencer) {
		db.SetReference(float64(req.RefLat), float64(req.RefLon), float64(req.MaxRange))
		db.SetQueryLimit(limit)
	}
	arg := req.Arg
	noDB := func() error { return fmt.Errorf("%s: %w", req.RecordType, ErrNoDatabase) }
	channel := func() (int, dafif.Band) {
		if arg.String == "Y" || arg.String == "y" {
			return int(arg.Int), dafif.YBand
		}
		return int(arg.Int), dafif.XBand
	}

	switch req.RecordType {
	case AirportRecords, RunwayRecords, IlsRecords, MagVarRecords:
		al := dbs.Airports
		if al == nil {
			return answer{}, noDB()
		}
		prep(al)
		switch req.RecordType {
		case AirportRecords:
			switch req.Kind {
			case ByNumber:
				return byNumber(&al.Database, req.RecordNumber), nil
			case ByIdent, ByICAO:
				return keyed(al, al.QueryByICAO(arg.String)), nil
			case ByKey:
				return keyed(al, al.QueryByKey(arg.String)), nil
			case ByRange:
				return keyed(al, al.QueryByRange()), nil
			case ByType:
				return keyed(al, al.QueryByType(dafif.AirportType(arg.Int))), nil
			case ByLength:
				return keyed(al, al.QueryByLength(int(arg.Int))), nil
			case ByFreq:
				return keyed(al, al.QueryByFreq(arg.Float)), nil
			case ByChannel:
				return keyed(al, al.QueryByChannel(channel())), nil
			case Count:
				return answer{count: al.NumRecords()}, nil
			}

		case RunwayRecords:
			switch req.Kind {
			case ByIdent:
				return keyed(al, al.QueryRunwayByIdent(arg.String)), nil
			case ByKey:
				return keyed(al, al.QueryRunwayByKey(arg.String)), nil
			case ByLength:
				return keyed(al, al.QueryRunwayByLength(int(arg.Int))), nil
			case ByFreq:
				return keyed(al, al.QueryRunwayByFreq(arg.Float)), nil
			case ByChannel:
				return keyed(al, al.QueryRunwayByChannel(channel())), nil
			case Count:
				return answer{count: al.NumRunways()}, nil
			}

		case IlsRecords:
			switch req.Kind {
			case ByIdent:
				return keyed(al, al.QueryIlsByIdent(arg.String)), nil
			case ByKey:
				return keyed(al, al.QueryIlsByKey(arg.String)), nil
			case ByType:
				return keyed(al, al.QueryIlsByType(dafif.IlsType(arg.Int))), nil
			case ByFreq:
				return keyed(al, al.QueryIlsByFreq(arg.Float)), nil
			case ByChannel:
				return keyed(al, al.QueryIlsByChannel(channel())), nil
			case Count:
				return answer{count: al.NumIls()}, nil
			}

		case MagVarRecords:
			if mv, ok := al.MagVar(); ok {
				return answer{record: []byte(FormatMagVar(mv)), count: 1}, nil
			}
			return answer{}, nil
		}

	case NavaidRecords:
		nl := dbs.Navaids
		if nl == nil {
			return answer{}, noDB()
		}
		prep(nl)
		switch req.Kind {
		case ByNumber:
			return byNumber(&nl.Database, req.RecordNumber), nil
		case ByIdent:
			return keyed(nl, nl.QueryByIdent(arg.String)), nil
		case ByKey:
			return keyed(nl, nl.QueryByKey(arg.String)), nil
		case ByRange:
			return keyed(nl, nl.QueryByRange()), nil
		case ByType:
			return keyed(nl, nl.QueryByType(dafif.NavaidType(arg.Int))), nil
		case ByFreq:
			return keyed(nl, nl.QueryByFreq(arg.Float)), nil
		case ByChannel:
			return keyed(nl, nl.QueryByChannel(channel())), nil
		case Count:
			return answer{count: nl.NumRecords()}, nil
		}

	case WaypointRecords:
		wl := dbs.Waypoints
		if wl == nil {
			return answer{}, noDB()
		}
		prep(wl)
		switch req.Kind {
		case ByNumber:
			return byNumber(&wl.Database, req.RecordNumber), nil
		case ByIdent:
			return keyed(wl, wl.QueryByIdent(arg.String)), nil
		case ByKey:
			return keyed(wl, wl.QueryByKey(arg.String)), nil
		case ByRange:
			return keyed(wl, wl.QueryByRange()), nil
		case ByType:
			return keyed(wl, wl.QueryByType(arg.String)), nil
		case Count:
			return answer{count: wl.NumRecords()}, nil
		}
	}

	return answer{}, fmt.Errorf("%s %s: %w", req.RecordType, req.Kind, ErrUnsupportedQuery)
}

// FormatMagVar formats a magnetic variation the way DAFIF records store
// it, e.g. "W003.20".
func FormatMagVar(mv float64) string {
	h := 'E'
	if mv < 0 {
		h = 'W'
	}
	return fmt.Sprintf("%c%06.2f", h, gomath.Abs(mv))
}

// Respond answers a request directly from the databases, returning at
// most MaxQueryLimit records.
func (dbs *Databases) Respond(req *Request, lg *log.Logger) *Response {
	limit := int(req.QueryLimit)
	if limit <= 0 || limit > MaxQueryLimit {
		limit = MaxQueryLimit
	}
	return dbs.respond(req, limit, make([]byte, 0, maxRecordSize*limit), lg)
}

// respond runs the query and packs the matching records into buf, which
// must have capacity for limit records of maxRecordSize bytes; records
// that don't fit are dropped.
func (dbs *Databases) respond(req *Request, limit int, buf []byte, lg *log.Logger) *Response {
	lg.Debug("request", slog.String("type", req.RecordType.String()), slog.String("kind", req.Kind.String()),
		slog.Any("arg", req.Arg))

	resp := &Response{Seq: req.Seq}
	ans, err := dbs.query(req, limit)
	if err != nil {
		lg.Warn("query failed", slog.Any("error", err))
		return resp
	}
	if ans.record == nil && len(ans.keys) == 0 {
		resp.Count = int32(ans.count)
		return resp
	}

	size := int(req.RecordSize)
	if size <= 0 {
		if ans.record != nil {
			size = len(ans.record)
		} else {
			size = ans.keys[0].Base().RecordSize
		}
	}
	size = min(size, maxRecordSize)

	buf = buf[:0]
	if ans.record != nil {
		buf = append(buf, record.Pad(ans.record, size)...)
	}
	for _, k := range ans.keys {
		if len(buf)+size > cap(buf) {
			break
		}
		raw, err := ans.db.RecordBytes(k)
		if err != nil {
			lg.Errorf("%s: %v", k.Base().Id, err)
			continue
		}
		buf = append(buf, record.Pad(raw, size)...)
	}

	resp.RecordSize = int32(size)
	resp.Count = int32(len(buf) / size)
	resp.Payload = buf
	return resp
}
