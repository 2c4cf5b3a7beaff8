// server/protocol.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package server

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Requests and responses are each sent as a single msgpack-encoded UDP
// datagram. A response's payload holds Count records, each exactly
// RecordSize bytes: the raw DAFIF record(s), space padded or truncated.

const (
	DefaultPort = 6510

	// MaxQueryLimit bounds the number of records in a response.
	MaxQueryLimit = 200

	// maxDatagramSize is the largest UDP payload we'll read.
	maxDatagramSize = 65507
)

type RecordType uint8

const (
	AirportRecords RecordType = iota
	NavaidRecords
	WaypointRecords
	RunwayRecords
	IlsRecords
	MagVarRecords
)

func (t RecordType) String() string {
	switch t {
	case AirportRecords:
		return "airport"
	case NavaidRecords:
		return "navaid"
	case WaypointRecords:
		return "waypoint"
	case RunwayRecords:
		return "runway"
	case IlsRecords:
		return "ils"
	case MagVarRecords:
		return "magvar"
	default:
		return fmt.Sprintf("RecordType(%d)", t)
	}
}

type QueryKind uint8

const (
	ByNumber QueryKind = iota
	ByIdent
	ByKey
	ByICAO
	ByRange
	ByType
	ByLength
	ByFreq
	ByChannel
	Count
)

func (k QueryKind) String() string {
	names := [...]string{"by-number", "by-ident", "by-key", "by-icao", "by-range", "by-type",
		"by-length", "by-freq", "by-channel", "count"}
	if int(k) < len(names) {
		return names[k]
	}
	return fmt.Sprintf("QueryKind(%d)", k)
}

type ArgType uint8

const (
	NoArg ArgType = iota
	IntArg
	FloatArg
	StringArg
)

// Arg is a request's query argument; Type says which of the other fields
// is meaningful. Channel queries carry the channel in Int and the band
// ("X" or "Y") in String.
type Arg struct {
	Type   ArgType
	Int    int32
	Float  float64
	String string
}

func IntValue(v int) Arg       { return Arg{Type: IntArg, Int: int32(v)} }
func FloatValue(v float64) Arg { return Arg{Type: FloatArg, Float: v} }
func StringValue(v string) Arg { return Arg{Type: StringArg, String: v} }
func ChannelValue(ch int, band byte) Arg {
	return Arg{Type: IntArg, Int: int32(ch), String: string(band)}
}

type Request struct {
	Seq          uint32
	RecordType   RecordType
	Kind         QueryKind
	RefLat       float32
	RefLon       float32
	MaxRange     float32
	QueryLimit   int32
	RecordNumber int32
	Arg          Arg
	// RecordSize is the size each returned record is padded or truncated
	// to; zero requests the records' natural size.
	RecordSize int32
}

type Response struct {
	Seq        uint32
	Count      int32
	RecordSize int32
	Payload    []byte
}

// Records splits the response payload into its records.
func (r *Response) Records() [][]byte {
	var recs [][]byte
	for i := range int(r.Count) {
		start, end := i*int(r.RecordSize), (i+1)*int(r.RecordSize)
		if end > len(r.Payload) {
			break
		}
		recs = append(recs, r.Payload[start:end])
	}
	return recs
}

func encode(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

func decode(b []byte, v any) error {
	if err := msgpack.Unmarshal(b, v); err != nil {
		return fmt.Errorf("%w: %w", ErrBadMessage, err)
	}
	return nil
}
