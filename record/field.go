// record/field.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package record

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
)

var ErrBadField = errors.New("Invalid field value")

// Field gives the location of a field within a record as a zero-based
// byte offset and a length.
type Field struct {
	Offset, Len int
}

// Bytes returns the raw bytes of the field; fields that extend past the
// end of a short record are truncated.
func (f Field) Bytes(rec []byte) []byte {
	if f.Offset >= len(rec) {
		return nil
	}
	return rec[f.Offset:min(f.Offset+f.Len, len(rec))]
}

func (f Field) Empty(rec []byte) bool {
	return len(bytes.TrimSpace(f.Bytes(rec))) == 0
}

// String returns the field with leading and trailing blanks removed.
func (f Field) String(rec []byte) string {
	return string(bytes.TrimSpace(f.Bytes(rec)))
}

func (f Field) badField(rec []byte, err error) error {
	if err != nil {
		return fmt.Errorf("%q at %d: %w: %w", f.Bytes(rec), f.Offset, ErrBadField, err)
	}
	return fmt.Errorf("%q at %d: %w", f.Bytes(rec), f.Offset, ErrBadField)
}

// Int parses the field as a signed decimal integer. An empty field gives 0.
func (f Field) Int(rec []byte) (int, error) {
	s := f.String(rec)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, f.badField(rec, err)
	}
	return v, nil
}

// Float parses the field as a decimal number. An empty field gives 0.
func (f Field) Float(rec []byte) (float64, error) {
	s := f.String(rec)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, f.badField(rec, err)
	}
	return v, nil
}

// Latitude parses a hemisphere-prefixed DDMMSSss latitude, e.g.
// "N41584690" for 41°58'46.90"N.
func (f Field) Latitude(rec []byte) (float64, error) {
	return f.dms(rec, 2, 'N', 'S', 90)
}

// Longitude parses a hemisphere-prefixed DDDMMSSss longitude, e.g.
// "W087543120" for 87°54'31.20"W.
func (f Field) Longitude(rec []byte) (float64, error) {
	return f.dms(rec, 3, 'E', 'W', 180)
}

func (f Field) dms(rec []byte, degDigits int, pos, neg byte, limit float64) (float64, error) {
	b := bytes.TrimSpace(f.Bytes(rec))
	if len(b) != 1+degDigits+6 {
		return 0, f.badField(rec, nil)
	}

	digits := func(d []byte) (int, bool) {
		v := 0
		for _, c := range d {
			if c < '0' || c > '9' {
				return 0, false
			}
			v = 10*v + int(c-'0')
		}
		return v, true
	}

	deg, ok0 := digits(b[1 : 1+degDigits])
	mins, ok1 := digits(b[1+degDigits : 3+degDigits])
	hsec, ok2 := digits(b[3+degDigits:])
	if !ok0 || !ok1 || !ok2 || mins >= 60 || hsec >= 6000 {
		return 0, f.badField(rec, nil)
	}

	v := float64(deg) + float64(mins)/60 + float64(hsec)/100/3600
	if v > limit {
		return 0, f.badField(rec, nil)
	}

	switch b[0] {
	case pos:
		return v, nil
	case neg:
		return -v, nil
	default:
		return 0, f.badField(rec, nil)
	}
}

// Channel parses a TACAN channel such as "045X" or "017Y". Y-band
// channels are returned as negative numbers; an empty field gives 0.
func (f Field) Channel(rec []byte) (int, error) {
	b := bytes.TrimSpace(f.Bytes(rec))
	if len(b) == 0 {
		return 0, nil
	}

	band := b[len(b)-1]
	if band != 'X' && band != 'Y' {
		return 0, f.badField(rec, nil)
	}
	ch, err := strconv.Atoi(string(bytes.TrimSpace(b[:len(b)-1])))
	if err != nil || ch < 0 {
		return 0, f.badField(rec, err)
	}
	if band == 'Y' {
		ch = -ch
	}
	return ch, nil
}

// MagVar parses a magnetic variation such as "W003.20"; easterly
// variation is positive. An empty field gives 0.
func (f Field) MagVar(rec []byte) (float64, error) {
	b := bytes.TrimSpace(f.Bytes(rec))
	if len(b) == 0 {
		return 0, nil
	}
	v, err := strconv.ParseFloat(string(b[1:]), 64)
	if err != nil {
		return 0, f.badField(rec, err)
	}

	switch b[0] {
	case 'E':
		return v, nil
	case 'W':
		return -v, nil
	default:
		return 0, f.badField(rec, nil)
	}
}
