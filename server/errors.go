// server/errors.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package server

import "errors"

var (
	ErrBadMessage       = errors.New("Malformed message")
	ErrNoDatabase       = errors.New("No database loaded for record type")
	ErrNoResponse       = errors.New("No response from server")
	ErrUnsupportedQuery = errors.New("Query not supported for record type")
)
