// cmd/dafifdb/config.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"time"

	"github.com/mmp/dafif/log"
	"github.com/mmp/dafif/server"
	"github.com/mmp/dafif/util"
)

// Config holds the settings that may be given in a JSON config file;
// command-line flags override them.
type Config struct {
	AirportFile  string
	NavaidFile   string
	WaypointFile string
	Country      string

	MaxAirports  int
	MaxNavaids   int
	MaxWaypoints int

	ServerPort           int
	QueryLimit           int
	CacheSize            int
	StatsIntervalSeconds int

	LogLevel string
	LogDir   string
}

func getDefaultConfig() *Config {
	return &Config{
		ServerPort:           server.DefaultPort,
		QueryLimit:           server.MaxQueryLimit,
		StatsIntervalSeconds: 300,
		LogLevel:             "info",
	}
}

// LoadConfig reads the config file at fn; an empty filename gives the
// default configuration.
func LoadConfig(fn string, lg *log.Logger) (*Config, error) {
	config := getDefaultConfig()
	if fn == "" {
		return config, nil
	}

	lg.Infof("Loading config from: %s", fn)
	contents, err := os.ReadFile(fn)
	if err != nil {
		return nil, err
	}

	var e util.ErrorLogger
	e.Push(fn)
	util.CheckJSON[Config](contents, &e)
	if e.HaveErrors() {
		return nil, e.Err()
	}

	if err := json.NewDecoder(bytes.NewReader(contents)).Decode(config); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) StatsInterval() time.Duration {
	return time.Duration(c.StatsIntervalSeconds) * time.Second
}

func (c *Config) Validate(e *util.ErrorLogger) {
	e.Push("config")
	defer e.Pop()

	if c.AirportFile == "" && c.NavaidFile == "" && c.WaypointFile == "" {
		e.ErrorString("no airport, navaid, or waypoint file specified")
	}
	if c.Country != "" && len(c.Country) != 2 {
		e.ErrorString("country %q: must be a two-letter code", c.Country)
	}
	for _, m := range []struct {
		name string
		v    int
	}{{"MaxAirports", c.MaxAirports}, {"MaxNavaids", c.MaxNavaids}, {"MaxWaypoints", c.MaxWaypoints},
		{"CacheSize", c.CacheSize}, {"StatsIntervalSeconds", c.StatsIntervalSeconds}} {
		if m.v < 0 {
			e.ErrorString("%s: %d: must not be negative", m.name, m.v)
		}
	}
	if c.ServerPort < 0 || c.ServerPort > 65535 {
		e.ErrorString("ServerPort: %d: invalid port", c.ServerPort)
	}
	if c.QueryLimit < 0 || c.QueryLimit > server.MaxQueryLimit {
		e.ErrorString("QueryLimit: %d: must be between 0 and %d", c.QueryLimit, server.MaxQueryLimit)
	}
}
