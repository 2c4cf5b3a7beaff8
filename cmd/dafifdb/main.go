// cmd/dafifdb/main.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// dafifdb loads DAFIF airport, navaid, and waypoint files and answers
// queries against them, either directly, by serving them over UDP, or by
// sending the query to a remote server.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/mmp/dafif/dafif"
	"github.com/mmp/dafif/log"
	"github.com/mmp/dafif/server"
	"github.com/mmp/dafif/util"

	"github.com/apenwarr/fixconsole"
	"golang.org/x/sync/errgroup"
)

var (
	configFile   = flag.String("config", "", "JSON configuration file")
	airportFile  = flag.String("airports", "", "airport file (local path, gs:// or s3:// URL; may be zstd-compressed)")
	navaidFile   = flag.String("navaids", "", "navaid file")
	waypointFile = flag.String("waypoints", "", "waypoint file")
	country      = flag.String("country", "", "only load records for this two-letter country code")
	cpuprofile   = flag.String("cpuprofile", "", "write CPU profile to file")
	memprofile   = flag.String("memprofile", "", "write memory profile to this file")
	logLevel     = flag.String("loglevel", "info", "logging level: debug, info, warn, error")
	logDir       = flag.String("logdir", "", "log file directory")
	runServer    = flag.Bool("runserver", false, "serve queries over UDP")
	serverPort   = flag.Int("port", server.DefaultPort, "port to listen on when running the server")
	remote       = flag.String("remote", "", "address of a server to send the query to")
	recordType   = flag.String("type", "airport", "record type: airport, runway, ils, navaid, waypoint, magvar")
	queryKind    = flag.String("query", "range", "query: number, ident, key, icao, range, type, length, freq, channel, count")
	queryArg     = flag.String("arg", "", "query argument (e.g., ident, frequency in MHz, channel such as 45X)")
	refLat       = flag.Float64("lat", 0, "reference latitude in degrees")
	refLon       = flag.Float64("lon", 0, "reference longitude in degrees")
	maxRange     = flag.Float64("range", 0, "maximum range from the reference point in nm (0 for unlimited)")
	queryLimit   = flag.Int("limit", 0, "maximum number of results (0 for the server's limit)")
	recordSize   = flag.Int("recordsize", 0, "pad or truncate returned records to this size")
	format       = flag.String("format", "text", "output format: text, json, dump")
)

func main() {
	flag.Parse()

	if err := fixconsole.FixConsoleIfNeeded(); err != nil {
		fmt.Printf("FixConsole: %v\n", err)
	}

	config, err := LoadConfig(*configFile, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", *configFile, err)
		os.Exit(1)
	}
	applyFlags(config)

	lg := log.New(*runServer, config.LogLevel, config.LogDir)
	defer lg.CatchAndReportCrash()

	profiler, err := util.CreateProfiler(*cpuprofile, *memprofile)
	if err != nil {
		lg.Errorf("%v", err)
	}
	defer profiler.Cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *remote != "" {
		if err := runRemote(ctx, *remote, lg); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", *remote, err)
			os.Exit(1)
		}
		return
	}

	var e util.ErrorLogger
	config.Validate(&e)
	if e.HaveErrors() {
		e.PrintErrors(lg)
		os.Exit(1)
	}

	start := time.Now()
	dbs, err := loadDatabases(ctx, config, lg)
	if err != nil {
		lg.Errorf("%v", err)
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer closeDatabases(dbs)
	lg.Info("loaded databases", "elapsed", time.Since(start))

	if *runServer {
		srv, err := server.NewServer(server.Config{
			Port:          config.ServerPort,
			QueryLimit:    config.QueryLimit,
			CacheSize:     config.CacheSize,
			CacheTTL:      10 * time.Minute,
			StatsInterval: config.StatsInterval(),
		}, dbs, lg)
		if err != nil {
			lg.Errorf("%v", err)
			os.Exit(1)
		}
		fmt.Printf("Listening on %s\n", srv.Addr())
		if err := srv.Serve(ctx); err != nil {
			lg.Errorf("%v", err)
			os.Exit(1)
		}
		return
	}

	req, err := makeRequest()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	resp := dbs.Respond(&req, lg)
	if err := writeOutput(os.Stdout, *format, req, resp); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// applyFlags overrides config settings with the flags that were given
// explicitly on the command line.
func applyFlags(config *Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "airports":
			config.AirportFile = *airportFile
		case "navaids":
			config.NavaidFile = *navaidFile
		case "waypoints":
			config.WaypointFile = *waypointFile
		case "country":
			config.Country = strings.ToUpper(*country)
		case "port":
			config.ServerPort = *serverPort
		case "loglevel":
			config.LogLevel = *logLevel
		case "logdir":
			config.LogDir = *logDir
		}
	})
}

func makeRequest() (server.Request, error) {
	req, err := parseRequest(*recordType, *queryKind, *queryArg)
	if err != nil {
		return req, err
	}
	req.RefLat, req.RefLon = float32(*refLat), float32(*refLon)
	req.MaxRange = float32(*maxRange)
	req.QueryLimit = int32(*queryLimit)
	req.RecordSize = int32(*recordSize)
	return req, nil
}

func loadDatabases(ctx context.Context, config *Config, lg *log.Logger) (server.Databases, error) {
	var dbs server.Databases
	opts := func(max int) dafif.Options {
		return dafif.Options{Country: config.Country, MaxRecords: max}
	}

	eg, ctx := errgroup.WithContext(ctx)
	if config.AirportFile != "" {
		eg.Go(func() (err error) {
			dbs.Airports, err = dafif.OpenAirports(ctx, config.AirportFile, opts(config.MaxAirports), lg)
			return
		})
	}
	if config.NavaidFile != "" {
		eg.Go(func() (err error) {
			dbs.Navaids, err = dafif.OpenNavaids(ctx, config.NavaidFile, opts(config.MaxNavaids), lg)
			return
		})
	}
	if config.WaypointFile != "" {
		eg.Go(func() (err error) {
			dbs.Waypoints, err = dafif.OpenWaypoints(ctx, config.WaypointFile, opts(config.MaxWaypoints), lg)
			return
		})
	}

	if err := eg.Wait(); err != nil {
		closeDatabases(dbs)
		return server.Databases{}, err
	}
	return dbs, nil
}

func closeDatabases(dbs server.Databases) {
	if dbs.Airports != nil {
		dbs.Airports.Close()
	}
	if dbs.Navaids != nil {
		dbs.Navaids.Close()
	}
	if dbs.Waypoints != nil {
		dbs.Waypoints.Close()
	}
}

func runRemote(ctx context.Context, addr string, lg *log.Logger) error {
	if !strings.Contains(addr, ":") {
		addr = net.JoinHostPort(addr, strconv.Itoa(server.DefaultPort))
	}

	c, err := server.Dial(addr, lg)
	if err != nil {
		return err
	}
	defer c.Close()

	req, err := makeRequest()
	if err != nil {
		return err
	}
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	return writeOutput(os.Stdout, *format, req, resp)
}
