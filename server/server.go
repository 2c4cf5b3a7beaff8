// server/server.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync/atomic"
	"time"

	"github.com/mmp/dafif/log"

	"github.com/brunoga/deep"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

type Config struct {
	Port int // if 0, finds an open one
	// QueryLimit caps the records in a response; 0 gives MaxQueryLimit.
	QueryLimit    int
	CacheSize     int
	CacheTTL      time.Duration
	StatsInterval time.Duration // 0 disables stats logging
}

// Server answers query requests from the loaded databases. Requests are
// handled one at a time by the goroutine running Serve.
type Server struct {
	conn          *net.UDPConn
	dbs           Databases
	lg            *log.Logger
	limit         int
	buf           []byte
	cache         *expirable.LRU[Request, Response]
	statsInterval time.Duration

	startTime time.Time
	requests  atomic.Int64
	cacheHits atomic.Int64
}

func NewServer(config Config, dbs Databases, lg *log.Logger) (*Server, error) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: config.Port})
	if err != nil {
		return nil, err
	}

	limit := config.QueryLimit
	if limit <= 0 || limit > MaxQueryLimit {
		limit = MaxQueryLimit
	}
	if config.CacheSize == 0 {
		config.CacheSize = 256
	}
	if config.CacheTTL == 0 {
		config.CacheTTL = 10 * time.Minute
	}

	s := &Server{
		conn:          conn,
		dbs:           dbs,
		lg:            lg,
		limit:         limit,
		cache:         expirable.NewLRU[Request, Response](config.CacheSize, nil, config.CacheTTL),
		statsInterval: config.StatsInterval,
		startTime:     time.Now(),
	}
	s.buf = make([]byte, 0, maxRecordSize*limit)

	lg.Info("listening", slog.String("addr", conn.LocalAddr().String()), slog.Int("query_limit", limit))

	return s, nil
}

func (s *Server) Addr() *net.UDPAddr {
	return s.conn.LocalAddr().(*net.UDPAddr)
}

// Serve handles requests until ctx is canceled; it closes the server's
// connection before returning.
func (s *Server) Serve(ctx context.Context) error {
	defer s.lg.CatchAndReportCrash()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-ctx.Done()
		s.conn.Close()
	}()

	if s.statsInterval > 0 {
		go s.reportStats(ctx, s.statsInterval)
	}

	rbuf := make([]byte, maxDatagramSize)
	for {
		n, addr, err := s.conn.ReadFromUDP(rbuf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.lg.Warnf("read: %v", err)
			continue
		}

		resp := s.handle(rbuf[:n], addr)
		if resp == nil {
			continue
		}
		if b, err := encode(resp); err != nil {
			s.lg.Errorf("%s: encode response: %v", addr, err)
		} else if _, err := s.conn.WriteToUDP(b, addr); err != nil {
			s.lg.Warnf("%s: %v", addr, err)
		}
	}
}

// handle decodes a request and returns its response; it returns nil if
// the request can't be decoded, since there's no sequence number to
// reply to.
func (s *Server) handle(b []byte, addr *net.UDPAddr) *Response {
	var req Request
	if err := decode(b, &req); err != nil {
		s.lg.Warnf("%s: %v", addr, err)
		return nil
	}
	s.requests.Add(1)

	key := req
	key.Seq = 0
	if cached, ok := s.cache.Get(key); ok {
		s.cacheHits.Add(1)
		cached.Seq = req.Seq
		return &cached
	}

	resp := s.respond(&req)
	s.cache.Add(key, deep.MustCopy(*resp))
	return resp
}

func (s *Server) respond(req *Request) *Response {
	limit := int(req.QueryLimit)
	if limit <= 0 || limit > s.limit {
		limit = s.limit
	}
	return s.dbs.respond(req, limit, s.buf, s.lg)
}
