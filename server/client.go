// server/client.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package server

import (
	"context"
	"errors"
	"net"
	"os"
	"syscall"
	"time"

	"github.com/mmp/dafif/log"
)

const (
	RequestTimeout = 2 * time.Second
	MaxRetries     = 3
)

// Client sends query requests to a server. Requests that time out are
// resent up to MaxRetries times. A Client must not be used concurrently.
type Client struct {
	conn *net.UDPConn
	lg   *log.Logger
	seq  uint32
	buf  []byte

	// Timeout is how long to wait for each attempt's response.
	Timeout time.Duration

	// Query parameters sent with each request.
	RefLat, RefLon float32
	MaxRange       float32
	QueryLimit     int32
	RecordSize     int32
}

func Dial(addr string, lg *log.Logger) (*Client, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, err
	}
	return &Client{
		conn:    conn,
		lg:      lg,
		buf:     make([]byte, maxDatagramSize),
		Timeout: RequestTimeout,
	}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// SetReference sets the reference point and maximum range sent with
// subsequent requests.
func (c *Client) SetReference(lat, lon, maxRange float64) {
	c.RefLat, c.RefLon, c.MaxRange = float32(lat), float32(lon), float32(maxRange)
}

// Query issues a request using the client's query parameters.
func (c *Client) Query(ctx context.Context, rt RecordType, kind QueryKind, arg Arg) (*Response, error) {
	return c.Do(ctx, Request{
		RecordType: rt,
		Kind:       kind,
		RefLat:     c.RefLat,
		RefLon:     c.RefLon,
		MaxRange:   c.MaxRange,
		QueryLimit: c.QueryLimit,
		Arg:        arg,
		RecordSize: c.RecordSize,
	})
}

// QueryNumber requests the nth record in key order.
func (c *Client) QueryNumber(ctx context.Context, rt RecordType, n int) (*Response, error) {
	return c.Do(ctx, Request{
		RecordType:   rt,
		Kind:         ByNumber,
		RecordNumber: int32(n),
		RecordSize:   c.RecordSize,
	})
}

// Do sends req with the next sequence number and waits for the matching
// response. Responses to earlier requests are discarded.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	c.seq++
	req.Seq = c.seq
	b, err := encode(&req)
	if err != nil {
		return nil, err
	}

	for attempt := range MaxRetries + 1 {
		if attempt > 0 {
			c.lg.Debugf("seq %d: no response, resending (attempt %d)", req.Seq, attempt+1)
		}
		if _, err := c.conn.Write(b); err != nil && !errors.Is(err, syscall.ECONNREFUSED) {
			return nil, err
		}

		resp, err := c.await(ctx, req.Seq)
		if err == nil {
			return resp, nil
		} else if !errors.Is(err, os.ErrDeadlineExceeded) {
			return nil, err
		} else if err := contextErr(ctx); err != nil {
			return nil, err
		}
	}
	return nil, ErrNoResponse
}

// contextErr is ctx.Err(), though it also reports a passed deadline
// before ctx's timer has fired.
func contextErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d, ok := ctx.Deadline(); ok && !time.Now().Before(d) {
		return context.DeadlineExceeded
	}
	return nil
}

func waitUntil(ctx context.Context, t time.Time) error {
	timer := time.NewTimer(time.Until(t))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// await reads datagrams until the response with the given sequence
// number arrives or the attempt times out.
func (c *Client) await(ctx context.Context, seq uint32) (*Response, error) {
	deadline := time.Now().Add(c.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return nil, err
	}

	for {
		n, err := c.conn.Read(c.buf)
		if errors.Is(err, syscall.ECONNREFUSED) {
			// Nothing is listening yet; the server may be restarting.
			// Wait out the attempt so that it's resent.
			c.lg.Debugf("seq %d: %v", seq, err)
			if err := waitUntil(ctx, deadline); err != nil {
				return nil, err
			}
			return nil, os.ErrDeadlineExceeded
		} else if err != nil {
			return nil, err
		}

		var resp Response
		if err := decode(c.buf[:n], &resp); err != nil {
			c.lg.Warnf("%v", err)
			continue
		}
		if resp.Seq != seq {
			c.lg.Debugf("discarding response seq %d, awaiting %d", resp.Seq, seq)
			continue
		}
		// The buffer is reused for the next read.
		resp.Payload = append([]byte(nil), resp.Payload...)
		return &resp, nil
	}
}
