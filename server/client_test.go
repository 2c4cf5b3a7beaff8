// server/client_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package server

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"
)

// fakeServer listens on loopback and calls reply with each request it
// receives; reply returns the datagrams to send back.
func fakeServer(t *testing.T, reply func(req Request) [][]byte) (addr string, requests <-chan Request) {
	t.Helper()

	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatal(err)
	}
	ch := make(chan Request, 16)
	go func() {
		buf := make([]byte, maxDatagramSize)
		for {
			n, from, err := conn.ReadFromUDP(buf)
			if err != nil {
				close(ch)
				return
			}
			var req Request
			if err := decode(buf[:n], &req); err != nil {
				continue
			}
			ch <- req
			for _, b := range reply(req) {
				conn.WriteToUDP(b, from)
			}
		}
	}()
	t.Cleanup(func() { conn.Close() })

	return conn.LocalAddr().String(), ch
}

func encodeResponse(r Response) []byte {
	b, _ := encode(&r)
	return b
}

func TestClientNoResponse(t *testing.T) {
	addr, requests := fakeServer(t, func(Request) [][]byte { return nil })

	c, err := Dial(addr, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	c.Timeout = 20 * time.Millisecond

	if _, err := c.Query(context.Background(), AirportRecords, Count, Arg{}); !errors.Is(err, ErrNoResponse) {
		t.Fatalf("got %v, expected ErrNoResponse", err)
	}

	// The request was sent 1+MaxRetries times, always with the same
	// sequence number.
	for i := range MaxRetries + 1 {
		select {
		case req := <-requests:
			if req.Seq != 1 {
				t.Errorf("attempt %d: seq %d", i, req.Seq)
			}
		case <-time.After(time.Second):
			t.Fatalf("only received %d requests", i)
		}
	}
	select {
	case <-requests:
		t.Errorf("too many requests sent")
	default:
	}
}

func TestClientDiscardsStale(t *testing.T) {
	addr, requests := fakeServer(t, func(req Request) [][]byte {
		return [][]byte{
			[]byte("garbage"),
			encodeResponse(Response{Seq: req.Seq - 1, Count: 7}),
			encodeResponse(Response{Seq: req.Seq + 5, Count: 8}),
			encodeResponse(Response{Seq: req.Seq, Count: 1, RecordSize: 3, Payload: []byte("abc")}),
		}
	})

	c, err := Dial(addr, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	for seq := uint32(1); seq <= 2; seq++ {
		resp, err := c.Query(context.Background(), NavaidRecords, ByIdent, StringValue("ABC"))
		if err != nil {
			t.Fatal(err)
		}
		if resp.Seq != seq || resp.Count != 1 || string(resp.Payload) != "abc" {
			t.Errorf("got %+v", resp)
		}
		if req := <-requests; req.Seq != seq || req.Arg.String != "ABC" || req.Kind != ByIdent {
			t.Errorf("server received %+v", req)
		}
	}
}

func TestClientEmptyResponseNotRetried(t *testing.T) {
	addr, requests := fakeServer(t, func(req Request) [][]byte {
		return [][]byte{encodeResponse(Response{Seq: req.Seq})}
	})

	c, err := Dial(addr, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	c.Timeout = 50 * time.Millisecond

	resp, err := c.Query(context.Background(), WaypointRecords, ByIdent, StringValue("NONE"))
	if err != nil || resp.Count != 0 {
		t.Fatalf("got %+v, %v", resp, err)
	}
	<-requests
	time.Sleep(3 * c.Timeout)
	select {
	case <-requests:
		t.Errorf("empty response was retried")
	default:
	}
}

func TestClientContextCanceled(t *testing.T) {
	addr, _ := fakeServer(t, func(Request) [][]byte { return nil })

	c, err := Dial(addr, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	start := time.Now()
	if _, err := c.Query(ctx, AirportRecords, Count, Arg{}); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("got %v, expected deadline exceeded", err)
	}
	if time.Since(start) > RequestTimeout {
		t.Errorf("client didn't respect the context deadline")
	}
}

// closedPort returns a loopback address that nothing is listening on.
func closedPort(t *testing.T) *net.UDPAddr {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatal(err)
	}
	addr := conn.LocalAddr().(*net.UDPAddr)
	conn.Close()
	return addr
}

func TestClientServerNotListening(t *testing.T) {
	c, err := Dial(closedPort(t).String(), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	c.Timeout = 20 * time.Millisecond

	start := time.Now()
	if _, err := c.Query(context.Background(), AirportRecords, Count, Arg{}); !errors.Is(err, ErrNoResponse) {
		t.Fatalf("got %v, expected ErrNoResponse", err)
	}
	// Each attempt waits out its timeout even though the port is closed.
	if elapsed := time.Since(start); elapsed < time.Duration(MaxRetries)*c.Timeout {
		t.Errorf("gave up after %s", elapsed)
	}
}

func TestClientServerRestarting(t *testing.T) {
	addr := closedPort(t)

	done := make(chan struct{})
	defer func() { <-done }()
	go func() {
		defer close(done)
		time.Sleep(30 * time.Millisecond)
		conn, err := net.ListenUDP("udp", addr)
		if err != nil {
			t.Errorf("listen: %v", err)
			return
		}
		defer conn.Close()
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))

		buf := make([]byte, maxDatagramSize)
		n, from, err := conn.ReadFromUDP(buf)
		if err != nil {
			t.Errorf("read: %v", err)
			return
		}
		var req Request
		if err := decode(buf[:n], &req); err != nil {
			t.Errorf("decode: %v", err)
			return
		}
		conn.WriteToUDP(encodeResponse(Response{Seq: req.Seq, Count: 42}), from)
	}()

	c, err := Dial(addr.String(), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	c.Timeout = 50 * time.Millisecond

	resp, err := c.Query(context.Background(), NavaidRecords, Count, Arg{})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Count != 42 {
		t.Errorf("got count %d, expected 42", resp.Count)
	}
}
