package browser

import (
	"errors"
	"net"
	"testing"
)

// occupyPort binds an ephemeral loopback port and returns it with the
// listener still open.
func occupyPort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ln.Close() })
	return ln.Addr().(*net.TCPAddr).Port
}

func TestFindFreePortSkipsOccupiedPort(t *testing.T) {
	busy := occupyPort(t)

	port, err := FindFreePort(busy, busy+50)
	if err != nil {
		t.Fatal(err)
	}
	if port == busy {
		t.Fatalf("FindFreePort returned occupied port %d", busy)
	}
	if port < busy || port > busy+50 {
		t.Fatalf("FindFreePort returned %d outside scan range [%d, %d]", port, busy, busy+50)
	}
}

func TestFindFreePortRangeExhausted(t *testing.T) {
	busy := occupyPort(t)

	_, err := FindFreePort(busy, busy)
	if !errors.Is(err, ErrPortRangeExhausted) {
		t.Fatalf("FindFreePort on fully busy range = %v, want ErrPortRangeExhausted", err)
	}
}

func TestFindFreePortReturnsQuietPort(t *testing.T) {
	// Grab a port the OS considers free, release it, then scan from it.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	start := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	port, err := FindFreePort(start, start+10)
	if err != nil {
		t.Fatal(err)
	}
	if portOpen(port) {
		t.Fatalf("FindFreePort returned port %d that accepts connections", port)
	}
}
