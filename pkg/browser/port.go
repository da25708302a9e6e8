package browser

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

const (
	// connectProbeTimeout bounds a single TCP connect attempt when testing
	// whether anything is listening on a port.
	connectProbeTimeout = 300 * time.Millisecond

	// DefaultPortScanStop is the inclusive upper bound of the free-port scan.
	DefaultPortScanStop = 9400
)

// portOpen reports whether something accepts TCP connections on the loopback
// port. It only connects; it never binds.
func portOpen(port int) bool {
	conn, err := net.DialTimeout("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)), connectProbeTimeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// FindFreePort scans [start, stop] upward and returns the first port with no
// listener. It returns ErrPortRangeExhausted when the whole range is busy.
func FindFreePort(start, stop int) (int, error) {
	for port := start; port <= stop; port++ {
		if !portOpen(port) {
			return port, nil
		}
	}
	return 0, fmt.Errorf("%w (%d-%d)", ErrPortRangeExhausted, start, stop)
}
