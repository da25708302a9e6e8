package browser

import (
	"errors"
	"fmt"
)

var (
	// ErrPortRangeExhausted indicates the port allocator scanned its whole
	// range without finding a port nothing is listening on.
	ErrPortRangeExhausted = errors.New("no free local port in scan range")

	// ErrStartupTimeout indicates a launched browser process was still
	// running when the startup timeout elapsed without the debugging
	// endpoint becoming reachable.
	ErrStartupTimeout = errors.New("browser did not expose its debugging endpoint before the startup timeout")

	// ErrExecutableNotFound indicates no Chrome/Chromium executable could be
	// located, either at the configured path or among the per-OS candidates.
	ErrExecutableNotFound = errors.New("chrome/chromium executable not found")
)

// ExitError reports a launched browser process that exited before its
// debugging endpoint became reachable.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("browser exited early with code %d before the debugging endpoint became available", e.Code)
}

// NoLiveEndpointError indicates Own mode found no live debugging endpoint
// among its candidates. Hint carries an OS-appropriate command the user can
// run to start a browser with remote debugging enabled.
type NoLiveEndpointError struct {
	Candidates []string
	Hint       string
}

func (e *NoLiveEndpointError) Error() string {
	return fmt.Sprintf(
		"own mode requires a live browser debugging endpoint (probed %d candidate(s))\nStart one with:\n  %s\nOr switch the browser mode to fresh.",
		len(e.Candidates), e.Hint,
	)
}
