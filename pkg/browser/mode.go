package browser

import "fmt"

// Mode selects the strategy used to obtain a debuggable browser.
type Mode string

const (
	// ModeAuto probes for an existing endpoint and resolves to ModeOwn or
	// ModeFresh before any process or further network action.
	ModeAuto Mode = "auto"

	// ModeOwn attaches to an already-running, externally managed browser.
	ModeOwn Mode = "own"

	// ModeFresh spawns a browser process owned by the resulting handle.
	ModeFresh Mode = "fresh"

	// ModeManaged delegates the entire browser lifecycle to the downstream
	// automation library.
	ModeManaged Mode = "managed"
)

// ParseMode validates and normalizes a mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeAuto, ModeOwn, ModeFresh, ModeManaged:
		return Mode(s), nil
	}
	return "", fmt.Errorf("invalid browser mode %q: must be one of auto, own, fresh, managed", s)
}

// String returns the mode's wire form.
func (m Mode) String() string {
	return string(m)
}
