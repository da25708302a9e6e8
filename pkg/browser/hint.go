package browser

import (
	"fmt"
	"runtime"
)

// ManualStartHint returns an OS-appropriate one-liner that starts Chrome with
// remote debugging enabled on the given port. It is embedded in
// NoLiveEndpointError so Own-mode failures are actionable.
func ManualStartHint(port int) string {
	switch runtime.GOOS {
	case "windows":
		return fmt.Sprintf(`chrome --remote-debugging-port=%d --user-data-dir="%%LOCALAPPDATA%%\ChromeCDP"`, port)
	case "darwin":
		return fmt.Sprintf(`open -a "Google Chrome" --args --remote-debugging-port=%d --user-data-dir="$HOME/.chrome-cdp"`, port)
	default:
		return fmt.Sprintf(`google-chrome --remote-debugging-port=%d --user-data-dir="$HOME/.chrome-cdp"`, port)
	}
}
