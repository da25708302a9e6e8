package browser

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// ResolveExecutable returns the path of the Chrome/Chromium binary to launch.
// A configured path must exist; otherwise the per-OS candidate locations are
// scanned.
func ResolveExecutable(configured string) (string, error) {
	if configured != "" {
		path, err := filepath.Abs(configured)
		if err == nil {
			if _, statErr := os.Stat(path); statErr == nil {
				return path, nil
			}
		}
		return "", fmt.Errorf("%w: configured path does not exist: %s", ErrExecutableNotFound, configured)
	}

	switch runtime.GOOS {
	case "windows":
		for _, candidate := range []string{
			filepath.Join(os.Getenv("PROGRAMFILES"), `Google\Chrome\Application\chrome.exe`),
			filepath.Join(os.Getenv("PROGRAMFILES(X86)"), `Google\Chrome\Application\chrome.exe`),
			filepath.Join(os.Getenv("LOCALAPPDATA"), `Google\Chrome\Application\chrome.exe`),
			filepath.Join(os.Getenv("PROGRAMFILES"), `Chromium\Application\chrome.exe`),
			filepath.Join(os.Getenv("LOCALAPPDATA"), `Chromium\Application\chrome.exe`),
		} {
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
	case "darwin":
		for _, candidate := range []string{
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
		} {
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
	default:
		for _, name := range []string{
			"google-chrome",
			"google-chrome-stable",
			"chromium",
			"chromium-browser",
		} {
			if path, err := exec.LookPath(name); err == nil {
				return path, nil
			}
		}
	}

	return "", fmt.Errorf("%w: set CHROME_EXECUTABLE_PATH", ErrExecutableNotFound)
}
