package runner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/entrhq/surf/pkg/browser"
	"github.com/entrhq/surf/pkg/config"
)

func TestBrowserOptionsMapsConfig(t *testing.T) {
	cfg := config.Default()
	cfg.BrowserMode = "own"
	cfg.CDPURL = "http://127.0.0.1:9444"
	cfg.CDPPort = 9444
	cfg.ChromeExecutablePath = "/opt/chrome"
	cfg.Headless = true
	cfg.FreshStartTimeout = 10 * time.Second

	opts := browserOptions(cfg)
	assert.Equal(t, browser.ModeOwn, opts.Mode)
	assert.Equal(t, "http://127.0.0.1:9444", opts.EndpointURL)
	assert.Equal(t, 9444, opts.Port)
	assert.Equal(t, "/opt/chrome", opts.ExecutablePath)
	assert.True(t, opts.Headless)
	assert.Equal(t, 10*time.Second, opts.StartupTimeout)
}

func TestBrowserOptionsAutoWithoutCDPReuseGoesFresh(t *testing.T) {
	cfg := config.Default()
	cfg.ConnectExistingCDP = false

	assert.Equal(t, browser.ModeFresh, browserOptions(cfg).Mode)
}

func TestBrowserOptionsExplicitModeIgnoresCDPReuseFlag(t *testing.T) {
	cfg := config.Default()
	cfg.ConnectExistingCDP = false
	cfg.BrowserMode = "own"

	assert.Equal(t, browser.ModeOwn, browserOptions(cfg).Mode)
}
