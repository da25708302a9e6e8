// Package config resolves runner settings with the precedence
// CLI flags > config file > environment (including .env) > defaults.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/entrhq/surf/pkg/browser"
	"github.com/entrhq/surf/pkg/security/domains"
)

const (
	// DefaultOpenAIModel is used when the OpenAI provider is selected and no
	// model override is configured.
	DefaultOpenAIModel = "gpt-5-mini"

	// DefaultGeminiModel is used when the Gemini provider is selected and no
	// model override is configured.
	DefaultGeminiModel = "gemini-2.5-flash"

	// ProviderOpenAI and ProviderGemini are the supported LLM providers.
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	// ProviderAuto picks a provider from the available credentials.
	ProviderAuto = "auto"
)

// Config holds all validated runner settings.
type Config struct {
	// LLM settings.
	Provider              string
	Model                 string
	OpenAIModel           string
	GeminiModel           string
	OpenAIReasoningEffort string
	Temperature           *float64

	// Task source.
	TaskFile     string
	TaskOverride string

	// Logging.
	LogFile  string
	LogLevel string

	// Browser acquisition.
	ConnectExistingCDP   bool
	CDPURL               string
	CDPPort              int
	BrowserMode          string
	ChromeExecutablePath string
	FreshUserDataDir     string
	FreshStartTimeout    time.Duration
	ProfileDirectory     string
	Headless             bool
	KeepAlive            bool

	// Agent limits.
	AllowedDomains []string
	MaxSteps       int
	LLMTimeout     time.Duration
	StepTimeout    time.Duration

	domainPolicy *domains.Policy
}

// Default returns a config populated with defaults only.
func Default() *Config {
	return &Config{
		Provider:              ProviderAuto,
		OpenAIModel:           DefaultOpenAIModel,
		GeminiModel:           DefaultGeminiModel,
		OpenAIReasoningEffort: "low",
		TaskFile:              "prompt.txt",
		LogFile:               "logs/surf.log",
		LogLevel:              "info",
		ConnectExistingCDP:    true,
		CDPPort:               9222,
		BrowserMode:           string(browser.ModeAuto),
		FreshUserDataDir:      ".surf/chrome-fresh-profile",
		FreshStartTimeout:     browser.DefaultStartupTimeout,
		ProfileDirectory:      "Default",
		MaxSteps:              60,
		LLMTimeout:            90 * time.Second,
		StepTimeout:           120 * time.Second,
	}
}

// Mode returns the validated browser mode. Call after Validate.
func (c *Config) Mode() browser.Mode {
	return browser.Mode(c.BrowserMode)
}

// Domains returns the compiled allowed-domains policy. Call after Validate.
func (c *Config) Domains() *domains.Policy {
	return c.domainPolicy
}

// OpenAIAPIKey reads the OpenAI credential from the environment.
func (c *Config) OpenAIAPIKey() string {
	return cleanEnv(os.Getenv("OPENAI_API_KEY"))
}

// GoogleAPIKey reads the Google credential from the environment.
func (c *Config) GoogleAPIKey() string {
	return cleanEnv(os.Getenv("GOOGLE_API_KEY"))
}

// ResolveProvider normalizes the configured provider name, applying the
// credential-based default for "auto": Gemini is chosen only when a Google
// key is present and an OpenAI key is not. When both credentials are set,
// OpenAI wins; set PROVIDER explicitly to override.
func (c *Config) ResolveProvider() (string, error) {
	switch strings.ToLower(strings.TrimSpace(c.Provider)) {
	case ProviderGemini, "google":
		return ProviderGemini, nil
	case ProviderOpenAI:
		return ProviderOpenAI, nil
	case ProviderAuto, "":
		if c.GoogleAPIKey() != "" && c.OpenAIAPIKey() == "" {
			return ProviderGemini, nil
		}
		return ProviderOpenAI, nil
	}
	return "", fmt.Errorf("unsupported provider %q: use auto, openai, or gemini", c.Provider)
}

// ResolveModel returns the model for the given provider, honoring an
// explicit MODEL override.
func (c *Config) ResolveModel(provider string) string {
	if c.Model != "" {
		return c.Model
	}
	if provider == ProviderGemini {
		return c.GeminiModel
	}
	return c.OpenAIModel
}

// TaskText returns the task to execute: an inline override when present,
// otherwise the contents of the prompt file.
func (c *Config) TaskText() (string, error) {
	if task := strings.TrimSpace(c.TaskOverride); task != "" {
		return task, nil
	}
	data, err := os.ReadFile(c.TaskFile)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("task file not found: %s (create it or pass -task)", c.TaskFile)
		}
		return "", fmt.Errorf("reading task file: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("task file is empty: %s", c.TaskFile)
	}
	return text, nil
}

// Validate normalizes and checks all settings. It must be called before the
// config is used.
func (c *Config) Validate() error {
	mode, err := browser.ParseMode(strings.ToLower(strings.TrimSpace(c.BrowserMode)))
	if err != nil {
		return err
	}
	c.BrowserMode = string(mode)

	provider, err := c.ResolveProvider()
	if err != nil {
		return err
	}
	if provider == ProviderOpenAI && c.OpenAIAPIKey() == "" {
		return fmt.Errorf("openai provider selected but OPENAI_API_KEY is not set")
	}
	if provider == ProviderGemini && c.GoogleAPIKey() == "" {
		return fmt.Errorf("gemini provider selected but GOOGLE_API_KEY is not set")
	}

	if c.CDPPort <= 0 || c.CDPPort > 65535 {
		return fmt.Errorf("CDP_PORT must be in 1-65535, got %d", c.CDPPort)
	}
	if c.FreshStartTimeout <= 0 {
		return fmt.Errorf("FRESH_CHROME_START_TIMEOUT must be greater than 0")
	}
	if c.MaxSteps <= 0 {
		return fmt.Errorf("MAX_STEPS must be greater than 0")
	}
	if c.LLMTimeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT must be greater than 0")
	}
	if c.StepTimeout <= 0 {
		return fmt.Errorf("STEP_TIMEOUT must be greater than 0")
	}

	policy, err := domains.Compile(c.AllowedDomains)
	if err != nil {
		return err
	}
	c.domainPolicy = policy

	return nil
}
