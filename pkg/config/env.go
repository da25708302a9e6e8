package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// inlineCommentRe strips trailing "  # comment" noise that tends to leak
// into .env values.
var inlineCommentRe = regexp.MustCompile(`\s+#.*$`)

func cleanEnv(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	return strings.TrimSpace(inlineCommentRe.ReplaceAllString(value, ""))
}

func envStr(name, fallback string) string {
	if value := cleanEnv(os.Getenv(name)); value != "" {
		return value
	}
	return fallback
}

func envBool(name string, fallback bool) (bool, error) {
	value := cleanEnv(os.Getenv(name))
	if value == "" {
		return fallback, nil
	}
	switch strings.ToLower(value) {
	case "1", "true", "yes", "y", "on":
		return true, nil
	case "0", "false", "no", "n", "off":
		return false, nil
	}
	return false, fmt.Errorf("environment variable %s must be a boolean value, got %q", name, value)
}

func envInt(name string, fallback int) (int, error) {
	value := cleanEnv(os.Getenv(name))
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("environment variable %s must be an integer, got %q", name, value)
	}
	return n, nil
}

// envSeconds parses a float number of seconds into a duration, matching the
// original env-file conventions (FRESH_CHROME_START_TIMEOUT=45).
func envSeconds(name string, fallback time.Duration) (time.Duration, error) {
	value := cleanEnv(os.Getenv(name))
	if value == "" {
		return fallback, nil
	}
	secs, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("environment variable %s must be a number of seconds, got %q", name, value)
	}
	return time.Duration(secs * float64(time.Second)), nil
}

func envFloatPtr(name string) (*float64, error) {
	value := cleanEnv(os.Getenv(name))
	if value == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("environment variable %s must be a float, got %q", name, value)
	}
	return &f, nil
}

func envList(name string, fallback []string) []string {
	value := cleanEnv(os.Getenv(name))
	if value == "" {
		return fallback
	}
	var items []string
	for _, raw := range strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == ';' }) {
		if token := strings.TrimSpace(raw); token != "" {
			items = append(items, token)
		}
	}
	if len(items) == 0 {
		return fallback
	}
	return items
}

// normalizeAPIKeyAliases maps the commonly used alias variables onto the
// canonical ones when the canonical ones are unset.
func normalizeAPIKeyAliases() {
	if alias := cleanEnv(os.Getenv("OPENAI_KEY")); alias != "" && cleanEnv(os.Getenv("OPENAI_API_KEY")) == "" {
		os.Setenv("OPENAI_API_KEY", alias)
	}
	if alias := cleanEnv(os.Getenv("GEMINI_API_KEY")); alias != "" && cleanEnv(os.Getenv("GOOGLE_API_KEY")) == "" {
		os.Setenv("GOOGLE_API_KEY", alias)
	}
}

// FromEnv loads .env (without overriding real environment variables) and
// builds a config from the environment on top of defaults. The result is not
// yet validated: CLI flags may still override fields before Validate runs.
func FromEnv() (*Config, error) {
	// Missing .env is fine; only the process environment applies then.
	_ = godotenv.Load()
	normalizeAPIKeyAliases()

	c := Default()
	c.Provider = strings.ToLower(envStr("PROVIDER", c.Provider))
	c.Model = envStr("MODEL", "")
	c.OpenAIModel = envStr("OPENAI_MODEL", c.OpenAIModel)
	c.GeminiModel = envStr("GEMINI_MODEL", c.GeminiModel)
	c.OpenAIReasoningEffort = strings.ToLower(envStr("OPENAI_REASONING_EFFORT", c.OpenAIReasoningEffort))

	temperature, err := envFloatPtr("TEMPERATURE")
	if err != nil {
		return nil, err
	}
	c.Temperature = temperature

	c.TaskFile = envStr("PROMPT_FILE", c.TaskFile)
	c.LogFile = envStr("LOG_FILE", c.LogFile)
	c.LogLevel = strings.ToLower(envStr("LOG_LEVEL", c.LogLevel))

	if c.ConnectExistingCDP, err = envBool("CONNECT_EXISTING_CDP", c.ConnectExistingCDP); err != nil {
		return nil, err
	}
	c.CDPURL = envStr("CDP_URL", "")
	if c.CDPPort, err = envInt("CDP_PORT", c.CDPPort); err != nil {
		return nil, err
	}
	c.BrowserMode = strings.ToLower(envStr("BROWSER_MODE", c.BrowserMode))
	c.ChromeExecutablePath = envStr("CHROME_EXECUTABLE_PATH", "")
	c.FreshUserDataDir = envStr("FRESH_CHROME_USER_DATA_DIR", c.FreshUserDataDir)
	if c.FreshStartTimeout, err = envSeconds("FRESH_CHROME_START_TIMEOUT", c.FreshStartTimeout); err != nil {
		return nil, err
	}
	c.ProfileDirectory = envStr("PROFILE_DIRECTORY", c.ProfileDirectory)
	if c.Headless, err = envBool("HEADLESS", c.Headless); err != nil {
		return nil, err
	}
	if c.KeepAlive, err = envBool("KEEP_ALIVE", c.KeepAlive); err != nil {
		return nil, err
	}

	c.AllowedDomains = envList("ALLOWED_DOMAINS", nil)
	if c.MaxSteps, err = envInt("MAX_STEPS", c.MaxSteps); err != nil {
		return nil, err
	}
	if c.LLMTimeout, err = envSeconds("LLM_TIMEOUT", c.LLMTimeout); err != nil {
		return nil, err
	}
	if c.StepTimeout, err = envSeconds("STEP_TIMEOUT", c.StepTimeout); err != nil {
		return nil, err
	}

	return c, nil
}
