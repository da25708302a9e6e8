package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileOverrides is the YAML shape of an optional config file. Every field is
// optional; only set fields override the current config.
type fileOverrides struct {
	Provider       string   `yaml:"provider"`
	Model          string   `yaml:"model"`
	AllowedDomains []string `yaml:"allowed_domains"`

	Browser struct {
		Mode                string  `yaml:"mode"`
		CDPURL              string  `yaml:"cdp_url"`
		CDPPort             int     `yaml:"cdp_port"`
		ExecutablePath      string  `yaml:"executable_path"`
		UserDataDir         string  `yaml:"user_data_dir"`
		ProfileDirectory    string  `yaml:"profile_directory"`
		StartTimeoutSeconds float64 `yaml:"start_timeout_seconds"`
		Headless            *bool   `yaml:"headless"`
		KeepAlive           *bool   `yaml:"keep_alive"`
	} `yaml:"browser"`

	Agent struct {
		MaxSteps           int     `yaml:"max_steps"`
		LLMTimeoutSeconds  float64 `yaml:"llm_timeout_seconds"`
		StepTimeoutSeconds float64 `yaml:"step_timeout_seconds"`
	} `yaml:"agent"`

	Log struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"log"`
}

// ApplyFile layers a YAML config file over c. Only fields set in the file
// are applied; cmd/surf applies the file after FromEnv and before flags.
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	var o fileOverrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if o.Provider != "" {
		c.Provider = o.Provider
	}
	if o.Model != "" {
		c.Model = o.Model
	}
	if len(o.AllowedDomains) > 0 {
		c.AllowedDomains = o.AllowedDomains
	}

	if o.Browser.Mode != "" {
		c.BrowserMode = o.Browser.Mode
	}
	if o.Browser.CDPURL != "" {
		c.CDPURL = o.Browser.CDPURL
	}
	if o.Browser.CDPPort != 0 {
		c.CDPPort = o.Browser.CDPPort
	}
	if o.Browser.ExecutablePath != "" {
		c.ChromeExecutablePath = o.Browser.ExecutablePath
	}
	if o.Browser.UserDataDir != "" {
		c.FreshUserDataDir = o.Browser.UserDataDir
	}
	if o.Browser.ProfileDirectory != "" {
		c.ProfileDirectory = o.Browser.ProfileDirectory
	}
	if o.Browser.StartTimeoutSeconds > 0 {
		c.FreshStartTimeout = time.Duration(o.Browser.StartTimeoutSeconds * float64(time.Second))
	}
	if o.Browser.Headless != nil {
		c.Headless = *o.Browser.Headless
	}
	if o.Browser.KeepAlive != nil {
		c.KeepAlive = *o.Browser.KeepAlive
	}

	if o.Agent.MaxSteps != 0 {
		c.MaxSteps = o.Agent.MaxSteps
	}
	if o.Agent.LLMTimeoutSeconds > 0 {
		c.LLMTimeout = time.Duration(o.Agent.LLMTimeoutSeconds * float64(time.Second))
	}
	if o.Agent.StepTimeoutSeconds > 0 {
		c.StepTimeout = time.Duration(o.Agent.StepTimeoutSeconds * float64(time.Second))
	}

	if o.Log.Level != "" {
		c.LogLevel = o.Log.Level
	}
	if o.Log.File != "" {
		c.LogFile = o.Log.File
	}

	return nil
}
