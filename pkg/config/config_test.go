package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearProviderEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"OPENAI_API_KEY", "OPENAI_KEY", "GOOGLE_API_KEY", "GEMINI_API_KEY", "PROVIDER"} {
		t.Setenv(name, "")
	}
}

func TestResolveProviderTieBreak(t *testing.T) {
	tests := []struct {
		name      string
		provider  string
		openaiKey string
		googleKey string
		want      string
	}{
		{"auto prefers openai with both keys", "auto", "sk-test", "g-test", ProviderOpenAI},
		{"auto picks gemini with only google key", "auto", "", "g-test", ProviderGemini},
		{"auto picks openai with only openai key", "auto", "sk-test", "", ProviderOpenAI},
		{"auto defaults to openai with no keys", "auto", "", "", ProviderOpenAI},
		{"explicit gemini ignores openai key", "gemini", "sk-test", "g-test", ProviderGemini},
		{"google is an alias for gemini", "google", "", "", ProviderGemini},
		{"explicit openai", "openai", "", "g-test", ProviderOpenAI},
		{"empty behaves like auto", "", "", "g-test", ProviderGemini},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearProviderEnv(t)
			t.Setenv("OPENAI_API_KEY", tt.openaiKey)
			t.Setenv("GOOGLE_API_KEY", tt.googleKey)

			c := Default()
			c.Provider = tt.provider

			got, err := c.ResolveProvider()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveProviderRejectsUnknown(t *testing.T) {
	c := Default()
	c.Provider = "anthropic"
	_, err := c.ResolveProvider()
	assert.Error(t, err)
}

func TestResolveModel(t *testing.T) {
	c := Default()
	assert.Equal(t, DefaultOpenAIModel, c.ResolveModel(ProviderOpenAI))
	assert.Equal(t, DefaultGeminiModel, c.ResolveModel(ProviderGemini))

	c.Model = "gpt-5"
	assert.Equal(t, "gpt-5", c.ResolveModel(ProviderGemini))
}

func TestTaskTextOverrideWinsOverFile(t *testing.T) {
	c := Default()
	c.TaskFile = filepath.Join(t.TempDir(), "missing.txt")
	c.TaskOverride = "  check the weather  "

	task, err := c.TaskText()
	require.NoError(t, err)
	assert.Equal(t, "check the weather", task)
}

func TestTaskTextReadsPromptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt.txt")
	require.NoError(t, os.WriteFile(path, []byte("book a table\n"), 0o644))

	c := Default()
	c.TaskFile = path

	task, err := c.TaskText()
	require.NoError(t, err)
	assert.Equal(t, "book a table", task)
}

func TestTaskTextErrors(t *testing.T) {
	dir := t.TempDir()

	c := Default()
	c.TaskFile = filepath.Join(dir, "missing.txt")
	_, err := c.TaskText()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "task file not found")

	empty := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(empty, []byte("  \n"), 0o644))
	c.TaskFile = empty
	_, err = c.TaskText()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "task file is empty")
}

func TestValidate(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	c := Default()
	c.BrowserMode = "Fresh"
	c.AllowedDomains = []string{"*.example.com"}

	require.NoError(t, c.Validate())
	assert.Equal(t, "fresh", string(c.Mode()))
	assert.True(t, c.Domains().Allows("app.example.com"))
	assert.False(t, c.Domains().Allows("example.org"))
}

func TestValidateFailures(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown browser mode", func(c *Config) { c.BrowserMode = "attached" }},
		{"port out of range", func(c *Config) { c.CDPPort = 70000 }},
		{"zero port", func(c *Config) { c.CDPPort = 0 }},
		{"non-positive start timeout", func(c *Config) { c.FreshStartTimeout = 0 }},
		{"non-positive max steps", func(c *Config) { c.MaxSteps = 0 }},
		{"non-positive llm timeout", func(c *Config) { c.LLMTimeout = 0 }},
		{"non-positive step timeout", func(c *Config) { c.StepTimeout = 0 }},
		{"bad domain pattern", func(c *Config) { c.AllowedDomains = []string{"[invalid"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestValidateRequiresProviderKey(t *testing.T) {
	clearProviderEnv(t)

	c := Default()
	c.Provider = ProviderOpenAI
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")

	c = Default()
	c.Provider = ProviderGemini
	err = c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOOGLE_API_KEY")
}
