// Package llm provides the chat-completion client used by the browsing agent.
//
// Both supported providers speak the OpenAI chat-completions protocol: Gemini
// is reached through Google's OpenAI-compatible endpoint, so a single client
// built on the official openai-go SDK covers both.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"github.com/sirupsen/logrus"
)

// GeminiBaseURL is Google's OpenAI-compatible endpoint for Gemini models.
const GeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

// Options configures a Client.
type Options struct {
	// Provider is "openai" or "gemini". It selects the base URL and decides
	// whether reasoning effort applies.
	Provider string

	// APIKey authenticates against the provider.
	APIKey string

	// BaseURL overrides the provider's default endpoint. Useful for proxies
	// and for tests.
	BaseURL string

	// Model is the chat model name.
	Model string

	// Temperature is optional; nil leaves the provider default in place.
	Temperature *float64

	// ReasoningEffort is passed through for OpenAI reasoning models.
	// Ignored for Gemini.
	ReasoningEffort string

	// Timeout bounds each completion call.
	Timeout time.Duration

	Logger logrus.FieldLogger
}

// Client issues single-shot chat completions.
type Client struct {
	api         openai.Client
	provider    string
	model       string
	temperature *float64
	effort      string
	timeout     time.Duration
	log         logrus.FieldLogger
}

// New builds a completion client for the given provider.
func New(opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("%s API key is required", opts.Provider)
	}
	if opts.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(opts.APIKey)}
	baseURL := opts.BaseURL
	if baseURL == "" && opts.Provider == "gemini" {
		baseURL = GeminiBaseURL
	}
	if baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}

	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Client{
		api:         openai.NewClient(reqOpts...),
		provider:    opts.Provider,
		model:       opts.Model,
		temperature: opts.Temperature,
		effort:      strings.ToLower(opts.ReasoningEffort),
		timeout:     opts.Timeout,
		log:         log,
	}, nil
}

// Provider returns the provider name the client was built for.
func (c *Client) Provider() string { return c.provider }

// Model returns the chat model name in use.
func (c *Client) Model() string { return c.model }

// Complete sends a system plus user message pair and returns the assistant's
// reply text.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	}
	if c.temperature != nil {
		params.Temperature = openai.Float(*c.temperature)
	}
	if c.provider == "openai" && c.effort != "" {
		params.ReasoningEffort = shared.ReasoningEffort(c.effort)
	}

	start := time.Now()
	resp, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%s completion failed: %w", c.provider, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s completion returned no choices", c.provider)
	}

	reply := resp.Choices[0].Message.Content
	c.log.WithFields(logrus.Fields{
		"provider": c.provider,
		"model":    c.model,
		"duration": time.Since(start).Round(time.Millisecond).String(),
		"chars":    len(reply),
	}).Debug("LLM completion finished.")

	return reply, nil
}
