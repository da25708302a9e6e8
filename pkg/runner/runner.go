// Package runner wires config, LLM, browser runtime acquisition, and the
// agent loop into a single task run.
package runner

import (
	"context"
	"fmt"
	"io"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"

	"github.com/entrhq/surf/pkg/agent"
	"github.com/entrhq/surf/pkg/browser"
	"github.com/entrhq/surf/pkg/config"
	"github.com/entrhq/surf/pkg/llm"
)

// Runner executes one browsing task end to end.
type Runner struct {
	cfg *config.Config
	log logrus.FieldLogger
}

// New builds a runner for a validated config.
func New(cfg *config.Config, log logrus.FieldLogger) *Runner {
	return &Runner{cfg: cfg, log: log}
}

// Run resolves the task's LLM and browser runtime, drives the agent to
// completion, and tears everything down in order. Shutdown failures are
// logged and never override the run's outcome.
func (r *Runner) Run(ctx context.Context, task string) (string, error) {
	client, err := r.buildLLM()
	if err != nil {
		return "", err
	}
	r.log.WithFields(logrus.Fields{
		"provider": client.Provider(),
		"model":    client.Model(),
	}).Info("LLM client ready.")

	handle, err := browser.NewNegotiator(r.log).Acquire(ctx, browserOptions(r.cfg))
	if err != nil {
		return "", err
	}
	defer handle.Cleanup(r.cfg.KeepAlive)

	session, err := r.openSession(handle)
	if err != nil {
		return "", err
	}
	defer session.close(r.log)

	a := agent.New(client, agent.NewPageBrowser(session.page), agent.Options{
		MaxSteps:    r.cfg.MaxSteps,
		StepTimeout: r.cfg.StepTimeout,
		Domains:     r.cfg.Domains(),
		Logger:      r.log,
	})
	return a.Run(ctx, task)
}

func (r *Runner) buildLLM() (*llm.Client, error) {
	provider, err := r.cfg.ResolveProvider()
	if err != nil {
		return nil, err
	}

	apiKey := r.cfg.OpenAIAPIKey()
	if provider == config.ProviderGemini {
		apiKey = r.cfg.GoogleAPIKey()
	}

	return llm.New(llm.Options{
		Provider:        provider,
		APIKey:          apiKey,
		Model:           r.cfg.ResolveModel(provider),
		Temperature:     r.cfg.Temperature,
		ReasoningEffort: r.cfg.OpenAIReasoningEffort,
		Timeout:         r.cfg.LLMTimeout,
		Logger:          r.log,
	})
}

// browserOptions maps the validated config onto runtime acquisition options.
// With CDP reuse disabled, auto mode skips endpoint probing and goes straight
// to a fresh launch.
func browserOptions(cfg *config.Config) browser.Options {
	mode := cfg.Mode()
	if mode == browser.ModeAuto && !cfg.ConnectExistingCDP {
		mode = browser.ModeFresh
	}
	return browser.Options{
		Mode:             mode,
		EndpointURL:      cfg.CDPURL,
		Port:             cfg.CDPPort,
		ExecutablePath:   cfg.ChromeExecutablePath,
		UserDataDir:      cfg.FreshUserDataDir,
		ProfileDirectory: cfg.ProfileDirectory,
		Headless:         cfg.Headless,
		StartupTimeout:   cfg.FreshStartTimeout,
	}
}

// session holds the playwright resources for one run.
type session struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page
}

// openSession boots playwright and attaches a page to the acquired runtime:
// ConnectOverCDP when the handle carries an endpoint, a playwright-managed
// Chromium otherwise.
func (r *Runner) openSession(handle *browser.Handle) (*session, error) {
	// Driver output would interleave with our own logging.
	runOpts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}
	if err := playwright.Install(runOpts); err != nil {
		return nil, fmt.Errorf("installing playwright driver: %w", err)
	}
	pw, err := playwright.Run(runOpts)
	if err != nil {
		return nil, fmt.Errorf("starting playwright driver: %w", err)
	}

	s := &session{pw: pw}
	if handle.Endpoint != "" {
		s.browser, err = pw.Chromium.ConnectOverCDP(handle.Endpoint)
		if err != nil {
			pw.Stop()
			return nil, fmt.Errorf("connecting to CDP endpoint %s: %w", handle.Endpoint, err)
		}
		r.log.WithField("endpoint", handle.Endpoint).Info("Connected over CDP.")
	} else {
		s.browser, err = pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
			Headless: playwright.Bool(r.cfg.Headless),
		})
		if err != nil {
			pw.Stop()
			return nil, fmt.Errorf("launching managed browser: %w", err)
		}
		r.log.Info("Launched playwright-managed browser.")
	}

	if s.page, err = firstPage(s.browser); err != nil {
		s.close(r.log)
		return nil, err
	}
	return s, nil
}

// firstPage reuses the runtime's existing context and page when there is
// one, so an adopted browser keeps its open tab. Otherwise a new context and
// page are created.
func firstPage(b playwright.Browser) (playwright.Page, error) {
	if contexts := b.Contexts(); len(contexts) > 0 {
		if pages := contexts[0].Pages(); len(pages) > 0 {
			return pages[0], nil
		}
		page, err := contexts[0].NewPage()
		if err != nil {
			return nil, fmt.Errorf("opening page in existing context: %w", err)
		}
		return page, nil
	}

	context, err := b.NewContext()
	if err != nil {
		return nil, fmt.Errorf("creating browser context: %w", err)
	}
	page, err := context.NewPage()
	if err != nil {
		return nil, fmt.Errorf("opening page: %w", err)
	}
	return page, nil
}

// close tears the session down. For a CDP-attached browser Close only
// disconnects; the process itself is the runtime handle's concern.
func (s *session) close(log logrus.FieldLogger) {
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			log.WithError(err).Warn("Closing browser session failed.")
		}
	}
	if s.pw != nil {
		if err := s.pw.Stop(); err != nil {
			log.WithError(err).Warn("Stopping playwright driver failed.")
		}
	}
}
