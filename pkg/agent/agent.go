// Package agent runs an LLM-driven browsing loop over a Chrome page: observe
// the page, ask the model for the next action, apply it, repeat until the
// model declares the task done or the step budget runs out.
package agent

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/entrhq/surf/pkg/security/domains"
)

// Completer produces a single chat completion. llm.Client satisfies it.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Options bounds and scopes an agent run.
type Options struct {
	// MaxSteps caps the number of model decisions per run.
	MaxSteps int

	// StepTimeout bounds each individual page action.
	StepTimeout time.Duration

	// Domains restricts navigation targets. Nil allows all hosts.
	Domains *domains.Policy

	Logger logrus.FieldLogger
}

// Agent drives a Browser with decisions from a Completer.
type Agent struct {
	llm     Completer
	browser Browser
	opts    Options
	log     logrus.FieldLogger
}

// New builds an agent. Zero or negative MaxSteps falls back to 60.
func New(llm Completer, browser Browser, opts Options) *Agent {
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = 60
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Agent{llm: llm, browser: browser, opts: opts, log: log}
}

// Run works the task to completion and returns the model's final result
// text. It fails when the step budget is exhausted or the context ends.
func (a *Agent) Run(ctx context.Context, task string) (string, error) {
	var history []string

	for step := 1; step <= a.opts.MaxSteps; step++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		obs, err := a.browser.Observe()
		if err != nil {
			return "", fmt.Errorf("observing page: %w", err)
		}

		reply, err := a.llm.Complete(ctx, systemPrompt, buildUserPrompt(task, obs, history))
		if err != nil {
			return "", fmt.Errorf("step %d: %w", step, err)
		}

		action, err := ParseAction(reply)
		if err != nil {
			a.log.WithField("step", step).WithError(err).Warn("Model reply was not a valid action.")
			history = append(history, fmt.Sprintf("invalid reply (%v); answer with one JSON action object only", err))
			continue
		}

		stepLog := a.log.WithFields(logrus.Fields{"step": step, "action": string(action.Type)})
		if action.Reason != "" {
			stepLog = stepLog.WithField("reason", truncate(action.Reason, 120))
		}
		stepLog.Info("Executing step.")

		if action.Type == ActionDone {
			result := action.Result
			if result == "" {
				result = action.Reason
			}
			stepLog.Info("Task reported done.")
			return result, nil
		}

		history = append(history, a.apply(action))
	}

	return "", fmt.Errorf("task not completed within %d steps", a.opts.MaxSteps)
}

// apply executes one non-terminal action and describes the outcome for the
// next prompt. Action failures feed back to the model instead of aborting
// the run.
func (a *Agent) apply(action *Action) string {
	switch action.Type {
	case ActionNavigate:
		host, err := hostOf(action.URL)
		if err != nil {
			return fmt.Sprintf("navigate %s failed: %v", action.URL, err)
		}
		if !a.opts.Domains.Allows(host) {
			a.log.WithField("host", host).Warn("Navigation blocked by allowed-domains policy.")
			return fmt.Sprintf("navigate %s blocked: host %s is outside the allowed domains", action.URL, host)
		}
		if err := a.browser.Navigate(action.URL, a.opts.StepTimeout); err != nil {
			return fmt.Sprintf("navigate %s failed: %v", action.URL, err)
		}
		return fmt.Sprintf("navigated to %s", action.URL)

	case ActionClick:
		if err := a.browser.Click(action.Selector, a.opts.StepTimeout); err != nil {
			return fmt.Sprintf("click %s failed: %v", action.Selector, err)
		}
		return fmt.Sprintf("clicked %s", action.Selector)

	case ActionFill:
		if err := a.browser.Fill(action.Selector, action.Text, a.opts.StepTimeout); err != nil {
			return fmt.Sprintf("fill %s failed: %v", action.Selector, err)
		}
		return fmt.Sprintf("filled %s", action.Selector)

	case ActionExtract:
		text, err := a.browser.Extract(action.Selector)
		if err != nil {
			return fmt.Sprintf("extract failed: %v", err)
		}
		return fmt.Sprintf("extracted: %s", truncate(text, 1500))
	}

	return fmt.Sprintf("unhandled action %q", action.Type)
}

func hostOf(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("url has no host")
	}
	return u.Hostname(), nil
}
