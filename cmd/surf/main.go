// Package main provides surf, an LLM-driven browsing agent that acquires a
// Chrome runtime over CDP and works a natural-language task against it.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/entrhq/surf/pkg/config"
	"github.com/entrhq/surf/pkg/logging"
	"github.com/entrhq/surf/pkg/runner"
)

const version = "0.1.0"

const (
	exitOK        = 0
	exitRunError  = 1
	exitConfig    = 2
	exitInterrupt = 130
)

// cliFlags holds the raw command-line overrides. Only flags the user
// actually set are applied over the env-and-file config.
type cliFlags struct {
	task        string
	promptFile  string
	configFile  string
	browserMode string
	cdpURL      string
	cdpPort     int
	chromePath  string
	headless    bool
	showBrowser bool
	noCDP       bool
	maxSteps    int
	logLevel    string
	showVersion bool
}

func main() {
	os.Exit(run())
}

func run() int {
	flags, seen := parseFlags()

	if flags.showVersion {
		fmt.Printf("surf v%s\n", version)
		return exitOK
	}

	cfg, err := buildConfig(flags, seen)
	if err != nil {
		fmt.Fprintf(os.Stderr, "surf: %v\n", err)
		return exitConfig
	}

	log, err := logging.Setup(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "surf: %v\n", err)
		return exitConfig
	}

	task, err := cfg.TaskText()
	if err != nil {
		fmt.Fprintf(os.Stderr, "surf: %v\n", err)
		return exitConfig
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Warn("Interrupt received, shutting down.")
		cancel()
	}()

	log.WithField("task", task).Info("Starting task.")

	result, err := runner.New(cfg, log).Run(ctx, task)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return exitInterrupt
		}
		log.WithError(err).Error("Task failed.")
		return exitRunError
	}

	log.Info("Task finished.")
	fmt.Println(result)
	return exitOK
}

// parseFlags parses the command line and records which flags were set.
func parseFlags() (*cliFlags, map[string]bool) {
	flags := &cliFlags{}

	flag.StringVar(&flags.task, "task", "", "Task description (overrides the prompt file)")
	flag.StringVar(&flags.promptFile, "prompt-file", "", "File holding the task text (default prompt.txt)")
	flag.StringVar(&flags.configFile, "config", "", "Path to a YAML config file")
	flag.StringVar(&flags.browserMode, "browser-mode", "", "Browser connection mode: auto, own, fresh, or managed")
	flag.StringVar(&flags.cdpURL, "cdp-url", "", "Explicit CDP endpoint URL to probe first")
	flag.IntVar(&flags.cdpPort, "cdp-port", 0, "Remote debugging port (default 9222)")
	flag.StringVar(&flags.chromePath, "chrome-path", "", "Chrome executable path")
	flag.BoolVar(&flags.headless, "headless", false, "Run the browser headless")
	flag.BoolVar(&flags.showBrowser, "show-browser", false, "Force a visible browser window")
	flag.BoolVar(&flags.noCDP, "no-cdp", false, "Never adopt an existing CDP endpoint; launch fresh")
	flag.IntVar(&flags.maxSteps, "max-steps", 0, "Maximum agent steps")
	flag.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flag.BoolVar(&flags.showVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "surf - LLM browsing agent over Chrome DevTools Protocol\n\n")
		fmt.Fprintf(os.Stderr, "Usage: surf [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Run a task against an already-running Chrome\n")
		fmt.Fprintf(os.Stderr, "  surf -task \"Find today's HN top story\" -browser-mode own\n\n")
		fmt.Fprintf(os.Stderr, "  # Launch an isolated headless Chrome for the task\n")
		fmt.Fprintf(os.Stderr, "  surf -task \"...\" -browser-mode fresh -headless\n\n")
	}

	flag.Parse()

	seen := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { seen[f.Name] = true })
	return flags, seen
}

// buildConfig layers configuration sources: defaults, then env (.env
// included), then the optional YAML file, then explicit CLI flags.
func buildConfig(flags *cliFlags, seen map[string]bool) (*config.Config, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}

	if flags.configFile != "" {
		if err := cfg.ApplyFile(flags.configFile); err != nil {
			return nil, err
		}
	}

	if flags.task != "" {
		cfg.TaskOverride = flags.task
	}
	if flags.promptFile != "" {
		cfg.TaskFile = flags.promptFile
	}
	if flags.browserMode != "" {
		cfg.BrowserMode = flags.browserMode
	}
	if flags.cdpURL != "" {
		cfg.CDPURL = flags.cdpURL
	}
	if flags.cdpPort != 0 {
		cfg.CDPPort = flags.cdpPort
	}
	if flags.chromePath != "" {
		cfg.ChromeExecutablePath = flags.chromePath
	}
	if seen["headless"] {
		cfg.Headless = flags.headless
	}
	if flags.showBrowser {
		cfg.Headless = false
	}
	if flags.noCDP {
		cfg.ConnectExistingCDP = false
	}
	if flags.maxSteps != 0 {
		cfg.MaxSteps = flags.maxSteps
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
