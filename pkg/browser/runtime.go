package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// cleanupGracePeriod bounds the wait between a graceful terminate request and
// the forced kill during handle cleanup.
const cleanupGracePeriod = 5 * time.Second

// Options carries the validated settings a negotiation pass needs.
type Options struct {
	// Mode is the connection strategy. ModeAuto is resolved to ModeOwn or
	// ModeFresh before any stateful action.
	Mode Mode

	// EndpointURL is an explicitly configured debugging URL, probed before
	// any port-derived loopback candidates.
	EndpointURL string

	// Port is the debugging port used both to derive probe candidates and as
	// the desired port for a fresh launch.
	Port int

	// ExecutablePath optionally pins the browser binary for fresh launches.
	ExecutablePath string

	// UserDataDir is the primary profile root for fresh launches.
	UserDataDir string

	// ProfileDirectory names the profile inside the user-data dir.
	ProfileDirectory string

	// Headless launches without a visible window.
	Headless bool

	// StartupTimeout bounds a fresh launch's readiness poll.
	StartupTimeout time.Duration
}

// Handle is the resolved outcome of a negotiation pass. It is owned by the
// run driver and read exactly once by the shutdown path.
type Handle struct {
	// Mode is the resolved strategy; never ModeAuto.
	Mode Mode

	// Endpoint is the live debugging URL. Empty only in ModeManaged.
	Endpoint string

	// proc is non-nil iff Mode is ModeFresh: cleanup is structurally unable
	// to act on a process this package does not own.
	proc *Process

	log logrus.FieldLogger
}

// OwnedProcess returns the process this handle owns, or nil.
func (h *Handle) OwnedProcess() *Process {
	return h.proc
}

// Cleanup releases the owned browser process, if any. It is a no-op when
// keepAlive is set, when no process is owned, or when the process already
// exited on its own. Failures are logged, never returned: an unkillable
// process must not abort the caller's shutdown sequence. Cleanup is
// idempotent.
func (h *Handle) Cleanup(keepAlive bool) {
	if keepAlive || h.proc == nil {
		return
	}
	proc := h.proc
	if proc.Exited() {
		return
	}

	if err := proc.Terminate(); err != nil {
		h.forceKill(proc)
		return
	}
	select {
	case <-proc.done:
		h.log.Info("Stopped fresh browser process.")
	case <-time.After(cleanupGracePeriod):
		h.forceKill(proc)
	}
}

func (h *Handle) forceKill(proc *Process) {
	if err := proc.Kill(); err != nil {
		h.log.Errorf("Failed to close fresh browser process cleanly: %v", err)
		return
	}
	h.log.Info("Killed fresh browser process.")
}

// Negotiator resolves Options into a Handle. One negotiation pass runs per
// invocation; liveness results are never cached across passes.
type Negotiator struct {
	prober *Prober
	launch func(ctx context.Context, cfg LaunchConfig) (*Process, error)
	log    logrus.FieldLogger
}

// NewNegotiator returns a negotiator wired to a real prober and launcher.
func NewNegotiator(log logrus.FieldLogger) *Negotiator {
	return &Negotiator{
		prober: NewProber(),
		launch: NewLauncher(log).Launch,
		log:    log,
	}
}

// Acquire runs one negotiation pass and returns a resolved handle or a fatal
// error. No state transition occurs after a fatal error.
func (n *Negotiator) Acquire(ctx context.Context, opts Options) (*Handle, error) {
	mode := opts.Mode
	candidates := CandidateEndpoints(opts.EndpointURL, opts.Port)

	if mode == ModeAuto {
		if endpoint, ok := n.prober.FirstAlive(ctx, candidates); ok {
			n.log.Info("Browser mode auto -> own (existing debugging endpoint found).")
			return &Handle{Mode: ModeOwn, Endpoint: endpoint, log: n.log}, nil
		}
		n.log.Info("Browser mode auto -> fresh (no existing debugging endpoint).")
		mode = ModeFresh
	}

	switch mode {
	case ModeOwn:
		endpoint, ok := n.prober.FirstAlive(ctx, candidates)
		if !ok {
			return nil, &NoLiveEndpointError{
				Candidates: candidates,
				Hint:       ManualStartHint(opts.Port),
			}
		}
		n.log.Infof("Using existing browser debugging endpoint: %s", endpoint)
		return &Handle{Mode: ModeOwn, Endpoint: endpoint, log: n.log}, nil

	case ModeFresh:
		proc, err := n.launchFresh(ctx, opts)
		if err != nil {
			return nil, err
		}
		return &Handle{Mode: ModeFresh, Endpoint: proc.Endpoint(), proc: proc, log: n.log}, nil

	case ModeManaged:
		n.log.Info("Browser lifecycle left to the automation library (managed mode).")
		return &Handle{Mode: ModeManaged, log: n.log}, nil
	}

	return nil, fmt.Errorf("invalid browser mode %q", opts.Mode)
}

// launchFresh runs at most two sequential launch attempts: the primary
// user-data directory first, then exactly one retry against a freshly
// suffixed sibling directory to isolate from a possibly-corrupted profile
// lock. A second failure is fatal and reports both attempts.
func (n *Negotiator) launchFresh(ctx context.Context, opts Options) (*Process, error) {
	execPath, err := ResolveExecutable(opts.ExecutablePath)
	if err != nil {
		return nil, err
	}

	cfg := LaunchConfig{
		ExecutablePath:   execPath,
		UserDataDir:      opts.UserDataDir,
		Port:             opts.Port,
		ProfileDirectory: opts.ProfileDirectory,
		Headless:         opts.Headless,
		StartupTimeout:   opts.StartupTimeout,
	}

	proc, firstErr := n.launch(ctx, cfg)
	if firstErr == nil {
		return proc, nil
	}
	if ctx.Err() != nil {
		return nil, firstErr
	}

	retryCfg := cfg
	retryCfg.UserDataDir = fmt.Sprintf("%s-run-%s", cfg.UserDataDir, uuid.NewString()[:8])
	n.log.Warnf("Fresh browser failed with profile %s (%v). Retrying with isolated profile %s.",
		cfg.UserDataDir, firstErr, retryCfg.UserDataDir)

	proc, retryErr := n.launch(ctx, retryCfg)
	if retryErr != nil {
		return nil, fmt.Errorf("fresh browser launch failed twice: %s: %v; retry %s: %w",
			cfg.UserDataDir, firstErr, retryCfg.UserDataDir, retryErr)
	}
	return proc, nil
}
