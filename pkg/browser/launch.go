package browser

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// pollInterval is the fixed interval between readiness probes while a
	// launched process starts up.
	pollInterval = 250 * time.Millisecond

	// DefaultStartupTimeout bounds how long a fresh browser may take to
	// expose its debugging endpoint.
	DefaultStartupTimeout = 45 * time.Second
)

// LaunchConfig describes a single browser launch attempt. It is immutable
// once built.
type LaunchConfig struct {
	// ExecutablePath is the resolved browser binary.
	ExecutablePath string

	// UserDataDir is the profile storage root; created if missing.
	UserDataDir string

	// Port is the desired remote-debugging port. The launcher silently
	// reallocates when it is already occupied, so the process may end up
	// bound elsewhere.
	Port int

	// ProfileDirectory names the profile inside the user-data dir.
	ProfileDirectory string

	// Headless adds the headless flag to the launch arguments.
	Headless bool

	// StartupTimeout bounds the readiness poll. Zero means
	// DefaultStartupTimeout.
	StartupTimeout time.Duration
}

// Process is a browser process owned by this package, together with the port
// it actually bound and the user-data directory it runs against.
type Process struct {
	Port        int
	UserDataDir string
	StartedAt   time.Time

	cmd      *exec.Cmd
	done     chan struct{}
	exitCode int
}

// Endpoint returns the debugging endpoint URL of the process.
func (p *Process) Endpoint() string {
	return fmt.Sprintf("http://127.0.0.1:%d", p.Port)
}

// Exited reports whether the process has terminated, without blocking.
func (p *Process) Exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// ExitCode returns the process exit code. Only meaningful after Exited
// reports true.
func (p *Process) ExitCode() int {
	return p.exitCode
}

// Terminate requests graceful termination.
func (p *Process) Terminate() error {
	return p.cmd.Process.Signal(syscall.SIGTERM)
}

// Kill forcibly ends the process.
func (p *Process) Kill() error {
	return p.cmd.Process.Kill()
}

// Launcher spawns browser processes and waits for their debugging endpoint
// to come up.
type Launcher struct {
	log logrus.FieldLogger

	// probe is the readiness check; it defaults to a real CDP prober and is
	// only replaced in tests.
	probe func(ctx context.Context, baseURL string) Status
}

// NewLauncher returns a launcher using a real endpoint prober.
func NewLauncher(log logrus.FieldLogger) *Launcher {
	return &Launcher{
		log:   log,
		probe: NewProber().Probe,
	}
}

// Launch starts a browser per cfg and polls its endpoint until it is alive.
// On every failure path the spawned process is torn down before the error is
// returned, so a failed launch never leaks an orphan to the caller.
func (l *Launcher) Launch(ctx context.Context, cfg LaunchConfig) (*Process, error) {
	if err := os.MkdirAll(cfg.UserDataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating user data dir: %w", err)
	}

	port := cfg.Port
	if portOpen(port) {
		free, err := FindFreePort(port+1, DefaultPortScanStop)
		if err != nil {
			return nil, err
		}
		l.log.Infof("Debugging port %d is busy; using free port %d for fresh browser.", port, free)
		port = free
	}

	args := []string{
		fmt.Sprintf("--remote-debugging-port=%d", port),
		fmt.Sprintf("--user-data-dir=%s", cfg.UserDataDir),
		fmt.Sprintf("--profile-directory=%s", cfg.ProfileDirectory),
		"--no-first-run",
		"--no-default-browser-check",
	}
	if cfg.Headless {
		args = append(args, "--headless=new")
	}

	// Stdin/stdout/stderr stay nil so the child gets /dev/null instead of
	// the runner's terminal.
	cmd := exec.Command(cfg.ExecutablePath, args...)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting browser: %w", err)
	}

	proc := &Process{
		Port:        port,
		UserDataDir: cfg.UserDataDir,
		StartedAt:   time.Now(),
		cmd:         cmd,
		done:        make(chan struct{}),
	}
	go func() {
		err := cmd.Wait()
		proc.exitCode = exitCodeFrom(cmd, err)
		close(proc.done)
	}()

	timeout := cfg.StartupTimeout
	if timeout <= 0 {
		timeout = DefaultStartupTimeout
	}
	deadline := time.Now().Add(timeout)
	endpoint := proc.Endpoint()

	for time.Now().Before(deadline) {
		if l.probe(ctx, endpoint) == Alive {
			l.log.Infof("Started fresh browser on %s (profile: %s)", endpoint, cfg.UserDataDir)
			return proc, nil
		}
		if proc.Exited() {
			return nil, &ExitError{Code: proc.ExitCode()}
		}
		select {
		case <-ctx.Done():
			l.teardown(proc)
			return nil, ctx.Err()
		case <-time.After(pollInterval):
		}
	}

	l.teardown(proc)
	return nil, fmt.Errorf("%w (%s)", ErrStartupTimeout, timeout)
}

// teardown stops a process that failed to become ready.
func (l *Launcher) teardown(proc *Process) {
	if proc.Exited() {
		return
	}
	if err := proc.Terminate(); err != nil {
		l.log.Warnf("Failed to terminate browser process: %v", err)
	}
	select {
	case <-proc.done:
	case <-time.After(2 * time.Second):
		if err := proc.Kill(); err != nil {
			l.log.Warnf("Failed to kill browser process: %v", err)
		}
	}
}

// exitCodeFrom extracts a process exit code from cmd.Wait's result.
func exitCodeFrom(cmd *exec.Cmd, err error) int {
	if cmd.ProcessState != nil {
		return cmd.ProcessState.ExitCode()
	}
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode()
		}
	}
	return -1
}
