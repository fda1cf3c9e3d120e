package supervisor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/pricepulse/ppboot/pkg/logging"
	"github.com/pricepulse/ppboot/pkg/procutil"
)

// DefaultGracePeriod bounds how long a signaled child may keep running
// before SIGKILL escalation.
const DefaultGracePeriod = 10 * time.Second

// Spec describes the child process to launch.
type Spec struct {
	Argv        []string // Argv[0] is the executable
	Env         []string // nil inherits the bootstrapper's environment
	Dir         string   // working directory, empty inherits
	GracePeriod time.Duration
}

// Result is the outcome of one supervised child run. ExitCode is the code
// the bootstrapper must exit with.
type Result struct {
	PID      int
	ExitCode int
	Signal   syscall.Signal // termination signal that drove the outcome, if any
	Killed   bool           // grace period elapsed, child was SIGKILLed
	Duration time.Duration
	Usage    *procutil.Usage // last resource sample, may be nil
	Events   []Event
}

// Supervisor owns exactly one child process for its own lifetime. It is the
// only writer of the child handle; no locking is needed.
type Supervisor struct {
	log     *logging.Logger
	machine *Machine
}

// New creates a supervisor. The machine must already be in
// StateConfigLoaded; the supervisor drives it the rest of the way.
func New(log *logging.Logger, machine *Machine) *Supervisor {
	return &Supervisor{
		log:     log,
		machine: machine,
	}
}

// Run spawns the child, supervises it until exit, and returns the outcome.
// Termination signals (SIGTERM, SIGINT) and context cancellation are
// forwarded to the child's process group; after the grace period the group
// is killed. On every return path the child process group is dead.
func (s *Supervisor) Run(ctx context.Context, spec Spec) (*Result, error) {
	if len(spec.Argv) == 0 {
		s.machine.To(StateExited, 0, "no command to launch")
		return nil, &LaunchError{Message: "no command to launch"}
	}

	grace := spec.GracePeriod
	if grace <= 0 {
		grace = DefaultGracePeriod
	}

	cmd := exec.Command(spec.Argv[0], spec.Argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = spec.Env
	cmd.Dir = spec.Dir

	// Own process group so signals reach the whole child tree
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
		Pgid:    0,
	}

	if err := cmd.Start(); err != nil {
		s.machine.To(StateExited, 0, fmt.Sprintf("spawn failed: %v", err))
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
			return nil, &LaunchError{Message: "executable not found", Err: err}
		}
		return nil, &LaunchError{Message: "spawn failed", Err: err}
	}

	pid := cmd.Process.Pid
	pgid, err := syscall.Getpgid(pid)
	if err != nil {
		pgid = pid
	}

	start := time.Now()
	s.machine.To(StateChildRunning, pid, fmt.Sprintf("spawned %s", spec.Argv[0]))
	s.log.Info("child started", map[string]interface{}{
		"pid":     pid,
		"command": spec.Argv[0],
	})

	waitCh := make(chan error, 1)
	go func() { waitCh <- cmd.Wait() }()

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)

	var received syscall.Signal
	var usage *procutil.Usage
	killed := false

	select {
	case waitErr := <-waitCh:
		return s.finish(waitErr, pid, pgid, start, received, killed, usage)

	case sig := <-sigCh:
		received, _ = sig.(syscall.Signal)
	case <-ctx.Done():
		received = syscall.SIGTERM
	}

	// Shutdown path: forward the signal to the group, then bound the wait.
	if u, err := procutil.Snapshot(pid); err == nil {
		usage = u
	}

	s.log.Info("forwarding signal to child", map[string]interface{}{
		"pid":    pid,
		"signal": SignalName(received),
		"grace":  grace.String(),
	})
	syscall.Kill(-pgid, received)

	timer := time.NewTimer(grace)
	defer timer.Stop()

	select {
	case waitErr := <-waitCh:
		return s.finish(waitErr, pid, pgid, start, received, killed, usage)
	case <-timer.C:
		killed = true
		s.log.Warn("grace period elapsed, killing child group", map[string]interface{}{
			"pid": pid,
		})
		syscall.Kill(-pgid, syscall.SIGKILL)
		waitErr := <-waitCh
		return s.finish(waitErr, pid, pgid, start, received, killed, usage)
	}
}

// finish reaps the wait status, sweeps the process group, and builds the
// result. Outcome rules: a normal child exit passes its code through
// verbatim, even after a signal; a signal-caused death maps to 128+signal,
// preferring the signal the bootstrapper received over the one that
// ultimately killed the child (SIGKILL escalation reports the original).
func (s *Supervisor) finish(waitErr error, pid, pgid int, start time.Time, received syscall.Signal, killed bool, usage *procutil.Usage) (*Result, error) {
	duration := time.Since(start)

	res := &Result{
		PID:      pid,
		Killed:   killed,
		Duration: duration,
		Usage:    usage,
	}

	signaled := false
	var deathSignal syscall.Signal

	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
				signaled = true
				deathSignal = status.Signal()
			} else {
				res.ExitCode = exitErr.ExitCode()
			}
		} else {
			// Wait infrastructure failure, not a child outcome
			res.ExitCode = 1
		}
	}

	if signaled {
		sig := deathSignal
		if received != 0 {
			sig = received
		}
		res.Signal = sig
		res.ExitCode = 128 + int(sig)
	}

	state := StateChildExited
	message := fmt.Sprintf("exited with code %d", res.ExitCode)
	if signaled {
		state = StateChildKilled
		message = fmt.Sprintf("terminated by %s", SignalName(res.Signal))
	}
	s.machine.To(state, pid, message)

	s.sweep(pgid)

	fields := map[string]interface{}{
		"pid":       pid,
		"exit_code": res.ExitCode,
		"duration":  duration.Round(time.Millisecond).String(),
	}
	if usage != nil {
		fields["rss_bytes"] = usage.RSSBytes
	}
	s.log.Info("child exited", fields)

	res.Events = s.machine.Events()
	return res, nil
}

// sweep kills any surviving members of the child's process group. The child
// leader is already reaped; anything left is a grandchild that must not
// outlive the bootstrapper.
func (s *Supervisor) sweep(pgid int) {
	if err := syscall.Kill(-pgid, syscall.SIGKILL); err != nil {
		// ESRCH means the group is already gone
		if !errors.Is(err, syscall.ESRCH) {
			s.log.Warn("failed to kill child process group", map[string]interface{}{
				"pgid":  pgid,
				"error": err.Error(),
			})
		}
		return
	}

	survivors, err := procutil.GroupSurvivors(pgid)
	if err != nil || len(survivors) == 0 {
		return
	}
	s.log.Warn("orphaned processes remain in child group", map[string]interface{}{
		"pgid": pgid,
		"pids": survivors,
	})
}

// WriteReport writes a human-readable run summary
func (r *Result) WriteReport(out io.Writer) error {
	fmt.Fprintf(out, "=== Bootstrap Report ===\n")
	fmt.Fprintf(out, "PID: %d\n", r.PID)
	fmt.Fprintf(out, "Duration: %.2fs\n", r.Duration.Seconds())
	fmt.Fprintf(out, "Exit Code: %d\n", r.ExitCode)
	if r.Signal != 0 {
		fmt.Fprintf(out, "Signal: %s\n", SignalName(r.Signal))
	}
	if r.Killed {
		fmt.Fprintf(out, "Escalated: yes (grace period elapsed)\n")
	}
	if r.Usage != nil {
		fmt.Fprintf(out, "Last RSS: %d bytes\n", r.Usage.RSSBytes)
	}
	fmt.Fprintf(out, "\nLifecycle Events:\n")
	for _, event := range r.Events {
		fmt.Fprintf(out, "  [%s] %s: %s\n",
			event.Timestamp.Format("15:04:05"), event.State, event.Message)
	}
	return nil
}
