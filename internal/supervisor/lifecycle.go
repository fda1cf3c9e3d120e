package supervisor

import (
	"fmt"
	"syscall"
	"time"
)

// State represents the bootstrapper's lifecycle state
type State string

const (
	StateNotStarted   State = "not_started"
	StateConfigLoaded State = "config_loaded"
	StateChildRunning State = "child_running"
	StateChildExited  State = "child_exited"
	StateChildKilled  State = "child_killed"
	StateExited       State = "exited"
)

// validTransitions maps from-state to allowed to-states. All transitions
// are one-directional and terminate at StateExited.
var validTransitions = map[State]map[State]bool{
	StateNotStarted: {
		StateConfigLoaded: true, // environment validated
		StateExited:       true, // validation failure, no child ever spawned
	},
	StateConfigLoaded: {
		StateChildRunning: true, // child spawned
		StateExited:       true, // spawn failure
	},
	StateChildRunning: {
		StateChildExited: true, // child exited on its own
		StateChildKilled: true, // child terminated by signal
	},
	StateChildExited: {
		StateExited: true,
	},
	StateChildKilled: {
		StateExited: true,
	},
	// Terminal state (no transitions allowed)
	StateExited: {},
}

// ValidateTransition checks if a state transition is valid
func ValidateTransition(from, to State) error {
	allowed, exists := validTransitions[from]
	if !exists {
		return fmt.Errorf("unknown source state: %s", from)
	}
	if !allowed[to] {
		return fmt.Errorf("invalid transition from %s to %s", from, to)
	}
	return nil
}

// IsTerminal returns true if no further transitions are possible
func (s State) IsTerminal() bool {
	return s == StateExited
}

// Event records a lifecycle state change
type Event struct {
	State     State     `json:"state"`
	Timestamp time.Time `json:"timestamp"`
	PID       int       `json:"pid,omitempty"`
	Message   string    `json:"message,omitempty"`
}

// Machine tracks the bootstrapper's lifecycle. Single-writer: only the
// goroutine driving the bootstrap sequence mutates it.
type Machine struct {
	current State
	events  []Event
}

// NewMachine creates a machine in StateNotStarted
func NewMachine() *Machine {
	return &Machine{current: StateNotStarted}
}

// Current returns the current state
func (m *Machine) Current() State {
	return m.current
}

// To transitions the machine and records an event
func (m *Machine) To(state State, pid int, message string) error {
	if err := ValidateTransition(m.current, state); err != nil {
		return err
	}
	m.current = state
	m.events = append(m.events, Event{
		State:     state,
		Timestamp: time.Now(),
		PID:       pid,
		Message:   message,
	})
	return nil
}

// Events returns all recorded lifecycle events
func (m *Machine) Events() []Event {
	return m.events
}

// SignalName returns the conventional name for a signal number
func SignalName(sig syscall.Signal) string {
	switch sig {
	case syscall.SIGKILL:
		return "SIGKILL"
	case syscall.SIGTERM:
		return "SIGTERM"
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGHUP:
		return "SIGHUP"
	case syscall.SIGQUIT:
		return "SIGQUIT"
	default:
		return fmt.Sprintf("SIG%d", sig)
	}
}
