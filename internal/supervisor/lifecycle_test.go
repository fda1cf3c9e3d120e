package supervisor

import (
	"syscall"
	"testing"
)

func TestValidateTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    State
		to      State
		wantErr bool
	}{
		// Valid transitions
		{"NotStarted to ConfigLoaded", StateNotStarted, StateConfigLoaded, false},
		{"NotStarted to Exited", StateNotStarted, StateExited, false},
		{"ConfigLoaded to ChildRunning", StateConfigLoaded, StateChildRunning, false},
		{"ConfigLoaded to Exited", StateConfigLoaded, StateExited, false},
		{"ChildRunning to ChildExited", StateChildRunning, StateChildExited, false},
		{"ChildRunning to ChildKilled", StateChildRunning, StateChildKilled, false},
		{"ChildExited to Exited", StateChildExited, StateExited, false},
		{"ChildKilled to Exited", StateChildKilled, StateExited, false},

		// Invalid transitions
		{"NotStarted to ChildRunning", StateNotStarted, StateChildRunning, true},
		{"ConfigLoaded to ChildExited", StateConfigLoaded, StateChildExited, true},
		{"ChildRunning to Exited", StateChildRunning, StateExited, true},
		{"ChildRunning to ConfigLoaded", StateChildRunning, StateConfigLoaded, true},
		{"ChildExited to ChildRunning", StateChildExited, StateChildRunning, true},
		{"Exited to anything", StateExited, StateConfigLoaded, true},
		{"unknown source", State("bogus"), StateExited, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTransition(tt.from, tt.to)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTransition(%v, %v) error = %v, wantErr %v",
					tt.from, tt.to, err, tt.wantErr)
			}
		})
	}
}

func TestIsTerminal(t *testing.T) {
	if !StateExited.IsTerminal() {
		t.Error("StateExited should be terminal")
	}
	for _, s := range []State{StateNotStarted, StateConfigLoaded, StateChildRunning, StateChildExited, StateChildKilled} {
		if s.IsTerminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestMachine(t *testing.T) {
	m := NewMachine()
	if m.Current() != StateNotStarted {
		t.Fatalf("Current() = %v, want %v", m.Current(), StateNotStarted)
	}

	steps := []struct {
		state State
		pid   int
	}{
		{StateConfigLoaded, 0},
		{StateChildRunning, 1234},
		{StateChildExited, 1234},
		{StateExited, 1234},
	}
	for _, step := range steps {
		if err := m.To(step.state, step.pid, "test"); err != nil {
			t.Fatalf("To(%v) error = %v", step.state, err)
		}
		if m.Current() != step.state {
			t.Fatalf("Current() = %v, want %v", m.Current(), step.state)
		}
	}

	events := m.Events()
	if len(events) != len(steps) {
		t.Fatalf("Events() length = %d, want %d", len(events), len(steps))
	}
	if events[1].PID != 1234 {
		t.Errorf("event PID = %d, want 1234", events[1].PID)
	}

	// Terminal state admits nothing
	if err := m.To(StateChildRunning, 0, "test"); err == nil {
		t.Error("To() from terminal state should fail")
	}
}

func TestMachineRejectsSkippedStates(t *testing.T) {
	m := NewMachine()
	if err := m.To(StateChildRunning, 1, "skip config"); err == nil {
		t.Error("To(ChildRunning) from NotStarted should fail")
	}
	if m.Current() != StateNotStarted {
		t.Errorf("failed transition mutated state to %v", m.Current())
	}
}

func TestSignalName(t *testing.T) {
	tests := []struct {
		sig  syscall.Signal
		want string
	}{
		{syscall.SIGTERM, "SIGTERM"},
		{syscall.SIGINT, "SIGINT"},
		{syscall.SIGKILL, "SIGKILL"},
		{syscall.Signal(23), "SIG23"},
	}
	for _, tt := range tests {
		if got := SignalName(tt.sig); got != tt.want {
			t.Errorf("SignalName(%d) = %q, want %q", tt.sig, got, tt.want)
		}
	}
}
