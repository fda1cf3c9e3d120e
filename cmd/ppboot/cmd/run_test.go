package cmd

import (
	"syscall"
	"testing"
	"time"

	"github.com/pricepulse/ppboot/internal/supervisor"
	"github.com/pricepulse/ppboot/pkg/metrics"
)

func TestExitReason(t *testing.T) {
	tests := []struct {
		name string
		res  *supervisor.Result
		want string
	}{
		{"clean exit", &supervisor.Result{ExitCode: 0}, metrics.ReasonCompleted},
		{"nonzero exit", &supervisor.Result{ExitCode: 3}, metrics.ReasonFailed},
		{"signal death", &supervisor.Result{ExitCode: 143, Signal: syscall.SIGTERM}, metrics.ReasonSignaled},
		{"escalated kill", &supervisor.Result{ExitCode: 143, Signal: syscall.SIGTERM, Killed: true}, metrics.ReasonKilled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitReason(tt.res); got != tt.want {
				t.Errorf("exitReason() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseGrace(t *testing.T) {
	grace, err := parseGrace("15s")
	if err != nil {
		t.Fatalf("parseGrace() error = %v", err)
	}
	if grace != 15*time.Second {
		t.Errorf("parseGrace() = %v, want 15s", grace)
	}

	for _, raw := range []string{"", "soon", "-2s", "0s"} {
		if _, err := parseGrace(raw); err == nil {
			t.Errorf("parseGrace(%q) = nil error", raw)
		}
	}
}
