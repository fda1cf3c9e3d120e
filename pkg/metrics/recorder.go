package metrics

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Recorder tracks child process lifecycle metrics in a private registry.
// The bootstrapper opens no network ports, so metrics are published as a
// textfile for the node_exporter textfile collector instead of over HTTP.
type Recorder struct {
	registry *prometheus.Registry

	childStarts  prometheus.Counter
	childExits   *prometheus.CounterVec
	lastExitCode prometheus.Gauge
	childRuntime prometheus.Gauge
}

// Exit reasons used as label values.
const (
	ReasonCompleted = "completed"
	ReasonFailed    = "failed"
	ReasonSignaled  = "signaled"
	ReasonKilled    = "killed"
)

// NewRecorder creates a recorder with its own registry
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		childStarts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ppboot_child_starts_total",
			Help: "Total child processes spawned by the bootstrapper",
		}),
		childExits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ppboot_child_exits_total",
				Help: "Total child process exits by reason",
			},
			[]string{"reason"},
		),
		lastExitCode: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ppboot_child_last_exit_code",
			Help: "Exit code of the most recent child exit",
		}),
		childRuntime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ppboot_child_runtime_seconds",
			Help: "Wall-clock runtime of the most recent child",
		}),
	}

	r.registry.MustRegister(r.childStarts)
	r.registry.MustRegister(r.childExits)
	r.registry.MustRegister(r.lastExitCode)
	r.registry.MustRegister(r.childRuntime)

	return r
}

// ChildStarted records a successful spawn
func (r *Recorder) ChildStarted() {
	r.childStarts.Inc()
}

// ChildExited records a child exit with its outcome
func (r *Recorder) ChildExited(reason string, exitCode int, runtime time.Duration) {
	r.childExits.WithLabelValues(reason).Inc()
	r.lastExitCode.Set(float64(exitCode))
	r.childRuntime.Set(runtime.Seconds())
}

// WriteFile writes all gathered metrics to path in Prometheus text
// exposition format. The write goes through a temp file plus rename so the
// textfile collector never reads a partial file.
func (r *Recorder) WriteFile(path string) error {
	families, err := r.registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	var buf bytes.Buffer
	encoder := expfmt.NewEncoder(&buf, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := encoder.Encode(mf); err != nil {
			return fmt.Errorf("failed to encode metric %s: %w", mf.GetName(), err)
		}
	}

	tmp := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+".tmp")
	if err := os.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to publish metrics file: %w", err)
	}

	return nil
}
