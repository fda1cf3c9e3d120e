package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestRecorderWriteFile(t *testing.T) {
	r := NewRecorder()
	r.ChildStarted()
	r.ChildExited(ReasonFailed, 3, 1500*time.Millisecond)

	path := filepath.Join(t.TempDir(), "ppboot.prom")
	if err := r.WriteFile(path); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)

	for _, want := range []string{
		"ppboot_child_starts_total 1",
		`ppboot_child_exits_total{reason="failed"} 1`,
		"ppboot_child_last_exit_code 3",
		"ppboot_child_runtime_seconds 1.5",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics output missing %q:\n%s", want, out)
		}
	}
}

func TestRecorderWriteFileBadDir(t *testing.T) {
	r := NewRecorder()
	if err := r.WriteFile("/nonexistent/ppboot-test/m.prom"); err == nil {
		t.Error("WriteFile() = nil error for unwritable path")
	}
}

func TestRecorderNoPartialFiles(t *testing.T) {
	r := NewRecorder()
	dir := t.TempDir()
	if err := r.WriteFile(filepath.Join(dir, "m.prom")); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}
