package command

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pricepulse/ppboot/internal/config"
	"github.com/pricepulse/ppboot/internal/manifest"
)

// Built-in ASGI launch template, used when no manifest overrides it.
const (
	DefaultProgram = "uvicorn"
	DefaultApp     = "main:app"
)

// Build constructs the child command line from the launch configuration and
// an optional manifest. Pure function: the same inputs always produce the
// same tokens.
func Build(cfg *config.LaunchConfig, m *manifest.Manifest) []string {
	program := DefaultProgram
	app := DefaultApp
	var extra []string

	if m != nil {
		if m.Program != "" {
			program = m.Program
		}
		if m.App != "" {
			app = m.App
		}
		extra = m.Args
	}

	argv := []string{
		program,
		app,
		"--host", cfg.Host,
		"--port", strconv.Itoa(cfg.Port),
		"--log-level", serverLevel(cfg.LogLevel),
	}

	return append(argv, extra...)
}

// serverLevel maps the configured level onto uvicorn's vocabulary, which
// spells out "warning".
func serverLevel(level string) string {
	if level == "warn" {
		return "warning"
	}
	return level
}

// Env assembles the child environment: the inherited process environment,
// then manifest entries, then env-file entries, with earlier layers winning
// on conflict. PYTHONUNBUFFERED is set when the configuration asks for
// unbuffered child output.
func Env(cfg *config.LaunchConfig, m *manifest.Manifest, envFile map[string]string) []string {
	return mergeEnv(os.Environ(), cfg, m, envFile)
}

func mergeEnv(inherited []string, cfg *config.LaunchConfig, m *manifest.Manifest, envFile map[string]string) []string {
	merged := make(map[string]string)

	if m != nil {
		for k, v := range m.Env {
			merged[k] = v
		}
	}
	for k, v := range envFile {
		if _, ok := merged[k]; !ok {
			merged[k] = v
		}
	}

	seen := make(map[string]bool, len(inherited))
	for _, kv := range inherited {
		if i := strings.IndexByte(kv, '='); i > 0 {
			seen[kv[:i]] = true
		}
	}

	env := inherited
	for _, k := range sortedKeys(merged) {
		if seen[k] {
			continue // process environment wins
		}
		env = append(env, k+"="+merged[k])
	}

	if cfg.Unbuffered && !seen["PYTHONUNBUFFERED"] {
		env = append(env, "PYTHONUNBUFFERED=1")
	}

	// The child resolves its own bind address from these as well; keeping
	// them in sync with the command line costs nothing.
	if !seen["PORT"] {
		env = append(env, fmt.Sprintf("PORT=%d", cfg.Port))
	}

	return env
}

// sortedKeys keeps merged-entry ordering deterministic.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
