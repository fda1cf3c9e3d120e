package manifest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest describes the launch contract for the supervised service: which
// program to start and how. All fields are optional; anything left empty
// falls back to the built-in ASGI launch template.
type Manifest struct {
	// Program is the executable to launch (e.g. "uvicorn", "gunicorn").
	Program string `yaml:"program"`

	// App is the application locator passed as the first argument
	// (e.g. "main:app").
	App string `yaml:"app"`

	// Args are appended to the generated command line verbatim.
	Args []string `yaml:"args"`

	// WorkDir is the working directory for the child process.
	WorkDir string `yaml:"workdir"`

	// Env is merged into the child environment. Entries here override
	// env-file entries but not the inherited process environment.
	Env map[string]string `yaml:"env"`
}

// Load reads a service manifest from a YAML file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest %s: %w", path, err)
	}

	return &m, nil
}

// Validate checks manifest fields that cannot be repaired by defaulting.
func (m *Manifest) Validate() error {
	if m.WorkDir != "" {
		info, err := os.Stat(m.WorkDir)
		if err != nil {
			return fmt.Errorf("workdir %s: %w", m.WorkDir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("workdir %s is not a directory", m.WorkDir)
		}
	}

	for key := range m.Env {
		if key == "" {
			return fmt.Errorf("env contains an empty variable name")
		}
	}

	return nil
}
