package config

import (
	"fmt"
	"os"

	"github.com/subosito/gotenv"
)

// LoadEnvFile parses a dotenv-style file into a key/value map. Entries are
// merged into the child environment only; they never override variables
// already present in the bootstrapper's own environment.
func LoadEnvFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	defer f.Close()

	env, err := gotenv.StrictParse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse env file %s: %w", path, err)
	}

	return env, nil
}
