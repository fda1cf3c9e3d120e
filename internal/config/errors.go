package config

import "fmt"

// Bootstrapper exit codes. Child exit codes pass through verbatim and are
// never remapped onto these.
const (
	ExitOK         = 0
	ExitConfig     = 64  // invalid launch configuration, no child spawned
	ExitLaunch     = 70  // OS-level spawn failure
	ExitSignalBase = 128 // 128+signal when terminated by a signal
)

// ConfigError reports invalid launch configuration. Always fatal, never
// retried; detected before any child process exists.
type ConfigError struct {
	Variable string // offending environment variable, if any
	Value    string
	Message  string
}

// Error implements error interface
func (e *ConfigError) Error() string {
	if e.Variable != "" {
		return fmt.Sprintf("%s (%s=%q)", e.Message, e.Variable, e.Value)
	}
	return e.Message
}

// NewConfigError creates a configuration error for a specific variable
func NewConfigError(variable, value, message string) *ConfigError {
	return &ConfigError{
		Variable: variable,
		Value:    value,
		Message:  message,
	}
}
