package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Defaults applied when the environment leaves a knob unset.
const (
	DefaultHost        = "0.0.0.0"
	DefaultPort        = 8000
	DefaultLogLevel    = "info"
	DefaultGracePeriod = 10 * time.Second
)

// LaunchConfig is an immutable snapshot of the launch environment, built
// once at startup. It is never persisted.
type LaunchConfig struct {
	Host        string        // bind interface for the service
	Port        int           // [1,65535]
	LogLevel    string        // debug|info|warn|error
	Unbuffered  bool          // child output buffering mode
	GracePeriod time.Duration // SIGTERM-to-SIGKILL escalation window
}

// validLevels are the accepted LOG_LEVEL values.
var validLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Load reads the launch configuration from the process environment.
func Load() (*LaunchConfig, error) {
	return LoadWith(viper.New())
}

// LoadWith reads the launch configuration through the given viper instance,
// so a surrounding CLI can layer a config file underneath the environment.
// Environment variables always win over file values.
func LoadWith(v *viper.Viper) (*LaunchConfig, error) {
	v.AutomaticEnv()
	v.BindEnv("port", "PORT")
	v.BindEnv("host", "HOST")
	v.BindEnv("log_level", "LOG_LEVEL")
	v.BindEnv("grace_period", "SHUTDOWN_GRACE_PERIOD")

	cfg := &LaunchConfig{
		Host:        DefaultHost,
		Port:        DefaultPort,
		LogLevel:    DefaultLogLevel,
		Unbuffered:  true,
		GracePeriod: DefaultGracePeriod,
	}

	if raw := v.GetString("port"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil {
			return nil, NewConfigError("PORT", raw, "invalid PORT")
		}
		if err := ValidatePort(port); err != nil {
			return nil, NewConfigError("PORT", raw, "port out of range")
		}
		cfg.Port = port
	}

	if raw := v.GetString("host"); raw != "" {
		cfg.Host = raw
	}

	if raw := v.GetString("log_level"); raw != "" {
		level := strings.ToLower(raw)
		if !validLevels[level] {
			return nil, NewConfigError("LOG_LEVEL", raw, "invalid LOG_LEVEL")
		}
		cfg.LogLevel = level
	}

	if raw := v.GetString("grace_period"); raw != "" {
		grace, err := time.ParseDuration(raw)
		if err != nil || grace <= 0 {
			return nil, NewConfigError("SHUTDOWN_GRACE_PERIOD", raw, "invalid SHUTDOWN_GRACE_PERIOD")
		}
		cfg.GracePeriod = grace
	}

	return cfg, nil
}

// ValidatePort checks that port is a usable TCP port number.
func ValidatePort(port int) error {
	if port < 1 || port > 65535 {
		return NewConfigError("PORT", strconv.Itoa(port), "port out of range")
	}
	return nil
}
