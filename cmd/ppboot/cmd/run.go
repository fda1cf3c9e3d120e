package cmd

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pricepulse/ppboot/internal/command"
	"github.com/pricepulse/ppboot/internal/config"
	"github.com/pricepulse/ppboot/internal/manifest"
	"github.com/pricepulse/ppboot/internal/supervisor"
	"github.com/pricepulse/ppboot/pkg/logging"
	"github.com/pricepulse/ppboot/pkg/metrics"
)

var (
	flagHost     string
	flagPort     int
	flagLogLevel string
	flagGrace    string
	flagBuffered bool
	manifestPath string
	envFilePath  string
	workDir      string
	metricsFile  string
	printReport  bool
)

var runCmd = &cobra.Command{
	Use:   "run [flags] [-- command args...]",
	Short: "Launch and supervise the service process",
	Long: `Run validates the launch environment, builds the service command line,
spawns the service as a child process, and supervises it until exit.

The child inherits stdout/stderr so container log collection captures the
service's output directly. SIGTERM and SIGINT are forwarded to the child's
process group; if the child has not exited when the grace period elapses it
is killed. The bootstrapper's exit code is the child's exit code verbatim,
or 128+signal when a termination signal decided the outcome.

By default the command line is the ASGI launch template
(uvicorn main:app --host HOST --port PORT --log-level LEVEL); a manifest
or an explicit command after "--" overrides it.

Example:
  ppboot run
  PORT=9090 ppboot run --env-file /app/.env
  ppboot run --manifest /etc/ppboot/service.yaml
  ppboot run -- gunicorn -k uvicorn.workers.UvicornWorker main:app`,
	RunE: runService,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&flagHost, "host", "", "bind interface (overrides HOST)")
	runCmd.Flags().IntVar(&flagPort, "port", 0, "bind port (overrides PORT)")
	runCmd.Flags().StringVar(&flagLogLevel, "log-level", "", "service log level: debug, info, warn, error (overrides LOG_LEVEL)")
	runCmd.Flags().StringVar(&flagGrace, "grace-period", "", "shutdown grace period, e.g. 10s (overrides SHUTDOWN_GRACE_PERIOD)")
	runCmd.Flags().BoolVar(&flagBuffered, "buffered", false, "do not force unbuffered child output")
	runCmd.Flags().StringVar(&manifestPath, "manifest", "", "service manifest file (YAML)")
	runCmd.Flags().StringVar(&envFilePath, "env-file", "", "dotenv file merged into the child environment")
	runCmd.Flags().StringVar(&workDir, "workdir", "", "working directory for the child process")
	runCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write lifecycle metrics to this file on exit (Prometheus text format)")
	runCmd.Flags().BoolVar(&printReport, "report", false, "print a run report on exit")
}

// loadLaunchConfig builds the effective LaunchConfig: config file under the
// environment, flags on top.
func loadLaunchConfig(cmd *cobra.Command) (*config.LaunchConfig, error) {
	cfg, err := config.LoadWith(viper.GetViper())
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("host") {
		cfg.Host = flagHost
	}
	if cmd.Flags().Changed("port") {
		if err := config.ValidatePort(flagPort); err != nil {
			return nil, err
		}
		cfg.Port = flagPort
	}
	if cmd.Flags().Changed("log-level") {
		level := strings.ToLower(flagLogLevel)
		switch level {
		case "debug", "info", "warn", "error":
			cfg.LogLevel = level
		default:
			return nil, config.NewConfigError("--log-level", flagLogLevel, "invalid log level")
		}
	}
	if cmd.Flags().Changed("grace-period") {
		grace, err := parseGrace(flagGrace)
		if err != nil {
			return nil, err
		}
		cfg.GracePeriod = grace
	}
	if flagBuffered {
		cfg.Unbuffered = false
	}

	return cfg, nil
}

func runService(cmd *cobra.Command, args []string) error {
	log := logging.NewLogger(logging.INFO, IsJSONLogs())

	machine := supervisor.NewMachine()

	cfg, err := loadLaunchConfig(cmd)
	if err != nil {
		machine.To(supervisor.StateExited, 0, err.Error())
		return err
	}
	machine.To(supervisor.StateConfigLoaded, 0, "configuration validated")

	log.SetLevel(logging.ParseLevel(cfg.LogLevel))

	var m *manifest.Manifest
	if manifestPath != "" {
		m, err = manifest.Load(manifestPath)
		if err != nil {
			machine.To(supervisor.StateExited, 0, err.Error())
			return config.NewConfigError("--manifest", manifestPath, err.Error())
		}
	}

	var envFile map[string]string
	if envFilePath != "" {
		envFile, err = config.LoadEnvFile(envFilePath)
		if err != nil {
			machine.To(supervisor.StateExited, 0, err.Error())
			return config.NewConfigError("--env-file", envFilePath, err.Error())
		}
	}

	argv := args
	if len(argv) == 0 {
		argv = command.Build(cfg, m)
	}

	dir := workDir
	if dir == "" && m != nil {
		dir = m.WorkDir
	}

	log.Info("launching service", map[string]interface{}{
		"command":   strings.Join(argv, " "),
		"bind":      cfg.Host + ":" + strconv.Itoa(cfg.Port),
		"log_level": cfg.LogLevel,
		"grace":     cfg.GracePeriod.String(),
	})

	recorder := metrics.NewRecorder()
	sup := supervisor.New(log, machine)

	res, err := sup.Run(context.Background(), supervisor.Spec{
		Argv:        argv,
		Env:         command.Env(cfg, m, envFile),
		Dir:         dir,
		GracePeriod: cfg.GracePeriod,
	})
	if err != nil {
		return err
	}

	recorder.ChildStarted()
	recorder.ChildExited(exitReason(res), res.ExitCode, res.Duration)

	machine.To(supervisor.StateExited, res.PID, "bootstrapper exiting")
	res.Events = machine.Events()

	if metricsFile != "" {
		if err := recorder.WriteFile(metricsFile); err != nil {
			log.Warn("failed to write metrics file", map[string]interface{}{
				"path":  metricsFile,
				"error": err.Error(),
			})
		}
	}

	if printReport {
		res.WriteReport(cmd.OutOrStdout())
	}

	if res.ExitCode != 0 {
		return &supervisor.ExitStatusError{Code: res.ExitCode, Signal: res.Signal}
	}
	return nil
}

// exitReason maps a run result onto a metrics label
func exitReason(res *supervisor.Result) string {
	switch {
	case res.Killed:
		return metrics.ReasonKilled
	case res.Signal != 0:
		return metrics.ReasonSignaled
	case res.ExitCode != 0:
		return metrics.ReasonFailed
	default:
		return metrics.ReasonCompleted
	}
}

func parseGrace(raw string) (time.Duration, error) {
	grace, err := time.ParseDuration(raw)
	if err != nil || grace <= 0 {
		return 0, config.NewConfigError("--grace-period", raw, "invalid grace period")
	}
	return grace, nil
}
