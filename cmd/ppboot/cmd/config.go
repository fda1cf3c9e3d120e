package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/pricepulse/ppboot/internal/command"
	"github.com/pricepulse/ppboot/internal/manifest"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the effective launch configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the launch configuration and the command it produces",
	Long: `Resolves the launch configuration exactly as "run" would (config file,
environment, flags) and prints the effective values together with the
command line that would be executed. Validation failures exit with the
same error the launch itself would produce.`,
	RunE: runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)

	configShowCmd.Flags().StringVar(&flagHost, "host", "", "bind interface (overrides HOST)")
	configShowCmd.Flags().IntVar(&flagPort, "port", 0, "bind port (overrides PORT)")
	configShowCmd.Flags().StringVar(&flagLogLevel, "log-level", "", "service log level (overrides LOG_LEVEL)")
	configShowCmd.Flags().StringVar(&flagGrace, "grace-period", "", "shutdown grace period (overrides SHUTDOWN_GRACE_PERIOD)")
	configShowCmd.Flags().StringVar(&manifestPath, "manifest", "", "service manifest file (YAML)")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadLaunchConfig(cmd)
	if err != nil {
		return err
	}

	var m *manifest.Manifest
	if manifestPath != "" {
		m, err = manifest.Load(manifestPath)
		if err != nil {
			return err
		}
	}

	argv := command.Build(cfg, m)

	if IsJSONOutput() {
		out := map[string]interface{}{
			"host":         cfg.Host,
			"port":         cfg.Port,
			"log_level":    cfg.LogLevel,
			"unbuffered":   cfg.Unbuffered,
			"grace_period": cfg.GracePeriod.String(),
			"command":      argv,
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Setting", "Value")
	table.Append("Host", cfg.Host)
	table.Append("Port", strconv.Itoa(cfg.Port))
	table.Append("Log Level", cfg.LogLevel)
	table.Append("Unbuffered", strconv.FormatBool(cfg.Unbuffered))
	table.Append("Grace Period", cfg.GracePeriod.String())
	table.Append("Command", strings.Join(argv, " "))
	table.Render()

	return nil
}
