package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile      string
	outputFormat string
	logFormat    string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "ppboot",
	Short: "Container entrypoint bootstrapper for the PricePulse service",
	Long: `ppboot translates environment configuration into a supervised service
process launch. It validates PORT and LOG_LEVEL, builds the ASGI server
command line, spawns the service as a child process, forwards termination
signals with a bounded grace period, and exits with the child's exit code.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is /etc/ppboot/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "output", "table", "output format: table or json")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "bootstrapper log format: text or json")
}

// initConfig layers an optional config file underneath the environment.
// Environment variables always win; a missing file is not an error.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath("/etc/ppboot")
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.ReadInConfig()
}

// IsJSONOutput returns true if JSON output is requested
func IsJSONOutput() bool {
	return outputFormat == "json"
}

// IsJSONLogs returns true if the bootstrapper's own logs should be JSON
func IsJSONLogs() bool {
	return logFormat == "json"
}
