package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   int
)

var rootCmd = &cobra.Command{
	Use:           "faultzero-sim",
	Short:         "Simulated machine telemetry, alerts and reports",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigFile, "YAML configuration file")
	rootCmd.PersistentFlags().IntVar(&logLevel, "log-level", 0, "log level offset from info (-1 debug, 1 warn)")

	rootCmd.AddCommand(serveCmd, snapshotCmd, reportCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

// setup loads the configuration and builds the logger for any command.
func setup(cmd *cobra.Command) (Config, error) {
	conf, err := loadConfig(configPath, cmd.Flags().Changed("config"))
	if err != nil {
		return conf, err
	}
	if cmd.Flags().Changed("log-level") {
		conf.LogLevel = logLevel
	}
	return conf, nil
}
