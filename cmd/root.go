package cmd

import (
	"fmt"
	"os"

	"point-record/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// configDir is the directory holding the optional .env file.
var configDir string

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "point-record",
	Short: "Point Record Service",
	Long: `Point Record serves time series points from an in-memory buffer backed by
a persistent store (SQL, BadgerDB or InfluxDB), fetching only what the buffer
does not already hold.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console format with the development config (ISO8601 timestamps) for CLI output
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "Directory holding the .env file")
}
