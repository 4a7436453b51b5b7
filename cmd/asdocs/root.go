package main

import (
	"asdocs/internal/version"

	"github.com/spf13/cobra"
)

var (
	// rootFlag is the project directory holding .asdocs/
	rootFlag     string
	formatFlag   string
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "asdocs",
	Short: "asdocs - ActionScript library documentation lookup",
	Long: `asdocs resolves documentation for symbols compiled into ActionScript library
archives (.swc). Descriptions come from inline comments, the archive's own DITA
metadata, the SDK locale companion archive, or the bundled platform reference.

The CLI is a debugging surface for SDK layouts and the archive cache.`,
	Version:       version.Info(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("asdocs version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", "",
		"Project directory holding .asdocs/ (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&formatFlag, "format", string(FormatHuman),
		"Output format: json, human or yaml")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "",
		"Log level override: debug, info, warn, error or silent")
}
