package main

import (
	"github.com/spf13/cobra"

	"asdocs/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := ParseFormat(formatFlag)
		if err != nil {
			return err
		}
		return printResponse(cmd.OutOrStdout(), newVersionResponse(), format)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// VersionResponse is the output of version
type VersionResponse struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildDate string `json:"buildDate" yaml:"buildDate"`
}

func newVersionResponse() *VersionResponse {
	return &VersionResponse{
		Version:   version.Version,
		Commit:    version.Commit,
		BuildDate: version.BuildDate,
	}
}
