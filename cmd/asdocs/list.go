package main

import (
	"strings"

	"github.com/spf13/cobra"

	"asdocs/internal/resolve"
)

var listPrefix string

var listCmd = &cobra.Command{
	Use:   "list <archive>",
	Short: "List the documented names available for an archive",
	Long: `List the qualified names documented by the metadata list that answers
lookups for the archive: its own, the locale companion, or the bundled reference.

Examples:
  asdocs list frameworks/libs/framework.swc
  asdocs list playerglobal.swc --prefix flash.display.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithSession(cmd, func(s *session) (interface{}, error) {
			return list(s.engine, args[0], listPrefix), nil
		})
	},
}

func init() {
	listCmd.Flags().StringVar(&listPrefix, "prefix", "", "Only names starting with this prefix")
	rootCmd.AddCommand(listCmd)
}

// ListResponse is the output of list
type ListResponse struct {
	Archive string      `json:"archive" yaml:"archive"`
	Source  *SourceInfo `json:"source" yaml:"source"`
	Total   int         `json:"total" yaml:"total"`
	Names   []string    `json:"names" yaml:"names"`
}

func list(engine *resolve.Engine, archivePath, prefix string) *ListResponse {
	sources := engine.Sources(archivePath)
	resp := &ListResponse{
		Archive: archivePath,
		Source:  newSourceInfo(sources),
		Names:   []string{},
	}
	if sources.List == nil {
		return resp
	}

	names := sources.List.Names()
	resp.Total = len(names)
	for _, name := range names {
		if strings.HasPrefix(name, prefix) {
			resp.Names = append(resp.Names, name)
		}
	}
	return resp
}
