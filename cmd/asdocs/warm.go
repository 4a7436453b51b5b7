package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"asdocs/internal/archive"
	"asdocs/internal/storage"
)

var (
	warmConcurrency int
	warmWatch       bool
)

var warmCmd = &cobra.Command{
	Use:   "warm <dir>",
	Short: "Load every archive under a directory into the cache",
	Long: `Walk a directory for .swc archives and load their documentation metadata
concurrently. With cache.persist enabled the results are stored in the
project's cache database, so later sessions skip unchanged archives.

With --watch the command keeps running and reloads archives that are replaced
until interrupted.

Examples:
  asdocs warm /opt/flex_sdk/frameworks/libs
  asdocs warm libs --concurrency 8
  asdocs warm libs --watch`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithSession(cmd, func(s *session) (interface{}, error) {
			concurrency := warmConcurrency
			if concurrency <= 0 {
				concurrency = s.cfg.Cache.WarmConcurrency
			}
			resp, err := warm(cmd.Context(), s, args[0], concurrency)
			if err != nil || !warmWatch {
				return resp, err
			}

			format, err := ParseFormat(formatFlag)
			if err != nil {
				return nil, err
			}
			if err := printResponse(cmd.OutOrStdout(), resp, format); err != nil {
				return nil, err
			}
			return nil, watchArchives(cmd.Context(), s, resp.paths, concurrency, cmd.OutOrStdout(), nil)
		})
	},
}

func init() {
	warmCmd.Flags().BoolVar(&warmWatch, "watch", false, "Keep running and reload replaced archives")
	warmCmd.Flags().IntVar(&warmConcurrency, "concurrency", 0, "Archives loaded at once (default: cache.warmConcurrency)")
	rootCmd.AddCommand(warmCmd)
}

// WarmResponse is the output of warm
type WarmResponse struct {
	Dir        string              `json:"dir" yaml:"dir"`
	Archives   int                 `json:"archives" yaml:"archives"`
	Documented int                 `json:"documented" yaml:"documented"`
	Failed     int                 `json:"failed" yaml:"failed"`
	DurationMs int64               `json:"durationMs" yaml:"durationMs"`
	Cache      *storage.CacheStats `json:"cache,omitempty" yaml:"cache,omitempty"`

	paths []string
}

func warm(ctx context.Context, s *session, dir string, concurrency int) (*WarmResponse, error) {
	paths, err := collectArchives(dir)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	report, err := s.ws.Archives.Warm(ctx, paths, concurrency)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Warmed archives",
		"dir", dir,
		"archives", report.Archives,
		"documented", report.Documented,
		"failed", report.Failed,
	)

	resp := &WarmResponse{
		Dir:        dir,
		Archives:   report.Archives,
		Documented: report.Documented,
		Failed:     report.Failed,
		DurationMs: time.Since(start).Milliseconds(),
		paths:      paths,
	}

	stats, ok, err := s.ws.CacheStats()
	if err != nil {
		return nil, fmt.Errorf("failed to read cache stats: %w", err)
	}
	if ok {
		resp.Cache = &stats
	}
	return resp, nil
}

// watchArchives reloads changed archives until ctx is done. Archives added
// to the directory after the initial scan are not picked up. started, if not
// nil, runs once polling has begun.
func watchArchives(ctx context.Context, s *session, paths []string, concurrency int, out io.Writer, started func()) error {
	changes := make(chan []string, 1)
	wt := s.ws.WatchArchives(ctx, paths, func(changed []string) {
		select {
		case changes <- changed:
		case <-ctx.Done():
		}
	})
	defer wt.Stop()
	if started != nil {
		started()
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case changed := <-changes:
			report, err := s.ws.Archives.Warm(ctx, changed, concurrency)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			fmt.Fprintf(out, "Reloaded %d archives: %d documented, %d failed\n",
				report.Archives, report.Documented, report.Failed)
		}
	}
}

// collectArchives returns every .swc file under dir.
func collectArchives(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && archive.IsArchive(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	return paths, nil
}
