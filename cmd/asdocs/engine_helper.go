package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"asdocs/internal/config"
	"asdocs/internal/resolve"
	"asdocs/internal/slogutil"
	"asdocs/internal/workspace"
)

// session is the per-invocation state: one workspace, its engine and the
// process logger.
type session struct {
	cfg    *config.Config
	ws     *workspace.Workspace
	engine *resolve.Engine
	logger *slog.Logger
	closer io.Closer
}

// openSession loads the configuration under root and builds a workspace.
// Logs go to logW.
func openSession(root, logLevel string, logW io.Writer) (*session, error) {
	cfg, err := config.LoadConfig(root)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, closer, err := slogutil.NewLoggerFromConfig(cfg.Logging, logW, logLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	ws, err := workspace.New(root, cfg, workspace.WithLogger(logger))
	if err != nil {
		_ = closer.Close()
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	return &session{
		cfg:    cfg,
		ws:     ws,
		engine: resolve.NewEngine(ws, nil),
		logger: logger,
		closer: closer,
	}, nil
}

func (s *session) Close() error {
	wsErr := s.ws.Close()
	logErr := s.closer.Close()
	if wsErr != nil {
		return wsErr
	}
	return logErr
}

// getRoot returns the --root flag or the working directory.
func getRoot() (string, error) {
	if rootFlag != "" {
		return rootFlag, nil
	}
	return os.Getwd()
}

// runWithSession opens a session, runs fn and prints its response in the
// --format output format. A nil response prints nothing.
func runWithSession(cmd *cobra.Command, fn func(s *session) (interface{}, error)) error {
	format, err := ParseFormat(formatFlag)
	if err != nil {
		return err
	}
	root, err := getRoot()
	if err != nil {
		return err
	}

	s, err := openSession(root, logLevelFlag, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.Close()

	resp, err := fn(s)
	if err != nil || resp == nil {
		return err
	}
	return printResponse(cmd.OutOrStdout(), resp, format)
}

func printResponse(w io.Writer, resp interface{}, format OutputFormat) error {
	output, err := FormatResponse(resp, format)
	if err != nil {
		return fmt.Errorf("error formatting output: %w", err)
	}
	_, err = fmt.Fprintln(w, output)
	return err
}
