package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"asdocs/internal/config"
)

var (
	configTOML  bool
	configForce bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage asdocs configuration",
	Long:  "View and manage the configuration stored in .asdocs/config.{json,toml,yaml}",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration",
	Long: `Write the default configuration to .asdocs/config.json, or config.toml with --toml.

Examples:
  asdocs config init
  asdocs config init --toml --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := ParseFormat(formatFlag)
		if err != nil {
			return err
		}
		root, err := getRoot()
		if err != nil {
			return err
		}
		resp, err := configInit(root, configTOML, configForce)
		if err != nil {
			return err
		}
		return printResponse(cmd.OutOrStdout(), resp, format)
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long:  "Display the configuration after defaults, config file and ASDOCS_* environment overrides",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := ParseFormat(formatFlag)
		if err != nil {
			return err
		}
		root, err := getRoot()
		if err != nil {
			return err
		}
		cfg, err := config.LoadConfig(root)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		return printResponse(cmd.OutOrStdout(), cfg, format)
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configTOML, "toml", false, "Write TOML instead of JSON")
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing configuration")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

// ConfigInitResponse is the output of config init
type ConfigInitResponse struct {
	Path string `json:"path" yaml:"path"`
}

func configInit(root string, asTOML, force bool) (*ConfigInitResponse, error) {
	if !force {
		for _, name := range []string{"config.json", "config.toml", "config.yaml", "config.yml"} {
			existing := filepath.Join(root, config.ConfigDir, name)
			if _, err := os.Stat(existing); err == nil {
				return nil, fmt.Errorf("%s already exists (use --force to overwrite)", existing)
			}
		}
	}

	cfg := config.DefaultConfig()
	save := cfg.Save
	if asTOML {
		save = cfg.SaveTOML
	}
	path, err := save(root)
	if err != nil {
		return nil, fmt.Errorf("failed to write config: %w", err)
	}
	return &ConfigInitResponse{Path: path}, nil
}
