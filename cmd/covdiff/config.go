package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/panbanda/covdiff/pkg/config"
	"github.com/pelletier/go-toml"
	"github.com/spf13/cobra"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management commands",
	}
	cmd.AddCommand(newConfigValidateCmd(a), newConfigShowCmd(a))
	return cmd
}

func newConfigValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate a configuration file",
		Long: `Validates a covdiff configuration file for syntax errors and invalid values.

Examples:
  covdiff config validate                     # Validates default config locations
  covdiff config validate -c covdiff.toml     # Validates specific file`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if err := a.setup(cmd); err != nil {
				fmt.Fprintln(out, color.RedString("Configuration validation failed:"))
				fmt.Fprintf(out, "  - %s\n", err)
				return err
			}
			if a.source != "" {
				fmt.Fprintln(out, color.GreenString("Configuration valid: %s", a.source))
			} else {
				fmt.Fprintln(out, color.YellowString("No config file found. Default configuration is valid."))
			}
			return nil
		},
	}
}

func newConfigShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long: `Shows the merged configuration from defaults and config file as TOML.

Examples:
  covdiff config show                 # Show effective config
  covdiff config show -c covdiff.yaml # Show config from specific file`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if a.source != "" {
				fmt.Fprintf(out, "# Configuration from: %s\n\n", a.source)
			} else {
				fmt.Fprintln(out, "# Default configuration (no config file found)")
			}
			content, err := marshalConfig(a.cfg)
			if err != nil {
				return err
			}
			_, err = out.Write(content)
			return err
		},
	}
}

func marshalConfig(cfg *config.Config) ([]byte, error) {
	content, err := toml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return content, nil
}
