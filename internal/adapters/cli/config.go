package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/andrescamacho/hauler-go/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration settings",
		Long: `Inspect Hauler configuration settings.

Configuration is loaded from multiple sources with priority:
1. Environment variables (HAULER_* prefix, e.g. HAULER_SCHEDULER_PATH_CHECK_BUDGET)
2. Config file (hauler.yaml)
3. Default values

Examples:
  hauler config show
  hauler config show --config configs/hauler.yaml`,
	}

	cmd.AddCommand(newConfigShowCommand())

	return cmd
}

// newConfigShowCommand creates the config show subcommand
func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: Failed to load config: %v\n", err)
				fmt.Fprintln(cmd.ErrOrStderr(), "Using default configuration.")
				cfg = config.LoadConfigOrDefault("")
			}

			shown := *cfg
			if shown.Database.Password != "" {
				shown.Database.Password = "****"
			}
			shown.Database.URL = maskPassword(shown.Database.URL)

			out, err := yaml.Marshal(&shown)
			if err != nil {
				return fmt.Errorf("failed to encode config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
