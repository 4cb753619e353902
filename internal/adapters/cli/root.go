package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath    string
	daemonAddress string
	verbose       bool
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "hauler",
		Short: "Hauler - colony work scheduler",
		Long: `Hauler runs the colony work scheduler and talks to a running daemon.

The daemon ticks the Perceive, Decide, Execute, Maintain pipeline over a
colony loaded from a scenario file. Control commands reach it over gRPC.

Examples:
  hauler run --scenario scenarios/quarry.yaml
  hauler simulate --scenario scenarios/quarry.yaml --ticks 500
  hauler designate --kind HAUL --target 12 --priority 3
  hauler request --source 12 --anchor 40 --issuer 1
  hauler cancel worker 4
  hauler cancel work-item 31
  hauler snapshot
  hauler config show`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config file (default: search ./hauler.yaml, ./configs, /etc/hauler)")
	rootCmd.PersistentFlags().StringVar(&daemonAddress, "address", getDefaultAddress(),
		"Daemon control address (host:port)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")

	rootCmd.AddCommand(NewRunCommand())
	rootCmd.AddCommand(NewSimulateCommand())
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewDesignateCommand())
	rootCmd.AddCommand(NewRequestCommand())
	rootCmd.AddCommand(NewCancelCommand())
	rootCmd.AddCommand(NewSnapshotCommand())

	return rootCmd
}

// getDefaultAddress returns the default daemon address
func getDefaultAddress() string {
	if addr := os.Getenv("HAULER_DAEMON_ADDRESS"); addr != "" {
		return addr
	}
	return "localhost:50061"
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
