package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/hauler-go/internal/application/common"
	"github.com/andrescamacho/hauler-go/internal/infrastructure/pidfile"
)

// NewRunCommand creates the run command, which starts the daemon in the foreground
func NewRunCommand() *cobra.Command {
	var (
		scenarioPath string
		maxTicks     int
		journal      bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the scheduler daemon",
		Long: `Run the scheduler daemon in the foreground.

The daemon ticks the scheduler at simulation.tick_interval and serves the
gRPC control service on daemon.address. Metrics, the websocket signal
stream and the database journal start when enabled in the config.

Examples:
  hauler run
  hauler run --scenario scenarios/quarry.yaml --journal
  hauler run --scenario scenarios/quarry.yaml --max-ticks 1000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("scenario") {
				cfg.Simulation.Scenario = scenarioPath
			}
			if cmd.Flags().Changed("max-ticks") {
				cfg.Simulation.MaxTicks = maxTicks
			}
			if cmd.Flags().Changed("journal") {
				cfg.Daemon.Journal = journal
			}

			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			pf := pidfile.New(cfg.Daemon.PIDFile)
			if err := pf.Acquire(); err != nil {
				var running *pidfile.ErrAlreadyRunning
				if errors.As(err, &running) {
					return fmt.Errorf("daemon already running with PID %d", running.PID)
				}
				return fmt.Errorf("failed to acquire PID file lock: %w", err)
			}
			defer func() {
				if err := pf.Release(); err != nil {
					logger.Log(common.LevelWarn, "Failed to release PID file", map[string]interface{}{
						"error": err.Error(),
					})
				}
			}()

			ctx, stop := signal.NotifyContext(runContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			d, err := NewDaemon(ctx, cfg, logger)
			if err != nil {
				return err
			}
			return d.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&scenarioPath, "scenario", "", "Scenario file to load (overrides simulation.scenario)")
	cmd.Flags().IntVar(&maxTicks, "max-ticks", 0, "Stop after this many ticks (0 runs until interrupted)")
	cmd.Flags().BoolVar(&journal, "journal", false, "Record task signals in the database journal")

	return cmd
}

// runContext returns cmd's context, falling back to Background when unset
func runContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
