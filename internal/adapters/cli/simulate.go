package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/hauler-go/internal/adapters/scenario"
	"github.com/andrescamacho/hauler-go/internal/application/common"
	"github.com/andrescamacho/hauler-go/internal/application/scheduling"
	"github.com/andrescamacho/hauler-go/internal/domain/ledger"
	"github.com/andrescamacho/hauler-go/internal/domain/shared"
	"github.com/andrescamacho/hauler-go/internal/domain/task"
	"github.com/andrescamacho/hauler-go/internal/domain/work"
	"github.com/andrescamacho/hauler-go/internal/infrastructure/config"
)

const defaultSimulationTicks = 1000

// kindTally counts task outcomes for one work kind
type kindTally struct {
	Assigned  int
	Completed int
	Abandoned int
}

// simulationResult summarises an offline scenario run
type simulationResult struct {
	Scenario  string
	Ticks     int
	Kinds     map[work.Kind]*kindTally
	Reasons   map[task.AbortReason]int
	WorkItems int
	Ledger    []ledger.Entry
	Idle      bool
}

// NewSimulateCommand creates the simulate command
func NewSimulateCommand() *cobra.Command {
	var (
		scenarioPath string
		ticks        int
		untilIdle    bool
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a scenario offline and summarise task outcomes",
		Long: `Run a scenario without any network surfaces and print what happened.

Ticks default to the scenario's own tick count, then to 1000.

Examples:
  hauler simulate --scenario scenarios/quarry.yaml
  hauler simulate --scenario scenarios/quarry.yaml --ticks 200 --until-idle`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx := common.WithLogger(runContext(cmd), logger)
			result, err := runSimulation(ctx, cfg, scenarioPath, ticks, untilIdle)
			if err != nil {
				return err
			}
			return printSimulation(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&scenarioPath, "scenario", "", "Scenario file to simulate")
	cmd.Flags().IntVar(&ticks, "ticks", 0, "Number of ticks to run (default: scenario ticks)")
	cmd.Flags().BoolVar(&untilIdle, "until-idle", false, "Stop early once no work remains and every worker is idle")
	_ = cmd.MarkFlagRequired("scenario")

	return cmd
}

func runSimulation(ctx context.Context, cfg *config.Config, path string, ticks int, untilIdle bool) (*simulationResult, error) {
	sc, err := scenario.Load(path)
	if err != nil {
		return nil, err
	}
	colony, err := scenario.Build(sc)
	if err != nil {
		return nil, err
	}
	tuning, err := tuningFromConfig(cfg.Scheduler)
	if err != nil {
		return nil, err
	}

	recorder := &common.SignalRecorder{}
	sched, err := colony.NewScheduler(scheduling.Deps{
		Clock:  shared.NewTickClock(time.Unix(0, 0).UTC(), cfg.Simulation.TickDuration),
		Tuning: tuning,
		Sink:   recorder,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	if err := colony.Apply(ctx, sched); err != nil {
		return nil, fmt.Errorf("failed to apply scenario: %w", err)
	}

	if ticks <= 0 {
		ticks = colony.Ticks
	}
	if ticks <= 0 {
		ticks = defaultSimulationTicks
	}

	result := &simulationResult{
		Scenario: colony.Name,
		Kinds:    make(map[work.Kind]*kindTally),
		Reasons:  make(map[task.AbortReason]int),
	}
	for result.Ticks < ticks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sched.Tick(ctx)
		result.Ticks++
		if untilIdle && settled(sched) {
			break
		}
	}

	for _, s := range recorder.Signals {
		tally, ok := result.Kinds[s.Kind]
		if !ok {
			tally = &kindTally{}
			result.Kinds[s.Kind] = tally
		}
		switch s.Type {
		case task.SignalAssigned:
			tally.Assigned++
		case task.SignalCompleted:
			tally.Completed++
		case task.SignalAbandoned:
			tally.Abandoned++
			result.Reasons[s.Reason]++
		}
	}
	snap := sched.Snapshot()
	result.WorkItems = len(snap.WorkItems)
	result.Ledger = snap.Ledger
	result.Idle = settled(sched)
	return result, nil
}

// settled reports whether every worker is idle and the board is empty
func settled(sched *scheduling.Scheduler) bool {
	snap := sched.Snapshot()
	if len(snap.WorkItems) > 0 {
		return false
	}
	for _, w := range snap.Workers {
		if w.Kind != "" {
			return false
		}
	}
	return true
}

func printSimulation(out io.Writer, r *simulationResult) error {
	fmt.Fprintf(out, "Scenario %s: %d ticks\n\n", r.Scenario, r.Ticks)

	kinds := make([]work.Kind, 0, len(r.Kinds))
	for k := range r.Kinds {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tASSIGNED\tCOMPLETED\tABANDONED")
	for _, k := range kinds {
		t := r.Kinds[k]
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", k, t.Assigned, t.Completed, t.Abandoned)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(r.Reasons) > 0 {
		reasons := make([]string, 0, len(r.Reasons))
		for reason := range r.Reasons {
			reasons = append(reasons, string(reason))
		}
		sort.Strings(reasons)
		fmt.Fprintln(out, "\nAbandon reasons:")
		for _, reason := range reasons {
			fmt.Fprintf(out, "  %s: %d\n", reason, r.Reasons[task.AbortReason(reason)])
		}
	}

	fmt.Fprintf(out, "\nOpen work items: %d\n", r.WorkItems)
	fmt.Fprintf(out, "Reservations held: %d\n", len(r.Ledger))
	if r.Idle {
		fmt.Fprintln(out, "Colony is idle")
	}
	return nil
}
