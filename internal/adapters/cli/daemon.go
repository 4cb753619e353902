package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	grpclib "google.golang.org/grpc"
	"gorm.io/gorm"

	"github.com/andrescamacho/hauler-go/internal/adapters/eventstream"
	controlgrpc "github.com/andrescamacho/hauler-go/internal/adapters/grpc"
	"github.com/andrescamacho/hauler-go/internal/adapters/metrics"
	"github.com/andrescamacho/hauler-go/internal/adapters/persistence"
	"github.com/andrescamacho/hauler-go/internal/adapters/scenario"
	"github.com/andrescamacho/hauler-go/internal/application/common"
	"github.com/andrescamacho/hauler-go/internal/application/scheduling"
	"github.com/andrescamacho/hauler-go/internal/application/setup"
	"github.com/andrescamacho/hauler-go/internal/domain/shared"
	"github.com/andrescamacho/hauler-go/internal/infrastructure/config"
	"github.com/andrescamacho/hauler-go/internal/infrastructure/database"
)

const (
	journalBuffer   = 1024
	journalInterval = time.Second
)

// Daemon owns the scheduler and every surface serving it
type Daemon struct {
	cfg    *config.Config
	logger common.Logger

	colony  *scenario.Colony
	sched   *scheduling.Scheduler
	control *controlgrpc.Server

	metricsServer *metrics.Server
	hub           *eventstream.Hub

	db      *gorm.DB
	repo    persistence.JournalRepository
	journal *persistence.Journal
}

// NewDaemon loads the configured scenario and wires the scheduler to its sinks
func NewDaemon(ctx context.Context, cfg *config.Config, logger common.Logger) (*Daemon, error) {
	ctx = common.WithLogger(ctx, logger)
	d := &Daemon{cfg: cfg, logger: logger}

	colony, err := loadColony(cfg.Simulation.Scenario)
	if err != nil {
		return nil, err
	}
	d.colony = colony

	tuning, err := tuningFromConfig(cfg.Scheduler)
	if err != nil {
		return nil, err
	}

	var (
		sinks        common.FanOut
		recorder     scheduling.MetricsRecorder
		interceptors []grpclib.UnaryServerInterceptor
	)

	if cfg.Metrics.Enabled {
		reg := metrics.InitRegistry()
		schedulerMetrics := metrics.NewSchedulerMetricsCollector()
		if err := schedulerMetrics.Register(reg); err != nil {
			return nil, fmt.Errorf("failed to register scheduler metrics: %w", err)
		}
		controlMetrics := metrics.NewControlMetricsCollector()
		if err := controlMetrics.Register(reg); err != nil {
			return nil, fmt.Errorf("failed to register control metrics: %w", err)
		}
		recorder = schedulerMetrics
		interceptors = append(interceptors, controlMetrics.UnaryServerInterceptor())
		d.metricsServer = metrics.NewServer(cfg.Metrics.Host, cfg.Metrics.Port, cfg.Metrics.Path, reg)
	}

	if cfg.EventStream.Enabled {
		d.hub = eventstream.NewHub(cfg.EventStream.ClientBuffer, cfg.EventStream.WriteTimeout)
		sinks = append(sinks, d.hub)
	}

	if cfg.Daemon.Journal {
		if err := d.openJournal(ctx); err != nil {
			return nil, err
		}
		sinks = append(sinks, d.journal)
	}

	sched, err := colony.NewScheduler(scheduling.Deps{
		Clock:   shared.NewTickClock(time.Now().UTC(), cfg.Simulation.TickDuration),
		Tuning:  tuning,
		Sink:    sinks,
		Metrics: recorder,
	})
	if err != nil {
		d.closeJournal(ctx)
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	if err := colony.Apply(ctx, sched); err != nil {
		d.closeJournal(ctx)
		return nil, fmt.Errorf("failed to apply scenario: %w", err)
	}
	d.sched = sched

	bus, err := setup.NewControlMediator(sched)
	if err != nil {
		d.closeJournal(ctx)
		return nil, err
	}
	d.control = controlgrpc.NewServer(bus, controlgrpc.ServerOptions{
		RequestsPerSecond: cfg.Daemon.RateLimit.Requests,
		Burst:             cfg.Daemon.RateLimit.Burst,
		Interceptors:      interceptors,
	})

	logger.Log(common.LevelInfo, "Daemon initialised", map[string]interface{}{
		"scenario":     colony.Name,
		"workers":      len(colony.World.Workers()),
		"designations": colony.Board.Len(),
		"journal":      cfg.Daemon.Journal,
		"metrics":      cfg.Metrics.Enabled,
		"event_stream": cfg.EventStream.Enabled,
	})
	return d, nil
}

// Scheduler returns the daemon's scheduler
func (d *Daemon) Scheduler() *scheduling.Scheduler {
	return d.sched
}

// Run ticks the scheduler and serves until ctx is cancelled, a surface fails,
// or the configured tick limit is reached
func (d *Daemon) Run(ctx context.Context) error {
	ctx = common.WithLogger(ctx, d.logger)
	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		defer stop()
		return d.tickLoop(gctx)
	})
	g.Go(func() error {
		return d.control.Listen(gctx, d.cfg.Daemon.Address)
	})
	if d.metricsServer != nil {
		g.Go(func() error { return d.metricsServer.Run(gctx) })
	}
	if d.hub != nil {
		g.Go(func() error {
			return d.hub.Serve(gctx, d.cfg.EventStream.Address, d.cfg.EventStream.Path)
		})
	}
	if d.journal != nil {
		g.Go(func() error { return d.journal.Run(gctx) })
	}

	err := g.Wait()
	d.closeJournal(ctx)
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	d.logger.Log(common.LevelInfo, "Daemon stopped", map[string]interface{}{
		"ticks": d.sched.Clock().Tick(),
	})
	return err
}

func (d *Daemon) tickLoop(ctx context.Context) error {
	ticker := time.NewTicker(d.cfg.Simulation.TickInterval)
	defer ticker.Stop()

	limit := uint64(d.cfg.Simulation.MaxTicks)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			d.sched.Tick(ctx)
			if limit > 0 && d.sched.Clock().Tick() >= limit {
				d.logger.Log(common.LevelInfo, "Tick limit reached", map[string]interface{}{
					"ticks": limit,
				})
				return nil
			}
		}
	}
}

func (d *Daemon) openJournal(ctx context.Context) error {
	db, err := database.NewConnection(&d.cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		_ = database.Close(db)
		return fmt.Errorf("failed to migrate journal tables: %w", err)
	}
	repo := persistence.NewGormJournalRepository(db, shared.NewRealClock())
	runID, err := repo.StartRun(ctx, d.colony.Name)
	if err != nil {
		_ = database.Close(db)
		return err
	}
	d.db = db
	d.repo = repo
	d.journal = persistence.NewJournal(repo, runID, journalBuffer, journalInterval)
	return nil
}

// closeJournal records the run's end and closes the database; safe to call twice
func (d *Daemon) closeJournal(ctx context.Context) {
	if d.db == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	var ticks uint64
	if d.sched != nil {
		ticks = d.sched.Clock().Tick()
	}
	if err := d.repo.FinishRun(ctx, d.journal.RunID(), ticks); err != nil {
		d.logger.Log(common.LevelWarn, "Failed to finish journal run", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if err := database.Close(d.db); err != nil {
		d.logger.Log(common.LevelWarn, "Failed to close database", map[string]interface{}{
			"error": err.Error(),
		})
	}
	d.db = nil
}

// loadColony builds the scenario at path, or an empty open colony when path is empty
func loadColony(path string) (*scenario.Colony, error) {
	if path == "" {
		return scenario.Empty(defaultColonySize, defaultColonySize)
	}
	sc, err := scenario.Load(path)
	if err != nil {
		return nil, err
	}
	return scenario.Build(sc)
}

const defaultColonySize = 64
