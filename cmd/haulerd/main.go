package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/andrescamacho/hauler-go/internal/adapters/cli"
	"github.com/andrescamacho/hauler-go/internal/adapters/logging"
	"github.com/andrescamacho/hauler-go/internal/application/common"
	"github.com/andrescamacho/hauler-go/internal/infrastructure/config"
	"github.com/andrescamacho/hauler-go/internal/infrastructure/pidfile"
)

func main() {
	configFlag := flag.String("config", "", "Path to config file")
	scenarioFlag := flag.String("scenario", "", "Scenario file to load (overrides simulation.scenario)")
	flag.Parse()

	fmt.Println("Hauler Daemon v0.1.0")
	fmt.Println("====================")

	cfg := config.MustLoadConfig(*configFlag)
	if *scenarioFlag != "" {
		cfg.Simulation.Scenario = *scenarioFlag
	}

	// Acquire PID file lock to prevent multiple instances
	pf := pidfile.New(cfg.Daemon.PIDFile)
	if err := pf.Acquire(); err != nil {
		var running *pidfile.ErrAlreadyRunning
		if errors.As(err, &running) {
			log.Fatalf("%v\nStop it first or remove %s", err, pf.Path())
		}
		log.Fatalf("Failed to acquire PID file lock: %v", err)
	}
	fmt.Printf("PID file lock acquired: %s\n", pf.Path())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, cfg)
	stop()

	if releaseErr := pf.Release(); releaseErr != nil {
		log.Printf("Warning: failed to release PID file: %v", releaseErr)
	}
	if err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	logger, err := logging.NewZapLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	d, err := cli.NewDaemon(ctx, cfg, logger)
	if err != nil {
		return err
	}

	logger.Log(common.LevelInfo, "Daemon starting", map[string]interface{}{
		"address":  cfg.Daemon.Address,
		"scenario": cfg.Simulation.Scenario,
	})
	return d.Run(ctx)
}
