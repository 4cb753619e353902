package main

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/andrescamacho/hauler-go/internal/infrastructure/config"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("HAULER_LOGGING_LEVEL", "error")
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	cfg := config.LoadConfigOrDefault("")
	cfg.Daemon.Address = "127.0.0.1:0"
	cfg.Simulation.TickInterval = time.Millisecond
	return cfg
}

func TestRun_StopsAtTickLimit(t *testing.T) {
	// Arrange
	cfg := testConfig(t)
	cfg.Simulation.MaxTicks = 3

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Act
	err := run(ctx, cfg)

	// Assert
	require.NoError(t, err)
	assert.NoError(t, ctx.Err())
}

func TestRun_StopsOnCancel(t *testing.T) {
	// Arrange
	cfg := testConfig(t)
	cfg.EventStream.Enabled = true
	cfg.EventStream.Address = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	// Act
	go func() { done <- run(ctx, cfg) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	// Assert
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("daemon did not stop after cancel")
	}
}
