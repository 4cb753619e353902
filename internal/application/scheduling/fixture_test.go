package scheduling_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/hauler-go/internal/adapters/grid"
	spatialindex "github.com/andrescamacho/hauler-go/internal/adapters/spatial"
	"github.com/andrescamacho/hauler-go/internal/application/common"
	"github.com/andrescamacho/hauler-go/internal/application/scheduling"
	"github.com/andrescamacho/hauler-go/internal/domain/shared"
	"github.com/andrescamacho/hauler-go/internal/domain/work"
	"github.com/andrescamacho/hauler-go/internal/domain/world"
)

// fixture is a small colony on an open map with one scheduler over it
type fixture struct {
	t     *testing.T
	grid  *grid.Grid
	world *world.World
	board *work.Board
	sink  *common.SignalRecorder
	sched *scheduling.Scheduler
}

func openRows(width, height int) []string {
	rows := make([]string, height)
	for i := range rows {
		rows[i] = strings.Repeat(".", width)
	}
	return rows
}

func newFixture(t *testing.T, rows ...string) *fixture {
	t.Helper()
	return newFixtureWithTuning(t, scheduling.DefaultTuning(), rows...)
}

func newFixtureWithTuning(t *testing.T, tuning scheduling.Tuning, rows ...string) *fixture {
	t.Helper()
	if len(rows) == 0 {
		rows = openRows(16, 16)
	}
	g, err := grid.Parse(rows)
	require.NoError(t, err)

	ids := shared.NewIDAllocator()
	w := world.New(ids, spatialindex.NewBucketIndex(0))
	board := work.NewBoard(ids, spatialindex.NewBucketIndex(0))
	sink := &common.SignalRecorder{}

	sched, err := scheduling.NewScheduler(scheduling.Deps{
		World:  w,
		Board:  board,
		Grid:   g,
		Paths:  grid.NewPathfinder(g, 0),
		Clock:  shared.NewTickClock(time.Unix(0, 0).UTC(), 100*time.Millisecond),
		Tuning: tuning,
		Sink:   sink,
	})
	require.NoError(t, err)

	return &fixture{t: t, grid: g, world: w, board: board, sink: sink, sched: sched}
}

func (f *fixture) supervisor(x, y int) *world.Supervisor {
	return f.world.AddSupervisor(&world.Supervisor{Cell: shared.Cell{X: x, Y: y}})
}

func (f *fixture) worker(sup *world.Supervisor, x, y int) *world.Worker {
	return f.world.AddWorker(&world.Worker{
		Supervisor: sup.ID,
		Pos:        shared.Cell{X: x, Y: y}.Center(),
	})
}

func (f *fixture) item(r shared.ResourceKind, x, y int) *world.Item {
	return f.world.SpawnItem(r, shared.Cell{X: x, Y: y})
}

func (f *fixture) stockpile(x, y, capacity int, accepts shared.ResourceKind) *world.Stockpile {
	return f.world.AddStockpile(&world.Stockpile{
		Cell:     shared.Cell{X: x, Y: y},
		Capacity: capacity,
		Accepts:  accepts,
	})
}

func (f *fixture) fillStockpile(sp *world.Stockpile, r shared.ResourceKind, n int) {
	for i := 0; i < n; i++ {
		_, err := f.world.AddItem(&world.Item{Resource: r, Stockpile: sp.ID})
		require.NoError(f.t, err)
	}
}

func (f *fixture) designate(d work.Designation) *work.WorkItem {
	item, err := f.sched.Designate(context.Background(), d)
	require.NoError(f.t, err)
	return item
}

func (f *fixture) tick() scheduling.TickReport {
	return f.sched.Tick(context.Background())
}

// runUntil ticks until done holds, failing the test after limit ticks
func (f *fixture) runUntil(limit int, done func() bool) int {
	f.t.Helper()
	for i := 0; i < limit; i++ {
		if done() {
			return i
		}
		f.tick()
	}
	require.True(f.t, done(), "condition not reached after %d ticks", limit)
	return limit
}

// idle reports whether no worker holds a task
func (f *fixture) idle() bool {
	for _, wk := range f.world.Workers() {
		if f.sched.TaskOf(wk.ID) != nil {
			return false
		}
	}
	return true
}

// requireClaimsWithinCapacity checks every work item's claim count
func (f *fixture) requireClaimsWithinCapacity() {
	f.t.Helper()
	for _, item := range f.board.All() {
		require.GreaterOrEqual(f.t, item.Claims(), 0, "work item %s", item.ID())
		require.LessOrEqual(f.t, item.Claims(), item.SlotCapacity(), "work item %s", item.ID())
	}
}
