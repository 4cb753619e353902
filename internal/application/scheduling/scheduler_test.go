package scheduling_test

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/hauler-go/internal/adapters/grid"
	"github.com/andrescamacho/hauler-go/internal/application/scheduling"
	"github.com/andrescamacho/hauler-go/internal/domain/shared"
	"github.com/andrescamacho/hauler-go/internal/domain/task"
	"github.com/andrescamacho/hauler-go/internal/domain/transport"
	"github.com/andrescamacho/hauler-go/internal/domain/work"
	"github.com/andrescamacho/hauler-go/internal/domain/world"
)

func TestNewScheduler_RequiresCollaborators(t *testing.T) {
	_, err := scheduling.NewScheduler(scheduling.Deps{Tuning: scheduling.DefaultTuning()})

	var validation *shared.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestNewScheduler_RejectsZeroPathBudget(t *testing.T) {
	// Arrange
	g, err := grid.Parse(openRows(4, 4))
	require.NoError(t, err)
	f := newFixture(t)
	tuning := scheduling.DefaultTuning()
	tuning.PathCheckBudget = 0

	// Act
	_, err = scheduling.NewScheduler(scheduling.Deps{
		World:  f.world,
		Board:  f.board,
		Grid:   g,
		Paths:  grid.NewPathfinder(g, 0),
		Tuning: tuning,
	})

	// Assert
	var validation *shared.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "path_check_budget", validation.Field)
}

func TestDecide_FullStockpileGetsNoHaul(t *testing.T) {
	// Arrange
	f := newFixture(t)
	sup := f.supervisor(0, 0)
	f.worker(sup, 1, 1)
	full := f.stockpile(8, 8, 10, shared.ResourceWood)
	f.fillStockpile(full, shared.ResourceWood, 10)
	log := f.item(shared.ResourceWood, 3, 3)
	f.designate(work.Designation{Kind: work.KindHaul, Cell: log.Cell, Target: log.ID, Resource: shared.ResourceWood})

	// Act
	decision := f.sched.Decide(context.Background())

	// Assert
	assert.Empty(t, decision.Assignments)
	assert.Zero(t, decision.Rejections, "a haul with nowhere to go is pruned before ranking")
	assert.Empty(t, f.sched.Ledger().Entries())
}

func TestDecide_HaulPicksStockpileWithRoom(t *testing.T) {
	// Arrange
	f := newFixture(t)
	sup := f.supervisor(0, 0)
	f.worker(sup, 1, 1)
	full := f.stockpile(4, 4, 10, shared.ResourceWood)
	f.fillStockpile(full, shared.ResourceWood, 10)
	open := f.stockpile(12, 12, 10, shared.ResourceWood)
	log := f.item(shared.ResourceWood, 3, 3)
	f.designate(work.Designation{Kind: work.KindHaul, Cell: log.Cell, Target: log.ID, Resource: shared.ResourceWood})

	// Act
	decision := f.sched.Decide(context.Background())

	// Assert
	require.Len(t, decision.Assignments, 1)
	haul, ok := decision.Assignments[0].Task.(*task.Haul)
	require.True(t, ok)
	assert.Equal(t, open.ID, haul.Stockpile)
}

func TestDecide_TwoWorkersOneSlot(t *testing.T) {
	// Arrange
	f := newFixture(t)
	sup := f.supervisor(0, 0)
	first := f.worker(sup, 2, 2)
	f.worker(sup, 2, 3)
	tree := f.world.AddNode(&world.ResourceNode{Kind: world.NodeTree, Cell: shared.Cell{X: 6, Y: 6}, Remaining: 3})
	item := f.designate(work.Designation{Kind: work.KindGather, Cell: tree.Cell, Target: tree.ID})

	// Act
	decision := f.sched.Decide(context.Background())
	applied := f.sched.Execute(context.Background(), decision)
	again := f.sched.Decide(context.Background())

	// Assert
	require.Len(t, decision.Assignments, 1)
	assert.Equal(t, first.ID, decision.Assignments[0].Worker)
	assert.Equal(t, 1, applied)
	assert.Equal(t, 1, item.Claims())
	assert.Empty(t, again.Assignments)
	assert.Equal(t, 1, f.sched.Ledger().Source(tree.ID))
}

func TestDecide_MixerRejectsFullResourceButTakesAnother(t *testing.T) {
	// Arrange
	f := newFixture(t)
	sup := f.supervisor(0, 0)
	f.worker(sup, 1, 1)
	mixer := f.world.AddMixer(&world.Mixer{
		Cell: shared.Cell{X: 8, Y: 8},
		Capacity: map[shared.ResourceKind]int{
			shared.ResourceSand: 2, shared.ResourceRock: 2, shared.ResourceWater: 2,
		},
	})
	f.sched.Ledger().ReserveMixerDestination(mixer.ID, shared.ResourceSand, 2)
	f.item(shared.ResourceSand, 3, 3)
	rock := f.item(shared.ResourceRock, 4, 4)
	f.designate(work.Designation{Kind: work.KindHaulToMixer, Cell: mixer.Cell, Target: mixer.ID, SlotCapacity: 1, Resource: shared.ResourceSand})
	f.designate(work.Designation{Kind: work.KindHaulToMixer, Cell: mixer.Cell, Target: mixer.ID, SlotCapacity: 1, Resource: shared.ResourceRock})

	// Act
	decision := f.sched.Decide(context.Background())

	// Assert
	require.Len(t, decision.Assignments, 1)
	delivery, ok := decision.Assignments[0].Task.(*task.HaulToMixer)
	require.True(t, ok)
	assert.Equal(t, shared.ResourceRock, delivery.Resource)
	assert.Equal(t, rock.ID, delivery.Item)
	assert.Equal(t, 1, decision.Rejections)
}

func TestDecide_IsIdempotent(t *testing.T) {
	// Arrange
	f := newFixture(t)
	sup := f.supervisor(0, 0)
	f.worker(sup, 1, 1)
	f.worker(sup, 9, 9)
	f.worker(sup, 14, 2)
	f.stockpile(8, 0, 10, shared.ResourceNone)
	for _, c := range []shared.Cell{{X: 3, Y: 3}, {X: 10, Y: 10}, {X: 13, Y: 4}, {X: 5, Y: 12}} {
		f.item(shared.ResourceWood, c.X, c.Y)
	}
	f.sched.Perceive(context.Background())

	// Act
	first := f.sched.Decide(context.Background())
	second := f.sched.Decide(context.Background())

	// Assert
	require.Len(t, first.Assignments, 3)
	exportAll := cmp.Exporter(func(reflect.Type) bool { return true })
	if diff := cmp.Diff(first, second, exportAll); diff != "" {
		t.Errorf("Decide changed between passes (-first +second):\n%s", diff)
	}
	assert.Empty(t, f.sched.Ledger().Entries())
	for _, item := range f.board.All() {
		assert.Zero(t, item.Claims())
	}
}

func TestDecide_PathBudgetDefersProbes(t *testing.T) {
	// Arrange
	tuning := scheduling.DefaultTuning()
	tuning.PathCheckBudget = 1
	f := newFixtureWithTuning(t, tuning)
	sup := f.supervisor(0, 0)
	first := f.worker(sup, 0, 0)
	f.worker(sup, 0, 2)
	for _, c := range []shared.Cell{{X: 5, Y: 5}, {X: 7, Y: 7}, {X: 9, Y: 9}} {
		node := f.world.AddNode(&world.ResourceNode{Kind: world.NodeRock, Cell: c, Remaining: 1})
		f.designate(work.Designation{Kind: work.KindGather, Cell: c, Target: node.ID})
	}

	// Act
	decision := f.sched.Decide(context.Background())

	// Assert
	assert.Equal(t, 1, decision.Probes)
	assert.Equal(t, 2, decision.Deferred)
	require.Len(t, decision.Assignments, 1)
	assert.Equal(t, first.ID, decision.Assignments[0].Worker)
	cell, ok := f.world.CellOf(decision.Assignments[0].Task.Target())
	require.True(t, ok)
	assert.Equal(t, shared.Cell{X: 5, Y: 5}, cell)
	assert.Len(t, f.board.All(), 3, "deferred work stays on the board")
}

func TestDecide_AssignmentCarriesCommittedFlag(t *testing.T) {
	// Arrange
	f := newFixture(t)
	sup := f.supervisor(0, 0)
	owner := f.worker(sup, 2, 2)
	other := f.worker(f.supervisor(15, 15), 13, 13)
	owned := f.world.AddNode(&world.ResourceNode{Kind: world.NodeTree, Cell: shared.Cell{X: 3, Y: 3}, Remaining: 1})
	open := f.world.AddNode(&world.ResourceNode{Kind: world.NodeTree, Cell: shared.Cell{X: 12, Y: 12}, Remaining: 1})
	f.designate(work.Designation{Kind: work.KindGather, Cell: owned.Cell, Target: owned.ID, Owner: sup.ID})
	f.designate(work.Designation{Kind: work.KindGather, Cell: open.Cell, Target: open.ID})

	// Act
	decision := f.sched.Decide(context.Background())

	// Assert
	require.Len(t, decision.Assignments, 2)
	committed := make(map[shared.EntityID]bool)
	for _, a := range decision.Assignments {
		committed[a.Worker] = a.Committed
	}
	assert.True(t, committed[owner.ID])
	assert.False(t, committed[other.ID])
}

func TestDecide_EveryIdleWorkerGetsWorkWhenDesignationsExceedBudget(t *testing.T) {
	// Arrange
	f := newFixture(t, openRows(32, 32)...)
	sup := f.supervisor(0, 0)
	workers := []*world.Worker{
		f.worker(sup, 0, 0),
		f.worker(sup, 31, 0),
		f.worker(sup, 0, 31),
		f.worker(sup, 16, 0),
	}
	f.stockpile(31, 31, 100, shared.ResourceWood)
	for i := 0; i < 150; i++ {
		log := f.item(shared.ResourceWood, 1+i%30, 10+i/30)
		f.designate(work.Designation{Kind: work.KindHaul, Cell: log.Cell, Target: log.ID, Resource: shared.ResourceWood})
	}

	// Act
	decision := f.sched.Decide(context.Background())

	// Assert
	require.Len(t, decision.Assignments, len(workers))
	assigned := make(map[shared.EntityID]bool)
	for _, a := range decision.Assignments {
		assigned[a.Worker] = true
	}
	for _, wk := range workers {
		assert.True(t, assigned[wk.ID], "worker %s stayed idle", wk.ID)
	}
	assert.LessOrEqual(t, decision.Probes, len(workers))
	assert.Zero(t, decision.Deferred)
}

func TestDecide_SkipsUnreachableWork(t *testing.T) {
	// Arrange
	f := newFixture(t,
		"........",
		"....###.",
		"....#.#.",
		"....###.",
	)
	sup := f.supervisor(0, 0)
	f.worker(sup, 0, 0)
	node := f.world.AddNode(&world.ResourceNode{Kind: world.NodeTree, Cell: shared.Cell{X: 5, Y: 2}, Remaining: 1})
	f.designate(work.Designation{Kind: work.KindGather, Cell: node.Cell, Target: node.ID})

	// Act
	decision := f.sched.Decide(context.Background())

	// Assert
	assert.Empty(t, decision.Assignments)
	assert.Equal(t, 1, decision.Probes)
}

func TestDecide_SupervisorAreaBoundsCandidates(t *testing.T) {
	// Arrange
	f := newFixture(t)
	sup := f.world.AddSupervisor(&world.Supervisor{
		Cell: shared.Cell{X: 1, Y: 1},
		Area: shared.Rect{Min: shared.Cell{X: 0, Y: 0}, Max: shared.Cell{X: 4, Y: 4}},
	})
	f.worker(sup, 1, 1)
	outside := f.world.AddNode(&world.ResourceNode{Kind: world.NodeTree, Cell: shared.Cell{X: 10, Y: 10}, Remaining: 1})
	f.designate(work.Designation{Kind: work.KindGather, Cell: outside.Cell, Target: outside.ID})

	// Act
	decision := f.sched.Decide(context.Background())

	// Assert
	assert.Empty(t, decision.Assignments)
}

func TestDecide_HigherScoreWinsOverDistance(t *testing.T) {
	// Arrange
	f := newFixture(t)
	sup := f.supervisor(0, 0)
	f.worker(sup, 1, 1)
	near := f.world.AddNode(&world.ResourceNode{Kind: world.NodeTree, Cell: shared.Cell{X: 2, Y: 2}, Remaining: 1})
	far := f.world.AddNode(&world.ResourceNode{Kind: world.NodeTree, Cell: shared.Cell{X: 12, Y: 12}, Remaining: 1})
	f.designate(work.Designation{Kind: work.KindGather, Cell: near.Cell, Target: near.ID})
	f.designate(work.Designation{Kind: work.KindGather, Cell: far.Cell, Target: far.ID, Priority: 5})

	// Act
	decision := f.sched.Decide(context.Background())

	// Assert
	require.Len(t, decision.Assignments, 1)
	assert.Equal(t, far.ID, decision.Assignments[0].Task.Target())
}

func TestMaintain_TargetDestroyedMidGatherReleasesEverything(t *testing.T) {
	// Arrange
	f := newFixture(t)
	sup := f.supervisor(0, 0)
	wk := f.worker(sup, 2, 3)
	tree := f.world.AddNode(&world.ResourceNode{Kind: world.NodeTree, Cell: shared.Cell{X: 8, Y: 3}, Remaining: 5})
	item := f.designate(work.Designation{Kind: work.KindGather, Cell: tree.Cell, Target: tree.ID})
	f.tick()
	require.Equal(t, 1, f.sched.Ledger().Source(tree.ID))
	f.runUntil(200, func() bool {
		t := f.sched.TaskOf(wk.ID)
		return t != nil && t.Phase() == task.PhaseCollecting
	})

	// Act
	f.sched.Lock(func() { f.world.Despawn(tree.ID) })
	f.tick()

	// Assert
	assert.Nil(t, f.sched.TaskOf(wk.ID))
	assert.Zero(t, f.sched.Ledger().Source(tree.ID))
	assert.True(t, wk.Load.IsEmpty())
	assert.Empty(t, f.world.Items())
	_, stillOnBoard := f.board.Get(item.ID())
	assert.False(t, stillOnBoard)
	abandoned := f.sink.OfType(task.SignalAbandoned)
	require.Len(t, abandoned, 1)
	assert.Equal(t, task.AbortTargetVanished, abandoned[0].Reason)
	assert.Equal(t, task.PhaseCollecting, abandoned[0].Phase)
}

func TestMaintain_DestinationDestroyedDropsCarriedItem(t *testing.T) {
	// Arrange
	f := newFixture(t)
	sup := f.supervisor(0, 0)
	wk := f.worker(sup, 1, 1)
	sp := f.stockpile(12, 12, 5, shared.ResourceWood)
	f.item(shared.ResourceWood, 3, 1)
	f.runUntil(200, func() bool {
		t := f.sched.TaskOf(wk.ID)
		return t != nil && t.Phase() == task.PhaseCarrying
	})
	require.Equal(t, 1, wk.Load.Count)

	// Act
	f.sched.Lock(func() { f.world.Despawn(sp.ID) })
	f.tick()

	// Assert
	assert.Nil(t, f.sched.TaskOf(wk.ID))
	assert.True(t, wk.Load.IsEmpty())
	require.Len(t, f.world.Items(), 1)
	dropped := f.world.Items()[0]
	assert.True(t, dropped.IsLoose())
	assert.Equal(t, wk.Cell(), dropped.Cell)
	assert.Empty(t, f.sched.Ledger().Entries())
}

func TestCancel_ReleasesReservationsAndClaim(t *testing.T) {
	// Arrange
	f := newFixture(t)
	sup := f.supervisor(0, 0)
	wk := f.worker(sup, 1, 1)
	tree := f.world.AddNode(&world.ResourceNode{Kind: world.NodeTree, Cell: shared.Cell{X: 9, Y: 9}, Remaining: 2})
	item := f.designate(work.Designation{Kind: work.KindGather, Cell: tree.Cell, Target: tree.ID})
	f.tick()
	require.NotNil(t, f.sched.TaskOf(wk.ID))

	// Act
	cancelled := f.sched.Cancel(context.Background(), wk.ID)

	// Assert
	assert.True(t, cancelled)
	assert.Nil(t, f.sched.TaskOf(wk.ID))
	assert.Zero(t, item.Claims())
	assert.Empty(t, f.sched.Ledger().Entries())
	_, kept := f.board.Get(item.ID())
	assert.True(t, kept, "live target keeps its designation")
	assert.False(t, f.sched.Cancel(context.Background(), wk.ID))
}

func TestDesignate_RejectsMissingTarget(t *testing.T) {
	f := newFixture(t)

	_, err := f.sched.Designate(context.Background(), work.Designation{Kind: work.KindGather, Target: 999})

	var invalid *work.ErrInvalidDesignation
	require.ErrorAs(t, err, &invalid)
}

func TestMaintain_AnchorGoneClosesRequestAndRemovesItem(t *testing.T) {
	// Arrange
	f := newFixture(t)
	sup := f.supervisor(0, 0)
	bp := f.world.AddBlueprint(&world.Blueprint{
		Cells:     []shared.Cell{{X: 10, Y: 10}},
		Owner:     sup.ID,
		Materials: []world.Material{{Resource: shared.ResourceWood, Required: 2}},
	})
	f.sched.Perceive(context.Background())
	req, ok := f.sched.Requests().Find(transport.Key{Anchor: bp.ID, Kind: work.KindHaulToBlueprint, Resource: shared.ResourceWood})
	require.True(t, ok)
	assert.Equal(t, 2, req.Demand().Desired)
	workItem := req.WorkItem()

	// Act
	f.sched.Lock(func() { f.world.Despawn(bp.ID) })
	f.sched.Maintain(context.Background())

	// Assert
	assert.Zero(t, f.sched.Requests().Len())
	assert.Equal(t, transport.CloseAnchorGone, req.CloseReason())
	_, stillOnBoard := f.board.Get(workItem)
	assert.False(t, stillOnBoard)
}

func TestMaintain_AnchorGoneStripsAdoptedItem(t *testing.T) {
	// Arrange
	f := newFixture(t)
	sup := f.supervisor(0, 0)
	bp := f.world.AddBlueprint(&world.Blueprint{
		Cells:     []shared.Cell{{X: 10, Y: 10}},
		Owner:     sup.ID,
		Materials: []world.Material{{Resource: shared.ResourceWood, Required: 2}},
	})
	manual := f.designate(work.Designation{
		Kind: work.KindHaulToBlueprint, Cell: bp.Anchor(), Target: bp.ID,
		SlotCapacity: 1, Resource: shared.ResourceWood,
	})
	f.sched.Perceive(context.Background())
	require.True(t, manual.HasRequest())

	// Act
	f.sched.Lock(func() { f.world.Despawn(bp.ID) })
	f.sched.Maintain(context.Background())

	// Assert
	assert.Zero(t, f.sched.Requests().Len())
	kept, ok := f.board.Get(manual.ID())
	require.True(t, ok)
	assert.False(t, kept.HasRequest())
	assert.Equal(t, work.DefaultSlotCapacity, kept.SlotCapacity())
}

func TestRequestTransport_ClosesWhenPinnedSourceConsumed(t *testing.T) {
	// Arrange
	f := newFixture(t)
	sup := f.supervisor(0, 0)
	bp := f.world.AddBlueprint(&world.Blueprint{
		Cells:     []shared.Cell{{X: 10, Y: 10}},
		Materials: []world.Material{{Resource: shared.ResourceRock, Required: 1}},
	})
	rock := f.item(shared.ResourceRock, 2, 2)
	id, err := f.sched.RequestTransport(context.Background(), rock.ID, bp.ID, sup.ID, 5)
	require.NoError(t, err)
	req, ok := f.sched.Requests().Get(id)
	require.True(t, ok)
	assert.True(t, req.IsSingleShot())

	// Act
	f.sched.Lock(func() { f.world.Despawn(rock.ID) })
	f.sched.Maintain(context.Background())

	// Assert
	_, ok = f.sched.Requests().Get(id)
	assert.False(t, ok)
	assert.Equal(t, transport.ClosePinnedSourceConsumed, req.CloseReason())
}

func TestRequestTransport_RejectsNonAnchor(t *testing.T) {
	// Arrange
	f := newFixture(t)
	sup := f.supervisor(0, 0)
	rock := f.item(shared.ResourceRock, 2, 2)
	other := f.item(shared.ResourceRock, 3, 3)

	// Act
	_, err := f.sched.RequestTransport(context.Background(), rock.ID, other.ID, sup.ID, 0)

	// Assert
	var invalid *work.ErrInvalidDesignation
	require.ErrorAs(t, err, &invalid)
	assert.Zero(t, f.sched.Requests().Len())
}

func TestTick_HaulsLooseItemsIntoStockpile(t *testing.T) {
	// Arrange
	f := newFixture(t)
	sup := f.supervisor(0, 0)
	f.worker(sup, 1, 1)
	f.worker(sup, 14, 1)
	f.worker(sup, 1, 14)
	sp := f.stockpile(8, 8, 10, shared.ResourceWood)
	for _, c := range []shared.Cell{{X: 2, Y: 5}, {X: 12, Y: 3}, {X: 4, Y: 13}, {X: 14, Y: 14}, {X: 9, Y: 1}, {X: 6, Y: 10}} {
		f.item(shared.ResourceWood, c.X, c.Y)
	}

	// Act
	for i := 0; i < 3000 && !(sp.Stored == 6 && f.idle()); i++ {
		f.tick()
		f.requireClaimsWithinCapacity()
	}

	// Assert
	assert.Equal(t, 6, sp.Stored)
	assert.True(t, f.idle())
	assert.Empty(t, f.sched.Ledger().Entries(), "no reservation outlives its task")
	assert.Len(t, f.sink.OfType(task.SignalCompleted), 6)
	assert.Empty(t, f.sink.OfType(task.SignalAbandoned))
	assert.Zero(t, f.sched.Ledger().ClampCount())
}

func TestTick_GatherLeavesYieldOnGround(t *testing.T) {
	// Arrange
	f := newFixture(t)
	sup := f.supervisor(0, 0)
	f.worker(sup, 1, 1)
	tree := f.world.AddNode(&world.ResourceNode{Kind: world.NodeTree, Cell: shared.Cell{X: 5, Y: 5}, Remaining: 1, Yield: 2})
	f.designate(work.Designation{Kind: work.KindGather, Cell: tree.Cell, Target: tree.ID})

	// Act
	f.runUntil(500, func() bool { return !f.world.Exists(tree.ID) && f.idle() })

	// Assert
	require.Len(t, f.world.Items(), 2)
	for _, item := range f.world.Items() {
		assert.Equal(t, shared.ResourceWood, item.Resource)
		assert.Equal(t, tree.Cell, item.Cell)
	}
	assert.Zero(t, f.board.Len())
	assert.Empty(t, f.sched.Ledger().Entries())
}

func TestTick_BlueprintIsSuppliedAndBuilt(t *testing.T) {
	// Arrange
	f := newFixture(t)
	sup := f.supervisor(0, 0)
	f.worker(sup, 1, 1)
	f.worker(sup, 2, 1)
	bp := f.world.AddBlueprint(&world.Blueprint{
		Cells:     []shared.Cell{{X: 10, Y: 10}, {X: 11, Y: 10}},
		Owner:     sup.ID,
		Materials: []world.Material{{Resource: shared.ResourceWood, Required: 2}},
	})
	f.item(shared.ResourceWood, 3, 3)
	f.item(shared.ResourceWood, 4, 6)

	// Act
	f.runUntil(3000, func() bool { return !f.world.Exists(bp.ID) && f.idle() })
	f.tick()

	// Assert
	assert.Empty(t, f.world.Items())
	assert.Zero(t, f.sched.Requests().Len())
	assert.Zero(t, f.board.Len())
	assert.Empty(t, f.sched.Ledger().Entries())
	assert.Empty(t, f.sink.OfType(task.SignalAbandoned))
}

func TestTick_BucketBrigadeFillsTank(t *testing.T) {
	// Arrange
	f := newFixture(t,
		"~...........",
		"~...........",
		"~...........",
		"~...........",
		"~...........",
		"~...........",
	)
	sup := f.supervisor(0, 0)
	f.worker(sup, 5, 1)
	tank := f.world.AddTank(&world.Tank{Cell: shared.Cell{X: 6, Y: 3}, Capacity: 6})
	bucket := f.world.AddBucket(&world.Bucket{Home: tank.ID, Cell: shared.Cell{X: 6, Y: 4}, Capacity: 3})

	// Act
	f.runUntil(3000, func() bool { return tank.Water == tank.Capacity && f.idle() })
	f.tick()

	// Assert
	assert.True(t, bucket.IsIdle())
	assert.Zero(t, bucket.Water)
	assert.Empty(t, f.sched.Ledger().Entries())
	assert.Zero(t, f.sched.Requests().Len(), "a full tank has no demand")
}

func TestTick_MixerRefinesMud(t *testing.T) {
	// Arrange
	f := newFixture(t)
	sup := f.supervisor(0, 0)
	f.worker(sup, 1, 1)
	mixer := f.world.AddMixer(&world.Mixer{
		Cell:     shared.Cell{X: 6, Y: 6},
		Capacity: map[shared.ResourceKind]int{shared.ResourceSand: 1, shared.ResourceRock: 1, shared.ResourceWater: 1},
		Stored:   map[shared.ResourceKind]int{shared.ResourceSand: 1, shared.ResourceRock: 1, shared.ResourceWater: 1},
	})

	// Act
	f.runUntil(1000, func() bool { return len(f.world.Items()) == 1 && f.idle() })

	// Assert
	mud := f.world.Items()[0]
	assert.Equal(t, world.RecipeOutput, mud.Resource)
	assert.False(t, mixer.HasRecipe())
	assert.Empty(t, f.sched.Ledger().Entries())
}

func TestTick_WheelbarrowBatchesClusteredItems(t *testing.T) {
	// Arrange
	f := newFixture(t)
	sup := f.supervisor(0, 0)
	wk := f.worker(sup, 1, 1)
	sp := f.stockpile(12, 12, 10, shared.ResourceWood)
	f.world.AddWheelbarrow(&world.Wheelbarrow{Cell: shared.Cell{X: 2, Y: 2}, Capacity: 4})
	for _, c := range []shared.Cell{{X: 4, Y: 4}, {X: 5, Y: 4}, {X: 4, Y: 5}} {
		f.item(shared.ResourceWood, c.X, c.Y)
	}

	// Act
	f.tick()
	trip, isTrip := f.sched.TaskOf(wk.ID).(*task.HaulWithWheelbarrow)
	f.runUntil(3000, func() bool { return sp.Stored == 3 && f.idle() })
	f.tick()

	// Assert
	require.True(t, isTrip)
	assert.Len(t, trip.Items, 3)
	assert.Len(t, f.sink.OfType(task.SignalCompleted), 1)
	assert.Zero(t, f.sched.Leases().Len())
	assert.Empty(t, f.sched.Ledger().Entries())
	assert.Zero(t, f.sched.Requests().Len())
}

func TestCancelWorkItem_ClosesOwningRequest(t *testing.T) {
	// Arrange
	f := newFixture(t)
	sup := f.supervisor(0, 0)
	f.worker(sup, 1, 1)
	bp := f.world.AddBlueprint(&world.Blueprint{
		Cells:     []shared.Cell{{X: 10, Y: 10}},
		Owner:     sup.ID,
		Materials: []world.Material{{Resource: shared.ResourceWood, Required: 1}},
	})
	f.item(shared.ResourceWood, 3, 3)
	f.tick()
	req, ok := f.sched.Requests().Find(transport.Key{Anchor: bp.ID, Kind: work.KindHaulToBlueprint, Resource: shared.ResourceWood})
	require.True(t, ok)

	// Act
	err := f.sched.CancelWorkItem(context.Background(), req.WorkItem())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, transport.CloseCancelled, req.CloseReason())
	assert.True(t, f.idle())
	assert.Empty(t, f.sched.Ledger().Entries())
	require.Len(t, f.world.Items(), 1)
}

func TestSnapshot_ReportsBusyWorkers(t *testing.T) {
	// Arrange
	f := newFixture(t)
	sup := f.supervisor(0, 0)
	wk := f.worker(sup, 1, 1)
	tree := f.world.AddNode(&world.ResourceNode{Kind: world.NodeTree, Cell: shared.Cell{X: 9, Y: 9}, Remaining: 2})
	f.designate(work.Designation{Kind: work.KindGather, Cell: tree.Cell, Target: tree.ID})
	f.tick()

	// Act
	snap := f.sched.Snapshot()

	// Assert
	require.Len(t, snap.Workers, 1)
	assert.Equal(t, wk.ID, snap.Workers[0].ID)
	assert.Equal(t, work.KindGather, snap.Workers[0].Kind)
	require.Len(t, snap.WorkItems, 1)
	assert.Equal(t, 1, snap.WorkItems[0].Claims)
	assert.Equal(t, uint64(1), snap.Tick)
	require.Len(t, snap.Ledger, 1)
}

// waterRows is an open map with a water column on its east edge
func waterRows(width, height int) []string {
	rows := openRows(width-1, height)
	for i := range rows {
		rows[i] += "~"
	}
	return rows
}

func TestDecide_GatherWaterIntoFullTankIsNotScored(t *testing.T) {
	// Arrange
	f := newFixture(t, waterRows(16, 16)...)
	sup := f.supervisor(0, 0)
	f.worker(sup, 1, 1)
	tank := f.world.AddTank(&world.Tank{Cell: shared.Cell{X: 10, Y: 4}, Capacity: 4, Water: 4})
	f.world.AddBucket(&world.Bucket{Home: tank.ID, Cell: shared.Cell{X: 9, Y: 4}, Capacity: 2})
	f.designate(work.Designation{Kind: work.KindGatherWater, Cell: tank.Cell, Target: tank.ID, SlotCapacity: 1, Resource: shared.ResourceWater})

	// Act
	decision := f.sched.Decide(context.Background())

	// Assert
	assert.Empty(t, decision.Assignments)
	assert.Zero(t, decision.Rejections)
	assert.Zero(t, decision.Probes)
}

func TestDecide_GatherWaterPrunedOnceCycleReservationsFillTank(t *testing.T) {
	// Arrange
	f := newFixture(t, waterRows(16, 16)...)
	sup := f.supervisor(0, 0)
	first := f.worker(sup, 1, 1)
	f.worker(sup, 1, 2)
	tank := f.world.AddTank(&world.Tank{Cell: shared.Cell{X: 10, Y: 4}, Capacity: 4, Water: 2})
	f.world.AddBucket(&world.Bucket{Home: tank.ID, Cell: shared.Cell{X: 9, Y: 4}, Capacity: 2})
	f.world.AddBucket(&world.Bucket{Home: tank.ID, Cell: shared.Cell{X: 9, Y: 5}, Capacity: 2})
	f.designate(work.Designation{Kind: work.KindGatherWater, Cell: tank.Cell, Target: tank.ID, SlotCapacity: 2, Resource: shared.ResourceWater})

	// Act
	decision := f.sched.Decide(context.Background())

	// Assert
	require.Len(t, decision.Assignments, 1)
	assert.Equal(t, first.ID, decision.Assignments[0].Worker)
	gather, ok := decision.Assignments[0].Task.(*task.GatherWater)
	require.True(t, ok)
	assert.Equal(t, 2, gather.Amount)
	assert.Zero(t, decision.Rejections, "the second worker never reaches the policy")
}

func TestTick_ExpiredWheelbarrowLeaseAbortsTrip(t *testing.T) {
	// Arrange
	tuning := scheduling.DefaultTuning()
	tuning.LeaseDuration = 500 * time.Millisecond
	f := newFixtureWithTuning(t, tuning)
	sup := f.supervisor(0, 0)
	wk := f.worker(sup, 1, 1)
	f.stockpile(12, 12, 10, shared.ResourceWood)
	f.world.AddWheelbarrow(&world.Wheelbarrow{Cell: shared.Cell{X: 2, Y: 2}, Capacity: 4})
	for _, c := range []shared.Cell{{X: 6, Y: 6}, {X: 7, Y: 6}, {X: 6, Y: 7}} {
		f.item(shared.ResourceWood, c.X, c.Y)
	}
	f.tick()
	trip, isTrip := f.sched.TaskOf(wk.ID).(*task.HaulWithWheelbarrow)
	require.True(t, isTrip)

	// Act
	ticks := f.runUntil(20, func() bool { return len(f.sink.OfType(task.SignalAbandoned)) > 0 })

	// Assert
	assert.LessOrEqual(t, ticks, 6, "the trip ends in the Maintain pass where its lease expires")
	abandoned := f.sink.OfType(task.SignalAbandoned)
	require.Len(t, abandoned, 1)
	assert.Equal(t, task.AbortLeaseExpired, abandoned[0].Reason)
	assert.Equal(t, wk.ID, abandoned[0].Worker)
	_, stillLeased := f.sched.Leases().Get(trip.Lease)
	assert.False(t, stillLeased)
	assert.Nil(t, f.sched.TaskOf(wk.ID))
	assert.Empty(t, f.sched.Ledger().Entries())
	assert.Zero(t, f.sched.Ledger().ClampCount())
	assert.Empty(t, f.sink.OfType(task.SignalCompleted))
}
