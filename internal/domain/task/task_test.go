package task_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/hauler-go/internal/domain/ledger"
	"github.com/andrescamacho/hauler-go/internal/domain/shared"
	"github.com/andrescamacho/hauler-go/internal/domain/task"
	"github.com/andrescamacho/hauler-go/internal/domain/work"
)

func TestAdvance_ForwardOnly(t *testing.T) {
	// Arrange
	g := task.NewGather(1, 2, 3)
	require.Equal(t, task.PhaseGoingToResource, g.Phase())

	// Act
	forwardErr := g.Advance(task.PhaseCollecting)
	backErr := g.Advance(task.PhaseGoingToResource)
	sameErr := g.Advance(task.PhaseCollecting)
	foreignErr := g.Advance(task.PhaseFilling)

	// Assert
	require.NoError(t, forwardErr)
	var transition *task.ErrInvalidPhaseTransition
	assert.ErrorAs(t, backErr, &transition)
	assert.Equal(t, task.PhaseCollecting, transition.From)
	assert.Error(t, sameErr)
	assert.Error(t, foreignErr)
	assert.Equal(t, task.PhaseCollecting, g.Phase())
}

func TestAdvance_ResetsProgressAndNavigation(t *testing.T) {
	b := task.NewBuild(1, 2, 3)
	b.Nav().Path = []shared.Cell{{X: 1}}
	b.Nav().GoalSet = true

	require.NoError(t, b.Advance(task.PhaseBuilding))

	assert.Zero(t, b.Progress())
	assert.True(t, b.Nav().IsStale(shared.Cell{}, 1))
}

func TestAddProgress_SaturatesAtOne(t *testing.T) {
	r := task.NewRefine(1, 2, 3)

	assert.False(t, r.AddProgress(0.6))
	assert.True(t, r.AddProgress(0.6))
	assert.Equal(t, 1.0, r.Progress())
}

func TestReleaseAll_InvertsEveryHeldReserve(t *testing.T) {
	// Arrange
	h := task.NewHaul(1, 2, 10, 20, shared.ResourceWood)
	h.Hold(ledger.ReserveSource(10), ledger.ReserveDestination(20, shared.ResourceWood, 1))
	l := ledger.New()
	require.NoError(t, l.ApplyAll(h.Held()))

	// Act
	require.NoError(t, l.ApplyAll(h.ReleaseAll()))

	// Assert
	assert.Empty(t, l.Entries())
	assert.Empty(t, h.Held())
	assert.Equal(t, 0, l.ClampCount())
}

func TestSettle_RetiresOnlyMatchingReservations(t *testing.T) {
	// Arrange
	h := task.NewHaulToMixer(1, 2, 10, 30, shared.ResourceSand)
	h.Hold(ledger.ReserveSource(10), ledger.ReserveMixerDestination(30, shared.ResourceSand, 1))

	// Act
	settled := h.Settle(task.SourceIs(10))

	// Assert
	require.Len(t, settled, 1)
	assert.Equal(t, ledger.OpRecordPickedSource, settled[0].Op)
	require.Len(t, h.Held(), 1)
	assert.Equal(t, ledger.OpReserveMixerDestination, h.Held()[0].Op)
}

func TestPhases_EveryKindHasOrderEndingInDone(t *testing.T) {
	for _, k := range work.AllKinds() {
		phases := task.Phases(k)
		require.NotEmpty(t, phases, k)
		assert.Equal(t, task.PhaseDone, phases[len(phases)-1], k)
	}
}

func TestNavigation_StaleWhenGoalDrifts(t *testing.T) {
	nav := &task.Navigation{Path: []shared.Cell{{X: 1}}, Goal: shared.Cell{X: 5, Y: 5}, GoalSet: true}

	assert.False(t, nav.IsStale(shared.Cell{X: 5, Y: 6}, 1.5))
	assert.True(t, nav.IsStale(shared.Cell{X: 8, Y: 5}, 1.5))
}

func TestWheelbarrow_SkipItem(t *testing.T) {
	h := task.NewHaulWithWheelbarrow(1, 2, uuid.New(), 5, []shared.EntityID{7, 8, 9}, 6, shared.ResourceRock)

	h.SkipItem()
	next, ok := h.NextItem()

	assert.True(t, ok)
	assert.Equal(t, shared.EntityID(8), next)
	assert.Len(t, h.Items, 2)
}
