package work_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	spatialindex "github.com/andrescamacho/hauler-go/internal/adapters/spatial"
	"github.com/andrescamacho/hauler-go/internal/domain/shared"
	"github.com/andrescamacho/hauler-go/internal/domain/work"
)

func newBoard() *work.Board {
	return work.NewBoard(shared.NewIDAllocator(), spatialindex.NewBucketIndex(0))
}

func TestWorkItem_ClaimRespectsCapacity(t *testing.T) {
	// Arrange
	item, err := work.NewWorkItem(1, work.Designation{Kind: work.KindBuild, Target: 9, SlotCapacity: 2})
	require.NoError(t, err)

	// Act
	require.NoError(t, item.Claim(100))
	require.NoError(t, item.Claim(100))
	err = item.Claim(100)

	// Assert
	var full *work.ErrSlotCapacityExceeded
	require.ErrorAs(t, err, &full)
	assert.Equal(t, 2, item.Claims())
	assert.Equal(t, 0, item.OpenSlots())
}

func TestWorkItem_ClaimByOtherSupervisorRejected(t *testing.T) {
	item, err := work.NewWorkItem(1, work.Designation{Kind: work.KindBuild, Target: 9, SlotCapacity: 2})
	require.NoError(t, err)
	require.NoError(t, item.Claim(100))

	err = item.Claim(200)

	var owned *work.ErrOwnedByOtherSupervisor
	assert.ErrorAs(t, err, &owned)
	assert.Equal(t, 1, item.Claims())
}

func TestWorkItem_UnclaimReleasesOwnership(t *testing.T) {
	item, err := work.NewWorkItem(1, work.Designation{Kind: work.KindGather, Target: 9})
	require.NoError(t, err)
	require.NoError(t, item.Claim(100))

	item.Unclaim()
	item.Unclaim()

	assert.Equal(t, 0, item.Claims())
	assert.True(t, item.Owner().IsNone())
}

func TestWorkItem_FixedOwnerSurvivesUnclaim(t *testing.T) {
	item, err := work.NewWorkItem(1, work.Designation{Kind: work.KindGather, Target: 9, Owner: 100})
	require.NoError(t, err)
	require.NoError(t, item.Claim(100))

	item.Unclaim()

	assert.True(t, item.IsOwnedBy(100))
	assert.False(t, item.IsClaimableBy(200))
}

func TestNewWorkItem_Validation(t *testing.T) {
	_, unknownErr := work.NewWorkItem(1, work.Designation{Kind: "DANCE", Target: 9})
	_, targetErr := work.NewWorkItem(1, work.Designation{Kind: work.KindHaul})

	var unknown *work.ErrUnknownKind
	assert.ErrorAs(t, unknownErr, &unknown)
	var invalid *work.ErrInvalidDesignation
	assert.ErrorAs(t, targetErr, &invalid)
}

func TestNewWorkItem_RequestBackedStartsClosed(t *testing.T) {
	item, err := work.NewWorkItem(1, work.Designation{Kind: work.KindHaulToMixer, Target: 9})
	require.NoError(t, err)

	assert.Equal(t, 0, item.SlotCapacity())
}

func TestBoard_DesignateDeduplicates(t *testing.T) {
	// Arrange
	b := newBoard()
	d := work.Designation{Kind: work.KindHaul, Target: 42, Cell: shared.Cell{X: 3, Y: 4}}

	// Act
	first, created, err := b.Designate(d)
	require.NoError(t, err)
	second, createdAgain, err := b.Designate(d)
	require.NoError(t, err)

	// Assert
	assert.True(t, created)
	assert.False(t, createdAgain)
	assert.Equal(t, first.ID(), second.ID())
	assert.Equal(t, 1, b.Len())
}

func TestBoard_SpatialQueriesAndRemoval(t *testing.T) {
	// Arrange
	b := newBoard()
	near, _, err := b.Designate(work.Designation{Kind: work.KindGather, Target: 1, Cell: shared.Cell{X: 1, Y: 1}})
	require.NoError(t, err)
	_, _, err = b.Designate(work.Designation{Kind: work.KindGather, Target: 2, Cell: shared.Cell{X: 30, Y: 30}})
	require.NoError(t, err)

	// Act
	inArea := b.InArea(shared.Rect{Max: shared.Cell{X: 5, Y: 5}})
	removed := b.RemoveTarget(1)

	// Assert
	require.Len(t, inArea, 1)
	assert.Equal(t, near.ID(), inArea[0].ID())
	require.Len(t, removed, 1)
	assert.Empty(t, b.Near(shared.Cell{X: 1, Y: 1}, 2))
	_, found := b.Get(near.ID())
	assert.False(t, found)
}
