package world_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	spatialindex "github.com/andrescamacho/hauler-go/internal/adapters/spatial"
	"github.com/andrescamacho/hauler-go/internal/domain/shared"
	"github.com/andrescamacho/hauler-go/internal/domain/world"
)

func newWorld() *world.World {
	return world.New(shared.NewIDAllocator(), spatialindex.NewBucketIndex(0))
}

func TestWorld_PickUpAndDropLoad(t *testing.T) {
	// Arrange
	w := newWorld()
	wk := w.AddWorker(&world.Worker{Pos: shared.Vec2{X: 2, Y: 2}})
	item := w.SpawnItem(shared.ResourceWood, shared.Cell{X: 2, Y: 2})

	// Act
	require.NoError(t, w.PickUp(wk.ID, item.ID))
	w.MoveWorker(wk.ID, shared.Vec2{X: 4, Y: 2})
	dropped := w.DropLoad(wk.ID)

	// Assert
	assert.False(t, w.Exists(item.ID))
	require.Len(t, dropped, 1)
	droppedItem, ok := w.Item(dropped[0])
	require.True(t, ok)
	assert.Equal(t, shared.Cell{X: 4, Y: 2}, droppedItem.Cell)
	assert.True(t, wk.Load.IsEmpty())
}

func TestWorld_PickUpRejectsFullHands(t *testing.T) {
	w := newWorld()
	wk := w.AddWorker(&world.Worker{})
	first := w.SpawnItem(shared.ResourceRock, shared.Cell{})
	second := w.SpawnItem(shared.ResourceRock, shared.Cell{})
	require.NoError(t, w.PickUp(wk.ID, first.ID))

	err := w.PickUp(wk.ID, second.ID)

	var full *world.ErrHandsFull
	assert.ErrorAs(t, err, &full)
	assert.True(t, w.Exists(second.ID))
}

func TestStockpile_LocksToFirstResource(t *testing.T) {
	// Arrange
	w := newWorld()
	sp := w.AddStockpile(&world.Stockpile{Cell: shared.Cell{X: 1, Y: 1}, Capacity: 2})

	// Act
	_, err := w.StoreInStockpile(sp.ID, shared.ResourceWood)
	require.NoError(t, err)
	_, rockErr := w.StoreInStockpile(sp.ID, shared.ResourceRock)

	// Assert
	var rejected *world.ErrRejectedResource
	assert.ErrorAs(t, rockErr, &rejected)
	assert.Equal(t, shared.ResourceWood, sp.Accepts)
	assert.Equal(t, 1, sp.Remaining())
}

func TestStockpile_UnlocksWhenEmptied(t *testing.T) {
	w := newWorld()
	sp := w.AddStockpile(&world.Stockpile{Capacity: 1})
	item, err := w.StoreInStockpile(sp.ID, shared.ResourceSand)
	require.NoError(t, err)

	w.Despawn(item.ID)

	assert.Equal(t, 0, sp.Stored)
	assert.Equal(t, shared.ResourceNone, sp.Accepts)
}

func TestMixer_RecipeConsumption(t *testing.T) {
	// Arrange
	m := &world.Mixer{
		Capacity: map[shared.ResourceKind]int{shared.ResourceSand: 2, shared.ResourceRock: 2, shared.ResourceWater: 4},
		Stored:   map[shared.ResourceKind]int{},
	}
	require.NoError(t, m.Add(shared.ResourceSand, 1))
	require.NoError(t, m.Add(shared.ResourceRock, 1))
	assert.False(t, m.HasRecipe())

	// Act
	require.NoError(t, m.Add(shared.ResourceWater, 1))
	consumed := m.ConsumeRecipe()

	// Assert
	assert.True(t, consumed)
	assert.Equal(t, 0, m.Stored[shared.ResourceSand])
	assert.Error(t, m.Add(shared.ResourceWater, 5))
	assert.Error(t, m.Add(shared.ResourceBone, 1))
}

func TestConstructionSite_FloorPhasesMoveForwardOnly(t *testing.T) {
	// Arrange
	w := newWorld()
	site := w.AddSite(&world.ConstructionSite{
		Kind:  world.SiteKindFloor,
		Tiles: []world.SiteTile{{Cell: shared.Cell{X: 0, Y: 0}}, {Cell: shared.Cell{X: 1, Y: 0}}},
	})
	require.Equal(t, world.SitePhaseReinforcing, site.Phase)
	require.NoError(t, site.Deliver(shared.ResourceBone, 2))

	// Act
	require.NoError(t, site.FinishTile(shared.Cell{X: 0, Y: 0}))
	require.NoError(t, site.FinishTile(shared.Cell{X: 1, Y: 0}))
	skipErr := site.AdvanceTo(world.SitePhaseComplete)
	advanceErr := site.AdvanceTo(world.SitePhasePouring)

	// Assert
	var transition *world.ErrInvalidSitePhaseTransition
	assert.ErrorAs(t, skipErr, &transition)
	require.NoError(t, advanceErr)
	assert.Equal(t, shared.ResourceMud, site.Material())
	assert.Equal(t, 2, site.Needed(shared.ResourceMud))
	assert.Len(t, site.PendingTiles(), 2)
	assert.Error(t, site.AdvanceTo(world.SitePhaseReinforcing))
}

func TestWorld_HarvestDespawnsExhaustedNode(t *testing.T) {
	// Arrange
	w := newWorld()
	tree := w.AddNode(&world.ResourceNode{Kind: world.NodeTree, Cell: shared.Cell{X: 3, Y: 3}, Remaining: 1, Yield: 3})

	// Act
	items, err := w.Harvest(tree.ID)

	// Assert
	require.NoError(t, err)
	assert.Len(t, items, 3)
	assert.False(t, w.Exists(tree.ID))
	assert.Len(t, w.ItemsNear(shared.Cell{X: 3, Y: 3}, 0), 3)
}

func TestWorld_WheelbarrowSpillsOnDrop(t *testing.T) {
	// Arrange
	w := newWorld()
	wk := w.AddWorker(&world.Worker{Pos: shared.Vec2{X: 5, Y: 5}})
	wb := w.AddWheelbarrow(&world.Wheelbarrow{Cell: shared.Cell{X: 5, Y: 5}, Capacity: 3})
	a := w.SpawnItem(shared.ResourceWood, shared.Cell{X: 5, Y: 5})
	b := w.SpawnItem(shared.ResourceWood, shared.Cell{X: 5, Y: 5})
	require.NoError(t, w.TakeWheelbarrow(wk.ID, wb.ID))
	require.NoError(t, w.LoadWheelbarrow(wb.ID, a.ID))
	require.NoError(t, w.LoadWheelbarrow(wb.ID, b.ID))

	// Act
	spilled := w.DropLoad(wk.ID)

	// Assert
	assert.Len(t, spilled, 2)
	assert.True(t, wb.IsIdle())
	assert.Empty(t, wb.Load)
}
