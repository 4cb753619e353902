package scenario_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/hauler-go/internal/adapters/scenario"
	"github.com/andrescamacho/hauler-go/internal/application/common"
	"github.com/andrescamacho/hauler-go/internal/application/scheduling"
	"github.com/andrescamacho/hauler-go/internal/domain/shared"
	"github.com/andrescamacho/hauler-go/internal/domain/task"
	"github.com/andrescamacho/hauler-go/internal/domain/work"
)

func TestLoad_BuildsColony(t *testing.T) {
	// Arrange
	sc, err := scenario.Load("testdata/quarry.yaml")
	require.NoError(t, err)

	// Act
	colony, err := scenario.Build(sc)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "quarry", colony.Name)
	assert.Equal(t, 400, colony.Ticks)
	assert.Equal(t, 16, colony.Grid.Width())
	assert.Len(t, colony.World.Supervisors(), 1)
	assert.Len(t, colony.World.Workers(), 2)
	// 3 loose rocks, 1 wood, 1 stored rock
	assert.Len(t, colony.World.Items(), 5)

	bo, ok := colony.Lookup("bo")
	require.True(t, ok)
	worker, ok := colony.World.Worker(bo)
	require.True(t, ok)
	assert.Equal(t, 0.5, worker.Speed)
	assert.Equal(t, shared.Cell{X: 2, Y: 2}, worker.Cell())

	pileID, ok := colony.Lookup("rock-pile")
	require.True(t, ok)
	pile, ok := colony.World.Stockpile(pileID)
	require.True(t, ok)
	assert.Equal(t, 1, pile.Stored)
	assert.True(t, pile.Fixed)

	hutID, _ := colony.Lookup("hut")
	hut, ok := colony.World.Blueprint(hutID)
	require.True(t, ok)
	assert.Equal(t, 2, hut.Needed(shared.ResourceWood))
}

func TestApply_PlacesDesignations(t *testing.T) {
	// Arrange
	sc, err := scenario.Load("testdata/quarry.yaml")
	require.NoError(t, err)
	colony, err := scenario.Build(sc)
	require.NoError(t, err)
	sched, err := colony.NewScheduler(scheduling.Deps{Tuning: scheduling.DefaultTuning()})
	require.NoError(t, err)

	// Act
	err = colony.Apply(context.Background(), sched)

	// Assert
	require.NoError(t, err)
	oak, _ := colony.Lookup("oak")
	rock, _ := colony.Lookup("first-rock")
	kinds := map[work.Kind]shared.EntityID{}
	for _, item := range colony.Board.All() {
		kinds[item.Kind()] = item.Target()
	}
	assert.Equal(t, oak, kinds[work.KindGather])
	assert.Equal(t, rock, kinds[work.KindHaul])
}

func TestColony_RunsToCompletion(t *testing.T) {
	// Arrange
	sc, err := scenario.Load("testdata/quarry.yaml")
	require.NoError(t, err)
	colony, err := scenario.Build(sc)
	require.NoError(t, err)
	sink := &common.SignalRecorder{}
	sched, err := colony.NewScheduler(scheduling.Deps{Tuning: scheduling.DefaultTuning(), Sink: sink})
	require.NoError(t, err)
	require.NoError(t, colony.Apply(context.Background(), sched))

	// Act
	for i := 0; i < colony.Ticks; i++ {
		sched.Tick(context.Background())
	}

	// Assert
	kinds := map[work.Kind]bool{}
	for _, s := range sink.OfType(task.SignalCompleted) {
		kinds[s.Kind] = true
	}
	assert.True(t, kinds[work.KindGather], "gather never completed")
	assert.True(t, kinds[work.KindHaul], "haul never completed")
}

func TestParse_RejectsInvalidScenarios(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing supervisors",
			yaml:    "name: x\nmap: [\"...\"]\n",
			wantErr: "Supervisors",
		},
		{
			name:    "unknown resource",
			yaml:    "name: x\nmap: [\"...\"]\nsupervisors: [{name: s, cell: [0, 0]}]\nitems: [{resource: GOLD, cell: [1, 0]}]\n",
			wantErr: "resource",
		},
		{
			name:    "unknown key",
			yaml:    "name: x\nmap: [\"...\"]\nsupervisors: [{name: s, cell: [0, 0]}]\nworkers: []\n",
			wantErr: "not found",
		},
		{
			name:    "ragged map",
			yaml:    "name: x\nmap: [\"...\", \"..\"]\nsupervisors: [{name: s, cell: [0, 0]}]\n",
			wantErr: "width",
		},
		{
			name:    "duplicate name",
			yaml:    "name: x\nmap: [\"...\"]\nsupervisors: [{name: s, cell: [0, 0]}]\nnodes: [{name: s, kind: TREE, cell: [2, 0], remaining: 1}]\n",
			wantErr: "used by both",
		},
		{
			name:    "bad cell arity",
			yaml:    "name: x\nmap: [\"...\"]\nsupervisors: [{name: s, cell: [0, 0, 0]}]\n",
			wantErr: "two coordinates",
		},
		{
			name:    "unknown work kind",
			yaml:    "name: x\nmap: [\"...\"]\nsupervisors: [{name: s, cell: [0, 0]}]\ndesignations: [{kind: DIG, target: s}]\n",
			wantErr: "work_kind",
		},
		{
			name:    "overfull stockpile",
			yaml:    "name: x\nmap: [\"...\"]\nsupervisors: [{name: s, cell: [0, 0]}]\nstockpiles: [{cell: [1, 0], capacity: 1, accepts: ROCK, stored: 2}]\n",
			wantErr: "ltefield",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			_, err := scenario.Parse([]byte(tt.yaml))

			// Assert
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBuild_RejectsPlacementErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "worker in wall",
			yaml:    "name: x\nmap: [\".#.\"]\nsupervisors: [{name: s, cell: [0, 0], workers: [{cell: [1, 0]}]}]\n",
			wantErr: "not on walkable ground",
		},
		{
			name:    "off the map",
			yaml:    "name: x\nmap: [\"...\"]\nsupervisors: [{name: s, cell: [0, 0]}]\nitems: [{resource: ROCK, cell: [9, 9]}]\n",
			wantErr: "off the map",
		},
		{
			name:    "bucket without tank",
			yaml:    "name: x\nmap: [\"...\"]\nsupervisors: [{name: s, cell: [0, 0]}]\nbuckets: [{home: s, cell: [1, 0], capacity: 2}]\n",
			wantErr: "not a tank",
		},
		{
			name:    "owner not a supervisor",
			yaml:    "name: x\nmap: [\"...\"]\nsupervisors: [{name: s, cell: [0, 0], workers: [{name: w, cell: [1, 0]}]}]\nstockpiles: [{cell: [2, 0], capacity: 1, owner: w}]\n",
			wantErr: "not a supervisor",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			sc, err := scenario.Parse([]byte(tt.yaml))
			require.NoError(t, err)

			// Act
			_, err = scenario.Build(sc)

			// Assert
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEmpty_BuildsOpenColony(t *testing.T) {
	// Act
	colony, err := scenario.Empty(8, 4)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "empty", colony.Name)
	assert.Equal(t, 8, colony.Grid.Width())
	assert.Equal(t, 4, colony.Grid.Height())
	assert.Empty(t, colony.World.Workers())
	assert.Equal(t, 0, colony.Board.Len())

	_, err = scenario.Empty(0, 4)
	assert.Error(t, err)
}
