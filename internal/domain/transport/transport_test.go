package transport_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/hauler-go/internal/domain/shared"
	"github.com/andrescamacho/hauler-go/internal/domain/transport"
	"github.com/andrescamacho/hauler-go/internal/domain/work"
)

var epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func TestRegistry_UpsertIsKeyed(t *testing.T) {
	// Arrange
	reg := transport.NewRegistry()
	key := transport.Key{Anchor: 5, Kind: work.KindHaulToMixer, Resource: shared.ResourceSand}

	// Act
	first, created, err := reg.Upsert(key, 1, 10, epoch)
	require.NoError(t, err)
	second, createdAgain, err := reg.Upsert(key, 2, 20, epoch.Add(time.Second))
	require.NoError(t, err)

	// Assert
	assert.True(t, created)
	assert.False(t, createdAgain)
	assert.Equal(t, first.ID(), second.ID())
	assert.Equal(t, shared.EntityID(2), second.Issuer())
	assert.Equal(t, 20, second.Priority())
	assert.Equal(t, 1, reg.Len())
}

func TestNewTransportRequest_RejectsDirectKinds(t *testing.T) {
	_, err := transport.NewTransportRequest(transport.Key{Anchor: 1, Kind: work.KindGather}, 1, 0, epoch)

	var validation *shared.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestShouldClose_Rules(t *testing.T) {
	alive := transport.Liveness{AnchorExists: true, IssuerExists: true, PinnedSourceExists: true}

	tests := []struct {
		name     string
		pinned   shared.EntityID
		desired  int
		inflight int
		liveness transport.Liveness
		want     transport.CloseReason
		closes   bool
	}{
		{name: "open demand stays", desired: 2, liveness: alive},
		{name: "anchor gone", desired: 2, inflight: 1, liveness: transport.Liveness{IssuerExists: true}, want: transport.CloseAnchorGone, closes: true},
		{name: "issuer gone", desired: 2, liveness: transport.Liveness{AnchorExists: true}, want: transport.CloseIssuerGone, closes: true},
		{name: "fulfilled", liveness: alive, want: transport.CloseFulfilled, closes: true},
		{name: "zero desired but in flight stays", inflight: 1, liveness: alive},
		{name: "pinned source consumed", pinned: 9, desired: 1, liveness: transport.Liveness{AnchorExists: true, IssuerExists: true}, want: transport.ClosePinnedSourceConsumed, closes: true},
		{name: "pinned source carried stays", pinned: 9, desired: 1, inflight: 1, liveness: transport.Liveness{AnchorExists: true, IssuerExists: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := transport.NewTransportRequest(transport.Key{Anchor: 1, Kind: work.KindHaulToBlueprint, Resource: shared.ResourceWood, PinnedSource: tt.pinned}, 2, 0, epoch)
			require.NoError(t, err)
			req.SetDemand(tt.desired, tt.inflight)

			reason, closes := req.ShouldClose(tt.liveness)

			assert.Equal(t, tt.closes, closes)
			assert.Equal(t, tt.want, reason)
		})
	}
}

func TestDemand_OpenNeverNegative(t *testing.T) {
	assert.Equal(t, 0, transport.Demand{Desired: 1, Inflight: 3}.Open())
	assert.Equal(t, 2, transport.Demand{Desired: 3, Inflight: 1}.Open())
}

func TestLease_StaleReasons(t *testing.T) {
	// Arrange
	live := map[shared.EntityID]bool{1: true, 10: true, 11: true}
	exists := func(id shared.EntityID) bool { return live[id] }
	lease, err := transport.NewWheelbarrowLease(1, []shared.EntityID{10, 11}, 50, shared.ResourceWood, 2, epoch, time.Minute)
	require.NoError(t, err)

	// Act / Assert
	_, stale := lease.StaleCheck(epoch, exists)
	assert.False(t, stale)

	reason, stale := lease.StaleCheck(epoch.Add(time.Minute), exists)
	assert.True(t, stale)
	assert.Equal(t, transport.StaleExpired, reason)

	delete(live, 11)
	reason, _ = lease.StaleCheck(epoch, exists)
	assert.Equal(t, transport.StaleBatchTooSmall, reason)

	delete(live, 1)
	reason, _ = lease.StaleCheck(epoch, exists)
	assert.Equal(t, transport.StaleWheelbarrowGone, reason)
}

func TestLeaseRegistry_CleanStaleKeepsHeldUntilExpiry(t *testing.T) {
	// Arrange
	reg := transport.NewLeaseRegistry()
	gone := func(shared.EntityID) bool { return false }
	held, err := transport.NewWheelbarrowLease(1, []shared.EntityID{10}, 50, shared.ResourceRock, 1, epoch, time.Minute)
	require.NoError(t, err)
	held.Hold(7)
	free, err := transport.NewWheelbarrowLease(2, []shared.EntityID{11}, 50, shared.ResourceRock, 1, epoch, time.Minute)
	require.NoError(t, err)
	reg.Add(held)
	reg.Add(free)

	// Act
	cleaned := reg.CleanStale(epoch, gone)

	// Assert
	require.Len(t, cleaned, 1)
	assert.Same(t, free, cleaned[0].Lease)
	assert.Equal(t, transport.StaleWheelbarrowGone, cleaned[0].Reason)
	_, stillThere := reg.Get(held.ID())
	assert.True(t, stillThere)
	assert.True(t, reg.Covers(10))
	assert.False(t, reg.Covers(11))
}

func TestLeaseRegistry_CleanStaleDropsExpiredHeldLease(t *testing.T) {
	// Arrange
	reg := transport.NewLeaseRegistry()
	live := func(shared.EntityID) bool { return true }
	held, err := transport.NewWheelbarrowLease(1, []shared.EntityID{10}, 50, shared.ResourceRock, 1, epoch, time.Minute)
	require.NoError(t, err)
	held.Hold(7)
	reg.Add(held)

	// Act
	early := reg.CleanStale(epoch.Add(30*time.Second), live)
	late := reg.CleanStale(epoch.Add(time.Minute), live)

	// Assert
	assert.Empty(t, early)
	require.Len(t, late, 1)
	assert.Same(t, held, late[0].Lease)
	assert.Equal(t, transport.StaleExpired, late[0].Reason)
	assert.Zero(t, reg.Len())
}

func TestNewWheelbarrowLease_RejectsUndersizedBatch(t *testing.T) {
	_, err := transport.NewWheelbarrowLease(1, []shared.EntityID{10}, 50, shared.ResourceWood, 2, epoch, time.Minute)

	assert.Error(t, err)
}
