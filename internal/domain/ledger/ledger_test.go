package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/hauler-go/internal/domain/ledger"
	"github.com/andrescamacho/hauler-go/internal/domain/shared"
)

const (
	stockpileID shared.EntityID = 10
	mixerID     shared.EntityID = 20
	itemID      shared.EntityID = 30
)

func TestLedger_ReserveThenReleaseRestoresState(t *testing.T) {
	// Arrange
	l := ledger.New()
	l.ReserveDestination(stockpileID, shared.ResourceWood, 2)
	before := l.Entries()

	// Act
	l.ReserveDestination(stockpileID, shared.ResourceWood, 3)
	l.ReserveMixerDestination(mixerID, shared.ResourceSand, 1)
	l.ReserveSource(itemID)
	l.ReleaseSource(itemID)
	l.ReleaseMixerDestination(mixerID, shared.ResourceSand, 1)
	l.ReleaseDestination(stockpileID, shared.ResourceWood, 3)

	// Assert
	assert.Equal(t, before, l.Entries())
	assert.Equal(t, 0, l.ClampCount())
}

func TestLedger_ReleaseNeverGoesNegative(t *testing.T) {
	// Arrange
	l := ledger.New()
	l.ReserveDestination(stockpileID, shared.ResourceRock, 1)

	// Act
	ok := l.ReleaseDestination(stockpileID, shared.ResourceRock, 5)
	sourceOK := l.ReleaseSource(itemID)

	// Assert
	assert.False(t, ok)
	assert.False(t, sourceOK)
	assert.Equal(t, 0, l.Destination(stockpileID, shared.ResourceRock))
	assert.Equal(t, 0, l.Source(itemID))
	assert.Equal(t, 2, l.ClampCount())
	assert.Empty(t, l.Entries())
}

func TestLedger_CountersStayNonNegativeUnderArbitraryOps(t *testing.T) {
	// Arrange
	l := ledger.New()
	ops := ledger.AllReservationOps()

	// Act
	for i := 0; i < 500; i++ {
		op := ops[(i*7+i/3)%len(ops)]
		object := shared.EntityID(1 + i%4)
		err := l.Apply(ledger.ReservationRequest{Op: op, Object: object, Resource: shared.ResourceSand, Amount: 1 + i%3})
		require.NoError(t, err)

		// Assert
		for _, e := range l.Entries() {
			require.Positive(t, e.Count, "entry %+v after op %s", e, op)
		}
	}
}

func TestLedger_ApplyRejectsMalformedRequests(t *testing.T) {
	// Arrange
	l := ledger.New()

	// Act
	unknownErr := l.Apply(ledger.ReservationRequest{Op: "STEAL", Object: itemID})
	missingErr := l.Apply(ledger.ReservationRequest{Op: ledger.OpReserveSource})

	// Assert
	var unknown *ledger.ErrUnknownReservationOp
	require.ErrorAs(t, unknownErr, &unknown)
	assert.Equal(t, ledger.ReservationOp("STEAL"), unknown.Op)

	var missing *ledger.ErrMissingObject
	require.ErrorAs(t, missingErr, &missing)
	assert.Empty(t, l.Entries())
}

func TestLedger_SettleRetiresReserve(t *testing.T) {
	// Arrange
	l := ledger.New()
	reserves := []ledger.ReservationRequest{
		ledger.ReserveDestination(stockpileID, shared.ResourceWood, 1),
		ledger.ReserveMixerDestination(mixerID, shared.ResourceWater, 4),
		ledger.ReserveSource(itemID),
	}
	require.NoError(t, l.ApplyAll(reserves))

	// Act
	for _, r := range reserves {
		settle, ok := r.Settle()
		require.True(t, ok)
		require.NoError(t, l.Apply(settle))
	}

	// Assert
	assert.Empty(t, l.Entries())
	assert.Equal(t, 0, l.ClampCount())
}

func TestReservationRequest_InverseOnlyForReserves(t *testing.T) {
	for _, op := range ledger.AllReservationOps() {
		t.Run(op.String(), func(t *testing.T) {
			inv, ok := ledger.ReservationRequest{Op: op, Object: itemID}.Inverse()

			assert.Equal(t, op.IsReserve(), ok)
			if ok {
				assert.False(t, inv.Op.IsReserve())
				assert.Equal(t, ledger.TableFor(op), ledger.TableFor(inv.Op))
			}
		})
	}
}

func TestLedger_ApplyRejectsNonPositiveAmounts(t *testing.T) {
	tests := []struct {
		name string
		req  ledger.ReservationRequest
	}{
		{"zero destination", ledger.ReserveDestination(stockpileID, shared.ResourceWood, 0)},
		{"negative destination", ledger.ReserveDestination(stockpileID, shared.ResourceWood, -3)},
		{"zero mixer", ledger.ReserveMixerDestination(mixerID, shared.ResourceSand, 0)},
		{"zero release", ledger.ReservationRequest{Op: ledger.OpReleaseDestination, Object: stockpileID, Resource: shared.ResourceWood}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			l := ledger.New()

			// Act
			err := l.Apply(tt.req)

			// Assert
			var invalid *ledger.ErrInvalidAmount
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.req.Op, invalid.Op)
			assert.Empty(t, l.Entries())
			assert.Zero(t, l.ClampCount())
		})
	}
}

func TestLedger_SourceClaimsNeedNoAmount(t *testing.T) {
	// Arrange
	l := ledger.New()

	// Act
	err := l.Apply(ledger.ReservationRequest{Op: ledger.OpReserveSource, Object: itemID})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, l.Source(itemID))
}

func TestLedger_ApplyAllRejectsBatchWhole(t *testing.T) {
	// Arrange
	l := ledger.New()
	batch := []ledger.ReservationRequest{
		ledger.ReserveSource(itemID),
		ledger.ReserveDestination(stockpileID, shared.ResourceWood, 0),
	}

	// Act
	err := l.ApplyAll(batch)

	// Assert
	var invalid *ledger.ErrInvalidAmount
	require.ErrorAs(t, err, &invalid)
	assert.Empty(t, l.Entries())
}
