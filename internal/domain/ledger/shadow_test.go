package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andrescamacho/hauler-go/internal/domain/ledger"
	"github.com/andrescamacho/hauler-go/internal/domain/shared"
)

func TestView_CombinesLedgerAndShadow(t *testing.T) {
	// Arrange
	l := ledger.New()
	l.ReserveMixerDestination(mixerID, shared.ResourceSand, 2)
	s := ledger.NewShadow()

	// Act
	s.Apply(ledger.ReserveMixerDestination(mixerID, shared.ResourceSand, 3))
	s.Apply(ledger.ReserveSource(itemID))
	s.AddClaim(99)
	view := ledger.NewView(l, s)

	// Assert
	assert.Equal(t, 5, view.MixerDestination(mixerID, shared.ResourceSand))
	assert.Equal(t, 1, view.Source(itemID))
	assert.Equal(t, 1, view.CycleClaims(99))
	assert.Equal(t, 2, l.MixerDestination(mixerID, shared.ResourceSand), "ledger untouched")
	assert.Equal(t, 0, l.Source(itemID))
}

func TestView_ShadowReleaseNeverReadsNegative(t *testing.T) {
	// Arrange
	l := ledger.New()
	s := ledger.NewShadow()

	// Act
	s.Apply(ledger.ReservationRequest{Op: ledger.OpReleaseDestination, Object: stockpileID, Resource: shared.ResourceWood, Amount: 2})
	view := ledger.NewView(l, s)

	// Assert
	assert.Equal(t, 0, view.Destination(stockpileID, shared.ResourceWood))
}

func TestView_NilShadowReadsLedger(t *testing.T) {
	l := ledger.New()
	l.ReserveDestination(stockpileID, shared.ResourceWood, 1)
	l.ReserveDestination(stockpileID, shared.ResourceRock, 2)

	view := ledger.NewView(l, nil)

	assert.Equal(t, 3, view.DestinationTotal(stockpileID))
	assert.Equal(t, 0, view.CycleClaims(1))
}

func TestShadow_IsEmpty(t *testing.T) {
	s := ledger.NewShadow()
	assert.True(t, s.IsEmpty())

	s.Apply(ledger.ReserveSource(itemID))
	assert.False(t, s.IsEmpty())
}

func TestShadow_IgnoresMalformedRequests(t *testing.T) {
	// Arrange
	s := ledger.NewShadow()

	// Act
	s.Apply(ledger.ReserveDestination(stockpileID, shared.ResourceWood, 0))

	// Assert
	assert.True(t, s.IsEmpty())
}
