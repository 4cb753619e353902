package transport

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/andrescamacho/hauler-go/internal/domain/shared"
)

// StaleReason explains why a lease can no longer be used
type StaleReason string

const (
	StaleWheelbarrowGone StaleReason = "WHEELBARROW_GONE"
	StaleBatchTooSmall   StaleReason = "BATCH_TOO_SMALL"
	StaleExpired         StaleReason = "EXPIRED"
)

// WheelbarrowLease pairs a wheelbarrow with a batch of source items for one
// trip to a destination. While unheld, another worker may pick it up.
type WheelbarrowLease struct {
	id          uuid.UUID
	wheelbarrow shared.EntityID
	items       []shared.EntityID
	destination shared.EntityID
	resource    shared.ResourceKind
	minBatch    int
	expiresAt   time.Time
	holder      shared.EntityID
}

// NewWheelbarrowLease creates a lease valid until now+ttl
func NewWheelbarrowLease(wheelbarrow shared.EntityID, items []shared.EntityID, destination shared.EntityID, resource shared.ResourceKind, minBatch int, now time.Time, ttl time.Duration) (*WheelbarrowLease, error) {
	if wheelbarrow.IsNone() || destination.IsNone() {
		return nil, shared.NewValidationError("lease", "wheelbarrow and destination are required")
	}
	if minBatch < 1 {
		minBatch = 1
	}
	if len(items) < minBatch {
		return nil, shared.NewValidationError("lease", fmt.Sprintf("batch of %d is below minimum %d", len(items), minBatch))
	}
	batch := make([]shared.EntityID, len(items))
	copy(batch, items)
	return &WheelbarrowLease{
		id:          uuid.New(),
		wheelbarrow: wheelbarrow,
		items:       batch,
		destination: destination,
		resource:    resource,
		minBatch:    minBatch,
		expiresAt:   now.Add(ttl),
	}, nil
}

// Getters

func (l *WheelbarrowLease) ID() uuid.UUID                 { return l.id }
func (l *WheelbarrowLease) Wheelbarrow() shared.EntityID  { return l.wheelbarrow }
func (l *WheelbarrowLease) Destination() shared.EntityID  { return l.destination }
func (l *WheelbarrowLease) Resource() shared.ResourceKind { return l.resource }
func (l *WheelbarrowLease) ExpiresAt() time.Time          { return l.expiresAt }
func (l *WheelbarrowLease) Holder() shared.EntityID       { return l.holder }

// Items returns a copy of the batch
func (l *WheelbarrowLease) Items() []shared.EntityID {
	out := make([]shared.EntityID, len(l.items))
	copy(out, l.items)
	return out
}

// IsHeld reports whether a worker is executing the lease
func (l *WheelbarrowLease) IsHeld() bool {
	return !l.holder.IsNone()
}

// Expired reports whether the lease's time ran out at now
func (l *WheelbarrowLease) Expired(now time.Time) bool {
	return !now.Before(l.expiresAt)
}

// Hold binds the lease to a worker
func (l *WheelbarrowLease) Hold(worker shared.EntityID) {
	l.holder = worker
}

// Unhold frees the lease for reuse after an interrupted trip
func (l *WheelbarrowLease) Unhold() {
	l.holder = shared.NoEntity
}

// Prune drops batch items that no longer exist
func (l *WheelbarrowLease) Prune(exists func(shared.EntityID) bool) {
	kept := l.items[:0]
	for _, id := range l.items {
		if exists(id) {
			kept = append(kept, id)
		}
	}
	l.items = kept
}

// StaleCheck reports whether the lease is stale at now. exists answers
// whether an entity is still in the world.
func (l *WheelbarrowLease) StaleCheck(now time.Time, exists func(shared.EntityID) bool) (StaleReason, bool) {
	if !exists(l.wheelbarrow) {
		return StaleWheelbarrowGone, true
	}
	live := 0
	for _, id := range l.items {
		if exists(id) {
			live++
		}
	}
	if live < l.minBatch {
		return StaleBatchTooSmall, true
	}
	if l.Expired(now) {
		return StaleExpired, true
	}
	return "", false
}

// LeaseRegistry stores live leases
type LeaseRegistry struct {
	leases map[uuid.UUID]*WheelbarrowLease
}

// NewLeaseRegistry creates an empty registry
func NewLeaseRegistry() *LeaseRegistry {
	return &LeaseRegistry{leases: make(map[uuid.UUID]*WheelbarrowLease)}
}

// Add stores a lease
func (r *LeaseRegistry) Add(l *WheelbarrowLease) {
	r.leases[l.id] = l
}

// Get returns a lease
func (r *LeaseRegistry) Get(id uuid.UUID) (*WheelbarrowLease, bool) {
	l, ok := r.leases[id]
	return l, ok
}

// Remove deletes a lease
func (r *LeaseRegistry) Remove(id uuid.UUID) {
	delete(r.leases, id)
}

// All lists leases ordered by expiry then wheelbarrow
func (r *LeaseRegistry) All() []*WheelbarrowLease {
	out := make([]*WheelbarrowLease, 0, len(r.leases))
	for _, l := range r.leases {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].expiresAt.Equal(out[j].expiresAt) {
			return out[i].expiresAt.Before(out[j].expiresAt)
		}
		return out[i].wheelbarrow < out[j].wheelbarrow
	})
	return out
}

// Unheld lists leases for destination that nobody is executing
func (r *LeaseRegistry) Unheld(destination shared.EntityID) []*WheelbarrowLease {
	var out []*WheelbarrowLease
	for _, l := range r.All() {
		if l.destination == destination && !l.IsHeld() {
			out = append(out, l)
		}
	}
	return out
}

// ForWheelbarrow returns the lease that pairs wheelbarrow, if any
func (r *LeaseRegistry) ForWheelbarrow(wheelbarrow shared.EntityID) (*WheelbarrowLease, bool) {
	for _, l := range r.All() {
		if l.wheelbarrow == wheelbarrow {
			return l, true
		}
	}
	return nil, false
}

// Covers reports whether any lease batches item
func (r *LeaseRegistry) Covers(item shared.EntityID) bool {
	for _, l := range r.leases {
		for _, id := range l.items {
			if id == item {
				return true
			}
		}
	}
	return false
}

// Len returns the number of live leases
func (r *LeaseRegistry) Len() int {
	return len(r.leases)
}

// StaleLease is a lease CleanStale removed and why
type StaleLease struct {
	Lease  *WheelbarrowLease
	Reason StaleReason
}

// CleanStale removes stale leases, ordered as All. A held lease's batch
// shrinks as items are loaded, so it is only retired once expired; the
// caller must abort the holder's trip.
func (r *LeaseRegistry) CleanStale(now time.Time, exists func(shared.EntityID) bool) []StaleLease {
	var cleaned []StaleLease
	for _, l := range r.All() {
		reason, stale := l.StaleCheck(now, exists)
		if l.IsHeld() {
			reason, stale = StaleExpired, l.Expired(now)
		}
		if stale {
			delete(r.leases, l.id)
			cleaned = append(cleaned, StaleLease{Lease: l, Reason: reason})
		}
	}
	return cleaned
}
