package transport

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/andrescamacho/hauler-go/internal/domain/shared"
	"github.com/andrescamacho/hauler-go/internal/domain/work"
)

// Key identifies a request. Demand-driven requests leave PinnedSource unset;
// a manual single-shot request names the exact source to move.
type Key struct {
	Anchor       shared.EntityID
	Kind         work.Kind
	Resource     shared.ResourceKind
	PinnedSource shared.EntityID
}

func (k Key) String() string {
	if k.PinnedSource.IsNone() {
		return fmt.Sprintf("%s->%s[%s]", k.Kind, k.Anchor, k.Resource)
	}
	return fmt.Sprintf("%s:%s->%s[%s]", k.Kind, k.PinnedSource, k.Anchor, k.Resource)
}

// Demand is how many worker slots an anchor wants and how many are already en route
type Demand struct {
	Desired  int
	Inflight int
}

// Open returns slots still to hand out, never negative
func (d Demand) Open() int {
	if d.Inflight >= d.Desired {
		return 0
	}
	return d.Desired - d.Inflight
}

// CloseReason records why a request ended
type CloseReason string

const (
	CloseAnchorGone           CloseReason = "ANCHOR_GONE"
	CloseIssuerGone           CloseReason = "ISSUER_GONE"
	CloseFulfilled            CloseReason = "FULFILLED"
	ClosePinnedSourceConsumed CloseReason = "PINNED_SOURCE_CONSUMED"
	CloseCancelled            CloseReason = "CANCELLED"
)

// TransportRequest is an anchor's standing demand for deliveries
type TransportRequest struct {
	id        uuid.UUID
	key       Key
	issuer    shared.EntityID
	priority  int
	demand    Demand
	workItem  shared.EntityID
	adopted   bool
	createdAt time.Time
	closed    CloseReason
}

// NewTransportRequest creates an open request
func NewTransportRequest(key Key, issuer shared.EntityID, priority int, now time.Time) (*TransportRequest, error) {
	if key.Anchor.IsNone() {
		return nil, shared.NewValidationError("anchor", "transport request needs an anchor")
	}
	if !key.Kind.IsRequestBacked() {
		return nil, shared.NewValidationError("kind", fmt.Sprintf("%s is not a transport kind", key.Kind))
	}
	return &TransportRequest{
		id:        uuid.New(),
		key:       key,
		issuer:    issuer,
		priority:  priority,
		createdAt: now,
	}, nil
}

// Getters

func (r *TransportRequest) ID() uuid.UUID                 { return r.id }
func (r *TransportRequest) Key() Key                      { return r.key }
func (r *TransportRequest) Anchor() shared.EntityID       { return r.key.Anchor }
func (r *TransportRequest) Kind() work.Kind               { return r.key.Kind }
func (r *TransportRequest) Resource() shared.ResourceKind { return r.key.Resource }
func (r *TransportRequest) PinnedSource() shared.EntityID { return r.key.PinnedSource }
func (r *TransportRequest) Issuer() shared.EntityID       { return r.issuer }
func (r *TransportRequest) Priority() int                 { return r.priority }
func (r *TransportRequest) Demand() Demand                { return r.demand }
func (r *TransportRequest) WorkItem() shared.EntityID     { return r.workItem }
func (r *TransportRequest) CreatedAt() time.Time          { return r.createdAt }
func (r *TransportRequest) CloseReason() CloseReason      { return r.closed }

// IsSingleShot reports whether the request moves one named source
func (r *TransportRequest) IsSingleShot() bool {
	return !r.key.PinnedSource.IsNone()
}

// IsClosed reports whether the request has ended
func (r *TransportRequest) IsClosed() bool {
	return r.closed != ""
}

// SetDemand replaces the recomputed demand. Negative values clip to zero.
func (r *TransportRequest) SetDemand(desired, inflight int) {
	if desired < 0 {
		desired = 0
	}
	if inflight < 0 {
		inflight = 0
	}
	r.demand = Demand{Desired: desired, Inflight: inflight}
}

// SetIssuer re-homes the request, e.g. when the anchor changes owner
func (r *TransportRequest) SetIssuer(issuer shared.EntityID) {
	r.issuer = issuer
}

// SetPriority updates the base priority
func (r *TransportRequest) SetPriority(p int) {
	r.priority = p
}

// Attach links a work item created for this request. Closing the request deletes it.
func (r *TransportRequest) Attach(workItem shared.EntityID) {
	r.workItem = workItem
	r.adopted = false
}

// Adopt links a work item that existed before the request. Closing the
// request only strips it.
func (r *TransportRequest) Adopt(workItem shared.EntityID) {
	r.workItem = workItem
	r.adopted = true
}

// OwnsWorkItem reports whether the linked work item was created for this request
func (r *TransportRequest) OwnsWorkItem() bool {
	return !r.workItem.IsNone() && !r.adopted
}

// Close ends the request. Closing twice keeps the first reason.
func (r *TransportRequest) Close(reason CloseReason) {
	if r.closed == "" {
		r.closed = reason
	}
}

// Liveness is the world state a closing decision depends on
type Liveness struct {
	AnchorExists       bool
	IssuerExists       bool
	PinnedSourceExists bool
}

// ShouldClose applies the closing rules in priority order
func (r *TransportRequest) ShouldClose(l Liveness) (CloseReason, bool) {
	switch {
	case !l.AnchorExists:
		return CloseAnchorGone, true
	case !l.IssuerExists:
		return CloseIssuerGone, true
	case r.IsSingleShot() && !l.PinnedSourceExists && r.demand.Inflight == 0:
		return ClosePinnedSourceConsumed, true
	case r.demand.Desired == 0 && r.demand.Inflight == 0:
		return CloseFulfilled, true
	default:
		return "", false
	}
}
