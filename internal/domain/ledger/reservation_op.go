package ledger

import (
	"fmt"

	"github.com/andrescamacho/hauler-go/internal/domain/shared"
)

// ReservationOp names a single ledger mutation
type ReservationOp string

const (
	// OpReserveDestination books incoming capacity on a stockpile, tank or construction target
	OpReserveDestination ReservationOp = "RESERVE_DESTINATION"

	// OpReleaseDestination returns a destination booking that will not be delivered
	OpReleaseDestination ReservationOp = "RELEASE_DESTINATION"

	// OpReserveMixerDestination books incoming capacity for one resource of a mixer
	OpReserveMixerDestination ReservationOp = "RESERVE_MIXER_DESTINATION"

	// OpReleaseMixerDestination returns a mixer booking
	OpReleaseMixerDestination ReservationOp = "RELEASE_MIXER_DESTINATION"

	// OpReserveSource claims an object as the origin of a pick-up
	OpReserveSource ReservationOp = "RESERVE_SOURCE"

	// OpReleaseSource drops a source claim without picking anything up
	OpReleaseSource ReservationOp = "RELEASE_SOURCE"

	// OpRecordStoredDestination converts in-flight destination capacity into stored content
	OpRecordStoredDestination ReservationOp = "RECORD_STORED_DESTINATION"

	// OpRecordPickedSource consumes a source claim because the pick-up happened
	OpRecordPickedSource ReservationOp = "RECORD_PICKED_SOURCE"
)

// AllReservationOps returns every operation in declaration order
func AllReservationOps() []ReservationOp {
	return []ReservationOp{
		OpReserveDestination,
		OpReleaseDestination,
		OpReserveMixerDestination,
		OpReleaseMixerDestination,
		OpReserveSource,
		OpReleaseSource,
		OpRecordStoredDestination,
		OpRecordPickedSource,
	}
}

func (o ReservationOp) String() string {
	return string(o)
}

// IsValid checks if the operation is known
func (o ReservationOp) IsValid() bool {
	for _, op := range AllReservationOps() {
		if op == o {
			return true
		}
	}
	return false
}

// IsReserve is true for operations that create a booking someone must later release
func (o ReservationOp) IsReserve() bool {
	return o == OpReserveDestination || o == OpReserveMixerDestination || o == OpReserveSource
}

// ReservationRequest is the message form of a ledger mutation. Destination
// and mixer requests must carry a positive Amount; source claims always count one.
type ReservationRequest struct {
	Op       ReservationOp
	Object   shared.EntityID
	Resource shared.ResourceKind
	Amount   int
}

// ReserveDestination builds a destination booking
func ReserveDestination(object shared.EntityID, resource shared.ResourceKind, amount int) ReservationRequest {
	return ReservationRequest{Op: OpReserveDestination, Object: object, Resource: resource, Amount: amount}
}

// ReserveMixerDestination builds a mixer booking
func ReserveMixerDestination(mixer shared.EntityID, resource shared.ResourceKind, amount int) ReservationRequest {
	return ReservationRequest{Op: OpReserveMixerDestination, Object: mixer, Resource: resource, Amount: amount}
}

// ReserveSource builds a source claim
func ReserveSource(object shared.EntityID) ReservationRequest {
	return ReservationRequest{Op: OpReserveSource, Object: object, Amount: 1}
}

// Units returns the effective amount of the request
func (r ReservationRequest) Units() int {
	if TableFor(r.Op) == TableSource {
		return 1
	}
	return r.Amount
}

// Validate reports why a request is malformed, or nil
func (r ReservationRequest) Validate() error {
	if !r.Op.IsValid() {
		return &ErrUnknownReservationOp{Op: r.Op}
	}
	if r.Object.IsNone() {
		return &ErrMissingObject{Op: r.Op}
	}
	if TableFor(r.Op) != TableSource && r.Amount < 1 {
		return &ErrInvalidAmount{Op: r.Op, Amount: r.Amount}
	}
	return nil
}

// Inverse returns the release matching a reserve. Non-reserve requests have no inverse.
func (r ReservationRequest) Inverse() (ReservationRequest, bool) {
	inv := r
	switch r.Op {
	case OpReserveDestination:
		inv.Op = OpReleaseDestination
	case OpReserveMixerDestination:
		inv.Op = OpReleaseMixerDestination
	case OpReserveSource:
		inv.Op = OpReleaseSource
	default:
		return ReservationRequest{}, false
	}
	return inv, true
}

// Settle returns the bookkeeping request that retires a reserve once it has
// been fulfilled: a delivered destination or a picked source.
func (r ReservationRequest) Settle() (ReservationRequest, bool) {
	s := r
	switch r.Op {
	case OpReserveDestination:
		s.Op = OpRecordStoredDestination
	case OpReserveMixerDestination:
		// mixer contents live on the mixer; the booking is simply released
		s.Op = OpReleaseMixerDestination
	case OpReserveSource:
		s.Op = OpRecordPickedSource
	default:
		return ReservationRequest{}, false
	}
	return s, true
}

// delta returns the signed change this request makes to its counter
func (r ReservationRequest) delta() int {
	if r.Op.IsReserve() {
		return r.Units()
	}
	return -r.Units()
}

func (r ReservationRequest) String() string {
	if r.Resource == shared.ResourceNone {
		return fmt.Sprintf("%s(%s)", r.Op, r.Object)
	}
	return fmt.Sprintf("%s(%s,%s,%d)", r.Op, r.Object, r.Resource, r.Units())
}
