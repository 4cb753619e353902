package ledger

import (
	"sort"

	"github.com/andrescamacho/hauler-go/internal/domain/shared"
)

// Key addresses a per-resource reservation counter on one object
type Key struct {
	Object   shared.EntityID
	Resource shared.ResourceKind
}

// Table selects which family of counters a request touches
type Table string

const (
	TableDestination Table = "destination"
	TableMixer       Table = "mixer"
	TableSource      Table = "source"
)

// TableFor maps an operation to the counters it mutates
func TableFor(op ReservationOp) Table {
	switch op {
	case OpReserveMixerDestination, OpReleaseMixerDestination:
		return TableMixer
	case OpReserveSource, OpReleaseSource, OpRecordPickedSource:
		return TableSource
	default:
		return TableDestination
	}
}

// Ledger is the authoritative record of in-flight commitments.
//
// Invariants:
// - Every counter is non-negative; releases clamp at zero
// - Release is a left-inverse of Reserve for the same key and amount
// - Zero counters are removed so snapshots only list live bookings
type Ledger struct {
	destination map[Key]int
	mixer       map[Key]int
	source      map[shared.EntityID]int
	clamped     int
}

// New creates an empty ledger
func New() *Ledger {
	return &Ledger{
		destination: make(map[Key]int),
		mixer:       make(map[Key]int),
		source:      make(map[shared.EntityID]int),
	}
}

// Point queries

// Destination returns units booked to arrive at object
func (l *Ledger) Destination(object shared.EntityID, resource shared.ResourceKind) int {
	return l.destination[Key{Object: object, Resource: resource}]
}

// DestinationTotal sums bookings for every resource on object
func (l *Ledger) DestinationTotal(object shared.EntityID) int {
	total := 0
	for k, v := range l.destination {
		if k.Object == object {
			total += v
		}
	}
	return total
}

// MixerDestination returns units of resource booked into mixer
func (l *Ledger) MixerDestination(mixer shared.EntityID, resource shared.ResourceKind) int {
	return l.mixer[Key{Object: mixer, Resource: resource}]
}

// Source returns the number of workers committed to picking from object
func (l *Ledger) Source(object shared.EntityID) int {
	return l.source[object]
}

// ClampCount returns how many releases hit zero before covering their amount.
// Non-zero means some caller released more than it reserved.
func (l *Ledger) ClampCount() int {
	return l.clamped
}

// Mutations

// ReserveDestination books n units of resource on object. Non-positive n is ignored.
func (l *Ledger) ReserveDestination(object shared.EntityID, resource shared.ResourceKind, n int) {
	if n < 1 {
		return
	}
	l.destination[Key{Object: object, Resource: resource}] += n
}

// ReleaseDestination removes a booking; returns false when the counter had to clamp
func (l *Ledger) ReleaseDestination(object shared.EntityID, resource shared.ResourceKind, n int) bool {
	return l.decrementKey(l.destination, Key{Object: object, Resource: resource}, n)
}

// ReserveMixerDestination books n units of resource into mixer. Non-positive n is ignored.
func (l *Ledger) ReserveMixerDestination(mixer shared.EntityID, resource shared.ResourceKind, n int) {
	if n < 1 {
		return
	}
	l.mixer[Key{Object: mixer, Resource: resource}] += n
}

// ReleaseMixerDestination removes a mixer booking
func (l *Ledger) ReleaseMixerDestination(mixer shared.EntityID, resource shared.ResourceKind, n int) bool {
	return l.decrementKey(l.mixer, Key{Object: mixer, Resource: resource}, n)
}

// ReserveSource claims object as a pick-up origin
func (l *Ledger) ReserveSource(object shared.EntityID) {
	l.source[object]++
}

// ReleaseSource drops a claim
func (l *Ledger) ReleaseSource(object shared.EntityID) bool {
	v := l.source[object]
	if v <= 0 {
		delete(l.source, object)
		l.clamped++
		return false
	}
	if v == 1 {
		delete(l.source, object)
	} else {
		l.source[object] = v - 1
	}
	return true
}

// Apply executes a request. Only malformed requests fail, and they change nothing.
func (l *Ledger) Apply(req ReservationRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	switch req.Op {
	case OpReserveDestination:
		l.ReserveDestination(req.Object, req.Resource, req.Units())
	case OpReleaseDestination, OpRecordStoredDestination:
		l.ReleaseDestination(req.Object, req.Resource, req.Units())
	case OpReserveMixerDestination:
		l.ReserveMixerDestination(req.Object, req.Resource, req.Units())
	case OpReleaseMixerDestination:
		l.ReleaseMixerDestination(req.Object, req.Resource, req.Units())
	case OpReserveSource:
		l.ReserveSource(req.Object)
	case OpReleaseSource, OpRecordPickedSource:
		l.ReleaseSource(req.Object)
	}
	return nil
}

// ApplyAll executes requests in order. A batch holding a malformed request
// is rejected whole before any counter moves.
func (l *Ledger) ApplyAll(reqs []ReservationRequest) error {
	for _, r := range reqs {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	for _, r := range reqs {
		_ = l.Apply(r)
	}
	return nil
}

// Entry is one live counter, used for snapshots and metrics
type Entry struct {
	Table    Table
	Object   shared.EntityID
	Resource shared.ResourceKind
	Count    int
}

// Entries lists every live counter sorted by table, object and resource
func (l *Ledger) Entries() []Entry {
	out := make([]Entry, 0, len(l.destination)+len(l.mixer)+len(l.source))
	for k, v := range l.destination {
		out = append(out, Entry{Table: TableDestination, Object: k.Object, Resource: k.Resource, Count: v})
	}
	for k, v := range l.mixer {
		out = append(out, Entry{Table: TableMixer, Object: k.Object, Resource: k.Resource, Count: v})
	}
	for id, v := range l.source {
		out = append(out, Entry{Table: TableSource, Object: id, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Table != out[j].Table {
			return out[i].Table < out[j].Table
		}
		if out[i].Object != out[j].Object {
			return out[i].Object < out[j].Object
		}
		return out[i].Resource < out[j].Resource
	})
	return out
}

// Totals returns the summed count per table
func (l *Ledger) Totals() map[Table]int {
	totals := map[Table]int{TableDestination: 0, TableMixer: 0, TableSource: 0}
	for _, v := range l.destination {
		totals[TableDestination] += v
	}
	for _, v := range l.mixer {
		totals[TableMixer] += v
	}
	for _, v := range l.source {
		totals[TableSource] += v
	}
	return totals
}

func (l *Ledger) decrementKey(m map[Key]int, k Key, n int) bool {
	if n < 1 {
		return true
	}
	v := m[k]
	if v < n {
		delete(m, k)
		l.clamped++
		return false
	}
	if v == n {
		delete(m, k)
	} else {
		m[k] = v - n
	}
	return true
}
