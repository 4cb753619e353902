package shared

import "strconv"

// EntityID identifies any object in the colony: workers, supervisors, items,
// structures and work items share one ID space. The zero value means "none".
type EntityID uint64

// NoEntity is the absent entity.
const NoEntity EntityID = 0

// IsNone reports whether the ID refers to nothing.
func (id EntityID) IsNone() bool {
	return id == NoEntity
}

func (id EntityID) String() string {
	if id == NoEntity {
		return "none"
	}
	return "#" + strconv.FormatUint(uint64(id), 10)
}

// IDAllocator hands out monotonically increasing entity IDs.
type IDAllocator struct {
	next EntityID
}

// NewIDAllocator creates an allocator whose first ID is 1
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{next: 1}
}

// Next returns a fresh ID
func (a *IDAllocator) Next() EntityID {
	id := a.next
	a.next++
	return id
}

// Observe makes sure future IDs never collide with an externally assigned one.
func (a *IDAllocator) Observe(id EntityID) {
	if id >= a.next {
		a.next = id + 1
	}
}
