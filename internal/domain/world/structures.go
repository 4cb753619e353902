package world

import "github.com/andrescamacho/hauler-go/internal/domain/shared"

// Item is one unit of a resource lying on the ground or stored in a stockpile
type Item struct {
	ID        shared.EntityID
	Resource  shared.ResourceKind
	Cell      shared.Cell
	Stockpile shared.EntityID
}

// IsLoose reports whether the item lies on open ground
func (i *Item) IsLoose() bool {
	return i.Stockpile.IsNone()
}

// Stockpile is a storage zone. An unset Accepts locks to the first stored resource
// and unlocks again when emptied.
type Stockpile struct {
	ID       shared.EntityID
	Cell     shared.Cell
	Owner    shared.EntityID
	Capacity int
	Accepts  shared.ResourceKind
	Fixed    bool
	Stored   int
}

// AcceptsResource reports whether r may be stored here
func (s *Stockpile) AcceptsResource(r shared.ResourceKind) bool {
	if !r.IsItem() {
		return false
	}
	return s.Accepts == shared.ResourceNone || s.Accepts == r
}

// Remaining returns free capacity ignoring reservations
func (s *Stockpile) Remaining() int {
	if s.Stored >= s.Capacity {
		return 0
	}
	return s.Capacity - s.Stored
}

func (s *Stockpile) store(r shared.ResourceKind) error {
	if !s.AcceptsResource(r) {
		return &ErrRejectedResource{ContainerID: s.ID, Resource: r}
	}
	if s.Remaining() < 1 {
		return &ErrCapacity{ContainerID: s.ID, Resource: r, Requested: 1, Available: 0}
	}
	s.Stored++
	if s.Accepts == shared.ResourceNone {
		s.Accepts = r
	}
	return nil
}

func (s *Stockpile) take() {
	if s.Stored > 0 {
		s.Stored--
	}
	if s.Stored == 0 && !s.Fixed {
		s.Accepts = shared.ResourceNone
	}
}

// Recipe is what one refine action consumes from a mixer
var Recipe = map[shared.ResourceKind]int{
	shared.ResourceSand:  1,
	shared.ResourceRock:  1,
	shared.ResourceWater: 1,
}

// RecipeOutput is what one refine action produces
const RecipeOutput = shared.ResourceMud

// Mixer combines sand, rock and water into mud
type Mixer struct {
	ID       shared.EntityID
	Cell     shared.Cell
	Owner    shared.EntityID
	Capacity map[shared.ResourceKind]int
	Stored   map[shared.ResourceKind]int
}

// Spare returns room for r ignoring reservations
func (m *Mixer) Spare(r shared.ResourceKind) int {
	c := m.Capacity[r]
	s := m.Stored[r]
	if s >= c {
		return 0
	}
	return c - s
}

// Accepts reports whether r is a mixer input
func (m *Mixer) Accepts(r shared.ResourceKind) bool {
	_, ok := m.Capacity[r]
	return ok
}

// Add deposits n units of r
func (m *Mixer) Add(r shared.ResourceKind, n int) error {
	if !m.Accepts(r) {
		return &ErrRejectedResource{ContainerID: m.ID, Resource: r}
	}
	if spare := m.Spare(r); n > spare {
		return &ErrCapacity{ContainerID: m.ID, Resource: r, Requested: n, Available: spare}
	}
	m.Stored[r] += n
	return nil
}

// HasRecipe reports whether one refine action can run
func (m *Mixer) HasRecipe() bool {
	for r, n := range Recipe {
		if m.Stored[r] < n {
			return false
		}
	}
	return true
}

// ConsumeRecipe removes one recipe's inputs
func (m *Mixer) ConsumeRecipe() bool {
	if !m.HasRecipe() {
		return false
	}
	for r, n := range Recipe {
		m.Stored[r] -= n
	}
	return true
}

// Tank holds water filled by bucket brigades
type Tank struct {
	ID       shared.EntityID
	Cell     shared.Cell
	Owner    shared.EntityID
	Capacity int
	Water    int
}

// Free returns room for water ignoring reservations
func (t *Tank) Free() int {
	if t.Water >= t.Capacity {
		return 0
	}
	return t.Capacity - t.Water
}

// Fill adds up to n units and returns how much went in
func (t *Tank) Fill(n int) int {
	if n > t.Free() {
		n = t.Free()
	}
	t.Water += n
	return n
}

// Draw removes up to n units and returns how much came out
func (t *Tank) Draw(n int) int {
	if n > t.Water {
		n = t.Water
	}
	t.Water -= n
	return n
}

// Bucket carries water between a water source, its home tank and mixers
type Bucket struct {
	ID       shared.EntityID
	Home     shared.EntityID
	Cell     shared.Cell
	Capacity int
	Water    int
	Holder   shared.EntityID
}

// IsIdle reports whether nobody holds the bucket
func (b *Bucket) IsIdle() bool {
	return b.Holder.IsNone()
}

// Wheelbarrow carries a batch of items in one trip
type Wheelbarrow struct {
	ID       shared.EntityID
	Cell     shared.Cell
	Capacity int
	Load     []shared.ResourceKind
	Holder   shared.EntityID
}

// IsIdle reports whether nobody holds the wheelbarrow
func (w *Wheelbarrow) IsIdle() bool {
	return w.Holder.IsNone()
}

// Room returns free load slots
func (w *Wheelbarrow) Room() int {
	if len(w.Load) >= w.Capacity {
		return 0
	}
	return w.Capacity - len(w.Load)
}
