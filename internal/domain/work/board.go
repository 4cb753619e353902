package work

import (
	"sort"

	"github.com/andrescamacho/hauler-go/internal/domain/shared"
	"github.com/andrescamacho/hauler-go/internal/domain/spatial"
)

type designationKey struct {
	kind     Kind
	target   shared.EntityID
	cell     shared.Cell
	resource shared.ResourceKind
}

// Board holds every live work item and keeps them in a spatial index so
// candidate searches stay local.
type Board struct {
	ids   *shared.IDAllocator
	index spatial.SpatialIndex
	items map[shared.EntityID]*WorkItem
	keys  map[designationKey]shared.EntityID
}

// NewBoard creates an empty board. IDs come from the world's allocator so
// work items never collide with physical entities.
func NewBoard(ids *shared.IDAllocator, index spatial.SpatialIndex) *Board {
	return &Board{
		ids:   ids,
		index: index,
		items: make(map[shared.EntityID]*WorkItem),
		keys:  make(map[designationKey]shared.EntityID),
	}
}

// Designate adds a work item, or returns the existing one for the same
// kind, target, cell and resource. The second result is true when a new item
// was created.
func (b *Board) Designate(d Designation) (*WorkItem, bool, error) {
	key := designationKey{kind: d.Kind, target: d.Target, cell: d.Cell, resource: d.Resource}
	if id, ok := b.keys[key]; ok {
		return b.items[id], false, nil
	}

	item, err := NewWorkItem(b.ids.Next(), d)
	if err != nil {
		return nil, false, err
	}
	b.items[item.id] = item
	b.keys[key] = item.id
	b.index.Insert(item.id, item.cell)
	return item, true, nil
}

// Get returns a live item
func (b *Board) Get(id shared.EntityID) (*WorkItem, bool) {
	item, ok := b.items[id]
	return item, ok
}

// MustGet returns a live item or ErrWorkItemNotFound
func (b *Board) MustGet(id shared.EntityID) (*WorkItem, error) {
	item, ok := b.items[id]
	if !ok {
		return nil, &ErrWorkItemNotFound{ID: id}
	}
	return item, nil
}

// Find looks an item up by its designation key
func (b *Board) Find(kind Kind, target shared.EntityID, cell shared.Cell, resource shared.ResourceKind) (*WorkItem, bool) {
	id, ok := b.keys[designationKey{kind: kind, target: target, cell: cell, resource: resource}]
	if !ok {
		return nil, false
	}
	return b.items[id], true
}

// Remove deletes an item. Removing an unknown ID is a no-op.
func (b *Board) Remove(id shared.EntityID) (*WorkItem, bool) {
	item, ok := b.items[id]
	if !ok {
		return nil, false
	}
	delete(b.items, id)
	delete(b.keys, designationKey{kind: item.kind, target: item.target, cell: item.cell, resource: item.resource})
	b.index.Remove(id)
	return item, true
}

// RemoveTarget deletes every item designated on target and returns them
func (b *Board) RemoveTarget(target shared.EntityID) []*WorkItem {
	var removed []*WorkItem
	for _, item := range b.All() {
		if item.target == target {
			b.Remove(item.id)
			removed = append(removed, item)
		}
	}
	return removed
}

// ForTarget lists items designated on target, sorted by ID
func (b *Board) ForTarget(target shared.EntityID) []*WorkItem {
	var out []*WorkItem
	for _, item := range b.items {
		if item.target == target {
			out = append(out, item)
		}
	}
	sortByID(out)
	return out
}

// All lists every item sorted by ID
func (b *Board) All() []*WorkItem {
	out := make([]*WorkItem, 0, len(b.items))
	for _, item := range b.items {
		out = append(out, item)
	}
	sortByID(out)
	return out
}

// InArea lists items whose cell lies in area, sorted by ID
func (b *Board) InArea(area shared.Rect) []*WorkItem {
	return b.resolve(b.index.QueryRect(area))
}

// Near lists items within radius tiles of center, sorted by ID
func (b *Board) Near(center shared.Cell, radius int) []*WorkItem {
	return b.resolve(b.index.QueryRadius(center, radius))
}

// OwnedBy lists items owned by supervisor, sorted by ID
func (b *Board) OwnedBy(supervisor shared.EntityID) []*WorkItem {
	var out []*WorkItem
	for _, item := range b.items {
		if !supervisor.IsNone() && item.owner == supervisor {
			out = append(out, item)
		}
	}
	sortByID(out)
	return out
}

// Len returns the number of live items
func (b *Board) Len() int {
	return len(b.items)
}

// CountByKind tallies live items per kind
func (b *Board) CountByKind() map[Kind]int {
	counts := make(map[Kind]int)
	for _, item := range b.items {
		counts[item.kind]++
	}
	return counts
}

func (b *Board) resolve(ids []shared.EntityID) []*WorkItem {
	out := make([]*WorkItem, 0, len(ids))
	for _, id := range ids {
		if item, ok := b.items[id]; ok {
			out = append(out, item)
		}
	}
	sortByID(out)
	return out
}

func sortByID(items []*WorkItem) {
	sort.Slice(items, func(i, j int) bool { return items[i].id < items[j].id })
}
