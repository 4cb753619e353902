package world

import (
	"sort"

	"github.com/andrescamacho/hauler-go/internal/domain/shared"
	"github.com/andrescamacho/hauler-go/internal/domain/spatial"
)

// World is the colony state the scheduler reads and the executor mutates.
// It is not safe for concurrent use; the scheduler serialises access.
type World struct {
	ids   *shared.IDAllocator
	index spatial.SpatialIndex

	supervisors  map[shared.EntityID]*Supervisor
	workers      map[shared.EntityID]*Worker
	items        map[shared.EntityID]*Item
	stockpiles   map[shared.EntityID]*Stockpile
	mixers       map[shared.EntityID]*Mixer
	tanks        map[shared.EntityID]*Tank
	buckets      map[shared.EntityID]*Bucket
	wheelbarrows map[shared.EntityID]*Wheelbarrow
	blueprints   map[shared.EntityID]*Blueprint
	sites        map[shared.EntityID]*ConstructionSite
	nodes        map[shared.EntityID]*ResourceNode
}

// New creates an empty world. index holds physical objects (not workers).
func New(ids *shared.IDAllocator, index spatial.SpatialIndex) *World {
	return &World{
		ids:          ids,
		index:        index,
		supervisors:  make(map[shared.EntityID]*Supervisor),
		workers:      make(map[shared.EntityID]*Worker),
		items:        make(map[shared.EntityID]*Item),
		stockpiles:   make(map[shared.EntityID]*Stockpile),
		mixers:       make(map[shared.EntityID]*Mixer),
		tanks:        make(map[shared.EntityID]*Tank),
		buckets:      make(map[shared.EntityID]*Bucket),
		wheelbarrows: make(map[shared.EntityID]*Wheelbarrow),
		blueprints:   make(map[shared.EntityID]*Blueprint),
		sites:        make(map[shared.EntityID]*ConstructionSite),
		nodes:        make(map[shared.EntityID]*ResourceNode),
	}
}

// IDs exposes the allocator shared with the work board
func (w *World) IDs() *shared.IDAllocator {
	return w.ids
}

func (w *World) assign(id *shared.EntityID) {
	if id.IsNone() {
		*id = w.ids.Next()
		return
	}
	w.ids.Observe(*id)
}

// Spawning

func (w *World) AddSupervisor(s *Supervisor) *Supervisor {
	w.assign(&s.ID)
	w.supervisors[s.ID] = s
	return s
}

func (w *World) AddWorker(wk *Worker) *Worker {
	w.assign(&wk.ID)
	if wk.Speed <= 0 {
		wk.Speed = DefaultWorkerSpeed
	}
	w.workers[wk.ID] = wk
	return wk
}

func (w *World) AddStockpile(s *Stockpile) *Stockpile {
	w.assign(&s.ID)
	if s.Accepts != shared.ResourceNone {
		s.Fixed = true
	}
	w.stockpiles[s.ID] = s
	w.index.Insert(s.ID, s.Cell)
	return s
}

func (w *World) AddMixer(m *Mixer) *Mixer {
	w.assign(&m.ID)
	if m.Stored == nil {
		m.Stored = make(map[shared.ResourceKind]int)
	}
	w.mixers[m.ID] = m
	w.index.Insert(m.ID, m.Cell)
	return m
}

func (w *World) AddTank(t *Tank) *Tank {
	w.assign(&t.ID)
	w.tanks[t.ID] = t
	w.index.Insert(t.ID, t.Cell)
	return t
}

func (w *World) AddBucket(b *Bucket) *Bucket {
	w.assign(&b.ID)
	w.buckets[b.ID] = b
	w.index.Insert(b.ID, b.Cell)
	return b
}

func (w *World) AddWheelbarrow(wb *Wheelbarrow) *Wheelbarrow {
	w.assign(&wb.ID)
	w.wheelbarrows[wb.ID] = wb
	w.index.Insert(wb.ID, wb.Cell)
	return wb
}

func (w *World) AddBlueprint(b *Blueprint) *Blueprint {
	w.assign(&b.ID)
	w.blueprints[b.ID] = b
	w.index.Insert(b.ID, b.Anchor())
	return b
}

func (w *World) AddSite(s *ConstructionSite) *ConstructionSite {
	w.assign(&s.ID)
	if s.Phase == "" {
		s.Phase = FirstSitePhase(s.Kind)
	}
	if s.Delivered == nil {
		s.Delivered = make(map[shared.ResourceKind]int)
	}
	if s.Consumed == nil {
		s.Consumed = make(map[shared.ResourceKind]int)
	}
	w.sites[s.ID] = s
	if len(s.Tiles) > 0 {
		w.index.Insert(s.ID, s.Tiles[0].Cell)
	}
	return s
}

func (w *World) AddNode(n *ResourceNode) *ResourceNode {
	w.assign(&n.ID)
	if n.Yield <= 0 {
		n.Yield = 1
	}
	w.nodes[n.ID] = n
	w.index.Insert(n.ID, n.Cell)
	return n
}

// SpawnItem drops a new loose item on cell
func (w *World) SpawnItem(r shared.ResourceKind, cell shared.Cell) *Item {
	item := &Item{ID: w.ids.Next(), Resource: r, Cell: cell}
	w.items[item.ID] = item
	w.index.Insert(item.ID, cell)
	return item
}

// AddItem registers a pre-built item, e.g. from a scenario file. Items naming
// a stockpile count against its capacity.
func (w *World) AddItem(item *Item) (*Item, error) {
	w.assign(&item.ID)
	if !item.Stockpile.IsNone() {
		sp, ok := w.stockpiles[item.Stockpile]
		if !ok {
			return nil, &ErrEntityNotFound{Kind: "stockpile", ID: item.Stockpile}
		}
		if err := sp.store(item.Resource); err != nil {
			return nil, err
		}
		item.Cell = sp.Cell
	}
	w.items[item.ID] = item
	w.index.Insert(item.ID, item.Cell)
	return item, nil
}

// Lookups

func (w *World) Supervisor(id shared.EntityID) (*Supervisor, bool) {
	v, ok := w.supervisors[id]
	return v, ok
}

func (w *World) Worker(id shared.EntityID) (*Worker, bool) {
	v, ok := w.workers[id]
	return v, ok
}

func (w *World) Item(id shared.EntityID) (*Item, bool) {
	v, ok := w.items[id]
	return v, ok
}

func (w *World) Stockpile(id shared.EntityID) (*Stockpile, bool) {
	v, ok := w.stockpiles[id]
	return v, ok
}

func (w *World) Mixer(id shared.EntityID) (*Mixer, bool) {
	v, ok := w.mixers[id]
	return v, ok
}

func (w *World) Tank(id shared.EntityID) (*Tank, bool) {
	v, ok := w.tanks[id]
	return v, ok
}

func (w *World) Bucket(id shared.EntityID) (*Bucket, bool) {
	v, ok := w.buckets[id]
	return v, ok
}

func (w *World) Wheelbarrow(id shared.EntityID) (*Wheelbarrow, bool) {
	v, ok := w.wheelbarrows[id]
	return v, ok
}

func (w *World) Blueprint(id shared.EntityID) (*Blueprint, bool) {
	v, ok := w.blueprints[id]
	return v, ok
}

func (w *World) Site(id shared.EntityID) (*ConstructionSite, bool) {
	v, ok := w.sites[id]
	return v, ok
}

func (w *World) Node(id shared.EntityID) (*ResourceNode, bool) {
	v, ok := w.nodes[id]
	return v, ok
}

// Exists reports whether id names any live entity
func (w *World) Exists(id shared.EntityID) bool {
	return w.KindOf(id) != ""
}

// KindOf names the entity family of id, or "" when unknown
func (w *World) KindOf(id shared.EntityID) string {
	switch {
	case w.supervisors[id] != nil:
		return "supervisor"
	case w.workers[id] != nil:
		return "worker"
	case w.items[id] != nil:
		return "item"
	case w.stockpiles[id] != nil:
		return "stockpile"
	case w.mixers[id] != nil:
		return "mixer"
	case w.tanks[id] != nil:
		return "tank"
	case w.buckets[id] != nil:
		return "bucket"
	case w.wheelbarrows[id] != nil:
		return "wheelbarrow"
	case w.blueprints[id] != nil:
		return "blueprint"
	case w.sites[id] != nil:
		return "site"
	case w.nodes[id] != nil:
		return "node"
	default:
		return ""
	}
}

// Footprint returns the cells an entity occupies
func (w *World) Footprint(id shared.EntityID) ([]shared.Cell, bool) {
	if b, ok := w.blueprints[id]; ok {
		return b.Cells, true
	}
	if s, ok := w.sites[id]; ok {
		return s.Cells(), true
	}
	if c, ok := w.CellOf(id); ok {
		return []shared.Cell{c}, true
	}
	return nil, false
}

// CellOf returns the anchor cell of any entity
func (w *World) CellOf(id shared.EntityID) (shared.Cell, bool) {
	if v, ok := w.workers[id]; ok {
		return v.Cell(), true
	}
	if v, ok := w.supervisors[id]; ok {
		return v.Cell, true
	}
	if v, ok := w.items[id]; ok {
		return v.Cell, true
	}
	if v, ok := w.stockpiles[id]; ok {
		return v.Cell, true
	}
	if v, ok := w.mixers[id]; ok {
		return v.Cell, true
	}
	if v, ok := w.tanks[id]; ok {
		return v.Cell, true
	}
	if v, ok := w.buckets[id]; ok {
		return v.Cell, true
	}
	if v, ok := w.wheelbarrows[id]; ok {
		return v.Cell, true
	}
	if v, ok := w.blueprints[id]; ok {
		return v.Anchor(), true
	}
	if v, ok := w.sites[id]; ok && len(v.Tiles) > 0 {
		return v.Tiles[0].Cell, true
	}
	if v, ok := w.nodes[id]; ok {
		return v.Cell, true
	}
	return shared.Cell{}, false
}

// Despawn removes any entity. Items stored in a removed stockpile become
// loose; objects held by a removed worker are dropped where it stood.
func (w *World) Despawn(id shared.EntityID) bool {
	if wk, ok := w.workers[id]; ok {
		w.DropLoad(wk.ID)
		delete(w.workers, id)
		return true
	}
	if sp, ok := w.stockpiles[id]; ok {
		for _, item := range w.items {
			if item.Stockpile == sp.ID {
				item.Stockpile = shared.NoEntity
			}
		}
		delete(w.stockpiles, id)
		w.index.Remove(id)
		return true
	}
	if item, ok := w.items[id]; ok {
		if sp, ok := w.stockpiles[item.Stockpile]; ok {
			sp.take()
		}
		delete(w.items, id)
		w.index.Remove(id)
		return true
	}
	if b, ok := w.buckets[id]; ok {
		if holder, ok := w.workers[b.Holder]; ok {
			holder.Load.Bucket = shared.NoEntity
		}
		delete(w.buckets, id)
		w.index.Remove(id)
		return true
	}
	if wb, ok := w.wheelbarrows[id]; ok {
		if holder, ok := w.workers[wb.Holder]; ok {
			holder.Load.Wheelbarrow = shared.NoEntity
		}
		delete(w.wheelbarrows, id)
		w.index.Remove(id)
		return true
	}

	found := false
	if _, ok := w.supervisors[id]; ok {
		delete(w.supervisors, id)
		found = true
	}
	if _, ok := w.mixers[id]; ok {
		delete(w.mixers, id)
		found = true
	}
	if _, ok := w.tanks[id]; ok {
		delete(w.tanks, id)
		found = true
	}
	if _, ok := w.blueprints[id]; ok {
		delete(w.blueprints, id)
		found = true
	}
	if _, ok := w.sites[id]; ok {
		delete(w.sites, id)
		found = true
	}
	if _, ok := w.nodes[id]; ok {
		delete(w.nodes, id)
		found = true
	}
	if found {
		w.index.Remove(id)
	}
	return found
}

// Sorted listings

func (w *World) Supervisors() []*Supervisor {
	return sortedValues(w.supervisors, func(v *Supervisor) shared.EntityID { return v.ID })
}

func (w *World) Workers() []*Worker {
	return sortedValues(w.workers, func(v *Worker) shared.EntityID { return v.ID })
}

func (w *World) Items() []*Item {
	return sortedValues(w.items, func(v *Item) shared.EntityID { return v.ID })
}

func (w *World) Stockpiles() []*Stockpile {
	return sortedValues(w.stockpiles, func(v *Stockpile) shared.EntityID { return v.ID })
}

func (w *World) Mixers() []*Mixer {
	return sortedValues(w.mixers, func(v *Mixer) shared.EntityID { return v.ID })
}

func (w *World) Tanks() []*Tank {
	return sortedValues(w.tanks, func(v *Tank) shared.EntityID { return v.ID })
}

func (w *World) Buckets() []*Bucket {
	return sortedValues(w.buckets, func(v *Bucket) shared.EntityID { return v.ID })
}

func (w *World) Wheelbarrows() []*Wheelbarrow {
	return sortedValues(w.wheelbarrows, func(v *Wheelbarrow) shared.EntityID { return v.ID })
}

func (w *World) Blueprints() []*Blueprint {
	return sortedValues(w.blueprints, func(v *Blueprint) shared.EntityID { return v.ID })
}

func (w *World) Sites() []*ConstructionSite {
	return sortedValues(w.sites, func(v *ConstructionSite) shared.EntityID { return v.ID })
}

func (w *World) Nodes() []*ResourceNode {
	return sortedValues(w.nodes, func(v *ResourceNode) shared.EntityID { return v.ID })
}

// WorkersOf lists the workers a supervisor commands
func (w *World) WorkersOf(supervisor shared.EntityID) []*Worker {
	var out []*Worker
	for _, wk := range w.Workers() {
		if wk.Supervisor == supervisor {
			out = append(out, wk)
		}
	}
	return out
}

// ItemsNear lists items (loose or stored) within radius of center, sorted by ID
func (w *World) ItemsNear(center shared.Cell, radius int) []*Item {
	var out []*Item
	for _, id := range w.index.QueryRadius(center, radius) {
		if item, ok := w.items[id]; ok {
			out = append(out, item)
		}
	}
	return out
}

func sortedValues[T any](m map[shared.EntityID]*T, id func(*T) shared.EntityID) []*T {
	out := make([]*T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return id(out[i]) < id(out[j]) })
	return out
}
