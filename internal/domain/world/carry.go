package world

import "github.com/andrescamacho/hauler-go/internal/domain/shared"

// MoveWorker places a worker and anything it holds at pos
func (w *World) MoveWorker(workerID shared.EntityID, pos shared.Vec2) {
	wk, ok := w.workers[workerID]
	if !ok {
		return
	}
	wk.Pos = pos
	cell := pos.Cell()
	if b, ok := w.buckets[wk.Load.Bucket]; ok && b.Cell != cell {
		b.Cell = cell
		w.index.Move(b.ID, cell)
	}
	if wb, ok := w.wheelbarrows[wk.Load.Wheelbarrow]; ok && wb.Cell != cell {
		wb.Cell = cell
		w.index.Move(wb.ID, cell)
	}
}

// PickUp moves an item into a worker's hands
func (w *World) PickUp(workerID, itemID shared.EntityID) error {
	wk, ok := w.workers[workerID]
	if !ok {
		return &ErrEntityNotFound{Kind: "worker", ID: workerID}
	}
	item, ok := w.items[itemID]
	if !ok {
		return &ErrEntityNotFound{Kind: "item", ID: itemID}
	}
	if wk.Load.Count > 0 || !wk.Load.Bucket.IsNone() {
		return &ErrHandsFull{WorkerID: workerID}
	}
	wk.Load.Resource = item.Resource
	wk.Load.Count = 1
	w.Despawn(itemID)
	return nil
}

// ConsumeLoad empties the worker's hands of carried resource and returns it
func (w *World) ConsumeLoad(workerID shared.EntityID) (shared.ResourceKind, int) {
	wk, ok := w.workers[workerID]
	if !ok {
		return shared.ResourceNone, 0
	}
	r, n := wk.Load.Resource, wk.Load.Count
	wk.Load.Resource = shared.ResourceNone
	wk.Load.Count = 0
	return r, n
}

// DropLoad puts everything the worker holds on its tile. Carried units
// become loose items, a held bucket keeps its water, a wheelbarrow spills
// its load. Returns the IDs of items created.
func (w *World) DropLoad(workerID shared.EntityID) []shared.EntityID {
	wk, ok := w.workers[workerID]
	if !ok {
		return nil
	}
	cell := wk.Cell()
	var spawned []shared.EntityID

	r, n := w.ConsumeLoad(workerID)
	for i := 0; i < n; i++ {
		spawned = append(spawned, w.SpawnItem(r, cell).ID)
	}
	if b, ok := w.buckets[wk.Load.Bucket]; ok {
		b.Holder = shared.NoEntity
		b.Cell = cell
		w.index.Move(b.ID, cell)
	}
	wk.Load.Bucket = shared.NoEntity
	if wb, ok := w.wheelbarrows[wk.Load.Wheelbarrow]; ok {
		for _, res := range w.UnloadWheelbarrow(wb.ID) {
			spawned = append(spawned, w.SpawnItem(res, cell).ID)
		}
		wb.Holder = shared.NoEntity
		wb.Cell = cell
		w.index.Move(wb.ID, cell)
	}
	wk.Load.Wheelbarrow = shared.NoEntity
	return spawned
}

// StoreInStockpile turns one unit into a stored item
func (w *World) StoreInStockpile(stockpileID shared.EntityID, r shared.ResourceKind) (*Item, error) {
	sp, ok := w.stockpiles[stockpileID]
	if !ok {
		return nil, &ErrEntityNotFound{Kind: "stockpile", ID: stockpileID}
	}
	if err := sp.store(r); err != nil {
		return nil, err
	}
	item := &Item{ID: w.ids.Next(), Resource: r, Cell: sp.Cell, Stockpile: sp.ID}
	w.items[item.ID] = item
	w.index.Insert(item.ID, sp.Cell)
	return item, nil
}

// TakeBucket hands a bucket to a worker
func (w *World) TakeBucket(workerID, bucketID shared.EntityID) error {
	wk, ok := w.workers[workerID]
	if !ok {
		return &ErrEntityNotFound{Kind: "worker", ID: workerID}
	}
	b, ok := w.buckets[bucketID]
	if !ok {
		return &ErrEntityNotFound{Kind: "bucket", ID: bucketID}
	}
	if !wk.Load.IsEmpty() {
		return &ErrHandsFull{WorkerID: workerID}
	}
	b.Holder = workerID
	wk.Load.Bucket = bucketID
	return nil
}

// PutDownBucket releases a held bucket at the worker's tile
func (w *World) PutDownBucket(workerID shared.EntityID) {
	wk, ok := w.workers[workerID]
	if !ok {
		return
	}
	if b, ok := w.buckets[wk.Load.Bucket]; ok {
		b.Holder = shared.NoEntity
		b.Cell = wk.Cell()
		w.index.Move(b.ID, b.Cell)
	}
	wk.Load.Bucket = shared.NoEntity
}

// TakeWheelbarrow hands a wheelbarrow to a worker
func (w *World) TakeWheelbarrow(workerID, wheelbarrowID shared.EntityID) error {
	wk, ok := w.workers[workerID]
	if !ok {
		return &ErrEntityNotFound{Kind: "worker", ID: workerID}
	}
	wb, ok := w.wheelbarrows[wheelbarrowID]
	if !ok {
		return &ErrEntityNotFound{Kind: "wheelbarrow", ID: wheelbarrowID}
	}
	if !wk.Load.IsEmpty() {
		return &ErrHandsFull{WorkerID: workerID}
	}
	wb.Holder = workerID
	wk.Load.Wheelbarrow = wheelbarrowID
	return nil
}

// PutDownWheelbarrow releases a held wheelbarrow at the worker's tile, keeping its load
func (w *World) PutDownWheelbarrow(workerID shared.EntityID) {
	wk, ok := w.workers[workerID]
	if !ok {
		return
	}
	if wb, ok := w.wheelbarrows[wk.Load.Wheelbarrow]; ok {
		wb.Holder = shared.NoEntity
		wb.Cell = wk.Cell()
		w.index.Move(wb.ID, wb.Cell)
	}
	wk.Load.Wheelbarrow = shared.NoEntity
}

// LoadWheelbarrow moves an item into a wheelbarrow
func (w *World) LoadWheelbarrow(wheelbarrowID, itemID shared.EntityID) error {
	wb, ok := w.wheelbarrows[wheelbarrowID]
	if !ok {
		return &ErrEntityNotFound{Kind: "wheelbarrow", ID: wheelbarrowID}
	}
	item, ok := w.items[itemID]
	if !ok {
		return &ErrEntityNotFound{Kind: "item", ID: itemID}
	}
	if wb.Room() < 1 {
		return &ErrCapacity{ContainerID: wb.ID, Resource: item.Resource, Requested: 1, Available: 0}
	}
	wb.Load = append(wb.Load, item.Resource)
	w.Despawn(itemID)
	return nil
}

// UnloadWheelbarrow empties a wheelbarrow and returns its contents
func (w *World) UnloadWheelbarrow(wheelbarrowID shared.EntityID) []shared.ResourceKind {
	wb, ok := w.wheelbarrows[wheelbarrowID]
	if !ok {
		return nil
	}
	load := wb.Load
	wb.Load = nil
	return load
}

// Harvest takes one unit from a node and spawns its yield on the node's
// cell. The node is removed when exhausted.
func (w *World) Harvest(nodeID shared.EntityID) ([]*Item, error) {
	n, ok := w.nodes[nodeID]
	if !ok {
		return nil, &ErrEntityNotFound{Kind: "node", ID: nodeID}
	}
	items := make([]*Item, 0, n.Yield)
	for i := 0; i < n.Yield; i++ {
		items = append(items, w.SpawnItem(n.Resource(), n.Cell))
	}
	n.Remaining--
	if n.Remaining <= 0 {
		w.Despawn(nodeID)
	}
	return items, nil
}
