package spatial

import (
	"sort"

	"github.com/andrescamacho/hauler-go/internal/domain/shared"
)

// DefaultBucketSize is the edge length, in tiles, of one index bucket
const DefaultBucketSize = 8

type bucketKey struct {
	bx int
	by int
}

// BucketIndex is a uniform grid of buckets keyed by floor(cell / size).
// Queries visit only the buckets overlapping the requested area and return
// IDs sorted ascending so callers iterate deterministically.
type BucketIndex struct {
	size      int
	buckets   map[bucketKey]map[shared.EntityID]shared.Cell
	positions map[shared.EntityID]shared.Cell
}

// NewBucketIndex creates an index. size <= 0 uses DefaultBucketSize.
func NewBucketIndex(size int) *BucketIndex {
	if size <= 0 {
		size = DefaultBucketSize
	}
	return &BucketIndex{
		size:      size,
		buckets:   make(map[bucketKey]map[shared.EntityID]shared.Cell),
		positions: make(map[shared.EntityID]shared.Cell),
	}
}

// Insert adds id at cell, moving it if already present
func (b *BucketIndex) Insert(id shared.EntityID, cell shared.Cell) {
	if _, ok := b.positions[id]; ok {
		b.Move(id, cell)
		return
	}
	key := b.keyFor(cell)
	bucket, ok := b.buckets[key]
	if !ok {
		bucket = make(map[shared.EntityID]shared.Cell)
		b.buckets[key] = bucket
	}
	bucket[id] = cell
	b.positions[id] = cell
}

// Move relocates id; unknown IDs are inserted
func (b *BucketIndex) Move(id shared.EntityID, cell shared.Cell) {
	old, ok := b.positions[id]
	if !ok {
		b.Insert(id, cell)
		return
	}
	if old == cell {
		return
	}
	b.Remove(id)
	b.Insert(id, cell)
}

// Remove drops id; unknown IDs are ignored
func (b *BucketIndex) Remove(id shared.EntityID) {
	cell, ok := b.positions[id]
	if !ok {
		return
	}
	key := b.keyFor(cell)
	if bucket, ok := b.buckets[key]; ok {
		delete(bucket, id)
		if len(bucket) == 0 {
			delete(b.buckets, key)
		}
	}
	delete(b.positions, id)
}

// Position returns where id was last inserted
func (b *BucketIndex) Position(id shared.EntityID) (shared.Cell, bool) {
	c, ok := b.positions[id]
	return c, ok
}

// Len returns the number of indexed entities
func (b *BucketIndex) Len() int {
	return len(b.positions)
}

// QueryRadius returns IDs whose cell lies within radius tiles (euclidean) of center
func (b *BucketIndex) QueryRadius(center shared.Cell, radius int) []shared.EntityID {
	if radius < 0 {
		return nil
	}
	r2 := radius * radius
	area := shared.NewRectAround(center, radius)
	return b.collect(area, func(c shared.Cell) bool {
		return c.DistanceSquared(center) <= r2
	})
}

// QueryRect returns IDs whose cell lies inside area
func (b *BucketIndex) QueryRect(area shared.Rect) []shared.EntityID {
	return b.collect(area, area.Contains)
}

func (b *BucketIndex) collect(area shared.Rect, keep func(shared.Cell) bool) []shared.EntityID {
	lo := b.keyFor(area.Min)
	hi := b.keyFor(area.Max)

	var out []shared.EntityID
	for bx := lo.bx; bx <= hi.bx; bx++ {
		for by := lo.by; by <= hi.by; by++ {
			for id, c := range b.buckets[bucketKey{bx: bx, by: by}] {
				if keep(c) {
					out = append(out, id)
				}
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (b *BucketIndex) keyFor(c shared.Cell) bucketKey {
	return bucketKey{bx: floorDiv(c.X, b.size), by: floorDiv(c.Y, b.size)}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
