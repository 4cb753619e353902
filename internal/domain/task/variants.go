package task

import (
	"github.com/google/uuid"

	"github.com/andrescamacho/hauler-go/internal/domain/shared"
	"github.com/andrescamacho/hauler-go/internal/domain/work"
)

// Gather harvests a tree or rock node
type Gather struct {
	Base
	Node shared.EntityID
}

func NewGather(workItem, supervisor, node shared.EntityID) *Gather {
	return &Gather{Base: newBase(work.KindGather, workItem, supervisor, node), Node: node}
}

// Haul carries one item to a stockpile
type Haul struct {
	Base
	Item      shared.EntityID
	Stockpile shared.EntityID
	Resource  shared.ResourceKind
}

func NewHaul(workItem, supervisor, item, stockpile shared.EntityID, resource shared.ResourceKind) *Haul {
	return &Haul{
		Base:      newBase(work.KindHaul, workItem, supervisor, item),
		Item:      item,
		Stockpile: stockpile,
		Resource:  resource,
	}
}

// HaulToBlueprint carries one item to a blueprint or construction site
type HaulToBlueprint struct {
	Base
	Item     shared.EntityID
	Anchor   shared.EntityID
	Resource shared.ResourceKind
}

func NewHaulToBlueprint(workItem, supervisor, item, anchor shared.EntityID, resource shared.ResourceKind) *HaulToBlueprint {
	return &HaulToBlueprint{
		Base:     newBase(work.KindHaulToBlueprint, workItem, supervisor, anchor),
		Item:     item,
		Anchor:   anchor,
		Resource: resource,
	}
}

// HaulToMixer carries one sand or rock item to a mixer
type HaulToMixer struct {
	Base
	Item     shared.EntityID
	Mixer    shared.EntityID
	Resource shared.ResourceKind
}

func NewHaulToMixer(workItem, supervisor, item, mixer shared.EntityID, resource shared.ResourceKind) *HaulToMixer {
	return &HaulToMixer{
		Base:     newBase(work.KindHaulToMixer, workItem, supervisor, mixer),
		Item:     item,
		Mixer:    mixer,
		Resource: resource,
	}
}

// GatherWater fetches a tank's bucket, fills it at open water and pours it into the tank
type GatherWater struct {
	Base
	Bucket    shared.EntityID
	Tank      shared.EntityID
	WaterCell shared.Cell
	Amount    int
}

func NewGatherWater(workItem, supervisor, bucket, tank shared.EntityID, waterCell shared.Cell, amount int) *GatherWater {
	return &GatherWater{
		Base:      newBase(work.KindGatherWater, workItem, supervisor, tank),
		Bucket:    bucket,
		Tank:      tank,
		WaterCell: waterCell,
		Amount:    amount,
	}
}

// HaulWaterToMixer draws water from a tank with one of its buckets and pours it into a mixer
type HaulWaterToMixer struct {
	Base
	Bucket shared.EntityID
	Tank   shared.EntityID
	Mixer  shared.EntityID
	Amount int
}

func NewHaulWaterToMixer(workItem, supervisor, bucket, tank, mixer shared.EntityID, amount int) *HaulWaterToMixer {
	return &HaulWaterToMixer{
		Base:   newBase(work.KindHaulWaterToMixer, workItem, supervisor, mixer),
		Bucket: bucket,
		Tank:   tank,
		Mixer:  mixer,
		Amount: amount,
	}
}

// CollectSand digs one unit from a sand pile
type CollectSand struct {
	Base
	Pile shared.EntityID
}

func NewCollectSand(workItem, supervisor, pile shared.EntityID) *CollectSand {
	return &CollectSand{Base: newBase(work.KindCollectSand, workItem, supervisor, pile), Pile: pile}
}

// CollectBone digs one unit from a bone pile
type CollectBone struct {
	Base
	Pile shared.EntityID
}

func NewCollectBone(workItem, supervisor, pile shared.EntityID) *CollectBone {
	return &CollectBone{Base: newBase(work.KindCollectBone, workItem, supervisor, pile), Pile: pile}
}

// Refine turns one recipe of mixer inputs into mud
type Refine struct {
	Base
	Mixer shared.EntityID
}

func NewRefine(workItem, supervisor, mixer shared.EntityID) *Refine {
	return &Refine{Base: newBase(work.KindRefine, workItem, supervisor, mixer), Mixer: mixer}
}

// Build raises a blueprint whose materials are all delivered
type Build struct {
	Base
	Blueprint shared.EntityID
}

func NewBuild(workItem, supervisor, blueprint shared.EntityID) *Build {
	return &Build{Base: newBase(work.KindBuild, workItem, supervisor, blueprint), Blueprint: blueprint}
}

// TileWork is the shared shape of per-tile construction tasks
type TileWork struct {
	Base
	Site shared.EntityID
	Tile shared.Cell
}

// ReinforceFloor lays bone into one floor tile
type ReinforceFloor struct{ TileWork }

// PourFloor pours mud over one reinforced floor tile
type PourFloor struct{ TileWork }

// CoatWall coats one wall tile with mud
type CoatWall struct{ TileWork }

func newTileWork(kind work.Kind, workItem, supervisor, site shared.EntityID, tile shared.Cell) TileWork {
	return TileWork{Base: newBase(kind, workItem, supervisor, site), Site: site, Tile: tile}
}

func NewReinforceFloor(workItem, supervisor, site shared.EntityID, tile shared.Cell) *ReinforceFloor {
	return &ReinforceFloor{newTileWork(work.KindReinforceFloor, workItem, supervisor, site, tile)}
}

func NewPourFloor(workItem, supervisor, site shared.EntityID, tile shared.Cell) *PourFloor {
	return &PourFloor{newTileWork(work.KindPourFloor, workItem, supervisor, site, tile)}
}

func NewCoatWall(workItem, supervisor, site shared.EntityID, tile shared.Cell) *CoatWall {
	return &CoatWall{newTileWork(work.KindCoatWall, workItem, supervisor, site, tile)}
}

// TileTask exposes the site and tile of any per-tile construction task
type TileTask interface {
	AssignedTask
	TileSite() shared.EntityID
	TileCell() shared.Cell
}

func (t *TileWork) TileSite() shared.EntityID { return t.Site }
func (t *TileWork) TileCell() shared.Cell     { return t.Tile }

// HaulWithWheelbarrow moves a leased batch of items to a stockpile in one trip
type HaulWithWheelbarrow struct {
	Base
	Lease       uuid.UUID
	Wheelbarrow shared.EntityID
	Items       []shared.EntityID
	Destination shared.EntityID
	Resource    shared.ResourceKind
	// Loaded counts items already in the wheelbarrow
	Loaded int
}

func NewHaulWithWheelbarrow(workItem, supervisor shared.EntityID, lease uuid.UUID, wheelbarrow shared.EntityID, items []shared.EntityID, destination shared.EntityID, resource shared.ResourceKind) *HaulWithWheelbarrow {
	batch := make([]shared.EntityID, len(items))
	copy(batch, items)
	return &HaulWithWheelbarrow{
		Base:        newBase(work.KindHaulWithWheelbarrow, workItem, supervisor, destination),
		Lease:       lease,
		Wheelbarrow: wheelbarrow,
		Items:       batch,
		Destination: destination,
		Resource:    resource,
	}
}

// NextItem returns the next batch item still to load
func (h *HaulWithWheelbarrow) NextItem() (shared.EntityID, bool) {
	if h.Loaded >= len(h.Items) {
		return shared.NoEntity, false
	}
	return h.Items[h.Loaded], true
}

// SkipItem drops a batch item that vanished before it was loaded
func (h *HaulWithWheelbarrow) SkipItem() {
	if h.Loaded < len(h.Items) {
		h.Items = append(h.Items[:h.Loaded], h.Items[h.Loaded+1:]...)
	}
}
