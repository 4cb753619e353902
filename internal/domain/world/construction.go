package world

import "github.com/andrescamacho/hauler-go/internal/domain/shared"

// Material tracks one resource a blueprint needs
type Material struct {
	Resource  shared.ResourceKind
	Required  int
	Delivered int
}

// Remaining returns the quantity still needed
func (m Material) Remaining() int {
	remaining := m.Required - m.Delivered
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsComplete returns true if the material is fully delivered
func (m Material) IsComplete() bool {
	return m.Delivered >= m.Required
}

// Blueprint is a planned building occupying one or more cells. Materials are
// hauled to it; once all are delivered workers build it up to full progress.
type Blueprint struct {
	ID        shared.EntityID
	Cells     []shared.Cell
	Owner     shared.EntityID
	Materials []Material
	Progress  float64
}

// Material returns the entry for r, or nil
func (b *Blueprint) Material(r shared.ResourceKind) *Material {
	for i := range b.Materials {
		if b.Materials[i].Resource == r {
			return &b.Materials[i]
		}
	}
	return nil
}

// Needed returns units of r still to deliver, ignoring reservations
func (b *Blueprint) Needed(r shared.ResourceKind) int {
	m := b.Material(r)
	if m == nil {
		return 0
	}
	return m.Remaining()
}

// Deliver records n units of r
func (b *Blueprint) Deliver(r shared.ResourceKind, n int) error {
	m := b.Material(r)
	if m == nil {
		return &ErrRejectedResource{ContainerID: b.ID, Resource: r}
	}
	if n > m.Remaining() {
		return &ErrCapacity{ContainerID: b.ID, Resource: r, Requested: n, Available: m.Remaining()}
	}
	m.Delivered += n
	return nil
}

// MaterialsComplete reports whether building may start
func (b *Blueprint) MaterialsComplete() bool {
	for _, m := range b.Materials {
		if !m.IsComplete() {
			return false
		}
	}
	return true
}

// Anchor returns the first footprint cell, used as the work item cell
func (b *Blueprint) Anchor() shared.Cell {
	if len(b.Cells) == 0 {
		return shared.Cell{}
	}
	return b.Cells[0]
}

// SiteKind distinguishes floor and wall construction
type SiteKind string

const (
	SiteKindFloor SiteKind = "FLOOR"
	SiteKindWall  SiteKind = "WALL"
)

// SitePhase is the stage of a construction site. Floors go Reinforcing then
// Pouring; walls only Coating. Every site ends Complete.
type SitePhase string

const (
	SitePhaseReinforcing SitePhase = "REINFORCING"
	SitePhasePouring     SitePhase = "POURING"
	SitePhaseCoating     SitePhase = "COATING"
	SitePhaseComplete    SitePhase = "COMPLETE"
)

var sitePhaseOrder = map[SiteKind][]SitePhase{
	SiteKindFloor: {SitePhaseReinforcing, SitePhasePouring, SitePhaseComplete},
	SiteKindWall:  {SitePhaseCoating, SitePhaseComplete},
}

// FirstSitePhase returns the phase a new site of kind starts in
func FirstSitePhase(kind SiteKind) SitePhase {
	return sitePhaseOrder[kind][0]
}

// PhaseMaterial returns the resource a phase consumes per tile
func PhaseMaterial(p SitePhase) shared.ResourceKind {
	switch p {
	case SitePhaseReinforcing:
		return shared.ResourceBone
	case SitePhasePouring, SitePhaseCoating:
		return shared.ResourceMud
	default:
		return shared.ResourceNone
	}
}

// SiteTile is one cell of a construction site
type SiteTile struct {
	Cell shared.Cell
	Done bool
}

// ConstructionSite is a multi-tile floor or wall being finished in phases
type ConstructionSite struct {
	ID        shared.EntityID
	Kind      SiteKind
	Phase     SitePhase
	Owner     shared.EntityID
	Tiles     []SiteTile
	Delivered map[shared.ResourceKind]int
	Consumed  map[shared.ResourceKind]int
}

// Cells returns the footprint
func (s *ConstructionSite) Cells() []shared.Cell {
	out := make([]shared.Cell, len(s.Tiles))
	for i, t := range s.Tiles {
		out[i] = t.Cell
	}
	return out
}

// Tile returns the tile at c, or nil
func (s *ConstructionSite) Tile(c shared.Cell) *SiteTile {
	for i := range s.Tiles {
		if s.Tiles[i].Cell == c {
			return &s.Tiles[i]
		}
	}
	return nil
}

// PendingTiles lists tiles not yet done in the current phase
func (s *ConstructionSite) PendingTiles() []shared.Cell {
	var out []shared.Cell
	for _, t := range s.Tiles {
		if !t.Done {
			out = append(out, t.Cell)
		}
	}
	return out
}

// Material returns the resource the current phase needs
func (s *ConstructionSite) Material() shared.ResourceKind {
	return PhaseMaterial(s.Phase)
}

// Needed returns units of r the current phase still needs delivered
func (s *ConstructionSite) Needed(r shared.ResourceKind) int {
	if r == shared.ResourceNone || r != s.Material() {
		return 0
	}
	n := len(s.Tiles) - s.Delivered[r]
	if n < 0 {
		return 0
	}
	return n
}

// Available returns delivered material not yet worked into a tile
func (s *ConstructionSite) Available(r shared.ResourceKind) int {
	n := s.Delivered[r] - s.Consumed[r]
	if n < 0 {
		return 0
	}
	return n
}

// Deliver records n units of r for the current phase
func (s *ConstructionSite) Deliver(r shared.ResourceKind, n int) error {
	if r != s.Material() {
		return &ErrRejectedResource{ContainerID: s.ID, Resource: r}
	}
	if need := s.Needed(r); n > need {
		return &ErrCapacity{ContainerID: s.ID, Resource: r, Requested: n, Available: need}
	}
	s.Delivered[r] += n
	return nil
}

// FinishTile consumes one unit of the phase material and marks c done
func (s *ConstructionSite) FinishTile(c shared.Cell) error {
	tile := s.Tile(c)
	if tile == nil || tile.Done {
		return &ErrEntityNotFound{Kind: "pending site tile", ID: s.ID}
	}
	r := s.Material()
	if s.Available(r) < 1 {
		return &ErrCapacity{ContainerID: s.ID, Resource: r, Requested: 1, Available: 0}
	}
	s.Consumed[r]++
	tile.Done = true
	return nil
}

// AllTilesDone reports whether the current phase can advance
func (s *ConstructionSite) AllTilesDone() bool {
	for _, t := range s.Tiles {
		if !t.Done {
			return false
		}
	}
	return true
}

// NextPhase returns the phase after the current one
func (s *ConstructionSite) NextPhase() SitePhase {
	order := sitePhaseOrder[s.Kind]
	for i, p := range order {
		if p == s.Phase && i+1 < len(order) {
			return order[i+1]
		}
	}
	return SitePhaseComplete
}

// AdvanceTo moves the site forward exactly one phase and resets tile progress
func (s *ConstructionSite) AdvanceTo(next SitePhase) error {
	if s.Phase == SitePhaseComplete || next != s.NextPhase() {
		return &ErrInvalidSitePhaseTransition{SiteID: s.ID, From: s.Phase, To: next}
	}
	s.Phase = next
	for i := range s.Tiles {
		s.Tiles[i].Done = false
	}
	return nil
}

// NodeKind is a harvestable resource source
type NodeKind string

const (
	NodeTree     NodeKind = "TREE"
	NodeRock     NodeKind = "ROCK"
	NodeSandPile NodeKind = "SAND_PILE"
	NodeBonePile NodeKind = "BONE_PILE"
)

// NodeResource maps a node kind to the resource it yields
func NodeResource(k NodeKind) shared.ResourceKind {
	switch k {
	case NodeTree:
		return shared.ResourceWood
	case NodeRock:
		return shared.ResourceRock
	case NodeSandPile:
		return shared.ResourceSand
	case NodeBonePile:
		return shared.ResourceBone
	default:
		return shared.ResourceNone
	}
}

// ResourceNode is something workers harvest: each harvest yields Yield items
// and uses up one of Remaining. The node disappears at zero.
type ResourceNode struct {
	ID        shared.EntityID
	Kind      NodeKind
	Cell      shared.Cell
	Remaining int
	Yield     int
}

// Resource returns what the node produces
func (n *ResourceNode) Resource() shared.ResourceKind {
	return NodeResource(n.Kind)
}
