package scenario

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/andrescamacho/hauler-go/internal/adapters/grid"
	spatialindex "github.com/andrescamacho/hauler-go/internal/adapters/spatial"
	"github.com/andrescamacho/hauler-go/internal/application/scheduling"
	"github.com/andrescamacho/hauler-go/internal/domain/shared"
	"github.com/andrescamacho/hauler-go/internal/domain/work"
	"github.com/andrescamacho/hauler-go/internal/domain/world"
)

// Colony is a scenario turned into live state, ready for a scheduler
type Colony struct {
	Name  string
	Ticks int
	Grid  *grid.Grid
	World *world.World
	Board *work.Board

	names    map[string]shared.EntityID
	scenario *Scenario
}

// Build creates the grid, world and work board a scenario describes
func Build(sc *Scenario) (*Colony, error) {
	g, err := grid.Parse(sc.Map)
	if err != nil {
		return nil, fmt.Errorf("invalid map: %w", err)
	}
	ids := shared.NewIDAllocator()
	b := &builder{
		grid:  g,
		world: world.New(ids, spatialindex.NewBucketIndex(0)),
		names: make(map[string]shared.EntityID),
	}
	board := work.NewBoard(ids, spatialindex.NewBucketIndex(0))

	steps := []func(*Scenario) error{
		b.supervisors,
		b.stockpiles,
		b.items,
		b.mixers,
		b.tanks,
		b.buckets,
		b.wheelbarrows,
		b.blueprints,
		b.sites,
		b.nodes,
	}
	for _, step := range steps {
		if err := step(sc); err != nil {
			return nil, err
		}
	}

	return &Colony{
		Name:     sc.Name,
		Ticks:    sc.Ticks,
		Grid:     g,
		World:    b.world,
		Board:    board,
		names:    b.names,
		scenario: sc,
	}, nil
}

// Empty creates an open colony with no entities
func Empty(width, height int) (*Colony, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid colony size %dx%d", width, height)
	}
	rows := make([]string, height)
	for i := range rows {
		rows[i] = strings.Repeat(".", width)
	}
	return Build(&Scenario{Name: "empty", Map: rows})
}

// Lookup resolves a scenario name to its entity
func (c *Colony) Lookup(name string) (shared.EntityID, bool) {
	id, ok := c.names[name]
	return id, ok
}

// Names returns every named entity, sorted by name
func (c *Colony) Names() []string {
	out := make([]string, 0, len(c.names))
	for name := range c.names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// NewScheduler creates a scheduler over the colony
func (c *Colony) NewScheduler(deps scheduling.Deps) (*scheduling.Scheduler, error) {
	deps.World = c.World
	deps.Board = c.Board
	deps.Grid = c.Grid
	if deps.Paths == nil {
		deps.Paths = grid.NewPathfinder(c.Grid, 0)
	}
	return scheduling.NewScheduler(deps)
}

// Apply places the scenario's designations and transport requests through sched
func (c *Colony) Apply(ctx context.Context, sched *scheduling.Scheduler) error {
	for i, d := range c.scenario.Designations {
		target, err := c.resolve(d.Target)
		if err != nil {
			return fmt.Errorf("designation %d: %w", i, err)
		}
		owner, err := c.resolveOptional(d.Owner)
		if err != nil {
			return fmt.Errorf("designation %d: %w", i, err)
		}
		issuer, err := c.resolveOptional(d.Issuer)
		if err != nil {
			return fmt.Errorf("designation %d: %w", i, err)
		}
		cell, ok := c.World.CellOf(target)
		if !ok {
			return fmt.Errorf("designation %d: target %q has no cell", i, d.Target)
		}
		kind, _ := work.ParseKind(d.Kind)
		var resource shared.ResourceKind
		if item, ok := c.World.Item(target); ok {
			resource = item.Resource
		} else if node, ok := c.World.Node(target); ok {
			resource = node.Resource()
		}
		if _, err := sched.Designate(ctx, work.Designation{
			Kind:         kind,
			Cell:         cell,
			Target:       target,
			Owner:        owner,
			Issuer:       issuer,
			SlotCapacity: d.Slots,
			Priority:     d.Priority,
			Resource:     resource,
		}); err != nil {
			return fmt.Errorf("designation %d: %w", i, err)
		}
	}

	for i, r := range c.scenario.Requests {
		ids := make([]shared.EntityID, 3)
		for j, name := range []string{r.Source, r.Anchor, r.Issuer} {
			id, err := c.resolve(name)
			if err != nil {
				return fmt.Errorf("request %d: %w", i, err)
			}
			ids[j] = id
		}
		if _, err := sched.RequestTransport(ctx, ids[0], ids[1], ids[2], r.Priority); err != nil {
			return fmt.Errorf("request %d: %w", i, err)
		}
	}
	return nil
}

// Requests returns the number of transport requests Apply opens
func (c *Colony) Requests() int {
	return len(c.scenario.Requests)
}

func (c *Colony) resolve(name string) (shared.EntityID, error) {
	id, ok := c.names[name]
	if !ok {
		return shared.NoEntity, fmt.Errorf("unknown entity %q", name)
	}
	return id, nil
}

func (c *Colony) resolveOptional(name string) (shared.EntityID, error) {
	if name == "" {
		return shared.NoEntity, nil
	}
	return c.resolve(name)
}

// builder places scenario entities, resolving names as it goes
type builder struct {
	grid  *grid.Grid
	world *world.World
	names map[string]shared.EntityID
}

func (b *builder) name(name string, id shared.EntityID) {
	if name != "" {
		b.names[name] = id
	}
}

func (b *builder) cell(p Point, what string) (shared.Cell, error) {
	c := shared.Cell{X: p.X, Y: p.Y}
	if !b.grid.InBounds(c) {
		return c, fmt.Errorf("%s at %s is off the map", what, c)
	}
	return c, nil
}

func (b *builder) walkable(p Point, what string) (shared.Cell, error) {
	c, err := b.cell(p, what)
	if err != nil {
		return c, err
	}
	if !b.grid.IsWalkable(c) {
		return c, fmt.Errorf("%s at %s is not on walkable ground", what, c)
	}
	return c, nil
}

func (b *builder) owner(name string) (shared.EntityID, error) {
	if name == "" {
		return shared.NoEntity, nil
	}
	id, ok := b.names[name]
	if !ok {
		return shared.NoEntity, fmt.Errorf("unknown owner %q", name)
	}
	if _, ok := b.world.Supervisor(id); !ok {
		return shared.NoEntity, fmt.Errorf("owner %q is not a supervisor", name)
	}
	return id, nil
}

func (b *builder) supervisors(sc *Scenario) error {
	for _, def := range sc.Supervisors {
		cell, err := b.walkable(def.Cell, "supervisor "+def.Name)
		if err != nil {
			return err
		}
		sup := &world.Supervisor{Cell: cell}
		if def.Area != nil {
			sup.Area = shared.Rect{
				Min: shared.Cell{X: def.Area.Min.X, Y: def.Area.Min.Y},
				Max: shared.Cell{X: def.Area.Max.X, Y: def.Area.Max.Y},
			}
		}
		b.world.AddSupervisor(sup)
		b.name(def.Name, sup.ID)

		for _, ws := range def.Workers {
			wcell, err := b.walkable(ws.Cell, "worker of "+def.Name)
			if err != nil {
				return err
			}
			wk := b.world.AddWorker(&world.Worker{
				Supervisor: sup.ID,
				Pos:        wcell.Center(),
				Speed:      ws.Speed,
			})
			b.name(ws.Name, wk.ID)
		}
	}
	return nil
}

func (b *builder) stockpiles(sc *Scenario) error {
	for _, def := range sc.Stockpiles {
		cell, err := b.walkable(def.Cell, "stockpile "+def.Name)
		if err != nil {
			return err
		}
		owner, err := b.owner(def.Owner)
		if err != nil {
			return err
		}
		sp := b.world.AddStockpile(&world.Stockpile{
			Cell:     cell,
			Owner:    owner,
			Capacity: def.Capacity,
			Accepts:  shared.ResourceKind(def.Accepts),
		})
		b.name(def.Name, sp.ID)

		if def.Stored > 0 && def.Accepts == "" {
			return fmt.Errorf("stockpile %q: stored items need an accepted resource", def.Name)
		}
		for i := 0; i < def.Stored; i++ {
			if _, err := b.world.AddItem(&world.Item{Resource: sp.Accepts, Stockpile: sp.ID}); err != nil {
				return fmt.Errorf("stockpile %q: %w", def.Name, err)
			}
		}
	}
	return nil
}

func (b *builder) items(sc *Scenario) error {
	for _, def := range sc.Items {
		cell, err := b.walkable(def.Cell, "item "+def.Name)
		if err != nil {
			return err
		}
		n := max(def.Count, 1)
		for i := 0; i < n; i++ {
			item := b.world.SpawnItem(shared.ResourceKind(def.Resource), cell)
			if i == 0 {
				b.name(def.Name, item.ID)
			}
		}
	}
	return nil
}

func (b *builder) mixers(sc *Scenario) error {
	for _, def := range sc.Mixers {
		cell, err := b.walkable(def.Cell, "mixer "+def.Name)
		if err != nil {
			return err
		}
		owner, err := b.owner(def.Owner)
		if err != nil {
			return err
		}
		m := &world.Mixer{
			Cell:     cell,
			Owner:    owner,
			Capacity: make(map[shared.ResourceKind]int, len(def.Capacity)),
			Stored:   make(map[shared.ResourceKind]int, len(def.Stored)),
		}
		for r, n := range def.Capacity {
			m.Capacity[shared.ResourceKind(r)] = n
		}
		for r, n := range def.Stored {
			if !m.Accepts(shared.ResourceKind(r)) {
				return fmt.Errorf("mixer %q: stores %s but has no capacity for it", def.Name, r)
			}
			if n > m.Capacity[shared.ResourceKind(r)] {
				return fmt.Errorf("mixer %q: %d %s exceeds capacity", def.Name, n, r)
			}
			m.Stored[shared.ResourceKind(r)] = n
		}
		b.world.AddMixer(m)
		b.name(def.Name, m.ID)
	}
	return nil
}

func (b *builder) tanks(sc *Scenario) error {
	for _, def := range sc.Tanks {
		cell, err := b.walkable(def.Cell, "tank "+def.Name)
		if err != nil {
			return err
		}
		owner, err := b.owner(def.Owner)
		if err != nil {
			return err
		}
		t := b.world.AddTank(&world.Tank{Cell: cell, Owner: owner, Capacity: def.Capacity, Water: def.Water})
		b.name(def.Name, t.ID)
	}
	return nil
}

func (b *builder) buckets(sc *Scenario) error {
	for _, def := range sc.Buckets {
		cell, err := b.walkable(def.Cell, "bucket "+def.Name)
		if err != nil {
			return err
		}
		home, ok := b.names[def.Home]
		if !ok {
			return fmt.Errorf("bucket %q: unknown home tank %q", def.Name, def.Home)
		}
		if _, isTank := b.world.Tank(home); !isTank {
			return fmt.Errorf("bucket %q: home %q is not a tank", def.Name, def.Home)
		}
		bk := b.world.AddBucket(&world.Bucket{Home: home, Cell: cell, Capacity: def.Capacity})
		b.name(def.Name, bk.ID)
	}
	return nil
}

func (b *builder) wheelbarrows(sc *Scenario) error {
	for _, def := range sc.Wheelbarrows {
		cell, err := b.walkable(def.Cell, "wheelbarrow "+def.Name)
		if err != nil {
			return err
		}
		wb := b.world.AddWheelbarrow(&world.Wheelbarrow{Cell: cell, Capacity: def.Capacity})
		b.name(def.Name, wb.ID)
	}
	return nil
}

func (b *builder) blueprints(sc *Scenario) error {
	for _, def := range sc.Blueprints {
		owner, err := b.owner(def.Owner)
		if err != nil {
			return err
		}
		bp := &world.Blueprint{Owner: owner}
		for _, p := range def.Cells {
			cell, err := b.cell(p, "blueprint "+def.Name)
			if err != nil {
				return err
			}
			bp.Cells = append(bp.Cells, cell)
		}
		resources := make([]string, 0, len(def.Materials))
		for r := range def.Materials {
			resources = append(resources, r)
		}
		sort.Strings(resources)
		for _, r := range resources {
			bp.Materials = append(bp.Materials, world.Material{
				Resource: shared.ResourceKind(r),
				Required: def.Materials[r],
			})
		}
		b.world.AddBlueprint(bp)
		b.name(def.Name, bp.ID)
	}
	return nil
}

func (b *builder) sites(sc *Scenario) error {
	for _, def := range sc.Sites {
		owner, err := b.owner(def.Owner)
		if err != nil {
			return err
		}
		site := &world.ConstructionSite{Kind: world.SiteKind(def.Kind), Owner: owner}
		for _, p := range def.Tiles {
			cell, err := b.cell(p, "site "+def.Name)
			if err != nil {
				return err
			}
			site.Tiles = append(site.Tiles, world.SiteTile{Cell: cell})
		}
		b.world.AddSite(site)
		b.name(def.Name, site.ID)
	}
	return nil
}

func (b *builder) nodes(sc *Scenario) error {
	for _, def := range sc.Nodes {
		cell, err := b.cell(def.Cell, "node "+def.Name)
		if err != nil {
			return err
		}
		n := b.world.AddNode(&world.ResourceNode{
			Kind:      world.NodeKind(def.Kind),
			Cell:      cell,
			Remaining: def.Remaining,
			Yield:     def.Yield,
		})
		b.name(def.Name, n.ID)
	}
	return nil
}
