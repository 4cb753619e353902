package scheduling

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/andrescamacho/hauler-go/internal/application/common"
	"github.com/andrescamacho/hauler-go/internal/domain/ledger"
	"github.com/andrescamacho/hauler-go/internal/domain/shared"
	"github.com/andrescamacho/hauler-go/internal/domain/spatial"
	"github.com/andrescamacho/hauler-go/internal/domain/task"
	"github.com/andrescamacho/hauler-go/internal/domain/transport"
	"github.com/andrescamacho/hauler-go/internal/domain/work"
	"github.com/andrescamacho/hauler-go/internal/domain/world"
)

// Status is the result of stepping a task for one tick
type Status int

const (
	StatusRunning Status = iota
	StatusCompleted
	StatusAborted
)

// Outcome is what a phase handler reports back to Maintain
type Outcome struct {
	Status Status
	Reason task.AbortReason
	// RemoveWorkItem asks Maintain to delete the work item once the claim is released
	RemoveWorkItem bool
}

func running() Outcome { return Outcome{Status: StatusRunning} }

func completed(removeItem bool) Outcome {
	return Outcome{Status: StatusCompleted, RemoveWorkItem: removeItem}
}

func aborted(reason task.AbortReason) Outcome {
	return Outcome{Status: StatusAborted, Reason: reason}
}

// StepContext gives a phase handler the worker, its task and the state it may mutate
type StepContext struct {
	World  *world.World
	Ledger *ledger.Ledger
	Leases *transport.LeaseRegistry
	Grid   spatial.Walkability
	Paths  spatial.Reachability
	Tuning Tuning
	Now    time.Time
	Worker *world.Worker
	Task   task.AssignedTask
}

// settle retires held reservations matching match in the ledger
func (c *StepContext) settle(match func(ledger.ReservationRequest) bool) {
	// settled requests come from held reserves, which are always well formed
	_ = c.Ledger.ApplyAll(c.Task.Settle(match))
}

// work accumulates action progress and reports whether the action finished
func (c *StepContext) work() bool {
	return c.Task.AddProgress(c.Tuning.rate(c.Task.Kind()))
}

// advance moves the task forward; a refused transition aborts it
func (c *StepContext) advance(to task.Phase) (Outcome, bool) {
	if err := c.Task.Advance(to); err != nil {
		return aborted(task.AbortPhaseTransitions), false
	}
	return running(), true
}

// travel moves the worker one tick towards footprint. It reports arrival,
// or an abort outcome when no route exists.
func (c *StepContext) travel(footprint []shared.Cell) (bool, *Outcome) {
	if len(footprint) == 0 {
		o := aborted(task.AbortTargetVanished)
		return false, &o
	}
	goals := spatial.ApproachCells(c.Grid, footprint)
	if len(goals) == 0 {
		o := aborted(task.AbortUnreachable)
		return false, &o
	}

	here := c.Worker.Cell()
	threshold := c.Tuning.ArrivalThreshold
	for _, g := range goals {
		if g == here && c.Worker.Pos.DistanceSquared(here.Center()) < threshold*threshold {
			c.Task.Nav().Reset()
			return true, nil
		}
	}

	nav := c.Task.Nav()
	if nav.IsStale(footprint[0], c.Tuning.PathDriftTolerance) {
		start, ok := c.Grid.NearestWalkable(here)
		if !ok {
			o := aborted(task.AbortUnreachable)
			return false, &o
		}
		path, ok := c.Paths.FindPathToAny(start, goals)
		if !ok {
			o := aborted(task.AbortUnreachable)
			return false, &o
		}
		if len(path) == 0 {
			path = []shared.Cell{start}
		}
		nav.Path = path
		nav.Goal = footprint[0]
		nav.GoalSet = true
	}

	speed := c.Worker.Speed
	if speed <= 0 {
		speed = world.DefaultWorkerSpeed
	}
	next := nav.Path[0].Center()
	pos := c.Worker.Pos.MoveTowards(next, speed)
	c.World.MoveWorker(c.Worker.ID, pos)
	if pos.DistanceSquared(next) < 1e-9 {
		nav.Path = nav.Path[1:]
	}
	return false, nil
}

// travelTo moves towards the footprint of entity id
func (c *StepContext) travelTo(id shared.EntityID) (bool, *Outcome) {
	cells, ok := c.World.Footprint(id)
	if !ok {
		o := aborted(task.AbortTargetVanished)
		return false, &o
	}
	return c.travel(cells)
}

// PhaseHandler steps one task variant
type PhaseHandler interface {
	Kind() work.Kind
	Step(ctx context.Context, c *StepContext) Outcome
}

// HandlerRegistry maps task kinds to their handlers
type HandlerRegistry struct {
	handlers map[work.Kind]PhaseHandler
}

// NewHandlerRegistry creates an empty registry
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{handlers: make(map[work.Kind]PhaseHandler)}
}

// Register adds a handler. A kind may only be registered once.
func (r *HandlerRegistry) Register(h PhaseHandler) error {
	if _, exists := r.handlers[h.Kind()]; exists {
		return fmt.Errorf("phase handler already registered for %s", h.Kind())
	}
	r.handlers[h.Kind()] = h
	return nil
}

// Get returns the handler for kind
func (r *HandlerRegistry) Get(kind work.Kind) (PhaseHandler, bool) {
	h, ok := r.handlers[kind]
	return h, ok
}

// Has reports whether kind has a handler
func (r *HandlerRegistry) Has(kind work.Kind) bool {
	_, ok := r.handlers[kind]
	return ok
}

// DefaultHandlers registers a handler for every task variant
func DefaultHandlers() *HandlerRegistry {
	r := NewHandlerRegistry()
	for _, h := range []PhaseHandler{
		harvestHandler{kind: work.KindGather},
		harvestHandler{kind: work.KindCollectSand},
		harvestHandler{kind: work.KindCollectBone},
		haulHandler{},
		deliverHandler{kind: work.KindHaulToBlueprint},
		deliverHandler{kind: work.KindHaulToMixer},
		gatherWaterHandler{},
		waterToMixerHandler{},
		refineHandler{},
		buildHandler{},
		tileHandler{kind: work.KindReinforceFloor},
		tileHandler{kind: work.KindPourFloor},
		tileHandler{kind: work.KindCoatWall},
		wheelbarrowHandler{},
	} {
		_ = r.Register(h)
	}
	return r
}

// executeAssignments applies a decision against the authoritative state.
// Each intent is re-validated; one that lost its slot is skipped.
func (s *Scheduler) executeAssignments(ctx context.Context, decision Decision) int {
	logger := common.LoggerFromContext(ctx)
	applied := 0
	for _, a := range decision.Assignments {
		if err := s.apply(a); err != nil {
			logger.Log(common.LevelDebug, "Assignment skipped", map[string]interface{}{
				"worker":    a.Worker.String(),
				"work_item": a.WorkItem.String(),
				"kind":      string(a.Kind),
				"error":     err.Error(),
			})
			continue
		}
		applied++
		s.metrics.RecordAssignment(a.Kind)
		s.emit(ctx, task.SignalAssigned, a.Worker, a.Task, "")
		logger.Log(common.LevelInfo, "Task assigned", map[string]interface{}{
			"worker":    a.Worker.String(),
			"work_item": a.WorkItem.String(),
			"kind":      string(a.Kind),
			"committed": a.Committed,
		})
	}
	return applied
}

func (s *Scheduler) apply(a Assignment) error {
	if _, ok := s.world.Worker(a.Worker); !ok {
		return &world.ErrEntityNotFound{Kind: "worker", ID: a.Worker}
	}
	if s.tasks[a.Worker] != nil {
		return fmt.Errorf("worker %s is already busy", a.Worker)
	}
	item, err := s.board.MustGet(a.WorkItem)
	if err != nil {
		return err
	}
	for _, op := range a.Ops {
		if err := op.Validate(); err != nil {
			return err
		}
	}
	if err := item.Claim(a.Supervisor); err != nil {
		return err
	}

	if err := s.bindLease(a); err != nil {
		item.Unclaim()
		return err
	}
	// ops were validated above, so the batch applies whole
	_ = s.ledger.ApplyAll(a.Ops)
	a.Task.Hold(a.Ops...)
	s.tasks[a.Worker] = a.Task

	if item.HasRequest() {
		if req, ok := s.requests.Get(item.Request()); ok {
			req.SetDemand(req.Demand().Desired, item.Claims())
		}
	}
	return nil
}

// bindLease mints or takes the wheelbarrow lease a batch haul rides on
func (s *Scheduler) bindLease(a Assignment) error {
	trip, ok := a.Task.(*task.HaulWithWheelbarrow)
	if !ok {
		return nil
	}
	now := s.clock.Now()
	if a.LeasePlan != nil {
		p := a.LeasePlan
		lease, err := transport.NewWheelbarrowLease(p.Wheelbarrow, p.Items, p.Destination, p.Resource,
			s.tuning.WheelbarrowMinBatch, now, s.tuning.LeaseDuration)
		if err != nil {
			return err
		}
		s.leases.Add(lease)
		lease.Hold(a.Worker)
		trip.Lease = lease.ID()
		return nil
	}
	lease, ok := s.leases.Get(a.Lease)
	if !ok {
		return fmt.Errorf("lease %s no longer exists", a.Lease)
	}
	if lease.IsHeld() {
		return fmt.Errorf("lease %s already held", a.Lease)
	}
	if _, stale := lease.StaleCheck(now, s.world.Exists); stale {
		return fmt.Errorf("lease %s went stale", a.Lease)
	}
	lease.Prune(s.world.Exists)
	lease.Hold(a.Worker)
	trip.Lease = lease.ID()
	return nil
}

// maintainTasks steps every running task once, in worker ID order
func (s *Scheduler) maintainTasks(ctx context.Context) (completedN, abortedN int) {
	workers := make([]shared.EntityID, 0, len(s.tasks))
	for id := range s.tasks {
		workers = append(workers, id)
	}
	sort.Slice(workers, func(i, j int) bool { return workers[i] < workers[j] })

	for _, id := range workers {
		t := s.tasks[id]
		if t == nil {
			continue
		}
		wk, ok := s.world.Worker(id)
		if !ok {
			s.abort(ctx, id, t, task.AbortHolderGone)
			abortedN++
			continue
		}
		handler, ok := s.handlers.Get(t.Kind())
		if !ok {
			s.abort(ctx, id, t, task.AbortPhaseTransitions)
			abortedN++
			continue
		}
		outcome := handler.Step(ctx, &StepContext{
			World:  s.world,
			Ledger: s.ledger,
			Leases: s.leases,
			Grid:   s.grid,
			Paths:  s.paths,
			Tuning: s.tuning,
			Now:    s.clock.Now(),
			Worker: wk,
			Task:   t,
		})
		switch outcome.Status {
		case StatusCompleted:
			s.complete(ctx, id, t, outcome.RemoveWorkItem)
			completedN++
		case StatusAborted:
			s.abort(ctx, id, t, outcome.Reason)
			abortedN++
		}
	}
	return completedN, abortedN
}

// complete ends a task that ran to its last phase. Load was consumed by the
// final action so nothing is dropped.
func (s *Scheduler) complete(ctx context.Context, workerID shared.EntityID, t task.AssignedTask, removeItem bool) {
	// released requests are inverses of held reserves
	_ = s.ledger.ApplyAll(t.ReleaseAll())
	delete(s.tasks, workerID)
	s.releaseClaim(t, removeItem)
	if trip, ok := t.(*task.HaulWithWheelbarrow); ok {
		s.leases.Remove(trip.Lease)
	}

	s.metrics.RecordCompletion(t.Kind())
	s.emit(ctx, task.SignalCompleted, workerID, t, "")
	common.LoggerFromContext(ctx).Log(common.LevelInfo, "Task completed", map[string]interface{}{
		"worker":    workerID.String(),
		"work_item": t.WorkItem().String(),
		"kind":      string(t.Kind()),
		"target":    t.Target().String(),
	})
}

// abort abandons a task from any phase: every held reservation is released,
// carried load is dropped where the worker stands and the claim is returned.
func (s *Scheduler) abort(ctx context.Context, workerID shared.EntityID, t task.AssignedTask, reason task.AbortReason) {
	phase := t.Phase()
	_ = s.ledger.ApplyAll(t.ReleaseAll())
	delete(s.tasks, workerID)
	if _, ok := s.world.Worker(workerID); ok {
		s.world.DropLoad(workerID)
	}
	if trip, ok := t.(*task.HaulWithWheelbarrow); ok {
		if lease, ok := s.leases.Get(trip.Lease); ok {
			lease.Unhold()
		}
	}
	s.releaseClaim(t, !s.world.Exists(t.Target()))

	s.metrics.RecordAbandon(t.Kind(), reason)
	s.emit(ctx, task.SignalAbandoned, workerID, t, reason)
	common.LoggerFromContext(ctx).Log(common.LevelWarn, "Task abandoned", map[string]interface{}{
		"worker":    workerID.String(),
		"work_item": t.WorkItem().String(),
		"kind":      string(t.Kind()),
		"phase":     string(phase),
		"reason":    string(reason),
	})
}

// releaseClaim returns the task's slot on its work item and removes the item
// when asked to. Request-backed items belong to their request and stay.
func (s *Scheduler) releaseClaim(t task.AssignedTask, remove bool) {
	item, ok := s.board.Get(t.WorkItem())
	if !ok {
		return
	}
	item.Unclaim()
	if item.HasRequest() {
		if req, ok := s.requests.Get(item.Request()); ok {
			req.SetDemand(req.Demand().Desired, item.Claims())
		}
	}
	if remove && item.Claims() == 0 && !item.Kind().IsRequestBacked() {
		s.board.Remove(item.ID())
	}
}

func (s *Scheduler) emit(ctx context.Context, typ task.SignalType, workerID shared.EntityID, t task.AssignedTask, reason task.AbortReason) {
	s.sink.Publish(ctx, task.Signal{
		Type:       typ,
		Worker:     workerID,
		Supervisor: t.Supervisor(),
		WorkItem:   t.WorkItem(),
		Kind:       t.Kind(),
		Target:     t.Target(),
		Phase:      t.Phase(),
		Reason:     reason,
		Tick:       s.clock.Tick(),
		At:         s.clock.Now(),
	})
}
