package scheduling

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/andrescamacho/hauler-go/internal/application/common"
	"github.com/andrescamacho/hauler-go/internal/domain/ledger"
	"github.com/andrescamacho/hauler-go/internal/domain/shared"
	"github.com/andrescamacho/hauler-go/internal/domain/spatial"
	"github.com/andrescamacho/hauler-go/internal/domain/task"
	"github.com/andrescamacho/hauler-go/internal/domain/transport"
	"github.com/andrescamacho/hauler-go/internal/domain/work"
	"github.com/andrescamacho/hauler-go/internal/domain/world"
)

// Deps are the collaborators a Scheduler is built from
type Deps struct {
	World *world.World
	Board *work.Board
	Grid  spatial.Walkability
	Paths spatial.Reachability
	Clock *shared.TickClock

	Tuning   Tuning
	Sink     common.EventSink
	Metrics  MetricsRecorder
	Policies *PolicyRegistry
	Handlers *HandlerRegistry
}

// Decision is the output of one Decide pass: assignment intents plus probe
// accounting. Producing it has no effect outside the pass's shadow.
type Decision struct {
	Assignments []Assignment
	Probes      int
	Deferred    int
	Rejections  int
}

// TickReport summarises one Tick
type TickReport struct {
	Tick           uint64
	Designated     int
	Assigned       int
	Completed      int
	Abandoned      int
	Probes         int
	Deferred       int
	Rejections     int
	LeasesCleaned  int
	RequestsClosed int
}

// Scheduler owns the ledger and registries and runs the
// Perceive, Decide, Execute, Maintain pipeline over a world
type Scheduler struct {
	mu sync.Mutex

	world  *world.World
	board  *work.Board
	grid   spatial.Walkability
	paths  spatial.Reachability
	clock  *shared.TickClock
	tuning Tuning

	sink    common.EventSink
	metrics MetricsRecorder

	ledger   *ledger.Ledger
	requests *transport.Registry
	leases   *transport.LeaseRegistry
	tasks    map[shared.EntityID]task.AssignedTask

	finder     *CandidateFinder
	scorer     *Scorer
	dispatcher *Dispatcher
	handlers   *HandlerRegistry
}

// NewScheduler validates deps and creates a scheduler with an empty ledger
func NewScheduler(deps Deps) (*Scheduler, error) {
	switch {
	case deps.World == nil:
		return nil, shared.NewValidationError("world", "world is required")
	case deps.Board == nil:
		return nil, shared.NewValidationError("board", "work board is required")
	case deps.Grid == nil:
		return nil, shared.NewValidationError("grid", "walkability grid is required")
	case deps.Paths == nil:
		return nil, shared.NewValidationError("paths", "reachability oracle is required")
	}
	if deps.Tuning.PathCheckBudget < 1 {
		return nil, shared.NewValidationError("path_check_budget", "must be at least 1")
	}
	if deps.Clock == nil {
		deps.Clock = shared.NewTickClock(time.Now(), 100*time.Millisecond)
	}
	if deps.Sink == nil {
		deps.Sink = common.SinkFunc(func(context.Context, task.Signal) {})
	}
	if deps.Metrics == nil {
		deps.Metrics = noopMetrics{}
	}
	if deps.Policies == nil {
		deps.Policies = DefaultPolicies()
	}
	if deps.Handlers == nil {
		deps.Handlers = DefaultHandlers()
	}
	if deps.Tuning.KindBonus == nil {
		deps.Tuning.KindBonus = DefaultKindBonus()
	}

	return &Scheduler{
		world:      deps.World,
		board:      deps.Board,
		grid:       deps.Grid,
		paths:      deps.Paths,
		clock:      deps.Clock,
		tuning:     deps.Tuning,
		sink:       deps.Sink,
		metrics:    deps.Metrics,
		ledger:     ledger.New(),
		requests:   transport.NewRegistry(),
		leases:     transport.NewLeaseRegistry(),
		tasks:      make(map[shared.EntityID]task.AssignedTask),
		finder:     NewCandidateFinder(deps.Board, deps.World, deps.Grid, deps.Paths),
		scorer:     NewScorer(deps.World, deps.Tuning.KindBonus),
		dispatcher: NewDispatcher(deps.Policies),
		handlers:   deps.Handlers,
	}, nil
}

// Tick runs one full pipeline pass and advances simulated time
func (s *Scheduler) Tick(ctx context.Context) TickReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	started := time.Now()
	ctx = common.WithTick(ctx, s.clock.Tick())
	report := TickReport{Tick: s.clock.Tick()}

	report.Designated = s.perceive(ctx)
	decision := s.decide(ctx)
	report.Probes = decision.Probes
	report.Deferred = decision.Deferred
	report.Rejections = decision.Rejections
	report.Assigned = s.executeAssignments(ctx, decision)
	report.Completed, report.Abandoned, report.LeasesCleaned, report.RequestsClosed = s.maintain(ctx)

	s.clock.Advance()
	s.metrics.RecordTick(time.Since(started), report)
	s.metrics.RecordLedger(s.ledger.Totals())
	s.metrics.RecordBoard(s.board.CountByKind(), s.requests.Len(), s.leases.Len())

	if report.Assigned+report.Completed+report.Abandoned > 0 {
		common.LoggerFromContext(ctx).Log(common.LevelDebug, "Tick finished", map[string]interface{}{
			"tick":      report.Tick,
			"assigned":  report.Assigned,
			"completed": report.Completed,
			"abandoned": report.Abandoned,
			"deferred":  report.Deferred,
		})
	}
	return report
}

// Perceive refreshes designations and transport demand from world state.
// It returns the number of work items created.
func (s *Scheduler) Perceive(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.perceive(ctx)
}

// Decide computes assignment intents for idle workers without touching the ledger
func (s *Scheduler) Decide(ctx context.Context) Decision {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.decide(ctx)
}

// Execute applies a decision and returns how many intents took effect
func (s *Scheduler) Execute(ctx context.Context, decision Decision) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.executeAssignments(ctx, decision)
}

// Maintain steps running tasks, clears stale leases (aborting trips on
// expired ones) and closes dead requests
func (s *Scheduler) Maintain(ctx context.Context) (completedN, abandonedN int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	completedN, abandonedN, _, _ = s.maintain(ctx)
	return completedN, abandonedN
}

func (s *Scheduler) decide(ctx context.Context) Decision {
	shadow := ledger.NewShadow()
	view := ledger.NewView(s.ledger, shadow)
	budget := NewProbeBudget(s.tuning.PathCheckBudget)
	now := s.clock.Now()

	var decision Decision
	for _, sup := range s.world.Supervisors() {
		for _, wk := range s.world.WorkersOf(sup.ID) {
			if s.tasks[wk.ID] != nil {
				continue
			}
			ranked := s.scorer.Rank(sup.ID, s.finder.Find(sup, wk, view), view)
			for _, cand := range ranked {
				if !s.finder.Reachable(wk, cand.Item, budget) {
					continue
				}
				a, ok := s.dispatcher.Dispatch(PolicyInput{
					Item:       cand.Item,
					Worker:     wk,
					Supervisor: sup,
					View:       view,
					World:      s.world,
					Requests:   s.requests,
					Leases:     s.leases,
					Grid:       s.grid,
					Paths:      s.paths,
					Tuning:     s.tuning,
					Now:        now,
				}, shadow)
				if ok {
					a.Committed = cand.Committed
					decision.Assignments = append(decision.Assignments, a)
					break
				}
				decision.Rejections++
			}
		}
	}
	decision.Probes = budget.Used()
	decision.Deferred = budget.Deferred()

	if decision.Deferred > 0 {
		common.LoggerFromContext(ctx).Log(common.LevelDebug, "Path checks deferred", map[string]interface{}{
			"budget":   s.tuning.PathCheckBudget,
			"deferred": decision.Deferred,
		})
	}
	return decision
}

func (s *Scheduler) maintain(ctx context.Context) (completedN, abortedN, leasesCleaned, requestsClosed int) {
	completedN, abortedN = s.maintainTasks(ctx)

	for _, stale := range s.leases.CleanStale(s.clock.Now(), s.world.Exists) {
		lease := stale.Lease
		if trip, ok := s.tasks[lease.Holder()].(*task.HaulWithWheelbarrow); ok && trip.Lease == lease.ID() {
			s.abort(ctx, lease.Holder(), trip, task.AbortLeaseExpired)
			abortedN++
		}
		leasesCleaned++
		s.metrics.RecordLeaseCleanup(stale.Reason)
		common.LoggerFromContext(ctx).Log(common.LevelDebug, "Wheelbarrow lease cleared", map[string]interface{}{
			"lease":       lease.ID().String(),
			"wheelbarrow": lease.Wheelbarrow().String(),
			"reason":      string(stale.Reason),
		})
	}
	requestsClosed = s.closeRequests(ctx)
	return completedN, abortedN, leasesCleaned, requestsClosed
}

// Cancel aborts the worker's task immediately. It reports whether there was one.
func (s *Scheduler) Cancel(ctx context.Context, workerID shared.EntityID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tasks[workerID]
	if t == nil {
		return false
	}
	s.abort(ctx, workerID, t, task.AbortCancelled)
	return true
}

// Designate adds a work item on behalf of a player or producer
func (s *Scheduler) Designate(ctx context.Context, d work.Designation) (*work.WorkItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.world.Exists(d.Target) {
		return nil, &work.ErrInvalidDesignation{Reason: fmt.Sprintf("target %s does not exist", d.Target)}
	}
	item, created, err := s.board.Designate(d)
	if err != nil {
		return nil, err
	}
	if created {
		common.LoggerFromContext(ctx).Log(common.LevelInfo, "Work designated", map[string]interface{}{
			"work_item": item.ID().String(),
			"kind":      string(item.Kind()),
			"target":    item.Target().String(),
		})
	}
	return item, nil
}

// CancelWorkItem aborts every task working the item and removes it. Items
// owned by a transport request close that request instead.
func (s *Scheduler) CancelWorkItem(ctx context.Context, id shared.EntityID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, err := s.board.MustGet(id)
	if err != nil {
		return err
	}
	for workerID, t := range s.tasks {
		if t.WorkItem() == id {
			s.abort(ctx, workerID, t, task.AbortCancelled)
		}
	}
	if item.HasRequest() {
		if req, ok := s.requests.Get(item.Request()); ok {
			s.closeRequest(ctx, req, transport.CloseCancelled)
			return nil
		}
	}
	s.board.Remove(id)
	return nil
}

// TaskOf returns the worker's current task, or nil when idle
func (s *Scheduler) TaskOf(workerID shared.EntityID) task.AssignedTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks[workerID]
}

// Ledger exposes the authoritative ledger for inspection
func (s *Scheduler) Ledger() *ledger.Ledger { return s.ledger }

// Requests exposes the transport request registry
func (s *Scheduler) Requests() *transport.Registry { return s.requests }

// Leases exposes the wheelbarrow lease registry
func (s *Scheduler) Leases() *transport.LeaseRegistry { return s.leases }

// Board exposes the work board
func (s *Scheduler) Board() *work.Board { return s.board }

// World exposes the colony state
func (s *Scheduler) World() *world.World { return s.world }

// Clock exposes simulated time
func (s *Scheduler) Clock() *shared.TickClock { return s.clock }

// Lock runs fn while holding the scheduler lock, for callers that mutate the world between ticks
func (s *Scheduler) Lock(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// RequestTransport opens a single-shot request to move one specific item to anchor
func (s *Scheduler) RequestTransport(ctx context.Context, source, anchor, issuer shared.EntityID, priority int) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.world.Item(source)
	if !ok {
		return uuid.Nil, &world.ErrEntityNotFound{Kind: "item", ID: source}
	}
	var kind work.Kind
	switch {
	case s.isConstructionAnchor(anchor):
		kind = work.KindHaulToBlueprint
	case s.isMixer(anchor):
		kind = work.KindHaulToMixer
	default:
		return uuid.Nil, &work.ErrInvalidDesignation{Reason: fmt.Sprintf("%s cannot receive deliveries", anchor)}
	}
	if _, ok := s.world.Supervisor(issuer); !ok {
		return uuid.Nil, &world.ErrEntityNotFound{Kind: "supervisor", ID: issuer}
	}

	key := transport.Key{Anchor: anchor, Kind: kind, Resource: item.Resource, PinnedSource: source}
	req, _, err := s.requests.Upsert(key, issuer, priority, s.clock.Now())
	if err != nil {
		return uuid.Nil, err
	}
	req.SetDemand(1, 0)
	wi, created, err := s.board.Designate(work.Designation{
		Kind:         kind,
		Cell:         item.Cell,
		Target:       anchor,
		Issuer:       issuer,
		SlotCapacity: 1,
		Priority:     priority,
		Resource:     item.Resource,
		Request:      req.ID(),
	})
	if err != nil {
		s.requests.Remove(req.ID())
		return uuid.Nil, err
	}
	if created {
		req.Attach(wi.ID())
	} else {
		req.Adopt(wi.ID())
		wi.AttachRequest(req.ID())
	}

	common.LoggerFromContext(ctx).Log(common.LevelInfo, "Transport requested", map[string]interface{}{
		"request": req.ID().String(),
		"key":     key.String(),
	})
	return req.ID(), nil
}

func (s *Scheduler) isConstructionAnchor(id shared.EntityID) bool {
	if _, ok := s.world.Blueprint(id); ok {
		return true
	}
	_, ok := s.world.Site(id)
	return ok
}

func (s *Scheduler) isMixer(id shared.EntityID) bool {
	_, ok := s.world.Mixer(id)
	return ok
}
