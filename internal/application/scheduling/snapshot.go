package scheduling

import (
	"github.com/andrescamacho/hauler-go/internal/domain/ledger"
	"github.com/andrescamacho/hauler-go/internal/domain/shared"
	"github.com/andrescamacho/hauler-go/internal/domain/task"
	"github.com/andrescamacho/hauler-go/internal/domain/work"
)

// WorkerView is a worker's state in a snapshot
type WorkerView struct {
	ID         shared.EntityID
	Supervisor shared.EntityID
	Cell       shared.Cell
	Kind       work.Kind
	Phase      task.Phase
	WorkItem   shared.EntityID
}

// WorkItemView is a work item's scheduling state in a snapshot
type WorkItemView struct {
	ID       shared.EntityID
	Kind     work.Kind
	Target   shared.EntityID
	Cell     shared.Cell
	Owner    shared.EntityID
	Claims   int
	Capacity int
	Priority int
}

// RequestView is a transport request in a snapshot
type RequestView struct {
	ID       string
	Key      string
	Issuer   shared.EntityID
	Desired  int
	Inflight int
}

// Snapshot is a read-only copy of the scheduler's state
type Snapshot struct {
	Tick      uint64
	Workers   []WorkerView
	WorkItems []WorkItemView
	Requests  []RequestView
	Leases    int
	Ledger    []ledger.Entry
}

// Snapshot captures the current state for inspection surfaces
func (s *Scheduler) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Tick:   s.clock.Tick(),
		Leases: s.leases.Len(),
		Ledger: s.ledger.Entries(),
	}
	for _, wk := range s.world.Workers() {
		v := WorkerView{ID: wk.ID, Supervisor: wk.Supervisor, Cell: wk.Cell()}
		if t := s.tasks[wk.ID]; t != nil {
			v.Kind, v.Phase, v.WorkItem = t.Kind(), t.Phase(), t.WorkItem()
		}
		snap.Workers = append(snap.Workers, v)
	}
	for _, item := range s.board.All() {
		snap.WorkItems = append(snap.WorkItems, WorkItemView{
			ID:       item.ID(),
			Kind:     item.Kind(),
			Target:   item.Target(),
			Cell:     item.Cell(),
			Owner:    item.Owner(),
			Claims:   item.Claims(),
			Capacity: item.SlotCapacity(),
			Priority: item.Priority(),
		})
	}
	for _, req := range s.requests.All() {
		d := req.Demand()
		snap.Requests = append(snap.Requests, RequestView{
			ID:       req.ID().String(),
			Key:      req.Key().String(),
			Issuer:   req.Issuer(),
			Desired:  d.Desired,
			Inflight: d.Inflight,
		})
	}
	return snap
}
