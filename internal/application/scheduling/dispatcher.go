package scheduling

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/andrescamacho/hauler-go/internal/domain/ledger"
	"github.com/andrescamacho/hauler-go/internal/domain/shared"
	"github.com/andrescamacho/hauler-go/internal/domain/spatial"
	"github.com/andrescamacho/hauler-go/internal/domain/task"
	"github.com/andrescamacho/hauler-go/internal/domain/transport"
	"github.com/andrescamacho/hauler-go/internal/domain/work"
	"github.com/andrescamacho/hauler-go/internal/domain/world"
)

// PolicyInput is everything a policy may read while building an assignment.
// Policies never mutate it; availability is read through View.
type PolicyInput struct {
	Item       *work.WorkItem
	Worker     *world.Worker
	Supervisor *world.Supervisor
	View       ledger.View
	World      *world.World
	Requests   *transport.Registry
	Leases     *transport.LeaseRegistry
	Grid       spatial.Walkability
	Paths      spatial.Reachability
	Tuning     Tuning
	Now        time.Time
}

// LeasePlan describes a wheelbarrow lease Execute must mint
type LeasePlan struct {
	Wheelbarrow shared.EntityID
	Items       []shared.EntityID
	Destination shared.EntityID
	Resource    shared.ResourceKind
}

// Assignment is the intent a successful policy produces. Execute turns it
// into a claimed work item, ledger reservations and a running task.
type Assignment struct {
	Supervisor shared.EntityID
	Worker     shared.EntityID
	WorkItem   shared.EntityID
	Kind       work.Kind
	Task       task.AssignedTask
	Ops        []ledger.ReservationRequest
	// Committed is true when the work item was already owned by Supervisor
	Committed bool
	// LeasePlan is set when a new wheelbarrow lease must be created
	LeasePlan *LeasePlan
	// Lease names an existing lease the task reuses
	Lease uuid.UUID
}

// Policy validates one work kind's preconditions and builds its assignment
type Policy interface {
	Kind() work.Kind
	Build(in PolicyInput) (Assignment, bool)
}

// PolicyRegistry maps work kinds to policies
type PolicyRegistry struct {
	policies map[work.Kind]Policy
}

// NewPolicyRegistry creates an empty registry
func NewPolicyRegistry() *PolicyRegistry {
	return &PolicyRegistry{policies: make(map[work.Kind]Policy)}
}

// Register adds a policy. A kind may only be registered once.
func (r *PolicyRegistry) Register(p Policy) error {
	if !p.Kind().IsValid() {
		return &work.ErrUnknownKind{Kind: string(p.Kind())}
	}
	if _, exists := r.policies[p.Kind()]; exists {
		return fmt.Errorf("policy already registered for %s", p.Kind())
	}
	r.policies[p.Kind()] = p
	return nil
}

// Get returns the policy for kind
func (r *PolicyRegistry) Get(kind work.Kind) (Policy, bool) {
	p, ok := r.policies[kind]
	return p, ok
}

// Has reports whether kind has a policy
func (r *PolicyRegistry) Has(kind work.Kind) bool {
	_, ok := r.policies[kind]
	return ok
}

// Kinds lists registered kinds in sorted order
func (r *PolicyRegistry) Kinds() []work.Kind {
	kinds := make([]work.Kind, 0, len(r.policies))
	for k := range r.policies {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// DefaultPolicies registers a policy for every work kind
func DefaultPolicies() *PolicyRegistry {
	r := NewPolicyRegistry()
	for _, p := range []Policy{
		gatherPolicy{},
		haulPolicy{},
		haulToBlueprintPolicy{},
		haulToMixerPolicy{},
		gatherWaterPolicy{},
		haulWaterToMixerPolicy{},
		collectPolicy{kind: work.KindCollectSand},
		collectPolicy{kind: work.KindCollectBone},
		refinePolicy{},
		buildPolicy{},
		tilePolicy{kind: work.KindReinforceFloor},
		tilePolicy{kind: work.KindPourFloor},
		tilePolicy{kind: work.KindCoatWall},
		wheelbarrowPolicy{},
	} {
		// kinds above are distinct and valid
		_ = r.Register(p)
	}
	return r
}

// Dispatcher runs the policy for a candidate and, on success, records its
// reservations and claim in the cycle's shadow
type Dispatcher struct {
	policies *PolicyRegistry
}

// NewDispatcher creates a dispatcher over policies
func NewDispatcher(policies *PolicyRegistry) *Dispatcher {
	return &Dispatcher{policies: policies}
}

// Dispatch returns an assignment for in.Item, or false when its policy rejects it
func (d *Dispatcher) Dispatch(in PolicyInput, shadow *ledger.Shadow) (Assignment, bool) {
	policy, ok := d.policies.Get(in.Item.Kind())
	if !ok {
		return Assignment{}, false
	}
	a, ok := policy.Build(in)
	if !ok {
		return Assignment{}, false
	}
	for _, op := range a.Ops {
		if op.Validate() != nil {
			return Assignment{}, false
		}
	}
	a.Supervisor = in.Supervisor.ID
	a.Worker = in.Worker.ID
	a.WorkItem = in.Item.ID()
	a.Kind = in.Item.Kind()
	shadow.ApplyAll(a.Ops)
	shadow.AddClaim(in.Item.ID())
	return a, true
}
