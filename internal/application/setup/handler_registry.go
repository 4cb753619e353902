package setup

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/andrescamacho/hauler-go/internal/application/control/commands"
	"github.com/andrescamacho/hauler-go/internal/application/control/queries"
	"github.com/andrescamacho/hauler-go/internal/application/control/types"
	"github.com/andrescamacho/hauler-go/internal/application/mediator"
	"github.com/andrescamacho/hauler-go/internal/application/scheduling"
)

// HandlerRegistry holds the dependencies control handlers are built from
type HandlerRegistry struct {
	sched    *scheduling.Scheduler
	validate *validator.Validate
}

// NewHandlerRegistry creates a new handler registry over sched
func NewHandlerRegistry(sched *scheduling.Scheduler) *HandlerRegistry {
	return &HandlerRegistry{
		sched:    sched,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterMiddleware installs request logging and struct validation.
// Logging runs outermost so rejected requests are logged too.
func (r *HandlerRegistry) RegisterMiddleware(m mediator.Mediator) {
	m.RegisterMiddleware(mediator.LoggingMiddleware())
	m.RegisterMiddleware(mediator.ValidationMiddleware(r.validate))
}

// RegisterControlHandlers registers every control command and query handler
//
// This method registers:
//   - DesignateCommand → DesignateHandler
//   - CancelWorkerCommand → CancelWorkerHandler
//   - CancelWorkItemCommand → CancelWorkItemHandler
//   - RequestTransportCommand → RequestTransportHandler
//   - SnapshotQuery → SnapshotHandler
func (r *HandlerRegistry) RegisterControlHandlers(m mediator.Mediator) error {
	if err := mediator.RegisterHandler[*types.DesignateCommand](m, commands.NewDesignateHandler(r.sched)); err != nil {
		return fmt.Errorf("failed to register Designate handler: %w", err)
	}
	if err := mediator.RegisterHandler[*types.CancelWorkerCommand](m, commands.NewCancelWorkerHandler(r.sched)); err != nil {
		return fmt.Errorf("failed to register CancelWorker handler: %w", err)
	}
	if err := mediator.RegisterHandler[*types.CancelWorkItemCommand](m, commands.NewCancelWorkItemHandler(r.sched)); err != nil {
		return fmt.Errorf("failed to register CancelWorkItem handler: %w", err)
	}
	if err := mediator.RegisterHandler[*types.RequestTransportCommand](m, commands.NewRequestTransportHandler(r.sched)); err != nil {
		return fmt.Errorf("failed to register RequestTransport handler: %w", err)
	}
	if err := mediator.RegisterHandler[*types.SnapshotQuery](m, queries.NewSnapshotHandler(r.sched)); err != nil {
		return fmt.Errorf("failed to register Snapshot handler: %w", err)
	}
	return nil
}

// NewControlMediator builds a mediator with middleware and every control handler
func NewControlMediator(sched *scheduling.Scheduler) (mediator.Mediator, error) {
	m := mediator.NewMediator()
	r := NewHandlerRegistry(sched)
	r.RegisterMiddleware(m)
	if err := r.RegisterControlHandlers(m); err != nil {
		return nil, err
	}
	return m, nil
}
