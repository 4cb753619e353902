package task

import (
	"fmt"

	"github.com/andrescamacho/hauler-go/internal/domain/shared"
	"github.com/andrescamacho/hauler-go/internal/domain/work"
)

// ErrInvalidPhaseTransition indicates a backwards or foreign phase change
type ErrInvalidPhaseTransition struct {
	WorkItem    shared.EntityID
	Kind        work.Kind
	From        Phase
	To          Phase
	Description string
}

func (e *ErrInvalidPhaseTransition) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("invalid phase transition for %s task on %s: %s -> %s: %s",
			e.Kind, e.WorkItem, e.From, e.To, e.Description)
	}
	return fmt.Sprintf("invalid phase transition for %s task on %s: %s -> %s",
		e.Kind, e.WorkItem, e.From, e.To)
}
