package shared

import "fmt"

// DomainError is the base error type for all domain errors
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

// Validation error

type ValidationError struct {
	*DomainError
	Field string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		DomainError: &DomainError{Message: fmt.Sprintf("validation failed for %s: %s", field, message)},
		Field:       field,
	}
}

// Entity errors

type EntityNotFoundError struct {
	*DomainError
	Kind string
	ID   EntityID
}

func NewEntityNotFoundError(kind string, id EntityID) *EntityNotFoundError {
	return &EntityNotFoundError{
		DomainError: &DomainError{Message: fmt.Sprintf("%s %s not found", kind, id)},
		Kind:        kind,
		ID:          id,
	}
}
