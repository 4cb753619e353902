package ledger

import "fmt"

// ErrUnknownReservationOp is returned when a request carries an unrecognised operation
type ErrUnknownReservationOp struct {
	Op ReservationOp
}

func (e *ErrUnknownReservationOp) Error() string {
	return fmt.Sprintf("unknown reservation op: %q", e.Op)
}

// ErrMissingObject is returned when a request does not name an object
type ErrMissingObject struct {
	Op ReservationOp
}

func (e *ErrMissingObject) Error() string {
	return fmt.Sprintf("reservation op %s has no object", e.Op)
}

// ErrInvalidAmount is returned when a destination or mixer request books no units
type ErrInvalidAmount struct {
	Op     ReservationOp
	Amount int
}

func (e *ErrInvalidAmount) Error() string {
	return fmt.Sprintf("reservation op %s needs a positive amount, got %d", e.Op, e.Amount)
}
