package domain

import "fmt"

// ConflictError reports an availability violation. It always names the
// colliding reservation so the operator can resolve the clash; the engine
// never reassigns units on its own.
type ConflictError struct {
	UnitID         int32
	ConflictingRef string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("unit %d is already booked by reservation %s for an overlapping interval", e.UnitID, e.ConflictingRef)
}

// InvalidTransitionError reports a lifecycle rule violation, such as
// cancelling a checked-in reservation.
type InvalidTransitionError struct {
	From ReservationStatus
	To   ReservationStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid reservation transition %s -> %s", e.From, e.To)
}

// ValidationError reports rejected input: missing cancellation reason,
// zero or negative quantities, end before start.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ImmutabilityError reports an attempt to mutate line items or deductions
// past their lock point.
type ImmutabilityError struct {
	Entity string
	Ref    string
}

func (e *ImmutabilityError) Error() string {
	return fmt.Sprintf("%s %s is locked and can no longer be modified", e.Entity, e.Ref)
}
