package orders

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidTransition  = errors.New("invalid transition")
	ErrDuplicateIdentity  = errors.New("email already registered")
	ErrPersistence        = errors.New("persist state")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidInput       = errors.New("invalid input")
	ErrVersionConflict    = errors.New("order version conflict")
	ErrDuplicateOrderID   = errors.New("order id already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// InvalidTransitionError carries what the order looked like when the
// transition was refused so the caller can explain the conflict.
type InvalidTransitionError struct {
	OrderID   string
	Current   Status
	Attempted Transition
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("order %s: cannot %s while %s", e.OrderID, e.Attempted, e.Current)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// NotFound builds an ErrNotFound-wrapping error for a missing entity.
func NotFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
}
