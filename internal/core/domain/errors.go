package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrIncompatibleDonor = errors.New("donor is not compatible with request")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrConflict          = errors.New("record was modified concurrently")
	ErrValidation        = errors.New("validation failed")

	// ErrDonorUnavailable is returned when the donor already backs another
	// matched request. It matches ErrIncompatibleDonor with errors.Is.
	ErrDonorUnavailable = fmt.Errorf("donor already matched to an active request: %w", ErrIncompatibleDonor)
)

type Entity string

const (
	EntityDonor   Entity = "donor"
	EntityRequest Entity = "request"
)

// TransitionError describes a rejected status change. Err is one of the
// package sentinels.
type TransitionError struct {
	Entity Entity
	ID     string
	From   string
	To     string
	Err    error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s %s: %s -> %s: %v", e.Entity, e.ID, e.From, e.To, e.Err)
}

func (e *TransitionError) Unwrap() error {
	return e.Err
}

// NotFoundError wraps ErrNotFound with the missing entity and id.
func NotFoundError(entity Entity, id string) error {
	return fmt.Errorf("%s %q: %w", entity, id, ErrNotFound)
}
