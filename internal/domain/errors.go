package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound              = errors.New("not found")
	ErrInvalidInput          = errors.New("invalid input")
	ErrInvalidTransition     = errors.New("invalid state transition")
	ErrCapacityExceeded      = errors.New("timeslot capacity exceeded")
	ErrAlreadyProcessed      = errors.New("already processed")
	ErrNotEligible           = errors.New("donor not eligible")
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrAlreadyExists         = errors.New("already exists")

	// ErrConflict marks a lost optimistic race. Usecases retry once and never return it.
	ErrConflict = errors.New("concurrent modification")
)

// EligibilityError is returned while a donor's cooldown is active.
type EligibilityError struct {
	DaysRemaining    int
	NextEligibleDate time.Time
}

func (e *EligibilityError) Error() string {
	return fmt.Sprintf("donor not eligible for %d more day(s), next eligible on %s",
		e.DaysRemaining, e.NextEligibleDate.Format("2006-01-02"))
}

func (e *EligibilityError) Unwrap() error { return ErrNotEligible }

// InsufficientInventoryError reports an allocation shortfall.
type InsufficientInventoryError struct {
	Requested int
	Available int
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("insufficient inventory: requested %d, available %d", e.Requested, e.Available)
}

func (e *InsufficientInventoryError) Unwrap() error { return ErrInsufficientInventory }

// NotFound wraps ErrNotFound with the entity name, e.g. "donation not found".
func NotFound(entity string) error {
	return fmt.Errorf("%s %w", entity, ErrNotFound)
}

// Invalid wraps ErrInvalidInput with a reason.
func Invalid(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, reason)
}

// RetryOnConflict runs fn again once if it lost an optimistic race.
// A second loss is returned as is for the caller to translate.
func RetryOnConflict(fn func() error) error {
	err := fn()
	if errors.Is(err, ErrConflict) {
		err = fn()
	}
	return err
}
