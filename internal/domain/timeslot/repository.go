package timeslot

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, t *Timeslot) error
	GetByTimeslotID(ctx context.Context, timeslotID string) (*Timeslot, error)
	GetByTimeslotIDForUpdate(ctx context.Context, timeslotID string) (*Timeslot, error)
	GetByID(ctx context.Context, id uint64) (*Timeslot, error)
	Save(ctx context.Context, t *Timeslot) error
	Delete(ctx context.Context, id uint64) error
	// Ordered by date then start time.
	List(ctx context.Context, f ListFilter) ([]Timeslot, error)
	// Active, dated on or after today, with a free seat.
	ListBookable(ctx context.Context, today time.Time, excludeIDs []uint64) ([]Timeslot, error)

	// TryBook takes one seat if booked_count < capacity at write time.
	// Returns false when the slot is full or inactive.
	TryBook(ctx context.Context, id uint64) (bool, error)
	// Release frees one seat, never going below zero.
	Release(ctx context.Context, id uint64) error
}
