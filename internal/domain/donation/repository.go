package donation

import "context"

type Repository interface {
	Create(ctx context.Context, d *Donation) error
	GetByDonationID(ctx context.Context, donationID string) (*Donation, error)
	GetByID(ctx context.Context, id uint64) (*Donation, error)
	// Row-locks the donation so the guard check and the write are atomic.
	GetByDonationIDForUpdate(ctx context.Context, donationID string) (*Donation, error)
	Save(ctx context.Context, d *Donation) error
	ListByDonor(ctx context.Context, donorNumericID uint64) ([]Donation, error)
	// Row-locks every donation of the donor; used before the donor is removed.
	ListByDonorForUpdate(ctx context.Context, donorNumericID uint64) ([]Donation, error)
	// Timeslot ids the donor currently occupies a seat on.
	OccupiedTimeslotIDs(ctx context.Context, donorNumericID uint64) ([]uint64, error)
	CountOccupying(ctx context.Context, timeslotNumericID uint64) (int64, error)
}
