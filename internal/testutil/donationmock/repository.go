package donationmock

import (
	"context"

	domain "bloodbank-service/internal/domain/donation"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies donation.Repository.
// Reads default to context.Canceled, writes to nil.
type Repo struct {
	CreateFn                   func(ctx context.Context, d *domain.Donation) error
	GetByDonationIDFn          func(ctx context.Context, donationID string) (*domain.Donation, error)
	GetByIDFn                  func(ctx context.Context, id uint64) (*domain.Donation, error)
	GetByDonationIDForUpdateFn func(ctx context.Context, donationID string) (*domain.Donation, error)
	SaveFn                     func(ctx context.Context, d *domain.Donation) error
	ListByDonorFn              func(ctx context.Context, donorNumericID uint64) ([]domain.Donation, error)
	ListByDonorForUpdateFn     func(ctx context.Context, donorNumericID uint64) ([]domain.Donation, error)
	OccupiedTimeslotIDsFn      func(ctx context.Context, donorNumericID uint64) ([]uint64, error)
	CountOccupyingFn           func(ctx context.Context, timeslotNumericID uint64) (int64, error)
}

func (m *Repo) Create(ctx context.Context, d *domain.Donation) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, d)
	}
	return nil
}

func (m *Repo) GetByDonationID(ctx context.Context, donationID string) (*domain.Donation, error) {
	if m.GetByDonationIDFn != nil {
		return m.GetByDonationIDFn(ctx, donationID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.Donation, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByDonationIDForUpdate(ctx context.Context, donationID string) (*domain.Donation, error) {
	if m.GetByDonationIDForUpdateFn != nil {
		return m.GetByDonationIDForUpdateFn(ctx, donationID)
	}
	return nil, context.Canceled
}

func (m *Repo) Save(ctx context.Context, d *domain.Donation) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, d)
	}
	return nil
}

func (m *Repo) ListByDonor(ctx context.Context, donorNumericID uint64) ([]domain.Donation, error) {
	if m.ListByDonorFn != nil {
		return m.ListByDonorFn(ctx, donorNumericID)
	}
	return nil, context.Canceled
}

func (m *Repo) ListByDonorForUpdate(ctx context.Context, donorNumericID uint64) ([]domain.Donation, error) {
	if m.ListByDonorForUpdateFn != nil {
		return m.ListByDonorForUpdateFn(ctx, donorNumericID)
	}
	return nil, context.Canceled
}

func (m *Repo) OccupiedTimeslotIDs(ctx context.Context, donorNumericID uint64) ([]uint64, error) {
	if m.OccupiedTimeslotIDsFn != nil {
		return m.OccupiedTimeslotIDsFn(ctx, donorNumericID)
	}
	return nil, context.Canceled
}

func (m *Repo) CountOccupying(ctx context.Context, timeslotNumericID uint64) (int64, error) {
	if m.CountOccupyingFn != nil {
		return m.CountOccupyingFn(ctx, timeslotNumericID)
	}
	return 0, context.Canceled
}
