package gormrepo

import (
	"context"

	"bloodbank-service/internal/domain/donation"
	"bloodbank-service/internal/domain/request"
	"bloodbank-service/internal/domain/uow"

	"gorm.io/gorm"
)

var _ uow.UnitOfWork = (*GormUoW)(nil)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

// Repos binds every repository to db (a transaction or the pool).
func Repos(db *gorm.DB) uow.Repos {
	return uow.Repos{
		Donors:    &DonorRepository{db: db},
		Patients:  &PatientRepository{db: db},
		Donations: &DonationRepository{db: db},
		Timeslots: &TimeslotRepository{db: db},
		Units:     &UnitRepository{db: db},
		Requests:  &RequestRepository{db: db},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(Repos(tx))
	})
}

func (u *GormUoW) WithinDonationTx(ctx context.Context, donationID string, fn func(r uow.Repos, d *donation.Donation) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := Repos(tx)
		// lock the donation row up-front so guard and write see the same state
		d, err := r.Donations.GetByDonationIDForUpdate(ctx, donationID)
		if err != nil {
			return err
		}
		return fn(r, d)
	})
}

func (u *GormUoW) WithinRequestTx(ctx context.Context, requestID string, fn func(r uow.Repos, br *request.BloodRequest) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := Repos(tx)
		br, err := r.Requests.GetByRequestIDForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		return fn(r, br)
	})
}
