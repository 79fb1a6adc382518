package gormrepo

import (
	"context"

	"bloodbank-service/internal/domain/donation"

	"gorm.io/gorm"
)

type DonationRepository struct{ db *gorm.DB }

func NewDonationRepository(db *gorm.DB) *DonationRepository { return &DonationRepository{db: db} }

func (r *DonationRepository) Create(ctx context.Context, d *donation.Donation) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *DonationRepository) Save(ctx context.Context, d *donation.Donation) error {
	return r.db.WithContext(ctx).Save(d).Error
}

func (r *DonationRepository) GetByDonationID(ctx context.Context, donationID string) (*donation.Donation, error) {
	return first[donation.Donation](r.db.WithContext(ctx).Where("donation_id = ?", donationID), "donation")
}

func (r *DonationRepository) GetByID(ctx context.Context, id uint64) (*donation.Donation, error) {
	return first[donation.Donation](r.db.WithContext(ctx).Where("id = ?", id), "donation")
}

func (r *DonationRepository) GetByDonationIDForUpdate(ctx context.Context, donationID string) (*donation.Donation, error) {
	return first[donation.Donation](forUpdate(r.db.WithContext(ctx)).Where("donation_id = ?", donationID), "donation")
}

func (r *DonationRepository) ListByDonor(ctx context.Context, donorNumericID uint64) ([]donation.Donation, error) {
	var out []donation.Donation
	err := r.db.WithContext(ctx).
		Where("donor_id = ?", donorNumericID).
		Order("donation_date DESC, id DESC").
		Find(&out).Error
	return out, err
}

func (r *DonationRepository) ListByDonorForUpdate(ctx context.Context, donorNumericID uint64) ([]donation.Donation, error) {
	var out []donation.Donation
	err := forUpdate(r.db.WithContext(ctx)).
		Where("donor_id = ?", donorNumericID).
		Order("id").
		Find(&out).Error
	return out, err
}

func (r *DonationRepository) OccupiedTimeslotIDs(ctx context.Context, donorNumericID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).Model(&donation.Donation{}).
		Where("donor_id = ? AND timeslot_id IS NOT NULL AND status IN ?", donorNumericID, donation.OccupyingStatuses).
		Pluck("timeslot_id", &ids).Error
	return ids, err
}

func (r *DonationRepository) CountOccupying(ctx context.Context, timeslotNumericID uint64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&donation.Donation{}).
		Where("timeslot_id = ? AND status IN ?", timeslotNumericID, donation.OccupyingStatuses).
		Count(&n).Error
	return n, err
}
