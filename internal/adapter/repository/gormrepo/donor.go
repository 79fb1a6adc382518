package gormrepo

import (
	"context"

	"bloodbank-service/internal/domain/donation"
	"bloodbank-service/internal/domain/donor"

	"gorm.io/gorm"
)

type DonorRepository struct{ db *gorm.DB }

func NewDonorRepository(db *gorm.DB) *DonorRepository { return &DonorRepository{db: db} }

func (r *DonorRepository) Create(ctx context.Context, d *donor.Donor) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *DonorRepository) Save(ctx context.Context, d *donor.Donor) error {
	return r.db.WithContext(ctx).Save(d).Error
}

func (r *DonorRepository) GetByDonorID(ctx context.Context, donorID string) (*donor.Donor, error) {
	return first[donor.Donor](r.db.WithContext(ctx).Where("donor_id = ?", donorID), "donor")
}

func (r *DonorRepository) GetByID(ctx context.Context, id uint64) (*donor.Donor, error) {
	return first[donor.Donor](r.db.WithContext(ctx).Where("id = ?", id), "donor")
}

func (r *DonorRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*donor.Donor, error) {
	return first[donor.Donor](forUpdate(r.db.WithContext(ctx)).Where("id = ?", id), "donor")
}

// Delete removes the donor's donations first; not every driver enforces FKs.
func (r *DonorRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("donor_id = ?", id).Delete(&donation.Donation{}).Error; err != nil {
			return err
		}
		return tx.Delete(&donor.Donor{}, id).Error
	})
}

type PatientRepository struct{ db *gorm.DB }

func NewPatientRepository(db *gorm.DB) *PatientRepository { return &PatientRepository{db: db} }

func (r *PatientRepository) Create(ctx context.Context, p *donor.Patient) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PatientRepository) GetByPatientID(ctx context.Context, patientID string) (*donor.Patient, error) {
	return first[donor.Patient](r.db.WithContext(ctx).Where("patient_id = ?", patientID), "patient")
}

func (r *PatientRepository) GetByID(ctx context.Context, id uint64) (*donor.Patient, error) {
	return first[donor.Patient](r.db.WithContext(ctx).Where("id = ?", id), "patient")
}
