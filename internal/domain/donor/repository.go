package donor

import "context"

type Repository interface {
	Create(ctx context.Context, d *Donor) error
	GetByDonorID(ctx context.Context, donorID string) (*Donor, error)
	GetByID(ctx context.Context, id uint64) (*Donor, error)
	// Locks the donor row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id uint64) (*Donor, error)
	Save(ctx context.Context, d *Donor) error
	// Deletes the donor and every donation it owns.
	Delete(ctx context.Context, id uint64) error
}

type PatientRepository interface {
	Create(ctx context.Context, p *Patient) error
	GetByPatientID(ctx context.Context, patientID string) (*Patient, error)
	GetByID(ctx context.Context, id uint64) (*Patient, error)
}
