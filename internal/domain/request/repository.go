package request

import "context"

type Repository interface {
	Create(ctx context.Context, r *BloodRequest) error
	GetByRequestID(ctx context.Context, requestID string) (*BloodRequest, error)
	GetByRequestIDForUpdate(ctx context.Context, requestID string) (*BloodRequest, error)
	Save(ctx context.Context, r *BloodRequest) error
	ListByPatient(ctx context.Context, patientNumericID uint64) ([]BloodRequest, error)
}
