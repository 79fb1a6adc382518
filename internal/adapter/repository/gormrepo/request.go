package gormrepo

import (
	"context"

	"bloodbank-service/internal/domain/request"

	"gorm.io/gorm"
)

type RequestRepository struct{ db *gorm.DB }

func NewRequestRepository(db *gorm.DB) *RequestRepository { return &RequestRepository{db: db} }

func (r *RequestRepository) Create(ctx context.Context, br *request.BloodRequest) error {
	return r.db.WithContext(ctx).Create(br).Error
}

func (r *RequestRepository) Save(ctx context.Context, br *request.BloodRequest) error {
	return r.db.WithContext(ctx).Save(br).Error
}

func (r *RequestRepository) GetByRequestID(ctx context.Context, requestID string) (*request.BloodRequest, error) {
	return first[request.BloodRequest](r.db.WithContext(ctx).Where("request_id = ?", requestID), "blood request")
}

func (r *RequestRepository) GetByRequestIDForUpdate(ctx context.Context, requestID string) (*request.BloodRequest, error) {
	return first[request.BloodRequest](forUpdate(r.db.WithContext(ctx)).Where("request_id = ?", requestID), "blood request")
}

func (r *RequestRepository) ListByPatient(ctx context.Context, patientNumericID uint64) ([]request.BloodRequest, error) {
	var out []request.BloodRequest
	err := r.db.WithContext(ctx).
		Where("patient_id = ?", patientNumericID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}
