package request

import (
	"time"

	"bloodbank-service/internal/domain/blood"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusFulfilled Status = "fulfilled"
)

// Processed reports whether the request already consumed inventory.
func (s Status) Processed() bool { return s == StatusApproved || s == StatusFulfilled }

// Table: blood_requests
type BloodRequest struct {
	ID        uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	RequestID string `gorm:"column:request_id;size:32;not null;uniqueIndex:ux_blood_requests_request_id" json:"request_id"`
	// FK to patients.id
	PatientID         uint64      `gorm:"column:patient_id;not null;index" json:"-"`
	BloodGroup        blood.Group `gorm:"column:blood_group;size:3;not null" json:"blood_group"`
	Quantity          int         `gorm:"column:quantity;not null" json:"quantity"`
	FulfilledQuantity int         `gorm:"column:fulfilled_quantity;not null;default:0" json:"fulfilled_quantity"`
	Status            Status      `gorm:"column:status;size:16;not null;default:'pending';index" json:"status"`
	// Optional link to the donor whose unit satisfied the request.
	FulfilledByDonorID *uint64    `gorm:"column:fulfilled_by_donor_id" json:"-"`
	FulfilledAt        *time.Time `gorm:"column:fulfilled_at" json:"fulfilled_at,omitempty"`
	RejectedAt         *time.Time `gorm:"column:rejected_at" json:"rejected_at,omitempty"`
	RejectionReason    string     `gorm:"column:rejection_reason;type:text" json:"rejection_reason,omitempty"`
	CreatedAt          time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (BloodRequest) TableName() string { return "blood_requests" }
