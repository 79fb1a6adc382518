package request

import (
	"time"

	"bloodbank-service/internal/domain/blood"
	domainRequest "bloodbank-service/internal/domain/request"
)

type SubmitInput struct {
	PatientID string
	// Empty means the patient's own group.
	BloodGroup blood.Group
	Quantity   int
}

type ApproveInput struct {
	RequestID  string
	ApproverID string
}

type RejectInput struct {
	RequestID string
	Reason    string
}

type RequestDTO struct {
	RequestID         string               `json:"request_id"`
	PatientID         string               `json:"patient_id"`
	PatientName       string               `json:"patient_name"`
	BloodGroup        blood.Group          `json:"blood_group"`
	Quantity          int                  `json:"quantity"`
	FulfilledQuantity int                  `json:"fulfilled_quantity"`
	Status            domainRequest.Status `json:"status"`
	FulfilledByDonor  string               `json:"fulfilled_by_donor_id,omitempty"`
	FulfilledAt       *time.Time           `json:"fulfilled_at,omitempty"`
	RejectedAt        *time.Time           `json:"rejected_at,omitempty"`
	RejectionReason   string               `json:"rejection_reason,omitempty"`
	CreatedAt         time.Time            `json:"created_at"`
	Units             []UnitUseDTO         `json:"units,omitempty"`
}

// UnitUseDTO is one unit consumed by a fulfillment.
type UnitUseDTO struct {
	UnitID    string `json:"unit_id"`
	Quantity  int    `json:"quantity"`
	SplitInto string `json:"split_into,omitempty"`
}
