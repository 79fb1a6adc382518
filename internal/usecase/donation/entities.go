package donation

import (
	"time"

	"bloodbank-service/internal/domain/blood"
	domainDonation "bloodbank-service/internal/domain/donation"
)

type SubmitInput struct {
	DonorID      string
	Quantity     int
	DonationDate time.Time // zero means today
}

type ApproveInput struct {
	DonationID string
	ApproverID string // resolved by the caller, never looked up here
}

type BookInput struct {
	DonationID string
	TimeslotID string
}

type RejectInput struct {
	DonationID string
	Reason     string
}

type DonationDTO struct {
	DonationID        string                `json:"donation_id"`
	DonorID           string                `json:"donor_id"`
	BloodGroup        blood.Group           `json:"blood_group"`
	Quantity          int                   `json:"quantity"`
	DonationDate      time.Time             `json:"donation_date"`
	AppointmentDate   *time.Time            `json:"appointment_date,omitempty"`
	TimeslotID        string                `json:"timeslot_id,omitempty"`
	Status            domainDonation.Status `json:"status"`
	InitialApprovedAt *time.Time            `json:"initial_approved_at,omitempty"`
	InitialApprovedBy *string               `json:"initial_approved_by,omitempty"`
	FinalApprovedAt   *time.Time            `json:"final_approved_at,omitempty"`
	FinalApprovedBy   *string               `json:"final_approved_by,omitempty"`
	RejectedAt        *time.Time            `json:"rejected_at,omitempty"`
	RejectionReason   string                `json:"rejection_reason,omitempty"`
	Unit              *UnitDTO              `json:"unit,omitempty"`
}

// UnitDTO is the stock created by final approval.
type UnitDTO struct {
	UnitID     string    `json:"unit_id"`
	Quantity   int       `json:"quantity"`
	ExpiryDate time.Time `json:"expiry_date"`
}
