package registry

import (
	"time"

	"bloodbank-service/internal/domain/blood"
	"bloodbank-service/internal/domain/donor"
)

type RegisterDonorInput struct {
	AccountID     string
	FullName      string
	BloodGroup    blood.Group
	ContactNumber string
	Age           *int
	Gender        donor.Gender
	Address       string
}

type RegisterPatientInput struct {
	AccountID        string
	FullName         string
	BloodGroup       blood.Group
	ContactNumber    string
	EmergencyContact string
	Age              int
	Gender           donor.Gender
	Address          string
}

type DonorDTO struct {
	DonorID          string       `json:"donor_id"`
	FullName         string       `json:"full_name"`
	BloodGroup       blood.Group  `json:"blood_group"`
	ContactNumber    string       `json:"contact_number"`
	Age              *int         `json:"age,omitempty"`
	Gender           donor.Gender `json:"gender,omitempty"`
	Address          string       `json:"address,omitempty"`
	NextEligibleDate *time.Time   `json:"next_eligible_date,omitempty"`
	Eligible         bool         `json:"eligible"`
	DaysRemaining    int          `json:"days_remaining"`
	CreatedAt        time.Time    `json:"created_at"`
}

type PatientDTO struct {
	PatientID        string       `json:"patient_id"`
	FullName         string       `json:"full_name"`
	BloodGroup       blood.Group  `json:"blood_group"`
	ContactNumber    string       `json:"contact_number"`
	EmergencyContact string       `json:"emergency_contact,omitempty"`
	Age              int          `json:"age"`
	Gender           donor.Gender `json:"gender,omitempty"`
	Address          string       `json:"address,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
}
