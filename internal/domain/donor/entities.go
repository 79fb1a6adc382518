package donor

import (
	"time"

	"bloodbank-service/internal/domain/blood"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Table: donors
type Donor struct {
	ID      uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	DonorID string `gorm:"column:donor_id;size:32;not null;uniqueIndex:ux_donors_donor_id" json:"donor_id"`
	// Identity of the account at the access-control boundary
	AccountID     string      `gorm:"column:account_id;size:64;index" json:"account_id,omitempty"`
	FullName      string      `gorm:"column:full_name;size:100;not null" json:"full_name"`
	BloodGroup    blood.Group `gorm:"column:blood_group;size:3;not null;index" json:"blood_group"`
	ContactNumber string      `gorm:"column:contact_number;size:15" json:"contact_number"`
	Age           *int        `gorm:"column:age" json:"age,omitempty"`
	Gender        Gender      `gorm:"column:gender;size:10" json:"gender,omitempty"`
	Address       string      `gorm:"column:address;type:text" json:"address,omitempty"`
	// Set or advanced only by a completed donation.
	NextEligibleDate *time.Time `gorm:"column:next_eligible_date;type:date" json:"next_eligible_date,omitempty"`
	CreatedAt        time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Donor) TableName() string { return "donors" }

// AdvanceEligibility moves NextEligibleDate forward to next; it never moves it backwards.
// Reports whether the date changed.
func (d *Donor) AdvanceEligibility(next time.Time) bool {
	next = blood.Day(next)
	if d.NextEligibleDate != nil && !d.NextEligibleDate.Before(next) {
		return false
	}
	d.NextEligibleDate = &next
	return true
}

// Table: patients
type Patient struct {
	ID               uint64      `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	PatientID        string      `gorm:"column:patient_id;size:32;not null;uniqueIndex:ux_patients_patient_id" json:"patient_id"`
	AccountID        string      `gorm:"column:account_id;size:64;index" json:"account_id,omitempty"`
	FullName         string      `gorm:"column:full_name;size:100;not null" json:"full_name"`
	BloodGroup       blood.Group `gorm:"column:blood_group;size:3;not null" json:"blood_group"`
	ContactNumber    string      `gorm:"column:contact_number;size:15" json:"contact_number"`
	EmergencyContact string      `gorm:"column:emergency_contact;size:15" json:"emergency_contact,omitempty"`
	Age              int         `gorm:"column:age" json:"age"`
	Gender           Gender      `gorm:"column:gender;size:10" json:"gender,omitempty"`
	Address          string      `gorm:"column:address;type:text" json:"address,omitempty"`
	CreatedAt        time.Time   `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time   `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Patient) TableName() string { return "patients" }
