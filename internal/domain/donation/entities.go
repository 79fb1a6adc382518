package donation

import (
	"time"
)

type Status string

const (
	StatusPendingInitial  Status = "pending_initial"
	StatusInitialApproved Status = "initial_approved"
	StatusSlotConfirmed   Status = "slot_confirmed"
	StatusFinalApproved   Status = "final_approved"
	StatusRejected        Status = "rejected"
)

// transitions lists, per source status, the statuses reachable in one step.
var transitions = map[Status][]Status{
	StatusPendingInitial:  {StatusInitialApproved, StatusRejected},
	StatusInitialApproved: {StatusSlotConfirmed, StatusRejected},
	StatusSlotConfirmed:   {StatusFinalApproved, StatusRejected},
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, v := range transitions[s] {
		if v == next {
			return true
		}
	}
	return false
}

func (s Status) Terminal() bool { return s == StatusFinalApproved || s == StatusRejected }

// OccupiesSeat reports whether a donation in this status holds a timeslot seat.
func (s Status) OccupiesSeat() bool { return s == StatusSlotConfirmed }

// OccupyingStatuses is the set used when matching donations against slots.
var OccupyingStatuses = []Status{StatusSlotConfirmed}

// Table: donations
type Donation struct {
	ID         uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	DonationID string `gorm:"column:donation_id;size:32;not null;uniqueIndex:ux_donations_donation_id" json:"donation_id"`
	// FK to donors.id, cascade-deleted with the donor
	DonorID         uint64     `gorm:"column:donor_id;not null;index" json:"-"`
	Quantity        int        `gorm:"column:quantity;not null" json:"quantity"`
	DonationDate    time.Time  `gorm:"column:donation_date;type:date;not null" json:"donation_date"`
	AppointmentDate *time.Time `gorm:"column:appointment_date;type:date" json:"appointment_date,omitempty"`
	// FK to timeslots.id
	TimeslotID *uint64 `gorm:"column:timeslot_id;index" json:"-"`
	Status     Status  `gorm:"column:status;size:20;not null;default:'pending_initial';index" json:"status"`

	InitialApprovedAt *time.Time `gorm:"column:initial_approved_at" json:"initial_approved_at,omitempty"`
	InitialApprovedBy *string    `gorm:"column:initial_approved_by;size:64" json:"initial_approved_by,omitempty"`
	FinalApprovedAt   *time.Time `gorm:"column:final_approved_at" json:"final_approved_at,omitempty"`
	FinalApprovedBy   *string    `gorm:"column:final_approved_by;size:64" json:"final_approved_by,omitempty"`
	RejectedAt        *time.Time `gorm:"column:rejected_at" json:"rejected_at,omitempty"`
	RejectionReason   string     `gorm:"column:rejection_reason;type:text" json:"rejection_reason,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Donation) TableName() string { return "donations" }

// Transition moves the donation to next, enforcing the state graph.
func (d *Donation) Transition(next Status) bool {
	if !d.Status.CanTransitionTo(next) {
		return false
	}
	d.Status = next
	return true
}
