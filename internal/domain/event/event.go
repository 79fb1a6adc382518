package event

import (
	"context"
	"time"

	"bloodbank-service/internal/domain/blood"
	"bloodbank-service/pkg/id"
)

type Type string

const (
	DonationSubmitted       Type = "donation.submitted"
	DonationInitialApproved Type = "donation.initial_approved"
	AppointmentBooked       Type = "donation.appointment_booked"
	DonationCompleted       Type = "donation.completed"
	DonationRejected        Type = "donation.rejected"

	RequestSubmitted Type = "request.submitted"
	RequestFulfilled Type = "request.fulfilled"
	RequestRejected  Type = "request.rejected"

	TimeslotCreated Type = "timeslot.created"
	TimeslotUpdated Type = "timeslot.updated"
	TimeslotDeleted Type = "timeslot.deleted"

	UnitsExpired  Type = "inventory.units_expired"
	UnitDiscarded Type = "inventory.unit_discarded"
)

// Event is what the core hands to downstream notification. Payload is one of
// the payload structs below and carries everything needed to render a message.
type Event struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

func New(t Type, at time.Time, payload any) Event {
	return Event{ID: id.NewEventID(), Type: t, OccurredAt: at.UTC(), Payload: payload}
}

// Key groups events of one aggregate, e.g. for partitioning.
func (e Event) Key() string {
	switch p := e.Payload.(type) {
	case DonationPayload:
		return p.DonationID
	case RequestPayload:
		return p.RequestID
	case TimeslotPayload:
		return p.TimeslotID
	case InventoryPayload:
		return string(p.BloodGroup)
	}
	return e.ID
}

type Emitter interface {
	Emit(ctx context.Context, e Event) error
}

type DonationPayload struct {
	DonationID       string      `json:"donation_id"`
	DonorID          string      `json:"donor_id"`
	DonorName        string      `json:"donor_name"`
	BloodGroup       blood.Group `json:"blood_group"`
	Quantity         int         `json:"quantity"`
	DonationDate     string      `json:"donation_date"`
	Status           string      `json:"status"`
	ApproverID       string      `json:"approver_id,omitempty"`
	AppointmentDate  string      `json:"appointment_date,omitempty"`
	SlotStart        string      `json:"slot_start,omitempty"`
	SlotEnd          string      `json:"slot_end,omitempty"`
	UnitID           string      `json:"unit_id,omitempty"`
	UnitExpiry       string      `json:"unit_expiry,omitempty"`
	NextEligibleDate string      `json:"next_eligible_date,omitempty"`
	Reason           string      `json:"reason,omitempty"`
}

type RequestPayload struct {
	RequestID         string      `json:"request_id"`
	PatientID         string      `json:"patient_id"`
	PatientName       string      `json:"patient_name"`
	BloodGroup        blood.Group `json:"blood_group"`
	Quantity          int         `json:"quantity"`
	FulfilledQuantity int         `json:"fulfilled_quantity"`
	Status            string      `json:"status"`
	Reason            string      `json:"reason,omitempty"`
}

type TimeslotPayload struct {
	TimeslotID string `json:"timeslot_id"`
	Date       string `json:"date"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Capacity   int    `json:"capacity"`
	IsActive   bool   `json:"is_active"`
}

type InventoryPayload struct {
	BloodGroup blood.Group `json:"blood_group,omitempty"`
	UnitID     string      `json:"unit_id,omitempty"`
	Quantity   int         `json:"quantity,omitempty"`
	Count      int64       `json:"count,omitempty"`
	AsOf       string      `json:"as_of"`
}

// DateString formats a stored date the way payloads carry it.
func DateString(t time.Time) string { return blood.Day(t).Format(time.DateOnly) }
