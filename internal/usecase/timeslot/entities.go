package timeslot

import (
	"time"
)

type CreateInput struct {
	Date      time.Time
	StartTime string // HH:MM
	EndTime   string // HH:MM
	Capacity  int
	IsActive  *bool // nil means active
}

// UpdateInput replaces only the fields that are set.
type UpdateInput struct {
	TimeslotID string
	Date       *time.Time
	StartTime  *string
	EndTime    *string
	Capacity   *int
	IsActive   *bool
}

type TimeslotDTO struct {
	TimeslotID  string    `json:"timeslot_id"`
	Date        time.Time `json:"date"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
	Capacity    int       `json:"capacity"`
	BookedCount int       `json:"booked_count"`
	Remaining   int       `json:"remaining"`
	IsActive    bool      `json:"is_active"`
}
