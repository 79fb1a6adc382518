package timeslot

import (
	"time"
)

// Table: timeslots
// (date, start_time) is unique; booked_count stays within [0, capacity].
type Timeslot struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	TimeslotID  string    `gorm:"column:timeslot_id;size:32;not null;uniqueIndex:ux_timeslots_timeslot_id" json:"timeslot_id"`
	Date        time.Time `gorm:"column:date;type:date;not null;uniqueIndex:ux_timeslots_date_start,priority:1" json:"date"`
	StartTime   string    `gorm:"column:start_time;size:5;not null;uniqueIndex:ux_timeslots_date_start,priority:2" json:"start_time"`
	EndTime     string    `gorm:"column:end_time;size:5;not null" json:"end_time"`
	Capacity    int       `gorm:"column:capacity;not null" json:"capacity"`
	BookedCount int       `gorm:"column:booked_count;not null;default:0" json:"booked_count"`
	IsActive    bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Timeslot) TableName() string { return "timeslots" }

func (t *Timeslot) HasSeat() bool { return t.BookedCount < t.Capacity }

func (t *Timeslot) Remaining() int {
	if t.BookedCount >= t.Capacity {
		return 0
	}
	return t.Capacity - t.BookedCount
}

// Bookable reports whether the slot can take a new booking on or after today.
func (t *Timeslot) Bookable(today time.Time) bool {
	return t.IsActive && !t.Date.Before(today) && t.HasSeat()
}

// ListFilter narrows Repository.List; zero values mean "no filter".
type ListFilter struct {
	From       *time.Time
	OnlyActive bool
	OnlyOpen   bool
}
