package inventory

import (
	"time"

	"bloodbank-service/internal/domain/blood"
)

type UnitStatus string

const (
	StatusAvailable UnitStatus = "available"
	StatusUsed      UnitStatus = "used"
	StatusExpired   UnitStatus = "expired"
	StatusDiscarded UnitStatus = "discarded"
	StatusReserved  UnitStatus = "reserved"
)

// Table: blood_units
// A unit never grows. Units made by a split keep the originating donation in
// SourceDonationID and point at the unit they were cut from.
type BloodUnit struct {
	ID         uint64      `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	UnitID     string      `gorm:"column:unit_id;size:32;not null;uniqueIndex:ux_blood_units_unit_id" json:"unit_id"`
	BloodGroup blood.Group `gorm:"column:blood_group;size:3;not null;index:idx_blood_units_group_status,priority:1" json:"blood_group"`
	Quantity   int         `gorm:"column:quantity;not null" json:"quantity"`
	ExpiryDate time.Time   `gorm:"column:expiry_date;type:date;not null;index" json:"expiry_date"`
	Status     UnitStatus  `gorm:"column:status;size:16;not null;default:'available';index:idx_blood_units_group_status,priority:2" json:"status"`
	Location   string      `gorm:"column:location;size:128" json:"location"`
	// Set only on the unit created by final approval; one unit per donation.
	DonationID       *uint64 `gorm:"column:donation_id;uniqueIndex:ux_blood_units_donation_id" json:"-"`
	SourceDonationID *uint64 `gorm:"column:source_donation_id;index" json:"-"`
	ParentUnitID     *uint64 `gorm:"column:parent_unit_id" json:"-"`
	Version          int     `gorm:"column:version;not null;default:0" json:"-"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (BloodUnit) TableName() string { return "blood_units" }

// Usable reports whether the unit may be handed out on the given day.
func (u *BloodUnit) Usable(today time.Time) bool {
	return u.Status == StatusAvailable && u.Quantity > 0 && u.ExpiryDate.After(today)
}

// Origin is the donation the unit's blood came from, whether or not it was split.
func (u *BloodUnit) Origin() *uint64 {
	if u.DonationID != nil {
		return u.DonationID
	}
	return u.SourceDonationID
}

// Source describes a completed donation turned into stock.
type Source struct {
	DonationID   uint64
	BloodGroup   blood.Group
	Quantity     int
	DonationDate time.Time
	Location     string
}

// Use records how much one allocation took from a unit.
type Use struct {
	UnitID    string `json:"unit_id"`
	Quantity  int    `json:"quantity"`
	SplitInto string `json:"split_into,omitempty"`
	// Donation the consumed blood came from.
	DonationID *uint64 `json:"-"`
}

type Allocation struct {
	BloodGroup blood.Group `json:"blood_group"`
	Requested  int         `json:"requested"`
	Allocated  int         `json:"allocated"`
	Uses       []Use       `json:"uses"`
}

// SingleOrigin returns the donation every use drew from, or nil when the
// allocation spans several donations or none.
func (a *Allocation) SingleOrigin() *uint64 {
	var origin *uint64
	for _, u := range a.Uses {
		if u.DonationID == nil {
			return nil
		}
		if origin == nil {
			origin = u.DonationID
			continue
		}
		if *origin != *u.DonationID {
			return nil
		}
	}
	return origin
}
