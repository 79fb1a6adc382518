package inventory

import (
	"time"

	"bloodbank-service/internal/domain/blood"
	domainInventory "bloodbank-service/internal/domain/inventory"
)

type UnitDTO struct {
	UnitID     string                     `json:"unit_id"`
	BloodGroup blood.Group                `json:"blood_group"`
	Quantity   int                        `json:"quantity"`
	ExpiryDate time.Time                  `json:"expiry_date"`
	Status     domainInventory.UnitStatus `json:"status"`
	Location   string                     `json:"location,omitempty"`
	CreatedAt  time.Time                  `json:"created_at"`
}

type AvailabilityDTO struct {
	BloodGroup     blood.Group `json:"blood_group"`
	Requested      int         `json:"requested"`
	Sufficient     bool        `json:"sufficient"`
	TotalAvailable int         `json:"total_available"`
}

type SummaryDTO struct {
	AsOf   time.Time           `json:"as_of"`
	Groups map[blood.Group]int `json:"groups"`
	Total  int                 `json:"total"`
}
