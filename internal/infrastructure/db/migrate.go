package db

import (
	"bloodbank-service/internal/domain/donation"
	"bloodbank-service/internal/domain/donor"
	"bloodbank-service/internal/domain/inventory"
	"bloodbank-service/internal/domain/request"
	"bloodbank-service/internal/domain/timeslot"

	"gorm.io/gorm"
)

// Models lists every persisted entity in creation order.
func Models() []any {
	return []any{
		&donor.Donor{},
		&donor.Patient{},
		&timeslot.Timeslot{},
		&donation.Donation{},
		&inventory.BloodUnit{},
		&request.BloodRequest{},
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
