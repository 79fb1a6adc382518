package gormrepo

import (
	"context"
	"testing"
	"time"

	"bloodbank-service/internal/domain/blood"
	"bloodbank-service/internal/domain/donation"
	"bloodbank-service/internal/domain/donor"
	"bloodbank-service/internal/domain/timeslot"
	"bloodbank-service/pkg/id"

	"gorm.io/gorm"
)

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func seedDonor(t *testing.T, db *gorm.DB, g blood.Group) *donor.Donor {
	t.Helper()
	d := &donor.Donor{DonorID: id.NewID32(), AccountID: id.NewID32(), FullName: "Dana Donor", BloodGroup: g, ContactNumber: "0800"}
	if err := NewDonorRepository(db).Create(context.Background(), d); err != nil {
		t.Fatalf("seed donor: %v", err)
	}
	return d
}

func seedSlot(t *testing.T, db *gorm.DB, date time.Time, start string, capacity int) *timeslot.Timeslot {
	t.Helper()
	s := &timeslot.Timeslot{TimeslotID: id.NewID32(), Date: date, StartTime: start, EndTime: "23:59", Capacity: capacity, IsActive: true}
	if err := NewTimeslotRepository(db).Create(context.Background(), s); err != nil {
		t.Fatalf("seed slot: %v", err)
	}
	return s
}

func seedDonation(t *testing.T, db *gorm.DB, donorID uint64, status donation.Status, slotID *uint64) *donation.Donation {
	t.Helper()
	d := &donation.Donation{
		DonationID:   id.NewID32(),
		DonorID:      donorID,
		Quantity:     1,
		DonationDate: day(2024, 1, 10),
		Status:       status,
		TimeslotID:   slotID,
	}
	if err := NewDonationRepository(db).Create(context.Background(), d); err != nil {
		t.Fatalf("seed donation: %v", err)
	}
	return d
}
