package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bloodbank-service/internal/domain"
	"bloodbank-service/internal/domain/blood"
	"bloodbank-service/internal/domain/donation"
	"bloodbank-service/internal/domain/donor"
	"bloodbank-service/internal/domain/inventory"
	"bloodbank-service/internal/domain/uow"
	"bloodbank-service/internal/usecase/registry"
	"bloodbank-service/internal/usecase/timeslot"
	"bloodbank-service/pkg/id"
)

type stockLine struct {
	group    blood.Group
	quantity int
}

var demoStock = []stockLine{
	{blood.OPos, 2},
	{blood.APos, 3},
	{blood.BPos, 1},
	{blood.ABPos, 2},
	{blood.ONeg, 1},
}

type seeded struct {
	DonorIDs  []string
	PatientID string
	Slots     int
	Units     int
}

// seed stores one completed donation per demo stock line, each from its own
// donor so unit and donor groups agree, plus a patient and tomorrow's slots.
// Slots that already exist are skipped so it can run more than once.
func seed(ctx context.Context, repos uow.Repos, tx uow.UnitOfWork, today time.Time, location string) (*seeded, error) {
	today = blood.Day(today)
	clock := func() time.Time { return today }
	reg := registry.NewUsecase(repos, tx, registry.WithClock(clock))
	slots := timeslot.NewUsecase(repos, tx, timeslot.WithClock(clock))
	out := &seeded{}

	for i, line := range demoStock {
		age := 25 + i
		d, err := reg.RegisterDonor(ctx, registry.RegisterDonorInput{
			FullName:      fmt.Sprintf("Test Donor %s", line.group),
			BloodGroup:    line.group,
			ContactNumber: "1234567890",
			Age:           &age,
			Gender:        donor.GenderOther,
		})
		if err != nil {
			return nil, fmt.Errorf("donor %s: %w", line.group, err)
		}
		if err := stock(ctx, tx, d.DonorID, line, today, location); err != nil {
			return nil, fmt.Errorf("stock %s: %w", line.group, err)
		}
		out.DonorIDs = append(out.DonorIDs, d.DonorID)
		out.Units++
	}

	p, err := reg.RegisterPatient(ctx, registry.RegisterPatientInput{
		FullName:         "Test Patient",
		BloodGroup:       blood.OPos,
		ContactNumber:    "0987654321",
		EmergencyContact: "1122334455",
		Age:              40,
	})
	if err != nil {
		return nil, fmt.Errorf("patient: %w", err)
	}
	out.PatientID = p.PatientID

	for _, hours := range [][2]string{{"09:00", "10:00"}, {"10:00", "11:00"}, {"13:00", "14:00"}} {
		_, err := slots.Create(ctx, timeslot.CreateInput{
			Date:      blood.AddDays(today, 1),
			StartTime: hours[0],
			EndTime:   hours[1],
			Capacity:  3,
		})
		if errors.Is(err, domain.ErrAlreadyExists) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("timeslot %s: %w", hours[0], err)
		}
		out.Slots++
	}
	return out, nil
}

// stock records a final-approved donation and its unit in one transaction.
func stock(ctx context.Context, tx uow.UnitOfWork, donorID string, line stockLine, today time.Time, location string) error {
	return tx.WithinTx(ctx, func(r uow.Repos) error {
		d, err := r.Donors.GetByDonorID(ctx, donorID)
		if err != nil {
			return err
		}
		at := time.Now().UTC()
		approver := "seed"
		dn := &donation.Donation{
			DonationID:        id.NewID32(),
			DonorID:           d.ID,
			Quantity:          line.quantity,
			DonationDate:      today,
			Status:            donation.StatusFinalApproved,
			InitialApprovedAt: &at,
			InitialApprovedBy: &approver,
			FinalApprovedAt:   &at,
			FinalApprovedBy:   &approver,
		}
		if err := r.Donations.Create(ctx, dn); err != nil {
			return err
		}
		if _, _, err := inventory.NewLedger(r.Units).CreateFromDonation(ctx, inventory.Source{
			DonationID:   dn.ID,
			BloodGroup:   line.group,
			Quantity:     line.quantity,
			DonationDate: today,
			Location:     location,
		}); err != nil {
			return err
		}
		if d.AdvanceEligibility(blood.NextEligibleAfter(today)) {
			return r.Donors.Save(ctx, d)
		}
		return nil
	})
}
