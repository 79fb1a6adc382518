package uow

import (
	"context"

	"bloodbank-service/internal/domain/donation"
	"bloodbank-service/internal/domain/donor"
	"bloodbank-service/internal/domain/inventory"
	"bloodbank-service/internal/domain/request"
	"bloodbank-service/internal/domain/timeslot"
)

// Repos are bound to one transaction.
type Repos struct {
	Donors    donor.Repository
	Patients  donor.PatientRepository
	Donations donation.Repository
	Timeslots timeslot.Repository
	Units     inventory.Repository
	Requests  request.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// lock the donation row first, then pass it in
	WithinDonationTx(ctx context.Context, donationID string, fn func(r Repos, d *donation.Donation) error) error
	// lock the request row first, then pass it in
	WithinRequestTx(ctx context.Context, requestID string, fn func(r Repos, br *request.BloodRequest) error) error
}
