package donation

import (
	"context"
	"errors"
	"testing"
	"time"

	"bloodbank-service/internal/adapter/repository/gormrepo"
	"bloodbank-service/internal/domain"
	"bloodbank-service/internal/domain/blood"
	domainDonation "bloodbank-service/internal/domain/donation"
	"bloodbank-service/internal/domain/donor"
	"bloodbank-service/internal/domain/timeslot"
	"bloodbank-service/internal/testutil/dbtest"
	"bloodbank-service/internal/testutil/donationmock"
	"bloodbank-service/internal/testutil/eventrec"
	"bloodbank-service/internal/testutil/uowmock"
	"bloodbank-service/pkg/id"
)

var errStore = errors.New("store unavailable")

// Donors, slots and units are real sqlite rows; donation storage is the mock.
func TestUsecase_DonationStoreFailures(t *testing.T) {
	now := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	ctx := context.Background()

	tests := []struct {
		name      string
		status    domainDonation.Status
		donations func() *donationmock.Repo
		call      func(uc *Usecase, dn *domainDonation.Donation, s *timeslot.Timeslot, d *donor.Donor) error
	}{
		{
			name:      "submit create fails",
			donations: func() *donationmock.Repo { return &donationmock.Repo{CreateFn: failCreate} },
			call:      func(uc *Usecase, _ *domainDonation.Donation, _ *timeslot.Timeslot, d *donor.Donor) error {
				_, err := uc.Submit(ctx, SubmitInput{DonorID: d.DonorID, Quantity: 1})
				return err
			},
		},
		{
			name:      "approve initial save fails",
			status:    domainDonation.StatusPendingInitial,
			donations: func() *donationmock.Repo { return &donationmock.Repo{SaveFn: failSave} },
			call:      func(uc *Usecase, dn *domainDonation.Donation, _ *timeslot.Timeslot, _ *donor.Donor) error {
				_, err := uc.ApproveInitial(ctx, ApproveInput{DonationID: dn.DonationID, ApproverID: "admin-1"})
				return err
			},
		},
		{
			name:      "book cannot read held seats",
			status:    domainDonation.StatusInitialApproved,
			donations: func() *donationmock.Repo {
				return &donationmock.Repo{
					OccupiedTimeslotIDsFn: func(context.Context, uint64) ([]uint64, error) { return nil, errStore },
				}
			},
			call: func(uc *Usecase, dn *domainDonation.Donation, s *timeslot.Timeslot, _ *donor.Donor) error {
				_, err := uc.BookSlot(ctx, BookInput{DonationID: dn.DonationID, TimeslotID: s.TimeslotID})
				return err
			},
		},
		{
			name:      "approve final save fails",
			status:    domainDonation.StatusSlotConfirmed,
			donations: func() *donationmock.Repo { return &donationmock.Repo{SaveFn: failSave} },
			call:      func(uc *Usecase, dn *domainDonation.Donation, _ *timeslot.Timeslot, _ *donor.Donor) error {
				_, err := uc.ApproveFinal(ctx, ApproveInput{DonationID: dn.DonationID, ApproverID: "admin-1"})
				return err
			},
		},
		{
			name:      "reject save fails",
			status:    domainDonation.StatusPendingInitial,
			donations: func() *donationmock.Repo { return &donationmock.Repo{SaveFn: failSave} },
			call:      func(uc *Usecase, dn *domainDonation.Donation, _ *timeslot.Timeslot, _ *donor.Donor) error {
				_, err := uc.Reject(ctx, RejectInput{DonationID: dn.DonationID})
				return err
			},
		},
		{
			name:      "history list fails",
			donations: func() *donationmock.Repo {
				return &donationmock.Repo{
					ListByDonorFn: func(context.Context, uint64) ([]domainDonation.Donation, error) { return nil, errStore },
				}
			},
			call: func(uc *Usecase, _ *domainDonation.Donation, _ *timeslot.Timeslot, d *donor.Donor) error {
				_, err := uc.History(ctx, d.DonorID)
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := dbtest.Open(t)
			repos := gormrepo.Repos(db)

			d := &donor.Donor{DonorID: id.NewID32(), FullName: "Dana Donor", BloodGroup: blood.OPos}
			if err := repos.Donors.Create(ctx, d); err != nil {
				t.Fatal(err)
			}
			s := &timeslot.Timeslot{TimeslotID: id.NewID32(), Date: blood.AddDays(now, 1), StartTime: "09:00", EndTime: "10:00", Capacity: 2, IsActive: true}
			if err := repos.Timeslots.Create(ctx, s); err != nil {
				t.Fatal(err)
			}
			dn := &domainDonation.Donation{ID: 41, DonationID: id.NewID32(), DonorID: d.ID, Quantity: 1, DonationDate: blood.Day(now), Status: tt.status}
			if tt.status == domainDonation.StatusSlotConfirmed {
				dn.TimeslotID = &s.ID
			}

			repos.Donations = tt.donations()
			rec := eventrec.New()
			uc := NewUsecase(repos, uowmock.Passthrough(repos, dn, nil),
				WithEmitter(rec),
				WithClock(func() time.Time { return now }),
			)

			err := tt.call(uc, dn, s, d)
			if !errors.Is(err, errStore) {
				t.Fatalf("want store error, got %v", err)
			}
			if len(rec.Events()) != 0 {
				t.Fatalf("failed %s emitted %v", tt.name, rec.Types())
			}
			if _, err := repos.Units.GetByDonationID(ctx, dn.ID); !errors.Is(err, domain.ErrNotFound) {
				t.Fatalf("no unit may be stored: %v", err)
			}
			got, err := repos.Timeslots.GetByID(ctx, s.ID)
			if err != nil {
				t.Fatal(err)
			}
			if got.BookedCount != 0 {
				t.Fatalf("booked_count = %d", got.BookedCount)
			}
		})
	}
}

func failCreate(context.Context, *domainDonation.Donation) error { return errStore }

func failSave(context.Context, *domainDonation.Donation) error { return errStore }
