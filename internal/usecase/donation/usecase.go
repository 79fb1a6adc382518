package donation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bloodbank-service/internal/domain"
	"bloodbank-service/internal/domain/blood"
	domainDonation "bloodbank-service/internal/domain/donation"
	"bloodbank-service/internal/domain/donor"
	"bloodbank-service/internal/domain/event"
	"bloodbank-service/internal/domain/inventory"
	"bloodbank-service/internal/domain/timeslot"
	"bloodbank-service/internal/domain/uow"
	"bloodbank-service/pkg/id"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("bloodbank-service/usecase/donation")

type Usecase struct {
	repos    uow.Repos
	uow      uow.UnitOfWork
	emitter  event.Emitter
	log      *zap.Logger
	now      func() time.Time
	location string
}

type Option func(*Usecase)

func WithEmitter(e event.Emitter) Option { return func(u *Usecase) { u.emitter = e } }
func WithLogger(l *zap.Logger) Option { return func(u *Usecase) { u.log = l } }
func WithClock(now func() time.Time) Option { return func(u *Usecase) { u.now = now } }

// WithUnitLocation sets where units created by final approval are stored.
func WithUnitLocation(loc string) Option { return func(u *Usecase) { u.location = loc } }

// NewUsecase: repos serve reads outside a transaction, tx runs every transition.
func NewUsecase(repos uow.Repos, tx uow.UnitOfWork, opts ...Option) *Usecase {
	u := &Usecase{repos: repos, uow: tx, log: zap.NewNop(), now: time.Now}
	for _, o := range opts {
		o(u)
	}
	if u.log == nil {
		u.log = zap.NewNop()
	}
	return u
}

func (u *Usecase) today() time.Time { return blood.Day(u.now()) }

// Submit creates a pending donation for an eligible donor.
func (u *Usecase) Submit(ctx context.Context, in SubmitInput) (*DonationDTO, error) {
	if in.Quantity <= 0 {
		return nil, domain.Invalid("quantity must be positive")
	}
	d, err := u.repos.Donors.GetByDonorID(ctx, in.DonorID)
	if err != nil {
		return nil, err
	}

	today := u.today()
	if ok, days := donor.CheckEligibility(d, today); !ok {
		u.log.Info("donation refused: cooldown active",
			zap.String("donor_id", d.DonorID), zap.Int("days_remaining", days))
		return nil, &domain.EligibilityError{DaysRemaining: days, NextEligibleDate: *d.NextEligibleDate}
	}

	date := today
	if !in.DonationDate.IsZero() {
		date = blood.Day(in.DonationDate)
	}
	dn := &domainDonation.Donation{
		DonationID:   id.NewID32(),
		DonorID:      d.ID,
		Quantity:     in.Quantity,
		DonationDate: date,
		Status:       domainDonation.StatusPendingInitial,
	}
	if err := u.repos.Donations.Create(ctx, dn); err != nil {
		return nil, err
	}

	u.emit(ctx, event.DonationSubmitted, payload(dn, d))
	return toDTO(dn, d, ""), nil
}

func (u *Usecase) ApproveInitial(ctx context.Context, in ApproveInput) (*DonationDTO, error) {
	var (
		dto *DonationDTO
		ev  event.DonationPayload
	)
	err := u.uow.WithinDonationTx(ctx, in.DonationID, func(r uow.Repos, dn *domainDonation.Donation) error {
		if err := step(dn, domainDonation.StatusPendingInitial, domainDonation.StatusInitialApproved); err != nil {
			return err
		}
		at := u.now().UTC()
		dn.InitialApprovedAt = &at
		dn.InitialApprovedBy = &in.ApproverID
		if err := r.Donations.Save(ctx, dn); err != nil {
			return err
		}

		d, err := r.Donors.GetByID(ctx, dn.DonorID)
		if err != nil {
			return err
		}
		ev = payload(dn, d)
		ev.ApproverID = in.ApproverID
		dto = toDTO(dn, d, "")
		return nil
	})
	if err != nil {
		u.logRefusal("approve initial", in.DonationID, err)
		return nil, err
	}
	u.emit(ctx, event.DonationInitialApproved, ev)
	return dto, nil
}

// BookSlot takes a seat on the timeslot and confirms the appointment.
// The seat stays held until the donation completes or is rejected.
func (u *Usecase) BookSlot(ctx context.Context, in BookInput) (*DonationDTO, error) {
	ctx, span := tracer.Start(ctx, "donation.BookSlot")
	defer span.End()
	span.SetAttributes(attribute.String("donation_id", in.DonationID), attribute.String("timeslot_id", in.TimeslotID))

	var (
		dto *DonationDTO
		ev  event.DonationPayload
	)
	err := u.uow.WithinDonationTx(ctx, in.DonationID, func(r uow.Repos, dn *domainDonation.Donation) error {
		if dn.Status != domainDonation.StatusInitialApproved {
			return invalid(dn.Status, domainDonation.StatusSlotConfirmed)
		}
		slot, err := r.Timeslots.GetByTimeslotID(ctx, in.TimeslotID)
		if err != nil {
			return err
		}
		if !slot.IsActive || slot.Date.Before(u.today()) {
			return domain.Invalid("timeslot is not open for booking")
		}
		held, err := r.Donations.OccupiedTimeslotIDs(ctx, dn.DonorID)
		if err != nil {
			return err
		}
		for _, sid := range held {
			if sid == slot.ID {
				return domain.Invalid("donor already holds a seat on this timeslot")
			}
		}

		if err := book(ctx, r.Timeslots, slot); err != nil {
			return err
		}

		dn.Transition(domainDonation.StatusSlotConfirmed)
		date := slot.Date
		dn.AppointmentDate = &date
		dn.TimeslotID = &slot.ID
		if err := r.Donations.Save(ctx, dn); err != nil {
			return err
		}

		d, err := r.Donors.GetByID(ctx, dn.DonorID)
		if err != nil {
			return err
		}
		ev = payload(dn, d)
		ev.SlotStart, ev.SlotEnd = slot.StartTime, slot.EndTime
		dto = toDTO(dn, d, slot.TimeslotID)
		return nil
	})
	if err != nil {
		u.logRefusal("book slot", in.DonationID, err)
		if !isExpected(err) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return nil, err
	}
	u.emit(ctx, event.AppointmentBooked, ev)
	return dto, nil
}

// book takes one seat, re-reading the slot once if the first attempt lost.
func book(ctx context.Context, slots timeslot.Repository, slot *timeslot.Timeslot) error {
	ok, err := slots.TryBook(ctx, slot.ID)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	fresh, err := slots.GetByID(ctx, slot.ID)
	if err != nil {
		return err
	}
	if fresh.HasSeat() {
		if ok, err = slots.TryBook(ctx, slot.ID); err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return fmt.Errorf("%w: %d of %d seats taken", domain.ErrCapacityExceeded, fresh.BookedCount, fresh.Capacity)
}

// ApproveFinal completes the donation: it frees the seat, stores the unit and
// advances the donor's eligibility. A second call is refused and creates nothing.
func (u *Usecase) ApproveFinal(ctx context.Context, in ApproveInput) (*DonationDTO, error) {
	ctx, span := tracer.Start(ctx, "donation.ApproveFinal")
	defer span.End()
	span.SetAttributes(attribute.String("donation_id", in.DonationID))

	var (
		dto *DonationDTO
		ev  event.DonationPayload
	)
	err := u.uow.WithinDonationTx(ctx, in.DonationID, func(r uow.Repos, dn *domainDonation.Donation) error {
		if dn.Status == domainDonation.StatusFinalApproved {
			return fmt.Errorf("%w: donation already completed", domain.ErrAlreadyProcessed)
		}
		if err := step(dn, domainDonation.StatusSlotConfirmed, domainDonation.StatusFinalApproved); err != nil {
			return err
		}
		at := u.now().UTC()
		dn.FinalApprovedAt = &at
		dn.FinalApprovedBy = &in.ApproverID
		if err := r.Donations.Save(ctx, dn); err != nil {
			return err
		}

		var slotID string
		if dn.TimeslotID != nil {
			if err := r.Timeslots.Release(ctx, *dn.TimeslotID); err != nil {
				return err
			}
			if s, err := r.Timeslots.GetByID(ctx, *dn.TimeslotID); err == nil {
				slotID = s.TimeslotID
			}
		}

		d, err := r.Donors.GetByIDForUpdate(ctx, dn.DonorID)
		if err != nil {
			return err
		}
		if d.AdvanceEligibility(blood.NextEligibleAfter(dn.DonationDate)) {
			if err := r.Donors.Save(ctx, d); err != nil {
				return err
			}
		}

		unit, created, err := inventory.NewLedger(r.Units).CreateFromDonation(ctx, inventory.Source{
			DonationID:   dn.ID,
			BloodGroup:   d.BloodGroup,
			Quantity:     dn.Quantity,
			DonationDate: dn.DonationDate,
			Location:     u.location,
		})
		if err != nil {
			return err
		}
		if !created {
			u.log.Warn("unit already existed for donation", zap.String("donation_id", dn.DonationID))
		}
		span.SetAttributes(attribute.String("blood_group", string(d.BloodGroup)), attribute.Int("quantity", unit.Quantity))

		ev = payload(dn, d)
		ev.ApproverID = in.ApproverID
		ev.UnitID = unit.UnitID
		ev.UnitExpiry = event.DateString(unit.ExpiryDate)
		if d.NextEligibleDate != nil {
			ev.NextEligibleDate = event.DateString(*d.NextEligibleDate)
		}
		dto = toDTO(dn, d, slotID)
		dto.Unit = &UnitDTO{UnitID: unit.UnitID, Quantity: unit.Quantity, ExpiryDate: unit.ExpiryDate}
		return nil
	})
	if err != nil {
		u.logRefusal("approve final", in.DonationID, err)
		if !isExpected(err) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return nil, err
	}
	u.emit(ctx, event.DonationCompleted, ev)
	return dto, nil
}

// Reject ends a donation that has not completed, freeing a held seat.
func (u *Usecase) Reject(ctx context.Context, in RejectInput) (*DonationDTO, error) {
	var (
		dto *DonationDTO
		ev  event.DonationPayload
	)
	err := u.uow.WithinDonationTx(ctx, in.DonationID, func(r uow.Repos, dn *domainDonation.Donation) error {
		held := dn.Status.OccupiesSeat()
		if !dn.Transition(domainDonation.StatusRejected) {
			return invalid(dn.Status, domainDonation.StatusRejected)
		}
		at := u.now().UTC()
		dn.RejectedAt = &at
		dn.RejectionReason = in.Reason
		if err := r.Donations.Save(ctx, dn); err != nil {
			return err
		}
		if held && dn.TimeslotID != nil {
			if err := r.Timeslots.Release(ctx, *dn.TimeslotID); err != nil {
				return err
			}
		}

		d, err := r.Donors.GetByID(ctx, dn.DonorID)
		if err != nil {
			return err
		}
		ev = payload(dn, d)
		ev.Reason = in.Reason
		dto = toDTO(dn, d, "")
		return nil
	})
	if err != nil {
		u.logRefusal("reject", in.DonationID, err)
		return nil, err
	}
	u.emit(ctx, event.DonationRejected, ev)
	return dto, nil
}

func (u *Usecase) Get(ctx context.Context, donationID string) (*DonationDTO, error) {
	dn, err := u.repos.Donations.GetByDonationID(ctx, donationID)
	if err != nil {
		return nil, err
	}
	d, err := u.repos.Donors.GetByID(ctx, dn.DonorID)
	if err != nil {
		return nil, err
	}
	return toDTO(dn, d, u.slotPublicID(ctx, dn.TimeslotID)), nil
}

// History lists a donor's donations, newest first.
func (u *Usecase) History(ctx context.Context, donorID string) ([]DonationDTO, error) {
	d, err := u.repos.Donors.GetByDonorID(ctx, donorID)
	if err != nil {
		return nil, err
	}
	list, err := u.repos.Donations.ListByDonor(ctx, d.ID)
	if err != nil {
		return nil, err
	}
	out := make([]DonationDTO, 0, len(list))
	for i := range list {
		out = append(out, *toDTO(&list[i], d, u.slotPublicID(ctx, list[i].TimeslotID)))
	}
	return out, nil
}

func (u *Usecase) slotPublicID(ctx context.Context, slotID *uint64) string {
	if slotID == nil {
		return ""
	}
	s, err := u.repos.Timeslots.GetByID(ctx, *slotID)
	if err != nil {
		return ""
	}
	return s.TimeslotID
}

// step applies from -> to, refusing any other source status.
func step(dn *domainDonation.Donation, from, to domainDonation.Status) error {
	if dn.Status != from || !dn.Transition(to) {
		return invalid(dn.Status, to)
	}
	return nil
}

func invalid(from, to domainDonation.Status) error {
	return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, from, to)
}

// isExpected reports refusals that are normal business outcomes.
func isExpected(err error) bool {
	var elig *domain.EligibilityError
	return errors.Is(err, domain.ErrInvalidTransition) ||
		errors.Is(err, domain.ErrCapacityExceeded) ||
		errors.Is(err, domain.ErrAlreadyProcessed) ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrInvalidInput) ||
		errors.As(err, &elig)
}

func (u *Usecase) logRefusal(op, donationID string, err error) {
	if isExpected(err) {
		u.log.Info("donation "+op+" refused", zap.String("donation_id", donationID), zap.Error(err))
		return
	}
	u.log.Error("donation "+op+" failed", zap.String("donation_id", donationID), zap.Error(err))
}

// emit publishes after commit; a failing emitter never undoes the operation.
func (u *Usecase) emit(ctx context.Context, t event.Type, p event.DonationPayload) {
	if u.emitter == nil {
		return
	}
	if err := u.emitter.Emit(ctx, event.New(t, u.now(), p)); err != nil {
		u.log.Error("emit event", zap.String("type", string(t)), zap.String("donation_id", p.DonationID), zap.Error(err))
	}
}

func payload(dn *domainDonation.Donation, d *donor.Donor) event.DonationPayload {
	p := event.DonationPayload{
		DonationID:   dn.DonationID,
		DonorID:      d.DonorID,
		DonorName:    d.FullName,
		BloodGroup:   d.BloodGroup,
		Quantity:     dn.Quantity,
		DonationDate: event.DateString(dn.DonationDate),
		Status:       string(dn.Status),
	}
	if dn.AppointmentDate != nil {
		p.AppointmentDate = event.DateString(*dn.AppointmentDate)
	}
	return p
}

func toDTO(dn *domainDonation.Donation, d *donor.Donor, slotID string) *DonationDTO {
	return &DonationDTO{
		DonationID:        dn.DonationID,
		DonorID:           d.DonorID,
		BloodGroup:        d.BloodGroup,
		Quantity:          dn.Quantity,
		DonationDate:      dn.DonationDate,
		AppointmentDate:   dn.AppointmentDate,
		TimeslotID:        slotID,
		Status:            dn.Status,
		InitialApprovedAt: dn.InitialApprovedAt,
		InitialApprovedBy: dn.InitialApprovedBy,
		FinalApprovedAt:   dn.FinalApprovedAt,
		FinalApprovedBy:   dn.FinalApprovedBy,
		RejectedAt:        dn.RejectedAt,
		RejectionReason:   dn.RejectionReason,
	}
}
