package registry

import (
	"context"
	"strings"
	"time"

	"bloodbank-service/internal/domain"
	"bloodbank-service/internal/domain/blood"
	domainDonation "bloodbank-service/internal/domain/donation"
	"bloodbank-service/internal/domain/donor"
	"bloodbank-service/internal/domain/uow"
	"bloodbank-service/pkg/id"

	"go.uber.org/zap"
)

const (
	minDonorAge = 18
	maxDonorAge = 65
)

type Usecase struct {
	repos uow.Repos
	uow   uow.UnitOfWork
	log   *zap.Logger
	now   func() time.Time
}

type Option func(*Usecase)

func WithLogger(l *zap.Logger) Option { return func(u *Usecase) { u.log = l } }
func WithClock(now func() time.Time) Option { return func(u *Usecase) { u.now = now } }

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

func validProfile(name string, g blood.Group, gender donor.Gender) error {
	if strings.TrimSpace(name) == "" {
		return domain.Invalid("full_name is required")
	}
	if !g.Valid() {
		return domain.Invalid("unknown blood group " + string(g))
	}
	switch gender {
	case "", donor.GenderMale, donor.GenderFemale, donor.GenderOther:
		return nil
	}
	return domain.Invalid("unknown gender " + string(gender))
}

func (u *Usecase) RegisterDonor(ctx context.Context, in RegisterDonorInput) (*DonorDTO, error) {
	if err := validProfile(in.FullName, in.BloodGroup, in.Gender); err != nil {
		return nil, err
	}
	if in.Age != nil && (*in.Age < minDonorAge || *in.Age > maxDonorAge) {
		return nil, domain.Invalid("donor age must be between 18 and 65")
	}
	d := &donor.Donor{
		DonorID:       id.NewID32(),
		AccountID:     in.AccountID,
		FullName:      strings.TrimSpace(in.FullName),
		BloodGroup:    in.BloodGroup,
		ContactNumber: in.ContactNumber,
		Age:           in.Age,
		Gender:        in.Gender,
		Address:       in.Address,
	}
	if err := u.repos.Donors.Create(ctx, d); err != nil {
		u.log.Error("register donor", zap.Error(err))
		return nil, err
	}
	u.log.Info("donor registered", zap.String("donor_id", d.DonorID), zap.String("blood_group", string(d.BloodGroup)))
	return u.donorDTO(d), nil
}

// GetDonor includes eligibility as of today.
func (u *Usecase) GetDonor(ctx context.Context, donorID string) (*DonorDTO, error) {
	d, err := u.repos.Donors.GetByDonorID(ctx, donorID)
	if err != nil {
		return nil, err
	}
	return u.donorDTO(d), nil
}

// DeleteDonor frees every seat the donor holds, then removes the donor and
// their donations. Units already in stock are kept.
func (u *Usecase) DeleteDonor(ctx context.Context, donorID string) error {
	var released int
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		d, err := r.Donors.GetByDonorID(ctx, donorID)
		if err != nil {
			return err
		}
		// held seats are read from rows locked until the delete commits
		rows, err := r.Donations.ListByDonorForUpdate(ctx, d.ID)
		if err != nil {
			return err
		}
		held := heldTimeslots(rows)
		for _, slotID := range held {
			if err := r.Timeslots.Release(ctx, slotID); err != nil {
				return err
			}
		}
		released = len(held)
		return r.Donors.Delete(ctx, d.ID)
	})
	if err != nil {
		u.log.Info("delete donor refused", zap.String("donor_id", donorID), zap.Error(err))
		return err
	}
	u.log.Info("donor deleted", zap.String("donor_id", donorID), zap.Int("seats_released", released))
	return nil
}

func heldTimeslots(rows []domainDonation.Donation) []uint64 {
	var ids []uint64
	for _, dn := range rows {
		if dn.Status.OccupiesSeat() && dn.TimeslotID != nil {
			ids = append(ids, *dn.TimeslotID)
		}
	}
	return ids
}

func (u *Usecase) RegisterPatient(ctx context.Context, in RegisterPatientInput) (*PatientDTO, error) {
	if err := validProfile(in.FullName, in.BloodGroup, in.Gender); err != nil {
		return nil, err
	}
	if in.Age < 0 {
		return nil, domain.Invalid("age must not be negative")
	}
	p := &donor.Patient{
		PatientID:        id.NewID32(),
		AccountID:        in.AccountID,
		FullName:         strings.TrimSpace(in.FullName),
		BloodGroup:       in.BloodGroup,
		ContactNumber:    in.ContactNumber,
		EmergencyContact: in.EmergencyContact,
		Age:              in.Age,
		Gender:           in.Gender,
		Address:          in.Address,
	}
	if err := u.repos.Patients.Create(ctx, p); err != nil {
		u.log.Error("register patient", zap.Error(err))
		return nil, err
	}
	u.log.Info("patient registered", zap.String("patient_id", p.PatientID))
	return patientDTO(p), nil
}

func (u *Usecase) GetPatient(ctx context.Context, patientID string) (*PatientDTO, error) {
	p, err := u.repos.Patients.GetByPatientID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return patientDTO(p), nil
}

func (u *Usecase) donorDTO(d *donor.Donor) *DonorDTO {
	ok, days := donor.CheckEligibility(d, blood.Day(u.now()))
	return &DonorDTO{
		DonorID:          d.DonorID,
		FullName:         d.FullName,
		BloodGroup:       d.BloodGroup,
		ContactNumber:    d.ContactNumber,
		Age:              d.Age,
		Gender:           d.Gender,
		Address:          d.Address,
		NextEligibleDate: d.NextEligibleDate,
		Eligible:         ok,
		DaysRemaining:    days,
		CreatedAt:        d.CreatedAt,
	}
}

func patientDTO(p *donor.Patient) *PatientDTO {
	return &PatientDTO{
		PatientID:        p.PatientID,
		FullName:         p.FullName,
		BloodGroup:       p.BloodGroup,
		ContactNumber:    p.ContactNumber,
		EmergencyContact: p.EmergencyContact,
		Age:              p.Age,
		Gender:           p.Gender,
		Address:          p.Address,
		CreatedAt:        p.CreatedAt,
	}
}
