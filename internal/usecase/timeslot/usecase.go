package timeslot

import (
	"context"
	"fmt"
	"time"

	"bloodbank-service/internal/domain"
	"bloodbank-service/internal/domain/blood"
	"bloodbank-service/internal/domain/event"
	domainTimeslot "bloodbank-service/internal/domain/timeslot"
	"bloodbank-service/internal/domain/uow"
	"bloodbank-service/pkg/id"

	"go.uber.org/zap"
)

const clockLayout = "15:04"

type Usecase struct {
	repos   uow.Repos
	uow     uow.UnitOfWork
	emitter event.Emitter
	log     *zap.Logger
	now     func() time.Time
}

type Option func(*Usecase)

func WithEmitter(e event.Emitter) Option { return func(u *Usecase) { u.emitter = e } }
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

// ListBookable returns open slots from today on, skipping any slot the donor
// already holds a seat on. Ordered by date and start time.
func (u *Usecase) ListBookable(ctx context.Context, donorID string, today time.Time) ([]TimeslotDTO, error) {
	d, err := u.repos.Donors.GetByDonorID(ctx, donorID)
	if err != nil {
		return nil, err
	}
	if today.IsZero() {
		today = u.now()
	}
	held, err := u.repos.Donations.OccupiedTimeslotIDs(ctx, d.ID)
	if err != nil {
		return nil, err
	}
	slots, err := u.repos.Timeslots.ListBookable(ctx, blood.Day(today), held)
	if err != nil {
		return nil, err
	}
	return toDTOs(slots), nil
}

func (u *Usecase) List(ctx context.Context, f domainTimeslot.ListFilter) ([]TimeslotDTO, error) {
	if f.From != nil {
		from := blood.Day(*f.From)
		f.From = &from
	}
	slots, err := u.repos.Timeslots.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return toDTOs(slots), nil
}

func (u *Usecase) Get(ctx context.Context, timeslotID string) (*TimeslotDTO, error) {
	s, err := u.repos.Timeslots.GetByTimeslotID(ctx, timeslotID)
	if err != nil {
		return nil, err
	}
	dto := toDTO(s)
	return &dto, nil
}

func (u *Usecase) Create(ctx context.Context, in CreateInput) (*TimeslotDTO, error) {
	s := &domainTimeslot.Timeslot{
		TimeslotID: id.NewID32(),
		Date:       blood.Day(in.Date),
		StartTime:  in.StartTime,
		EndTime:    in.EndTime,
		Capacity:   in.Capacity,
		IsActive:   in.IsActive == nil || *in.IsActive,
	}
	if err := validate(s); err != nil {
		return nil, err
	}
	if err := u.repos.Timeslots.Create(ctx, s); err != nil {
		return nil, err
	}
	u.emit(ctx, event.TimeslotCreated, s)
	dto := toDTO(s)
	return &dto, nil
}

// Update never lowers capacity below the seats already taken.
func (u *Usecase) Update(ctx context.Context, in UpdateInput) (*TimeslotDTO, error) {
	var out *domainTimeslot.Timeslot
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		s, err := r.Timeslots.GetByTimeslotIDForUpdate(ctx, in.TimeslotID)
		if err != nil {
			return err
		}
		if in.Date != nil {
			s.Date = blood.Day(*in.Date)
		}
		if in.StartTime != nil {
			s.StartTime = *in.StartTime
		}
		if in.EndTime != nil {
			s.EndTime = *in.EndTime
		}
		if in.Capacity != nil {
			s.Capacity = *in.Capacity
		}
		if in.IsActive != nil {
			s.IsActive = *in.IsActive
		}
		if err := validate(s); err != nil {
			return err
		}
		if s.Capacity < s.BookedCount {
			return domain.Invalid(fmt.Sprintf("capacity %d is below the %d seats already booked", s.Capacity, s.BookedCount))
		}
		if err := r.Timeslots.Save(ctx, s); err != nil {
			return err
		}
		out = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.emit(ctx, event.TimeslotUpdated, out)
	dto := toDTO(out)
	return &dto, nil
}

// Delete refuses slots that still hold seats; deactivate those instead.
func (u *Usecase) Delete(ctx context.Context, timeslotID string) error {
	var gone *domainTimeslot.Timeslot
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		s, err := r.Timeslots.GetByTimeslotIDForUpdate(ctx, timeslotID)
		if err != nil {
			return err
		}
		occupying, err := r.Donations.CountOccupying(ctx, s.ID)
		if err != nil {
			return err
		}
		if occupying > 0 || s.BookedCount > 0 {
			return domain.Invalid("timeslot has booked seats")
		}
		if err := r.Timeslots.Delete(ctx, s.ID); err != nil {
			return err
		}
		gone = s
		return nil
	})
	if err != nil {
		return err
	}
	u.emit(ctx, event.TimeslotDeleted, gone)
	return nil
}

func validate(s *domainTimeslot.Timeslot) error {
	if s.Date.IsZero() {
		return domain.Invalid("date is required")
	}
	if s.Capacity <= 0 {
		return domain.Invalid("capacity must be positive")
	}
	start, err := time.Parse(clockLayout, s.StartTime)
	if err != nil {
		return domain.Invalid("start_time must be HH:MM")
	}
	end, err := time.Parse(clockLayout, s.EndTime)
	if err != nil {
		return domain.Invalid("end_time must be HH:MM")
	}
	if !end.After(start) {
		return domain.Invalid("end_time must be after start_time")
	}
	return nil
}

func (u *Usecase) emit(ctx context.Context, t event.Type, s *domainTimeslot.Timeslot) {
	if u.emitter == nil {
		return
	}
	p := event.TimeslotPayload{
		TimeslotID: s.TimeslotID,
		Date:       event.DateString(s.Date),
		StartTime:  s.StartTime,
		EndTime:    s.EndTime,
		Capacity:   s.Capacity,
		IsActive:   s.IsActive,
	}
	if err := u.emitter.Emit(ctx, event.New(t, u.now(), p)); err != nil {
		u.log.Error("emit event", zap.String("type", string(t)), zap.String("timeslot_id", s.TimeslotID), zap.Error(err))
	}
}

func toDTO(s *domainTimeslot.Timeslot) TimeslotDTO {
	return TimeslotDTO{
		TimeslotID:  s.TimeslotID,
		Date:        s.Date,
		StartTime:   s.StartTime,
		EndTime:     s.EndTime,
		Capacity:    s.Capacity,
		BookedCount: s.BookedCount,
		Remaining:   s.Remaining(),
		IsActive:    s.IsActive,
	}
}

func toDTOs(slots []domainTimeslot.Timeslot) []TimeslotDTO {
	out := make([]TimeslotDTO, 0, len(slots))
	for i := range slots {
		out = append(out, toDTO(&slots[i]))
	}
	return out
}
