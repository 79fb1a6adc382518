package inventory

import (
	"context"
	"time"

	"bloodbank-service/internal/domain"
	"bloodbank-service/internal/domain/blood"
	"bloodbank-service/internal/domain/event"
	domainInventory "bloodbank-service/internal/domain/inventory"
	"bloodbank-service/internal/domain/uow"

	"go.uber.org/zap"
)

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

func (u *Usecase) day(t time.Time) time.Time {
	if t.IsZero() {
		t = u.now()
	}
	return blood.Day(t)
}

func checkGroup(g blood.Group) error {
	if !g.Valid() {
		return domain.Invalid("unknown blood group " + string(g))
	}
	return nil
}

// Available lists usable units of a group in the order they would be handed out.
func (u *Usecase) Available(ctx context.Context, group blood.Group, today time.Time) ([]UnitDTO, error) {
	if err := checkGroup(group); err != nil {
		return nil, err
	}
	units, err := domainInventory.NewLedger(u.repos.Units).Available(ctx, group, u.day(today))
	if err != nil {
		return nil, err
	}
	out := make([]UnitDTO, 0, len(units))
	for i := range units {
		out = append(out, toDTO(&units[i]))
	}
	return out, nil
}

func (u *Usecase) CheckAvailability(ctx context.Context, group blood.Group, needed int, today time.Time) (*AvailabilityDTO, error) {
	if err := checkGroup(group); err != nil {
		return nil, err
	}
	if needed < 0 {
		return nil, domain.Invalid("quantity must not be negative")
	}
	ok, total, err := domainInventory.NewLedger(u.repos.Units).CheckAvailability(ctx, group, needed, u.day(today))
	if err != nil {
		return nil, err
	}
	return &AvailabilityDTO{BloodGroup: group, Requested: needed, Sufficient: ok, TotalAvailable: total}, nil
}

// ExpireStale marks every available unit expiring on or before today as expired.
func (u *Usecase) ExpireStale(ctx context.Context, today time.Time) (int64, error) {
	asOf := u.day(today)
	var n int64
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		n, err = domainInventory.NewLedger(r.Units).ExpireStale(ctx, asOf)
		return err
	})
	if err != nil {
		return 0, err
	}
	u.log.Info("expired stale units", zap.Int64("count", n), zap.Time("as_of", asOf))
	if n > 0 {
		u.emit(ctx, event.UnitsExpired, event.InventoryPayload{Count: n, AsOf: event.DateString(asOf)})
	}
	return n, nil
}

func (u *Usecase) Discard(ctx context.Context, unitID string) (*UnitDTO, error) {
	var unit *domainInventory.BloodUnit
	err := domain.RetryOnConflict(func() error {
		return u.uow.WithinTx(ctx, func(r uow.Repos) error {
			var err error
			unit, err = domainInventory.NewLedger(r.Units).Discard(ctx, unitID)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	u.emit(ctx, event.UnitDiscarded, event.InventoryPayload{
		BloodGroup: unit.BloodGroup,
		UnitID:     unit.UnitID,
		Quantity:   unit.Quantity,
		AsOf:       event.DateString(u.now()),
	})
	dto := toDTO(unit)
	return &dto, nil
}

func (u *Usecase) Summary(ctx context.Context, today time.Time) (*SummaryDTO, error) {
	asOf := u.day(today)
	groups, err := domainInventory.NewLedger(u.repos.Units).Summary(ctx, asOf)
	if err != nil {
		return nil, err
	}
	out := &SummaryDTO{AsOf: asOf, Groups: groups}
	for _, q := range groups {
		out.Total += q
	}
	return out, nil
}

func (u *Usecase) emit(ctx context.Context, t event.Type, p event.InventoryPayload) {
	if u.emitter == nil {
		return
	}
	if err := u.emitter.Emit(ctx, event.New(t, u.now(), p)); err != nil {
		u.log.Error("emit event", zap.String("type", string(t)), zap.Error(err))
	}
}

func toDTO(b *domainInventory.BloodUnit) UnitDTO {
	return UnitDTO{
		UnitID:     b.UnitID,
		BloodGroup: b.BloodGroup,
		Quantity:   b.Quantity,
		ExpiryDate: b.ExpiryDate,
		Status:     b.Status,
		Location:   b.Location,
		CreatedAt:  b.CreatedAt,
	}
}
