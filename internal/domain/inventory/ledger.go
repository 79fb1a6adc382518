package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bloodbank-service/internal/domain"
	"bloodbank-service/internal/domain/blood"
	"bloodbank-service/pkg/id"
)

// Ledger is the only writer of unit status and quantity. It runs against
// whatever Repository it is given, so callers bind it to a transaction.
type Ledger struct {
	repo  Repository
	newID func() string
}

func NewLedger(repo Repository) *Ledger {
	return &Ledger{repo: repo, newID: id.NewID32}
}

func (l *Ledger) Available(ctx context.Context, group blood.Group, today time.Time) ([]BloodUnit, error) {
	return l.repo.ListAvailable(ctx, group, blood.Day(today))
}

// CheckAvailability sums usable quantity for the group.
func (l *Ledger) CheckAvailability(ctx context.Context, group blood.Group, needed int, today time.Time) (bool, int, error) {
	units, err := l.Available(ctx, group, today)
	if err != nil {
		return false, 0, err
	}
	total := 0
	for _, u := range units {
		total += u.Quantity
	}
	return total >= needed, total, nil
}

// Allocate consumes units oldest expiry first. A unit larger than what is
// still needed is split: the original keeps the consumed amount and becomes
// used, a new available unit carries the rest. It may allocate less than
// needed when stock runs out. A concurrent writer on any touched unit yields
// domain.ErrConflict and the caller's transaction must roll back.
func (l *Ledger) Allocate(ctx context.Context, group blood.Group, needed int, today time.Time) (*Allocation, error) {
	out := &Allocation{BloodGroup: group, Requested: needed}
	if needed <= 0 {
		return out, nil
	}

	units, err := l.repo.ListAvailableForUpdate(ctx, group, blood.Day(today))
	if err != nil {
		return nil, err
	}

	remaining := needed
	for i := range units {
		if remaining == 0 {
			break
		}
		u := &units[i]
		before := u.Quantity
		version := u.Version

		use := Use{UnitID: u.UnitID, DonationID: u.Origin()}
		if before <= remaining {
			use.Quantity = before
		} else {
			use.Quantity = remaining
			child := &BloodUnit{
				UnitID:           l.newID(),
				BloodGroup:       u.BloodGroup,
				Quantity:         before - remaining,
				ExpiryDate:       u.ExpiryDate,
				Status:           StatusAvailable,
				Location:         u.Location,
				SourceDonationID: u.Origin(),
				ParentUnitID:     &u.ID,
			}
			if err := l.repo.Create(ctx, child); err != nil {
				return nil, fmt.Errorf("create split unit: %w", err)
			}
			use.SplitInto = child.UnitID
		}

		u.Quantity = use.Quantity
		u.Status = StatusUsed
		ok, err := l.repo.UpdateIfVersion(ctx, u, version)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domain.ErrConflict
		}
		u.Version = version + 1

		remaining -= use.Quantity
		out.Allocated += use.Quantity
		out.Uses = append(out.Uses, use)
	}
	return out, nil
}

// CreateFromDonation stores the unit for a completed donation. Calling it
// again for the same donation returns the existing unit and created=false.
func (l *Ledger) CreateFromDonation(ctx context.Context, src Source) (*BloodUnit, bool, error) {
	if src.Quantity <= 0 {
		return nil, false, domain.Invalid("unit quantity must be positive")
	}
	existing, err := l.repo.GetByDonationID(ctx, src.DonationID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}

	donationID := src.DonationID
	u := &BloodUnit{
		UnitID:     l.newID(),
		BloodGroup: src.BloodGroup,
		Quantity:   src.Quantity,
		ExpiryDate: blood.ExpiryFor(src.DonationDate),
		Status:     StatusAvailable,
		Location:   src.Location,
		DonationID: &donationID,
	}
	if err := l.repo.Create(ctx, u); err != nil {
		return nil, false, err
	}
	return u, true, nil
}

func (l *Ledger) ExpireStale(ctx context.Context, today time.Time) (int64, error) {
	return l.repo.ExpireThrough(ctx, blood.Day(today))
}

// Discard takes an available unit out of stock.
func (l *Ledger) Discard(ctx context.Context, unitID string) (*BloodUnit, error) {
	u, err := l.repo.GetByUnitIDForUpdate(ctx, unitID)
	if err != nil {
		return nil, err
	}
	if u.Status != StatusAvailable {
		return nil, fmt.Errorf("%w: unit is %s", domain.ErrInvalidTransition, u.Status)
	}
	version := u.Version
	u.Status = StatusDiscarded
	ok, err := l.repo.UpdateIfVersion(ctx, u, version)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrConflict
	}
	u.Version = version + 1
	return u, nil
}

func (l *Ledger) Summary(ctx context.Context, today time.Time) (map[blood.Group]int, error) {
	sums, err := l.repo.SumAvailableByGroup(ctx, blood.Day(today))
	if err != nil {
		return nil, err
	}
	out := make(map[blood.Group]int, len(blood.Groups))
	for _, g := range blood.Groups {
		out[g] = sums[g]
	}
	return out, nil
}
