package inventory

import (
	"context"
	"time"

	"bloodbank-service/internal/domain/blood"
)

type Repository interface {
	Create(ctx context.Context, u *BloodUnit) error
	GetByUnitID(ctx context.Context, unitID string) (*BloodUnit, error)
	GetByUnitIDForUpdate(ctx context.Context, unitID string) (*BloodUnit, error)
	GetByDonationID(ctx context.Context, donationNumericID uint64) (*BloodUnit, error)

	// Usable units of a group ordered by expiry, then creation order.
	ListAvailable(ctx context.Context, group blood.Group, today time.Time) ([]BloodUnit, error)
	// Same as ListAvailable but row-locks the result in the current transaction.
	ListAvailableForUpdate(ctx context.Context, group blood.Group, today time.Time) ([]BloodUnit, error)

	// UpdateIfVersion writes status and quantity only if the stored version
	// still equals expected, bumping it. Returns false when the row moved on.
	UpdateIfVersion(ctx context.Context, u *BloodUnit, expected int) (bool, error)

	// Marks available units expiring on or before today as expired.
	ExpireThrough(ctx context.Context, today time.Time) (int64, error)
	SumAvailableByGroup(ctx context.Context, today time.Time) (map[blood.Group]int, error)
}
