package gormrepo

import (
	"context"
	"time"

	"bloodbank-service/internal/domain/blood"
	"bloodbank-service/internal/domain/inventory"

	"gorm.io/gorm"
)

type UnitRepository struct{ db *gorm.DB }

func NewUnitRepository(db *gorm.DB) *UnitRepository { return &UnitRepository{db: db} }

func (r *UnitRepository) Create(ctx context.Context, u *inventory.BloodUnit) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *UnitRepository) GetByUnitID(ctx context.Context, unitID string) (*inventory.BloodUnit, error) {
	return first[inventory.BloodUnit](r.db.WithContext(ctx).Where("unit_id = ?", unitID), "blood unit")
}

func (r *UnitRepository) GetByUnitIDForUpdate(ctx context.Context, unitID string) (*inventory.BloodUnit, error) {
	return first[inventory.BloodUnit](forUpdate(r.db.WithContext(ctx)).Where("unit_id = ?", unitID), "blood unit")
}

func (r *UnitRepository) GetByDonationID(ctx context.Context, donationNumericID uint64) (*inventory.BloodUnit, error) {
	return first[inventory.BloodUnit](r.db.WithContext(ctx).Where("donation_id = ?", donationNumericID), "blood unit")
}

func (r *UnitRepository) available(q *gorm.DB, group blood.Group, today time.Time) ([]inventory.BloodUnit, error) {
	var out []inventory.BloodUnit
	err := q.
		Where("blood_group = ? AND status = ? AND quantity > 0 AND expiry_date > ?",
			group, inventory.StatusAvailable, today).
		Order("expiry_date ASC, id ASC").
		Find(&out).Error
	return out, err
}

func (r *UnitRepository) ListAvailable(ctx context.Context, group blood.Group, today time.Time) ([]inventory.BloodUnit, error) {
	return r.available(r.db.WithContext(ctx), group, today)
}

func (r *UnitRepository) ListAvailableForUpdate(ctx context.Context, group blood.Group, today time.Time) ([]inventory.BloodUnit, error) {
	return r.available(forUpdate(r.db.WithContext(ctx)), group, today)
}

func (r *UnitRepository) UpdateIfVersion(ctx context.Context, u *inventory.BloodUnit, expected int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&inventory.BloodUnit{}).
		Where("id = ? AND version = ?", u.ID, expected).
		Updates(map[string]any{
			"status":   u.Status,
			"quantity": u.Quantity,
			"version":  expected + 1,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *UnitRepository) ExpireThrough(ctx context.Context, today time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&inventory.BloodUnit{}).
		Where("status = ? AND expiry_date <= ?", inventory.StatusAvailable, today).
		Updates(map[string]any{
			"status":  inventory.StatusExpired,
			"version": gorm.Expr("version + 1"),
		})
	return res.RowsAffected, res.Error
}

func (r *UnitRepository) SumAvailableByGroup(ctx context.Context, today time.Time) (map[blood.Group]int, error) {
	var rows []struct {
		BloodGroup blood.Group
		Total      int
	}
	err := r.db.WithContext(ctx).Model(&inventory.BloodUnit{}).
		Select("blood_group, SUM(quantity) AS total").
		Where("status = ? AND quantity > 0 AND expiry_date > ?", inventory.StatusAvailable, today).
		Group("blood_group").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[blood.Group]int, len(rows))
	for _, row := range rows {
		out[row.BloodGroup] = row.Total
	}
	return out, nil
}
