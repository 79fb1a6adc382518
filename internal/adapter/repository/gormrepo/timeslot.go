package gormrepo

import (
	"context"
	"time"

	"bloodbank-service/internal/domain/timeslot"

	"gorm.io/gorm"
)

type TimeslotRepository struct{ db *gorm.DB }

func NewTimeslotRepository(db *gorm.DB) *TimeslotRepository { return &TimeslotRepository{db: db} }

func (r *TimeslotRepository) Create(ctx context.Context, t *timeslot.Timeslot) error {
	return duplicate(r.db.WithContext(ctx).Create(t).Error, "timeslot")
}

func (r *TimeslotRepository) Save(ctx context.Context, t *timeslot.Timeslot) error {
	return duplicate(r.db.WithContext(ctx).Save(t).Error, "timeslot")
}

func (r *TimeslotRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&timeslot.Timeslot{}, id).Error
}

func (r *TimeslotRepository) GetByTimeslotID(ctx context.Context, timeslotID string) (*timeslot.Timeslot, error) {
	return first[timeslot.Timeslot](r.db.WithContext(ctx).Where("timeslot_id = ?", timeslotID), "timeslot")
}

func (r *TimeslotRepository) GetByTimeslotIDForUpdate(ctx context.Context, timeslotID string) (*timeslot.Timeslot, error) {
	return first[timeslot.Timeslot](forUpdate(r.db.WithContext(ctx)).Where("timeslot_id = ?", timeslotID), "timeslot")
}

func (r *TimeslotRepository) GetByID(ctx context.Context, id uint64) (*timeslot.Timeslot, error) {
	return first[timeslot.Timeslot](r.db.WithContext(ctx).Where("id = ?", id), "timeslot")
}

func (r *TimeslotRepository) List(ctx context.Context, f timeslot.ListFilter) ([]timeslot.Timeslot, error) {
	q := r.db.WithContext(ctx)
	if f.From != nil {
		q = q.Where("date >= ?", *f.From)
	}
	if f.OnlyActive {
		q = q.Where("is_active = ?", true)
	}
	if f.OnlyOpen {
		q = q.Where("booked_count < capacity")
	}
	var out []timeslot.Timeslot
	err := q.Order("date ASC, start_time ASC").Find(&out).Error
	return out, err
}

func (r *TimeslotRepository) ListBookable(ctx context.Context, today time.Time, excludeIDs []uint64) ([]timeslot.Timeslot, error) {
	q := r.db.WithContext(ctx).
		Where("is_active = ? AND date >= ? AND booked_count < capacity", true, today)
	if len(excludeIDs) > 0 {
		q = q.Where("id NOT IN ?", excludeIDs)
	}
	var out []timeslot.Timeslot
	err := q.Order("date ASC, start_time ASC").Find(&out).Error
	return out, err
}

// TryBook is a conditional increment: the capacity check and the write are
// one statement, so two bookings cannot both take the last seat.
func (r *TimeslotRepository) TryBook(ctx context.Context, id uint64) (bool, error) {
	res := r.db.WithContext(ctx).Model(&timeslot.Timeslot{}).
		Where("id = ? AND is_active = ? AND booked_count < capacity", id, true).
		Update("booked_count", gorm.Expr("booked_count + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *TimeslotRepository) Release(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Model(&timeslot.Timeslot{}).
		Where("id = ? AND booked_count > 0", id).
		Update("booked_count", gorm.Expr("booked_count - 1")).Error
}
