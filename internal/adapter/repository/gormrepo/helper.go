package gormrepo

import (
	"errors"
	"fmt"

	"bloodbank-service/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// first loads one row and maps a missing row to domain.ErrNotFound.
func first[T any](q *gorm.DB, entity string) (*T, error) {
	var out T
	if err := q.First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound(entity)
		}
		return nil, err
	}
	return &out, nil
}

// duplicate maps unique-key violations to domain.ErrAlreadyExists.
func duplicate(err error, entity string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%s %w", entity, domain.ErrAlreadyExists)
	}
	return err
}

// forUpdate adds SELECT ... FOR UPDATE (sqlite drops the clause).
func forUpdate(q *gorm.DB) *gorm.DB {
	return q.Clauses(clause.Locking{Strength: "UPDATE"})
}
