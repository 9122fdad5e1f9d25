// Package lifecycle implements the Active/Inactive state machine shared by
// every record kind. Reads are always filtered to Active records; a record
// in the wrong state for a transition is indistinguishable from an absent
// one.
package lifecycle

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"skylens/internal/apperrors"
	"skylens/internal/models"
)

// Record is the contract every soft-deleted model satisfies.
type Record interface {
	GetStatus() string
	SetStatus(status string)
	Touch(now time.Time)
}

// FindActive returns all Active records of the given kind.
func FindActive[T any](db *gorm.DB) ([]T, error) {
	var records []T
	if err := db.Where("status = ?", models.StatusActive).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list active records: %w", err)
	}
	return records, nil
}

// FindActiveByID returns the Active record with the given id.
func FindActiveByID[T any](db *gorm.DB, id uuid.UUID) (*T, error) {
	return findByIDAndStatus[T](db, id, models.StatusActive)
}

// Deactivate soft-deletes an Active record. Deleting an already-Inactive
// record fails with not-found.
func Deactivate[T any, PT interface {
	*T
	Record
}](db *gorm.DB, id uuid.UUID) (*T, error) {
	return transition[T, PT](db, id, models.StatusActive, models.StatusInactive)
}

// Restore reactivates an Inactive record. Restoring an already-Active
// record fails with not-found.
func Restore[T any, PT interface {
	*T
	Record
}](db *gorm.DB, id uuid.UUID) (*T, error) {
	return transition[T, PT](db, id, models.StatusInactive, models.StatusActive)
}

func transition[T any, PT interface {
	*T
	Record
}](db *gorm.DB, id uuid.UUID, from, to string) (*T, error) {
	record, err := findByIDAndStatus[T](db, id, from)
	if err != nil {
		return nil, err
	}

	rec := PT(record)
	rec.SetStatus(to)
	rec.Touch(time.Now())

	if err := db.Save(record).Error; err != nil {
		return nil, fmt.Errorf("failed to save status change: %w", err)
	}

	return record, nil
}

func findByIDAndStatus[T any](db *gorm.DB, id uuid.UUID, status string) (*T, error) {
	var record T
	err := db.Where("id = ? AND status = ?", id, status).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Newf(apperrors.KindNotFound, "record not found with ID: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up record: %w", err)
	}
	return &record, nil
}
