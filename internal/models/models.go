// Package models contains all data models for the skylens application
package models

import (
	"gorm.io/gorm"
)

// Lifecycle status values stored on every record.
const (
	StatusActive   = "A"
	StatusInactive = "I"
)

// AllModels returns a slice of all model types for database migrations
func AllModels() []interface{} {
	return []interface{}{
		&Detection{},
		&AlmanacRecord{},
	}
}

// AutoMigrate runs automatic migrations for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
