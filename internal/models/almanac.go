package models

import (
	"time"

	"github.com/google/uuid"
)

// Query status values recorded on almanac fetches.
const (
	QueryStatusSuccess = "SUCCESS"
	QueryStatusError   = "ERROR"
	QueryStatusPending = "PENDING"
	QueryStatusTimeout = "TIMEOUT"
)

// AlmanacRecord represents one astronomy-picture-of-the-day entry fetched
// from the NASA APOD feed. At most one Active record exists per apod_date;
// inactive records for the same date may remain as history.
type AlmanacRecord struct {
	ID             uuid.UUID `json:"id" db:"id" gorm:"primaryKey;type:uuid"`
	RequestedDate  string    `json:"requested_date" db:"requested_date"` // as submitted by the caller
	Title          string    `json:"title" db:"title"`
	Explanation    string    `json:"explanation" db:"explanation" gorm:"type:text"`
	URL            string    `json:"url" db:"url"`
	HDURL          string    `json:"hdurl,omitempty" db:"hdurl"`
	MediaType      string    `json:"media_type" db:"media_type"` // image or video
	ApodDate       string    `json:"apod_date" db:"apod_date" gorm:"index"`
	Copyright      string    `json:"copyright,omitempty" db:"copyright"`
	ServiceVersion string    `json:"service_version" db:"service_version"`
	QueryStatus    string    `json:"query_status" db:"query_status" gorm:"default:SUCCESS"`

	Status    string    `json:"status" db:"status" gorm:"index;default:A"`
	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" gorm:"autoUpdateTime"`
}

// TableName sets the table name for the AlmanacRecord model
func (AlmanacRecord) TableName() string {
	return "nasa_apod_records"
}

// GetStatus returns the current lifecycle status
func (r *AlmanacRecord) GetStatus() string {
	return r.Status
}

// SetStatus sets the lifecycle status
func (r *AlmanacRecord) SetStatus(status string) {
	r.Status = status
}

// Touch updates the modification timestamp
func (r *AlmanacRecord) Touch(now time.Time) {
	r.UpdatedAt = now
}
