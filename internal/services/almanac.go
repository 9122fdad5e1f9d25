package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"skylens/internal/almanac"
	"skylens/internal/apperrors"
	"skylens/internal/lifecycle"
	"skylens/internal/models"
)

const dateLayout = "2006-01-02"

// AlmanacAPI is the outbound contract the almanac service depends on.
type AlmanacAPI interface {
	Fetch(ctx context.Context, date time.Time) (*almanac.Payload, error)
	FetchToday(ctx context.Context) (*almanac.Payload, error)
}

// AlmanacService manages APOD records with soft deletion. Every path that
// lands a payload goes through reconcile, so at most one Active record
// exists per content date.
type AlmanacService struct {
	db     *gorm.DB
	client AlmanacAPI
}

// NewAlmanacService creates a new almanac service
func NewAlmanacService(db *gorm.DB, client AlmanacAPI) *AlmanacService {
	return &AlmanacService{
		db:     db,
		client: client,
	}
}

// Create fetches the APOD entry for the given date (today when empty) and
// reconciles it into the store.
func (s *AlmanacService) Create(ctx context.Context, dateStr string) (*models.AlmanacRecord, error) {
	var date time.Time
	if dateStr != "" {
		parsed, err := parseDate(dateStr)
		if err != nil {
			return nil, err
		}
		date = parsed
	}

	payload, err := s.client.Fetch(ctx, date)
	if err != nil {
		return nil, err
	}

	label := dateStr
	if label == "" {
		label = payload.Date
	}

	return s.reconcile(payload, label)
}

// FetchToday fetches the current day's APOD entry and reconciles it.
func (s *AlmanacService) FetchToday(ctx context.Context) (*models.AlmanacRecord, error) {
	payload, err := s.client.FetchToday(ctx)
	if err != nil {
		return nil, err
	}

	return s.reconcile(payload, payload.Date)
}

// FetchByDate fetches the APOD entry for an explicit date and reconciles it.
func (s *AlmanacService) FetchByDate(ctx context.Context, dateStr string) (*models.AlmanacRecord, error) {
	date, err := parseDate(dateStr)
	if err != nil {
		return nil, err
	}

	payload, err := s.client.Fetch(ctx, date)
	if err != nil {
		return nil, err
	}

	return s.reconcile(payload, dateStr)
}

// FindAll returns all Active records.
func (s *AlmanacService) FindAll() ([]models.AlmanacRecord, error) {
	return lifecycle.FindActive[models.AlmanacRecord](s.db)
}

// FindByID returns the Active record with the given id.
func (s *AlmanacService) FindByID(id uuid.UUID) (*models.AlmanacRecord, error) {
	return lifecycle.FindActiveByID[models.AlmanacRecord](s.db, id)
}

// Update re-fetches the feed for an Active record and replaces its derived
// fields in place, preserving id and creation time. When no date is given
// the record's own content date is used.
func (s *AlmanacService) Update(ctx context.Context, id uuid.UUID, dateStr string) (*models.AlmanacRecord, error) {
	existing, err := lifecycle.FindActiveByID[models.AlmanacRecord](s.db, id)
	if err != nil {
		return nil, err
	}

	if dateStr == "" {
		dateStr = existing.ApodDate
	}
	date, err := parseDate(dateStr)
	if err != nil {
		return nil, err
	}

	payload, err := s.client.Fetch(ctx, date)
	if err != nil {
		return nil, err
	}

	// Re-pointing the record at a new content date may collide with the
	// Active record already holding that date. The collided record is
	// retired as history so at most one Active record per date survives.
	var collided models.AlmanacRecord
	err = s.db.Where("apod_date = ? AND status = ? AND id <> ?",
		payload.Date, models.StatusActive, existing.ID).
		First(&collided).Error
	if err == nil {
		if _, err := lifecycle.Deactivate[models.AlmanacRecord](s.db, collided.ID); err != nil {
			return nil, err
		}
		log.Printf("APOD record %s for %s superseded by update of %s",
			collided.ID, payload.Date, existing.ID)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up APOD record for %s: %w", payload.Date, err)
	}

	applyPayload(existing, payload, dateStr)
	existing.UpdatedAt = time.Now()

	if err := s.db.Save(existing).Error; err != nil {
		return nil, err
	}

	log.Printf("APOD record updated: id=%s date=%s", existing.ID, existing.ApodDate)
	return existing, nil
}

// Delete soft-deletes an Active record.
func (s *AlmanacService) Delete(id uuid.UUID) error {
	_, err := lifecycle.Deactivate[models.AlmanacRecord](s.db, id)
	return err
}

// Restore reactivates a soft-deleted record.
func (s *AlmanacService) Restore(id uuid.UUID) (*models.AlmanacRecord, error) {
	return lifecycle.Restore[models.AlmanacRecord](s.db, id)
}

// reconcile upserts a fetched payload keyed by content date. An existing
// Active record for the date is updated in place with id and creation time
// preserved; otherwise a new Active record is inserted. Repeated
// reconciliation for the same date never creates a duplicate Active record.
// Under concurrent reconciliation for one date the store's uniqueness
// guarantee is the backstop, not this lookup.
func (s *AlmanacService) reconcile(payload *almanac.Payload, requestedDate string) (*models.AlmanacRecord, error) {
	var existing models.AlmanacRecord
	err := s.db.Where("apod_date = ? AND status = ?", payload.Date, models.StatusActive).
		First(&existing).Error

	if err == nil {
		log.Printf("APOD record already exists for %s, updating", payload.Date)
		applyPayload(&existing, payload, requestedDate)
		existing.UpdatedAt = time.Now()
		if err := s.db.Save(&existing).Error; err != nil {
			return nil, err
		}
		return &existing, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up APOD record for %s: %w", payload.Date, err)
	}

	log.Printf("Creating new APOD record for %s", payload.Date)
	record := &models.AlmanacRecord{
		ID:     uuid.New(),
		Status: models.StatusActive,
	}
	applyPayload(record, payload, requestedDate)

	if err := s.db.Create(record).Error; err != nil {
		return nil, err
	}

	return record, nil
}

// applyPayload copies the feed fields onto a record.
func applyPayload(record *models.AlmanacRecord, payload *almanac.Payload, requestedDate string) {
	record.RequestedDate = requestedDate
	record.Title = payload.Title
	record.Explanation = payload.Explanation
	record.URL = payload.URL
	record.HDURL = payload.HDURL
	record.MediaType = payload.MediaType
	record.ApodDate = payload.Date
	record.Copyright = payload.Copyright
	record.ServiceVersion = payload.ServiceVersion
	record.QueryStatus = models.QueryStatusSuccess
}

// parseDate parses a YYYY-MM-DD date string.
func parseDate(dateStr string) (time.Time, error) {
	date, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		return time.Time{}, apperrors.Newf(apperrors.KindInvalidInput,
			"invalid date format %q, use YYYY-MM-DD", dateStr)
	}
	return date, nil
}
