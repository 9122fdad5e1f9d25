package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skylens/internal/almanac"
	"skylens/internal/apperrors"
	"skylens/internal/models"
)

// stubAlmanac serves canned payloads keyed by date and counts calls
type stubAlmanac struct {
	payload *almanac.Payload
	err     error
	calls   int
}

func (s *stubAlmanac) Fetch(ctx context.Context, date time.Time) (*almanac.Payload, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.payload, nil
}

func (s *stubAlmanac) FetchToday(ctx context.Context) (*almanac.Payload, error) {
	return s.Fetch(ctx, time.Time{})
}

func testPayload(date string) *almanac.Payload {
	return &almanac.Payload{
		Title:          "Test Nebula",
		Explanation:    "A nebula for testing.",
		URL:            "https://apod.nasa.gov/test.jpg",
		HDURL:          "https://apod.nasa.gov/test_hd.jpg",
		MediaType:      "image",
		Date:           date,
		Copyright:      "Test Observatory",
		ServiceVersion: "v1",
	}
}

func TestAlmanacReconcileIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	stub := &stubAlmanac{payload: testPayload("2024-01-15")}
	service := NewAlmanacService(db, stub)

	first, err := service.FetchByDate(context.Background(), "2024-01-15")
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, first.Status)
	assert.Equal(t, models.QueryStatusSuccess, first.QueryStatus)
	assert.Equal(t, "2024-01-15", first.ApodDate)

	// Second fetch for the same content date updates in place
	stub.payload = testPayload("2024-01-15")
	stub.payload.Title = "Revised Nebula"

	second, err := service.FetchByDate(context.Background(), "2024-01-15")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "same active record must be reused")
	assert.Equal(t, "Revised Nebula", second.Title, "second call's fields win")
	assert.WithinDuration(t, first.CreatedAt, second.CreatedAt, time.Second)

	var count int64
	db.Model(&models.AlmanacRecord{}).
		Where("apod_date = ? AND status = ?", "2024-01-15", models.StatusActive).
		Count(&count)
	assert.Equal(t, int64(1), count, "exactly one active record per content date")
}

func TestAlmanacCreateGoesThroughReconcile(t *testing.T) {
	db := setupTestDB(t)
	stub := &stubAlmanac{payload: testPayload("2024-01-15")}
	service := NewAlmanacService(db, stub)

	first, err := service.Create(context.Background(), "2024-01-15")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", first.RequestedDate)

	second, err := service.Create(context.Background(), "2024-01-15")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "create must not duplicate an active record for the date")
}

func TestAlmanacCreateInvalidDate(t *testing.T) {
	db := setupTestDB(t)
	stub := &stubAlmanac{payload: testPayload("2024-01-15")}
	service := NewAlmanacService(db, stub)

	_, err := service.Create(context.Background(), "15/01/2024")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindInvalidInput))
	assert.Equal(t, 0, stub.calls, "no outbound call for a malformed date")
}

func TestAlmanacUpstreamFailurePropagates(t *testing.T) {
	db := setupTestDB(t)
	stub := &stubAlmanac{err: apperrors.New(apperrors.KindUpstreamNotFound, "no APOD data found for 2024-01-15")}
	service := NewAlmanacService(db, stub)

	// Fail-closed: unlike the classifier, the real failure reaches the caller
	_, err := service.FetchByDate(context.Background(), "2024-01-15")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindUpstreamNotFound))

	var count int64
	db.Model(&models.AlmanacRecord{}).Count(&count)
	assert.Zero(t, count, "nothing is stored when the feed fails")
}

func TestAlmanacDeletedRecordIsHistoryNotObstacle(t *testing.T) {
	db := setupTestDB(t)
	stub := &stubAlmanac{payload: testPayload("2024-01-15")}
	service := NewAlmanacService(db, stub)

	first, err := service.FetchByDate(context.Background(), "2024-01-15")
	require.NoError(t, err)
	require.NoError(t, service.Delete(first.ID))

	// Reconciliation only matches active records, so a fresh fetch
	// creates a new record while the deleted one stays as history
	second, err := service.FetchByDate(context.Background(), "2024-01-15")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	var total, active int64
	db.Model(&models.AlmanacRecord{}).Where("apod_date = ?", "2024-01-15").Count(&total)
	db.Model(&models.AlmanacRecord{}).
		Where("apod_date = ? AND status = ?", "2024-01-15", models.StatusActive).
		Count(&active)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, int64(1), active)
}

func TestAlmanacUpdateReFetchesInPlace(t *testing.T) {
	db := setupTestDB(t)
	stub := &stubAlmanac{payload: testPayload("2024-01-15")}
	service := NewAlmanacService(db, stub)

	created, err := service.FetchByDate(context.Background(), "2024-01-15")
	require.NoError(t, err)

	stub.payload = testPayload("2024-01-16")
	updated, err := service.Update(context.Background(), created.ID, "2024-01-16")
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "2024-01-16", updated.ApodDate)
	assert.Equal(t, "2024-01-16", updated.RequestedDate)
	assert.WithinDuration(t, created.CreatedAt, updated.CreatedAt, time.Second)
}

func TestAlmanacUpdateRetiresCollidingRecord(t *testing.T) {
	db := setupTestDB(t)
	stub := &stubAlmanac{payload: testPayload("2024-01-15")}
	service := NewAlmanacService(db, stub)

	first, err := service.FetchByDate(context.Background(), "2024-01-15")
	require.NoError(t, err)

	stub.payload = testPayload("2024-01-16")
	second, err := service.FetchByDate(context.Background(), "2024-01-16")
	require.NoError(t, err)

	// Re-pointing the first record at the second's date must not leave
	// two active records for 2024-01-16
	updated, err := service.Update(context.Background(), first.ID, "2024-01-16")
	require.NoError(t, err)
	assert.Equal(t, first.ID, updated.ID)
	assert.Equal(t, "2024-01-16", updated.ApodDate)

	var active int64
	db.Model(&models.AlmanacRecord{}).
		Where("apod_date = ? AND status = ?", "2024-01-16", models.StatusActive).
		Count(&active)
	assert.Equal(t, int64(1), active, "exactly one active record per content date")

	var retired models.AlmanacRecord
	require.NoError(t, db.First(&retired, "id = ?", second.ID).Error)
	assert.Equal(t, models.StatusInactive, retired.Status, "the collided record is kept as history")
}

func TestAlmanacUpdateRequiresActiveRecord(t *testing.T) {
	db := setupTestDB(t)
	stub := &stubAlmanac{payload: testPayload("2024-01-15")}
	service := NewAlmanacService(db, stub)

	created, err := service.FetchByDate(context.Background(), "2024-01-15")
	require.NoError(t, err)
	require.NoError(t, service.Delete(created.ID))

	callsBefore := stub.calls
	_, err = service.Update(context.Background(), created.ID, "")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
	assert.Equal(t, callsBefore, stub.calls, "no outbound call for an inactive record")
}

func TestAlmanacLifecycle(t *testing.T) {
	db := setupTestDB(t)
	stub := &stubAlmanac{payload: testPayload("2024-01-15")}
	service := NewAlmanacService(db, stub)

	created, err := service.FetchByDate(context.Background(), "2024-01-15")
	require.NoError(t, err)

	require.NoError(t, service.Delete(created.ID))

	err = service.Delete(created.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	restored, err := service.Restore(created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, restored.Status)
	assert.Equal(t, created.Title, restored.Title)
	assert.Equal(t, created.ApodDate, restored.ApodDate)

	_, err = service.Restore(created.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	_, err = service.FindByID(uuid.New())
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}
