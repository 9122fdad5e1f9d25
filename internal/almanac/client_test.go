package almanac

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"skylens/internal/apperrors"
)

const apodBody = `{
	"title": "Andromeda over the Alps",
	"explanation": "The nearest major galaxy rises over the mountains.",
	"url": "https://apod.nasa.gov/apod/image/2401/andromeda.jpg",
	"hdurl": "https://apod.nasa.gov/apod/image/2401/andromeda_hd.jpg",
	"media_type": "image",
	"date": "2024-01-15",
	"copyright": "J. Photographer",
	"service_version": "v1",
	"unknown_field": true
}`

func newTestClient(serverURL string, now time.Time) *Client {
	client := NewClient(serverURL, "test-key")
	client.now = func() time.Time { return now }
	return client
}

func TestFetchSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") != "test-key" {
			t.Errorf("Expected api_key query param, got %q", r.URL.Query().Get("api_key"))
		}
		if r.URL.Query().Get("date") != "2024-01-15" {
			t.Errorf("Expected date query param 2024-01-15, got %q", r.URL.Query().Get("date"))
		}
		w.Write([]byte(apodBody))
	}))
	defer server.Close()

	client := newTestClient(server.URL, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	payload, err := client.Fetch(context.Background(), time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if payload.Title != "Andromeda over the Alps" {
		t.Errorf("Unexpected title: %q", payload.Title)
	}
	if payload.Date != "2024-01-15" {
		t.Errorf("Unexpected date: %q", payload.Date)
	}
	if payload.HDURL == "" || payload.Copyright == "" || payload.ServiceVersion != "v1" {
		t.Error("Expected optional fields to be carried through verbatim")
	}
	if payload.MediaType != "image" {
		t.Errorf("Unexpected media type: %q", payload.MediaType)
	}
}

func TestFetchRejectsFutureDate(t *testing.T) {
	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer server.Close()

	client := newTestClient(server.URL, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	_, err := client.Fetch(context.Background(), time.Date(2999, 1, 1, 0, 0, 0, 0, time.UTC))
	if !apperrors.Is(err, apperrors.KindInvalidInput) {
		t.Fatalf("Expected invalid-input error for future date, got %v", err)
	}
	if requests.Load() != 0 {
		t.Errorf("Expected validation before any network call, got %d requests", requests.Load())
	}
}

func TestFetchComparesCalendarDatesNotInstants(t *testing.T) {
	var requestedDate string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestedDate = r.URL.Query().Get("date")
		w.Write([]byte(apodBody))
	}))
	defer server.Close()

	// Just after midnight in a zone ahead of UTC: the UTC-parsed request
	// for the same calendar day is a later instant than the clock, but it
	// is not a future date
	ahead := time.FixedZone("UTC+12", 12*60*60)
	client := newTestClient(server.URL, time.Date(2024, 6, 1, 0, 30, 0, 0, ahead))
	if _, err := client.Fetch(context.Background(), time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("Expected today's date to be accepted, got %v", err)
	}
	if requestedDate != "2024-06-01" {
		t.Errorf("Expected date 2024-06-01, got %q", requestedDate)
	}

	// Late evening in a zone behind UTC: tomorrow's date is an earlier
	// instant than the clock plus a day, but it is still a future date
	behind := time.FixedZone("UTC-11", -11*60*60)
	client = newTestClient(server.URL, time.Date(2024, 6, 1, 20, 0, 0, 0, behind))
	_, err := client.Fetch(context.Background(), time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC))
	if !apperrors.Is(err, apperrors.KindInvalidInput) {
		t.Fatalf("Expected invalid-input error for tomorrow's date, got %v", err)
	}
}

func TestFetchRejectsDateBeforeFeedStart(t *testing.T) {
	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer server.Close()

	client := newTestClient(server.URL, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	_, err := client.Fetch(context.Background(), time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC))
	if !apperrors.Is(err, apperrors.KindInvalidInput) {
		t.Fatalf("Expected invalid-input error for pre-feed date, got %v", err)
	}
	if requests.Load() != 0 {
		t.Errorf("Expected validation before any network call, got %d requests", requests.Load())
	}

	// The feed start date itself is valid
	server2 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(apodBody))
	}))
	defer server2.Close()

	client2 := newTestClient(server2.URL, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	if _, err := client2.Fetch(context.Background(), time.Date(1995, 6, 16, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("Expected feed start date to be accepted, got %v", err)
	}
}

func TestFetchNotFoundNamesTheDate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := newTestClient(server.URL, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	_, err := client.Fetch(context.Background(), time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	if !apperrors.Is(err, apperrors.KindUpstreamNotFound) {
		t.Fatalf("Expected upstream-not-found error, got %v", err)
	}
	if !strings.Contains(err.Error(), "2024-01-15") {
		t.Errorf("Expected error to name the requested date, got %q", err.Error())
	}
}

func TestFetchUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	_, err := client.Fetch(context.Background(), time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	if !apperrors.Is(err, apperrors.KindUpstream) {
		t.Fatalf("Expected upstream error, got %v", err)
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("Expected error to carry the upstream status, got %q", err.Error())
	}
}

func TestFetchUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client := newTestClient(server.URL, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	_, err := client.Fetch(context.Background(), time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	if !apperrors.Is(err, apperrors.KindUpstreamUnreachable) {
		t.Fatalf("Expected upstream-unreachable error, got %v", err)
	}
}

func TestFetchTodayClockSkewGuard(t *testing.T) {
	var requestedDate string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestedDate = r.URL.Query().Get("date")
		w.Write([]byte(apodBody))
	}))
	defer server.Close()

	// Clock past the known-good maximum: fall back instead of rejecting
	client := newTestClient(server.URL, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	if _, err := client.FetchToday(context.Background()); err != nil {
		t.Fatalf("FetchToday failed: %v", err)
	}
	if requestedDate != "2024-12-31" {
		t.Errorf("Expected fallback date 2024-12-31, got %q", requestedDate)
	}

	// Normal clock: fetch the actual current date
	client = newTestClient(server.URL, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	if _, err := client.FetchToday(context.Background()); err != nil {
		t.Fatalf("FetchToday failed: %v", err)
	}
	if requestedDate != "2024-06-01" {
		t.Errorf("Expected current date 2024-06-01, got %q", requestedDate)
	}
}
