// Package almanac talks to the NASA APOD feed.
package almanac

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"skylens/internal/apperrors"
)

const dateLayout = "2006-01-02"

var (
	// feedStartDate is the first date the APOD feed has data for.
	feedStartDate = time.Date(1995, time.June, 16, 0, 0, 0, 0, time.UTC)

	// maxValidDate guards the fetch-today path against misconfigured
	// system clocks reporting a future date.
	maxValidDate = time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)
)

// Payload is the APOD feed response for a single date. Unknown fields are
// ignored.
type Payload struct {
	Title          string `json:"title"`
	Explanation    string `json:"explanation"`
	URL            string `json:"url"`
	HDURL          string `json:"hdurl,omitempty"`
	MediaType      string `json:"media_type"`
	Date           string `json:"date"`
	Copyright      string `json:"copyright,omitempty"`
	ServiceVersion string `json:"service_version"`
}

// Client represents a client for the NASA APOD API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client

	// now is swappable for tests
	now func() time.Time
}

// NewClient creates a new APOD client
func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = "https://api.nasa.gov"
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		now: time.Now,
	}
}

// Fetch returns the APOD entry for the given date. A zero date means today.
//
// The date is validated before any network call: future dates and dates
// before the feed start are rejected as invalid input. Validation compares
// calendar dates in YYYY-MM-DD form, not instants; the request date and the
// clock may sit in different time zones and a same-day request must pass at
// any hour. Unlike the classifier, almanac failures are never absorbed; the
// feed is the primary content, so callers must see the real failure.
func (c *Client) Fetch(ctx context.Context, date time.Time) (*Payload, error) {
	requestDate := date
	if requestDate.IsZero() {
		requestDate = c.now()
	}

	// YYYY-MM-DD strings order the same way the dates do
	dateStr := requestDate.Format(dateLayout)
	todayStr := c.now().Format(dateLayout)
	if dateStr > todayStr {
		return nil, apperrors.Newf(apperrors.KindInvalidInput,
			"requested date %s is in the future; the APOD feed only has data up to %s",
			dateStr, todayStr)
	}

	if dateStr < feedStartDate.Format(dateLayout) {
		return nil, apperrors.Newf(apperrors.KindInvalidInput,
			"requested date %s precedes the start of the APOD feed (%s)",
			dateStr, feedStartDate.Format(dateLayout))
	}

	log.Printf("Fetching APOD entry for %s", dateStr)

	query := url.Values{}
	query.Set("api_key", c.apiKey)
	query.Set("date", dateStr)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/planetary/apod?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindUpstreamUnreachable,
			fmt.Sprintf("failed to reach the APOD feed for %s", dateStr), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, apperrors.Newf(apperrors.KindUpstreamNotFound,
			"no APOD data found for %s", dateStr)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.Newf(apperrors.KindUpstream,
			"APOD feed returned %s for %s", resp.Status, dateStr)
	}

	var payload Payload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, apperrors.Wrap(apperrors.KindUpstream,
			fmt.Sprintf("failed to decode APOD response for %s", dateStr), err)
	}

	log.Printf("APOD entry fetched: title=%q media_type=%s", payload.Title, payload.MediaType)
	return &payload, nil
}

// FetchToday returns the APOD entry for the current date.
//
// If the system clock reports a date past maxValidDate it is assumed to be
// misconfigured and the last known-good date is fetched instead, so a bad
// clock does not trip the future-date rejection. Explicit date requests
// bypass this guard.
func (c *Client) FetchToday(ctx context.Context) (*Payload, error) {
	today := c.now()
	if today.Format(dateLayout) > maxValidDate.Format(dateLayout) {
		log.Printf("System date %s is past %s, falling back to the last known-good date",
			today.Format(dateLayout), maxValidDate.Format(dateLayout))
		return c.Fetch(ctx, maxValidDate)
	}

	return c.Fetch(ctx, today)
}
