// Package classifier talks to the external AI-detection service and maps
// its verdicts to classification labels.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"skylens/internal/apperrors"
)

// Result is the normalized classifier verdict. The boolean flag and
// confidence are pointers because the upstream schema is loose: a response
// missing either field resolves to UNCERTAIN downstream.
type Result struct {
	IsAiGenerated *bool    `json:"is_ai_generated"`
	Confidence    *float64 `json:"confidence"`
	Message       string   `json:"message,omitempty"`
	Details       string   `json:"details,omitempty"`
}

// Client represents a client for the AI-detection API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new classifier client
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Classify sends text to the detection endpoint and returns the verdict.
//
// The only error it returns is an invalid-input error for empty text; any
// transport or upstream failure is absorbed into a default result with a
// diagnostic message. Classification is advisory, so an outage degrades
// accuracy rather than availability. Callers that need to distinguish a
// genuine zero-confidence verdict from an unavailable classifier must look
// at Result.Message.
func (c *Client) Classify(ctx context.Context, text string) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.New(apperrors.KindInvalidInput, "text content must not be empty")
	}

	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return defaultResult(fmt.Sprintf("failed to encode request: %v", err)), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/ai-detection", bytes.NewBuffer(body))
	if err != nil {
		return defaultResult(fmt.Sprintf("failed to create request: %v", err)), nil
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("Classifier request failed, returning default result: %v", err)
		return defaultResult(fmt.Sprintf("classifier unreachable: %v", err)), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		log.Printf("Classifier returned %s, returning default result: %s", resp.Status, string(respBody))
		return defaultResult(fmt.Sprintf("classifier error: %s", resp.Status)), nil
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.Printf("Failed to decode classifier response, returning default result: %v", err)
		return defaultResult(fmt.Sprintf("malformed classifier response: %v", err)), nil
	}

	return &result, nil
}

// defaultResult is the fail-open verdict: not AI, zero confidence, with the
// diagnostic preserved in the message field.
func defaultResult(message string) *Result {
	ai := false
	confidence := 0.0
	return &Result{
		IsAiGenerated: &ai,
		Confidence:    &confidence,
		Message:       message,
	}
}
