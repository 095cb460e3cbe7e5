package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/postwiselab/Postwise/internal/pkg/composer"
	"github.com/postwiselab/Postwise/internal/pkg/env"
)

const defaultAPIBaseURL = "https://engine.postwise.dev/v1"

// APIError is a structured non-2xx answer from the content engine. The engine
// is authoritative for entitlement enforcement; a 403 here means the client's
// gating was stale or advisory.
type APIError struct {
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("content engine returned %d: %s", e.Status, e.Detail)
}

// Request is one rewrite call. Formats defaults server-side to the plan's
// allowed formats when empty; Variants is capped by the engine as well.
type Request struct {
	Text        string   `json:"text"`
	Tone        string   `json:"tone"`
	Language    string   `json:"language"`
	Formats     []string `json:"formats,omitempty"`
	Variants    int      `json:"variants"`
	UseTrial    bool     `json:"use_trial,omitempty"`
	Hashtags    bool     `json:"hashtags,omitempty"`
	Suggestions bool     `json:"suggestions,omitempty"`
}

// Response carries the flat item list plus the enhanced extras when entitled.
type Response struct {
	Items            []composer.Item `json:"items"`
	Hashtags         []string        `json:"hashtags,omitempty"`
	AISuggestions    map[string]any  `json:"ai_suggestions,omitempty"`
	CreditsRemaining int             `json:"credits_remaining"`
}

// Client talks to the external content-generation engine. The engine itself
// is an opaque collaborator; this client only shapes requests and errors.
type Client struct {
	APIBaseURL string
	APIKey     string

	HTTPClient *http.Client
}

// NewClientFromEnv builds a client from environment configuration.
func NewClientFromEnv() *Client {
	return &Client{
		APIBaseURL: strings.TrimRight(env.GetEnv("CONTENT_ENGINE_URL", defaultAPIBaseURL), "/"),
		APIKey:     strings.TrimSpace(env.GetEnv("CONTENT_ENGINE_API_KEY", "")),
		HTTPClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Generate submits a rewrite request and returns the generated items.
// Transport failures come back as plain errors; engine rejections come back
// as *APIError with the server's status and detail untouched.
func (c *Client) Generate(ctx context.Context, req Request) (*Response, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("generation text is required")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIBaseURL+"/generate", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("content engine request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("content engine response read failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, parseAPIError(resp.StatusCode, raw)
	}

	var out Response
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("content engine response decode failed: %w", err)
	}
	return &out, nil
}

func parseAPIError(status int, raw []byte) *APIError {
	apiErr := &APIError{Status: status, Detail: http.StatusText(status)}
	var payload struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		if payload.Detail != "" {
			apiErr.Detail = payload.Detail
		} else if payload.Message != "" {
			apiErr.Detail = payload.Message
		}
	}
	return apiErr
}
