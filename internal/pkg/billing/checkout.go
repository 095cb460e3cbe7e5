package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/postwiselab/Postwise/internal/pkg/env"
)

const defaultCheckoutAPIBaseURL = "https://api.stripe.example/v1"

// CheckoutSession is the black-box answer from the payment processor. The
// client secret is handed to the front-end payment widget; nothing else about
// the processor leaks into this core.
type CheckoutSession struct {
	PublishableKey string `json:"publishable_key"`
	ClientSecret   string `json:"client_secret"`
}

// CheckoutClient talks to the payment processor's session endpoint.
type CheckoutClient struct {
	APIBaseURL string
	SecretKey  string
	PubKey     string

	HTTPClient *http.Client
}

// NewCheckoutClientFromEnv builds a checkout client from environment configuration.
func NewCheckoutClientFromEnv() *CheckoutClient {
	return &CheckoutClient{
		APIBaseURL: strings.TrimRight(env.GetEnv("BILLING_API_BASE_URL", defaultCheckoutAPIBaseURL), "/"),
		SecretKey:  strings.TrimSpace(env.GetEnv("BILLING_SECRET_KEY", "")),
		PubKey:     strings.TrimSpace(env.GetEnv("BILLING_PUBLISHABLE_KEY", "")),
		HTTPClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

// CreateCheckoutSession opens a payment session for the given plan reference.
// The provider validates the plan ref and amount on its side.
func (c *CheckoutClient) CreateCheckoutSession(ctx context.Context, userID uint, providerPlanRef, interval string) (*CheckoutSession, error) {
	if strings.TrimSpace(c.SecretKey) == "" {
		return nil, errors.New("BILLING_SECRET_KEY is not configured")
	}
	ref := strings.TrimSpace(providerPlanRef)
	if userID == 0 || ref == "" {
		return nil, errors.New("user_id and provider plan ref are required")
	}

	payload := map[string]any{
		"client_reference_id": fmt.Sprintf("user-%d", userID),
		"plan_ref":            ref,
		"interval":            normalizeInterval(interval),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIBaseURL+"/checkout/sessions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("checkout session request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("checkout session response read failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("checkout session request rejected with status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out struct {
		ClientSecret string `json:"client_secret"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("checkout session response decode failed: %w", err)
	}
	if out.ClientSecret == "" {
		return nil, errors.New("checkout session response missing client_secret")
	}

	return &CheckoutSession{
		PublishableKey: c.PubKey,
		ClientSecret:   out.ClientSecret,
	}, nil
}
