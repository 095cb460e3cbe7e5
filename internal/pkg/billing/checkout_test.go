package billing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCheckoutSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/checkout/sessions", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "user-42", payload["client_reference_id"])
		assert.Equal(t, "price_pro_monthly", payload["plan_ref"])
		assert.Equal(t, "month", payload["interval"])

		_, _ = w.Write([]byte(`{"client_secret":"cs_secret_123"}`))
	}))
	defer srv.Close()

	c := &CheckoutClient{
		APIBaseURL: srv.URL,
		SecretKey:  "sk_test",
		PubKey:     "pk_test",
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
	}

	sess, err := c.CreateCheckoutSession(context.Background(), 42, "price_pro_monthly", "month")
	require.NoError(t, err)
	assert.Equal(t, "pk_test", sess.PublishableKey)
	assert.Equal(t, "cs_secret_123", sess.ClientSecret)
}

func TestCreateCheckoutSessionValidation(t *testing.T) {
	c := &CheckoutClient{SecretKey: "sk", HTTPClient: http.DefaultClient}

	_, err := c.CreateCheckoutSession(context.Background(), 0, "price", "month")
	assert.Error(t, err)

	_, err = c.CreateCheckoutSession(context.Background(), 1, " ", "month")
	assert.Error(t, err)

	c.SecretKey = ""
	_, err = c.CreateCheckoutSession(context.Background(), 1, "price", "month")
	assert.Error(t, err)
}

func TestCreateCheckoutSessionProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error":"card_declined"}`))
	}))
	defer srv.Close()

	c := &CheckoutClient{APIBaseURL: srv.URL, SecretKey: "sk", HTTPClient: http.DefaultClient}
	_, err := c.CreateCheckoutSession(context.Background(), 1, "price", "year")
	assert.Error(t, err)
}

func TestCreateCheckoutSessionMissingClientSecret(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := &CheckoutClient{APIBaseURL: srv.URL, SecretKey: "sk", HTTPClient: http.DefaultClient}
	_, err := c.CreateCheckoutSession(context.Background(), 1, "price", "month")
	assert.Error(t, err)
}
