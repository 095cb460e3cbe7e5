package generation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	c := &Client{
		APIBaseURL: srv.URL,
		APIKey:     "test-key",
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
	}
	return c, srv
}

func TestGenerateSuccess(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/generate", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hello world", req.Text)
		assert.True(t, req.UseTrial)

		_ = json.NewEncoder(w).Encode(Response{
			Items: nil,
			Hashtags: []string{
				"#launch",
			},
			CreditsRemaining: 41,
		})
	})
	defer srv.Close()

	resp, err := c.Generate(context.Background(), Request{
		Text:     "hello world",
		Tone:     "professional",
		Language: "en",
		Variants: 3,
		UseTrial: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 41, resp.CreditsRemaining)
	assert.Equal(t, []string{"#launch"}, resp.Hashtags)
}

func TestGenerateAPIError(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"detail":"trial already used"}`))
	})
	defer srv.Close()

	_, err := c.Generate(context.Background(), Request{Text: "x", Tone: "casual", Language: "en", Variants: 1})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, "trial already used", apiErr.Detail)
}

func TestGenerateAPIErrorWithoutBody(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	defer srv.Close()

	_, err := c.Generate(context.Background(), Request{Text: "x", Tone: "casual", Language: "en", Variants: 1})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, http.StatusText(http.StatusBadGateway), apiErr.Detail)
}

func TestGenerateRejectsEmptyText(t *testing.T) {
	c := &Client{APIBaseURL: "http://localhost:0", HTTPClient: http.DefaultClient}
	_, err := c.Generate(context.Background(), Request{Text: "   "})
	assert.Error(t, err)
}

func TestGenerateTransportError(t *testing.T) {
	c := &Client{APIBaseURL: "http://127.0.0.1:1", HTTPClient: &http.Client{Timeout: time.Second}}
	_, err := c.Generate(context.Background(), Request{Text: "x", Tone: "casual", Language: "en", Variants: 1})
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr), "transport failures are not APIErrors")
}
