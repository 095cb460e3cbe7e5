package controllers

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postwiselab/Postwise/internal/pkg/entitlements"
)

func TestFormatTimePtr(t *testing.T) {
	assert.Nil(t, formatTimePtr(nil))

	now := time.Date(2024, 5, 1, 12, 34, 56, 0, time.Local)
	formatted := formatTimePtr(&now)
	assert.IsType(t, "", formatted)

	expected := now.UTC().Format(time.RFC3339)
	assert.Equal(t, expected, formatted)
}

func TestPreviewSessionKey(t *testing.T) {
	assert.Equal(t, "preview_chosen:calendar", previewSessionKey(entitlements.FeatureCalendar))
	assert.Equal(t, "preview_chosen:team", previewSessionKey(entitlements.FeatureTeam))
}

func TestGetClientIP(t *testing.T) {
	app := fiber.New()

	var ipv4, ipv6 string
	app.Get("/", func(c *fiber.Ctx) error {
		ipv4, ipv6 = GetClientIP(c)
		return c.SendStatus(fiber.StatusOK)
	})

	tests := []struct {
		name     string
		header   string
		value    string
		wantIPv4 string
		wantIPv6 string
	}{
		{name: "cloudflare ipv4", header: "CF-Connecting-IP", value: "203.0.113.7", wantIPv4: "203.0.113.7"},
		{name: "cloudflare ipv6", header: "CF-Connecting-IP", value: "2001:db8::1", wantIPv6: "2001:db8::1"},
		{name: "forwarded list", header: "X-Forwarded-For", value: "198.51.100.2, 10.0.0.1", wantIPv4: "198.51.100.2"},
		{name: "forwarded ipv6", header: "X-Forwarded-For", value: "2001:db8::2", wantIPv6: "2001:db8::2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ipv4, ipv6 = "", ""
			req := httptest.NewRequest("GET", "/", nil)
			req.Header.Set(tt.header, tt.value)

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantIPv4, ipv4)
			assert.Equal(t, tt.wantIPv6, ipv6)
		})
	}
}
