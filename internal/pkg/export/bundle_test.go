package export

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postwiselab/Postwise/app/models"
	"github.com/postwiselab/Postwise/internal/pkg/composer"
)

func TestBuildBundle(t *testing.T) {
	created := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	requests := []models.GenerationRequest{
		{
			UUID:       "req-1",
			SourceText: "launch announcement",
			Tone:       "professional",
			Language:   "en",
			CreatedAt:  created,
			Items: []models.GeneratedContent{
				{UUID: "c-1", Format: "twitter", VariantNumber: 1, Content: "short take", CreatedAt: created},
				{UUID: "c-2", Format: "linkedin", VariantNumber: 1, Content: "long take", CreatedAt: created},
				{UUID: "c-3", Format: "linkedin", VariantNumber: 2, Content: "longer take", CreatedAt: created},
			},
		},
	}

	bundle, err := BuildBundle(7, requests)
	require.NoError(t, err)

	assert.NotEmpty(t, bundle.ExportID)
	assert.Equal(t, uint(7), bundle.UserID)
	require.Len(t, bundle.Requests, 1)

	req := bundle.Requests[0]
	assert.Equal(t, "req-1", req.UUID)
	require.Len(t, req.Groups, 2)

	// Linkedin sorts before twitter and carries positional labels.
	assert.Equal(t, "linkedin", req.Groups[0].Format)
	require.Len(t, req.Groups[0].Variants, 2)
	assert.Equal(t, "Balanced", req.Groups[0].Variants[0].Label)
	assert.Equal(t, "Bold", req.Groups[0].Variants[1].Label)
	assert.Equal(t, "twitter", req.Groups[1].Format)
}

func TestBuildBundleExcludesErrorItems(t *testing.T) {
	requests := []models.GenerationRequest{
		{
			UUID: "req-err",
			Items: []models.GeneratedContent{
				{UUID: "c-1", Format: "twitter", VariantNumber: 1, Content: composer.ErrorSentinelPrefix + " upstream timeout"},
			},
		},
	}

	bundle, err := BuildBundle(3, requests)
	require.NoError(t, err)

	require.Len(t, bundle.Requests, 1)
	assert.Empty(t, bundle.Requests[0].Groups)
}

func TestBuildBundleEmpty(t *testing.T) {
	bundle, err := BuildBundle(1, nil)
	require.NoError(t, err)

	assert.Empty(t, bundle.Requests)
	assert.NotEmpty(t, bundle.ExportID)
}

func TestConfigObjectKey(t *testing.T) {
	cfg := &Config{BucketName: "postwise-exports"}
	key := cfg.GetObjectKey(42, "abc-def", time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, "exports/42/2025/07/abc-def.json", key)
}
