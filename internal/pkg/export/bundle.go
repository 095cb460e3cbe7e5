package export

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/postwiselab/Postwise/app/models"
	"github.com/postwiselab/Postwise/internal/pkg/composer"
	"github.com/postwiselab/Postwise/internal/pkg/shortener"
)

// DownloadURLTTL is how long a presigned export download stays valid.
const DownloadURLTTL = 15 * time.Minute

// exportIDLength gives 16 Base62 characters, enough entropy that export
// object keys cannot be enumerated.
const exportIDLength = 16

// Bundle is the serialized form of a user's export: every generation request
// with its variants already grouped and labelled.
type Bundle struct {
	ExportID  string          `json:"export_id"`
	UserID    uint            `json:"user_id"`
	CreatedAt time.Time       `json:"created_at"`
	Requests  []BundleRequest `json:"requests"`
}

// BundleRequest mirrors one generation request inside a bundle.
type BundleRequest struct {
	UUID       string           `json:"uuid"`
	SourceText string           `json:"source_text"`
	Tone       string           `json:"tone"`
	Language   string           `json:"language"`
	CreatedAt  time.Time        `json:"created_at"`
	Groups     []composer.Group `json:"groups"`
}

// BuildBundle composes each request's items into display groups and assembles
// the export document. Requests whose items are all error sentinels still
// appear, with an empty group list.
func BuildBundle(userID uint, requests []models.GenerationRequest) (*Bundle, error) {
	exportID, err := shortener.GenerateSecureSlug(exportIDLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate export id: %w", err)
	}

	bundle := &Bundle{
		ExportID:  exportID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
		Requests:  make([]BundleRequest, 0, len(requests)),
	}

	for _, req := range requests {
		items := make([]composer.Item, 0, len(req.Items))
		for _, it := range req.Items {
			items = append(items, composer.Item{
				ID:            it.UUID,
				Format:        it.Format,
				VariantNumber: it.VariantNumber,
				Content:       it.Content,
				CreatedAt:     it.CreatedAt,
			})
		}

		bundle.Requests = append(bundle.Requests, BundleRequest{
			UUID:       req.UUID,
			SourceText: req.SourceText,
			Tone:       req.Tone,
			Language:   req.Language,
			CreatedAt:  req.CreatedAt,
			Groups:     composer.Compose(items),
		})
	}

	return bundle, nil
}

// Result describes a completed export.
type Result struct {
	ExportID     string    `json:"export_id"`
	ObjectKey    string    `json:"object_key"`
	Size         int64     `json:"size"`
	RequestCount int       `json:"request_count"`
	DownloadURL  string    `json:"download_url"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Exporter serializes bundles and ships them to object storage.
type Exporter struct {
	client *Client
	config *Config
}

// NewExporter builds an exporter on top of an initialized client.
func NewExporter(client *Client, cfg *Config) *Exporter {
	return &Exporter{client: client, config: cfg}
}

// Export builds a bundle from the given requests, uploads it and returns a
// time-limited download link.
func (e *Exporter) Export(ctx context.Context, userID uint, requests []models.GenerationRequest) (*Result, error) {
	if len(requests) == 0 {
		return nil, fmt.Errorf("nothing to export")
	}

	bundle, err := BuildBundle(userID, requests)
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize export bundle: %w", err)
	}

	objectKey := e.config.GetObjectKey(userID, bundle.ExportID, bundle.CreatedAt)
	upload, err := e.client.UploadBundle(ctx, objectKey, data)
	if err != nil {
		return nil, err
	}

	url, err := e.client.PresignDownload(ctx, objectKey, DownloadURLTTL)
	if err != nil {
		return nil, err
	}

	return &Result{
		ExportID:     bundle.ExportID,
		ObjectKey:    upload.ObjectKey,
		Size:         upload.Size,
		RequestCount: len(bundle.Requests),
		DownloadURL:  url,
		ExpiresAt:    time.Now().Add(DownloadURLTTL),
	}, nil
}
