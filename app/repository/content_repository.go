package repository

import (
	"time"

	"github.com/postwiselab/Postwise/app/models"
	"gorm.io/gorm"
)

// contentRepository implements the ContentRepository interface
type contentRepository struct {
	db *gorm.DB
}

// NewContentRepository creates a new content repository instance
func NewContentRepository(db *gorm.DB) ContentRepository {
	return &contentRepository{db: db}
}

// CreateRequest persists a generation request together with its items.
func (r *contentRepository) CreateRequest(req *models.GenerationRequest) error {
	return r.db.Create(req).Error
}

// GetRequestByUUID retrieves a generation request by its public UUID
func (r *contentRepository) GetRequestByUUID(uuid string) (*models.GenerationRequest, error) {
	var req models.GenerationRequest
	if err := r.db.Where("uuid = ?", uuid).First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// GetRequestWithItems retrieves a generation request with its items preloaded
func (r *contentRepository) GetRequestWithItems(uuid string) (*models.GenerationRequest, error) {
	var req models.GenerationRequest
	if err := r.db.Preload("Items").Where("uuid = ?", uuid).First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// ListRequestsByUser returns a page of the user's requests, newest first,
// items preloaded.
func (r *contentRepository) ListRequestsByUser(userID uint, offset, limit int) ([]models.GenerationRequest, error) {
	var reqs []models.GenerationRequest
	err := r.db.Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&reqs).Error
	return reqs, err
}

// CountRequestsByUser returns the total number of requests for a user
func (r *contentRepository) CountRequestsByUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.GenerationRequest{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// GetItemByUUID retrieves a single generated content item by its public UUID
func (r *contentRepository) GetItemByUUID(uuid string) (*models.GeneratedContent, error) {
	var item models.GeneratedContent
	if err := r.db.Where("uuid = ?", uuid).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// ListItemsByRequest returns all items belonging to a request
func (r *contentRepository) ListItemsByRequest(requestID uint) ([]models.GeneratedContent, error) {
	var items []models.GeneratedContent
	err := r.db.Where("request_id = ?", requestID).Find(&items).Error
	return items, err
}

// DeleteRequest soft deletes a generation request. Its items stay untouched;
// scheduled posts referencing them degrade to a missing preview, which is the
// backend's lifecycle decision to make.
func (r *contentRepository) DeleteRequest(id uint) error {
	return r.db.Delete(&models.GenerationRequest{}, id).Error
}

// GetDailyGenerationStats returns per-day request counts for a user
func (r *contentRepository) GetDailyGenerationStats(userID uint, startDate, endDate time.Time) ([]models.DailyStats, error) {
	return dailyCounts(
		r.db.Model(&models.GenerationRequest{}).Where("user_id = ?", userID),
		"created_at", startDate, endDate,
	)
}
