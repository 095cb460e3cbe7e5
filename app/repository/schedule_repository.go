package repository

import (
	"time"

	"github.com/postwiselab/Postwise/app/models"
	"gorm.io/gorm"
)

// scheduleRepository implements the ScheduleRepository interface
type scheduleRepository struct {
	db *gorm.DB
}

// NewScheduleRepository creates a new schedule repository instance
func NewScheduleRepository(db *gorm.DB) ScheduleRepository {
	return &scheduleRepository{db: db}
}

// Create persists a new scheduled post
func (r *scheduleRepository) Create(post *models.ScheduledPost) error {
	return r.db.Create(post).Error
}

// GetByUUID retrieves a scheduled post by its public UUID
func (r *scheduleRepository) GetByUUID(uuid string) (*models.ScheduledPost, error) {
	var post models.ScheduledPost
	if err := r.db.Where("uuid = ?", uuid).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// Update updates an existing scheduled post
func (r *scheduleRepository) Update(post *models.ScheduledPost) error {
	return r.db.Save(post).Error
}

// Delete soft deletes a scheduled post
func (r *scheduleRepository) Delete(id uint) error {
	return r.db.Delete(&models.ScheduledPost{}, id).Error
}

// ListByUserBetween returns the user's posts inside [startUTC, endUTC]. Both
// bounds are inclusive so a month window covers the final instant of its last
// day.
func (r *scheduleRepository) ListByUserBetween(userID uint, startUTC, endUTC time.Time) ([]models.ScheduledPost, error) {
	var posts []models.ScheduledPost
	err := r.db.
		Where("user_id = ? AND scheduled_at_utc BETWEEN ? AND ?", userID, startUTC, endUTC).
		Order("scheduled_at_utc ASC").
		Find(&posts).Error
	return posts, err
}

// CountByUser returns the total number of scheduled posts for a user
func (r *scheduleRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.ScheduledPost{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// GetDailyScheduleStats returns per-day scheduled post counts for a user
func (r *scheduleRepository) GetDailyScheduleStats(userID uint, startDate, endDate time.Time) ([]models.DailyStats, error) {
	return dailyCounts(
		r.db.Model(&models.ScheduledPost{}).Where("user_id = ?", userID),
		"scheduled_at_utc", startDate, endDate,
	)
}
