package repository

import (
	"fmt"
	"strings"
	"time"

	"github.com/postwiselab/Postwise/app/models"
	"gorm.io/gorm"
)

// userRepository implements the UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository instance
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user in the database
func (r *userRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by their email address
func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByActivationToken retrieves a user by their activation token
func (r *userRepository) GetByActivationToken(token string) (*models.User, error) {
	var user models.User
	err := r.db.Where("activation_token = ?", token).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByAPIKeyHash resolves an active API key hash to its user and user settings.
func (r *userRepository) GetByAPIKeyHash(hash string) (*models.User, *models.UserSettings, error) {
	trimmed := strings.TrimSpace(hash)
	if trimmed == "" {
		return nil, nil, gorm.ErrRecordNotFound
	}
	var settings models.UserSettings
	query := r.db.Where("api_key_hash = ? AND api_key_hash <> '' AND api_key_revoked_at IS NULL", trimmed)
	if err := query.First(&settings).Error; err != nil {
		return nil, nil, err
	}
	var user models.User
	if err := r.db.First(&user, settings.UserID).Error; err != nil {
		return nil, nil, err
	}
	return &user, &settings, nil
}

// GetStatsByUserID returns aggregate statistics for the given user.
func (r *userRepository) GetStatsByUserID(userID uint) (*UserStats, error) {
	var stats UserStats

	err := r.db.Model(&models.GenerationRequest{}).Where("user_id = ?", userID).Count(&stats.GenerationCount).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count generation requests: %w", err)
	}

	err = r.db.Model(&models.GeneratedContent{}).Where("user_id = ?", userID).Count(&stats.ContentCount).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count generated content: %w", err)
	}

	err = r.db.Model(&models.ScheduledPost{}).Where("user_id = ?", userID).Count(&stats.ScheduledCount).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count scheduled posts: %w", err)
	}

	return &stats, nil
}

// Update updates an existing user in the database
func (r *userRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// Delete soft deletes a user by their ID
func (r *userRepository) Delete(id uint) error {
	return r.db.Delete(&models.User{}, id).Error
}

// List retrieves a paginated list of users
func (r *userRepository) List(offset, limit int) ([]models.User, error) {
	var users []models.User
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error
	return users, err
}

// Count returns the total number of users
func (r *userRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Count(&count).Error
	return count, err
}

// GetDailyStats returns daily user registration statistics for a date range
func (r *userRepository) GetDailyStats(startDate, endDate time.Time) ([]models.DailyStats, error) {
	return dailyCounts(r.db.Model(&models.User{}), "created_at", startDate, endDate)
}

// dailyCounts groups rows of the given query by calendar day of tsColumn.
// DATE_FORMAT keeps the grouping MySQL-side and the key format canonical.
func dailyCounts(query *gorm.DB, tsColumn string, startDate, endDate time.Time) ([]models.DailyStats, error) {
	var results []struct {
		Date  string
		Count int64
	}

	err := query.
		Select(fmt.Sprintf("DATE_FORMAT(%s, '%%Y-%%m-%%d') as date, COUNT(*) as count", tsColumn)).
		Where(fmt.Sprintf("%s BETWEEN ? AND ?", tsColumn), startDate, endDate).
		Group(fmt.Sprintf("DATE_FORMAT(%s, '%%Y-%%m-%%d')", tsColumn)).
		Order("date").
		Find(&results).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate daily stats: %w", err)
	}

	stats := make([]models.DailyStats, 0, len(results))
	for _, row := range results {
		stats = append(stats, models.DailyStats{Date: row.Date, Count: int(row.Count)})
	}
	return stats, nil
}
