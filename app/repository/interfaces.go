package repository

import (
	"time"

	"github.com/postwiselab/Postwise/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByActivationToken(token string) (*models.User, error)
	GetByAPIKeyHash(hash string) (*models.User, *models.UserSettings, error)
	GetStatsByUserID(userID uint) (*UserStats, error)
	Update(user *models.User) error
	Delete(id uint) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
	GetDailyStats(startDate, endDate time.Time) ([]models.DailyStats, error)
}

// ContentRepository defines the interface for generation request and
// generated content operations
type ContentRepository interface {
	CreateRequest(req *models.GenerationRequest) error
	GetRequestByUUID(uuid string) (*models.GenerationRequest, error)
	GetRequestWithItems(uuid string) (*models.GenerationRequest, error)
	ListRequestsByUser(userID uint, offset, limit int) ([]models.GenerationRequest, error)
	CountRequestsByUser(userID uint) (int64, error)
	GetItemByUUID(uuid string) (*models.GeneratedContent, error)
	ListItemsByRequest(requestID uint) ([]models.GeneratedContent, error)
	DeleteRequest(id uint) error
	GetDailyGenerationStats(userID uint, startDate, endDate time.Time) ([]models.DailyStats, error)
}

// ScheduleRepository defines the interface for scheduled post operations
type ScheduleRepository interface {
	Create(post *models.ScheduledPost) error
	GetByUUID(uuid string) (*models.ScheduledPost, error)
	Update(post *models.ScheduledPost) error
	Delete(id uint) error
	ListByUserBetween(userID uint, startUTC, endUTC time.Time) ([]models.ScheduledPost, error)
	CountByUser(userID uint) (int64, error)
	GetDailyScheduleStats(userID uint, startDate, endDate time.Time) ([]models.DailyStats, error)
}

// TeamRepository defines the interface for team seat operations
type TeamRepository interface {
	Invite(member *models.TeamMember) error
	GetByID(id uint) (*models.TeamMember, error)
	ListByOwner(ownerUserID uint) ([]models.TeamMember, error)
	CountByOwner(ownerUserID uint) (int64, error)
	Update(member *models.TeamMember) error
	Remove(id uint) error
}

// SettingRepository defines the interface for setting-related operations
type SettingRepository interface {
	Get() (*models.AppSettings, error)
	Save(settings *models.AppSettings) error
	GetValue(key string) (string, error)
	SetValue(key, value string) error
}

// UserStats aggregates per-user dashboard numbers
type UserStats struct {
	GenerationCount int64 `json:"generation_count"`
	ContentCount    int64 `json:"content_count"`
	ScheduledCount  int64 `json:"scheduled_count"`
}

// Repositories struct holds all repository instances
type Repositories struct {
	User     UserRepository
	Content  ContentRepository
	Schedule ScheduleRepository
	Team     TeamRepository
	Setting  SettingRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:     NewUserRepository(db),
		Content:  NewContentRepository(db),
		Schedule: NewScheduleRepository(db),
		Team:     NewTeamRepository(db),
		Setting:  NewSettingRepository(db),
	}
}
