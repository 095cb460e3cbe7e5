package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ScheduledPost binds exactly one generated content item to an absolute UTC
// instant and a target platform. It references a single format+variant, never
// a whole group. Deleting the parent generation request does not cascade here;
// readers must tolerate a dangling content reference.
type ScheduledPost struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	UUID           string         `gorm:"type:char(36);uniqueIndex" json:"uuid"`
	UserID         uint           `gorm:"not null;index" json:"user_id"`
	ContentUUID    string         `gorm:"type:char(36);not null;index" json:"generated_content_id"`
	ScheduledAtUTC time.Time      `gorm:"not null;index" json:"scheduled_at_utc"`
	Platform       string         `gorm:"type:varchar(50);not null" json:"platform" validate:"required"`
	Title          string         `gorm:"type:varchar(255)" json:"title,omitempty" validate:"max=255"`
	Notes          string         `gorm:"type:text" json:"notes,omitempty" validate:"max=2000"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate assigns the public UUID.
func (sp *ScheduledPost) BeforeCreate(tx *gorm.DB) error {
	if sp.UUID == "" {
		sp.UUID = uuid.New().String()
	}
	return nil
}
