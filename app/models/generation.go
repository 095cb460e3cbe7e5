package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GenerationRequest records one call to the content backend: the source text,
// the requested tone/language and whether the account's trial credit was spent
// on it.
type GenerationRequest struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	UUID             string         `gorm:"type:char(36);uniqueIndex" json:"uuid"`
	UserID           uint           `gorm:"not null;index" json:"user_id"`
	SourceText       string         `gorm:"type:text;not null" json:"source_text" validate:"required,min=1,max=10000"`
	Tone             string         `gorm:"type:varchar(50);not null" json:"tone" validate:"required"`
	Language         string         `gorm:"type:varchar(10);not null;default:'en'" json:"language" validate:"required,min=2,max=10"`
	UsedTrial        bool           `gorm:"default:false" json:"used_trial"`
	HashtagsJSON     string         `gorm:"type:text" json:"-"`
	SuggestionsJSON  string         `gorm:"type:text" json:"-"`
	CreditsRemaining int            `gorm:"default:0" json:"credits_remaining"`
	ViewCount        int64          `gorm:"default:0" json:"view_count"`
	ExportCount      int64          `gorm:"default:0" json:"export_count"`
	CreatedAt        time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	Items []GeneratedContent `gorm:"foreignKey:RequestID" json:"items,omitempty"`
}

// BeforeCreate assigns the public UUID.
func (gr *GenerationRequest) BeforeCreate(tx *gorm.DB) error {
	if gr.UUID == "" {
		gr.UUID = uuid.New().String()
	}
	return nil
}

// GeneratedContent is one rewritten text for one format. Immutable once
// created; identity is the UUID. Variant numbers are unique per format within
// a request by construction.
type GeneratedContent struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UUID          string    `gorm:"type:char(36);uniqueIndex" json:"uuid"`
	RequestID     uint      `gorm:"not null;index" json:"request_id"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	Format        string    `gorm:"type:varchar(50);not null;index" json:"format"`
	VariantNumber int       `gorm:"not null" json:"variant_number"`
	Content       string    `gorm:"type:text;not null" json:"content"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// BeforeCreate assigns the public UUID.
func (gc *GeneratedContent) BeforeCreate(tx *gorm.DB) error {
	if gc.UUID == "" {
		gc.UUID = uuid.New().String()
	}
	return nil
}
