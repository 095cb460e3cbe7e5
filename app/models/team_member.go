package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	TeamRoleOwner  = "owner"
	TeamRoleEditor = "editor"
	TeamRoleViewer = "viewer"

	TeamInvitePending  = "pending"
	TeamInviteAccepted = "accepted"
)

// TeamMember is one seat on an account's team. The owning user is the account
// holder; members are identified by invite email until they accept.
type TeamMember struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	OwnerUserID  uint           `gorm:"not null;index:idx_team_owner_email,priority:1" json:"owner_user_id"`
	MemberUserID uint           `gorm:"index" json:"member_user_id,omitempty"`
	Email        string         `gorm:"type:varchar(200);not null;index:idx_team_owner_email,priority:2" json:"email" validate:"required,email"`
	Role         string         `gorm:"type:varchar(20);not null;default:'viewer'" json:"role" validate:"oneof=owner editor viewer"`
	Status       string         `gorm:"type:varchar(20);not null;default:'pending'" json:"status" validate:"oneof=pending accepted"`
	InvitedAt    time.Time      `gorm:"autoCreateTime" json:"invited_at"`
	AcceptedAt   *time.Time     `gorm:"type:timestamp;default:null" json:"accepted_at,omitempty"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}
