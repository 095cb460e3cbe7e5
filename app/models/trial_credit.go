package models

import "time"

// TrialCredit tracks the one account-lifetime trial: a single enhanced
// generation (3 variants plus hashtags and suggestions) for users below Pro.
// Used is permanent once set; Eligible and Used are never both true.
type TrialCredit struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	Eligible  bool       `gorm:"default:true" json:"eligible"`
	Used      bool       `gorm:"default:false" json:"used"`
	UsedAt    *time.Time `gorm:"type:timestamp;default:null" json:"used_at,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// MarkUsed consumes the credit. Callers must persist the struct afterwards.
func (tc *TrialCredit) MarkUsed() {
	if tc.Used {
		return
	}
	now := time.Now()
	tc.Used = true
	tc.Eligible = false
	tc.UsedAt = &now
}
