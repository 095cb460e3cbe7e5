package repository

import (
	"github.com/postwiselab/Postwise/app/models"
	"gorm.io/gorm"
)

// teamRepository implements the TeamRepository interface
type teamRepository struct {
	db *gorm.DB
}

// NewTeamRepository creates a new team repository instance
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &teamRepository{db: db}
}

// Invite persists a new seat invitation
func (r *teamRepository) Invite(member *models.TeamMember) error {
	return r.db.Create(member).Error
}

// GetByID retrieves a team member by ID
func (r *teamRepository) GetByID(id uint) (*models.TeamMember, error) {
	var member models.TeamMember
	if err := r.db.First(&member, id).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// ListByOwner returns all seats on an account's team
func (r *teamRepository) ListByOwner(ownerUserID uint) ([]models.TeamMember, error) {
	var members []models.TeamMember
	err := r.db.Where("owner_user_id = ?", ownerUserID).Order("created_at ASC").Find(&members).Error
	return members, err
}

// CountByOwner returns the number of occupied seats
func (r *teamRepository) CountByOwner(ownerUserID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.TeamMember{}).Where("owner_user_id = ?", ownerUserID).Count(&count).Error
	return count, err
}

// Update updates a team member record
func (r *teamRepository) Update(member *models.TeamMember) error {
	return r.db.Save(member).Error
}

// Remove soft deletes a seat
func (r *teamRepository) Remove(id uint) error {
	return r.db.Delete(&models.TeamMember{}, id).Error
}
