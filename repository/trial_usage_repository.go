package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/atelierworks/jewelqc-backend/models"
)

// TrialUsageRepository handles database operations for TrialUsage entities
type TrialUsageRepository struct {
	DB *gorm.DB
}

// NewTrialUsageRepository creates a new instance of TrialUsageRepository
func NewTrialUsageRepository(db *gorm.DB) *TrialUsageRepository {
	return &TrialUsageRepository{DB: db}
}

// CountForFeature returns how many times a user has used a gated feature
func (r *TrialUsageRepository) CountForFeature(userID, feature string) (int64, error) {
	var count int64
	err := r.DB.Model(&models.TrialUsage{}).
		Where("user_id = ? AND feature = ?", userID, feature).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count trial usage for user %s feature %s: %w", userID, feature, err)
	}
	return count, nil
}

// Record appends one usage row for a user/feature pair
func (r *TrialUsageRepository) Record(usage *models.TrialUsage) error {
	if err := r.DB.Create(usage).Error; err != nil {
		return fmt.Errorf("failed to record trial usage for user %s: %w", usage.UserID, err)
	}
	return nil
}
