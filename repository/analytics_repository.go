package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/atelierworks/jewelqc-backend/models"
)

// AnalyticsRepository handles database operations for AnalyticsEvent entities
type AnalyticsRepository struct {
	DB *gorm.DB
}

// NewAnalyticsRepository creates a new instance of AnalyticsRepository
func NewAnalyticsRepository(db *gorm.DB) *AnalyticsRepository {
	return &AnalyticsRepository{DB: db}
}

// Record appends a usage event
func (r *AnalyticsRepository) Record(event *models.AnalyticsEvent) error {
	if err := r.DB.Create(event).Error; err != nil {
		return fmt.Errorf("failed to record analytics event %s/%s: %w", event.EventType, event.EventAction, err)
	}
	return nil
}
