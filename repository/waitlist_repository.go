package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/atelierworks/jewelqc-backend/models"
)

// WaitlistRepository handles database operations for WaitlistEntry entities
type WaitlistRepository struct {
	DB *gorm.DB
}

// NewWaitlistRepository creates a new instance of WaitlistRepository
func NewWaitlistRepository(db *gorm.DB) *WaitlistRepository {
	return &WaitlistRepository{DB: db}
}

// Create persists a new waitlist entry
func (r *WaitlistRepository) Create(entry *models.WaitlistEntry) error {
	if err := r.DB.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create waitlist entry for %s: %w", entry.Email, err)
	}
	return nil
}

// GetByEmail retrieves a waitlist entry by email address
func (r *WaitlistRepository) GetByEmail(email string) (*models.WaitlistEntry, error) {
	var entry models.WaitlistEntry
	err := r.DB.Where("email = ?", email).First(&entry).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get waitlist entry for %s: %w", email, err)
	}
	return &entry, nil
}

// List retrieves a page of waitlist entries, oldest first. A limit of 0
// falls back to the repository default.
func (r *WaitlistRepository) List(limit, offset int) ([]models.WaitlistEntry, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	var entries []models.WaitlistEntry
	err := r.DB.Order("created_at ASC").Limit(limit).Offset(offset).Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list waitlist entries: %w", err)
	}
	return entries, nil
}

// Count returns the total number of waitlist entries
func (r *WaitlistRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&models.WaitlistEntry{}).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count waitlist entries: %w", err)
	}
	return count, nil
}
