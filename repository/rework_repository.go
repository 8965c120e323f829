package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/atelierworks/jewelqc-backend/models"
)

// ReworkRepository handles database operations for ReworkJob entities
type ReworkRepository struct {
	DB *gorm.DB
}

// NewReworkRepository creates a new instance of ReworkRepository
func NewReworkRepository(db *gorm.DB) *ReworkRepository {
	return &ReworkRepository{DB: db}
}

// Create persists a new rework job
func (r *ReworkRepository) Create(job *models.ReworkJob) error {
	if err := r.DB.Create(job).Error; err != nil {
		return fmt.Errorf("failed to create rework job %s: %w", job.JobUID, err)
	}
	return nil
}

// GetByUID retrieves a rework job by its public identifier
func (r *ReworkRepository) GetByUID(uid string) (*models.ReworkJob, error) {
	var job models.ReworkJob
	err := r.DB.Where("job_uid = ?", uid).First(&job).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get rework job %s: %w", uid, err)
	}
	return &job, nil
}

// List retrieves rework jobs, newest first, filtered and paged by opts
func (r *ReworkRepository) List(opts ReworkListOptions) ([]models.ReworkJob, error) {
	query := r.DB.Model(&models.ReworkJob{})
	if opts.Status != "" {
		query = query.Where("status = ?", opts.Status)
	}
	if opts.Priority != "" {
		query = query.Where("priority = ?", opts.Priority)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	var jobs []models.ReworkJob
	err := query.Order("created_at DESC").Limit(limit).Offset(opts.Offset).Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list rework jobs: %w", err)
	}
	return jobs, nil
}

// Update saves the full state of an existing rework job
func (r *ReworkRepository) Update(job *models.ReworkJob) error {
	if err := r.DB.Save(job).Error; err != nil {
		return fmt.Errorf("failed to update rework job %s: %w", job.JobUID, err)
	}
	return nil
}
