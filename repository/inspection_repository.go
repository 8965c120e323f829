package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/atelierworks/jewelqc-backend/database"
	"github.com/atelierworks/jewelqc-backend/media"
	"github.com/atelierworks/jewelqc-backend/models"
)

const defaultListLimit = 50

// InspectionRepository handles database operations for Inspection entities
type InspectionRepository struct {
	DB *gorm.DB
}

// NewInspectionRepository creates a new instance of InspectionRepository
func NewInspectionRepository(db *gorm.DB) *InspectionRepository {
	return &InspectionRepository{DB: db}
}

// Create persists a new inspection record
func (r *InspectionRepository) Create(inspection *models.Inspection) error {
	if err := r.DB.Create(inspection).Error; err != nil {
		return fmt.Errorf("failed to create inspection %s: %w", inspection.InspectionUID, err)
	}
	return nil
}

// GetByUID retrieves an inspection by its public identifier
func (r *InspectionRepository) GetByUID(uid string) (*models.Inspection, error) {
	var inspection models.Inspection
	err := r.DB.Where("inspection_uid = ?", uid).First(&inspection).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get inspection %s: %w", uid, err)
	}
	return &inspection, nil
}

// List retrieves inspections, newest first, filtered and paged by opts
func (r *InspectionRepository) List(opts InspectionListOptions) ([]models.Inspection, error) {
	query := r.DB.Model(&models.Inspection{})
	if opts.UserID != "" {
		query = query.Where("user_id = ?", opts.UserID)
	}
	if opts.Decision != "" {
		if opts.Decision == "undecided" {
			query = query.Where("operator_decision IS NULL")
		} else {
			query = query.Where("operator_decision = ?", opts.Decision)
		}
	}
	if opts.Status != "" {
		query = query.Where("status = ?", opts.Status)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	var inspections []models.Inspection
	err := query.Order("inspected_at DESC").Limit(limit).Offset(opts.Offset).Find(&inspections).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list inspections: %w", err)
	}
	return inspections, nil
}

// UpdateTriage records the operator's decision on an inspection
func (r *InspectionRepository) UpdateTriage(uid string, decision string, notes *string, isFalsePositive bool, reworkJobID *uint) error {
	updates := map[string]interface{}{
		"operator_decision": decision,
		"operator_notes":    notes,
		"is_false_positive": isFalsePositive,
	}
	if reworkJobID != nil {
		updates["rework_job_id"] = *reworkJobID
	}

	result := r.DB.Model(&models.Inspection{}).Where("inspection_uid = ?", uid).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update triage for inspection %s: %w", uid, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// LinkReworkJob attaches a created rework job to its source inspection
func (r *InspectionRepository) LinkReworkJob(uid string, reworkJobID uint) error {
	result := r.DB.Model(&models.Inspection{}).Where("inspection_uid = ?", uid).Update("rework_job_id", reworkJobID)
	if result.Error != nil {
		return fmt.Errorf("failed to link rework job %d to inspection %s: %w", reworkJobID, uid, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkTaskProcessing updates a specific task's status to 'processing' and clears its error
func (r *InspectionRepository) MarkTaskProcessing(id uint, taskStatusColumn string) error {
	validStatusColumns := map[string]string{
		"thumbnail_status": "thumbnail_error",
		"metadata_status":  "metadata_error",
	}

	errorColumn, isValid := validStatusColumns[taskStatusColumn]
	if !isValid {
		return fmt.Errorf("invalid task status column name: %s", taskStatusColumn)
	}

	updates := map[string]interface{}{
		taskStatusColumn: database.StatusProcessing,
		errorColumn:      gorm.Expr("NULL"),
	}

	result := r.DB.Model(&models.Inspection{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to mark task %s processing for inspection %d: %w", taskStatusColumn, id, result.Error)
	}
	return nil
}

// UpdateThumbnailResult updates the inspection record with thumbnail generation results
func (r *InspectionRepository) UpdateThumbnailResult(id uint, thumbPath *string, taskErr error) error {
	now := time.Now().Unix()
	status := database.StatusDone
	var errStr *string

	if taskErr != nil {
		status = database.StatusError
		s := taskErr.Error()
		errStr = &s
	}

	updates := map[string]interface{}{
		"item_thumbnail_path":    thumbPath,
		"thumbnail_status":       status,
		"thumbnail_processed_at": &now,
		"thumbnail_error":        errStr,
	}

	result := r.DB.Model(&models.Inspection{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update thumbnail result for inspection %d: %w", id, result.Error)
	}
	return nil
}

// UpdateMetadataResult updates the inspection record with capture metadata extraction results
func (r *InspectionRepository) UpdateMetadataResult(id uint, meta *media.CaptureMetadata, taskErr error) error {
	now := time.Now().Unix()
	status := database.StatusDone
	var errStr *string

	if taskErr != nil {
		status = database.StatusError
		s := taskErr.Error()
		errStr = &s
	}

	updateData := map[string]interface{}{
		"metadata_status":       status,
		"metadata_processed_at": &now,
		"metadata_error":        errStr,
	}

	if meta != nil {
		updateData["capture_width"] = meta.Width
		updateData["capture_height"] = meta.Height
		updateData["camera_make"] = meta.CameraMake
		updateData["camera_model"] = meta.CameraModel
		updateData["taken_at"] = meta.TakenAt
	}

	result := r.DB.Model(&models.Inspection{}).Where("id = ?", id).Updates(updateData)
	if result.Error != nil {
		return fmt.Errorf("failed to update metadata result for inspection %d: %w", id, result.Error)
	}
	return nil
}

// GetInspectionsRequiringProcessing retrieves inspections with one or more tasks still pending
func (r *InspectionRepository) GetInspectionsRequiringProcessing() ([]models.Inspection, error) {
	var inspections []models.Inspection
	err := r.DB.Where("thumbnail_status = ? OR metadata_status = ?",
		database.StatusPending, database.StatusPending).
		Find(&inspections).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get inspections requiring processing: %w", err)
	}
	return inspections, nil
}
