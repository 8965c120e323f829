package models

import "gorm.io/gorm"

// Inspection is a persisted QC inspection record using GORM. It wraps the
// immutable inspection report with operator-decision fields and the
// asynchronous media task columns.
// It corresponds to the 'qc_inspections' table.
type Inspection struct {
	ID            uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	InspectionUID string `gorm:"not null;uniqueIndex" json:"inspection_uid"` // qc_<hex>, generated by the core
	UserID        string `gorm:"not null;index" json:"user_id"`              // external identity, supplied by the caller

	// inspected item
	ItemReference     *string `gorm:"" json:"item_reference,omitempty"` // design id, order id, etc.
	ItemImagePath     *string `gorm:"" json:"item_image_path,omitempty"`
	ItemThumbnailPath *string `gorm:"" json:"item_thumbnail_path,omitempty"`
	FileType          string  `gorm:"not null" json:"file_type"`
	HasCADFile        bool    `gorm:"not null;default:false" json:"has_cad_file"`

	// detection results
	Defects             DefectList `gorm:"type:text" json:"defects"`
	DetectionMode       string     `gorm:"not null" json:"detection_mode"`
	ModelVersion        string     `gorm:"not null;default:'v1.0'" json:"model_version"`
	ConfidenceThreshold float64    `gorm:"not null" json:"confidence_threshold"`
	Status              string     `gorm:"not null;index" json:"status"`
	Recommendation      string     `gorm:"not null" json:"recommendation"`
	ConfidenceNote      string     `gorm:"" json:"confidence_note"`
	RequiresReshoot     bool       `gorm:"not null;default:false" json:"requires_reshoot"`
	LightingWarning     *string    `gorm:"" json:"lighting_warning,omitempty"`

	// operator decision
	OperatorDecision *string `gorm:"index" json:"operator_decision,omitempty"` // accept, rework, escalate
	OperatorNotes    *string `gorm:"" json:"operator_notes,omitempty"`
	IsFalsePositive  bool    `gorm:"not null;default:false" json:"is_false_positive"`
	ReworkJobID      *uint   `gorm:"index" json:"rework_job_id,omitempty"`

	// capture metadata extracted from the uploaded photo
	CaptureWidth  *int    `gorm:"" json:"capture_width,omitempty"`
	CaptureHeight *int    `gorm:"" json:"capture_height,omitempty"`
	CameraMake    *string `gorm:"" json:"camera_make,omitempty"`
	CameraModel   *string `gorm:"" json:"camera_model,omitempty"`
	TakenAt       *int64  `gorm:"" json:"taken_at,omitempty"` // Unix timestamp

	// background media task tracking
	ThumbnailStatus      string  `gorm:"not null;default:pending" json:"thumbnail_status"`
	MetadataStatus       string  `gorm:"not null;default:pending" json:"metadata_status"`
	ThumbnailProcessedAt *int64  `gorm:"" json:"thumbnail_processed_at,omitempty"`
	MetadataProcessedAt  *int64  `gorm:"" json:"metadata_processed_at,omitempty"`
	ThumbnailError       *string `gorm:"" json:"thumbnail_error,omitempty"`
	MetadataError        *string `gorm:"" json:"metadata_error,omitempty"`

	InspectedAt int64          `gorm:"not null" json:"inspected_at"` // Unix timestamp
	CreatedAt   int64          `gorm:"not null" json:"created_at"`
	UpdatedAt   int64          `gorm:"not null" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// TableName explicitly sets the table name for GORM.
func (Inspection) TableName() string {
	return "qc_inspections"
}
