package models

import "gorm.io/gorm"

// ReworkJob is a persisted remediation task created from a subset of an
// inspection's defects, with its own lifecycle and audit trail.
// It corresponds to the 'rework_jobs' table.
type ReworkJob struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	JobUID       string `gorm:"not null;uniqueIndex" json:"job_uid"` // rework_<hex>, generated by the core
	InspectionID *uint  `gorm:"index" json:"inspection_id,omitempty"`

	// aggregated defect details
	DefectType        string     `gorm:"not null" json:"defect_type"`     // comma-joined distinct types
	DefectSeverity    string     `gorm:"not null" json:"defect_severity"` // max severity among selected defects
	DefectDescription *string    `gorm:"" json:"defect_description,omitempty"`
	Defects           DefectList `gorm:"type:text" json:"defects"`
	EvidenceImages    StringList `gorm:"type:text" json:"evidence_images"`

	// assignment
	AssignedStation  *string `gorm:"" json:"assigned_station,omitempty"`
	AssignedOperator *string `gorm:"" json:"assigned_operator,omitempty"`
	VerifiedBy       *string `gorm:"" json:"verified_by,omitempty"`
	Priority         string  `gorm:"not null;default:'medium';index" json:"priority"`

	// lifecycle
	Status          string             `gorm:"not null;default:'pending';index" json:"status"`
	AssignedAt      *int64             `gorm:"" json:"assigned_at,omitempty"`  // Unix timestamp
	CompletedAt     *int64             `gorm:"" json:"completed_at,omitempty"` // Unix timestamp
	VerifiedAt      *int64             `gorm:"" json:"verified_at,omitempty"`  // Unix timestamp
	LifecycleEvents LifecycleEventList `gorm:"type:text" json:"lifecycle_events"`

	CreatedAt int64          `gorm:"not null" json:"created_at"`
	UpdatedAt int64          `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// TableName explicitly sets the table name for GORM.
func (ReworkJob) TableName() string {
	return "rework_jobs"
}
