package repository

import (
	"github.com/atelierworks/jewelqc-backend/media"
	"github.com/atelierworks/jewelqc-backend/models"
)

// InspectionRepositoryInterface defines the methods for inspection data operations
type InspectionRepositoryInterface interface {
	Create(inspection *models.Inspection) error
	GetByUID(uid string) (*models.Inspection, error)
	List(opts InspectionListOptions) ([]models.Inspection, error)
	UpdateTriage(uid string, decision string, notes *string, isFalsePositive bool, reworkJobID *uint) error
	LinkReworkJob(uid string, reworkJobID uint) error
	MarkTaskProcessing(id uint, taskStatusColumn string) error
	UpdateThumbnailResult(id uint, thumbPath *string, taskErr error) error
	UpdateMetadataResult(id uint, meta *media.CaptureMetadata, taskErr error) error
	GetInspectionsRequiringProcessing() ([]models.Inspection, error)
}

// InspectionListOptions narrows and pages inspection listings. Zero values
// mean no filter; Limit of 0 falls back to the repository default.
type InspectionListOptions struct {
	UserID   string
	Decision string
	Status   string
	Limit    int
	Offset   int
}

// ReworkRepositoryInterface defines the methods for rework job data operations
type ReworkRepositoryInterface interface {
	Create(job *models.ReworkJob) error
	GetByUID(uid string) (*models.ReworkJob, error)
	List(opts ReworkListOptions) ([]models.ReworkJob, error)
	Update(job *models.ReworkJob) error
}

// ReworkListOptions narrows and pages rework job listings.
type ReworkListOptions struct {
	Status   string
	Priority string
	Limit    int
	Offset   int
}

// TrialUsageRepositoryInterface defines the methods for trial gating operations
type TrialUsageRepositoryInterface interface {
	CountForFeature(userID, feature string) (int64, error)
	Record(usage *models.TrialUsage) error
}

// WaitlistRepositoryInterface defines the methods for waitlist data operations
type WaitlistRepositoryInterface interface {
	Create(entry *models.WaitlistEntry) error
	GetByEmail(email string) (*models.WaitlistEntry, error)
	List(limit, offset int) ([]models.WaitlistEntry, error)
	Count() (int64, error)
}

// AnalyticsRepositoryInterface defines the methods for usage event logging
type AnalyticsRepositoryInterface interface {
	Record(event *models.AnalyticsEvent) error
}
