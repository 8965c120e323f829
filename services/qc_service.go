package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/atelierworks/jewelqc-backend/database"
	"github.com/atelierworks/jewelqc-backend/media"
	"github.com/atelierworks/jewelqc-backend/models"
	"github.com/atelierworks/jewelqc-backend/qc"
	"github.com/atelierworks/jewelqc-backend/repository"
	"github.com/atelierworks/jewelqc-backend/utils"
	"github.com/atelierworks/jewelqc-backend/workers"
)

// FeatureQCInspection is the trial-gated feature key for inspections.
const FeatureQCInspection = "qc_inspection"

// ErrTrialLimitReached indicates the user has exhausted their free
// inspections for a gated feature.
var ErrTrialLimitReached = errors.New("trial limit reached")

// TrialStatus summarizes a user's remaining free uses of a feature.
type TrialStatus struct {
	Feature      string `json:"feature"`
	Used         int64  `json:"used"`
	Limit        int    `json:"limit"`
	Remaining    int64  `json:"remaining"`
	LimitReached bool   `json:"limit_reached"`
}

// QCService orchestrates inspections end to end: trial gating, defect
// detection, asset storage, persistence, and background media tasks.
type QCService struct {
	Inspections repository.InspectionRepositoryInterface
	Rework      repository.ReworkRepositoryInterface
	Trials      repository.TrialUsageRepositoryInterface
	Waitlist    repository.WaitlistRepositoryInterface
	Analytics   repository.AnalyticsRepositoryInterface

	Store     media.Store
	Media     *workers.MediaProcessor
	Inspector *qc.Inspector

	TrialLimit int
}

func NewQCService(
	inspections repository.InspectionRepositoryInterface,
	rework repository.ReworkRepositoryInterface,
	trials repository.TrialUsageRepositoryInterface,
	waitlist repository.WaitlistRepositoryInterface,
	analytics repository.AnalyticsRepositoryInterface,
	store media.Store,
	mediaProc *workers.MediaProcessor,
	inspector *qc.Inspector,
	trialLimit int,
) *QCService {
	return &QCService{
		Inspections: inspections,
		Rework:      rework,
		Trials:      trials,
		Waitlist:    waitlist,
		Analytics:   analytics,
		Store:       store,
		Media:       mediaProc,
		Inspector:   inspector,
		TrialLimit:  trialLimit,
	}
}

// InspectUploadParams carries one inspection request.
type InspectUploadParams struct {
	UserID         string
	Filename       string
	ContentType    string
	Data           []byte
	ItemReference  *string
	HasCADFile     bool
	ForceSimulated bool
}

// InspectUpload runs the full inspection flow for an uploaded item file.
// The trial counter is checked before any work and recorded only after the
// inspection succeeds.
func (s *QCService) InspectUpload(params InspectUploadParams) (*models.Inspection, *qc.Report, error) {
	if params.UserID == "" {
		return nil, nil, fmt.Errorf("%w: user id is required", qc.ErrValidation)
	}
	if len(params.Data) == 0 {
		return nil, nil, fmt.Errorf("%w: uploaded file is empty", qc.ErrValidation)
	}

	status, err := s.GetTrialStatus(params.UserID, FeatureQCInspection)
	if err != nil {
		return nil, nil, err
	}
	if status.LimitReached {
		return nil, nil, fmt.Errorf("%w: %d of %d free inspections used", ErrTrialLimitReached, status.Used, status.Limit)
	}

	fileType, err := utils.ClassifyUpload(params.Filename, params.ContentType, params.Data)
	if err != nil {
		return nil, nil, err
	}

	report, err := s.Inspector.Inspect(params.Data, fileType, params.HasCADFile, params.ForceSimulated)
	if err != nil {
		return nil, nil, err
	}

	ext := strings.ToLower(filepath.Ext(params.Filename))
	if ext == "" {
		ext = ".bin"
	}
	savedPath, err := s.Store.Save(media.AssetTypeItem, report.InspectionID+ext, bytes.NewReader(params.Data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to store uploaded item: %w", err)
	}

	taskStatus := database.StatusNotRequired
	if fileType == qc.FileTypeImage {
		taskStatus = database.StatusPending
	}

	var lightingWarning *string
	if report.LightingWarning != "" {
		lw := report.LightingWarning
		lightingWarning = &lw
	}

	inspection := &models.Inspection{
		InspectionUID:       report.InspectionID,
		UserID:              params.UserID,
		ItemReference:       params.ItemReference,
		ItemImagePath:       &savedPath,
		FileType:            string(report.FileType),
		HasCADFile:          report.HasCADFile,
		Defects:             models.DefectList(report.Defects),
		DetectionMode:       string(report.DetectionMode),
		ModelVersion:        report.ModelVersion,
		ConfidenceThreshold: report.ConfidenceThreshold,
		Status:              string(report.Status),
		Recommendation:      report.Recommendation,
		ConfidenceNote:      report.ConfidenceNote,
		RequiresReshoot:     report.RequiresReshoot,
		LightingWarning:     lightingWarning,
		ThumbnailStatus:     taskStatus,
		MetadataStatus:      taskStatus,
		InspectedAt:         time.Now().Unix(),
	}

	if err := s.Inspections.Create(inspection); err != nil {
		return nil, nil, err
	}

	if err := s.Trials.Record(&models.TrialUsage{UserID: params.UserID, Feature: FeatureQCInspection}); err != nil {
		log.Printf("qc_service: ERROR recording trial usage for %s: %v", params.UserID, err)
	}
	s.recordEvent(&params.UserID, "inspection", "created", map[string]interface{}{
		"inspection_id": report.InspectionID,
		"status":        report.Status,
		"defect_count":  report.DefectCount,
		"file_type":     report.FileType,
	})

	if fileType == qc.FileTypeImage && s.Media != nil {
		s.Media.QueueJob(workers.MediaJob{InspectionID: inspection.ID, StoredPath: savedPath, TaskType: workers.TaskThumbnail})
		s.Media.QueueJob(workers.MediaJob{InspectionID: inspection.ID, StoredPath: savedPath, TaskType: workers.TaskMetadata})
	}

	return inspection, report, nil
}

// GetInspection loads a persisted inspection and derives its defect heatmap.
func (s *QCService) GetInspection(uid string) (*models.Inspection, *qc.Heatmap, error) {
	inspection, err := s.Inspections.GetByUID(uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: inspection %s", qc.ErrNotFound, uid)
		}
		return nil, nil, err
	}

	width, height := heatmapCanvas(inspection)
	heatmap := qc.BuildHeatmap(inspection.Defects, width, height)
	return inspection, &heatmap, nil
}

// ListInspections pages persisted inspections.
func (s *QCService) ListInspections(opts repository.InspectionListOptions) ([]models.Inspection, error) {
	return s.Inspections.List(opts)
}

// TriageParams carries an operator's decision on an inspection.
type TriageParams struct {
	InspectionUID   string
	Decision        string
	Notes           *string
	IsFalsePositive bool

	// rework details, used when Decision is "rework"
	DefectIDs []string
	Priority  string
	Station   string
}

// Triage records the operator decision. A "rework" decision also creates a
// rework job from the selected defects (all defects when none are selected)
// and links it back to the inspection.
func (s *QCService) Triage(params TriageParams) (*models.Inspection, *models.ReworkJob, error) {
	decision, err := qc.ParseTriageDecision(params.Decision)
	if err != nil {
		return nil, nil, err
	}

	inspection, err := s.Inspections.GetByUID(params.InspectionUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: inspection %s", qc.ErrNotFound, params.InspectionUID)
		}
		return nil, nil, err
	}

	var jobModel *models.ReworkJob
	var reworkRowID *uint
	if decision == qc.DecisionRework {
		jobModel, err = s.createReworkFromInspection(inspection, params.DefectIDs, params.Notes, params.Priority, params.Station)
		if err != nil {
			return nil, nil, err
		}
		reworkRowID = &jobModel.ID
	}

	if err := s.Inspections.UpdateTriage(params.InspectionUID, string(decision), params.Notes, params.IsFalsePositive, reworkRowID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: inspection %s", qc.ErrNotFound, params.InspectionUID)
		}
		return nil, nil, err
	}

	s.recordEvent(&inspection.UserID, "triage", "decided", map[string]interface{}{
		"inspection_id":     params.InspectionUID,
		"decision":          decision,
		"is_false_positive": params.IsFalsePositive,
	})

	updated, err := s.Inspections.GetByUID(params.InspectionUID)
	if err != nil {
		return nil, nil, err
	}
	return updated, jobModel, nil
}

// CreateRework builds a rework job directly, outside the triage flow.
func (s *QCService) CreateRework(inspectionUID string, defectIDs []string, notes *string, priority, station string) (*models.ReworkJob, error) {
	inspection, err := s.Inspections.GetByUID(inspectionUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: inspection %s", qc.ErrNotFound, inspectionUID)
		}
		return nil, err
	}

	jobModel, err := s.createReworkFromInspection(inspection, defectIDs, notes, priority, station)
	if err != nil {
		return nil, err
	}

	if err := s.Inspections.LinkReworkJob(inspectionUID, jobModel.ID); err != nil {
		log.Printf("qc_service: ERROR linking rework job %s to inspection %s: %v", jobModel.JobUID, inspectionUID, err)
	}
	return jobModel, nil
}

func (s *QCService) createReworkFromInspection(inspection *models.Inspection, defectIDs []string, notes *string, priority, station string) (*models.ReworkJob, error) {
	parsedPriority, err := qc.ParsePriority(priority)
	if err != nil {
		return nil, err
	}

	if len(defectIDs) == 0 {
		for _, d := range inspection.Defects {
			defectIDs = append(defectIDs, d.ID)
		}
	}

	noteText := ""
	if notes != nil {
		noteText = *notes
	}

	job, err := qc.NewReworkJob(inspection.InspectionUID, inspection.Defects, defectIDs, noteText, parsedPriority, station, time.Now())
	if err != nil {
		return nil, err
	}

	jobModel := reworkModelFromJob(job, &inspection.ID)
	if inspection.ItemImagePath != nil {
		jobModel.EvidenceImages = models.StringList{*inspection.ItemImagePath}
	}
	if err := s.Rework.Create(jobModel); err != nil {
		return nil, err
	}

	s.recordEvent(&inspection.UserID, "rework", "created", map[string]interface{}{
		"rework_id":     job.ID,
		"inspection_id": inspection.InspectionUID,
		"priority":      job.Priority,
		"defect_type":   job.DefectType,
	})
	return jobModel, nil
}

// GetRework loads one rework job.
func (s *QCService) GetRework(uid string) (*models.ReworkJob, error) {
	job, err := s.Rework.GetByUID(uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: rework job %s", qc.ErrNotFound, uid)
		}
		return nil, err
	}
	return job, nil
}

// ListRework pages rework jobs.
func (s *QCService) ListRework(opts repository.ReworkListOptions) ([]models.ReworkJob, error) {
	return s.Rework.List(opts)
}

// AdvanceRework moves a rework job to a new lifecycle status and persists the
// appended audit event.
func (s *QCService) AdvanceRework(uid, newStatus, operator, notes string) (*models.ReworkJob, error) {
	jobModel, err := s.GetRework(uid)
	if err != nil {
		return nil, err
	}

	job := reworkJobFromModel(jobModel)
	if err := job.Advance(newStatus, operator, notes, time.Now()); err != nil {
		return nil, err
	}
	applyJobToModel(job, jobModel)

	if err := s.Rework.Update(jobModel); err != nil {
		return nil, err
	}

	s.recordEvent(nil, "rework", "advanced", map[string]interface{}{
		"rework_id": uid,
		"status":    job.Status,
		"operator":  operator,
	})
	return jobModel, nil
}

// GetTrialStatus reports a user's remaining free uses of a gated feature.
func (s *QCService) GetTrialStatus(userID, feature string) (*TrialStatus, error) {
	used, err := s.Trials.CountForFeature(userID, feature)
	if err != nil {
		return nil, err
	}
	remaining := int64(s.TrialLimit) - used
	if remaining < 0 {
		remaining = 0
	}
	return &TrialStatus{
		Feature:      feature,
		Used:         used,
		Limit:        s.TrialLimit,
		Remaining:    remaining,
		LimitReached: used >= int64(s.TrialLimit),
	}, nil
}

// JoinWaitlist registers an email for unlimited access. Re-registering an
// existing email returns the existing entry with created=false.
func (s *QCService) JoinWaitlist(email string, name, userID, source *string) (*models.WaitlistEntry, bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, false, fmt.Errorf("%w: a valid email is required", qc.ErrValidation)
	}

	existing, err := s.Waitlist.GetByEmail(email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	entry := &models.WaitlistEntry{
		Email:  email,
		Name:   name,
		UserID: userID,
		Source: source,
		Status: "pending",
	}
	if err := s.Waitlist.Create(entry); err != nil {
		return nil, false, err
	}

	s.recordEvent(userID, "waitlist", "joined", map[string]interface{}{"email": email})
	return entry, true, nil
}

// recordEvent logs a usage event; failures are logged and swallowed since
// analytics must never break the request path.
func (s *QCService) recordEvent(userID *string, eventType, action string, data map[string]interface{}) {
	var payload *string
	if data != nil {
		if b, err := json.Marshal(data); err == nil {
			p := string(b)
			payload = &p
		}
	}
	event := &models.AnalyticsEvent{
		UserID:      userID,
		EventType:   eventType,
		EventAction: action,
		EventData:   payload,
	}
	if err := s.Analytics.Record(event); err != nil {
		log.Printf("qc_service: ERROR recording analytics event %s/%s: %v", eventType, action, err)
	}
}

// heatmapCanvas picks the coordinate space for an inspection's heatmap:
// the captured dimensions when metadata extraction has run, otherwise the
// nominal canvas.
func heatmapCanvas(inspection *models.Inspection) (int, int) {
	if inspection.CaptureWidth != nil && inspection.CaptureHeight != nil &&
		*inspection.CaptureWidth > 0 && *inspection.CaptureHeight > 0 {
		return *inspection.CaptureWidth, *inspection.CaptureHeight
	}
	return 1024, 1024
}

// reworkModelFromJob maps the in-memory rework job onto its persisted form.
func reworkModelFromJob(job *qc.ReworkJob, inspectionRowID *uint) *models.ReworkJob {
	m := &models.ReworkJob{
		JobUID:          job.ID,
		InspectionID:    inspectionRowID,
		DefectType:      job.DefectType,
		DefectSeverity:  string(job.DefectSeverity),
		Defects:         models.DefectList(job.Defects),
		Priority:        string(job.Priority),
		Status:          string(job.Status),
		LifecycleEvents: models.LifecycleEventList(job.Lifecycle),
	}
	if job.OperatorNotes != "" {
		m.DefectDescription = &job.OperatorNotes
	}
	if job.AssignedStation != "" {
		m.AssignedStation = &job.AssignedStation
	}
	if job.AssignedOperator != "" {
		m.AssignedOperator = &job.AssignedOperator
	}
	if job.VerifiedBy != "" {
		m.VerifiedBy = &job.VerifiedBy
	}
	m.AssignedAt = unixPtr(job.AssignedAt)
	m.CompletedAt = unixPtr(job.CompletedAt)
	m.VerifiedAt = unixPtr(job.VerifiedAt)
	return m
}

// applyJobToModel copies mutable lifecycle state back onto the persisted row.
func applyJobToModel(job *qc.ReworkJob, m *models.ReworkJob) {
	m.Status = string(job.Status)
	m.LifecycleEvents = models.LifecycleEventList(job.Lifecycle)
	m.AssignedAt = unixPtr(job.AssignedAt)
	m.CompletedAt = unixPtr(job.CompletedAt)
	m.VerifiedAt = unixPtr(job.VerifiedAt)
	if job.AssignedOperator != "" {
		m.AssignedOperator = &job.AssignedOperator
	}
	if job.VerifiedBy != "" {
		m.VerifiedBy = &job.VerifiedBy
	}
}

// reworkJobFromModel rebuilds the in-memory job from its persisted row.
func reworkJobFromModel(m *models.ReworkJob) *qc.ReworkJob {
	job := &qc.ReworkJob{
		ID:             m.JobUID,
		Defects:        m.Defects,
		DefectType:     m.DefectType,
		DefectSeverity: qc.Severity(m.DefectSeverity),
		Priority:       qc.Priority(m.Priority),
		Status:         qc.ReworkStatus(m.Status),
		CreatedAt:      time.Unix(m.CreatedAt, 0),
		Lifecycle:      m.LifecycleEvents,
	}
	if m.DefectDescription != nil {
		job.OperatorNotes = *m.DefectDescription
	}
	if m.AssignedStation != nil {
		job.AssignedStation = *m.AssignedStation
	}
	if m.AssignedOperator != nil {
		job.AssignedOperator = *m.AssignedOperator
	}
	if m.VerifiedBy != nil {
		job.VerifiedBy = *m.VerifiedBy
	}
	job.AssignedAt = timePtr(m.AssignedAt)
	job.CompletedAt = timePtr(m.CompletedAt)
	job.VerifiedAt = timePtr(m.VerifiedAt)
	return job
}

func unixPtr(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	u := t.Unix()
	return &u
}

func timePtr(u *int64) *time.Time {
	if u == nil {
		return nil
	}
	t := time.Unix(*u, 0)
	return &t
}
