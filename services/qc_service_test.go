package services

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math/rand"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/atelierworks/jewelqc-backend/media"
	"github.com/atelierworks/jewelqc-backend/models"
	"github.com/atelierworks/jewelqc-backend/qc"
	"github.com/atelierworks/jewelqc-backend/repository"
)

// --- in-memory fakes ---

type fakeInspectionRepo struct {
	rows   map[string]*models.Inspection
	nextID uint
}

func newFakeInspectionRepo() *fakeInspectionRepo {
	return &fakeInspectionRepo{rows: make(map[string]*models.Inspection)}
}

func (r *fakeInspectionRepo) Create(inspection *models.Inspection) error {
	r.nextID++
	inspection.ID = r.nextID
	copied := *inspection
	r.rows[inspection.InspectionUID] = &copied
	return nil
}

func (r *fakeInspectionRepo) GetByUID(uid string) (*models.Inspection, error) {
	row, ok := r.rows[uid]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *row
	return &copied, nil
}

func (r *fakeInspectionRepo) List(opts repository.InspectionListOptions) ([]models.Inspection, error) {
	var out []models.Inspection
	for _, row := range r.rows {
		if opts.UserID != "" && row.UserID != opts.UserID {
			continue
		}
		out = append(out, *row)
	}
	return out, nil
}

func (r *fakeInspectionRepo) UpdateTriage(uid string, decision string, notes *string, isFalsePositive bool, reworkJobID *uint) error {
	row, ok := r.rows[uid]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	row.OperatorDecision = &decision
	row.OperatorNotes = notes
	row.IsFalsePositive = isFalsePositive
	if reworkJobID != nil {
		row.ReworkJobID = reworkJobID
	}
	return nil
}

func (r *fakeInspectionRepo) LinkReworkJob(uid string, reworkJobID uint) error {
	row, ok := r.rows[uid]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	row.ReworkJobID = &reworkJobID
	return nil
}

func (r *fakeInspectionRepo) MarkTaskProcessing(id uint, taskStatusColumn string) error { return nil }
func (r *fakeInspectionRepo) UpdateThumbnailResult(id uint, thumbPath *string, taskErr error) error {
	return nil
}
func (r *fakeInspectionRepo) UpdateMetadataResult(id uint, meta *media.CaptureMetadata, taskErr error) error {
	return nil
}
func (r *fakeInspectionRepo) GetInspectionsRequiringProcessing() ([]models.Inspection, error) {
	return nil, nil
}

type fakeReworkRepo struct {
	rows   map[string]*models.ReworkJob
	nextID uint
}

func newFakeReworkRepo() *fakeReworkRepo {
	return &fakeReworkRepo{rows: make(map[string]*models.ReworkJob)}
}

func (r *fakeReworkRepo) Create(job *models.ReworkJob) error {
	r.nextID++
	job.ID = r.nextID
	copied := *job
	r.rows[job.JobUID] = &copied
	return nil
}

func (r *fakeReworkRepo) GetByUID(uid string) (*models.ReworkJob, error) {
	row, ok := r.rows[uid]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *row
	return &copied, nil
}

func (r *fakeReworkRepo) List(opts repository.ReworkListOptions) ([]models.ReworkJob, error) {
	var out []models.ReworkJob
	for _, row := range r.rows {
		out = append(out, *row)
	}
	return out, nil
}

func (r *fakeReworkRepo) Update(job *models.ReworkJob) error {
	if _, ok := r.rows[job.JobUID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *job
	r.rows[job.JobUID] = &copied
	return nil
}

type fakeTrialRepo struct {
	counts map[string]int64
}

func newFakeTrialRepo() *fakeTrialRepo {
	return &fakeTrialRepo{counts: make(map[string]int64)}
}

func (r *fakeTrialRepo) CountForFeature(userID, feature string) (int64, error) {
	return r.counts[userID+":"+feature], nil
}

func (r *fakeTrialRepo) Record(usage *models.TrialUsage) error {
	r.counts[usage.UserID+":"+usage.Feature]++
	return nil
}

type fakeWaitlistRepo struct {
	rows map[string]*models.WaitlistEntry
}

func newFakeWaitlistRepo() *fakeWaitlistRepo {
	return &fakeWaitlistRepo{rows: make(map[string]*models.WaitlistEntry)}
}

func (r *fakeWaitlistRepo) Create(entry *models.WaitlistEntry) error {
	entry.ID = uint(len(r.rows) + 1)
	copied := *entry
	r.rows[entry.Email] = &copied
	return nil
}

func (r *fakeWaitlistRepo) GetByEmail(email string) (*models.WaitlistEntry, error) {
	row, ok := r.rows[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *row
	return &copied, nil
}

func (r *fakeWaitlistRepo) List(limit, offset int) ([]models.WaitlistEntry, error) {
	var out []models.WaitlistEntry
	for _, row := range r.rows {
		out = append(out, *row)
	}
	return out, nil
}

func (r *fakeWaitlistRepo) Count() (int64, error) {
	return int64(len(r.rows)), nil
}

type fakeAnalyticsRepo struct {
	events []models.AnalyticsEvent
}

func (r *fakeAnalyticsRepo) Record(event *models.AnalyticsEvent) error {
	r.events = append(r.events, *event)
	return nil
}

type fakeStore struct {
	saved map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{saved: make(map[string][]byte)}
}

func (s *fakeStore) Save(assetType media.AssetType, filename string, data io.Reader) (string, error) {
	b, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	rel := string(assetType) + "/" + filename
	s.saved[rel] = b
	return rel, nil
}

func (s *fakeStore) Get(relativePath string) (io.ReadCloser, os.FileInfo, error) {
	b, ok := s.saved[relativePath]
	if !ok {
		return nil, nil, fmt.Errorf("asset not found at '%s'", relativePath)
	}
	return io.NopCloser(bytes.NewReader(b)), nil, nil
}

func (s *fakeStore) Delete(relativePath string) error {
	delete(s.saved, relativePath)
	return nil
}

func (s *fakeStore) GetFullPath(relativePath string) (string, error) {
	return "/fake/" + relativePath, nil
}

func (s *fakeStore) EnsureDir(assetType media.AssetType) (string, error) {
	return "/fake/" + string(assetType), nil
}

// --- fixtures ---

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 120, 120))
	for y := 0; y < 120; y++ {
		for x := 0; x < 120; x++ {
			v := uint8(60)
			if x >= 60 {
				v = 180
			}
			img.Set(x, y, color.RGBA{v, v, v, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type serviceFixture struct {
	svc      *QCService
	insp     *fakeInspectionRepo
	rework   *fakeReworkRepo
	trials   *fakeTrialRepo
	waitlist *fakeWaitlistRepo
	events   *fakeAnalyticsRepo
	store    *fakeStore
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	f := &serviceFixture{
		insp:     newFakeInspectionRepo(),
		rework:   newFakeReworkRepo(),
		trials:   newFakeTrialRepo(),
		waitlist: newFakeWaitlistRepo(),
		events:   &fakeAnalyticsRepo{},
		store:    newFakeStore(),
	}
	inspector := qc.NewInspector(qc.Config{Mode: qc.ModeSimulated}, qc.NewCannyContourFinder(), rand.New(rand.NewSource(1)))
	f.svc = NewQCService(f.insp, f.rework, f.trials, f.waitlist, f.events, f.store, nil, inspector, 3)
	return f
}

// --- tests ---

func TestInspectUploadPersistsAndRecordsTrial(t *testing.T) {
	f := newServiceFixture(t)

	inspection, report, err := f.svc.InspectUpload(InspectUploadParams{
		UserID:      "user-1",
		Filename:    "ring.png",
		ContentType: "image/png",
		Data:        testPNG(t),
		HasCADFile:  true,
	})
	require.NoError(t, err)

	assert.Equal(t, report.InspectionID, inspection.InspectionUID)
	assert.Equal(t, "user-1", inspection.UserID)
	assert.Equal(t, "image", inspection.FileType)
	assert.Equal(t, string(report.Status), inspection.Status)
	assert.Equal(t, "pending", inspection.ThumbnailStatus)
	assert.Equal(t, "pending", inspection.MetadataStatus)
	require.NotNil(t, inspection.ItemImagePath)
	assert.Contains(t, f.store.saved, *inspection.ItemImagePath)

	used, _ := f.trials.CountForFeature("user-1", FeatureQCInspection)
	assert.Equal(t, int64(1), used)

	require.NotEmpty(t, f.events.events)
	assert.Equal(t, "inspection", f.events.events[0].EventType)
}

func TestInspectUploadCADSkipsMediaTasks(t *testing.T) {
	f := newServiceFixture(t)

	inspection, _, err := f.svc.InspectUpload(InspectUploadParams{
		UserID:     "user-1",
		Filename:   "design.stl",
		Data:       []byte("solid mesh"),
		HasCADFile: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "cad", inspection.FileType)
	assert.Equal(t, "not_required", inspection.ThumbnailStatus)
	assert.Equal(t, "not_required", inspection.MetadataStatus)
}

func TestInspectUploadEnforcesTrialLimit(t *testing.T) {
	f := newServiceFixture(t)
	f.trials.counts["user-1:"+FeatureQCInspection] = 3

	_, _, err := f.svc.InspectUpload(InspectUploadParams{
		UserID:   "user-1",
		Filename: "ring.png",
		Data:     testPNG(t),
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTrialLimitReached)
}

func TestInspectUploadValidation(t *testing.T) {
	f := newServiceFixture(t)

	_, _, err := f.svc.InspectUpload(InspectUploadParams{Filename: "ring.png", Data: testPNG(t)})
	assert.ErrorIs(t, err, qc.ErrValidation)

	_, _, err = f.svc.InspectUpload(InspectUploadParams{UserID: "u", Filename: "ring.png"})
	assert.ErrorIs(t, err, qc.ErrValidation)
}

func TestGetInspectionNotFound(t *testing.T) {
	f := newServiceFixture(t)

	_, _, err := f.svc.GetInspection("qc_missing")

	assert.ErrorIs(t, err, qc.ErrNotFound)
}

func TestTriageAccept(t *testing.T) {
	f := newServiceFixture(t)
	inspection := seedInspection(t, f)

	updated, job, err := f.svc.Triage(TriageParams{
		InspectionUID: inspection.InspectionUID,
		Decision:      "accept",
	})
	require.NoError(t, err)

	assert.Nil(t, job)
	require.NotNil(t, updated.OperatorDecision)
	assert.Equal(t, "accept", *updated.OperatorDecision)
	assert.Nil(t, updated.ReworkJobID)
}

func TestTriageReworkCreatesLinkedJob(t *testing.T) {
	f := newServiceFixture(t)
	inspection := seedInspection(t, f)

	updated, job, err := f.svc.Triage(TriageParams{
		InspectionUID: inspection.InspectionUID,
		Decision:      "rework",
		Priority:      "high",
		Station:       "bench-1",
	})
	require.NoError(t, err)

	require.NotNil(t, job)
	assert.Contains(t, job.JobUID, "rework_")
	assert.Equal(t, "high", job.Priority)
	assert.Equal(t, "pending", job.Status)
	assert.Len(t, job.LifecycleEvents, 1)
	require.NotNil(t, updated.ReworkJobID)
	assert.Equal(t, job.ID, *updated.ReworkJobID)
}

func TestTriageRejectsUnknownDecision(t *testing.T) {
	f := newServiceFixture(t)
	inspection := seedInspection(t, f)

	_, _, err := f.svc.Triage(TriageParams{
		InspectionUID: inspection.InspectionUID,
		Decision:      "discard",
	})

	assert.ErrorIs(t, err, qc.ErrValidation)
}

func TestAdvanceReworkPersistsLifecycle(t *testing.T) {
	f := newServiceFixture(t)
	inspection := seedInspection(t, f)

	job, err := f.svc.CreateRework(inspection.InspectionUID, nil, nil, "medium", "")
	require.NoError(t, err)

	advanced, err := f.svc.AdvanceRework(job.JobUID, "in_progress", "op-7", "starting")
	require.NoError(t, err)

	assert.Equal(t, "in_progress", advanced.Status)
	assert.NotNil(t, advanced.AssignedAt)
	require.NotNil(t, advanced.AssignedOperator)
	assert.Equal(t, "op-7", *advanced.AssignedOperator)
	assert.Len(t, advanced.LifecycleEvents, 2)

	// re-read from the repository: the appended event must be persisted
	stored, err := f.svc.GetRework(job.JobUID)
	require.NoError(t, err)
	assert.Len(t, stored.LifecycleEvents, 2)
}

func TestAdvanceReworkUnknownJob(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.AdvanceRework("rework_missing", "in_progress", "op", "")

	assert.ErrorIs(t, err, qc.ErrNotFound)
}

func TestGetTrialStatus(t *testing.T) {
	f := newServiceFixture(t)
	f.trials.counts["user-1:"+FeatureQCInspection] = 2

	status, err := f.svc.GetTrialStatus("user-1", FeatureQCInspection)
	require.NoError(t, err)

	assert.Equal(t, int64(2), status.Used)
	assert.Equal(t, 3, status.Limit)
	assert.Equal(t, int64(1), status.Remaining)
	assert.False(t, status.LimitReached)
}

func TestJoinWaitlist(t *testing.T) {
	f := newServiceFixture(t)

	entry, created, err := f.svc.JoinWaitlist("Maker@Example.com", nil, nil, nil)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "maker@example.com", entry.Email)

	// duplicate signup returns the existing entry without error
	again, created, err := f.svc.JoinWaitlist("maker@example.com", nil, nil, nil)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, entry.ID, again.ID)

	_, _, err = f.svc.JoinWaitlist("not-an-email", nil, nil, nil)
	assert.ErrorIs(t, err, qc.ErrValidation)
}

func seedInspection(t *testing.T, f *serviceFixture) *models.Inspection {
	t.Helper()
	inspection, _, err := f.svc.InspectUpload(InspectUploadParams{
		UserID:      "user-1",
		Filename:    "ring.png",
		ContentType: "image/png",
		Data:        testPNG(t),
		HasCADFile:  true,
	})
	require.NoError(t, err)
	return inspection
}
