package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/atelierworks/jewelqc-backend/models"
	"github.com/atelierworks/jewelqc-backend/repository"
	"github.com/atelierworks/jewelqc-backend/services"
)

type ReworkHandler struct {
	Service *services.QCService
}

// Create handles POST /api/qc/rework: a rework job from selected defects of
// an existing inspection.
func (rh *ReworkHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		InspectionID string   `json:"inspection_id"`
		DefectIDs    []string `json:"defect_ids"`
		Notes        *string  `json:"notes"`
		Priority     string   `json:"priority"`
		Station      string   `json:"station"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_body", "Invalid request body: "+err.Error())
		return
	}
	if req.InspectionID == "" {
		WriteAPIError(w, http.StatusBadRequest, "missing_inspection_id", "inspection_id is required")
		return
	}

	job, err := rh.Service.CreateRework(req.InspectionID, req.DefectIDs, req.Notes, req.Priority, req.Station)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, job)
}

// Get handles GET /api/qc/rework/{jobID}.
func (rh *ReworkHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "jobID")

	job, err := rh.Service.GetRework(uid)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, job)
}

// List handles GET /api/qc/rework with optional status, priority, limit, and
// offset query parameters.
func (rh *ReworkHandler) List(w http.ResponseWriter, r *http.Request) {
	opts := repository.ReworkListOptions{
		Status:   r.URL.Query().Get("status"),
		Priority: r.URL.Query().Get("priority"),
	}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		if v, err := strconv.Atoi(limit); err == nil {
			opts.Limit = v
		}
	}
	if offset := r.URL.Query().Get("offset"); offset != "" {
		if v, err := strconv.Atoi(offset); err == nil {
			opts.Offset = v
		}
	}

	jobs, err := rh.Service.ListRework(opts)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	if jobs == nil {
		jobs = []models.ReworkJob{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"rework_jobs": jobs})
}

// Advance handles PATCH /api/qc/rework/{jobID}: moving a job through its
// lifecycle and appending the audit event.
func (rh *ReworkHandler) Advance(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "jobID")

	var req struct {
		Status   string `json:"status"`
		Operator string `json:"operator"`
		Notes    string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_body", "Invalid request body: "+err.Error())
		return
	}
	if req.Status == "" {
		WriteAPIError(w, http.StatusBadRequest, "missing_status", "status is required")
		return
	}

	job, err := rh.Service.AdvanceRework(uid, req.Status, req.Operator, req.Notes)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, job)
}
