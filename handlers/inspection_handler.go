package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/atelierworks/jewelqc-backend/models"
	"github.com/atelierworks/jewelqc-backend/qc"
	"github.com/atelierworks/jewelqc-backend/repository"
	"github.com/atelierworks/jewelqc-backend/services"
)

// MaxUploadBytes caps inspection uploads at 50MB.
const MaxUploadBytes = 50 << 20

type InspectionHandler struct {
	Service *services.QCService
}

// inspectionResponse wraps the persisted record with derived, non-persisted
// views like the heatmap.
type inspectionResponse struct {
	Inspection *models.Inspection `json:"inspection"`
	Heatmap    *qc.Heatmap        `json:"heatmap,omitempty"`
	ReworkJob  *models.ReworkJob  `json:"rework_job,omitempty"`
}

// Inspect handles POST /api/qc/inspect: a multipart upload of the item file
// plus form fields, run through the full inspection flow.
func (ih *InspectionHandler) Inspect(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_multipart", "Could not parse multipart form: "+err.Error())
		return
	}

	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		userID = r.FormValue("user_id")
	}
	if userID == "" {
		WriteAPIError(w, http.StatusBadRequest, "missing_user", "X-User-ID header or user_id field is required")
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "missing_file", "A 'file' upload is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "unreadable_file", "Could not read uploaded file: "+err.Error())
		return
	}

	var itemReference *string
	if ref := r.FormValue("item_reference"); ref != "" {
		itemReference = &ref
	}

	params := services.InspectUploadParams{
		UserID:         userID,
		Filename:       fileHeader.Filename,
		ContentType:    fileHeader.Header.Get("Content-Type"),
		Data:           data,
		ItemReference:  itemReference,
		HasCADFile:     r.FormValue("has_cad_file") == "true",
		ForceSimulated: r.FormValue("force_simulated") == "true",
	}

	inspection, report, err := ih.Service.InspectUpload(params)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	log.Printf("Inspection %s created for user %s (%s)", report.InspectionID, userID, report.Status)
	writeJSON(w, http.StatusCreated, inspectionResponse{Inspection: inspection})
}

// Get handles GET /api/qc/inspections/{inspectionID}, returning the record
// with its defect heatmap.
func (ih *InspectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "inspectionID")

	inspection, heatmap, err := ih.Service.GetInspection(uid)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, inspectionResponse{Inspection: inspection, Heatmap: heatmap})
}

// List handles GET /api/qc/inspections with optional user_id, decision,
// status, limit, and offset query parameters.
func (ih *InspectionHandler) List(w http.ResponseWriter, r *http.Request) {
	opts := repository.InspectionListOptions{
		UserID:   r.URL.Query().Get("user_id"),
		Decision: r.URL.Query().Get("decision"),
		Status:   r.URL.Query().Get("status"),
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

	inspections, err := ih.Service.ListInspections(opts)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	if inspections == nil {
		inspections = []models.Inspection{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"inspections": inspections})
}

// Triage handles POST /api/qc/triage: the operator's decision on an
// inspection, optionally spawning a rework job.
func (ih *InspectionHandler) Triage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		InspectionID    string   `json:"inspection_id"`
		Decision        string   `json:"decision"`
		Notes           *string  `json:"notes"`
		IsFalsePositive bool     `json:"is_false_positive"`
		DefectIDs       []string `json:"defect_ids"`
		Priority        string   `json:"priority"`
		Station         string   `json:"station"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_body", "Invalid request body: "+err.Error())
		return
	}
	if req.InspectionID == "" {
		WriteAPIError(w, http.StatusBadRequest, "missing_inspection_id", "inspection_id is required")
		return
	}

	inspection, job, err := ih.Service.Triage(services.TriageParams{
		InspectionUID:   req.InspectionID,
		Decision:        req.Decision,
		Notes:           req.Notes,
		IsFalsePositive: req.IsFalsePositive,
		DefectIDs:       req.DefectIDs,
		Priority:        req.Priority,
		Station:         req.Station,
	})
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, inspectionResponse{Inspection: inspection, ReworkJob: job})
}
