package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/atelierworks/jewelqc-backend/models"
	"github.com/atelierworks/jewelqc-backend/repository"
	"github.com/atelierworks/jewelqc-backend/services"
)

type WaitlistHandler struct {
	Service  *services.QCService
	Waitlist repository.WaitlistRepositoryInterface
}

// Join handles POST /api/waitlist. Re-registering an existing email is not an
// error; the response flags whether a new entry was created.
func (wh *WaitlistHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email  string  `json:"email"`
		Name   *string `json:"name"`
		UserID *string `json:"user_id"`
		Source *string `json:"source"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_body", "Invalid request body: "+err.Error())
		return
	}

	entry, created, err := wh.Service.JoinWaitlist(req.Email, req.Name, req.UserID, req.Source)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]interface{}{"entry": entry, "created": created})
}

// Status handles GET /api/waitlist/status: whether an email is already
// registered.
func (wh *WaitlistHandler) Status(w http.ResponseWriter, r *http.Request) {
	email := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("email")))
	if email == "" {
		WriteAPIError(w, http.StatusBadRequest, "missing_email", "email query parameter is required")
		return
	}

	entry, err := wh.Waitlist.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusOK, map[string]interface{}{"email": email, "on_waitlist": false})
			return
		}
		WriteServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"email": email, "on_waitlist": true, "entry": entry})
}

// List handles GET /api/waitlist with optional limit and offset query
// parameters.
func (wh *WaitlistHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	offset := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			offset = n
		}
	}

	entries, err := wh.Waitlist.List(limit, offset)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	if entries == nil {
		entries = []models.WaitlistEntry{}
	}

	count, err := wh.Waitlist.Count()
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": entries, "count": count})
}
