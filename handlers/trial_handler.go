package handlers

import (
	"net/http"

	"github.com/atelierworks/jewelqc-backend/services"
)

type TrialHandler struct {
	Service *services.QCService
}

// Status handles GET /api/trials/status: remaining free inspections for the
// calling user.
func (th *TrialHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		userID = r.URL.Query().Get("user_id")
	}
	if userID == "" {
		WriteAPIError(w, http.StatusBadRequest, "missing_user", "X-User-ID header or user_id query parameter is required")
		return
	}

	feature := r.URL.Query().Get("feature")
	if feature == "" {
		feature = services.FeatureQCInspection
	}

	status, err := th.Service.GetTrialStatus(userID, feature)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, status)
}
