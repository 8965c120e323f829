package handlers

import (
	"net/http"

	"github.com/atelierworks/jewelqc-backend/database"
)

type AnalyticsHandler struct {
	DB database.Querier
}

// Summary handles GET /api/analytics/summary: grouped rollups across
// inspections, rework jobs, and trial usage.
func (ah *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	byStatus, err := database.CountInspectionsByStatus(ah.DB)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	byDecision, err := database.CountInspectionsByDecision(ah.DB)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	reworkByStatus, err := database.CountReworkByStatus(ah.DB)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	reworkByPriority, err := database.CountReworkByPriority(ah.DB)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	trialsByFeature, err := database.CountTrialUsageByFeature(ah.DB)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"inspections_by_status":   byStatus,
		"inspections_by_decision": byDecision,
		"rework_by_status":        reworkByStatus,
		"rework_by_priority":      reworkByPriority,
		"trials_by_feature":       trialsByFeature,
	})
}
