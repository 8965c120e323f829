package qc

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// FileType describes the provenance class of the inspected input.
type FileType string

const (
	FileTypeImage FileType = "image"
	FileTypeCAD   FileType = "cad"
	FileTypePDF   FileType = "pdf"
)

// ModelVersion identifies the detection model release stamped on reports.
const ModelVersion = "v1.0"

// DetectionMode selects the detector family for an inspection.
type DetectionMode string

const (
	ModeSimulated DetectionMode = "simulated"
	ModeML        DetectionMode = "ml"
)

// Status is the overall outcome of an inspection, derived from the filtered
// defect list.
type Status string

const (
	StatusPassed          Status = "passed"
	StatusPassedWithNotes Status = "passed_with_notes"
	StatusReview          Status = "review"
	StatusFailed          Status = "failed"
)

var statusRecommendations = map[Status]string{
	StatusPassed:          "No defects detected. Item passes QC.",
	StatusFailed:          "Critical defects detected. Send for rework.",
	StatusReview:          "Moderate defects detected. Manual review recommended.",
	StatusPassedWithNotes: "Minor defects detected. Acceptable but document findings.",
}

// deriveStatus applies the strict precedence: empty list passes, any high
// severity fails, any medium requires review, only-low passes with notes.
func deriveStatus(defects []Defect) Status {
	if len(defects) == 0 {
		return StatusPassed
	}
	for _, d := range defects {
		if d.Severity == SeverityHigh {
			return StatusFailed
		}
	}
	for _, d := range defects {
		if d.Severity == SeverityMedium {
			return StatusReview
		}
	}
	return StatusPassedWithNotes
}

// Recommendation returns the fixed operator guidance for the status.
func (s Status) Recommendation() string {
	return statusRecommendations[s]
}

// confidenceNote explains to operators why confidence was (or was not)
// scaled, keyed by the same provenance combination the multiplier uses.
func confidenceNote(fileType FileType, hasCADFile bool) string {
	switch {
	case fileType == FileTypeCAD && hasCADFile:
		return "High confidence: CAD file analysis provides precise measurements."
	case fileType == FileTypeImage && !hasCADFile:
		return "Reduced confidence: Image-only analysis. CAD file recommended for better accuracy."
	case fileType == FileTypePDF && !hasCADFile:
		return "Moderate confidence: PDF analysis. CAD file recommended for precise defect detection."
	case fileType == FileTypeImage:
		return "Good confidence: Image analysis with reference data."
	}
	return "Analysis completed with available data."
}

// Report is the immutable outcome of a single inspection run. Operator
// decision fields live on the persisted record wrapping this value, not here.
type Report struct {
	InspectionID        string        `json:"inspection_id"`
	Status              Status        `json:"status"`
	Recommendation      string        `json:"recommendation"`
	Defects             []Defect      `json:"defects"`
	DefectCount         int           `json:"defect_count"`
	DetectionMode       DetectionMode `json:"detection_mode"`
	ModelVersion        string        `json:"model_version"`
	ConfidenceThreshold float64       `json:"confidence_threshold"`
	ImageAnalysis       ImageAnalysis `json:"image_analysis"`
	RequiresReshoot     bool          `json:"requires_reshoot"`
	LightingWarning     string        `json:"lighting_warning"`
	FileType            FileType      `json:"file_type"`
	HasCADFile          bool          `json:"has_cad_file"`
	ConfidenceNote      string        `json:"confidence_note"`
}

// newInspectionID generates a unique id for one inspection run.
func newInspectionID() string {
	u := uuid.New()
	return "qc_" + hex.EncodeToString(u[:])
}
