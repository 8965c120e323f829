package qc

import (
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// DefectType identifies one of the fixed defect categories the detectors can
// emit.
type DefectType string

const (
	DefectScratch              DefectType = "scratch"
	DefectStoneMisalignment    DefectType = "stone_misalignment"
	DefectSurfaceDiscoloration DefectType = "surface_discoloration"
	DefectProngDamage          DefectType = "prong_damage"
	DefectPolishDefect         DefectType = "polish_defect"
	DefectCastingPorosity      DefectType = "casting_porosity"
	DefectSizeDeviation        DefectType = "size_deviation"
	DefectEngravingError       DefectType = "engraving_error"
)

// AllDefectTypes lists every category, in the order the randomized detector
// draws from.
var AllDefectTypes = []DefectType{
	DefectScratch,
	DefectStoneMisalignment,
	DefectSurfaceDiscoloration,
	DefectProngDamage,
	DefectPolishDefect,
	DefectCastingPorosity,
	DefectSizeDeviation,
	DefectEngravingError,
}

var defectDescriptions = map[DefectType]string{
	DefectScratch:              "Surface scratch detected on metal finish",
	DefectStoneMisalignment:    "Stone appears misaligned or loose in setting",
	DefectSurfaceDiscoloration: "Discoloration or tarnish detected on surface",
	DefectProngDamage:          "Prong appears damaged or bent",
	DefectPolishDefect:         "Inconsistent polish or surface finish",
	DefectCastingPorosity:      "Porosity or air pockets in casting",
	DefectSizeDeviation:        "Dimension appears outside tolerance",
	DefectEngravingError:       "Engraving appears incorrect or damaged",
}

// Description returns the fixed human-readable text for the defect type.
func (t DefectType) Description() string {
	if d, ok := defectDescriptions[t]; ok {
		return d
	}
	return "Defect detected"
}

// Label returns a display form of the type, e.g. "Stone Misalignment".
func (t DefectType) Label() string {
	words := strings.Split(string(t), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// Severity classifies how serious a defect is.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

var severityRank = map[Severity]int{
	SeverityLow:    1,
	SeverityMedium: 2,
	SeverityHigh:   3,
}

// Rank returns the ordering value of the severity (low < medium < high).
// Unknown severities rank below low.
func (s Severity) Rank() int {
	return severityRank[s]
}

// MaxSeverity returns the highest severity among the given defects, or
// SeverityLow for an empty slice.
func MaxSeverity(defects []Defect) Severity {
	max := SeverityLow
	for _, d := range defects {
		if d.Severity.Rank() > max.Rank() {
			max = d.Severity
		}
	}
	return max
}

// BBox is an axis-aligned rectangle in source-image pixel coordinates.
type BBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Area returns the rectangle area in pixels.
func (b BBox) Area() int {
	return b.Width * b.Height
}

// clampBBox fits a candidate rectangle inside an imgW x imgH image. The box
// is shrunk to the image size first so the origin clamp cannot go negative.
func clampBBox(x, y, w, h, imgW, imgH int) BBox {
	if w > imgW {
		w = imgW
	}
	if h > imgH {
		h = imgH
	}
	x = clampInt(x, 0, imgW-w)
	y = clampInt(y, 0, imgH-h)
	return BBox{X: x, Y: y, Width: w, Height: h}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Defect is a single detected imperfection candidate. Confidence is the raw
// detector value until the adjuster scales it exactly once; severity is fixed
// at detection time from the pre-adjustment confidence.
type Defect struct {
	ID                 string     `json:"id"`
	Type               DefectType `json:"type"`
	Label              string     `json:"label"`
	BBox               BBox       `json:"bbox"`
	Confidence         float64    `json:"confidence"`
	AdjustedConfidence bool       `json:"adjusted_confidence"`
	Severity           Severity   `json:"severity"`
	Description        string     `json:"description"`
}

// newDefectID generates the short opaque identifier used for defects.
func newDefectID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])[:8]
}
