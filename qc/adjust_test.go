package qc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMultiplierPrecedence(t *testing.T) {
	// a missing CAD reference wins over any file type
	assert.Equal(t, 0.75, Multiplier(FileTypeImage, false))
	assert.Equal(t, 0.75, Multiplier(FileTypePDF, false))
	assert.Equal(t, 0.75, Multiplier(FileTypeCAD, false))

	assert.Equal(t, 0.85, Multiplier(FileTypePDF, true))
	assert.Equal(t, 0.90, Multiplier(FileTypeImage, true))
	assert.Equal(t, 1.0, Multiplier(FileTypeCAD, true))
}

func TestAdjustAndFilterScalesAndMarks(t *testing.T) {
	defects := []Defect{
		{ID: "a", Confidence: 0.96, Severity: SeverityHigh},
		{ID: "b", Confidence: 0.80, Severity: SeverityLow},
	}

	kept := AdjustAndFilter(defects, FileTypeImage, true, 0.7)

	assert.Len(t, kept, 2)
	assert.InDelta(t, 0.86, kept[0].Confidence, 0.001) // 0.96 * 0.90
	assert.InDelta(t, 0.72, kept[1].Confidence, 0.001) // 0.80 * 0.90
	for _, d := range kept {
		assert.True(t, d.AdjustedConfidence)
	}
}

func TestAdjustAndFilterDropsBelowThreshold(t *testing.T) {
	defects := []Defect{
		{ID: "keep", Confidence: 0.95},
		{ID: "drop", Confidence: 0.75},
	}

	// no CAD reference: everything is scaled by 0.75
	kept := AdjustAndFilter(defects, FileTypeImage, false, 0.7)

	assert.Len(t, kept, 1)
	assert.Equal(t, "keep", kept[0].ID)
	assert.InDelta(t, 0.71, kept[0].Confidence, 0.001) // 0.95 * 0.75
}

func TestAdjustAndFilterCADIsUnscaled(t *testing.T) {
	defects := []Defect{{ID: "a", Confidence: 0.72}}

	kept := AdjustAndFilter(defects, FileTypeCAD, true, 0.7)

	assert.Len(t, kept, 1)
	assert.InDelta(t, 0.72, kept[0].Confidence, 0.001)
	assert.False(t, kept[0].AdjustedConfidence)
}

func TestAdjustAndFilterKeepsSeverity(t *testing.T) {
	defects := []Defect{{ID: "a", Confidence: 0.95, Severity: SeverityHigh}}

	kept := AdjustAndFilter(defects, FileTypeImage, false, 0.7)

	// severity stays fixed at detection time even after scaling
	assert.Len(t, kept, 1)
	assert.Equal(t, SeverityHigh, kept[0].Severity)
}

func TestDeriveStatusPrecedence(t *testing.T) {
	assert.Equal(t, StatusPassed, deriveStatus(nil))
	assert.Equal(t, StatusFailed, deriveStatus([]Defect{
		{Severity: SeverityLow}, {Severity: SeverityHigh}, {Severity: SeverityMedium},
	}))
	assert.Equal(t, StatusReview, deriveStatus([]Defect{
		{Severity: SeverityLow}, {Severity: SeverityMedium},
	}))
	assert.Equal(t, StatusPassedWithNotes, deriveStatus([]Defect{
		{Severity: SeverityLow},
	}))
}
