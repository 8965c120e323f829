package qc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampBBox(t *testing.T) {
	// fully inside: unchanged
	assert.Equal(t, BBox{X: 10, Y: 10, Width: 50, Height: 50}, clampBBox(10, 10, 50, 50, 640, 480))

	// negative origin clamps to zero
	assert.Equal(t, BBox{X: 0, Y: 0, Width: 50, Height: 50}, clampBBox(-5, -20, 50, 50, 640, 480))

	// origin pushed back so the box stays inside
	got := clampBBox(630, 470, 50, 50, 640, 480)
	assert.Equal(t, BBox{X: 590, Y: 430, Width: 50, Height: 50}, got)

	// oversized box shrinks to the image before the origin clamp
	got = clampBBox(0, 0, 2000, 2000, 640, 480)
	assert.Equal(t, BBox{X: 0, Y: 0, Width: 640, Height: 480}, got)
}

func TestDefectTypeLabel(t *testing.T) {
	assert.Equal(t, "Stone Misalignment", DefectStoneMisalignment.Label())
	assert.Equal(t, "Scratch", DefectScratch.Label())
	assert.Equal(t, "Casting Porosity", DefectCastingPorosity.Label())
}

func TestDefectTypeDescription(t *testing.T) {
	assert.Equal(t, "Surface scratch detected on metal finish", DefectScratch.Description())
	assert.Equal(t, "Defect detected", DefectType("made_up").Description())
}

func TestBBoxArea(t *testing.T) {
	assert.Equal(t, 1200, BBox{Width: 40, Height: 30}.Area())
}

func TestSeverityRank(t *testing.T) {
	assert.Greater(t, SeverityHigh.Rank(), SeverityMedium.Rank())
	assert.Greater(t, SeverityMedium.Rank(), SeverityLow.Rank())
}
