package qc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildHeatmap(t *testing.T) {
	defects := []Defect{
		{BBox: BBox{X: 10, Y: 20, Width: 40, Height: 30}, Confidence: 0.91},
		{BBox: BBox{X: 100, Y: 100, Width: 20, Height: 60}, Confidence: 0.74},
	}

	hm := BuildHeatmap(defects, 640, 480)

	assert.Equal(t, [2]int{640, 480}, hm.ImageSize)
	require.Len(t, hm.Points, 2)

	assert.Equal(t, 30, hm.Points[0].X) // bbox centre
	assert.Equal(t, 35, hm.Points[0].Y)
	assert.Equal(t, 0.91, hm.Points[0].Intensity)
	assert.Equal(t, 20, hm.Points[0].Radius) // half the longest side

	assert.Equal(t, 110, hm.Points[1].X)
	assert.Equal(t, 130, hm.Points[1].Y)
	assert.Equal(t, 30, hm.Points[1].Radius)
}

func TestBuildHeatmapEmpty(t *testing.T) {
	hm := BuildHeatmap(nil, 1024, 1024)

	assert.Empty(t, hm.Points)
	assert.Equal(t, [2]int{1024, 1024}, hm.ImageSize)
}
