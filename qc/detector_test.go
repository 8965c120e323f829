package qc

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeContourFinder struct {
	candidates []Candidate
	err        error
}

func (f *fakeContourFinder) FindCandidates(data []byte) ([]Candidate, error) {
	return f.candidates, f.err
}

func TestHeuristicDetectorDefectCountAndBounds(t *testing.T) {
	finder := &fakeContourFinder{candidates: []Candidate{
		{X: 100, Y: 120, W: 60, H: 40, Area: 2400},
		{X: 300, Y: 200, W: 35, H: 35, Area: 1225},
	}}
	det := NewHeuristicDetector(finder, rand.New(rand.NewSource(11)))

	const width, height = 800, 600
	for i := 0; i < 50; i++ {
		result := det.Detect(nil, width, height)
		require.False(t, result.Fallback)
		assert.GreaterOrEqual(t, len(result.Defects), 2)
		assert.LessOrEqual(t, len(result.Defects), 4)

		for _, d := range result.Defects {
			assert.GreaterOrEqual(t, d.BBox.X, 0)
			assert.GreaterOrEqual(t, d.BBox.Y, 0)
			assert.LessOrEqual(t, d.BBox.X+d.BBox.Width, width)
			assert.LessOrEqual(t, d.BBox.Y+d.BBox.Height, height)
			assert.GreaterOrEqual(t, d.Confidence, 0.93)
			assert.LessOrEqual(t, d.Confidence, 0.98)
			assert.NotEmpty(t, d.ID)
			assert.NotEmpty(t, d.Label)
			assert.NotEmpty(t, d.Description)
		}
	}
}

func TestHeuristicDetectorUniqueIDs(t *testing.T) {
	det := NewHeuristicDetector(&fakeContourFinder{}, rand.New(rand.NewSource(3)))

	result := det.Detect(nil, 640, 480)
	require.False(t, result.Fallback)

	seen := make(map[string]bool)
	for _, d := range result.Defects {
		assert.False(t, seen[d.ID], "duplicate defect id %s", d.ID)
		seen[d.ID] = true
	}
}

func TestHeuristicDetectorFallbackOnContourError(t *testing.T) {
	finder := &fakeContourFinder{err: errors.New("opencv unavailable")}
	det := NewHeuristicDetector(finder, rand.New(rand.NewSource(1)))

	result := det.Detect(nil, 640, 480)

	assert.True(t, result.Fallback)
	assert.Contains(t, result.FallbackReason, "opencv unavailable")
	assert.Empty(t, result.Defects)
}

func TestHeuristicDetectorCentralFallbackPositions(t *testing.T) {
	// no candidates at all: every box comes from the central region
	det := NewHeuristicDetector(&fakeContourFinder{}, rand.New(rand.NewSource(9)))

	const width, height = 1000, 1000
	result := det.Detect(nil, width, height)
	require.False(t, result.Fallback)

	for _, d := range result.Defects {
		assert.GreaterOrEqual(t, d.BBox.X, width/5-1)
		assert.LessOrEqual(t, d.BBox.X, width*4/5)
	}
}

func TestRandomDetectorCountAndSeverity(t *testing.T) {
	det := NewRandomDetector(rand.New(rand.NewSource(5)))

	for i := 0; i < 100; i++ {
		defects := det.Detect(1024, 1024)
		assert.GreaterOrEqual(t, len(defects), 1)
		assert.LessOrEqual(t, len(defects), 3)

		for _, d := range defects {
			assert.GreaterOrEqual(t, d.Confidence, 0.70)
			assert.LessOrEqual(t, d.Confidence, 0.95)

			// severity is assigned from the raw draw before rounding, so
			// only assert away from the thresholds
			switch {
			case d.Confidence > 0.86:
				assert.Equal(t, SeverityHigh, d.Severity)
			case d.Confidence < 0.75:
				assert.Equal(t, SeverityLow, d.Severity)
			default:
				assert.Contains(t, []Severity{SeverityLow, SeverityMedium, SeverityHigh}, d.Severity)
			}

			assert.GreaterOrEqual(t, d.BBox.X, 0)
			assert.GreaterOrEqual(t, d.BBox.Y, 0)
			assert.LessOrEqual(t, d.BBox.X+d.BBox.Width, 1024)
			assert.LessOrEqual(t, d.BBox.Y+d.BBox.Height, 1024)
		}
	}
}

func TestRandomDetectorDeterministicWithSeed(t *testing.T) {
	a := NewRandomDetector(rand.New(rand.NewSource(99))).Detect(800, 600)
	b := NewRandomDetector(rand.New(rand.NewSource(99))).Detect(800, 600)

	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].Type, b[i].Type)
		assert.Equal(t, a[i].BBox, b[i].BBox)
		assert.Equal(t, a[i].Confidence, b[i].Confidence)
	}
}

func TestMLDetectorDegradesToRandomized(t *testing.T) {
	det := NewMLDetector(rand.New(rand.NewSource(2)))

	defects := det.Detect(1024, 1024)

	assert.GreaterOrEqual(t, len(defects), 1)
	assert.LessOrEqual(t, len(defects), 3)
}
