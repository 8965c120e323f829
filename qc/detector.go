package qc

import (
	"math"
	"math/rand"
)

// Candidate is a contour-derived region that may contain a defect.
type Candidate struct {
	X    int
	Y    int
	W    int
	H    int
	Area int
}

// ContourFinder extracts defect candidate regions from raw image bytes.
// Implementations filter candidates to a plausible size range and return
// them ranked by area, largest first.
type ContourFinder interface {
	FindCandidates(data []byte) ([]Candidate, error)
}

// Heuristic image detector tuning. The confidence band is deliberately high
// so typical values survive the worst-case 0.75 provenance multiplier and
// still clear the default 0.7 threshold.
const (
	heuristicMinDefects = 2
	heuristicMaxDefects = 4

	heuristicConfLow       = 0.93
	heuristicConfHigh      = 0.97
	heuristicBoostConfLow  = 0.94
	heuristicBoostConfHigh = 0.98

	// boost kicks in when the box covers more than 2% of the image
	boostAreaRatio = 0.02

	// severity thresholds for the image variant
	heuristicHighConf      = 0.88
	heuristicMediumConf    = 0.78
	heuristicHighAreaRatio = 0.03

	positionJitter = 10
	sizeJitter     = 5
	minBoxSide     = 20
)

// HeuristicDetector produces defects from contour analysis of an image,
// falling back to pseudo-random placement in the central region when the
// contours run out.
type HeuristicDetector struct {
	Rand     *rand.Rand
	Contours ContourFinder
	Weights  WeightedTable
}

// NewHeuristicDetector builds the image detector around a contour backend.
func NewHeuristicDetector(contours ContourFinder, rng *rand.Rand) *HeuristicDetector {
	return &HeuristicDetector{
		Rand:     rng,
		Contours: contours,
		Weights:  imageDefectWeights,
	}
}

// ImageDetection is the explicit result variant of the heuristic detector:
// either a defect list, or a signal that contour analysis could not run and
// the caller should use the randomized generator instead.
type ImageDetection struct {
	Defects        []Defect
	Fallback       bool
	FallbackReason string
}

// Detect runs contour analysis on the image bytes and emits 2-4 defects with
// raw (pre-adjustment) confidence. Candidate boxes get small positional
// jitter; once candidates are exhausted, positions are drawn from the
// central 60% of the image.
func (d *HeuristicDetector) Detect(data []byte, width, height int) ImageDetection {
	candidates, err := d.Contours.FindCandidates(data)
	if err != nil {
		return ImageDetection{Fallback: true, FallbackReason: err.Error()}
	}

	imageArea := width * height
	numDefects := randIntInclusive(d.Rand, heuristicMinDefects, heuristicMaxDefects)
	defects := make([]Defect, 0, numDefects)

	for i := 0; i < numDefects; i++ {
		var x, y, w, h int
		if i < len(candidates) {
			c := candidates[i]
			x = c.X + randIntInclusive(d.Rand, -positionJitter, positionJitter)
			y = c.Y + randIntInclusive(d.Rand, -positionJitter, positionJitter)
			w = maxInt(minBoxSide, c.W+randIntInclusive(d.Rand, -sizeJitter, sizeJitter))
			h = maxInt(minBoxSide, c.H+randIntInclusive(d.Rand, -sizeJitter, sizeJitter))
		} else {
			x, y, w, h = randomCentralBox(d.Rand, width, height)
		}

		confidence := randFloatRange(d.Rand, heuristicConfLow, heuristicConfHigh)
		if float64(w*h) > float64(imageArea)*boostAreaRatio {
			confidence = randFloatRange(d.Rand, heuristicBoostConfLow, heuristicBoostConfHigh)
		}

		severity := SeverityLow
		switch {
		case confidence > heuristicHighConf || float64(w*h) > float64(imageArea)*heuristicHighAreaRatio:
			severity = SeverityHigh
		case confidence > heuristicMediumConf:
			severity = SeverityMedium
		}

		defectType := d.Weights.Pick(d.Rand)
		defects = append(defects, Defect{
			ID:          newDefectID(),
			Type:        defectType,
			Label:       defectType.Label(),
			BBox:        clampBBox(x, y, w, h, width, height),
			Confidence:  round2(confidence),
			Severity:    severity,
			Description: defectType.Description(),
		})
	}

	return ImageDetection{Defects: defects}
}

// Randomized (non-image) detector tuning.
const (
	randomMinDefects = 1
	randomMaxDefects = 3

	randomConfLow  = 0.70
	randomConfHigh = 0.95

	randomHighConf   = 0.85
	randomMediumConf = 0.75
)

// RandomDetector emits fully randomized defects. It serves CAD and PDF
// inputs, where no pixel data exists, and acts as the fallback for failed
// image analysis.
type RandomDetector struct {
	Rand *rand.Rand
}

// NewRandomDetector builds the randomized generator.
func NewRandomDetector(rng *rand.Rand) *RandomDetector {
	return &RandomDetector{Rand: rng}
}

// Detect generates 1-3 defects with random position, size, type and
// confidence on a width x height canvas.
func (d *RandomDetector) Detect(width, height int) []Defect {
	numDefects := randIntInclusive(d.Rand, randomMinDefects, randomMaxDefects)
	defects := make([]Defect, 0, numDefects)

	for i := 0; i < numDefects; i++ {
		x := randIntInclusive(d.Rand, width/5, width*4/5)
		y := randIntInclusive(d.Rand, height/5, height*4/5)
		w := randIntInclusive(d.Rand, width/20, width*3/20)
		h := randIntInclusive(d.Rand, height/20, height*3/20)

		confidence := randFloatRange(d.Rand, randomConfLow, randomConfHigh)
		severity := SeverityLow
		switch {
		case confidence > randomHighConf:
			severity = SeverityHigh
		case confidence > randomMediumConf:
			severity = SeverityMedium
		}

		defectType := AllDefectTypes[d.Rand.Intn(len(AllDefectTypes))]
		defects = append(defects, Defect{
			ID:          newDefectID(),
			Type:        defectType,
			Label:       defectType.Label(),
			BBox:        clampBBox(x-w/2, y-h/2, w, h, width, height),
			Confidence:  round2(confidence),
			Severity:    severity,
			Description: defectType.Description(),
		})
	}

	return defects
}

// MLDetector is the declared extension point for trained-model inference.
// Until a real model is wired in it degrades to the randomized generator.
type MLDetector struct {
	Fallback *RandomDetector
}

// NewMLDetector builds the placeholder ML detector.
func NewMLDetector(rng *rand.Rand) *MLDetector {
	return &MLDetector{Fallback: NewRandomDetector(rng)}
}

// Detect returns randomized defects in place of model inference.
func (d *MLDetector) Detect(width, height int) []Defect {
	return d.Fallback.Detect(width, height)
}

// randomCentralBox draws a box whose origin lies in the central 60% of the
// image, sized at 5-15% of each dimension.
func randomCentralBox(r *rand.Rand, width, height int) (x, y, w, h int) {
	x = randIntInclusive(r, width/5, width*4/5)
	y = randIntInclusive(r, height/5, height*4/5)
	w = randIntInclusive(r, width/20, width*3/20)
	h = randIntInclusive(r, height/20, height*3/20)
	return x, y, w, h
}

// randIntInclusive returns a uniform draw from [lo, hi]. A degenerate range
// collapses to lo.
func randIntInclusive(r *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.Intn(hi-lo+1)
}

// randFloatRange returns a uniform draw from [lo, hi).
func randFloatRange(r *rand.Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
