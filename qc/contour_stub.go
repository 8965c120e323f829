//go:build !gocv
// +build !gocv

package qc

import "errors"

// CannyContourFinder without the gocv build tag has no OpenCV backend; the
// heuristic detector treats its error as the analysis-failure fallback and
// uses the randomized generator instead.
type CannyContourFinder struct {
	MinAreaRatio   float64
	MaxAreaRatio   float64
	CannyThreshLow float32
	CannyThreshHi  float32
}

// NewCannyContourFinder builds the stub backend.
func NewCannyContourFinder() *CannyContourFinder {
	return &CannyContourFinder{
		MinAreaRatio:   0.001,
		MaxAreaRatio:   0.15,
		CannyThreshLow: 50,
		CannyThreshHi:  150,
	}
}

// FindCandidates always reports the backend as unavailable.
func (f *CannyContourFinder) FindCandidates(data []byte) ([]Candidate, error) {
	_ = data
	return nil, errors.New("contour analysis: built without gocv support")
}
