//go:build gocv
// +build gocv

package qc

import (
	"errors"
	"sort"

	"gocv.io/x/gocv"
)

// CannyContourFinder extracts defect candidates with OpenCV edge detection:
// grayscale, Canny, external contours, then an area filter keeping regions
// between 0.1% and 15% of the image.
type CannyContourFinder struct {
	MinAreaRatio   float64
	MaxAreaRatio   float64
	CannyThreshLow float32
	CannyThreshHi  float32
}

// NewCannyContourFinder builds the contour backend with the default
// thresholds.
func NewCannyContourFinder() *CannyContourFinder {
	return &CannyContourFinder{
		MinAreaRatio:   0.001,
		MaxAreaRatio:   0.15,
		CannyThreshLow: 50,
		CannyThreshHi:  150,
	}
}

// FindCandidates decodes the image and returns candidate regions ranked by
// area, largest first.
func (f *CannyContourFinder) FindCandidates(data []byte) ([]Candidate, error) {
	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil || mat.Empty() {
		if !mat.Empty() {
			mat.Close()
		}
		return nil, errors.New("contour analysis: failed to decode image")
	}
	defer mat.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(gray, &edges, f.CannyThreshLow, f.CannyThreshHi)

	contours := gocv.FindContours(edges, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	imageArea := float64(mat.Cols() * mat.Rows())
	minArea := imageArea * f.MinAreaRatio
	maxArea := imageArea * f.MaxAreaRatio

	candidates := make([]Candidate, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		c := contours.At(i)
		area := gocv.ContourArea(c)
		if area <= minArea || area >= maxArea {
			continue
		}
		rect := gocv.BoundingRect(c)
		candidates = append(candidates, Candidate{
			X:    rect.Min.X,
			Y:    rect.Min.Y,
			W:    rect.Dx(),
			H:    rect.Dy(),
			Area: int(area),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Area > candidates[j].Area
	})

	return candidates, nil
}
