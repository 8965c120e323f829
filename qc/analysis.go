package qc

import (
	"bytes"
	"fmt"
	"image"
	"math"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Lighting quality values reported by image analysis.
const (
	LightingGood        = "good"
	LightingTooDark     = "too_dark"
	LightingTooBright   = "too_bright"
	LightingLowContrast = "low_contrast"
)

// ImageAnalysis captures basic photographic characteristics that affect QC
// results. For non-image inputs a fixed nominal analysis is reported.
type ImageAnalysis struct {
	Brightness      float64  `json:"brightness"`
	Contrast        float64  `json:"contrast"`
	LightingQuality string   `json:"lighting_quality"`
	HasGlint        bool     `json:"has_glint"`
	Resolution      [2]int   `json:"resolution"`
	FileType        FileType `json:"file_type"`
}

var lightingWarnings = map[string]string{
	LightingTooDark:     "Image is too dark. Please recapture under better lighting.",
	LightingTooBright:   "Image is overexposed. Reduce lighting or adjust camera settings.",
	LightingLowContrast: "Low contrast detected. Improve lighting setup for better detection.",
	LightingGood:        "",
}

// LightingWarning builds the operator-facing warning string for the
// analysis, including a glare note when bright spots were found.
func (a ImageAnalysis) LightingWarning() string {
	warning := lightingWarnings[a.LightingQuality]
	if a.HasGlint {
		warning += " Glare detected - may cause false positives."
	}
	return strings.TrimSpace(warning)
}

// decodeImage decodes the raw upload bytes, surfacing failures as
// ErrInputDecode.
func decodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInputDecode, err)
	}
	return img, nil
}

// analyzeImage computes brightness (mean pixel value), contrast (stddev),
// a lighting quality bucket and a glint flag over all RGB samples.
func analyzeImage(img image.Image) ImageAnalysis {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	var sum, sumSq float64
	var maxVal uint32
	var brightCount int64
	totalSamples := int64(width) * int64(height) * 3

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			for _, c := range [3]uint32{r >> 8, g >> 8, b >> 8} {
				v := float64(c)
				sum += v
				sumSq += v * v
				if c > maxVal {
					maxVal = c
				}
				if c > 240 {
					brightCount++
				}
			}
		}
	}

	brightness := 0.0
	contrast := 0.0
	if totalSamples > 0 {
		brightness = sum / float64(totalSamples)
		variance := sumSq/float64(totalSamples) - brightness*brightness
		if variance > 0 {
			contrast = math.Sqrt(variance)
		}
	}

	quality := LightingGood
	switch {
	case brightness < 80:
		quality = LightingTooDark
	case brightness > 200:
		quality = LightingTooBright
	case contrast < 30:
		quality = LightingLowContrast
	}

	hasGlint := maxVal > 245 && brightCount > totalSamples/100

	return ImageAnalysis{
		Brightness:      brightness,
		Contrast:        contrast,
		LightingQuality: quality,
		HasGlint:        hasGlint,
		Resolution:      [2]int{width, height},
		FileType:        FileTypeImage,
	}
}

// nominalAnalysis is reported for CAD and PDF inputs, where no pixel data is
// available. The 1024x1024 canvas matches the randomized detector's default.
func nominalAnalysis(fileType FileType) ImageAnalysis {
	return ImageAnalysis{
		Brightness:      128,
		Contrast:        50,
		LightingQuality: LightingGood,
		HasGlint:        false,
		Resolution:      [2]int{nominalCanvasSize, nominalCanvasSize},
		FileType:        fileType,
	}
}

const nominalCanvasSize = 1024
