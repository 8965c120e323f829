package qc

// Multiplier returns the provenance-based confidence scale for an
// inspection. Exactly one multiplier applies, chosen by precedence: a
// missing CAD reference carries the largest penalty regardless of file type.
func Multiplier(fileType FileType, hasCADFile bool) float64 {
	switch {
	case !hasCADFile:
		return 0.75
	case fileType == FileTypePDF:
		return 0.85
	case fileType == FileTypeImage:
		return 0.90
	default:
		return 1.0
	}
}

// AdjustAndFilter scales each defect's raw confidence by the provenance
// multiplier (rounded to two decimals), marks it adjusted when the
// multiplier is not 1.0, and drops defects below the threshold. Severity is
// deliberately left as fixed at detection time; see the inspection report's
// confidence note for the operator-facing explanation.
func AdjustAndFilter(defects []Defect, fileType FileType, hasCADFile bool, threshold float64) []Defect {
	multiplier := Multiplier(fileType, hasCADFile)

	kept := make([]Defect, 0, len(defects))
	for _, d := range defects {
		d.Confidence = round2(d.Confidence * multiplier)
		d.AdjustedConfidence = multiplier != 1.0
		if d.Confidence >= threshold {
			kept = append(kept, d)
		}
	}
	return kept
}
