package qc

// HeatmapPoint is one defect rendered as a radial intensity for overlay
// visualization.
type HeatmapPoint struct {
	X         int     `json:"x"`
	Y         int     `json:"y"`
	Intensity float64 `json:"intensity"`
	Radius    int     `json:"radius"`
}

// Heatmap is the visualization payload derived from a report's defects.
type Heatmap struct {
	Points    []HeatmapPoint `json:"points"`
	ImageSize [2]int         `json:"image_size"`
}

// BuildHeatmap maps each defect to its bbox centre, with the post-adjustment
// confidence as intensity and half the longest side as radius.
func BuildHeatmap(defects []Defect, width, height int) Heatmap {
	points := make([]HeatmapPoint, 0, len(defects))
	for _, d := range defects {
		radius := d.BBox.Width
		if d.BBox.Height > radius {
			radius = d.BBox.Height
		}
		points = append(points, HeatmapPoint{
			X:         d.BBox.X + d.BBox.Width/2,
			Y:         d.BBox.Y + d.BBox.Height/2,
			Intensity: d.Confidence,
			Radius:    radius / 2,
		})
	}
	return Heatmap{Points: points, ImageSize: [2]int{width, height}}
}
