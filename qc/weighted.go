package qc

import "math/rand"

// WeightedCategory pairs a defect type with its draw probability.
type WeightedCategory struct {
	Type        DefectType
	Probability float64
}

// WeightedTable is an ordered set of categories whose probabilities are
// expected to sum to 1.0.
type WeightedTable []WeightedCategory

// imageDefectWeights is the category-probability table used by the heuristic
// image detector.
var imageDefectWeights = WeightedTable{
	{DefectScratch, 0.25},
	{DefectStoneMisalignment, 0.20},
	{DefectSurfaceDiscoloration, 0.15},
	{DefectProngDamage, 0.15},
	{DefectPolishDefect, 0.15},
	{DefectCastingPorosity, 0.10},
}

// Total returns the sum of all probabilities in the table.
func (t WeightedTable) Total() float64 {
	var sum float64
	for _, c := range t {
		sum += c.Probability
	}
	return sum
}

// Pick draws one category using a cumulative-probability walk. A draw that
// lands past the cumulative total (possible only when the table sums below
// 1.0) falls through to the first entry.
func (t WeightedTable) Pick(r *rand.Rand) DefectType {
	draw := r.Float64()
	var cumulative float64
	for _, c := range t {
		cumulative += c.Probability
		if draw < cumulative {
			return c.Type
		}
	}
	return t[0].Type
}
