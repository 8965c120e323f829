package qc

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImageDefectWeightsTotal(t *testing.T) {
	assert.InDelta(t, 1.0, imageDefectWeights.Total(), 1e-9)
}

func TestPickAlwaysReturnsTableEntry(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	valid := make(map[DefectType]bool, len(imageDefectWeights))
	for _, c := range imageDefectWeights {
		valid[c.Type] = true
	}

	for i := 0; i < 1000; i++ {
		assert.True(t, valid[imageDefectWeights.Pick(rng)])
	}
}

func TestPickCoversAllCategories(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	seen := make(map[DefectType]bool)

	for i := 0; i < 5000; i++ {
		seen[imageDefectWeights.Pick(rng)] = true
	}

	assert.Len(t, seen, len(imageDefectWeights))
}

func TestPickFallsThroughOnShortTable(t *testing.T) {
	table := WeightedTable{
		{DefectScratch, 0.1},
		{DefectProngDamage, 0.1},
	}
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 200; i++ {
		got := table.Pick(rng)
		assert.Contains(t, []DefectType{DefectScratch, DefectProngDamage}, got)
	}
}
