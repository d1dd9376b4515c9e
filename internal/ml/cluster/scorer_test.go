package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cadence/internal/domain/classification"
)

func TestConfidence(t *testing.T) {
	tests := []struct {
		name      string
		distances []float64
		assigned  classification.ClusterID
		want      float64
	}{
		{"clear assignment", []float64{2.0, 5.0, 10.0}, 0, 0.8},
		{"halfway", []float64{5.0, 3.0, 10.0}, 0, 0.5},
		{"assigned is farthest", []float64{10.0, 5.0, 2.0}, 0, 0.0},
		{"point on centroid", []float64{0.0, 5.0, 10.0}, 0, 1.0},
		{"equidistant", []float64{4.0, 4.0, 4.0}, 1, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Confidence(tt.distances, tt.assigned), 1e-9)
		})
	}
}

func TestConfidence_DegenerateInputs(t *testing.T) {
	assert.Zero(t, Confidence(nil, 0))
	assert.Zero(t, Confidence([]float64{}, 0))
	assert.Zero(t, Confidence([]float64{1.0, 2.0}, 5), "out-of-range id")
	// All centroids coincide with the point
	assert.Zero(t, Confidence([]float64{0, 0, 0}, 0))
}

func TestConfidence_AlwaysInUnitInterval(t *testing.T) {
	cases := [][]float64{
		{0.001, 0.002, 0.003},
		{100, 200, 300},
		{1e-12, 1, 2},
		{7, 7, 7.0001},
	}
	for _, distances := range cases {
		for id := range distances {
			c := Confidence(distances, classification.ClusterID(id))
			assert.GreaterOrEqual(t, c, 0.0)
			assert.LessOrEqual(t, c, 1.0)
		}
	}
}
