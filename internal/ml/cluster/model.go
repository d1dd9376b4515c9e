package cluster

import (
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"

	"cadence/internal/domain/classification"
)

// Scaler holds the per-feature standardization parameters fitted at training
// time. Inference always transforms with these persisted values, never refits.
type Scaler struct {
	Mean []float64
	Std  []float64
}

// Transform standardizes a raw feature slice
func (s Scaler) Transform(v []float64) []float64 {
	out := make([]float64, len(v))
	for i := range v {
		out[i] = (v[i] - s.Mean[i]) / s.Std[i]
	}
	return out
}

// Model is one immutable trained clustering model version. Exactly one model
// is current at a time; training produces a new version, never mutates an
// existing one.
type Model struct {
	Version         uuid.UUID
	TrainedAt       time.Time
	FeatureNames    []string
	Scaler          Scaler
	Centroids       [][]float64 // scaled feature space, ordered by raw cluster id
	ClusterToLabel  map[classification.ClusterID]classification.Label
	TrainingSamples int
}

// Predict assigns a scaled feature vector to its nearest centroid and returns
// the typed cluster id together with the full per-centroid distance vector
// needed by the confidence scorer and the transparency layer.
func (m *Model) Predict(scaled []float64) (classification.ClusterID, []float64) {
	distances := make([]float64, len(m.Centroids))
	assigned := 0
	for i, c := range m.Centroids {
		distances[i] = floats.Distance(scaled, c, 2)
		if distances[i] < distances[assigned] {
			assigned = i
		}
	}
	return classification.ClusterID(assigned), distances
}

// Label looks up the semantic label for a cluster id. By construction the
// lookup succeeds for any id Predict can produce; a miss is a persistence or
// reconstitution defect, not routine behavior.
func (m *Model) Label(id classification.ClusterID) (classification.Label, bool) {
	label, ok := m.ClusterToLabel[id]
	return label, ok
}
