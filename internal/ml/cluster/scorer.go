package cluster

import (
	"cadence/internal/domain/classification"
)

// Confidence computes how decisively a record belongs to its assigned
// cluster:
//
//	confidence = 1 - (distance to assigned centroid / distance to farthest centroid)
//
// clamped to [0,1]. Normalizing by the farthest centroid rather than by an
// absolute distance keeps confidence comparable across differently-scaled
// feature sets. The full distance vector stays available to the transparency
// layer via Predict.
func Confidence(distances []float64, assigned classification.ClusterID) float64 {
	if len(distances) == 0 || int(assigned) >= len(distances) {
		return 0
	}

	farthest := distances[0]
	for _, d := range distances[1:] {
		if d > farthest {
			farthest = d
		}
	}
	if farthest <= 0 {
		// Degenerate model: every centroid coincides with the point
		return 0
	}

	c := 1 - distances[assigned]/farthest
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
