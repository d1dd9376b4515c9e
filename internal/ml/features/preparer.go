package features

import (
	"cadence/internal/domain/workout"
	"cadence/pkg/errors"
)

// FeatureNames is the canonical feature order used everywhere from training
// through the persisted artifact to inference. Order must never change.
var FeatureNames = []string{"pace", "distance", "duration"}

// Plausibility bounds. Values outside these are not classification input,
// they are outliers to be routed for manual review.
const (
	MinPace     = 2.0   // minutes per distance unit
	MaxPace     = 120.0 // roughly two hours per distance unit
	MaxDistance = 500.0
	MaxDuration = 1440.0 // minutes, one day
)

// Vector holds the three numeric features used for clustering
type Vector struct {
	Pace     float64
	Distance float64
	Duration float64
}

// ToSlice converts the vector to the canonical []float64 ordering
func (v Vector) ToSlice() []float64 {
	return []float64{v.Pace, v.Distance, v.Duration}
}

// Prepare validates a workout record and derives its feature vector.
// A violation is a routing decision, not a failure: the second return value
// carries the human-readable reason and the record goes to the outlier
// terminal state. Pure, side-effect-free.
func Prepare(rec *workout.Record) (Vector, *errors.ValidationError) {
	if rec.Pace < MinPace || rec.Pace > MaxPace {
		return Vector{}, errors.NewValidationError("pace",
			"outside plausible range of minutes per distance unit", rec.Pace)
	}
	if rec.Distance <= 0 || rec.Distance > MaxDistance {
		return Vector{}, errors.NewValidationError("distance",
			"must be positive and below sanity ceiling", rec.Distance)
	}
	if rec.Duration <= 0 || rec.Duration > MaxDuration {
		return Vector{}, errors.NewValidationError("duration",
			"must be positive and below sanity ceiling", rec.Duration)
	}

	return Vector{
		Pace:     rec.Pace,
		Distance: rec.Distance,
		Duration: rec.Duration,
	}, nil
}
