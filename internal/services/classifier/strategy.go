package classifier

import (
	"time"

	"cadence/internal/domain/classification"
	"cadence/internal/domain/workout"
	"cadence/internal/metrics"
	"cadence/internal/ml/cluster"
	"cadence/internal/ml/features"
	"cadence/pkg/errors"
	"cadence/pkg/logger"
)

// strategy is one way of turning a validated feature vector into a result.
// Selection happens up front from precondition checks instead of nested
// fallthrough branching, so the decision path is independently testable and
// the transparency layer can audit it.
type strategy interface {
	Method() classification.Method
	Classify(rec *workout.Record, fv features.Vector) (*classification.Result, error)
}

// selectStrategy picks the ML path when a model snapshot is available and the
// era fallback otherwise
func selectStrategy(model *cluster.Model, fallback *EraFallback, log *logger.Logger) strategy {
	if model != nil {
		return &mlStrategy{model: model, log: log}
	}
	return &fallbackStrategy{fallback: fallback}
}

// mlStrategy classifies through the trained clustering model: scale with the
// persisted scaler, predict, look the label up through the model's own map.
type mlStrategy struct {
	model *cluster.Model
	log   *logger.Logger
}

func (s *mlStrategy) Method() classification.Method {
	return classification.MethodMLTrained
}

func (s *mlStrategy) Classify(rec *workout.Record, fv features.Vector) (*classification.Result, error) {
	scaled := s.model.Scaler.Transform(fv.ToSlice())
	clusterID, distances := s.model.Predict(scaled)

	label, ok := s.model.Label(clusterID)
	if !ok {
		// By construction the map contains every id Predict can produce, so
		// a miss is a reconstitution defect. Log everything a debugging
		// session would need and hand the record to the fallback path so the
		// user still gets a usable result.
		metrics.LookupMisses.Inc()
		s.log.Errorw("Cluster id missing from model label map",
			"workout_id", rec.ID,
			"cluster_id", clusterID,
			"cluster_id_type", "classification.ClusterID",
			"label_map", s.model.ClusterToLabel,
			"model_version", s.model.Version,
		)
		return nil, errors.Wrapf(errors.ErrLookupMiss,
			"cluster %d, model %s", clusterID, s.model.Version)
	}

	version := s.model.Version
	id := clusterID
	return &classification.Result{
		WorkoutID:         rec.ID,
		Label:             label,
		Confidence:        cluster.Confidence(distances, clusterID),
		Method:            classification.MethodMLTrained,
		State:             classification.StateMLClassified,
		ClusterID:         &id,
		CentroidDistances: distances,
		ScaledFeatures:    scaled,
		ModelVersion:      &version,
		Pace:              rec.Pace,
		RecordedAt:        rec.RecordedAt,
		ClassifiedAt:      time.Now().UTC(),
	}, nil
}

// fallbackStrategy wraps the era heuristic behind the strategy interface
type fallbackStrategy struct {
	fallback *EraFallback
}

func (s *fallbackStrategy) Method() classification.Method {
	return classification.MethodEraFallback
}

func (s *fallbackStrategy) Classify(rec *workout.Record, _ features.Vector) (*classification.Result, error) {
	return s.fallback.Classify(rec), nil
}
