package classifier

import (
	"cadence/internal/domain/classification"
	"cadence/internal/ml/cluster"
)

// confidenceFormula documents the locked-down normalization so the UI can
// render it without re-deriving internals
const confidenceFormula = "1 - (distance to assigned centroid / distance to farthest centroid)"

// Explanation is the external-facing projection of a classification result
// for the transparency layer. For ML results it carries everything needed to
// render a plain-language "why this label": the scaled feature vector, the
// full per-centroid distance vector and the label each centroid maps to.
type Explanation struct {
	WorkoutID  string  `json:"workout_id"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Method     string  `json:"method,omitempty"`
	State      string  `json:"state"`

	// Validation failure reason, set for outliers
	Reason string `json:"reason,omitempty"`

	// ML decision trail
	ClusterID         *classification.ClusterID `json:"cluster_id,omitempty"`
	CentroidDistances []float64                 `json:"centroid_distances,omitempty"`
	CentroidLabels    []string                  `json:"centroid_labels,omitempty"`
	ScaledFeatures    []float64                 `json:"scaled_features,omitempty"`
	FeatureNames      []string                  `json:"feature_names,omitempty"`
	ModelVersion      string                    `json:"model_version,omitempty"`
	Formula           string                    `json:"confidence_formula,omitempty"`
}

// Explain projects a result into its explainable form. The model may be nil
// for fallback or outlier results.
func Explain(res *classification.Result, model *cluster.Model) *Explanation {
	exp := &Explanation{
		WorkoutID:  res.WorkoutID.String(),
		Label:      res.Label.String(),
		Confidence: res.Confidence,
		Method:     res.Method.String(),
		State:      string(res.State),
		Reason:     res.Reason,
	}

	if res.State != classification.StateMLClassified {
		return exp
	}

	exp.ClusterID = res.ClusterID
	exp.CentroidDistances = res.CentroidDistances
	exp.ScaledFeatures = res.ScaledFeatures
	exp.Formula = confidenceFormula
	if res.ModelVersion != nil {
		exp.ModelVersion = res.ModelVersion.String()
	}

	if model != nil && res.ModelVersion != nil && model.Version == *res.ModelVersion {
		exp.FeatureNames = model.FeatureNames
		labels := make([]string, len(model.Centroids))
		for i := range model.Centroids {
			if label, ok := model.Label(classification.ClusterID(i)); ok {
				labels[i] = label.String()
			}
		}
		exp.CentroidLabels = labels
	}

	return exp
}
