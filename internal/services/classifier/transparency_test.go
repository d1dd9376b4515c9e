package classifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cadence/internal/domain/classification"
)

func TestExplain_MLResult(t *testing.T) {
	svc := newTestService(t)
	model := scenarioModel()
	svc.SetModel(model)

	rec := runRecord()
	res := svc.Classify(context.Background(), rec)

	exp := Explain(res, model)

	assert.Equal(t, rec.ID.String(), exp.WorkoutID)
	assert.Equal(t, "focused_run", exp.Label)
	assert.Equal(t, "ml_trained", exp.Method)
	assert.Equal(t, "ml_classified", exp.State)
	assert.Equal(t, res.Confidence, exp.Confidence)

	require.NotNil(t, exp.ClusterID)
	assert.Len(t, exp.CentroidDistances, 3)
	assert.Len(t, exp.ScaledFeatures, 3)
	assert.Equal(t, model.Version.String(), exp.ModelVersion)
	assert.Contains(t, exp.Formula, "distance to assigned centroid")

	// Per-centroid labels let the UI say "closest to your typical runs"
	assert.Equal(t, []string{"focused_run", "mixed", "leisure_walk"}, exp.CentroidLabels)
	assert.Equal(t, []string{"pace", "distance", "duration"}, exp.FeatureNames)
}

// Centroid labels come from the model the result was computed with; after a
// retrain the stored result no longer matches and the stale trail is omitted.
func TestExplain_ModelVersionMismatch(t *testing.T) {
	svc := newTestService(t)
	model := scenarioModel()
	svc.SetModel(model)

	res := svc.Classify(context.Background(), runRecord())

	newer := scenarioModel() // fresh version
	exp := Explain(res, newer)

	assert.NotEmpty(t, exp.CentroidDistances)
	assert.Empty(t, exp.CentroidLabels)
	assert.Empty(t, exp.FeatureNames)
}

func TestExplain_FallbackResult(t *testing.T) {
	svc := newTestService(t)

	res := svc.Classify(context.Background(), runRecord())
	exp := Explain(res, nil)

	assert.Equal(t, "era_fallback", exp.Method)
	assert.Equal(t, "fallback_classified", exp.State)
	assert.Equal(t, 0.4, exp.Confidence)
	assert.Nil(t, exp.ClusterID)
	assert.Empty(t, exp.CentroidDistances)
	assert.Empty(t, exp.Formula)
}

func TestExplain_OutlierResult(t *testing.T) {
	svc := newTestService(t)
	svc.SetModel(scenarioModel())

	rec := runRecord()
	rec.Distance = -1

	res := svc.Classify(context.Background(), rec)
	exp := Explain(res, svc.CurrentModel())

	assert.Equal(t, "outlier", exp.Label)
	assert.Equal(t, "outlier", exp.State)
	assert.NotEmpty(t, exp.Reason)
	assert.Empty(t, exp.Method)
	assert.Nil(t, exp.ClusterID)
}

func TestExplain_OutcomeIsOneOfThreeStates(t *testing.T) {
	svc := newTestService(t)
	svc.SetModel(scenarioModel())

	outlier := runRecord()
	outlier.Pace = 200

	valid := []string{
		string(classification.StateMLClassified),
		string(classification.StateFallbackClassified),
		string(classification.StateOutlier),
	}

	for _, rec := range []*struct {
		name string
		res  *classification.Result
	}{
		{"ml", svc.Classify(context.Background(), runRecord())},
		{"outlier", svc.Classify(context.Background(), outlier)},
	} {
		exp := Explain(rec.res, svc.CurrentModel())
		assert.Contains(t, valid, exp.State, rec.name)
	}
}
