package cluster

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cadence/internal/domain/classification"
	"cadence/internal/ml/features"
	"cadence/pkg/errors"
)

// threeGroupVectors builds a training set with three well-separated pace
// bands: fast runs, mixed sessions and slow walks.
func threeGroupVectors(perGroup int) []features.Vector {
	rng := rand.New(rand.NewSource(1))
	var out []features.Vector

	groups := []struct {
		pace, distance, duration float64
	}{
		{9.5, 5.0, 45.0},  // focused runs
		{14.0, 3.5, 50.0}, // mixed
		{25.0, 2.0, 55.0}, // leisure walks
	}

	for _, g := range groups {
		for i := 0; i < perGroup; i++ {
			out = append(out, features.Vector{
				Pace:     g.pace + rng.Float64(),
				Distance: g.distance + rng.Float64()*0.5,
				Duration: g.duration + rng.Float64()*5,
			})
		}
	}
	return out
}

func TestTrain_InsufficientData(t *testing.T) {
	vectors := threeGroupVectors(2) // 6 samples

	model, err := Train(vectors, TrainerConfig{Seed: 42})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInsufficientData))
	assert.Nil(t, model)
}

func TestTrain_MinSamplesBoundary(t *testing.T) {
	vectors := threeGroupVectors(7) // 21 samples

	_, err := Train(vectors[:19], TrainerConfig{Seed: 42, MinSamples: 20})
	assert.True(t, errors.Is(err, errors.ErrInsufficientData))

	model, err := Train(vectors[:20], TrainerConfig{Seed: 42, MinSamples: 20})
	require.NoError(t, err)
	assert.NotNil(t, model)
}

func TestTrain_ModelShape(t *testing.T) {
	model, err := Train(threeGroupVectors(10), TrainerConfig{Seed: 42})
	require.NoError(t, err)

	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", model.Version.String())
	assert.False(t, model.TrainedAt.IsZero())
	assert.Equal(t, features.FeatureNames, model.FeatureNames)
	assert.Len(t, model.Centroids, NumClusters)
	assert.Len(t, model.ClusterToLabel, NumClusters)
	assert.Equal(t, 30, model.TrainingSamples)
	assert.Len(t, model.Scaler.Mean, len(features.FeatureNames))
	assert.Len(t, model.Scaler.Std, len(features.FeatureNames))
}

// Labels are assigned by pace rank, not by raw cluster index: whichever id the
// clustering handed the slowest centroid must map to leisure_walk.
func TestTrain_LabelsByPaceRank(t *testing.T) {
	model, err := Train(threeGroupVectors(10), TrainerConfig{Seed: 42})
	require.NoError(t, err)

	byLabel := make(map[classification.Label]classification.ClusterID)
	for id, label := range model.ClusterToLabel {
		byLabel[label] = id
	}
	require.Len(t, byLabel, 3, "each label maps to exactly one cluster")

	fast := model.Centroids[byLabel[classification.LabelFocusedRun]][0]
	mid := model.Centroids[byLabel[classification.LabelMixed]][0]
	slow := model.Centroids[byLabel[classification.LabelLeisureWalk]][0]

	assert.Less(t, fast, mid)
	assert.Less(t, mid, slow)
}

// Every id Predict can produce has a label: training and lookup share the
// typed id end to end.
func TestTrain_PredictLabelRoundTrip(t *testing.T) {
	vectors := threeGroupVectors(10)
	model, err := Train(vectors, TrainerConfig{Seed: 42})
	require.NoError(t, err)

	for _, v := range vectors {
		scaled := model.Scaler.Transform(v.ToSlice())
		id, distances := model.Predict(scaled)

		label, ok := model.Label(id)
		require.True(t, ok, "cluster %d missing from label map", id)
		assert.True(t, label.Valid())
		assert.Len(t, distances, NumClusters)
	}
}

func TestTrain_SeparatedGroupsGetExpectedLabels(t *testing.T) {
	model, err := Train(threeGroupVectors(10), TrainerConfig{Seed: 42})
	require.NoError(t, err)

	classify := func(v features.Vector) classification.Label {
		id, _ := model.Predict(model.Scaler.Transform(v.ToSlice()))
		label, ok := model.Label(id)
		require.True(t, ok)
		return label
	}

	assert.Equal(t, classification.LabelFocusedRun, classify(features.Vector{Pace: 9.8, Distance: 5.2, Duration: 46}))
	assert.Equal(t, classification.LabelMixed, classify(features.Vector{Pace: 14.3, Distance: 3.6, Duration: 52}))
	assert.Equal(t, classification.LabelLeisureWalk, classify(features.Vector{Pace: 25.5, Distance: 2.1, Duration: 57}))
}

func TestTrain_DeterministicForSeed(t *testing.T) {
	vectors := threeGroupVectors(10)

	a, err := Train(vectors, TrainerConfig{Seed: 42})
	require.NoError(t, err)
	b, err := Train(vectors, TrainerConfig{Seed: 42})
	require.NoError(t, err)

	assert.Equal(t, a.Centroids, b.Centroids)
	assert.Equal(t, a.ClusterToLabel, b.ClusterToLabel)
	assert.NotEqual(t, a.Version, b.Version, "every training run is a new version")
}

// Constant features degrade to std 1 instead of dividing by zero
func TestTrain_ConstantFeature(t *testing.T) {
	var vectors []features.Vector
	for i := 0; i < 30; i++ {
		vectors = append(vectors, features.Vector{
			Pace:     10.0 + float64(i%3)*8,
			Distance: 5.0, // zero spread
			Duration: 40.0 + float64(i%3)*10,
		})
	}

	model, err := Train(vectors, TrainerConfig{Seed: 42})
	require.NoError(t, err)
	assert.Equal(t, 1.0, model.Scaler.Std[1])
}
