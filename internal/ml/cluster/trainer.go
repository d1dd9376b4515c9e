package cluster

import (
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"cadence/internal/domain/classification"
	"cadence/internal/ml/features"
	"cadence/pkg/errors"
	"cadence/pkg/logger"
)

// NumClusters is fixed at 3 by design: the label vocabulary is positional
// (focused run / mixed / leisure walk) and is not configurable.
const NumClusters = 3

// DefaultMinTrainingSamples is the smallest training set the trainer accepts
const DefaultMinTrainingSamples = 20

// paceFeature is the index of pace in the canonical feature order; centroid
// ranking keys on it
const paceFeature = 0

// TrainerConfig controls a training run
type TrainerConfig struct {
	Seed       int64
	MinSamples int
}

// Train fits a standardization transform and a fixed-k clustering over the
// given feature vectors and derives the cluster-to-label mapping by ranking
// centroids on their pace component. Raw cluster indices are not stable
// across retrains, so labels are never assigned by index order: the
// lowest-pace centroid becomes focused_run, the middle mixed, the highest
// leisure_walk, whatever ids the clustering happened to hand out.
func Train(vectors []features.Vector, cfg TrainerConfig) (*Model, error) {
	minSamples := cfg.MinSamples
	if minSamples <= 0 {
		minSamples = DefaultMinTrainingSamples
	}
	if len(vectors) < minSamples {
		return nil, errors.Wrapf(errors.ErrInsufficientData,
			"%d samples, need at least %d", len(vectors), minSamples)
	}

	log := logger.Get().With("component", "trainer")
	start := time.Now()

	raw := make([][]float64, len(vectors))
	for i, v := range vectors {
		raw[i] = v.ToSlice()
	}

	scaler := fitScaler(raw)
	scaled := make([][]float64, len(raw))
	for i, r := range raw {
		scaled[i] = scaler.Transform(r)
	}

	centroids := runKMeans(scaled, NumClusters, cfg.Seed)

	model := &Model{
		Version:         uuid.New(),
		TrainedAt:       time.Now().UTC(),
		FeatureNames:    features.FeatureNames,
		Scaler:          scaler,
		Centroids:       centroids,
		ClusterToLabel:  labelByPaceRank(centroids),
		TrainingSamples: len(vectors),
	}

	log.Infow("Model trained",
		"version", model.Version,
		"samples", humanize.Comma(int64(len(vectors))),
		"duration", time.Since(start),
		"labels", model.ClusterToLabel,
	)

	return model, nil
}

// fitScaler computes per-feature mean and standard deviation. A zero spread
// degenerates to std 1 so the transform stays defined.
func fitScaler(raw [][]float64) Scaler {
	dim := len(raw[0])
	mean := make([]float64, dim)
	std := make([]float64, dim)

	col := make([]float64, len(raw))
	for j := 0; j < dim; j++ {
		for i := range raw {
			col[i] = raw[i][j]
		}
		mean[j] = stat.Mean(col, nil)
		std[j] = stat.StdDev(col, nil)
		if std[j] == 0 {
			std[j] = 1
		}
	}

	return Scaler{Mean: mean, Std: std}
}

// labelByPaceRank maps each raw cluster id to its semantic label by ordering
// centroids on the pace component ascending. Standardization is monotonic, so
// ranking scaled pace ranks raw pace. The map keys are the same typed ids
// Predict returns at inference time; no intermediate textual encoding.
func labelByPaceRank(centroids [][]float64) map[classification.ClusterID]classification.Label {
	ranked := []classification.Label{
		classification.LabelFocusedRun,
		classification.LabelMixed,
		classification.LabelLeisureWalk,
	}

	ids := make([]int, len(centroids))
	for i := range ids {
		ids[i] = i
	}
	sort.Slice(ids, func(a, b int) bool {
		return centroids[ids[a]][paceFeature] < centroids[ids[b]][paceFeature]
	})

	mapping := make(map[classification.ClusterID]classification.Label, len(ids))
	for rank, id := range ids {
		mapping[classification.ClusterID(id)] = ranked[rank]
	}
	return mapping
}
