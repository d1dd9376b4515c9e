package cluster

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"cadence/internal/domain/classification"
	"cadence/internal/ml/features"
	"cadence/pkg/errors"
)

// Store persists the clustering model as a single atomic artifact. Scaler,
// centroids and the label map are always written and read together, never
// partially.
type Store struct {
	path string
}

// NewStore creates a model store rooted at the given artifact path
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the artifact location
func (s *Store) Path() string {
	return s.path
}

// artifact is the on-disk JSON shape. JSON object keys are strings, so the
// label map is encoded with string keys and explicitly coerced back to typed
// cluster ids on load; the decode path owns that conversion rather than
// trusting the encoding format to preserve key types.
type artifact struct {
	Version         string            `json:"version"`
	TrainedAt       time.Time         `json:"trained_at"`
	FeatureNames    []string          `json:"feature_names"`
	Scaler          scalerArtifact    `json:"scaler"`
	Centroids       [][]float64       `json:"centroids"`
	ClusterToLabel  map[string]string `json:"cluster_to_label"`
	TrainingSamples int               `json:"training_samples"`
}

type scalerArtifact struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// Save writes the model atomically: the artifact lands in a temporary file in
// the destination directory and is renamed into place, so a crash mid-save
// can never pair scaler parameters from one version with a label map from
// another.
func (s *Store) Save(m *Model) error {
	art := artifact{
		Version:         m.Version.String(),
		TrainedAt:       m.TrainedAt,
		FeatureNames:    m.FeatureNames,
		Scaler:          scalerArtifact{Mean: m.Scaler.Mean, Std: m.Scaler.Std},
		Centroids:       m.Centroids,
		ClusterToLabel:  make(map[string]string, len(m.ClusterToLabel)),
		TrainingSamples: m.TrainingSamples,
	}
	for id, label := range m.ClusterToLabel {
		art.ClusterToLabel[id.String()] = label.String()
	}

	data, err := json.MarshalIndent(art, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode model artifact")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "failed to create artifact directory")
	}

	tmp, err := os.CreateTemp(dir, ".cluster_model-*.tmp")
	if err != nil {
		return errors.Wrap(err, "failed to create temp artifact")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "failed to write temp artifact")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "failed to sync temp artifact")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "failed to close temp artifact")
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "failed to replace model artifact")
	}

	return nil
}

// Load reads the persisted model and reconstitutes the label map keys into
// the exact typed ids used at training time. Any missing or corrupt artifact
// yields ErrModelUnavailable; inference then runs fallback-only instead of
// failing.
func (s *Store) Load() (*Model, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(errors.ErrModelUnavailable, "no artifact at %s", s.path)
		}
		return nil, errors.Wrapf(errors.ErrModelUnavailable, "reading %s: %v", s.path, err)
	}

	var art artifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, errors.Wrapf(errors.ErrModelUnavailable, "corrupt artifact %s: %v", s.path, err)
	}

	if err := validateArtifact(&art); err != nil {
		return nil, errors.Wrapf(errors.ErrModelUnavailable, "incomplete artifact %s: %v", s.path, err)
	}

	version, err := uuid.Parse(art.Version)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrModelUnavailable, "bad version in %s: %v", s.path, err)
	}

	labels := make(map[classification.ClusterID]classification.Label, len(art.ClusterToLabel))
	for key, value := range art.ClusterToLabel {
		id, err := classification.ParseClusterID(key)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrModelUnavailable,
				"non-integer cluster key %q in %s", key, s.path)
		}
		label := classification.Label(value)
		if !label.Valid() {
			return nil, errors.Wrapf(errors.ErrModelUnavailable,
				"unknown label %q in %s", value, s.path)
		}
		labels[id] = label
	}

	return &Model{
		Version:         version,
		TrainedAt:       art.TrainedAt,
		FeatureNames:    art.FeatureNames,
		Scaler:          Scaler{Mean: art.Scaler.Mean, Std: art.Scaler.Std},
		Centroids:       art.Centroids,
		ClusterToLabel:  labels,
		TrainingSamples: art.TrainingSamples,
	}, nil
}

// validateArtifact rejects partially written or structurally inconsistent
// artifacts before they can reach the classifier
func validateArtifact(art *artifact) error {
	if len(art.Centroids) != NumClusters {
		return errors.Newf("expected %d centroids, got %d", NumClusters, len(art.Centroids))
	}
	if len(art.ClusterToLabel) != NumClusters {
		return errors.Newf("expected %d label entries, got %d", NumClusters, len(art.ClusterToLabel))
	}
	// The artifact must describe the exact feature set inference feeds it.
	// An internally consistent artifact with a different dimension would
	// pass every other check and then blow up inside Scaler.Transform on
	// the first classified record.
	if len(art.FeatureNames) != len(features.FeatureNames) {
		return errors.Newf("artifact features %v do not match expected %v",
			art.FeatureNames, features.FeatureNames)
	}
	for i, name := range features.FeatureNames {
		if art.FeatureNames[i] != name {
			return errors.Newf("artifact features %v do not match expected %v",
				art.FeatureNames, features.FeatureNames)
		}
	}
	dim := len(features.FeatureNames)
	if len(art.Scaler.Mean) != dim || len(art.Scaler.Std) != dim {
		return errors.New("scaler dimensions do not match feature names")
	}
	for _, c := range art.Centroids {
		if len(c) != dim {
			return errors.New("centroid dimensions do not match feature names")
		}
	}
	return nil
}
