package classification

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Label is the semantic activity label assigned to a workout
type Label string

const (
	LabelFocusedRun  Label = "focused_run"
	LabelMixed       Label = "mixed"
	LabelLeisureWalk Label = "leisure_walk"
	LabelOutlier     Label = "outlier"
)

// Valid checks if the label is valid
func (l Label) Valid() bool {
	switch l {
	case LabelFocusedRun, LabelMixed, LabelLeisureWalk, LabelOutlier:
		return true
	}
	return false
}

// String returns string representation
func (l Label) String() string {
	return string(l)
}

// Method records how a label was derived. Fallback-derived confidence must
// never be confused with ML-derived confidence downstream, so method always
// travels alongside confidence.
type Method string

const (
	MethodMLTrained   Method = "ml_trained"
	MethodEraFallback Method = "era_fallback"
)

// Valid checks if the method is valid
func (m Method) Valid() bool {
	return m == MethodMLTrained || m == MethodEraFallback
}

// String returns string representation
func (m Method) String() string {
	return string(m)
}

// State is the terminal state of a single record's classification.
// Unclassified re-entry happens only through an explicit reclassification
// trigger, which reruns the full pipeline.
type State string

const (
	StateMLClassified       State = "ml_classified"
	StateFallbackClassified State = "fallback_classified"
	StateOutlier            State = "outlier"
)

// ClusterID is the typed identifier a clustering run assigns to a centroid.
// The same type is used from training through persistence to inference-time
// lookup, which makes a key-type mismatch between the label map and the
// predict step structurally impossible.
type ClusterID int

// String returns the decimal form used by the persisted artifact encoding
func (c ClusterID) String() string {
	return strconv.Itoa(int(c))
}

// ParseClusterID decodes the artifact string form back into a typed id
func ParseClusterID(s string) (ClusterID, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	return ClusterID(n), nil
}

// Result is the immutable outcome of classifying one workout record.
// Created once per classification call and consumed by the transparency and
// statistics layers.
type Result struct {
	WorkoutID  uuid.UUID `db:"workout_id"`
	Label      Label     `db:"label"`
	Confidence float64   `db:"confidence"`
	Method     Method    `db:"method"`
	State      State     `db:"state"`

	// Set only when State == StateMLClassified
	ClusterID         *ClusterID      `db:"cluster_id"`
	CentroidDistances pq.Float64Array `db:"centroid_distances"`
	ScaledFeatures    pq.Float64Array `db:"scaled_features"`
	ModelVersion      *uuid.UUID      `db:"model_version"`

	// Set only when State == StateOutlier
	Reason string `db:"reason"`

	// Raw performance metric carried for the statistics consumers
	Pace       float64   `db:"pace"`
	RecordedAt time.Time `db:"recorded_at"`

	ClassifiedAt time.Time `db:"classified_at"`
}

// BatchStatus annotates a batch classification call with per-outcome counts.
// A per-record error never aborts a batch; it shows up here instead.
type BatchStatus struct {
	Total    int `json:"total"`
	ML       int `json:"ml"`
	Fallback int `json:"fallback"`
	Outliers int `json:"outliers"`
}

// Add tallies one result into the status
func (b *BatchStatus) Add(r *Result) {
	b.Total++
	switch r.State {
	case StateMLClassified:
		b.ML++
	case StateFallbackClassified:
		b.Fallback++
	case StateOutlier:
		b.Outliers++
	}
}

// Correction is a user-supplied label fix. Accumulated corrections trigger an
// administrative retrain; applying them invalidates the cached result for the
// workout and re-enters it into the pipeline.
type Correction struct {
	ID             int64     `db:"id"`
	WorkoutID      uuid.UUID `db:"workout_id"`
	CorrectedLabel Label     `db:"corrected_label"`
	Applied        bool      `db:"applied"`
	CreatedAt      time.Time `db:"created_at"`
}
