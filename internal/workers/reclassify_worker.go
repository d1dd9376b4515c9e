package workers

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"
	goredis "github.com/redis/go-redis/v9"

	"cadence/internal/domain/classification"
	"cadence/internal/ml/cluster"
	"cadence/pkg/errors"
)

// reclassifyMarkerKey stores the version of the model whose results are
// currently persisted for the full history.
const reclassifyMarkerKey = "reclassified_model_version"

// historyClassifier is the classifier surface the worker needs
type historyClassifier interface {
	CurrentModel() *cluster.Model
	ClassifyHistory(ctx context.Context) (classification.BatchStatus, error)
}

// markerStore persists the last-applied model version marker
type markerStore interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// ReclassifyWorker re-runs the full classification history whenever the
// active model version differs from the one whose results are persisted.
// A retrain swaps the model in memory; this worker catches up the stored
// results in chunks on its next tick.
type ReclassifyWorker struct {
	*BaseWorker
	classifier historyClassifier
	marker     markerStore
}

// NewReclassifyWorker creates a new reclassify worker
func NewReclassifyWorker(classifier historyClassifier, marker markerStore, interval time.Duration, enabled bool) *ReclassifyWorker {
	return &ReclassifyWorker{
		BaseWorker: NewBaseWorker("reclassify", interval, enabled),
		classifier: classifier,
		marker:     marker,
	}
}

// Run checks the version marker and reclassifies history when it is stale
func (w *ReclassifyWorker) Run(ctx context.Context) error {
	model := w.classifier.CurrentModel()
	if model == nil {
		w.Log().Debug("No model loaded, skipping reclassification check")
		w.RecordRun()
		return nil
	}

	currentVersion := model.Version.String()

	var appliedVersion string
	if err := w.marker.Get(ctx, reclassifyMarkerKey, &appliedVersion); err != nil && !errors.Is(err, goredis.Nil) {
		w.Log().Warnw("Failed to read reclassification marker, assuming stale",
			"error", err,
		)
	}

	if appliedVersion == currentVersion {
		w.RecordRun()
		return nil
	}

	w.Log().Infow("Model version changed, reclassifying history",
		"applied_version", appliedVersion,
		"current_version", currentVersion,
	)

	status, err := w.classifier.ClassifyHistory(ctx)
	if err != nil {
		w.RecordError(err)
		return errors.Wrap(err, "reclassify history")
	}

	if err := w.marker.Set(ctx, reclassifyMarkerKey, currentVersion, 0); err != nil {
		w.Log().Warnw("Failed to update reclassification marker",
			"error", err,
		)
	}

	w.Log().Infow("History reclassification completed",
		"total", humanize.Comma(int64(status.Total)),
		"ml", status.ML,
		"fallback", status.Fallback,
		"outliers", status.Outliers,
		"model_version", currentVersion,
	)

	w.RecordRun()
	return nil
}
