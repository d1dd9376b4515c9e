package workers

import (
	"context"
	"time"

	"cadence/internal/ml/cluster"
	"cadence/pkg/errors"
)

// correctionCounter reports how many user corrections are waiting to be
// folded into the next model
type correctionCounter interface {
	CountPendingCorrections(ctx context.Context) (int, error)
}

// retrainer triggers a full retrain cycle
type retrainer interface {
	Retrain(ctx context.Context) (*cluster.Model, error)
}

// RetrainTriggerWorker fires a retrain once enough pending corrections have
// accumulated. Corrections signal that the current cluster boundaries drift
// from user perception, so the model is refit rather than patched.
type RetrainTriggerWorker struct {
	*BaseWorker
	corrections correctionCounter
	training    retrainer
	threshold   int
}

// NewRetrainTriggerWorker creates a new retrain trigger worker
func NewRetrainTriggerWorker(corrections correctionCounter, training retrainer, threshold int, interval time.Duration, enabled bool) *RetrainTriggerWorker {
	return &RetrainTriggerWorker{
		BaseWorker:  NewBaseWorker("retrain_trigger", interval, enabled),
		corrections: corrections,
		training:    training,
		threshold:   threshold,
	}
}

// Run counts pending corrections and retrains when the threshold is crossed
func (w *RetrainTriggerWorker) Run(ctx context.Context) error {
	pending, err := w.corrections.CountPendingCorrections(ctx)
	if err != nil {
		w.RecordError(err)
		return errors.Wrap(err, "count pending corrections")
	}

	if pending < w.threshold {
		w.Log().Debugw("Pending corrections below retrain threshold",
			"pending", pending,
			"threshold", w.threshold,
		)
		w.RecordRun()
		return nil
	}

	w.Log().Infow("Correction threshold crossed, triggering retrain",
		"pending", pending,
		"threshold", w.threshold,
	)

	model, err := w.training.Retrain(ctx)
	if err != nil {
		switch {
		case errors.Is(err, errors.ErrTrainingInProgress):
			w.Log().Debug("Retrain already in progress, will retry next tick")
			w.RecordRun()
			return nil
		case errors.Is(err, errors.ErrInsufficientData):
			w.Log().Warnw("Retrain skipped, not enough valid training samples",
				"pending_corrections", pending,
			)
			w.RecordRun()
			return nil
		default:
			w.RecordError(err)
			return errors.Wrap(err, "trigger retrain")
		}
	}

	w.Log().Infow("Retrain triggered by corrections completed",
		"model_version", model.Version,
		"training_samples", model.TrainingSamples,
	)

	w.RecordRun()
	return nil
}
