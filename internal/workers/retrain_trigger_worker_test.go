package workers

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cadence/internal/ml/cluster"
	"cadence/pkg/errors"
)

type fakeCorrectionCounter struct {
	pending int
	err     error
}

func (f *fakeCorrectionCounter) CountPendingCorrections(_ context.Context) (int, error) {
	return f.pending, f.err
}

type fakeRetrainer struct {
	calls int
	err   error
}

func (f *fakeRetrainer) Retrain(_ context.Context) (*cluster.Model, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &cluster.Model{Version: uuid.New(), TrainingSamples: 30}, nil
}

func TestRetrainTriggerWorker_BelowThreshold(t *testing.T) {
	retrainer := &fakeRetrainer{}
	w := NewRetrainTriggerWorker(&fakeCorrectionCounter{pending: 4}, retrainer, 10, time.Minute, true)

	require.NoError(t, w.Run(context.Background()))
	assert.Zero(t, retrainer.calls)
}

func TestRetrainTriggerWorker_ThresholdCrossed(t *testing.T) {
	retrainer := &fakeRetrainer{}
	w := NewRetrainTriggerWorker(&fakeCorrectionCounter{pending: 10}, retrainer, 10, time.Minute, true)

	require.NoError(t, w.Run(context.Background()))
	assert.Equal(t, 1, retrainer.calls)
}

func TestRetrainTriggerWorker_CountFailure(t *testing.T) {
	retrainer := &fakeRetrainer{}
	counter := &fakeCorrectionCounter{err: errors.New("postgres down")}
	w := NewRetrainTriggerWorker(counter, retrainer, 10, time.Minute, true)

	err := w.Run(context.Background())
	require.Error(t, err)
	assert.Zero(t, retrainer.calls)
}

// A concurrent retrain or a thin training set is routine, not a worker error
func TestRetrainTriggerWorker_ToleratedRetrainOutcomes(t *testing.T) {
	for _, cause := range []error{errors.ErrTrainingInProgress, errors.ErrInsufficientData} {
		retrainer := &fakeRetrainer{err: cause}
		w := NewRetrainTriggerWorker(&fakeCorrectionCounter{pending: 25}, retrainer, 10, time.Minute, true)

		assert.NoError(t, w.Run(context.Background()), "cause %v", cause)
		assert.Equal(t, 1, retrainer.calls)
		assert.NoError(t, w.LastError())
	}
}

func TestRetrainTriggerWorker_UnexpectedRetrainFailure(t *testing.T) {
	retrainer := &fakeRetrainer{err: errors.New("disk full")}
	w := NewRetrainTriggerWorker(&fakeCorrectionCounter{pending: 25}, retrainer, 10, time.Minute, true)

	err := w.Run(context.Background())
	require.Error(t, err)
	assert.Error(t, w.LastError())
}
