package workers

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cadence/internal/domain/classification"
	"cadence/internal/ml/cluster"
	"cadence/pkg/errors"
)

type fakeClassifier struct {
	model        *cluster.Model
	historyRuns  int
	historyError error
	status       classification.BatchStatus
}

func (f *fakeClassifier) CurrentModel() *cluster.Model {
	return f.model
}

func (f *fakeClassifier) ClassifyHistory(_ context.Context) (classification.BatchStatus, error) {
	f.historyRuns++
	return f.status, f.historyError
}

// fakeMarkerStore mimics the redis wrapper contract: Get fills a string dest
// and reports goredis.Nil for absent keys.
type fakeMarkerStore struct {
	values map[string]string
}

func newFakeMarkerStore() *fakeMarkerStore {
	return &fakeMarkerStore{values: make(map[string]string)}
}

func (f *fakeMarkerStore) Get(_ context.Context, key string, dest interface{}) error {
	v, ok := f.values[key]
	if !ok {
		return goredis.Nil
	}
	*(dest.(*string)) = v
	return nil
}

func (f *fakeMarkerStore) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	f.values[key] = value.(string)
	return nil
}

func testClusterModel() *cluster.Model {
	return &cluster.Model{Version: uuid.New()}
}

func TestReclassifyWorker_NoModelSkips(t *testing.T) {
	fc := &fakeClassifier{}
	w := NewReclassifyWorker(fc, newFakeMarkerStore(), time.Minute, true)

	require.NoError(t, w.Run(context.Background()))
	assert.Zero(t, fc.historyRuns)
}

func TestReclassifyWorker_StaleMarkerTriggersHistory(t *testing.T) {
	fc := &fakeClassifier{
		model:  testClusterModel(),
		status: classification.BatchStatus{Total: 12, ML: 10, Outliers: 2},
	}
	marker := newFakeMarkerStore()
	w := NewReclassifyWorker(fc, marker, time.Minute, true)

	require.NoError(t, w.Run(context.Background()))
	assert.Equal(t, 1, fc.historyRuns)
	assert.Equal(t, fc.model.Version.String(), marker.values[reclassifyMarkerKey])

	// Marker now current: second tick is a no-op
	require.NoError(t, w.Run(context.Background()))
	assert.Equal(t, 1, fc.historyRuns)
}

func TestReclassifyWorker_VersionChangeReclassifies(t *testing.T) {
	fc := &fakeClassifier{model: testClusterModel()}
	marker := newFakeMarkerStore()
	w := NewReclassifyWorker(fc, marker, time.Minute, true)

	require.NoError(t, w.Run(context.Background()))
	require.Equal(t, 1, fc.historyRuns)

	// A retrain swapped the model
	fc.model = testClusterModel()

	require.NoError(t, w.Run(context.Background()))
	assert.Equal(t, 2, fc.historyRuns)
	assert.Equal(t, fc.model.Version.String(), marker.values[reclassifyMarkerKey])
}

func TestReclassifyWorker_HistoryFailureKeepsMarkerStale(t *testing.T) {
	fc := &fakeClassifier{
		model:        testClusterModel(),
		historyError: errors.New("postgres down"),
	}
	marker := newFakeMarkerStore()
	w := NewReclassifyWorker(fc, marker, time.Minute, true)

	err := w.Run(context.Background())
	require.Error(t, err)
	assert.NotContains(t, marker.values, reclassifyMarkerKey,
		"marker must not advance past a failed run")
	assert.Error(t, w.LastError())

	// Next tick retries
	fc.historyError = nil
	require.NoError(t, w.Run(context.Background()))
	assert.Equal(t, 2, fc.historyRuns)
}
