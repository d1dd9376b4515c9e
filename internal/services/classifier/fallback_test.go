package classifier

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cadence/internal/domain/classification"
	"cadence/internal/domain/workout"
)

var testCutover = time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)

func recordAt(recordedAt time.Time) *workout.Record {
	return &workout.Record{
		ID:         uuid.New(),
		RecordedAt: recordedAt,
		Pace:       15.0,
		Distance:   3.0,
		Duration:   45.0,
	}
}

func TestEraFallback_CutoverBoundary(t *testing.T) {
	fallback := NewEraFallback(testCutover, 0.4)

	tests := []struct {
		name       string
		recordedAt time.Time
		want       classification.Label
	}{
		{"well before cutover", time.Date(2015, 6, 1, 8, 0, 0, 0, time.UTC), classification.LabelLeisureWalk},
		{"one second before cutover", testCutover.Add(-time.Second), classification.LabelLeisureWalk},
		{"exactly at cutover", testCutover, classification.LabelFocusedRun},
		{"one second after cutover", testCutover.Add(time.Second), classification.LabelFocusedRun},
		{"years after cutover", time.Date(2024, 2, 10, 18, 30, 0, 0, time.UTC), classification.LabelFocusedRun},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := fallback.Classify(recordAt(tt.recordedAt))
			assert.Equal(t, tt.want, res.Label)
		})
	}
}

func TestEraFallback_ResultShape(t *testing.T) {
	fallback := NewEraFallback(testCutover, 0.4)
	rec := recordAt(time.Date(2023, 5, 1, 7, 0, 0, 0, time.UTC))

	res := fallback.Classify(rec)

	assert.Equal(t, rec.ID, res.WorkoutID)
	assert.Equal(t, 0.4, res.Confidence, "fallback confidence is fixed, never derived")
	assert.Equal(t, classification.MethodEraFallback, res.Method)
	assert.Equal(t, classification.StateFallbackClassified, res.State)
	assert.Nil(t, res.ClusterID)
	assert.Nil(t, res.ModelVersion)
	assert.Empty(t, res.CentroidDistances)
}

// Identical timestamps on the same side of the cutover always get the same
// label, regardless of every other feature.
func TestEraFallback_MonotoneInTime(t *testing.T) {
	fallback := NewEraFallback(testCutover, 0.4)

	a := recordAt(time.Date(2016, 3, 1, 6, 0, 0, 0, time.UTC))
	a.Pace = 5.0
	b := recordAt(time.Date(2016, 3, 1, 6, 0, 0, 0, time.UTC))
	b.Pace = 80.0

	resA := fallback.Classify(a)
	resB := fallback.Classify(b)
	require.Equal(t, resA.Label, resB.Label)
	assert.Equal(t, classification.LabelLeisureWalk, resA.Label)
}
