package features

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cadence/internal/domain/workout"
)

func makeRecord(pace, distance, duration float64) *workout.Record {
	return &workout.Record{
		ID:         uuid.New(),
		RecordedAt: time.Date(2023, 6, 15, 7, 30, 0, 0, time.UTC),
		Pace:       pace,
		Distance:   distance,
		Duration:   duration,
	}
}

func TestPrepare_ValidRecord(t *testing.T) {
	rec := makeRecord(10.0, 3.0, 30.0)

	fv, violation := Prepare(rec)
	require.Nil(t, violation)

	assert.Equal(t, Vector{Pace: 10.0, Distance: 3.0, Duration: 30.0}, fv)
	assert.Equal(t, []float64{10.0, 3.0, 30.0}, fv.ToSlice())
}

func TestPrepare_BoundaryValues(t *testing.T) {
	// Bounds are inclusive on the plausible side
	for _, rec := range []*workout.Record{
		makeRecord(MinPace, 1.0, 10.0),
		makeRecord(MaxPace, 1.0, 10.0),
		makeRecord(10.0, MaxDistance, 10.0),
		makeRecord(10.0, 1.0, MaxDuration),
	} {
		_, violation := Prepare(rec)
		assert.Nil(t, violation, "record %+v should be valid", rec)
	}
}

func TestPrepare_Violations(t *testing.T) {
	tests := []struct {
		name  string
		rec   *workout.Record
		field string
	}{
		{"pace below minimum", makeRecord(0.5, 3.0, 30.0), "pace"},
		{"pace above maximum", makeRecord(150.0, 3.0, 30.0), "pace"},
		{"zero distance", makeRecord(10.0, 0, 30.0), "distance"},
		{"negative distance", makeRecord(10.0, -2.0, 30.0), "distance"},
		{"distance above ceiling", makeRecord(10.0, 600.0, 30.0), "distance"},
		{"zero duration", makeRecord(10.0, 3.0, 0), "duration"},
		{"negative duration", makeRecord(10.0, 3.0, -10.0), "duration"},
		{"duration above ceiling", makeRecord(10.0, 3.0, 2000.0), "duration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, violation := Prepare(tt.rec)
			require.NotNil(t, violation)
			assert.Equal(t, tt.field, violation.Field)
			assert.NotEmpty(t, violation.Error())
		})
	}
}

// A GPS-glitch pace like 0.5 min per unit must route to review, never to a
// cluster.
func TestPrepare_ImplausiblePaceIsNotClassified(t *testing.T) {
	rec := makeRecord(0.5, 3.0, 30.0)

	_, violation := Prepare(rec)
	require.NotNil(t, violation)
	assert.Equal(t, "pace", violation.Field)
	assert.Equal(t, 0.5, violation.Value)
}

func TestPrepare_IsPure(t *testing.T) {
	rec := makeRecord(12.0, 5.0, 60.0)
	before := *rec

	_, violation := Prepare(rec)
	require.Nil(t, violation)
	assert.Equal(t, before, *rec, "Prepare must not mutate the record")
}
