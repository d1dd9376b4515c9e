package classifier

import (
	"time"

	"cadence/internal/domain/classification"
	"cadence/internal/domain/workout"
)

// EraFallback is the date-threshold heuristic used only when the trained
// model is unavailable or a label lookup fails. It is a pure function of the
// record's timestamp against one configured cutover date and returns exactly
// two labels with a fixed, low confidence. Results always carry
// method=era_fallback so consumers can discount them.
type EraFallback struct {
	cutover    time.Time
	confidence float64
}

// NewEraFallback creates the fallback classifier
func NewEraFallback(cutover time.Time, confidence float64) *EraFallback {
	return &EraFallback{cutover: cutover, confidence: confidence}
}

// Confidence returns the fixed confidence attached to every fallback result
func (f *EraFallback) Confidence() float64 {
	return f.confidence
}

// Classify labels a record by era: the walking era before the cutover, the
// running era from it onward.
func (f *EraFallback) Classify(rec *workout.Record) *classification.Result {
	label := classification.LabelFocusedRun
	if rec.RecordedAt.Before(f.cutover) {
		label = classification.LabelLeisureWalk
	}

	return &classification.Result{
		WorkoutID:    rec.ID,
		Label:        label,
		Confidence:   f.confidence,
		Method:       classification.MethodEraFallback,
		State:        classification.StateFallbackClassified,
		Pace:         rec.Pace,
		RecordedAt:   rec.RecordedAt,
		ClassifiedAt: time.Now().UTC(),
	}
}
