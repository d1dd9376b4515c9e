package workout

import (
	"time"

	"github.com/google/uuid"
)

// Record represents one logged exercise session. Immutable once ingested;
// pace, distance and duration arrive coarsely range-checked from the import
// layer and are re-validated defensively before classification.
type Record struct {
	ID         uuid.UUID `db:"id"`
	RecordedAt time.Time `db:"recorded_at"`

	// Pace in minutes per distance unit, distance in units, duration in minutes
	Pace     float64 `db:"pace"`
	Distance float64 `db:"distance"`
	Duration float64 `db:"duration"`

	// Optional secondary metrics, not used for clustering
	AvgHeartRate  *float64 `db:"avg_heart_rate"`
	ElevationGain *float64 `db:"elevation_gain"`

	CreatedAt time.Time `db:"created_at"`
}
