package classification

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for classification result storage
type Repository interface {
	Store(ctx context.Context, result *Result) error
	StoreBatch(ctx context.Context, results []Result) error
	GetByWorkout(ctx context.Context, workoutID uuid.UUID) (*Result, error)

	// ListOutliers returns outlier results awaiting manual review
	ListOutliers(ctx context.Context, limit int) ([]Result, error)

	AddCorrection(ctx context.Context, c *Correction) error
	CountPendingCorrections(ctx context.Context) (int, error)
	MarkCorrectionsApplied(ctx context.Context) error
}

// StatsSink receives classified results for the downstream trend, consistency
// and anomaly analyzers. Outlier results are excluded until resolved.
type StatsSink interface {
	WriteResults(ctx context.Context, results []Result) error
}
