package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"cadence/internal/domain/classification"
)

// Compile-time check
var _ classification.Repository = (*ClassificationRepository)(nil)

// ClassificationRepository implements classification.Repository using sqlx
type ClassificationRepository struct {
	db *sqlx.DB
}

// NewClassificationRepository creates a new classification repository
func NewClassificationRepository(db *sqlx.DB) *ClassificationRepository {
	return &ClassificationRepository{db: db}
}

const upsertResult = `
	INSERT INTO classifications (
		workout_id, label, confidence, method, state,
		cluster_id, centroid_distances, scaled_features, model_version,
		reason, pace, recorded_at, classified_at
	) VALUES (
		:workout_id, :label, :confidence, :method, :state,
		:cluster_id, :centroid_distances, :scaled_features, :model_version,
		:reason, :pace, :recorded_at, :classified_at
	)
	ON CONFLICT (workout_id) DO UPDATE SET
		label = EXCLUDED.label,
		confidence = EXCLUDED.confidence,
		method = EXCLUDED.method,
		state = EXCLUDED.state,
		cluster_id = EXCLUDED.cluster_id,
		centroid_distances = EXCLUDED.centroid_distances,
		scaled_features = EXCLUDED.scaled_features,
		model_version = EXCLUDED.model_version,
		reason = EXCLUDED.reason,
		pace = EXCLUDED.pace,
		recorded_at = EXCLUDED.recorded_at,
		classified_at = EXCLUDED.classified_at`

// Store upserts a single classification result. Reclassification overwrites
// the previous terminal state for the record.
func (r *ClassificationRepository) Store(ctx context.Context, result *classification.Result) error {
	_, err := r.db.NamedExecContext(ctx, upsertResult, result)
	return err
}

// StoreBatch upserts a batch of results in one transaction
func (r *ClassificationRepository) StoreBatch(ctx context.Context, results []classification.Result) error {
	if len(results) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i := range results {
		if _, err := tx.NamedExecContext(ctx, upsertResult, &results[i]); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetByWorkout retrieves the stored result for a workout
func (r *ClassificationRepository) GetByWorkout(ctx context.Context, workoutID uuid.UUID) (*classification.Result, error) {
	var res classification.Result

	query := `SELECT * FROM classifications WHERE workout_id = $1`

	err := r.db.GetContext(ctx, &res, query, workoutID)
	if err != nil {
		return nil, err
	}

	return &res, nil
}

// ListOutliers returns outlier results awaiting manual review
func (r *ClassificationRepository) ListOutliers(ctx context.Context, limit int) ([]classification.Result, error) {
	var results []classification.Result

	query := `
		SELECT * FROM classifications
		WHERE state = $1
		ORDER BY classified_at DESC
		LIMIT $2`

	err := r.db.SelectContext(ctx, &results, query, classification.StateOutlier, limit)
	if err != nil {
		return nil, err
	}

	return results, nil
}

// AddCorrection records a user-supplied label fix
func (r *ClassificationRepository) AddCorrection(ctx context.Context, c *classification.Correction) error {
	query := `
		INSERT INTO corrections (workout_id, corrected_label, applied, created_at)
		VALUES ($1, $2, false, NOW())`

	_, err := r.db.ExecContext(ctx, query, c.WorkoutID, c.CorrectedLabel)
	return err
}

// CountPendingCorrections returns the number of corrections not yet folded
// into a retrain
func (r *ClassificationRepository) CountPendingCorrections(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM corrections WHERE applied = false`)
	return count, err
}

// MarkCorrectionsApplied marks all pending corrections as consumed by a
// successful retrain
func (r *ClassificationRepository) MarkCorrectionsApplied(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE corrections SET applied = true WHERE applied = false`)
	return err
}
