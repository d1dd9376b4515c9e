package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"cadence/internal/domain/workout"
)

// Compile-time check
var _ workout.Repository = (*WorkoutRepository)(nil)

// WorkoutRepository implements workout.Repository using sqlx
type WorkoutRepository struct {
	db *sqlx.DB
}

// NewWorkoutRepository creates a new workout repository
func NewWorkoutRepository(db *sqlx.DB) *WorkoutRepository {
	return &WorkoutRepository{db: db}
}

// GetByID retrieves a workout record by ID
func (r *WorkoutRepository) GetByID(ctx context.Context, id uuid.UUID) (*workout.Record, error) {
	var rec workout.Record

	query := `SELECT * FROM workouts WHERE id = $1`

	err := r.db.GetContext(ctx, &rec, query, id)
	if err != nil {
		return nil, err
	}

	return &rec, nil
}

// ListPage retrieves one page of workout records ordered by recorded time.
// Stable ordering keeps chunked history walks consistent.
func (r *WorkoutRepository) ListPage(ctx context.Context, limit, offset int) ([]workout.Record, error) {
	var recs []workout.Record

	query := `
		SELECT * FROM workouts
		ORDER BY recorded_at ASC, id ASC
		LIMIT $1 OFFSET $2`

	err := r.db.SelectContext(ctx, &recs, query, limit, offset)
	if err != nil {
		return nil, err
	}

	return recs, nil
}

// Count returns the total number of workout records
func (r *WorkoutRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM workouts`)
	return count, err
}
