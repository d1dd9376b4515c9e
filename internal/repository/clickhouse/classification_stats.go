package clickhouse

import (
	"context"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"cadence/internal/domain/classification"
)

// Compile-time check
var _ classification.StatsSink = (*StatsRepository)(nil)

// StatsRepository writes classified results to ClickHouse for the downstream
// trend, consistency and anomaly analyzers. Rows carry label, confidence,
// method, the pace metric and the timestamp, and are grouped by label on the
// consumer side.
type StatsRepository struct {
	conn driver.Conn
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(conn driver.Conn) *StatsRepository {
	return &StatsRepository{conn: conn}
}

// WriteResults appends a batch of classified results. Callers exclude
// outliers; this sink feeds aggregates, not the review queue.
func (r *StatsRepository) WriteResults(ctx context.Context, results []classification.Result) error {
	if len(results) == 0 {
		return nil
	}

	batch, err := r.conn.PrepareBatch(ctx, `
		INSERT INTO classification_stats (
			workout_id, recorded_at, label, confidence, method, pace, classified_at
		)`)
	if err != nil {
		return err
	}

	for i := range results {
		res := &results[i]
		if err := batch.Append(
			res.WorkoutID.String(),
			res.RecordedAt,
			res.Label.String(),
			res.Confidence,
			res.Method.String(),
			res.Pace,
			res.ClassifiedAt,
		); err != nil {
			return err
		}
	}

	return batch.Send()
}
