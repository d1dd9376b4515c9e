package classifier

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	goredis "github.com/redis/go-redis/v9"

	"cadence/internal/adapters/redis"
	"cadence/internal/domain/classification"
	"cadence/internal/domain/workout"
	"cadence/internal/events"
	"cadence/internal/metrics"
	"cadence/internal/ml/cluster"
	"cadence/internal/ml/features"
	"cadence/pkg/errors"
	"cadence/pkg/logger"
)

// Service orchestrates the classification pipeline: feature preparation,
// strategy selection, confidence scoring and result fan-out. The current
// model is an immutable snapshot behind an atomic pointer; classify calls
// never coordinate with retrains, they just complete against the snapshot
// they started with.
type Service struct {
	current atomic.Pointer[cluster.Model]

	store    *cluster.Store
	fallback *EraFallback

	// Optional collaborators; nil disables the corresponding fan-out
	workouts  workout.Repository
	results   classification.Repository
	stats     classification.StatsSink
	cache     *redis.Client
	publisher *events.Publisher

	chunkSize int
	cacheTTL  time.Duration
	log       *logger.Logger
}

// Deps bundles the service dependencies
type Deps struct {
	Store     *cluster.Store
	Fallback  *EraFallback
	Workouts  workout.Repository
	Results   classification.Repository
	Stats     classification.StatsSink
	Cache     *redis.Client
	Publisher *events.Publisher
	ChunkSize int
	CacheTTL  time.Duration
}

// NewService creates the classifier service
func NewService(deps Deps) *Service {
	chunk := deps.ChunkSize
	if chunk <= 0 {
		chunk = 500
	}
	return &Service{
		store:     deps.Store,
		fallback:  deps.Fallback,
		workouts:  deps.Workouts,
		results:   deps.Results,
		stats:     deps.Stats,
		cache:     deps.Cache,
		publisher: deps.Publisher,
		chunkSize: chunk,
		cacheTTL:  deps.CacheTTL,
		log:       logger.Get().With("component", "classifier"),
	}
}

// LoadModel loads the persisted model and makes it current. A missing or
// corrupt artifact is not an error: the service logs one degraded-mode
// warning per load attempt and keeps serving era-fallback results.
func (s *Service) LoadModel(ctx context.Context) {
	model, err := s.store.Load()
	if err != nil {
		s.current.Store(nil)
		metrics.ModelLoaded.Set(0)
		s.log.Warnw("Model unavailable, serving era-fallback results only", "error", err)
		if s.publisher != nil {
			if pubErr := s.publisher.PublishModelDegraded(ctx, err.Error()); pubErr != nil {
				s.log.Warnf("Failed to publish degraded event: %v", pubErr)
			}
		}
		return
	}

	s.current.Store(model)
	metrics.ModelLoaded.Set(1)
	s.log.Infow("Model loaded",
		"version", model.Version,
		"trained_at", model.TrainedAt,
		"samples", model.TrainingSamples,
	)
}

// SetModel atomically makes a freshly trained model the current version.
// In-flight classify calls keep their old snapshot; subsequent calls pick up
// the new one.
func (s *Service) SetModel(model *cluster.Model) {
	s.current.Store(model)
	metrics.ModelLoaded.Set(1)
}

// CurrentModel returns the current model snapshot, nil in degraded mode
func (s *Service) CurrentModel() *cluster.Model {
	return s.current.Load()
}

// Classify runs the full pipeline for a single record
func (s *Service) Classify(ctx context.Context, rec *workout.Record) *classification.Result {
	return s.classifyWithModel(ctx, rec, s.current.Load())
}

// ClassifyBatch classifies a slice of records against one model snapshot.
// Per-record problems never abort the batch; every input yields a result and
// the status annotation carries the per-outcome counts.
func (s *Service) ClassifyBatch(ctx context.Context, recs []workout.Record) ([]classification.Result, classification.BatchStatus) {
	model := s.current.Load()

	results := make([]classification.Result, 0, len(recs))
	var status classification.BatchStatus
	for i := range recs {
		res := s.classifyWithModel(ctx, &recs[i], model)
		status.Add(res)
		results = append(results, *res)
	}
	return results, status
}

// ClassifyHistory reclassifies the whole workout history in bounded chunks,
// persisting results, feeding the statistics sink and publishing events.
// Multi-year datasets never get materialized at once.
func (s *Service) ClassifyHistory(ctx context.Context) (classification.BatchStatus, error) {
	var total classification.BatchStatus
	if s.workouts == nil || s.results == nil {
		return total, errors.Wrap(errors.ErrInternal, "history classification requires repositories")
	}

	expected, err := s.workouts.Count(ctx)
	if err != nil {
		return total, errors.Wrap(err, "failed to count workout history")
	}
	s.log.Infow("Classifying history", "records", humanize.Comma(int64(expected)))

	start := time.Now()
	for offset := 0; ; offset += s.chunkSize {
		recs, err := s.workouts.ListPage(ctx, s.chunkSize, offset)
		if err != nil {
			return total, errors.Wrap(err, "failed to page workout history")
		}
		if len(recs) == 0 {
			break
		}

		results, status := s.ClassifyBatch(ctx, recs)

		if err := s.results.StoreBatch(ctx, results); err != nil {
			return total, errors.Wrap(err, "failed to store classification batch")
		}
		s.sinkAndPublish(ctx, results)

		total.Total += status.Total
		total.ML += status.ML
		total.Fallback += status.Fallback
		total.Outliers += status.Outliers

		if len(recs) < s.chunkSize {
			break
		}
	}

	s.log.Infow("History classified",
		"records", humanize.Comma(int64(total.Total)),
		"ml", total.ML,
		"fallback", total.Fallback,
		"outliers", total.Outliers,
		"duration", time.Since(start),
	)
	return total, nil
}

// classifyWithModel is the single-record pipeline against an explicit
// snapshot. Validation failure is a terminal outlier routing, not an error;
// a label lookup miss routes to fallback after diagnostics.
func (s *Service) classifyWithModel(ctx context.Context, rec *workout.Record, model *cluster.Model) *classification.Result {
	fv, violation := features.Prepare(rec)
	if violation != nil {
		metrics.OutliersFlagged.Inc()
		return &classification.Result{
			WorkoutID:    rec.ID,
			Label:        classification.LabelOutlier,
			Confidence:   0,
			State:        classification.StateOutlier,
			Reason:       violation.Error(),
			Pace:         rec.Pace,
			RecordedAt:   rec.RecordedAt,
			ClassifiedAt: time.Now().UTC(),
		}
	}

	if cached := s.cachedResult(ctx, rec, model); cached != nil {
		return cached
	}

	strat := selectStrategy(model, s.fallback, s.log)
	res, err := strat.Classify(rec, fv)
	if err != nil {
		// Lookup miss: the diagnostic context is already logged by the
		// strategy; the user still gets a usable, lower-trust result.
		res = s.fallback.Classify(rec)
	}

	metrics.ClassificationsTotal.WithLabelValues(res.Method.String(), res.Label.String()).Inc()
	s.cacheResult(ctx, res, model)
	return res
}

// cachedResult returns a prior result for this record and model version.
// Keys embed the model version, so a retrain implicitly invalidates every
// cached entry.
func (s *Service) cachedResult(ctx context.Context, rec *workout.Record, model *cluster.Model) *classification.Result {
	if s.cache == nil || model == nil {
		return nil
	}
	var res classification.Result
	err := s.cache.Get(ctx, cacheKey(rec.ID.String(), model), &res)
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			s.log.Debugf("Cache read failed: %v", err)
		}
		return nil
	}
	return &res
}

func (s *Service) cacheResult(ctx context.Context, res *classification.Result, model *cluster.Model) {
	if s.cache == nil || model == nil || res.State != classification.StateMLClassified {
		return
	}
	if err := s.cache.Set(ctx, cacheKey(res.WorkoutID.String(), model), res, s.cacheTTL); err != nil {
		s.log.Debugf("Cache write failed: %v", err)
	}
}

// InvalidateCached drops the cached result for one workout, re-entering it
// into the pipeline on next classification. Used when a user correction
// lands.
func (s *Service) InvalidateCached(ctx context.Context, workoutID string) {
	model := s.current.Load()
	if s.cache == nil || model == nil {
		return
	}
	if err := s.cache.Delete(ctx, cacheKey(workoutID, model)); err != nil {
		s.log.Debugf("Cache invalidation failed: %v", err)
	}
}

func cacheKey(workoutID string, model *cluster.Model) string {
	return fmt.Sprintf("classification:%s:%s", workoutID, model.Version)
}

// sinkAndPublish fans classified results out to the statistics sink and the
// event stream. Outliers go to review, not to the aggregates.
func (s *Service) sinkAndPublish(ctx context.Context, results []classification.Result) {
	if s.stats != nil {
		classified := make([]classification.Result, 0, len(results))
		for i := range results {
			if results[i].State != classification.StateOutlier {
				classified = append(classified, results[i])
			}
		}
		if len(classified) > 0 {
			if err := s.stats.WriteResults(ctx, classified); err != nil {
				s.log.Errorf("Failed to write stats batch: %v", err)
			}
		}
	}

	if s.publisher == nil {
		return
	}
	for i := range results {
		res := &results[i]
		var err error
		if res.State == classification.StateOutlier {
			err = s.publisher.PublishOutlierFlagged(ctx, res)
		} else {
			err = s.publisher.PublishWorkoutClassified(ctx, res)
		}
		if err != nil {
			s.log.Warnf("Failed to publish event for %s: %v", res.WorkoutID, err)
		}
	}
}
