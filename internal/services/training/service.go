package training

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"

	"cadence/internal/domain/classification"
	"cadence/internal/domain/workout"
	"cadence/internal/events"
	"cadence/internal/metrics"
	"cadence/internal/ml/cluster"
	"cadence/internal/ml/features"
	"cadence/internal/services/classifier"
	"cadence/pkg/errors"
	"cadence/pkg/logger"
)

const (
	retrainLockKey = "model_retrain"
	retrainLockTTL = 10 * time.Minute
)

// Locker serializes retrains across processes. Training is never concurrent
// with itself.
type Locker interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key string) error
}

// Service runs the administrative retrain: gather the corrected training set,
// fit a new model version, persist it atomically and swap the current
// pointer. All-or-nothing; any failure leaves the previous version in force.
type Service struct {
	workouts   workout.Repository
	results    classification.Repository
	store      *cluster.Store
	classifier *classifier.Service
	locker     Locker
	publisher  *events.Publisher

	trainerCfg cluster.TrainerConfig
	chunkSize  int
	log        *logger.Logger
}

// Deps bundles the training service dependencies
type Deps struct {
	Workouts   workout.Repository
	Results    classification.Repository
	Store      *cluster.Store
	Classifier *classifier.Service
	Locker     Locker
	Publisher  *events.Publisher
	Seed       int64
	MinSamples int
	ChunkSize  int
}

// NewService creates the training service
func NewService(deps Deps) *Service {
	chunk := deps.ChunkSize
	if chunk <= 0 {
		chunk = 500
	}
	return &Service{
		workouts:   deps.Workouts,
		results:    deps.Results,
		store:      deps.Store,
		classifier: deps.Classifier,
		locker:     deps.Locker,
		publisher:  deps.Publisher,
		trainerCfg: cluster.TrainerConfig{Seed: deps.Seed, MinSamples: deps.MinSamples},
		chunkSize:  chunk,
		log:        logger.Get().With("component", "training"),
	}
}

// Retrain fits and installs a new model version from the full workout
// history with user corrections merged in. On any error nothing changes:
// the persisted artifact, the current model pointer and the pending
// corrections are all left untouched.
func (s *Service) Retrain(ctx context.Context) (*cluster.Model, error) {
	if s.locker != nil {
		acquired, err := s.locker.AcquireLock(ctx, retrainLockKey, retrainLockTTL)
		if err != nil {
			return nil, errors.Wrap(err, "failed to acquire retrain lock")
		}
		if !acquired {
			return nil, errors.ErrTrainingInProgress
		}
		defer func() {
			if err := s.locker.ReleaseLock(ctx, retrainLockKey); err != nil {
				s.log.Warnf("Failed to release retrain lock: %v", err)
			}
		}()
	}

	start := time.Now()

	vectors, skipped, err := s.gatherTrainingSet(ctx)
	if err != nil {
		metrics.TrainingRuns.WithLabelValues("error").Inc()
		return nil, err
	}

	model, err := cluster.Train(vectors, s.trainerCfg)
	if err != nil {
		if errors.Is(err, errors.ErrInsufficientData) {
			metrics.TrainingRuns.WithLabelValues("insufficient_data").Inc()
			s.log.Warnw("Retrain aborted, previous model retained",
				"samples", len(vectors),
				"error", err,
			)
		} else {
			metrics.TrainingRuns.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	if err := s.store.Save(model); err != nil {
		metrics.TrainingRuns.WithLabelValues("error").Inc()
		return nil, errors.Wrap(err, "failed to persist model")
	}

	s.classifier.SetModel(model)

	if s.results != nil {
		if err := s.results.MarkCorrectionsApplied(ctx); err != nil {
			// The new model is already in force; corrections will simply
			// re-trigger on the next threshold check.
			s.log.Warnf("Failed to mark corrections applied: %v", err)
		}
	}

	if s.publisher != nil {
		if err := s.publisher.PublishModelTrained(ctx, model); err != nil {
			s.log.Warnf("Failed to publish model trained event: %v", err)
		}
	}

	metrics.TrainingRuns.WithLabelValues("success").Inc()
	s.log.Infow("Retrain complete",
		"version", model.Version,
		"samples", humanize.Comma(int64(len(vectors))),
		"skipped_invalid", skipped,
		"duration", time.Since(start),
	)

	return model, nil
}

// gatherTrainingSet walks the workout history in bounded chunks and prepares
// feature vectors. Records failing plausibility validation are excluded from
// training the same way they are excluded from classification.
func (s *Service) gatherTrainingSet(ctx context.Context) ([]features.Vector, int, error) {
	var vectors []features.Vector
	skipped := 0

	for offset := 0; ; offset += s.chunkSize {
		recs, err := s.workouts.ListPage(ctx, s.chunkSize, offset)
		if err != nil {
			return nil, 0, errors.Wrap(err, "failed to page training set")
		}
		if len(recs) == 0 {
			break
		}

		for i := range recs {
			fv, violation := features.Prepare(&recs[i])
			if violation != nil {
				skipped++
				continue
			}
			vectors = append(vectors, fv)
		}

		if len(recs) < s.chunkSize {
			break
		}
	}

	return vectors, skipped, nil
}
