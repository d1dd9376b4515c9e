package events

import (
	"context"
	"time"

	"cadence/internal/adapters/kafka"
	"cadence/internal/domain/classification"
	"cadence/internal/ml/cluster"
	"cadence/pkg/logger"
)

// Publisher publishes classification and model lifecycle events to Kafka
type Publisher struct {
	producer *kafka.Producer
	log      *logger.Logger
}

// NewPublisher creates a new event publisher
func NewPublisher(producer *kafka.Producer) *Publisher {
	return &Publisher{
		producer: producer,
		log:      logger.Get().With("component", "event_publisher"),
	}
}

// WorkoutClassifiedEvent is emitted for every classified record
type WorkoutClassifiedEvent struct {
	WorkoutID    string    `json:"workout_id"`
	Label        string    `json:"label"`
	Confidence   float64   `json:"confidence"`
	Method       string    `json:"method"`
	ModelVersion string    `json:"model_version,omitempty"`
	ClassifiedAt time.Time `json:"classified_at"`
}

// OutlierFlaggedEvent is emitted when validation routes a record to manual review
type OutlierFlaggedEvent struct {
	WorkoutID string    `json:"workout_id"`
	Reason    string    `json:"reason"`
	FlaggedAt time.Time `json:"flagged_at"`
}

// ModelTrainedEvent is emitted when a new model version becomes current
type ModelTrainedEvent struct {
	Version   string    `json:"version"`
	TrainedAt time.Time `json:"trained_at"`
	Samples   int       `json:"samples"`
}

// ModelDegradedEvent is emitted when the classifier falls back to era-only mode
type ModelDegradedEvent struct {
	Reason     string    `json:"reason"`
	DetectedAt time.Time `json:"detected_at"`
}

// PublishWorkoutClassified publishes a classified result
func (p *Publisher) PublishWorkoutClassified(ctx context.Context, res *classification.Result) error {
	event := WorkoutClassifiedEvent{
		WorkoutID:    res.WorkoutID.String(),
		Label:        res.Label.String(),
		Confidence:   res.Confidence,
		Method:       res.Method.String(),
		ClassifiedAt: res.ClassifiedAt,
	}
	if res.ModelVersion != nil {
		event.ModelVersion = res.ModelVersion.String()
	}
	return p.producer.Publish(ctx, kafka.TopicWorkoutClassified, event.WorkoutID, event)
}

// PublishOutlierFlagged publishes an outlier review request
func (p *Publisher) PublishOutlierFlagged(ctx context.Context, res *classification.Result) error {
	event := OutlierFlaggedEvent{
		WorkoutID: res.WorkoutID.String(),
		Reason:    res.Reason,
		FlaggedAt: res.ClassifiedAt,
	}
	return p.producer.Publish(ctx, kafka.TopicOutlierFlagged, event.WorkoutID, event)
}

// PublishModelTrained publishes a model version change
func (p *Publisher) PublishModelTrained(ctx context.Context, m *cluster.Model) error {
	event := ModelTrainedEvent{
		Version:   m.Version.String(),
		TrainedAt: m.TrainedAt,
		Samples:   m.TrainingSamples,
	}
	return p.producer.Publish(ctx, kafka.TopicModelTrained, event.Version, event)
}

// PublishModelDegraded publishes a degraded-mode notification
func (p *Publisher) PublishModelDegraded(ctx context.Context, reason string) error {
	event := ModelDegradedEvent{
		Reason:     reason,
		DetectedAt: time.Now().UTC(),
	}
	return p.producer.Publish(ctx, kafka.TopicModelDegraded, "model", event)
}
