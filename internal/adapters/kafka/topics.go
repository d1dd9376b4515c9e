package kafka

// Topic definitions for Kafka event streaming
const (
	// Classification events
	TopicWorkoutClassified = "workouts.classified"
	TopicOutlierFlagged    = "workouts.outliers"

	// Model lifecycle events
	TopicModelTrained  = "model.trained"
	TopicModelDegraded = "model.degraded"
)
