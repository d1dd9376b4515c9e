package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"cadence/internal/domain/classification"
	"cadence/internal/domain/workout"
	"cadence/internal/services/classifier"
	"cadence/internal/services/training"
	"cadence/pkg/errors"
	"cadence/pkg/logger"
)

const defaultOutlierLimit = 50

// Handlers exposes the classification REST surface
type Handlers struct {
	classifier *classifier.Service
	training   *training.Service
	workouts   workout.Repository
	results    classification.Repository
	log        *logger.Logger
}

// NewHandlers creates the REST handlers
func NewHandlers(
	classifierSvc *classifier.Service,
	trainingSvc *training.Service,
	workouts workout.Repository,
	results classification.Repository,
) *Handlers {
	return &Handlers{
		classifier: classifierSvc,
		training:   trainingSvc,
		workouts:   workouts,
		results:    results,
		log:        logger.Get().With("component", "api"),
	}
}

type classifyRequest struct {
	WorkoutID string `json:"workout_id"`
}

type correctionRequest struct {
	WorkoutID      string `json:"workout_id"`
	CorrectedLabel string `json:"corrected_label"`
}

// HandleClassify classifies one workout on demand and persists the result
func (h *Handlers) HandleClassify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	workoutID, err := uuid.Parse(req.WorkoutID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "workout_id must be a UUID")
		return
	}

	rec, err := h.workouts.GetByID(r.Context(), workoutID)
	if err != nil {
		writeError(w, http.StatusNotFound, "workout not found")
		return
	}

	res := h.classifier.Classify(r.Context(), rec)

	if err := h.results.Store(r.Context(), res); err != nil {
		h.log.Errorw("Failed to store classification result",
			"workout_id", workoutID,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "failed to store result")
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// HandleGetClassification returns the stored result for a workout
func (h *Handlers) HandleGetClassification(w http.ResponseWriter, r *http.Request) {
	workoutID, ok := pathUUID(w, r)
	if !ok {
		return
	}

	res, err := h.results.GetByWorkout(r.Context(), workoutID)
	if err != nil {
		writeError(w, http.StatusNotFound, "no classification for workout")
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// HandleExplanation returns the transparency projection for a workout
func (h *Handlers) HandleExplanation(w http.ResponseWriter, r *http.Request) {
	workoutID, ok := pathUUID(w, r)
	if !ok {
		return
	}

	res, err := h.results.GetByWorkout(r.Context(), workoutID)
	if err != nil {
		writeError(w, http.StatusNotFound, "no classification for workout")
		return
	}

	writeJSON(w, http.StatusOK, classifier.Explain(res, h.classifier.CurrentModel()))
}

// HandleCorrection records a user label correction and invalidates the
// cached result so the next read reflects pipeline state
func (h *Handlers) HandleCorrection(w http.ResponseWriter, r *http.Request) {
	var req correctionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	workoutID, err := uuid.Parse(req.WorkoutID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "workout_id must be a UUID")
		return
	}

	label := classification.Label(req.CorrectedLabel)
	if !label.Valid() || label == classification.LabelOutlier {
		writeError(w, http.StatusBadRequest, "corrected_label must be one of: focused_run, mixed, leisure_walk")
		return
	}

	correction := &classification.Correction{
		WorkoutID:      workoutID,
		CorrectedLabel: label,
	}
	if err := h.results.AddCorrection(r.Context(), correction); err != nil {
		h.log.Errorw("Failed to record correction",
			"workout_id", workoutID,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "failed to record correction")
		return
	}

	h.classifier.InvalidateCached(r.Context(), workoutID.String())

	writeJSON(w, http.StatusAccepted, map[string]string{
		"status":          "accepted",
		"workout_id":      workoutID.String(),
		"corrected_label": label.String(),
	})
}

// HandleListOutliers returns outlier results awaiting manual review
func (h *Handlers) HandleListOutliers(w http.ResponseWriter, r *http.Request) {
	limit := defaultOutlierLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	outliers, err := h.results.ListOutliers(r.Context(), limit)
	if err != nil {
		h.log.Errorw("Failed to list outliers", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list outliers")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"outliers": outliers,
		"count":    len(outliers),
	})
}

// HandleRetrain triggers a full retrain cycle
func (h *Handlers) HandleRetrain(w http.ResponseWriter, r *http.Request) {
	model, err := h.training.Retrain(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, errors.ErrTrainingInProgress):
			writeError(w, http.StatusConflict, "a retrain is already in progress")
		case errors.Is(err, errors.ErrInsufficientData):
			writeError(w, http.StatusUnprocessableEntity, "not enough valid training samples")
		default:
			h.log.Errorw("Retrain failed", "error", err)
			writeError(w, http.StatusInternalServerError, "retrain failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":           "trained",
		"model_version":    model.Version.String(),
		"trained_at":       model.TrainedAt,
		"training_samples": model.TrainingSamples,
	})
}

// HandleClassifyHistory reclassifies the entire workout history in chunks
func (h *Handlers) HandleClassifyHistory(w http.ResponseWriter, r *http.Request) {
	status, err := h.classifier.ClassifyHistory(r.Context())
	if err != nil {
		h.log.Errorw("History classification failed", "error", err)
		writeError(w, http.StatusInternalServerError, "history classification failed")
		return
	}

	writeJSON(w, http.StatusOK, status)
}

// pathUUID extracts and validates the {id} path segment
func pathUUID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
