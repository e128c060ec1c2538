package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/avschaefer/cloudhire-ai-api/internal/api/shared"
	"github.com/avschaefer/cloudhire-ai-api/internal/queue"
	"github.com/avschaefer/cloudhire-ai-api/internal/service"
)

// GradeTaskHandler receives task deliveries from the external queue. Its
// status codes drive the queue's redelivery: 2xx acknowledges the task,
// anything else triggers a retry with the queue's own backoff.
type GradeTaskHandler struct {
	gradingService *service.GradingService
	logger         *slog.Logger
}

// NewGradeTaskHandler creates a new GradeTaskHandler.
func NewGradeTaskHandler(gradingService *service.GradingService, logger *slog.Logger) *GradeTaskHandler {
	return &GradeTaskHandler{
		gradingService: gradingService,
		logger:         logger,
	}
}

// HandleGradeTask handles POST /internal/tasks/grade. A malformed payload
// returns 422 so the queue does not redeliver a task that can never
// succeed. A settled job, including one that settled as failed, returns
// 200 to stop redelivery.
func (h *GradeTaskHandler) HandleGradeTask(w http.ResponseWriter, r *http.Request) {
	var payload queue.GradeTaskPayload
	if err := shared.DecodeJSON(r, &payload); err != nil {
		h.logger.WarnContext(r.Context(), "discarding malformed task payload", "error", err)
		shared.RespondWithError(w, r, http.StatusUnprocessableEntity, "Malformed task payload")
		return
	}

	if payload.JobID == uuid.Nil || len(payload.Answers) == 0 {
		h.logger.WarnContext(r.Context(), "discarding incomplete task payload",
			"job_id", payload.JobID,
			"answer_count", len(payload.Answers))
		shared.RespondWithError(w, r, http.StatusUnprocessableEntity, "Incomplete task payload")
		return
	}

	if err := h.gradingService.Process(r.Context(), payload); err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
