package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/avschaefer/cloudhire-ai-api/internal/api/shared"
	"github.com/avschaefer/cloudhire-ai-api/internal/service"
)

// SubmitHandler handles grading job submissions from the calling system.
type SubmitHandler struct {
	jobService *service.JobService
	logger     *slog.Logger
}

// NewSubmitHandler creates a new SubmitHandler with the given dependencies.
func NewSubmitHandler(jobService *service.JobService, logger *slog.Logger) *SubmitHandler {
	return &SubmitHandler{
		jobService: jobService,
		logger:     logger,
	}
}

// Submit handles POST /v1/grade_jobs/submit. It validates the request,
// persists the job, enqueues one grading task, and returns 202 Accepted.
// Grading happens asynchronously after the response.
func (h *SubmitHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	var jobID uuid.UUID
	if req.JobID != "" {
		parsed, err := uuid.Parse(req.JobID)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid job_id")
			return
		}
		jobID = parsed
	}

	job, err := h.jobService.Submit(r.Context(), service.SubmitParams{
		JobID:       jobID,
		AttemptID:   req.AttemptID,
		UserID:      req.UserID,
		ExamID:      req.ExamID,
		AttemptNo:   req.AttemptNo,
		Purpose:     req.Purpose,
		Answers:     req.domainAnswers(),
		Rubric:      req.Rubric,
		SectionMap:  req.SectionMap,
		CallbackURL: req.CallbackURL,
		TriggeredBy: req.TriggeredBy,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, SubmitResponse{
		JobID:  job.ID,
		Status: job.Status,
	})
}
