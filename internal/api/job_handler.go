package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/deckgen-api/internal/api/shared"
	"github.com/phrazzld/deckgen-api/internal/domain"
	"github.com/phrazzld/deckgen-api/internal/platform/logger"
	"github.com/phrazzld/deckgen-api/internal/service"
)

// PresentationService is the part of the job service the handler uses.
type PresentationService interface {
	Submit(ctx context.Context, req domain.SubmissionRequest) (*service.SubmitResult, error)
	GetStatus(ctx context.Context, jobID string) (domain.JobStatus, error)
	GetStoredStatus(ctx context.Context, jobID string) (domain.JobStatus, error)
	GetResult(ctx context.Context, jobID string) (*service.ResultView, error)
	ListForPrincipal(ctx context.Context, principalID string, limit, offset int) ([]*domain.Job, error)
}

var _ PresentationService = (*service.JobService)(nil)

// pendingResultMessage is returned while a presentation is still being generated.
const pendingResultMessage = "Presentation not found or still processing"

// JobHandler handles presentation job HTTP requests.
type JobHandler struct {
	jobs   PresentationService
	logger *slog.Logger
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(jobs PresentationService, logger *slog.Logger) *JobHandler {
	if jobs == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("presentation service cannot be nil for JobHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for JobHandler")
	}
	return &JobHandler{
		jobs:   jobs,
		logger: logger.With(slog.String("component", "job_handler")),
	}
}

// RegisterRoutes mounts the presentation endpoints on r. Callers are
// expected to have applied authentication to r.
func (h *JobHandler) RegisterRoutes(r chi.Router) {
	r.Route("/presentations", func(r chi.Router) {
		r.Post("/", h.CreatePresentation)
		r.Get("/status/existing/{jobID}", h.GetStoredStatus)
		r.Get("/status/{jobID}", h.GetStatus)
		r.Get("/user/{principalID}", h.ListPresentations)
		r.Get("/{jobID}", h.GetPresentation)
	})
}

// CreatePresentation handles POST /api/presentations requests.
// The job is generated asynchronously, so success is 202 Accepted.
func (h *JobHandler) CreatePresentation(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	principalID, ok := getPrincipalIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Principal not found in token")
		return
	}

	var req CreatePresentationRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	result, err := h.jobs.Submit(r.Context(), domain.SubmissionRequest{
		PrincipalID: principalID,
		Prompt:      req.Prompt,
		SlideCount:  req.NumberOfSlides,
		Style:       req.PresentationStyle,
	})
	if err != nil {
		var opts []shared.ResponseOption
		if result != nil {
			opts = append(opts, shared.WithJobID(result.JobID))
		}
		HandleAPIError(w, r, err, "Failed to create presentation", opts...)
		return
	}

	log.Info("presentation job accepted",
		slog.String("job_id", result.JobID),
		slog.Int("number_of_slides", req.NumberOfSlides))

	shared.RespondWithJSON(w, r, http.StatusAccepted, SubmitResponse{
		Message: "Presentation generation started",
		JobID:   result.JobID,
		Status:  result.Job.Status.String(),
		Job:     jobToResponse(result.Job),
	})
}

// GetStatus handles GET /api/presentations/status/{jobID}. The durable
// status is reconciled with the worker's cached status before it is returned.
func (h *JobHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	h.respondWithStatus(w, r, h.jobs.GetStatus)
}

// GetStoredStatus handles GET /api/presentations/status/existing/{jobID}
// and reports the durable status only.
func (h *JobHandler) GetStoredStatus(w http.ResponseWriter, r *http.Request) {
	h.respondWithStatus(w, r, h.jobs.GetStoredStatus)
}

func (h *JobHandler) respondWithStatus(
	w http.ResponseWriter,
	r *http.Request,
	lookup func(context.Context, string) (domain.JobStatus, error),
) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	_, jobID, ok := handlePrincipalAndPathID(w, r, "jobID", log)
	if !ok {
		return
	}

	status, err := lookup(r.Context(), jobID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get presentation status")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, StatusResponse{JobID: jobID, Status: status.String()})
}

// GetPresentation handles GET /api/presentations/{jobID}. A ready result is
// returned with 200; a job still in progress or failed answers 202 with its status.
func (h *JobHandler) GetPresentation(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	_, jobID, ok := handlePrincipalAndPathID(w, r, "jobID", log)
	if !ok {
		return
	}

	view, err := h.jobs.GetResult(r.Context(), jobID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve presentation")
		return
	}

	if !view.Ready {
		message := pendingResultMessage
		if view.Status == domain.JobStatusFailed {
			message = "Presentation generation failed"
		}
		shared.RespondWithJSON(w, r, http.StatusAccepted, PresentationResponse{
			JobID:   view.JobID,
			Status:  view.Status.String(),
			Message: message,
		})
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, PresentationResponse{
		JobID:        view.JobID,
		Status:       view.Status.String(),
		Presentation: view.Presentation,
	})
}

// ListPresentations handles GET /api/presentations/user/{principalID}.
// Principals may only list their own jobs.
func (h *JobHandler) ListPresentations(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	callerID, requestedID, ok := handlePrincipalAndPathID(w, r, "principalID", log)
	if !ok {
		return
	}
	if callerID != requestedID {
		HandleAPIError(w, r, service.ErrNotOwned, "")
		return
	}

	limit, offset, err := getPagination(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	jobs, err := h.jobs.ListForPrincipal(r.Context(), callerID, limit, offset)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list presentations")
		return
	}

	items := make([]JobResponse, 0, len(jobs))
	for _, job := range jobs {
		items = append(items, jobToResponse(job))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ListResponse{
		Message:       "Presentations fetched successfully",
		PrincipalID:   callerID,
		Presentations: items,
		Limit:         limit,
		Offset:        offset,
	})
}

// Health handles GET /health.
func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		logger.FromContext(r.Context()).Error("failed to write health check response", slog.Any("error", err))
	}
}

