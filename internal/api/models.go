package api

import (
	"time"

	"github.com/phrazzld/deckgen-api/internal/domain"
)

// CreatePresentationRequest defines the payload for POST /api/presentations.
// Field names follow the wire format clients already send.
type CreatePresentationRequest struct {
	Prompt            string `json:"prompt"            validate:"required,min=5,max=100"`
	NumberOfSlides    int    `json:"numberOfSlides"    validate:"required,min=1,max=20"`
	PresentationStyle string `json:"presentationStyle" validate:"omitempty,max=32"`
}

// JobResponse is the client view of a durable job.
type JobResponse struct {
	ID                string               `json:"id"`
	PrincipalID       string               `json:"principal_id"`
	Prompt            string               `json:"prompt"`
	NumberOfSlides    int                  `json:"number_of_slides"`
	PresentationStyle string               `json:"presentation_style"`
	Status            string               `json:"status"`
	Presentation      *domain.Presentation `json:"presentation,omitempty"`
	CreatedAt         time.Time            `json:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at"`
}

// SubmitResponse is returned with 202 Accepted once a job is queued.
type SubmitResponse struct {
	Message string      `json:"message"`
	JobID   string      `json:"job_id"`
	Status  string      `json:"status"`
	Job     JobResponse `json:"job"`
}

// StatusResponse answers both status endpoints.
type StatusResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// PresentationResponse answers GET /api/presentations/{jobID}. Presentation
// is set when the result is ready; Message explains a pending result.
type PresentationResponse struct {
	JobID        string               `json:"job_id"`
	Status       string               `json:"status"`
	Presentation *domain.Presentation `json:"presentation,omitempty"`
	Message      string               `json:"message,omitempty"`
}

// ListResponse answers GET /api/presentations/user/{principalID}.
type ListResponse struct {
	Message       string        `json:"message"`
	PrincipalID   string        `json:"principal_id"`
	Presentations []JobResponse `json:"presentations"`
	Limit         int           `json:"limit"`
	Offset        int           `json:"offset"`
}

// jobToResponse converts a domain.Job to a JobResponse.
func jobToResponse(job *domain.Job) JobResponse {
	return JobResponse{
		ID:                job.ID,
		PrincipalID:       job.PrincipalID,
		Prompt:            job.Prompt,
		NumberOfSlides:    job.SlideCount,
		PresentationStyle: job.Style.String(),
		Status:            job.Status.String(),
		Presentation:      job.Presentation,
		CreatedAt:         job.CreatedAt,
		UpdatedAt:         job.UpdatedAt,
	}
}
