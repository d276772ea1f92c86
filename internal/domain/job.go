package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// JobStatus represents the lifecycle state of a generation job.
type JobStatus string

// Canonical job states. Every status read from a cache or from user input is
// normalised to one of these before it is compared or persisted.
const (
	JobStatusPending    JobStatus = "PENDING"
	JobStatusProcessing JobStatus = "PROCESSING"
	JobStatusCompleted  JobStatus = "COMPLETED"
	JobStatusFailed     JobStatus = "FAILED"
)

var upper = cases.Upper(language.Und)

// ParseJobStatus maps s to its canonical JobStatus. Matching ignores case and
// surrounding whitespace, so "completed", " Completed " and "COMPLETED" are the
// same state.
func ParseJobStatus(s string) (JobStatus, error) {
	status := JobStatus(upper.String(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", ErrInvalidJobStatus
	}
	return status, nil
}

// IsValid reports whether s is one of the canonical states.
func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusPending, JobStatusProcessing, JobStatusCompleted, JobStatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transitions are expected from s.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// String returns the canonical representation.
func (s JobStatus) String() string {
	return string(s)
}

// Job is the durable record of one presentation request.
//
// A FAILED job never carries a Presentation. Once a presentation has been
// promoted onto a job it is not replaced, and the job is COMPLETED.
type Job struct {
	ID           string        `json:"id"`
	PrincipalID  string        `json:"principal_id"`
	Prompt       string        `json:"prompt"`
	SlideCount   int           `json:"number_of_slides"`
	Style        Style         `json:"presentation_style"`
	Status       JobStatus     `json:"status"`
	Presentation *Presentation `json:"presentation,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// NewJob creates a PENDING job for a validated submission with a fresh id.
func NewJob(req SubmissionRequest, now time.Time) (*Job, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	norm := req.Normalized()
	job := &Job{
		ID:          uuid.NewString(),
		PrincipalID: norm.PrincipalID,
		Prompt:      norm.Prompt,
		SlideCount:  norm.SlideCount,
		Style:       norm.Style,
		Status:      JobStatusPending,
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}
	return job, nil
}

// Validate checks the structural invariants of a job.
func (j *Job) Validate() error {
	if j.ID == "" {
		return ErrEmptyJobID
	}
	if j.PrincipalID == "" {
		return ErrEmptyPrincipalID
	}
	if !j.Status.IsValid() {
		return ErrInvalidJobStatus
	}
	if j.Status == JobStatusFailed && j.Presentation != nil {
		return NewValidationError("presentation", "must be empty for a failed job", ErrInvalidPresentation)
	}
	return nil
}

// HasResult reports whether a presentation has been promoted onto the job.
func (j *Job) HasResult() bool {
	return j.Presentation != nil
}

// IsSettled reports whether the durable record is authoritative, either
// because it reached a terminal state or because a result was promoted.
func (j *Job) IsSettled() bool {
	return j.Status.IsTerminal() || j.HasResult()
}
