package domain

import (
	"strings"
	"unicode/utf8"
)

// Submission limits.
const (
	MinPromptLength = 5
	MaxPromptLength = 100
	MinSlideCount   = 1
	MaxSlideCount   = 20
)

// SubmissionRequest carries a client's request for a new presentation. It
// exists only for the duration of a submit call.
type SubmissionRequest struct {
	PrincipalID string
	Prompt      string
	SlideCount  int
	Style       string
}

// Validate checks every field and reports the first failure as a
// *ValidationError.
func (r SubmissionRequest) Validate() error {
	if strings.TrimSpace(r.PrincipalID) == "" {
		return NewValidationError("principal_id", "is required", ErrEmptyPrincipalID)
	}

	n := utf8.RuneCountInString(strings.TrimSpace(r.Prompt))
	if n < MinPromptLength {
		return NewValidationError("prompt", "must be at least 5 characters", nil)
	}
	if n > MaxPromptLength {
		return NewValidationError("prompt", "must be at most 100 characters", nil)
	}

	if r.SlideCount < MinSlideCount || r.SlideCount > MaxSlideCount {
		return NewValidationError("numberOfSlides", "must be between 1 and 20", nil)
	}

	if _, err := ParseStyle(r.Style); err != nil {
		return NewValidationError("presentationStyle", "is not a recognised style", err)
	}
	return nil
}

// NormalizedRequest is a validated request with trimmed text and a
// canonical style.
type NormalizedRequest struct {
	PrincipalID string
	Prompt      string
	SlideCount  int
	Style       Style
}

// Normalized returns the canonical form of a request. It assumes Validate
// has already succeeded.
func (r SubmissionRequest) Normalized() NormalizedRequest {
	style, err := ParseStyle(r.Style)
	if err != nil {
		style = DefaultStyle
	}
	return NormalizedRequest{
		PrincipalID: strings.TrimSpace(r.PrincipalID),
		Prompt:      strings.TrimSpace(r.Prompt),
		SlideCount:  r.SlideCount,
		Style:       style,
	}
}
