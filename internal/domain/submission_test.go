package domain_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/phrazzld/deckgen-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() domain.SubmissionRequest {
	return domain.SubmissionRequest{
		PrincipalID: "user-1",
		Prompt:      "Explain quantum computing basics",
		SlideCount:  10,
		Style:       "modern",
	}
}

func TestSubmissionRequest_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *domain.SubmissionRequest)
		field  string
	}{
		{"valid", func(r *domain.SubmissionRequest) {}, ""},
		{"empty principal", func(r *domain.SubmissionRequest) { r.PrincipalID = "  " }, "principal_id"},
		{"prompt too short", func(r *domain.SubmissionRequest) { r.Prompt = "abcd" }, "prompt"},
		{"prompt short after trim", func(r *domain.SubmissionRequest) { r.Prompt = "  ab  " }, "prompt"},
		{"prompt at min", func(r *domain.SubmissionRequest) { r.Prompt = "abcde" }, ""},
		{"prompt at max", func(r *domain.SubmissionRequest) { r.Prompt = strings.Repeat("a", 100) }, ""},
		{"prompt too long", func(r *domain.SubmissionRequest) { r.Prompt = strings.Repeat("a", 101) }, "prompt"},
		{"multibyte prompt counts runes", func(r *domain.SubmissionRequest) { r.Prompt = "日本語の話" }, ""},
		{"zero slides", func(r *domain.SubmissionRequest) { r.SlideCount = 0 }, "numberOfSlides"},
		{"too many slides", func(r *domain.SubmissionRequest) { r.SlideCount = 21 }, "numberOfSlides"},
		{"max slides", func(r *domain.SubmissionRequest) { r.SlideCount = 20 }, ""},
		{"unknown style", func(r *domain.SubmissionRequest) { r.Style = "baroque" }, "presentationStyle"},
		{"empty style defaults", func(r *domain.SubmissionRequest) { r.Style = "" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)

			err := req.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrValidation)
			var vErr *domain.ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestSubmissionRequest_Normalized(t *testing.T) {
	req := domain.SubmissionRequest{
		PrincipalID: "user-1",
		Prompt:      "  a topic  ",
		SlideCount:  7,
		Style:       " ACADEMIC ",
	}

	norm := req.Normalized()
	assert.Equal(t, "a topic", norm.Prompt)
	assert.Equal(t, domain.StyleAcademic, norm.Style)
	assert.Equal(t, 7, norm.SlideCount)
}

func TestParseStyle(t *testing.T) {
	style, err := domain.ParseStyle("Creative")
	require.NoError(t, err)
	assert.Equal(t, domain.StyleCreative, style)

	style, err = domain.ParseStyle("")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultStyle, style)

	_, err = domain.ParseStyle("gothic")
	assert.ErrorIs(t, err, domain.ErrInvalidStyle)
}

func TestValidationError(t *testing.T) {
	err := domain.NewValidationError("prompt", "is required", nil)
	assert.Equal(t, "invalid prompt: is required", err.Error())
	assert.ErrorIs(t, err, domain.ErrValidation)

	wrapped := domain.NewValidationError("presentationStyle", "bad", domain.ErrInvalidStyle)
	assert.ErrorIs(t, wrapped, domain.ErrInvalidStyle)
	assert.ErrorIs(t, wrapped, domain.ErrValidation)
}
