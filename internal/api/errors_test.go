package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/deckgen-api/internal/api/shared"
	"github.com/phrazzld/deckgen-api/internal/domain"
	"github.com/phrazzld/deckgen-api/internal/service"
	"github.com/phrazzld/deckgen-api/internal/service/auth"
	"github.com/phrazzld/deckgen-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{name: "nil error", err: nil, expectedStatus: http.StatusInternalServerError},
		{name: "authentication error", err: auth.ErrInvalidToken, expectedStatus: http.StatusUnauthorized},
		{
			name:           "wrapped authentication error",
			err:            fmt.Errorf("failed to authenticate: %w", auth.ErrExpiredToken),
			expectedStatus: http.StatusUnauthorized,
		},
		{name: "not owned", err: service.ErrNotOwned, expectedStatus: http.StatusForbidden},
		{name: "job not found", err: service.ErrJobNotFound, expectedStatus: http.StatusNotFound},
		{
			name:           "store not found",
			err:            fmt.Errorf("get job: %w", store.ErrJobNotFound),
			expectedStatus: http.StatusNotFound,
		},
		{name: "quota exceeded", err: service.ErrQuotaExceeded, expectedStatus: http.StatusTooManyRequests},
		{
			name:           "validation error",
			err:            domain.NewValidationError("prompt", "must be at least 5 characters", nil),
			expectedStatus: http.StatusBadRequest,
		},
		{name: "enqueue failure", err: service.ErrEnqueueFailed, expectedStatus: http.StatusInternalServerError},
		{
			name:           "invalid result wrapping a validation cause",
			err:            errors.Join(service.ErrInvalidResult, domain.ErrValidation),
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "job service error",
			err:            service.NewJobServiceError("submit", "failed to create job", errors.New("connection reset")),
			expectedStatus: http.StatusInternalServerError,
		},
		{name: "unknown error", err: errors.New("unknown error"), expectedStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedStatus, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	tests := []struct {
		name            string
		err             error
		expectedMessage string
	}{
		{name: "nil error", err: nil, expectedMessage: "An unexpected error occurred"},
		{name: "invalid token", err: auth.ErrInvalidToken, expectedMessage: "Invalid token"},
		{name: "expired token", err: auth.ErrExpiredToken, expectedMessage: "Token expired"},
		{name: "not found", err: service.ErrJobNotFound, expectedMessage: "Job not found"},
		{
			name:            "quota",
			err:             service.ErrQuotaExceeded,
			expectedMessage: "Daily presentation limit reached. Try again tomorrow.",
		},
		{
			name:            "enqueue failure with cause",
			err:             fmt.Errorf("%w: %w", service.ErrEnqueueFailed, errors.New("redis down")),
			expectedMessage: "Failed to queue presentation job",
		},
		{
			name:            "validation error names the field",
			err:             domain.NewValidationError("numberOfSlides", "must be between 1 and 20", nil),
			expectedMessage: "invalid numberOfSlides: must be between 1 and 20",
		},
		{
			name:            "database error",
			err:             errors.New("database error: connection refused"),
			expectedMessage: "An unexpected error occurred",
		},
		{
			name: "wrapped SQL details",
			err: service.NewJobServiceError("get_job", "failed to load job",
				errors.New("syntax error at line 42 in SELECT * FROM jobs")),
			expectedMessage: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			message := GetSafeErrorMessage(tt.err)
			assert.Equal(t, tt.expectedMessage, message)
			if tt.err != nil && tt.expectedMessage == genericErrorMessage {
				assert.NotContains(t, message, tt.err.Error())
			}
		})
	}
}

func TestSanitizeValidationError(t *testing.T) {
	req := CreatePresentationRequest{Prompt: "hi", NumberOfSlides: 3}
	err := shared.ValidateRequest(&req)
	require.Error(t, err)

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))

	safe := SanitizeValidationError(err)
	assert.Equal(t, "Invalid prompt: too small or too short", safe)
	assert.NotContains(t, safe, "CreatePresentationRequest", "struct names are not exposed")

	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("some other kind of error")))
}

func TestHandleAPIError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		defaultMsg  string
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "default message replaces generic text",
			err:         errors.New("boom"),
			defaultMsg:  "Failed to list presentations",
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Failed to list presentations",
		},
		{
			name:        "specific internal message is kept",
			err:         service.ErrInvalidResult,
			defaultMsg:  "Failed to retrieve presentation",
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Failed to read presentation result",
		},
		{
			name:        "client errors ignore the default",
			err:         service.ErrJobNotFound,
			defaultMsg:  "Failed to get presentation status",
			wantStatus:  http.StatusNotFound,
			wantMessage: "Job not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/presentations/x", nil)
			rec := httptest.NewRecorder()

			HandleAPIError(rec, req, tt.err, tt.defaultMsg)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var resp shared.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantMessage, resp.Error)
		})
	}
}
