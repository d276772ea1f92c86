package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/deckgen-api/internal/api/shared"
	"github.com/phrazzld/deckgen-api/internal/domain"
	"github.com/phrazzld/deckgen-api/internal/service"
	"github.com/phrazzld/deckgen-api/internal/service/auth"
	"github.com/phrazzld/deckgen-api/internal/store"
)

// genericErrorMessage is shown for failures with no more specific safe message.
const genericErrorMessage = "An unexpected error occurred"

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusInternalServerError

	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrMissingSubject),
		errors.Is(err, auth.ErrWrongTokenType):
		return http.StatusUnauthorized

	case errors.Is(err, service.ErrNotOwned):
		return http.StatusForbidden

	case errors.Is(err, service.ErrJobNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, service.ErrQuotaExceeded):
		return http.StatusTooManyRequests

	// Internal errors are checked before validation so that a wrapped cause
	// never turns a server fault into a client fault.
	case errors.Is(err, service.ErrInternal):
		return http.StatusInternalServerError

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return genericErrorMessage
	}

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrMissingSubject),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid token"

	case errors.Is(err, service.ErrNotOwned):
		return "You do not have access to these presentations"

	case errors.Is(err, service.ErrJobNotFound),
		errors.Is(err, store.ErrNotFound):
		return "Job not found"

	case errors.Is(err, service.ErrQuotaExceeded):
		return "Daily presentation limit reached. Try again tomorrow."

	case errors.Is(err, service.ErrEnqueueFailed):
		return "Failed to queue presentation job"

	case errors.Is(err, service.ErrInvalidResult):
		return "Failed to read presentation result"

	case errors.Is(err, service.ErrInternal):
		return genericErrorMessage

	case errors.Is(err, domain.ErrValidation):
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			return verr.Error()
		}
		return "Validation error"

	default:
		return genericErrorMessage
	}
}

// SanitizeValidationError turns validator output into a message naming the
// first failing field, without echoing the submitted value.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
	}
	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min", "gte":
		return "too small or too short"
	case "max", "lte":
		return "too large or too long"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the status and safe message for err and logs the
// redacted error. defaultMsg, when set, replaces the generic message.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string, opts ...shared.ResponseOption) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if message == genericErrorMessage && defaultMsg != "" {
		message = defaultMsg
	}
	if status == http.StatusForbidden {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}
