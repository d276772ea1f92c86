package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/deckgen-api/internal/api/shared"
	"github.com/phrazzld/deckgen-api/internal/domain"
	"github.com/phrazzld/deckgen-api/internal/service/auth"
)

// Pagination bounds for list endpoints.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// maxPathIDLength bounds ids taken from the URL path.
const maxPathIDLength = 128

var errInvalidPathID = errors.New("invalid path id")

// getPrincipalIDFromContext extracts the authenticated principal id placed
// in the context by the authentication middleware.
func getPrincipalIDFromContext(r *http.Request) (string, bool) {
	return shared.GetPrincipalID(r.Context())
}

// getPathID extracts a non-empty id from the URL path. Ids are opaque here:
// an id that names no job is reported by the service as not found.
func getPathID(r *http.Request, paramName string) (string, error) {
	id := strings.TrimSpace(chi.URLParam(r, paramName))
	if id == "" {
		return "", domain.NewValidationError(paramName, "is required", errInvalidPathID)
	}
	if len(id) > maxPathIDLength {
		return "", domain.NewValidationError(paramName, "is too long", errInvalidPathID)
	}
	return id, nil
}

// getPagination reads limit and offset query parameters. A missing limit
// defaults to DefaultPageLimit and larger values are capped at MaxPageLimit.
func getPagination(r *http.Request) (limit, offset int, err error) {
	limit = DefaultPageLimit
	q := r.URL.Query()

	if raw := q.Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return 0, 0, domain.NewValidationError("limit", "must be a positive integer", err)
		}
		if limit > MaxPageLimit {
			limit = MaxPageLimit
		}
	}

	if raw := q.Get("offset"); raw != "" {
		offset, err = strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return 0, 0, domain.NewValidationError("offset", "must be a non-negative integer", err)
		}
	}
	return limit, offset, nil
}

// handlePrincipalAndPathID extracts both the principal id from context and
// an id from the path. It writes an error response if either extraction fails.
func handlePrincipalAndPathID(
	w http.ResponseWriter,
	r *http.Request,
	paramName string,
	log *slog.Logger,
) (string, string, bool) {
	principalID, ok := getPrincipalIDFromContext(r)
	if !ok {
		log.Warn("principal ID not found in request context")
		HandleAPIError(w, r, auth.ErrMissingSubject, "")
		return "", "", false
	}

	pathID, err := getPathID(r, paramName)
	if err != nil {
		log.Warn("invalid "+paramName, slog.String("param_name", paramName))
		HandleAPIError(w, r, err, "")
		return "", "", false
	}

	return principalID, pathID, true
}
