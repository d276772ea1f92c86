package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		notFound  bool
		duplicate bool
		conflict  bool
	}{
		{name: "nil error"},
		{name: "generic error", err: errors.New("some error")},
		{name: "ErrNotFound", err: ErrNotFound, notFound: true},
		{name: "wrapped ErrJobNotFound", err: fmt.Errorf("get: %w", ErrJobNotFound), notFound: true},
		{name: "ErrJobExists", err: ErrJobExists, duplicate: true},
		{name: "ErrStatusConflict", err: ErrStatusConflict, conflict: true},
		{name: "wrapped ErrResultConflict", err: fmt.Errorf("promote: %w", ErrResultConflict), conflict: true},
		{
			name:     "store error wrapping not found",
			err:      NewStoreError("job", "get", "lookup failed", ErrJobNotFound),
			notFound: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.notFound, IsNotFoundError(tt.err))
			assert.Equal(t, tt.duplicate, IsDuplicateError(tt.err))
			assert.Equal(t, tt.conflict, IsConflictError(tt.err))
		})
	}
}

func TestConflictErrorsAreDistinct(t *testing.T) {
	assert.False(t, errors.Is(ErrStatusConflict, ErrResultConflict))
	assert.False(t, errors.Is(ErrResultConflict, ErrStatusConflict))
}

func TestStoreError(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewStoreError("job", "update_status", "query failed", cause)

	assert.Equal(t, "update_status operation on job failed: query failed: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)

	bare := NewStoreError("job", "create", "invalid", nil)
	assert.Equal(t, "create operation on job failed: invalid", bare.Error())
}
