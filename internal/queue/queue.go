// Package queue defines the hand-off between job submission and the
// generation worker: the WorkItem wire format, the producer and consumer
// contracts, and a buffered in-memory queue for single-process deployments.
// The Redis list implementation lives in internal/platform/redis.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Common errors returned by queue implementations.
var (
	ErrQueueClosed = errors.New("job queue is closed")
	ErrQueueFull   = errors.New("job queue is full")

	// ErrEmpty is returned by Pop when no item arrived before the timeout.
	ErrEmpty = errors.New("job queue is empty")

	// ErrMalformedItem is returned when a queued payload cannot be decoded.
	ErrMalformedItem = errors.New("malformed work item")
)

// WorkItem is everything the worker needs to generate a presentation.
// The JSON field names are the wire format shared with external workers.
type WorkItem struct {
	JobID      string `json:"job_id"`
	Prompt     string `json:"prompt"`
	SlideCount int    `json:"numberOfSlides"`
	Style      string `json:"presentationStyle"`
}

// Encode serialises the item in its wire format.
func (w WorkItem) Encode() ([]byte, error) {
	if strings.TrimSpace(w.JobID) == "" {
		return nil, fmt.Errorf("%w: missing job_id", ErrMalformedItem)
	}
	return json.Marshal(w)
}

// Decode parses a wire-format payload.
func Decode(data []byte) (WorkItem, error) {
	var w WorkItem
	if err := json.Unmarshal(data, &w); err != nil {
		return WorkItem{}, fmt.Errorf("%w: %v", ErrMalformedItem, err)
	}
	if strings.TrimSpace(w.JobID) == "" {
		return WorkItem{}, fmt.Errorf("%w: missing job_id", ErrMalformedItem)
	}
	return w, nil
}

// Publisher pushes work items onto the queue.
type Publisher interface {
	Push(ctx context.Context, item WorkItem) error
}

// Consumer pops work items in FIFO order. Pop blocks for at most timeout
// and returns ErrEmpty when nothing arrived.
type Consumer interface {
	Pop(ctx context.Context, timeout time.Duration) (WorkItem, error)
}
