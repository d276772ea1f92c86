// Package service contains the application use cases for presentation jobs.
// It orchestrates the domain model, the durable job store, the volatile
// status and result caches, the work queue and the rate limiter.
//
// Key components:
//
// 1. JobService:
//   - Submit validates a request, checks the daily quota, creates a PENDING
//     job and hands a work item to the queue
//   - GetStatus and GetResult reconcile the durable job with whatever the
//     worker has written to the caches, promoting results on first read
//   - ExpireStale fails jobs that never reached a terminal state
//
// 2. Error Handling:
//   - Expected conditions are sentinel errors (ErrQuotaExceeded, ErrJobNotFound)
//   - Unexpected failures are wrapped in *JobServiceError, which unwraps to
//     ErrInternal so the API layer can map it to a 500 without leaking detail
//
// The service depends on the interfaces in internal/store, internal/cache and
// internal/queue, never on a concrete backend.
package service
