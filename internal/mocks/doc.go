// Package mocks provides centralized test doubles for the store, cache,
// queue, generation and auth interfaces.
//
// Each mock keeps working in-memory behaviour by default so that tests can
// drive whole flows, and exposes XxxFn fields to override a single method
// when a test needs to inject a failure. Calls are tracked under a mutex so
// that assertions stay safe when the code under test is concurrent.
//
// Usage:
//
//	jobs := mocks.NewMockJobStore()
//	jobs.UpdateStatusFn = func(ctx context.Context, id string, from, to domain.JobStatus) error {
//	    return errors.New("database unavailable")
//	}
package mocks
