// Package worker runs presentation generation in the background.
//
// A Pool of goroutines pops work items from a queue.Consumer, generates the
// deck and reports progress through the status and result caches only; it
// never touches the job store. A Sweeper periodically asks the job service
// to fail jobs that never reached a terminal state.
package worker
