// Package domain defines the entities of the presentation pipeline: the
// durable Job and its status lifecycle, the generated Presentation payload,
// and the transient SubmissionRequest a client sends to start a job.
//
// Everything here is free of storage and transport concerns. Status and style
// strings coming from caches, queues or clients are normalised through
// ParseJobStatus and ParseStyle before use.
package domain
