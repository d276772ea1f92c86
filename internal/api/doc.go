// Package api handles the presentation job HTTP endpoints: submission,
// status polling, result retrieval and per-principal listings. It maps
// service errors to status codes and never exposes internal error text.
package api
