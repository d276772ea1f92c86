// Package postgres implements the store interfaces on PostgreSQL through the
// pgx database/sql driver. Schema migrations are embedded and applied with
// goose.
//
// Status and result writes are conditional UPDATEs; when one touches no rows
// the store checks whether the job exists so callers can tell a missing job
// from a lost race.
package postgres
