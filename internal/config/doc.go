// Package config loads, parses and validates deckgen settings from an optional
// config.yaml, an optional .env file and DECKGEN_-prefixed environment
// variables. Environment variables win over file values; defaults cover every
// setting except the database URL and the JWT secret.
package config
