// Package common defines shared constants and sentinel errors used across
// the service layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Validation errors (user-fixable, 4xx).
	ErrMissingField = errors.New("missing field")
	ErrEmptyPayload = errors.New("empty payload")

	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Access-control errors. Expired and revoked are surfaced separately so
	// the caller always learns the specific reason for denial.
	ErrExpired = errors.New("expired")
	ErrRevoked = errors.New("revoked")

	// Mode/operation mismatch (e.g. server-side decrypt of an end-to-end
	// transfer, which the server holds no key for).
	ErrUnsupportedOperation = errors.New("unsupported operation")

	// Decryption tag mismatch: tampering or wrong key. Distinct from I/O
	// failures so it maps to a 4xx-equivalent outcome, never retried.
	ErrIntegrity = errors.New("integrity check failed")

	// Blob referenced by metadata is missing on the store.
	ErrBlobMissing = errors.New("encrypted blob missing")

	// Underlying store failure (5xx-equivalent). Always wrapped with detail.
	ErrStorage = errors.New("storage error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)
