package models

import "time"

// AuditAction names the operation an audit entry records.
type AuditAction string

const (
	ActionUpload   AuditAction = "upload"
	ActionList     AuditAction = "list"
	ActionDownload AuditAction = "download"
	ActionRawFetch AuditAction = "raw_fetch"
	ActionRevoke   AuditAction = "revoke"
)

// AuditStatus is the outcome of a recorded access attempt.
type AuditStatus string

const (
	StatusSuccess AuditStatus = "success"
	StatusFailure AuditStatus = "failure"
)

// AuditEntry is an immutable record of one access attempt. Entries are
// append-only: never mutated, never deleted. TransferID is nil for attempts
// made before a transfer exists (e.g. a failed lookup); the entry then only
// references the attempted id in Detail.
type AuditEntry struct {
	ID         int64
	TransferID *string
	Action     AuditAction
	Status     AuditStatus
	Detail     string
	Timestamp  time.Time
}
