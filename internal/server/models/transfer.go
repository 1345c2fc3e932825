// Package models defines server-side data models persisted in the database.
package models

import "time"

// EncryptionMode distinguishes who holds the decryption key for a transfer.
type EncryptionMode string

const (
	// ModeEndToEnd: the client supplied ciphertext and keeps the key;
	// the server stores the client's IV and can never decrypt.
	ModeEndToEnd EncryptionMode = "end_to_end"
	// ModeServerManaged: the server generated the key, encrypted on ingest,
	// and retains the key for as long as the record exists.
	ModeServerManaged EncryptionMode = "server_managed"
)

// EncryptionInfo is a tagged variant: a transfer carries either a client IV
// (end-to-end) or a server-held key (server-managed), never both and never
// neither. Constructing one of the two concrete types below is the only way
// to satisfy the interface.
type EncryptionInfo interface {
	Mode() EncryptionMode
}

// EndToEnd holds the client-supplied IV (base64) for a transfer whose key
// material never reached the server.
type EndToEnd struct {
	ClientIV string
}

func (EndToEnd) Mode() EncryptionMode { return ModeEndToEnd }

// ServerManaged holds the server-generated symmetric key.
type ServerManaged struct {
	Key []byte
}

func (ServerManaged) Mode() EncryptionMode { return ModeServerManaged }

// Transfer is one uploaded file's full record: a ciphertext blob reference
// plus metadata. Apart from Revoked, no field is ever mutated after creation;
// that immutability protects audit integrity and non-repudiation.
type Transfer struct {
	// ID is the opaque unique handle for all subsequent operations.
	ID string
	// OriginalName is the sanitized display name, no path components.
	OriginalName string
	// StorageRef locates the encrypted blob in the blob store.
	StorageRef string
	// MimeType is informational; defaults to application/octet-stream.
	MimeType string

	// Sender and Recipient identify the two parties. Sender falls back to an
	// anonymized label when the identity collaborator is unavailable.
	Sender    string
	Recipient string

	// ExpiryAt is creation time plus the configured validity window.
	ExpiryAt time.Time
	// Revoked flips to true at most once and never back.
	Revoked bool

	// Encryption carries the mode-specific material (IV or key).
	Encryption EncryptionInfo

	// EncryptedSize is the byte length of the stored blob.
	EncryptedSize int64

	CreatedAt time.Time
}

// Expired reports whether the transfer's validity window has passed at now.
// Expiry is derived at access time, never stored.
func (t *Transfer) Expired(now time.Time) bool {
	return now.After(t.ExpiryAt)
}
