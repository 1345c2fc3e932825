// Package blob provides byte-oriented storage for opaque encrypted payloads.
// A store persists blobs addressed by generated references and carries no
// knowledge of their content or encryption mode.
package blob

import "context"

// Store is the blob store collaborator contract. Put generates the reference;
// callers treat it as opaque.
type Store interface {
	Put(ctx context.Context, data []byte) (string, error)
	Get(ctx context.Context, ref string) ([]byte, error)
	Exists(ctx context.Context, ref string) (bool, error)
	Delete(ctx context.Context, ref string) error
}
