package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/gursmeep404/sharden/internal/common"
)

// FileStore keeps blobs as <dir>/<uuid>.bin files on local disk.
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed and returns a store over it.
func NewFileStore(dir string) (*FileStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o770); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", abs, err)
	}
	return &FileStore{dir: abs}, nil
}

func (s *FileStore) path(ref string) string {
	// refs are generated here as bare file names; Base guards against any
	// path components sneaking in via a tampered reference
	return filepath.Join(s.dir, filepath.Base(ref))
}

func (s *FileStore) Put(ctx context.Context, data []byte) (string, error) {
	ref := uuid.New().String() + ".bin"
	path := s.path(ref)

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}

	// confirm the blob landed whole before the caller commits metadata
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() != int64(len(data)) {
		_ = os.Remove(path)
		return "", fmt.Errorf("short write %s: %d of %d bytes", path, info.Size(), len(data))
	}

	return ref, nil
}

func (s *FileStore) Get(ctx context.Context, ref string) ([]byte, error) {
	data, err := os.ReadFile(s.path(ref))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, common.ErrBlobMissing
		}
		return nil, fmt.Errorf("read %s: %w", ref, err)
	}
	return data, nil
}

func (s *FileStore) Exists(ctx context.Context, ref string) (bool, error) {
	_, err := os.Stat(s.path(ref))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", ref, err)
	}
	return true, nil
}

func (s *FileStore) Delete(ctx context.Context, ref string) error {
	if err := os.Remove(s.path(ref)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", ref, err)
	}
	return nil
}
