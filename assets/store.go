// Package assets holds the per-request temporary store for generated media.
// Every request gets its own directory; nothing is shared across requests
// and everything is reclaimed when the request finishes, successfully or not.
package assets

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"brainrotify/types"
)

// Store is a scoped temporary asset store for one generation request.
type Store struct {
	requestID string
	dir       string
}

// NewStore creates the working directory for one request under baseDir.
func NewStore(baseDir string) (*Store, error) {
	requestID := uuid.NewString()[:8]
	dir := filepath.Join(baseDir, "brainrotify", requestID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create asset dir: %w", err)
	}
	return &Store{requestID: requestID, dir: dir}, nil
}

// RequestID identifies the request this store belongs to.
func (s *Store) RequestID() string { return s.requestID }

// Dir is the store's working directory, usable as scratch space by the
// assembler.
func (s *Store) Dir() string { return s.dir }

// Put writes data under the store and returns the owning asset reference.
func (s *Store) Put(name, contentType string, data []byte) (*types.Asset, error) {
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("write asset %s: %w", name, err)
	}
	return &types.Asset{
		ID:          fmt.Sprintf("%s/%s", s.requestID, name),
		Path:        path,
		ContentType: contentType,
	}, nil
}

// Release reclaims every asset owned by the request. Safe to call more
// than once.
func (s *Store) Release() error {
	return os.RemoveAll(s.dir)
}
