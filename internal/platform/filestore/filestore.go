// Package filestore implements store.ArtifactStore over one flat directory.
//
// Every artifact is written to a temporary file first and then hard-linked
// into place, so a name only ever appears once its content is complete and
// an existing name is never replaced.
package filestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/smart-card/smartcard-api/internal/domain"
	"github.com/smart-card/smartcard-api/internal/store"
)

const (
	dirMode  = 0o755
	fileMode = 0o644
)

// Store is a directory-backed store.ArtifactStore.
type Store struct {
	root   string
	logger *slog.Logger
}

var _ store.ArtifactStore = (*Store)(nil)

// New creates root if needed and returns a store rooted there.
func New(root string, logger *slog.Logger) (*Store, error) {
	if root == "" {
		return nil, errors.New("output directory cannot be empty")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve output directory %s: %w", root, err)
	}
	if err := os.MkdirAll(abs, dirMode); err != nil {
		return nil, fmt.Errorf("create output directory %s: %w", abs, err)
	}

	return &Store{
		root:   abs,
		logger: logger.With("component", "artifact_store", "root", abs),
	}, nil
}

// Root returns the absolute output directory.
func (s *Store) Root() string {
	return s.root
}

// Path implements store.ArtifactStore.
func (s *Store) Path(id domain.ArtifactID, kind domain.ArtifactKind) string {
	return filepath.Join(s.root, id.FileName(kind))
}

// Put implements store.ArtifactStore.
func (s *Store) Put(
	ctx context.Context,
	id domain.ArtifactID,
	kind domain.ArtifactKind,
	data []byte,
) (string, error) {
	if err := checkAddress(id, kind); err != nil {
		return "", store.NewStoreError(id, kind, "put", err)
	}

	path := s.Path(id, kind)
	if err := WriteExclusive(path, bytes.NewReader(data)); err != nil {
		return "", store.NewStoreError(id, kind, "put", err)
	}

	s.logger.DebugContext(ctx, "artifact written",
		"artifact_id", id.String(),
		"kind", kind,
		"bytes", len(data))
	return path, nil
}

// Copy implements store.ArtifactStore.
func (s *Store) Copy(
	ctx context.Context,
	id domain.ArtifactID,
	from, to domain.ArtifactKind,
) (string, error) {
	if err := checkAddress(id, from); err != nil {
		return "", store.NewStoreError(id, from, "copy", err)
	}
	if err := checkAddress(id, to); err != nil {
		return "", store.NewStoreError(id, to, "copy", err)
	}

	src, err := os.Open(s.Path(id, from))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = store.ErrArtifactNotFound
		}
		return "", store.NewStoreError(id, from, "copy", err)
	}
	defer func() { _ = src.Close() }()

	path := s.Path(id, to)
	if err := WriteExclusive(path, src); err != nil {
		return "", store.NewStoreError(id, to, "copy", err)
	}

	s.logger.DebugContext(ctx, "artifact copied",
		"artifact_id", id.String(),
		"from", from,
		"to", to)
	return path, nil
}

// Exists implements store.ArtifactStore.
func (s *Store) Exists(id domain.ArtifactID, kind domain.ArtifactKind) bool {
	if checkAddress(id, kind) != nil {
		return false
	}
	info, err := os.Stat(s.Path(id, kind))
	return err == nil && info.Mode().IsRegular()
}

// Resolve implements store.ArtifactStore.
func (s *Store) Resolve(id domain.ArtifactID, kind domain.ArtifactKind) (string, error) {
	if !s.Exists(id, kind) {
		return "", store.NewStoreError(id, kind, "resolve", store.ErrArtifactNotFound)
	}
	return s.Path(id, kind), nil
}

func checkAddress(id domain.ArtifactID, kind domain.ArtifactKind) error {
	if id.IsZero() {
		return domain.ErrInvalidArtifactID
	}
	if !kind.IsValid() {
		return fmt.Errorf("%w: %q", store.ErrInvalidKind, kind)
	}
	return nil
}

// WriteExclusive streams r into path, which must not exist yet. Content is
// staged in a temporary file in the same directory and linked into place,
// so readers never observe a partial file. Returns store.ErrArtifactExists
// when path is already taken.
func WriteExclusive(path string, r io.Reader) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".staging-*")
	if err != nil {
		return fmt.Errorf("create staging file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err = io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write staging file: %w", err)
	}
	if err = tmp.Chmod(fileMode); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod staging file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close staging file: %w", err)
	}

	if err = os.Link(tmpName, path); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return store.ErrArtifactExists
		}
		return fmt.Errorf("publish %s: %w", filepath.Base(path), err)
	}
	return nil
}
