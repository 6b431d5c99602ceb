package store

import (
	"context"

	"github.com/smart-card/smartcard-api/internal/domain"
)

// ArtifactStore persists pipeline artifacts under one flat namespace.
//
// Writes are append-only: once Put or Copy returns for (id, kind), the
// artifact is complete and will not change. No locking is provided beyond
// that; IDs are never reused by two requests.
type ArtifactStore interface {
	// Put writes data as the artifact (id, kind) and returns its path.
	// Returns ErrArtifactExists if it was already written.
	Put(ctx context.Context, id domain.ArtifactID, kind domain.ArtifactKind, data []byte) (string, error)

	// Copy duplicates artifact (id, from) as (id, to) and returns the new path.
	// Returns ErrArtifactNotFound if the source is missing.
	Copy(ctx context.Context, id domain.ArtifactID, from, to domain.ArtifactKind) (string, error)

	// Exists reports whether artifact (id, kind) has been written.
	Exists(id domain.ArtifactID, kind domain.ArtifactKind) bool

	// Path returns where artifact (id, kind) lives or will live. Producers
	// that write through their own I/O (the renderer, the card extractor)
	// target this path.
	Path(id domain.ArtifactID, kind domain.ArtifactKind) string

	// Resolve returns the path of an existing artifact, or ErrArtifactNotFound.
	Resolve(id domain.ArtifactID, kind domain.ArtifactKind) (string, error)
}
