// Package store defines the artifact persistence contract. Artifacts are
// files addressed by a domain.ArtifactID and a domain.ArtifactKind; the
// interface hides where and how they are written so the pipeline can run
// against a directory on disk or an in-memory fake in tests.
package store
