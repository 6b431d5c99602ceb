package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ArtifactKind names one persisted byproduct of the pipeline.
type ArtifactKind string

// Artifact kinds and their on-disk suffixes.
const (
	KindPrompt ArtifactKind = "prompt"
	KindHTML   ArtifactKind = "html"
	KindImage  ArtifactKind = "image"
	KindCard   ArtifactKind = "card"
)

// secondarySeparator joins a file ID and a model index in derived IDs.
// File IDs never contain an underscore, so derived IDs cannot collide with
// primary ones.
const secondarySeparator = "_model_"

var fileIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9-]*$`)

// Suffix returns the file-name suffix for the kind. The naming convention
// ({id}.html, {id}.png, {id}_card.png, {id}_prompt.txt) is a compatibility
// contract with existing clients.
func (k ArtifactKind) Suffix() string {
	switch k {
	case KindPrompt:
		return "_prompt.txt"
	case KindHTML:
		return ".html"
	case KindImage:
		return ".png"
	case KindCard:
		return "_card.png"
	}
	return ""
}

// IsValid reports whether k is a known kind.
func (k ArtifactKind) IsValid() bool {
	return k.Suffix() != ""
}

// ArtifactID addresses one artifact set: either the primary set of a request
// ({file_id}) or the secondary set produced by the model at a given index in
// the comparative pipeline ({file_id}_model_{index}).
//
// The zero value is invalid.
type ArtifactID struct {
	fileID    string
	index     int
	secondary bool
}

// NewArtifactID returns a fresh primary ID backed by a random UUID.
// IDs are never reused.
func NewArtifactID() ArtifactID {
	return ArtifactID{fileID: uuid.NewString()}
}

// PrimaryArtifactID wraps an existing file ID.
func PrimaryArtifactID(fileID string) (ArtifactID, error) {
	if !fileIDPattern.MatchString(fileID) {
		return ArtifactID{}, fmt.Errorf("%w: %q", ErrInvalidArtifactID, fileID)
	}
	return ArtifactID{fileID: fileID}, nil
}

// ParseArtifactID parses either form of the addressing scheme.
func ParseArtifactID(s string) (ArtifactID, error) {
	base, idx, found := strings.Cut(s, secondarySeparator)
	if !found {
		return PrimaryArtifactID(s)
	}

	primary, err := PrimaryArtifactID(base)
	if err != nil {
		return ArtifactID{}, err
	}

	n, err := strconv.Atoi(idx)
	if err != nil || n < 0 || strconv.Itoa(n) != idx {
		return ArtifactID{}, fmt.Errorf("%w: bad model index in %q", ErrInvalidArtifactID, s)
	}

	return primary.Secondary(n), nil
}

// FileID returns the request-level identifier shared by the primary set and
// all of its secondaries.
func (a ArtifactID) FileID() string {
	return a.fileID
}

// IsZero reports whether a is the zero value.
func (a ArtifactID) IsZero() bool {
	return a.fileID == ""
}

// IsPrimary reports whether a addresses a request's primary set.
func (a ArtifactID) IsPrimary() bool {
	return !a.secondary
}

// Index returns the model index of a secondary ID, or -1 for a primary one.
func (a ArtifactID) Index() int {
	if !a.secondary {
		return -1
	}
	return a.index
}

// Primary returns the primary ID of the same request.
func (a ArtifactID) Primary() ArtifactID {
	return ArtifactID{fileID: a.fileID}
}

// Secondary derives the ID of the artifact set for the model at index i.
func (a ArtifactID) Secondary(i int) ArtifactID {
	return ArtifactID{fileID: a.fileID, index: i, secondary: true}
}

// String renders the ID in its on-disk form.
func (a ArtifactID) String() string {
	if !a.secondary {
		return a.fileID
	}
	return a.fileID + secondarySeparator + strconv.Itoa(a.index)
}

// FileName returns the flat file name of the artifact of the given kind.
func (a ArtifactID) FileName(kind ArtifactKind) string {
	return a.String() + kind.Suffix()
}
