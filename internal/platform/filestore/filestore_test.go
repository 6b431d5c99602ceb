package filestore_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smart-card/smartcard-api/internal/domain"
	"github.com/smart-card/smartcard-api/internal/platform/filestore"
	"github.com/smart-card/smartcard-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *filestore.Store {
	t.Helper()
	s, err := filestore.New(t.TempDir(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return s
}

func mustID(t *testing.T, s string) domain.ArtifactID {
	t.Helper()
	id, err := domain.ParseArtifactID(s)
	require.NoError(t, err)
	return id
}

func TestPutAndResolve(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	ctx := context.Background()
	id := mustID(t, "abc")

	path, err := s.Put(ctx, id, domain.KindHTML, []byte("<p>hi</p>"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Root(), "abc.html"), path)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<p>hi</p>", string(got))

	assert.True(t, s.Exists(id, domain.KindHTML))
	assert.False(t, s.Exists(id, domain.KindImage))

	resolved, err := s.Resolve(id, domain.KindHTML)
	require.NoError(t, err)
	assert.Equal(t, path, resolved)

	_, err = s.Resolve(id, domain.KindCard)
	assert.ErrorIs(t, err, store.ErrArtifactNotFound)
	assert.ErrorIs(t, err, domain.ErrArtifactNotFound)
}

func TestNamingConvention(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	primary := mustID(t, "f00")
	secondary := primary.Secondary(1)

	tests := []struct {
		id   domain.ArtifactID
		kind domain.ArtifactKind
		want string
	}{
		{primary, domain.KindHTML, "f00.html"},
		{primary, domain.KindImage, "f00.png"},
		{primary, domain.KindCard, "f00_card.png"},
		{primary, domain.KindPrompt, "f00_prompt.txt"},
		{secondary, domain.KindHTML, "f00_model_1.html"},
		{secondary, domain.KindCard, "f00_model_1_card.png"},
	}
	for _, tt := range tests {
		assert.Equal(t, filepath.Join(s.Root(), tt.want), s.Path(tt.id, tt.kind))
	}
}

func TestPutIsAppendOnly(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	ctx := context.Background()
	id := mustID(t, "once")

	_, err := s.Put(ctx, id, domain.KindPrompt, []byte("first"))
	require.NoError(t, err)

	_, err = s.Put(ctx, id, domain.KindPrompt, []byte("second"))
	assert.ErrorIs(t, err, store.ErrArtifactExists)

	got, err := os.ReadFile(s.Path(id, domain.KindPrompt))
	require.NoError(t, err)
	assert.Equal(t, "first", string(got))
}

func TestCopy(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	ctx := context.Background()
	id := mustID(t, "img")
	image := []byte{0x89, 'P', 'N', 'G', 1, 2, 3}

	_, err := s.Put(ctx, id, domain.KindImage, image)
	require.NoError(t, err)

	path, err := s.Copy(ctx, id, domain.KindImage, domain.KindCard)
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(image, got))

	_, err = s.Copy(ctx, mustID(t, "missing"), domain.KindImage, domain.KindCard)
	assert.ErrorIs(t, err, store.ErrArtifactNotFound)
}

func TestInvalidAddress(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	_, err := s.Put(context.Background(), domain.ArtifactID{}, domain.KindHTML, []byte("x"))
	assert.ErrorIs(t, err, domain.ErrInvalidArtifactID)

	_, err = s.Put(context.Background(), mustID(t, "a"), domain.ArtifactKind("pdf"), []byte("x"))
	assert.ErrorIs(t, err, store.ErrInvalidKind)
	assert.False(t, s.Exists(mustID(t, "a"), domain.ArtifactKind("pdf")))
}

func TestWriteExclusiveLeavesNoStagingFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := filepath.Join(dir, "x.png")

	require.NoError(t, filestore.WriteExclusive(target, strings.NewReader("data")))

	failing := io.MultiReader(strings.NewReader("partial"), errReader{})
	err := filestore.WriteExclusive(filepath.Join(dir, "y.png"), failing)
	assert.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "x.png", entries[0].Name())
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestNewValidation(t *testing.T) {
	t.Parallel()

	_, err := filestore.New("", slog.Default())
	assert.Error(t, err)

	_, err = filestore.New(t.TempDir(), nil)
	assert.Error(t, err)
}
