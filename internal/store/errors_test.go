package store

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/smart-card/smartcard-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestErrArtifactNotFoundMatchesDomain(t *testing.T) {
	assert.True(t, errors.Is(ErrArtifactNotFound, domain.ErrArtifactNotFound))
	assert.False(t, errors.Is(ErrArtifactExists, domain.ErrArtifactNotFound))
}

func TestStoreError(t *testing.T) {
	id, err := domain.PrimaryArtifactID("abc")
	assert.NoError(t, err)

	storeErr := NewStoreError(id.Secondary(2), domain.KindCard, "copy", fs.ErrPermission)

	assert.Equal(t, "abc_model_2", storeErr.ArtifactID)
	assert.Contains(t, storeErr.Error(), "copy of card artifact abc_model_2 failed")
	assert.True(t, errors.Is(storeErr, fs.ErrPermission))

	var target *StoreError
	assert.True(t, errors.As(error(storeErr), &target))
}
