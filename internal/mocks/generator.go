package mocks

import (
	"context"
	"sync"

	"github.com/smart-card/smartcard-api/internal/domain"
)

// MockGenerator implements api.Generator for testing
type MockGenerator struct {
	GenerateFn func(ctx context.Context, req domain.GenerationRequest) (*domain.ArtifactSet, error)

	Set *domain.ArtifactSet
	Err error

	mu       sync.Mutex
	requests []domain.GenerationRequest
}

// Generate implements the api.Generator interface
func (m *MockGenerator) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.ArtifactSet, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.GenerateFn != nil {
		return m.GenerateFn(ctx, req)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Set, nil
}

// Requests returns the requests received so far
func (m *MockGenerator) Requests() []domain.GenerationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.GenerationRequest(nil), m.requests...)
}
