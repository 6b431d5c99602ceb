package generation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/smart-card/smartcard-api/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		model       string
		wantBackend generation.Backend
		wantModel   string
	}{
		{"deepseek-v3-250324", generation.BackendOpenAI, "deepseek-v3-250324"},
		{"gemini-2.0-flash", generation.BackendGemini, "gemini-2.0-flash"},
		{"ollama/llama3.2", generation.BackendOllama, "llama3.2"},
		{"doubao-pro-32k", generation.BackendOpenAI, "doubao-pro-32k"},
	}

	for _, tt := range tests {
		backend, model := generation.Route(tt.model)
		assert.Equal(t, tt.wantBackend, backend, tt.model)
		assert.Equal(t, tt.wantModel, model, tt.model)
	}
}

func TestRouterInvoke(t *testing.T) {
	t.Parallel()

	var got []generation.Request
	record := func(name string) generation.Invoker {
		return generation.InvokerFunc(func(_ context.Context, req generation.Request) (string, error) {
			got = append(got, req)
			return name + ":" + req.Model, nil
		})
	}

	r := generation.NewRouter(nil)
	r.Register(generation.BackendOpenAI, record("openai"))
	r.Register(generation.BackendOllama, record("ollama"))

	out, err := r.Invoke(context.Background(), generation.Request{Model: "ollama/qwen2", Prompt: "p", Temperature: 0.3})
	require.NoError(t, err)
	assert.Equal(t, "ollama:qwen2", out)

	out, err = r.Invoke(context.Background(), generation.Request{Model: "deepseek-v3"})
	require.NoError(t, err)
	assert.Equal(t, "openai:deepseek-v3", out)

	require.Len(t, got, 2)
	assert.Equal(t, "p", got[0].Prompt)
	assert.Equal(t, 0.3, got[0].Temperature)

	assert.Equal(t, []generation.Backend{generation.BackendOllama, generation.BackendOpenAI}, r.Backends())
}

func TestRouterUnknownBackend(t *testing.T) {
	t.Parallel()

	r := generation.NewRouter(nil)
	r.Register(generation.BackendOpenAI, generation.InvokerFunc(func(context.Context, generation.Request) (string, error) {
		return "", errors.New("should not be called")
	}))

	_, err := r.Invoke(context.Background(), generation.Request{Model: "gemini-1.5-pro"})
	assert.ErrorIs(t, err, generation.ErrUnknownModel)

	r.Register(generation.BackendOllama, generation.InvokerFunc(func(context.Context, generation.Request) (string, error) {
		return "", errors.New("should not be called")
	}))
	_, err = r.Invoke(context.Background(), generation.Request{Model: "ollama/"})
	assert.ErrorIs(t, err, generation.ErrUnknownModel)
}
