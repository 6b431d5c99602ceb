package generation

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// Backend names a family of model providers.
type Backend string

// Known backends.
const (
	BackendOpenAI Backend = "openai"
	BackendGemini Backend = "gemini"
	BackendOllama Backend = "ollama"
)

const (
	geminiPrefix = "gemini-"
	ollamaPrefix = "ollama/"
)

// Route maps a model identifier to its backend and the identifier that
// backend expects. Gemini models keep their name, Ollama models lose the
// "ollama/" prefix, and every other identifier goes to the OpenAI-compatible
// endpoint unchanged.
func Route(model string) (Backend, string) {
	switch {
	case strings.HasPrefix(model, geminiPrefix):
		return BackendGemini, model
	case strings.HasPrefix(model, ollamaPrefix):
		return BackendOllama, strings.TrimPrefix(model, ollamaPrefix)
	default:
		return BackendOpenAI, model
	}
}

// Router implements Invoker by dispatching each request to the backend that
// serves its model.
type Router struct {
	mu       sync.RWMutex
	backends map[Backend]Invoker
	logger   *slog.Logger
}

// NewRouter creates a Router with no backends registered.
func NewRouter(logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		backends: make(map[Backend]Invoker),
		logger:   logger.With("component", "model_router"),
	}
}

// Register installs inv as the invoker for backend, replacing any previous one.
func (r *Router) Register(backend Backend, inv Invoker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backends[backend] = inv
}

// Backends returns the registered backend names in sorted order.
func (r *Router) Backends() []Backend {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]Backend, 0, len(r.backends))
	for b := range r.backends {
		names = append(names, b)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Invoke routes req.Model and forwards the request with the backend's model name.
func (r *Router) Invoke(ctx context.Context, req Request) (string, error) {
	backend, model := Route(req.Model)

	r.mu.RLock()
	inv, ok := r.backends[backend]
	r.mu.RUnlock()

	if !ok {
		return "", fmt.Errorf("%w: %q (backend %s not configured)", ErrUnknownModel, req.Model, backend)
	}
	if model == "" {
		return "", fmt.Errorf("%w: empty model name after routing %q", ErrUnknownModel, req.Model)
	}

	r.logger.DebugContext(ctx, "routing model invocation",
		"model", req.Model,
		"backend", backend)

	req.Model = model
	return inv.Invoke(ctx, req)
}
