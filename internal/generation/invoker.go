package generation

import "context"

// Request is a single model invocation.
type Request struct {
	// Model is the backend-specific model identifier after routing.
	Model string

	// Prompt is the composed user message.
	Prompt string

	// SystemPrompt is sent as the system role when the backend supports one.
	SystemPrompt string

	Temperature float64
}

// Invoker defines the boundary between the pipeline and an external LLM
// service. Implementations return the raw generated text; they do not retry.
type Invoker interface {
	// Invoke sends req to the model and returns its raw text output, or an
	// error wrapping one of the sentinels in errors.go when the provider
	// fails, blocks the content, or returns nothing usable.
	Invoke(ctx context.Context, req Request) (string, error)
}

// InvokerFunc adapts a function to the Invoker interface.
type InvokerFunc func(ctx context.Context, req Request) (string, error)

// Invoke calls f(ctx, req).
func (f InvokerFunc) Invoke(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
