// Package generation provides the model-facing half of the card pipeline:
// the prompt composer, the Invoker contract implemented by each LLM backend,
// the router that dispatches a model identifier to its backend, and the
// extractor that pulls an HTML document out of raw model output. It does not
// depend on any concrete provider SDK; those live under internal/platform.
package generation
