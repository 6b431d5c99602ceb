package generation

import "context"

// RequestObserver is notified of every backend call made through an
// instrumented Invoker.
type RequestObserver interface {
	ObserveLLMRequest(backend, status string)
}

// Instrument wraps inv so each call is reported to obs under backend with a
// "success" or "error" status. A nil observer returns inv unchanged.
func Instrument(backend Backend, inv Invoker, obs RequestObserver) Invoker {
	if obs == nil {
		return inv
	}
	return InvokerFunc(func(ctx context.Context, req Request) (string, error) {
		out, err := inv.Invoke(ctx, req)
		status := "success"
		if err != nil {
			status = "error"
		}
		obs.ObserveLLMRequest(string(backend), status)
		return out, err
	})
}
