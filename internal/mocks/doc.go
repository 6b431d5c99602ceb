// Package mocks holds hand-written test doubles for the interfaces the
// pipeline and its HTTP layer depend on.
//
// Every mock follows the same shape: an optional function field overrides
// the behavior, simple fields (Err, Summary, Image, ...) cover the common
// cases, and recorded calls are exposed through accessor methods that are
// safe to use from concurrent tests.
//
//	invoker := &mocks.MockInvoker{
//	    InvokeFn: func(ctx context.Context, req generation.Request) (string, error) {
//	        return "<html><body>card</body></html>", nil
//	    },
//	}
package mocks
