// Package task runs blocking work on a bounded pool of worker goroutines.
// HTTP handlers hand model invocation, rendering and card extraction to the
// pool through an Offloader and wait for the result, so the number of
// concurrent slow operations is capped regardless of request volume.
package task
