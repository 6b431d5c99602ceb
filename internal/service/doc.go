// Package service contains the application use cases of the card generator.
//
// GenerationService is the orchestrator. It validates a request, dispatches
// on its mode (prompt, paste, direct), drives the prompt composer, model
// invoker and HTML extractor, persists every artifact under a fresh
// domain.ArtifactID, and then renders and card-crops the primary HTML. In
// comparative mode it runs each requested model in order and builds one
// combined document out of the per-model results.
//
// DownloadService resolves artifact IDs to stored files. A card download whose
// image is missing regenerates it from the stored HTML; concurrent downloads of
// the same ID share one regeneration.
//
// SummaryService and WebFetchService are thin wrappers around a single model
// call and a single reader-proxy fetch.
//
// Every blocking stage (model calls, rendering, card extraction) runs through a
// TaskRunner, normally the worker pool's task.Offloader, so a slow render does
// not hold up unrelated requests.
//
// Services depend on interfaces declared here and in internal/store, never on
// the platform packages that implement them.
package service
