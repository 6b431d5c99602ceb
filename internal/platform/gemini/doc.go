// Package gemini provides an implementation of the generation.Invoker
// interface that uses Google's Gemini API.
//
// This package is an infrastructure adapter: it translates a
// generation.Request into a GenerateContent call, maps provider failures onto
// the generation sentinel errors, and concatenates the text parts of the
// first candidate into the raw response handed back to the pipeline.
//
// Content blocked by safety filters is reported as generation.ErrContentBlocked;
// empty or missing candidates as generation.ErrInvalidResponse. The invoker
// never retries.
package gemini
