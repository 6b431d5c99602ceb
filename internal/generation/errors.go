package generation

import "errors"

// Common errors returned by the generation package
var (
	// ErrInvalidResponse is returned when the LLM response is empty or malformed
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrNoHTML is returned when no HTML document can be found in a model response
	ErrNoHTML = errors.New("no HTML found in model response")

	// ErrContentBlocked is returned when the LLM blocks the content due to safety filters
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrUnknownModel is returned when no registered backend serves a model identifier
	ErrUnknownModel = errors.New("no backend registered for model")

	// ErrInvalidConfig is returned when an invoker configuration is invalid
	ErrInvalidConfig = errors.New("invalid invoker configuration")

	// ErrEmptyPrompt is returned when there is no user text to compose or send
	ErrEmptyPrompt = errors.New("prompt cannot be empty")
)
