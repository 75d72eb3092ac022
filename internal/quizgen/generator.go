package quizgen

import "context"

// Generator produces quiz items grounded in document chunks.
type Generator interface {
	// Generate produces a single quiz item for the given input context.
	// Returns a validated Item or an error. All configured validators
	// are run before returning; a failure is reported as a
	// *MalformedError so callers can decide retry vs. abort.
	Generate(ctx context.Context, input GenerateInput) (*Item, error)
}
