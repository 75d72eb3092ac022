package quizgen

// Config controls the behavior of the LLMGenerator.
type Config struct {
	// Validators is the ordered list of validators to run on every
	// generated item. They execute in order; the first failure stops
	// the pipeline.
	Validators []Validator

	// MaxTokens is the token budget for the LLM response.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64

	// Seed, when non-nil, requests deterministic sampling from
	// providers that support it.
	Seed *int64

	// MaxAvoidTopics is the maximum number of prior questions to
	// include in the prompt as a repetition hint.
	MaxAvoidTopics int
}

// DefaultConfig returns a Config with the standard validator chain
// and recommended defaults.
func DefaultConfig() Config {
	return Config{
		Validators: []Validator{
			&StructuralValidator{},
		},
		MaxTokens:      512,
		Temperature:    0.8,
		MaxAvoidTopics: 10,
	}
}
