package quizgen

// StructuralValidator checks that required fields are present, within
// length limits, and that the option set is well formed.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(item *Item, _ GenerateInput) *ValidationError {
	if item.Question == "" {
		return &ValidationError{
			Validator: v.Name(),
			Message:   "question is empty",
			Retryable: true,
		}
	}
	if len(item.Question) > 500 {
		return &ValidationError{
			Validator: v.Name(),
			Message:   "question exceeds 500 characters",
			Retryable: true,
		}
	}
	if len(item.Options) != 4 {
		return &ValidationError{
			Validator: v.Name(),
			Message:   "options must contain exactly 4 entries",
			Retryable: true,
		}
	}
	seen := make(map[string]bool, 4)
	for _, opt := range item.Options {
		if opt == "" {
			return &ValidationError{
				Validator: v.Name(),
				Message:   "options must be non-empty",
				Retryable: true,
			}
		}
		if seen[opt] {
			return &ValidationError{
				Validator: v.Name(),
				Message:   "options must be pairwise distinct",
				Retryable: true,
			}
		}
		seen[opt] = true
	}
	if item.CorrectIndex < 0 || item.CorrectIndex > 3 {
		return &ValidationError{
			Validator: v.Name(),
			Message:   "correct_index must be between 0 and 3",
			Retryable: true,
		}
	}
	if item.Explanation == "" {
		return &ValidationError{
			Validator: v.Name(),
			Message:   "explanation is empty",
			Retryable: true,
		}
	}
	if len(item.Explanation) > 1000 {
		return &ValidationError{
			Validator: v.Name(),
			Message:   "explanation exceeds 1000 characters",
			Retryable: true,
		}
	}
	return nil
}
