package quizgen

import (
	"errors"
	"fmt"
)

// ErrDuplicateItem signals that a generated item is a near-duplicate of
// a prior item in the session. Callers retry generation on it rather
// than surfacing it to the user.
var ErrDuplicateItem = errors.New("generated item duplicates a prior question")

// MalformedError reports that the model's output failed structural
// validation: unparseable JSON, schema violations, or validator
// failures. Retrying with the same grounding context is reasonable;
// transport and provider errors are never wrapped in it.
type MalformedError struct {
	Reason string
	Err    error
}

func (e *MalformedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed generation: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed generation: %s", e.Reason)
}

func (e *MalformedError) Unwrap() error { return e.Err }
