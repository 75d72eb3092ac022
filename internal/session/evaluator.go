package session

import (
	"time"

	"github.com/abhisek/quizcraft/internal/quizgen"
)

// AnswerRecord captures one evaluated answer.
type AnswerRecord struct {
	ItemID        string
	SelectedIndex int
	Correct       bool
	AnsweredAt    time.Time
}

// Evaluate scores a selected option against an item. It is pure: the
// item is never mutated, and an out-of-range selection returns an
// *InvalidArgumentError with no record produced.
func Evaluate(item *quizgen.Item, selected int) (AnswerRecord, error) {
	if selected < 0 || selected >= len(item.Options) {
		return AnswerRecord{}, &InvalidArgumentError{Field: "selected_index", Value: selected}
	}
	return AnswerRecord{
		ItemID:        item.ID,
		SelectedIndex: selected,
		Correct:       selected == item.CorrectIndex,
		AnsweredAt:    time.Now(),
	}, nil
}
