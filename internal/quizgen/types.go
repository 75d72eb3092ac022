package quizgen

import "github.com/abhisek/quizcraft/internal/document"

// Item represents a generated multiple-choice quiz item ready for display.
type Item struct {
	// ID uniquely identifies the item within its session.
	ID string

	// Question is the question text shown to the user.
	Question string

	// Options holds exactly 4 answer options, pairwise distinct.
	Options []string

	// CorrectIndex is the index into Options of the correct answer (0-3).
	CorrectIndex int

	// Explanation is a short rationale shown after the user answers.
	// Always present.
	Explanation string

	// ChunkIndexes identifies the document chunks the item was
	// grounded on, for traceability.
	ChunkIndexes []int
}

// GenerateInput holds all context needed to generate one quiz item.
type GenerateInput struct {
	// Topic is the subject the item should focus on. Empty means the
	// item may cover anything in the grounding chunks.
	Topic string

	// Chunks is the grounding context retrieved for this item. The
	// question must be answerable from these chunks alone.
	Chunks []document.Chunk

	// AvoidTopics contains normalized question texts already used in
	// this session. They are passed to the model as a repetition hint;
	// hard uniqueness is enforced separately by the dedup check.
	AvoidTopics []string
}
