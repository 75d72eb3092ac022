package quizgen

import "github.com/abhisek/quizcraft/internal/llm"

// ItemSchema defines the JSON schema for LLM quiz item responses.
var ItemSchema = &llm.Schema{
	Name:        "quiz-item",
	Description: "A single multiple-choice quiz question grounded in the provided document excerpts",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question": map[string]any{
				"type":        "string",
				"description": "The question text, answerable from the provided excerpts alone",
			},
			"options": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "string",
				},
				"minItems":    4,
				"maxItems":    4,
				"description": "Exactly 4 answer options, all distinct, exactly one correct",
			},
			"correct_index": map[string]any{
				"type":        "integer",
				"minimum":     0,
				"maximum":     3,
				"description": "Zero-based index into options of the correct answer",
			},
			"explanation": map[string]any{
				"type":        "string",
				"description": "A brief explanation of why the correct answer is right, citing the excerpts",
			},
		},
		"required":             []any{"question", "options", "correct_index", "explanation"},
		"additionalProperties": false,
	},
}
