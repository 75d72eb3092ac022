package quizgen

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a quiz author creating multiple-choice questions from document excerpts.

Rules:
- Generate a single question answerable from the provided excerpts alone. Do not rely on outside knowledge.
- Provide exactly 4 options where exactly one is correct. Distractors should be plausible but clearly wrong given the excerpts.
- All 4 options must be distinct from each other.
- Set correct_index to the zero-based position of the correct option.
- The explanation should justify the correct answer by reference to the excerpts, in one or two sentences.
- If a topic is given, the question must be about that topic as covered by the excerpts.
- Do not repeat or rephrase any question from the "already asked" list.`

// buildUserMessage constructs the user message from GenerateInput and Config limits.
func buildUserMessage(input GenerateInput, cfg Config) string {
	var b strings.Builder

	if input.Topic != "" {
		fmt.Fprintf(&b, "Topic: %s\n\n", input.Topic)
	}

	b.WriteString("Document excerpts:\n")
	for i, c := range input.Chunks {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, strings.TrimSpace(c.Text))
	}

	b.WriteString("\nAlready asked in this session:\n")
	b.WriteString(buildAvoidList(input.AvoidTopics, cfg.MaxAvoidTopics))

	return b.String()
}

// buildAvoidList formats prior question topics for the prompt, respecting
// the max limit. Returns "None" if there are no prior topics.
func buildAvoidList(topics []string, max int) string {
	if len(topics) == 0 {
		return "None"
	}

	// Keep only the most recent N topics.
	if max > 0 && len(topics) > max {
		topics = topics[len(topics)-max:]
	}

	var b strings.Builder
	for i, t := range topics {
		fmt.Fprintf(&b, "%d. %s\n", i+1, t)
	}
	return strings.TrimRight(b.String(), "\n")
}
