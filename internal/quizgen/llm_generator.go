package quizgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/abhisek/quizcraft/internal/llm"
)

// LLMGenerator implements Generator using the LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
}

// New creates a new LLMGenerator with the given provider and config.
func New(provider llm.Provider, cfg Config) *LLMGenerator {
	return &LLMGenerator{provider: provider, config: cfg}
}

// itemOutput is the raw LLM response before validation.
type itemOutput struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
	Explanation  string   `json:"explanation"`
}

// Generate produces a single quiz item for the given input context.
func (g *LLMGenerator) Generate(ctx context.Context, input GenerateInput) (*Item, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeQuizItem)

	userMsg := buildUserMessage(input, g.config)

	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: userMsg},
		},
		Schema:      ItemSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
		Seed:        g.config.Seed,
	}

	resp, err := g.provider.Generate(ctx, req)
	var invalidResp *llm.ErrInvalidResponse
	if errors.As(err, &invalidResp) {
		// Schema rejection at the provider layer is still bad output,
		// not a transport failure.
		return nil, &MalformedError{Reason: "schema violation", Err: err}
	}
	if err != nil {
		// Transport and provider errors pass through untouched so the
		// caller's retry policy can distinguish them from bad output.
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	var raw itemOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, &MalformedError{Reason: "unparseable response", Err: err}
	}

	item := &Item{
		ID:           uuid.NewString(),
		Question:     raw.Question,
		Options:      raw.Options,
		CorrectIndex: raw.CorrectIndex,
		Explanation:  raw.Explanation,
		ChunkIndexes: chunkIndexes(input),
	}

	// Run validators in order.
	for _, v := range g.config.Validators {
		if verr := v.Validate(item, input); verr != nil {
			return nil, &MalformedError{Reason: verr.Message, Err: verr}
		}
	}

	return item, nil
}

func chunkIndexes(input GenerateInput) []int {
	idxs := make([]int, len(input.Chunks))
	for i, c := range input.Chunks {
		idxs[i] = c.Index
	}
	return idxs
}
