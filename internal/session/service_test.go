package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/abhisek/quizcraft/internal/document"
	"github.com/abhisek/quizcraft/internal/llm"
	"github.com/abhisek/quizcraft/internal/quizgen"
)

const cellDoc = "The mitochondria is the powerhouse of the cell. " +
	"ATP is produced during cellular respiration. " +
	"The nucleus stores the genetic material of the cell."

func itemJSON(question string) llm.MockResponse {
	content := fmt.Sprintf(`{
		"question": %q,
		"options": ["Nucleus", "Mitochondria", "Ribosome", "Golgi apparatus"],
		"correct_index": 1,
		"explanation": "The excerpt says so."
	}`, question)
	return llm.MockResponse{Content: json.RawMessage(content)}
}

func malformedJSON() llm.MockResponse {
	return llm.MockResponse{Content: json.RawMessage(`{
		"question": "Broken item?",
		"options": ["A", "B", "C"],
		"correct_index": 0,
		"explanation": "Only three options."
	}`)}
}

func newTestService(provider llm.Provider) *Service {
	gen := quizgen.New(provider, quizgen.DefaultConfig())
	return NewService(gen, &llm.MockEmbedder{}, DefaultConfig(), zerolog.Nop())
}

func uploadCellDoc(t *testing.T, svc *Service) {
	t.Helper()
	err := svc.Upload(context.Background(), document.Document{Name: "cells.txt", Text: cellDoc})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
}

func TestUpload(t *testing.T) {
	svc := newTestService(llm.NewMockProvider())
	uploadCellDoc(t, svc)

	if svc.Session().ChunkCount() == 0 {
		t.Error("expected chunks after upload")
	}
	if svc.Session().Document().Name != "cells.txt" {
		t.Errorf("document = %q", svc.Session().Document().Name)
	}
}

func TestUpload_InvalidChunking(t *testing.T) {
	svc := newTestService(llm.NewMockProvider())
	svc.config.ChunkOverlap = svc.config.ChunkSize // overlap must be < size

	err := svc.Upload(context.Background(), document.Document{Name: "x", Text: cellDoc})
	var invalid *document.InvalidChunkingError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected *InvalidChunkingError, got %v", err)
	}
}

func TestUpload_EmbeddingFailureKeepsPriorState(t *testing.T) {
	svc := newTestService(llm.NewMockProvider())
	uploadCellDoc(t, svc)

	svc.embedder = &llm.MockEmbedder{Fail: errors.New("provider down")}
	err := svc.Upload(context.Background(), document.Document{Name: "other.txt", Text: "Different text."})
	if err == nil {
		t.Fatal("expected error")
	}

	// The failed upload must not disturb the previous document.
	if svc.Session().Document().Name != "cells.txt" {
		t.Errorf("document = %q, want 'cells.txt'", svc.Session().Document().Name)
	}
	if svc.Session().ChunkCount() == 0 {
		t.Error("previous index should survive a failed upload")
	}
}

func TestGenerateQuiz(t *testing.T) {
	provider := llm.NewMockProvider(
		itemJSON("What organelle is known as the powerhouse of the cell?"),
		itemJSON("During which process is ATP produced?"),
	)
	svc := newTestService(provider)
	uploadCellDoc(t, svc)

	items, err := svc.GenerateQuiz(context.Background(), "cell biology", 2)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	if items[0].ID == items[1].ID {
		t.Error("items should have distinct IDs")
	}
	if got := svc.Session().Items(); len(got) != 2 {
		t.Errorf("session items = %d, want 2", len(got))
	}
}

func TestGenerateQuiz_NoDocument(t *testing.T) {
	svc := newTestService(llm.NewMockProvider())
	_, err := svc.GenerateQuiz(context.Background(), "anything", 1)
	if !errors.Is(err, ErrNoDocument) {
		t.Fatalf("expected ErrNoDocument, got %v", err)
	}
}

func TestGenerateQuiz_InvalidCount(t *testing.T) {
	svc := newTestService(llm.NewMockProvider())
	uploadCellDoc(t, svc)

	for _, n := range []int{0, -1} {
		_, err := svc.GenerateQuiz(context.Background(), "x", n)
		var invalid *InvalidArgumentError
		if !errors.As(err, &invalid) {
			t.Errorf("n=%d: expected *InvalidArgumentError, got %v", n, err)
		}
	}
}

func TestGenerateQuiz_ClampsToMaxQuestions(t *testing.T) {
	responses := make([]llm.MockResponse, 10)
	questions := []string{
		"What organelle is known as the powerhouse of the cell?",
		"During which process is ATP produced?",
		"Where is the genetic material of the cell stored?",
		"Which molecule carries energy inside cells?",
		"What does cellular respiration consume?",
		"Which structure surrounds the nucleus?",
		"What kind of material does the nucleus hold?",
		"Which organelle converts nutrients into usable energy?",
		"What name is given to the energy currency of the cell?",
		"Which process happens inside the mitochondria?",
	}
	for i := range responses {
		responses[i] = itemJSON(questions[i])
	}
	provider := llm.NewMockProvider(responses...)
	svc := newTestService(provider)
	uploadCellDoc(t, svc)

	items, err := svc.GenerateQuiz(context.Background(), "cells", 50)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(items) != svc.config.MaxQuestions {
		t.Errorf("items = %d, want %d", len(items), svc.config.MaxQuestions)
	}
}

func TestGenerateQuiz_RetriesMalformedThenSucceeds(t *testing.T) {
	provider := llm.NewMockProvider(
		malformedJSON(),
		itemJSON("During which process is ATP produced?"),
	)
	svc := newTestService(provider)
	uploadCellDoc(t, svc)

	items, err := svc.GenerateQuiz(context.Background(), "energy", 1)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	if provider.CallCount() != 2 {
		t.Errorf("provider calls = %d, want 2", provider.CallCount())
	}
}

func TestGenerateQuiz_ExhaustsRetryBudget(t *testing.T) {
	provider := llm.NewMockProvider(
		malformedJSON(),
		malformedJSON(),
		malformedJSON(),
	)
	svc := newTestService(provider)
	uploadCellDoc(t, svc)

	_, err := svc.GenerateQuiz(context.Background(), "energy", 1)
	var failed *GenerationFailedError
	if !errors.As(err, &failed) {
		t.Fatalf("expected *GenerationFailedError, got %v", err)
	}
	if failed.Attempts != svc.config.MaxAttempts {
		t.Errorf("attempts = %d, want %d", failed.Attempts, svc.config.MaxAttempts)
	}
	if provider.CallCount() != svc.config.MaxAttempts {
		t.Errorf("provider calls = %d, want %d", provider.CallCount(), svc.config.MaxAttempts)
	}
	var malformed *quizgen.MalformedError
	if !errors.As(err, &malformed) {
		t.Error("expected the last malformed error to be wrapped")
	}
	if len(svc.Session().Items()) != 0 {
		t.Error("failed generation must not commit items")
	}
}

func TestGenerateQuiz_RejectsNearDuplicates(t *testing.T) {
	// The second response repeats the first question; the retry then
	// produces a fresh one.
	provider := llm.NewMockProvider(
		itemJSON("What organelle is known as the powerhouse of the cell?"),
		itemJSON("What organelle is known as the powerhouse of the cell?"),
		itemJSON("During which process is ATP produced?"),
	)
	svc := newTestService(provider)
	uploadCellDoc(t, svc)

	if _, err := svc.GenerateQuiz(context.Background(), "cells", 1); err != nil {
		t.Fatalf("first generate: %v", err)
	}
	items, err := svc.GenerateQuiz(context.Background(), "cells", 1)
	if err != nil {
		t.Fatalf("second generate: %v", err)
	}
	if items[0].Question != "During which process is ATP produced?" {
		t.Errorf("question = %q, want the non-duplicate retry result", items[0].Question)
	}
	if provider.CallCount() != 3 {
		t.Errorf("provider calls = %d, want 3", provider.CallCount())
	}
}

func TestNextQuizItem_WrapsAround(t *testing.T) {
	provider := llm.NewMockProvider(
		itemJSON("What organelle is known as the powerhouse of the cell?"),
		itemJSON("During which process is ATP produced?"),
	)
	svc := newTestService(provider)
	uploadCellDoc(t, svc)

	if _, err := svc.GenerateQuiz(context.Background(), "cells", 2); err != nil {
		t.Fatalf("generate: %v", err)
	}

	first, err := svc.NextQuizItem()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	second, err := svc.NextQuizItem()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if first.ID == second.ID {
		t.Error("expected distinct consecutive items")
	}

	wrapped, err := svc.NextQuizItem()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if wrapped.ID != first.ID {
		t.Error("expected navigation to wrap to the first item")
	}
}

func TestNextQuizItem_NoQuiz(t *testing.T) {
	svc := newTestService(llm.NewMockProvider())
	if _, err := svc.NextQuizItem(); !errors.Is(err, ErrNoQuiz) {
		t.Fatalf("expected ErrNoQuiz, got %v", err)
	}
}

func TestSubmitAnswer(t *testing.T) {
	provider := llm.NewMockProvider(
		itemJSON("What organelle is known as the powerhouse of the cell?"),
	)
	svc := newTestService(provider)
	uploadCellDoc(t, svc)

	items, err := svc.GenerateQuiz(context.Background(), "cells", 1)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	item := items[0]

	record, err := svc.SubmitAnswer(item.ID, item.CorrectIndex)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !record.Correct {
		t.Error("expected correct")
	}

	record, err = svc.SubmitAnswer(item.ID, (item.CorrectIndex+1)%4)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if record.Correct {
		t.Error("expected incorrect")
	}

	correct, total := svc.Session().Score()
	if correct != 1 || total != 2 {
		t.Errorf("score = %d/%d, want 1/2", correct, total)
	}
}

func TestSubmitAnswer_ItemNotFound(t *testing.T) {
	provider := llm.NewMockProvider(
		itemJSON("What organelle is known as the powerhouse of the cell?"),
	)
	svc := newTestService(provider)
	uploadCellDoc(t, svc)
	if _, err := svc.GenerateQuiz(context.Background(), "cells", 1); err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := svc.SubmitAnswer("no-such-item", 0); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestSubmitAnswer_OutOfRangeRecordsNothing(t *testing.T) {
	provider := llm.NewMockProvider(
		itemJSON("What organelle is known as the powerhouse of the cell?"),
	)
	svc := newTestService(provider)
	uploadCellDoc(t, svc)
	items, err := svc.GenerateQuiz(context.Background(), "cells", 1)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	_, err = svc.SubmitAnswer(items[0].ID, 7)
	var invalid *InvalidArgumentError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected *InvalidArgumentError, got %v", err)
	}
	if len(svc.Session().Answers()) != 0 {
		t.Error("rejected answer must not be recorded")
	}
}

func TestReset(t *testing.T) {
	provider := llm.NewMockProvider(
		itemJSON("What organelle is known as the powerhouse of the cell?"),
	)
	svc := newTestService(provider)
	uploadCellDoc(t, svc)
	items, err := svc.GenerateQuiz(context.Background(), "cells", 1)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := svc.SubmitAnswer(items[0].ID, 0); err != nil {
		t.Fatalf("submit: %v", err)
	}

	svc.Reset()

	if svc.Session().ChunkCount() != 0 {
		t.Error("reset should clear the document")
	}
	if len(svc.Session().Items()) != 0 {
		t.Error("reset should clear items")
	}
	if len(svc.Session().Answers()) != 0 {
		t.Error("reset should clear answers")
	}
	if _, err := svc.NextQuizItem(); !errors.Is(err, ErrNoQuiz) {
		t.Error("navigation after reset should report no quiz")
	}
	if _, err := svc.GenerateQuiz(context.Background(), "x", 1); !errors.Is(err, ErrNoDocument) {
		t.Error("generation after reset should require a new upload")
	}
}

// blockingGenerator parks in Generate until released, so a reset can be
// interleaved with an in-flight generation.
type blockingGenerator struct {
	started chan struct{}
	release chan struct{}
}

func (g *blockingGenerator) Generate(ctx context.Context, input quizgen.GenerateInput) (*quizgen.Item, error) {
	close(g.started)
	select {
	case <-g.release:
	case <-ctx.Done():
	}
	return &quizgen.Item{
		ID:           "late",
		Question:     "Arrived after the reset?",
		Options:      []string{"A", "B", "C", "D"},
		CorrectIndex: 0,
		Explanation:  "Too late.",
	}, nil
}

func TestGenerateQuiz_ResetInvalidatesInFlight(t *testing.T) {
	gen := &blockingGenerator{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	svc := NewService(gen, &llm.MockEmbedder{}, DefaultConfig(), zerolog.Nop())
	uploadCellDoc(t, svc)

	done := make(chan error, 1)
	go func() {
		_, err := svc.GenerateQuiz(context.Background(), "cells", 1)
		done <- err
	}()

	<-gen.started
	svc.Reset()
	close(gen.release)

	if err := <-done; !errors.Is(err, ErrSessionReset) {
		t.Fatalf("expected ErrSessionReset, got %v", err)
	}
	if len(svc.Session().Items()) != 0 {
		t.Error("stale generation must not be committed")
	}
}
