package store

import (
	"context"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.DB() == nil {
		t.Fatal("expected non-nil db handle")
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so journal_mode is only checked with file-based DBs.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	for _, table := range []string{"llm_events", "answer_events"} {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Fatalf("query sqlite_master for %s: %v", table, err)
		}
		if name != table {
			t.Errorf("table name = %q, want %q", name, table)
		}
	}
}

func TestAppendAndQueryLLMEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	// Empty query returns no events.
	events, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query (empty): %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected no events, got %d", len(events))
	}

	for i := 0; i < 3; i++ {
		err := repo.AppendLLMRequest(ctx, LLMRequestEventData{
			Provider:     "openai",
			Model:        "gpt-4o-mini",
			Purpose:      "quiz-item",
			InputTokens:  100 + i,
			OutputTokens: 50,
			LatencyMs:    120,
			Success:      true,
		})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	events, err = repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	// Newest first.
	if events[0].InputTokens != 102 {
		t.Errorf("newest input tokens = %d, want 102", events[0].InputTokens)
	}
}

func TestQueryLLMEventsFilterAndLimit(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	purposes := []string{"quiz-item", "embedding", "quiz-item", "quiz-item"}
	for _, p := range purposes {
		err := repo.AppendLLMRequest(ctx, LLMRequestEventData{
			Provider: "openai", Model: "gpt-4o-mini", Purpose: p, Success: true,
		})
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	events, err := repo.QueryLLMEvents(ctx, QueryOpts{Purpose: "quiz-item"})
	if err != nil {
		t.Fatalf("query filtered: %v", err)
	}
	if len(events) != 3 {
		t.Errorf("filtered events = %d, want 3", len(events))
	}

	events, err = repo.QueryLLMEvents(ctx, QueryOpts{Purpose: "quiz-item", Limit: 2})
	if err != nil {
		t.Fatalf("query limited: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("limited events = %d, want 2", len(events))
	}
}

func TestGetLLMEvent(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	// Missing id returns nil without error.
	e, err := repo.GetLLMEvent(ctx, 999)
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if e != nil {
		t.Fatal("expected nil event for missing id")
	}

	err = repo.AppendLLMRequest(ctx, LLMRequestEventData{
		Provider:     "gemini",
		Model:        "gemini-2.0-flash",
		Purpose:      "embedding",
		Success:      false,
		ErrorMessage: "rate limited",
		RequestBody:  `{"input":"hello"}`,
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	events, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil || len(events) != 1 {
		t.Fatalf("query: %v (n=%d)", err, len(events))
	}

	e, err = repo.GetLLMEvent(ctx, events[0].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if e == nil {
		t.Fatal("expected non-nil event")
	}
	if e.ErrorMessage != "rate limited" {
		t.Errorf("error message = %q, want 'rate limited'", e.ErrorMessage)
	}
	if e.RequestBody != `{"input":"hello"}` {
		t.Errorf("request body = %q", e.RequestBody)
	}
}

func TestLLMUsageAggregates(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	rows := []LLMRequestEventData{
		{Provider: "openai", Model: "gpt-4o-mini", Purpose: "quiz-item", InputTokens: 100, OutputTokens: 40, LatencyMs: 200, Success: true},
		{Provider: "openai", Model: "gpt-4o-mini", Purpose: "quiz-item", InputTokens: 120, OutputTokens: 60, LatencyMs: 400, Success: true},
		{Provider: "openai", Model: "text-embedding-3-small", Purpose: "embedding", InputTokens: 30, LatencyMs: 50, Success: true},
	}
	for i, d := range rows {
		if err := repo.AppendLLMRequest(ctx, d); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("usage by purpose: %v", err)
	}
	if len(byPurpose) != 2 {
		t.Fatalf("purpose groups = %d, want 2", len(byPurpose))
	}
	// Sorted by total tokens desc, so quiz-item comes first.
	if byPurpose[0].Purpose != "quiz-item" {
		t.Errorf("first purpose = %q, want 'quiz-item'", byPurpose[0].Purpose)
	}
	if byPurpose[0].Calls != 2 {
		t.Errorf("quiz-item calls = %d, want 2", byPurpose[0].Calls)
	}
	if byPurpose[0].InputTokens != 220 {
		t.Errorf("quiz-item input tokens = %d, want 220", byPurpose[0].InputTokens)
	}
	if byPurpose[0].AvgLatencyMs != 300 {
		t.Errorf("quiz-item avg latency = %d, want 300", byPurpose[0].AvgLatencyMs)
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		t.Fatalf("usage by model: %v", err)
	}
	if len(byModel) != 2 {
		t.Fatalf("model groups = %d, want 2", len(byModel))
	}
	if byModel[0].Model != "gpt-4o-mini" {
		t.Errorf("first model = %q, want 'gpt-4o-mini'", byModel[0].Model)
	}
}

func TestAppendAnswerAndStats(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	// Empty stats.
	correct, incorrect, err := repo.AnswerStats(ctx, "")
	if err != nil {
		t.Fatalf("stats (empty): %v", err)
	}
	if correct != 0 || incorrect != 0 {
		t.Fatalf("empty stats = %d/%d, want 0/0", correct, incorrect)
	}

	answers := []AnswerEventData{
		{SessionID: "s1", ItemID: "a", Question: "q1", SelectedIndex: 0, CorrectIndex: 0, Correct: true},
		{SessionID: "s1", ItemID: "b", Question: "q2", SelectedIndex: 2, CorrectIndex: 1, Correct: false},
		{SessionID: "s2", ItemID: "c", Question: "q3", SelectedIndex: 3, CorrectIndex: 3, Correct: true},
	}
	for i, a := range answers {
		if err := repo.AppendAnswer(ctx, a); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	correct, incorrect, err = repo.AnswerStats(ctx, "s1")
	if err != nil {
		t.Fatalf("stats s1: %v", err)
	}
	if correct != 1 || incorrect != 1 {
		t.Errorf("s1 stats = %d/%d, want 1/1", correct, incorrect)
	}

	correct, incorrect, err = repo.AnswerStats(ctx, "")
	if err != nil {
		t.Fatalf("stats all: %v", err)
	}
	if correct != 2 || incorrect != 1 {
		t.Errorf("all stats = %d/%d, want 2/1", correct, incorrect)
	}
}
