package document

import (
	"errors"
	"strings"
	"testing"
)

func TestChunkText_Reassembles(t *testing.T) {
	cases := []struct {
		name    string
		text    string
		size    int
		overlap int
	}{
		{"short text single chunk", "The mitochondria is the powerhouse of the cell.", 50, 10},
		{"exact multiple", strings.Repeat("abcd", 25), 20, 5},
		{"ragged tail", strings.Repeat("x", 103), 40, 10},
		{"overlap zero", strings.Repeat("hello world ", 20), 30, 0},
		{"heavy overlap", strings.Repeat("go", 50), 10, 9},
		{"size one", "abc", 1, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			chunks, err := ChunkText(tc.text, tc.size, tc.overlap)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := Reassemble(chunks); got != tc.text {
				t.Errorf("reassembled text differs: got %d bytes, want %d", len(got), len(tc.text))
			}
			for i, c := range chunks {
				if c.Index != i {
					t.Errorf("chunk %d has index %d", i, c.Index)
				}
				if c.Text != tc.text[c.Start:c.End] {
					t.Errorf("chunk %d text does not match offsets", i)
				}
				if len(c.Text) > tc.size {
					t.Errorf("chunk %d longer than size: %d", i, len(c.Text))
				}
			}
		})
	}
}

func TestChunkText_SingleChunkWhenShorter(t *testing.T) {
	text := "The mitochondria is the powerhouse of the cell."
	chunks, err := ChunkText(text, 50, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != text {
		t.Errorf("chunk text %q", chunks[0].Text)
	}
	if chunks[0].Start != 0 || chunks[0].End != len(text) {
		t.Errorf("offsets %d:%d", chunks[0].Start, chunks[0].End)
	}
}

func TestChunkText_EmptyText(t *testing.T) {
	chunks, err := ChunkText("", 100, 10)
	if err != nil {
		t.Fatalf("empty text must not error: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected no chunks, got %d", len(chunks))
	}
}

func TestChunkText_InvalidConfig(t *testing.T) {
	cases := []struct {
		size    int
		overlap int
	}{
		{0, 0},
		{-5, 0},
		{10, 10},
		{10, 15},
		{10, -1},
	}
	for _, tc := range cases {
		_, err := ChunkText("some text", tc.size, tc.overlap)
		if err == nil {
			t.Errorf("size=%d overlap=%d: expected error", tc.size, tc.overlap)
			continue
		}
		var cfgErr *InvalidChunkingError
		if !errors.As(err, &cfgErr) {
			t.Errorf("size=%d overlap=%d: expected *InvalidChunkingError, got %T", tc.size, tc.overlap, err)
		}
	}
}

func TestChunkText_OverlapIsDeclared(t *testing.T) {
	text := strings.Repeat("0123456789", 10)
	chunks, err := ChunkText(text, 30, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(chunks); i++ {
		prev, cur := chunks[i-1], chunks[i]
		if cur.Start != prev.Start+20 {
			t.Errorf("chunk %d starts at %d, want %d", i, cur.Start, prev.Start+20)
		}
		if i < len(chunks)-1 && prev.End-cur.Start != 10 {
			t.Errorf("chunk %d overlap %d, want 10", i, prev.End-cur.Start)
		}
	}
}
