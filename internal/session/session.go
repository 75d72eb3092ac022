// Package session owns the per-user quiz pipeline state: the uploaded
// document, its embedding index, generated quiz items, and answers.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/abhisek/quizcraft/internal/document"
	"github.com/abhisek/quizcraft/internal/index"
	"github.com/abhisek/quizcraft/internal/quizgen"
)

// ErrNoDocument is returned by operations that need an uploaded document
// before one has been uploaded.
var ErrNoDocument = errors.New("no document uploaded")

// ErrNoQuiz is returned when navigation or answering is attempted before
// any quiz items exist.
var ErrNoQuiz = errors.New("no quiz generated")

// ErrItemNotFound is returned when an answer references an unknown item.
var ErrItemNotFound = errors.New("quiz item not found")

// ErrSessionReset is returned to in-flight generation work whose session
// was reset or replaced before the results could be committed.
var ErrSessionReset = errors.New("session was reset during generation")

// InvalidArgumentError reports an out-of-range or otherwise unusable
// argument. It is a usage error and is never retried.
type InvalidArgumentError struct {
	Field string
	Value int
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid %s: %d", e.Field, e.Value)
}

// GenerationFailedError is the user-visible failure surfaced after the
// bounded retry budget for one quiz item is exhausted.
type GenerationFailedError struct {
	Attempts int
	Err      error
}

func (e *GenerationFailedError) Error() string {
	return fmt.Sprintf("could not generate a question from this content (after %d attempts): %v", e.Attempts, e.Err)
}

func (e *GenerationFailedError) Unwrap() error { return e.Err }

// Session holds the state of one quiz pipeline. All fields are guarded
// by mu; epoch increments on every reset or document swap so that
// in-flight generation can detect it raced a reset and discard itself.
type Session struct {
	mu sync.Mutex

	id     string
	doc    document.Document
	chunks []document.Chunk
	index  *index.Index

	items      []*quizgen.Item
	answers    []AnswerRecord
	usedTopics []string
	cursor     int

	epoch     uint64
	cancelGen context.CancelFunc
}

// ID returns the session identifier.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Document returns the currently uploaded document.
func (s *Session) Document() document.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// ChunkCount returns the number of chunks in the current document.
func (s *Session) ChunkCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.chunks)
}

// Items returns a copy of the generated quiz items in request order.
func (s *Session) Items() []*quizgen.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*quizgen.Item, len(s.items))
	copy(out, s.items)
	return out
}

// Answers returns a copy of the recorded answers in submission order.
func (s *Session) Answers() []AnswerRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]AnswerRecord, len(s.answers))
	copy(out, s.answers)
	return out
}

// Score returns the number of correct answers and the total answered.
func (s *Session) Score() (correct, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.answers {
		if a.Correct {
			correct++
		}
	}
	return correct, len(s.answers)
}

// resetLocked clears all quiz state. The document and index are cleared
// only when clearDocument is set. Callers hold mu.
func (s *Session) resetLocked(clearDocument bool) {
	if s.cancelGen != nil {
		s.cancelGen()
		s.cancelGen = nil
	}
	s.epoch++
	s.items = nil
	s.answers = nil
	s.usedTopics = nil
	s.cursor = 0
	if clearDocument {
		s.doc = document.Document{}
		s.chunks = nil
		s.index = nil
	}
}
