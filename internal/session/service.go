package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/abhisek/quizcraft/internal/document"
	"github.com/abhisek/quizcraft/internal/index"
	"github.com/abhisek/quizcraft/internal/llm"
	"github.com/abhisek/quizcraft/internal/quizgen"
)

// Config controls chunking, retrieval, and generation policy.
type Config struct {
	// ChunkSize is the chunk window in characters.
	ChunkSize int

	// ChunkOverlap is the character overlap between adjacent chunks.
	ChunkOverlap int

	// TopK is the number of chunks retrieved as grounding context for
	// each generated item.
	TopK int

	// MaxAttempts bounds regeneration retries for malformed or
	// duplicate items before surfacing a failure.
	MaxAttempts int

	// MaxQuestions caps the number of items per generation request.
	MaxQuestions int
}

// DefaultConfig returns the standard pipeline configuration.
func DefaultConfig() Config {
	return Config{
		ChunkSize:    1000,
		ChunkOverlap: 100,
		TopK:         4,
		MaxAttempts:  3,
		MaxQuestions: 10,
	}
}

// Service drives the quiz pipeline for a single session: upload,
// generation, navigation, answering, reset.
type Service struct {
	generator quizgen.Generator
	embedder  llm.Embedder
	retriever *index.Retriever
	config    Config
	logger    zerolog.Logger

	session *Session
}

// NewService creates a Service with a fresh empty session.
func NewService(generator quizgen.Generator, embedder llm.Embedder, cfg Config, logger zerolog.Logger) *Service {
	return &Service{
		generator: generator,
		embedder:  embedder,
		retriever: index.NewRetriever(embedder),
		config:    cfg,
		logger:    logger,
		session:   &Session{id: uuid.NewString()},
	}
}

// Session exposes the underlying session for read access.
func (s *Service) Session() *Session {
	return s.session
}

// Upload chunks and indexes a document, then atomically replaces the
// session's document and clears all quiz state. If chunking or index
// building fails, the session keeps its previous document and index.
func (s *Service) Upload(ctx context.Context, doc document.Document) error {
	chunks, err := document.ChunkText(doc.Text, s.config.ChunkSize, s.config.ChunkOverlap)
	if err != nil {
		return err
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeEmbedding)
	idx, err := index.Build(ctx, s.embedder, chunks)
	if err != nil {
		return fmt.Errorf("building index for %q: %w", doc.Name, err)
	}

	sess := s.session
	sess.mu.Lock()
	sess.resetLocked(false)
	sess.doc = doc
	sess.chunks = chunks
	sess.index = idx
	sess.mu.Unlock()

	s.logger.Info().
		Str("document", doc.Name).
		Int("chunks", len(chunks)).
		Int("dimensions", idx.Dimensions()).
		Msg("document indexed")
	return nil
}

// GenerateQuiz produces up to n quiz items about topic, generated
// concurrently with independently retrieved grounding context per item.
// n is clamped to MaxQuestions. Items are committed to the session in
// request order only if the session was not reset meanwhile.
func (s *Service) GenerateQuiz(ctx context.Context, topic string, n int) ([]*quizgen.Item, error) {
	if n <= 0 {
		return nil, &InvalidArgumentError{Field: "question_count", Value: n}
	}
	if n > s.config.MaxQuestions {
		n = s.config.MaxQuestions
	}

	sess := s.session
	sess.mu.Lock()
	if sess.index == nil {
		sess.mu.Unlock()
		return nil, ErrNoDocument
	}
	idx := sess.index
	docName := sess.doc.Name
	epoch := sess.epoch
	working := append([]string(nil), sess.usedTopics...)

	genCtx, cancel := context.WithCancel(ctx)
	sess.cancelGen = cancel
	sess.mu.Unlock()
	defer cancel()

	query := topic
	if query == "" {
		query = docName
	}

	// Concurrent generations share one topic list so two in-flight items
	// cannot both miss each other's question. Results land in
	// request-order slots.
	var topicsMu sync.Mutex
	slots := make([]*quizgen.Item, n)
	slotErrs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			item, err := s.generateOne(genCtx, idx, topic, query, &topicsMu, &working)
			if err != nil {
				slotErrs[slot] = err
				return
			}
			slots[slot] = item
		}(i)
	}
	wg.Wait()

	for _, err := range slotErrs {
		if err != nil {
			return nil, err
		}
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.epoch != epoch {
		return nil, ErrSessionReset
	}
	sess.cancelGen = nil
	sess.items = append(sess.items, slots...)
	sess.usedTopics = working

	s.logger.Info().
		Str("topic", topic).
		Int("items", len(slots)).
		Msg("quiz generated")
	return slots, nil
}

// generateOne retrieves grounding context and generates a single item,
// retrying malformed output and near-duplicates up to MaxAttempts.
func (s *Service) generateOne(ctx context.Context, idx *index.Index, topic, query string, topicsMu *sync.Mutex, working *[]string) (*quizgen.Item, error) {
	hits, err := s.retriever.Retrieve(ctx, idx, query, s.config.TopK)
	if err != nil {
		return nil, fmt.Errorf("retrieving context: %w", err)
	}
	chunks := make([]document.Chunk, len(hits))
	for i, h := range hits {
		chunks[i] = h.Chunk
	}

	var lastErr error
	for attempt := 1; attempt <= s.config.MaxAttempts; attempt++ {
		topicsMu.Lock()
		avoid := append([]string(nil), *working...)
		topicsMu.Unlock()

		item, err := s.generator.Generate(ctx, quizgen.GenerateInput{
			Topic:       topic,
			Chunks:      chunks,
			AvoidTopics: avoid,
		})
		if err != nil {
			var malformed *quizgen.MalformedError
			if errors.As(err, &malformed) {
				s.logger.Warn().
					Int("attempt", attempt).
					Str("reason", malformed.Reason).
					Msg("discarding malformed item")
				lastErr = err
				continue
			}
			return nil, err
		}

		topicsMu.Lock()
		if quizgen.IsNearDuplicate(item.Question, *working) {
			topicsMu.Unlock()
			s.logger.Warn().
				Int("attempt", attempt).
				Str("question", item.Question).
				Msg("discarding near-duplicate item")
			lastErr = quizgen.ErrDuplicateItem
			continue
		}
		*working = append(*working, quizgen.NormalizeTopic(item.Question))
		topicsMu.Unlock()
		return item, nil
	}

	return nil, &GenerationFailedError{Attempts: s.config.MaxAttempts, Err: lastErr}
}

// NextQuizItem returns the next item, wrapping around to the first after
// the last.
func (s *Service) NextQuizItem() (*quizgen.Item, error) {
	sess := s.session
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if len(sess.items) == 0 {
		return nil, ErrNoQuiz
	}
	item := sess.items[sess.cursor]
	sess.cursor = (sess.cursor + 1) % len(sess.items)
	return item, nil
}

// SubmitAnswer evaluates a selected option for an item and records the
// result. Out-of-range selections return an *InvalidArgumentError and
// record nothing.
func (s *Service) SubmitAnswer(itemID string, selected int) (AnswerRecord, error) {
	sess := s.session
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if len(sess.items) == 0 {
		return AnswerRecord{}, ErrNoQuiz
	}

	var item *quizgen.Item
	for _, it := range sess.items {
		if it.ID == itemID {
			item = it
			break
		}
	}
	if item == nil {
		return AnswerRecord{}, ErrItemNotFound
	}

	record, err := Evaluate(item, selected)
	if err != nil {
		return AnswerRecord{}, err
	}
	sess.answers = append(sess.answers, record)
	return record, nil
}

// Reset cancels in-flight generation and clears the document, index,
// items, answers, and used topics, returning the session to its initial
// state.
func (s *Service) Reset() {
	sess := s.session
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.resetLocked(true)
	s.logger.Info().Str("session", sess.id).Msg("session reset")
}
