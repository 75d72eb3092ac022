// Package index embeds document chunks and serves similarity search
// over them with a chromem-go vector collection.
package index

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strconv"
	"sync"

	"github.com/philippgille/chromem-go"

	"github.com/abhisek/quizcraft/internal/document"
	"github.com/abhisek/quizcraft/internal/llm"
)

// QueryChunkIndex marks an EmbeddingError raised while embedding a query
// rather than a document chunk.
const QueryChunkIndex = -1

// EmbeddingError reports a failed embedding call. ChunkIndex is
// QueryChunkIndex when the query text failed rather than a chunk.
type EmbeddingError struct {
	ChunkIndex int
	Err        error
}

func (e *EmbeddingError) Error() string {
	if e.ChunkIndex == QueryChunkIndex {
		return fmt.Sprintf("embedding query: %v", e.Err)
	}
	return fmt.Sprintf("embedding chunk %d: %v", e.ChunkIndex, e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// InvalidKError reports a non-positive result count passed to Search.
type InvalidKError struct {
	K int
}

func (e *InvalidKError) Error() string {
	return fmt.Sprintf("invalid result count %d, must be positive", e.K)
}

// Hit is a chunk returned by a similarity search, scored in [0, 1].
type Hit struct {
	Chunk document.Chunk
	Score float32
}

// Index is an immutable embedding index over the chunks of one document.
// Build a new one instead of mutating; a session swaps indexes atomically.
type Index struct {
	chunks     []document.Chunk
	dims       int
	collection *chromem.Collection
}

// no-op embedding func: every vector in the collection is precomputed,
// so chromem must never fall back to computing one itself.
func rejectEmbedding(context.Context, string) ([]float32, error) {
	return nil, fmt.Errorf("index holds precomputed embeddings only")
}

// Build embeds every chunk and assembles the index. Chunks are embedded
// concurrently; the first failure cancels the remaining work and Build
// returns an *EmbeddingError for the chunk that failed. An empty chunk
// slice yields an empty, searchable index.
func Build(ctx context.Context, embedder llm.Embedder, chunks []document.Chunk) (*Index, error) {
	idx := &Index{chunks: chunks}
	if len(chunks) == 0 {
		return idx, nil
	}

	vectors := make([][]float32, len(chunks))
	if err := embedAll(ctx, embedder, chunks, vectors); err != nil {
		return nil, err
	}
	idx.dims = len(vectors[0])

	db := chromem.NewDB()
	collection, err := db.GetOrCreateCollection("chunks", nil, rejectEmbedding)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	docs := make([]chromem.Document, len(chunks))
	for i, c := range chunks {
		docs[i] = chromem.Document{
			ID:        strconv.Itoa(c.Index),
			Content:   c.Text,
			Embedding: vectors[i],
		}
	}
	if err := collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return nil, fmt.Errorf("add documents: %w", err)
	}
	idx.collection = collection
	return idx, nil
}

func embedAll(ctx context.Context, embedder llm.Embedder, chunks []document.Chunk, vectors [][]float32) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers := runtime.NumCPU()
	if workers > len(chunks) {
		workers = len(chunks)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				vec, err := embedder.Embed(ctx, chunks[i].Text)
				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = &EmbeddingError{ChunkIndex: chunks[i].Index, Err: err}
						cancel()
					}
					mu.Unlock()
					return
				}
				vectors[i] = vec
			}
		}()
	}

	for i := range chunks {
		select {
		case jobs <- i:
		case <-ctx.Done():
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return nil
}

// Size returns the number of indexed chunks.
func (idx *Index) Size() int {
	if idx == nil {
		return 0
	}
	return len(idx.chunks)
}

// Dimensions returns the embedding width, 0 for an empty index.
func (idx *Index) Dimensions() int {
	if idx == nil {
		return 0
	}
	return idx.dims
}

// Chunk returns the indexed chunk with the given index.
func (idx *Index) Chunk(i int) (document.Chunk, bool) {
	for _, c := range idx.chunks {
		if c.Index == i {
			return c, true
		}
	}
	return document.Chunk{}, false
}

// Search returns the k chunks most similar to the query vector, ordered
// by score descending with ties broken by ascending chunk index. k is
// clamped to the index size; an empty index returns no hits.
func (idx *Index) Search(ctx context.Context, query []float32, k int) ([]Hit, error) {
	if idx.Size() == 0 {
		return nil, nil
	}
	if k <= 0 {
		return nil, &InvalidKError{K: k}
	}
	if k > idx.Size() {
		k = idx.Size()
	}

	// chromem's own top-k ordering leaves ties arbitrary, so query the
	// full collection and rank here.
	results, err := idx.collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: query,
		NResults:       idx.Size(),
	})
	if err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}

	hits := make([]Hit, 0, len(results))
	for _, r := range results {
		ci, err := strconv.Atoi(r.ID)
		if err != nil {
			return nil, fmt.Errorf("malformed result id %q: %w", r.ID, err)
		}
		chunk, ok := idx.Chunk(ci)
		if !ok {
			return nil, fmt.Errorf("result references unknown chunk %d", ci)
		}
		hits = append(hits, Hit{Chunk: chunk, Score: r.Similarity})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Chunk.Index < hits[j].Chunk.Index
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}
