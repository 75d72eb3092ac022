package index

import (
	"context"

	"github.com/abhisek/quizcraft/internal/llm"
)

// Retriever runs similarity search for free-text queries: it embeds the
// query with the same embedder that built the index, then searches.
type Retriever struct {
	embedder llm.Embedder
}

func NewRetriever(embedder llm.Embedder) *Retriever {
	return &Retriever{embedder: embedder}
}

// Retrieve returns the top-k chunks most relevant to query. A nil or
// empty index yields no hits and no error, and in that case the query
// is never embedded.
func (r *Retriever) Retrieve(ctx context.Context, idx *Index, query string, k int) ([]Hit, error) {
	if idx.Size() == 0 {
		return nil, nil
	}
	if k <= 0 {
		return nil, &InvalidKError{K: k}
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeEmbedding)
	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, &EmbeddingError{ChunkIndex: QueryChunkIndex, Err: err}
	}
	return idx.Search(ctx, vec, k)
}
