// ABOUTME: Retriever performs query-time embedding and delegates to the document index
// ABOUTME: Pure pass-through adapter, no re-ranking beyond the index's native ordering
package retriever

import (
	"context"
	"fmt"

	"github.com/docchat-labs/docchat/internal/models"
)

// provider is the slice of the embedding provider the retriever needs.
type provider interface {
	Available() bool
	Embed(ctx context.Context, text string) ([]float64, error)
}

// searcher is the slice of the document index the retriever needs.
type searcher interface {
	Query(vector []float64, k int) ([]models.RetrievalResult, error)
	QueryText(text string, k int) ([]models.RetrievalResult, error)
}

// Retriever turns a raw query string into the top-k most relevant chunks.
// Queries are embedded with the same provider instance used at ingestion;
// embedding-space consistency is what makes the distances meaningful.
type Retriever struct {
	provider provider
	index    searcher
	topK     int
}

// New creates a Retriever with a default result count.
func New(p provider, ix searcher, topK int) *Retriever {
	if topK <= 0 {
		topK = 3
	}
	return &Retriever{provider: p, index: ix, topK: topK}
}

// Search returns up to k chunks relevant to the query, ascending by
// distance. k <= 0 uses the configured default. When the provider is in
// no-embedding mode the raw text is passed to the index's lexical query.
func (r *Retriever) Search(ctx context.Context, query string, k int) ([]models.RetrievalResult, error) {
	if k <= 0 {
		k = r.topK
	}

	if !r.provider.Available() {
		return r.index.QueryText(query, k)
	}

	vector, err := r.provider.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	return r.index.Query(vector, k)
}
