// ABOUTME: Embedding provider with an ordered fallback chain of candidate models
// ABOUTME: Degrades to a no-embedding mode that lets the index fall back to lexical search
package embedding

import (
	"context"
	"errors"
	"log"
	"math"

	openai "github.com/sashabaranov/go-openai"
)

// ErrNotAvailable is returned by Embed when no candidate model loaded and
// the provider is running in no-embedding mode.
var ErrNotAvailable = errors.New("no embedding model available")

// embedClient is the slice of the LLM client the provider needs.
type embedClient interface {
	EmbedText(ctx context.Context, text string, model openai.EmbeddingModel) ([]float64, error)
}

// Provider maps text to unit-normalized vectors of a fixed dimension.
// The model and dimension are fixed at construction for the lifetime of
// the instance; mixing vectors from different providers in one index
// corrupts similarity comparisons and is the caller's responsibility to
// avoid.
type Provider struct {
	client    embedClient
	model     openai.EmbeddingModel
	dimension int
}

// probeText is embedded once per candidate at startup to verify the model
// responds and to learn its output dimension.
const probeText = "embedding dimension probe"

// NewProvider tries each candidate model in order of preferred retrieval
// quality and selects the first that responds. Every failure is logged and
// the next candidate is tried. If all candidates fail the returned provider
// is in no-embedding mode: Available reports false and index operations
// should fall back to lexical queries.
func NewProvider(ctx context.Context, client embedClient, candidates []string) *Provider {
	for _, name := range candidates {
		model := openai.EmbeddingModel(name)

		vector, err := client.EmbedText(ctx, probeText, model)
		if err != nil {
			log.Printf("Warning: embedding model %s failed to load: %v", name, err)
			continue
		}
		if len(vector) == 0 {
			log.Printf("Warning: embedding model %s returned an empty vector", name)
			continue
		}

		log.Printf("Loaded embedding model %s (%d dimensions)", name, len(vector))
		return &Provider{
			client:    client,
			model:     model,
			dimension: len(vector),
		}
	}

	log.Printf("Warning: all embedding models failed to load, falling back to lexical search")
	return &Provider{client: client}
}

// Available reports whether a model was selected. When false the provider
// is in no-embedding mode.
func (p *Provider) Available() bool {
	return p.dimension > 0
}

// Dimension returns the fixed vector dimension, or 0 in no-embedding mode.
func (p *Provider) Dimension() int {
	return p.dimension
}

// ModelName returns the selected model identifier, or "" in no-embedding mode.
func (p *Provider) ModelName() string {
	return string(p.model)
}

// Embed maps text to a unit-normalized vector of the provider's dimension.
// Deterministic for a fixed model: the same text yields the same vector.
func (p *Provider) Embed(ctx context.Context, text string) ([]float64, error) {
	if !p.Available() {
		return nil, ErrNotAvailable
	}

	vector, err := p.client.EmbedText(ctx, text, p.model)
	if err != nil {
		return nil, err
	}
	if len(vector) != p.dimension {
		return nil, errors.New("embedding dimension changed between calls")
	}

	return Normalize(vector), nil
}

// Normalize scales a vector to unit length. Zero vectors are returned
// unchanged since they cannot be normalized.
func Normalize(vector []float64) []float64 {
	var sum float64
	for _, v := range vector {
		sum += v * v
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return vector
	}

	out := make([]float64, len(vector))
	for i, v := range vector {
		out[i] = v / norm
	}
	return out
}
