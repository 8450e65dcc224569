// ABOUTME: Chunker splits normalized document text into overlapping word windows
// ABOUTME: Produces deterministic chunk IDs so re-ingestion overwrites, not duplicates
package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/docchat-labs/docchat/internal/models"
)

const (
	// DefaultChunkSize is the default window size in words.
	DefaultChunkSize = 800
	// DefaultOverlap is the default number of overlapping words between windows.
	DefaultOverlap = 150
	// DefaultMinChars is the minimum trimmed chunk length in characters.
	// Shorter windows carry no useful retrieval signal and are dropped.
	DefaultMinChars = 50
)

// Chunker cuts text into fixed-size word windows advancing by size-overlap
// words per step.
type Chunker struct {
	size     int
	overlap  int
	minChars int
}

// New creates a Chunker. Overlap must be non-negative and strictly smaller
// than size, otherwise the step size would be non-positive and chunking
// would never terminate.
func New(size, overlap, minChars int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("chunk overlap must be non-negative, got %d", overlap)
	}
	if overlap >= size {
		return nil, fmt.Errorf("chunk overlap %d must be smaller than chunk size %d", overlap, size)
	}
	if minChars < 0 {
		minChars = 0
	}
	return &Chunker{size: size, overlap: overlap, minChars: minChars}, nil
}

// Split normalizes whitespace, splits text into words, and returns the
// ordered sequence of overlapping windows. The final window may be shorter
// than the configured size.
func (c *Chunker) Split(text string) []string {
	// strings.Fields collapses all whitespace runs, including newlines
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	step := c.size - c.overlap
	var chunks []string

	for i := 0; i < len(words); i += step {
		end := i + c.size
		if end > len(words) {
			end = len(words)
		}

		// minChars counts characters, not bytes, so multi-byte scripts
		// are filtered the same as ASCII
		chunk := strings.TrimSpace(strings.Join(words[i:end], " "))
		if chunk != "" && utf8.RuneCountInString(chunk) > c.minChars {
			chunks = append(chunks, chunk)
		}

		if end == len(words) {
			break
		}
	}

	return chunks
}

// ChunkDocument splits a document and wraps each window in a Chunk with
// deterministic IDs and source metadata.
func (c *Chunker) ChunkDocument(doc models.Document) []models.Chunk {
	parts := c.Split(doc.Content)
	chunks := make([]models.Chunk, 0, len(parts))

	for i, text := range parts {
		chunks = append(chunks, models.Chunk{
			ID:             models.ChunkID(doc.Filename, i),
			Text:           text,
			SourceFilename: doc.Filename,
			SourcePath:     doc.SourcePath,
			Index:          i,
			TotalChunks:    len(parts),
		})
	}

	return chunks
}
