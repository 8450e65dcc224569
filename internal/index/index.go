// ABOUTME: Persistent document index with vector and lexical query modes
// ABOUTME: Stores chunk text, metadata, and embeddings; supports idempotent upsert and k-NN search
package index

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/docchat-labs/docchat/internal/models"
)

var (
	// ErrDimensionMismatch reports a vector whose length differs from the
	// index's configured dimension. Never coerced, always fatal.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrModeViolation reports an operation that does not match the mode
	// chosen at construction (vector entries in a lexical index or the
	// reverse).
	ErrModeViolation = errors.New("index mode violation")
)

// Entry is one chunk to be stored, with its vector in vector mode.
type Entry struct {
	Chunk  models.Chunk
	Vector []float64
}

// Index is a persistent store of (chunk, vector) rows keyed by chunk ID.
// The mode is fixed at construction: dimension > 0 selects vector mode
// with that exact dimension, dimension 0 selects lexical mode. The
// dimension must stay constant for the lifetime of one persisted index;
// re-ingesting with a different embedding model requires wiping the store.
type Index struct {
	db        *sql.DB
	dimension int
}

func newIndex(db *sql.DB, dimension int) (*Index, error) {
	if dimension < 0 {
		_ = db.Close()
		return nil, fmt.Errorf("index dimension must be non-negative, got %d", dimension)
	}

	stored, ok, err := storedDimension(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if !ok {
		if err := writeDimension(db, dimension); err != nil {
			_ = db.Close()
			return nil, err
		}
	} else if stored != dimension {
		_ = db.Close()
		if (stored == 0) != (dimension == 0) {
			return nil, fmt.Errorf("%w: index was built in %s mode, opened in %s mode (rebuild to change modes)",
				ErrModeViolation, modeName(stored), modeName(dimension))
		}
		return nil, fmt.Errorf("%w: index was built with dimension %d, opened with %d (rebuild to change embedding models)",
			ErrDimensionMismatch, stored, dimension)
	}

	return &Index{db: db, dimension: dimension}, nil
}

func modeName(dimension int) string {
	if dimension > 0 {
		return "vector"
	}
	return "lexical"
}

// storedDimension reads the dimension pinned by a previous open, if any.
func storedDimension(db *sql.DB) (int, bool, error) {
	var v int
	err := db.QueryRow("SELECT value FROM index_meta WHERE key = 'dimension'").Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("reading index dimension: %w", err)
	}
	return v, true, nil
}

func writeDimension(db *sql.DB, dimension int) error {
	_, err := db.Exec(`
		INSERT INTO index_meta (key, value) VALUES ('dimension', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, dimension)
	if err != nil {
		return fmt.Errorf("recording index dimension: %w", err)
	}
	return nil
}

// VectorMode reports whether the index stores and queries embeddings.
func (ix *Index) VectorMode() bool {
	return ix.dimension > 0
}

// Dimension returns the configured vector dimension, 0 in lexical mode.
func (ix *Index) Dimension() int {
	return ix.dimension
}

// Count returns the number of stored chunks. Zero on a freshly opened
// path signals that ingestion is needed.
func (ix *Index) Count() (int, error) {
	var count int
	if err := ix.db.QueryRow("SELECT COUNT(*) FROM chunks").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return count, nil
}

// Upsert stores a batch of entries. IDs are deterministic, so re-ingesting
// the same document overwrites prior rows instead of duplicating them.
// In vector mode every entry must carry a vector of the configured
// dimension; in lexical mode no entry may carry one.
func (ix *Index) Upsert(entries []Entry) error {
	for _, e := range entries {
		if ix.VectorMode() {
			if e.Vector == nil {
				return fmt.Errorf("%w: entry %s has no vector in vector mode", ErrModeViolation, e.Chunk.ID)
			}
			if len(e.Vector) != ix.dimension {
				return fmt.Errorf("%w: entry %s has dimension %d, index expects %d",
					ErrDimensionMismatch, e.Chunk.ID, len(e.Vector), ix.dimension)
			}
		} else if e.Vector != nil {
			return fmt.Errorf("%w: entry %s carries a vector in lexical mode", ErrModeViolation, e.Chunk.ID)
		}
	}

	tx, err := ix.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
		INSERT INTO chunks (id, content, filename, source_path, chunk_index, total_chunks, vector)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			content = excluded.content,
			filename = excluded.filename,
			source_path = excluded.source_path,
			chunk_index = excluded.chunk_index,
			total_chunks = excluded.total_chunks,
			vector = excluded.vector
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, e := range entries {
		var blob []byte
		if e.Vector != nil {
			blob = vectorToBlob(e.Vector)
		}

		_, err := stmt.Exec(e.Chunk.ID, e.Chunk.Text, e.Chunk.SourceFilename,
			e.Chunk.SourcePath, e.Chunk.Index, e.Chunk.TotalChunks, blob)
		if err != nil {
			return fmt.Errorf("inserting chunk %s: %w", e.Chunk.ID, err)
		}
	}

	return tx.Commit()
}

// Query returns up to k entries nearest to the query vector, ascending by
// cosine distance. An empty index yields an empty result, not an error.
func (ix *Index) Query(vector []float64, k int) ([]models.RetrievalResult, error) {
	if !ix.VectorMode() {
		return nil, fmt.Errorf("%w: vector query against a lexical index", ErrModeViolation)
	}
	if len(vector) != ix.dimension {
		return nil, fmt.Errorf("%w: query has dimension %d, index expects %d",
			ErrDimensionMismatch, len(vector), ix.dimension)
	}

	rows, err := ix.db.Query("SELECT content, filename, source_path, chunk_index, total_chunks, vector FROM chunks")
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []models.RetrievalResult
	for rows.Next() {
		var (
			result models.RetrievalResult
			source sql.NullString
			blob   []byte
		)
		if err := rows.Scan(&result.Content, &result.Metadata.Filename, &source,
			&result.Metadata.ChunkIndex, &result.Metadata.TotalChunks, &blob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		if source.Valid {
			result.Metadata.Source = source.String
		}

		stored := blobToVector(blob)
		if len(stored) != ix.dimension {
			return nil, fmt.Errorf("%w: stored chunk %s_chunk_%d has dimension %d, index expects %d",
				ErrDimensionMismatch, result.Metadata.Filename, result.Metadata.ChunkIndex, len(stored), ix.dimension)
		}

		result.Distance = 1.0 - CosineSimilarity(vector, stored)
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return topK(results, k), nil
}

// QueryText returns up to k entries by lexical relevance to the query,
// on the same ascending-distance scale as Query. Used when the embedding
// provider is in no-embedding mode.
func (ix *Index) QueryText(text string, k int) ([]models.RetrievalResult, error) {
	terms := tokenize(text)
	if len(terms) == 0 {
		return nil, nil
	}

	rows, err := ix.db.Query("SELECT content, filename, source_path, chunk_index, total_chunks FROM chunks")
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []models.RetrievalResult
	for rows.Next() {
		var (
			result models.RetrievalResult
			source sql.NullString
		)
		if err := rows.Scan(&result.Content, &result.Metadata.Filename, &source,
			&result.Metadata.ChunkIndex, &result.Metadata.TotalChunks); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		if source.Valid {
			result.Metadata.Source = source.String
		}

		score := lexicalScore(terms, result.Content)
		if score == 0 {
			continue
		}
		result.Distance = 1.0 - score
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return topK(results, k), nil
}

// Clear removes all stored chunks.
func (ix *Index) Clear() error {
	_, err := ix.db.Exec("DELETE FROM chunks")
	return err
}

// Close releases the underlying database connection.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// topK sorts ascending by distance and truncates to k. Ties break on
// filename and chunk index so ordering is stable across runs.
func topK(results []models.RetrievalResult, k int) []models.RetrievalResult {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		if results[i].Metadata.Filename != results[j].Metadata.Filename {
			return results[i].Metadata.Filename < results[j].Metadata.Filename
		}
		return results[i].Metadata.ChunkIndex < results[j].Metadata.ChunkIndex
	})
	if k >= 0 && len(results) > k {
		results = results[:k]
	}
	return results
}
