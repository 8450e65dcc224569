// ABOUTME: Tests for the document index in vector and lexical modes
// ABOUTME: Verifies idempotent upsert, k-NN ordering, mode and dimension guards, persistence

package index

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"testing"

	"github.com/docchat-labs/docchat/internal/models"
)

func testChunk(filename string, i, total int, text string) models.Chunk {
	return models.Chunk{
		ID:             models.ChunkID(filename, i),
		Text:           text,
		SourceFilename: filename,
		SourcePath:     "/corpus/" + filename,
		Index:          i,
		TotalChunks:    total,
	}
}

func mustOpen(t *testing.T, dimension int) *Index {
	t.Helper()
	ix, err := OpenInMemory(dimension)
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = ix.Close() })
	return ix
}

func TestUpsert_Idempotent(t *testing.T) {
	ix := mustOpen(t, 3)

	entries := []Entry{
		{Chunk: testChunk("doc.pdf", 0, 2, "first chunk"), Vector: []float64{1, 0, 0}},
		{Chunk: testChunk("doc.pdf", 1, 2, "second chunk"), Vector: []float64{0, 1, 0}},
	}

	for i := 0; i < 2; i++ {
		if err := ix.Upsert(entries); err != nil {
			t.Fatalf("Upsert() pass %d error = %v", i+1, err)
		}
	}

	count, err := ix.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 2 {
		t.Errorf("Count() = %d after double ingestion, want 2", count)
	}
}

func TestUpsert_OverwritesContent(t *testing.T) {
	ix := mustOpen(t, 2)

	chunk := testChunk("doc.pdf", 0, 1, "old text")
	if err := ix.Upsert([]Entry{{Chunk: chunk, Vector: []float64{1, 0}}}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	chunk.Text = "new text"
	if err := ix.Upsert([]Entry{{Chunk: chunk, Vector: []float64{1, 0}}}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	results, err := ix.Query([]float64{1, 0}, 1)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(results) != 1 || results[0].Content != "new text" {
		t.Errorf("results = %+v, want single overwritten chunk", results)
	}
}

func TestUpsert_DimensionMismatch(t *testing.T) {
	ix := mustOpen(t, 3)

	err := ix.Upsert([]Entry{{Chunk: testChunk("doc.pdf", 0, 1, "text"), Vector: []float64{1, 0}}})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("Upsert() error = %v, want ErrDimensionMismatch", err)
	}
}

func TestUpsert_ModeViolations(t *testing.T) {
	t.Run("missing vector in vector mode", func(t *testing.T) {
		ix := mustOpen(t, 3)
		err := ix.Upsert([]Entry{{Chunk: testChunk("doc.pdf", 0, 1, "text")}})
		if !errors.Is(err, ErrModeViolation) {
			t.Errorf("Upsert() error = %v, want ErrModeViolation", err)
		}
	})

	t.Run("vector in lexical mode", func(t *testing.T) {
		ix := mustOpen(t, 0)
		err := ix.Upsert([]Entry{{Chunk: testChunk("doc.pdf", 0, 1, "text"), Vector: []float64{1}}})
		if !errors.Is(err, ErrModeViolation) {
			t.Errorf("Upsert() error = %v, want ErrModeViolation", err)
		}
	})
}

func TestQuery_ExactMatchFirst(t *testing.T) {
	ix := mustOpen(t, 3)

	entries := []Entry{
		{Chunk: testChunk("doc.pdf", 0, 3, "alpha"), Vector: []float64{1, 0, 0}},
		{Chunk: testChunk("doc.pdf", 1, 3, "beta"), Vector: []float64{0, 1, 0}},
		{Chunk: testChunk("doc.pdf", 2, 3, "gamma"), Vector: []float64{0, 0, 1}},
	}
	if err := ix.Upsert(entries); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	results, err := ix.Query([]float64{0, 1, 0}, 3)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}

	if results[0].Content != "beta" {
		t.Errorf("top result = %q, want beta", results[0].Content)
	}
	if math.Abs(results[0].Distance) > 1e-9 {
		t.Errorf("top distance = %f, want ~0", results[0].Distance)
	}

	for i := 1; i < len(results); i++ {
		if results[i].Distance < results[i-1].Distance {
			t.Errorf("results not ascending at %d: %f < %f", i, results[i].Distance, results[i-1].Distance)
		}
	}
}

func TestQuery_LimitsToK(t *testing.T) {
	ix := mustOpen(t, 2)

	var entries []Entry
	for i := 0; i < 10; i++ {
		angle := float64(i) * 0.1
		entries = append(entries, Entry{
			Chunk:  testChunk("doc.pdf", i, 10, fmt.Sprintf("chunk %d", i)),
			Vector: []float64{math.Cos(angle), math.Sin(angle)},
		})
	}
	if err := ix.Upsert(entries); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	results, err := ix.Query([]float64{1, 0}, 4)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(results) != 4 {
		t.Errorf("len(results) = %d, want 4", len(results))
	}
}

func TestQuery_EmptyIndex(t *testing.T) {
	ix := mustOpen(t, 3)

	results, err := ix.Query([]float64{1, 0, 0}, 5)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("len(results) = %d, want 0", len(results))
	}
}

func TestQuery_DimensionMismatch(t *testing.T) {
	ix := mustOpen(t, 3)

	_, err := ix.Query([]float64{1, 0}, 5)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("Query() error = %v, want ErrDimensionMismatch", err)
	}
}

func TestQuery_AgainstLexicalIndex(t *testing.T) {
	ix := mustOpen(t, 0)

	_, err := ix.Query([]float64{1, 0}, 5)
	if !errors.Is(err, ErrModeViolation) {
		t.Errorf("Query() error = %v, want ErrModeViolation", err)
	}
}

func TestQueryText_LexicalMode(t *testing.T) {
	ix := mustOpen(t, 0)

	entries := []Entry{
		{Chunk: testChunk("enrolment.pdf", 0, 2, "The enrolment process requires proof of identity and address.")},
		{Chunk: testChunk("enrolment.pdf", 1, 2, "Updates to biometric data are free of charge once.")},
		{Chunk: testChunk("faq.pdf", 0, 1, "General questions about the service and its availability.")},
	}
	if err := ix.Upsert(entries); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	results, err := ix.QueryText("proof of identity for enrolment", 2)
	if err != nil {
		t.Fatalf("QueryText() error = %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected lexical matches")
	}
	if results[0].Metadata.Filename != "enrolment.pdf" || results[0].Metadata.ChunkIndex != 0 {
		t.Errorf("top result = %+v, want enrolment.pdf chunk 0", results[0].Metadata)
	}

	for i := 1; i < len(results); i++ {
		if results[i].Distance < results[i-1].Distance {
			t.Errorf("results not ascending at %d", i)
		}
	}
}

func TestQueryText_NoMatches(t *testing.T) {
	ix := mustOpen(t, 0)

	if err := ix.Upsert([]Entry{{Chunk: testChunk("doc.pdf", 0, 1, "completely unrelated words")}}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	results, err := ix.QueryText("zzyzx qwertyuiop", 5)
	if err != nil {
		t.Fatalf("QueryText() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("len(results) = %d, want 0", len(results))
	}
}

func TestClear(t *testing.T) {
	ix := mustOpen(t, 2)

	if err := ix.Upsert([]Entry{{Chunk: testChunk("doc.pdf", 0, 1, "text"), Vector: []float64{1, 0}}}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := ix.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	count, err := ix.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 0 {
		t.Errorf("Count() = %d after Clear, want 0", count)
	}
}

func TestOpen_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")

	ix, err := Open(path, 2)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := ix.Upsert([]Entry{{Chunk: testChunk("doc.pdf", 0, 1, "persisted"), Vector: []float64{0, 1}}}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := ix.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := Open(path, 2)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer func() { _ = reopened.Close() }()

	count, err := reopened.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 1 {
		t.Errorf("Count() = %d after reopen, want 1", count)
	}

	results, err := reopened.Query([]float64{0, 1}, 1)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(results) != 1 || results[0].Content != "persisted" {
		t.Errorf("results = %+v, want persisted chunk", results)
	}
}

func TestOpen_DimensionDriftFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")

	ix, err := Open(path, 3)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := ix.Upsert([]Entry{{Chunk: testChunk("doc.pdf", 0, 1, "text"), Vector: []float64{1, 0, 0}}}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := ix.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// A different embedding model must never score against the old vectors
	if _, err := Open(path, 2); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("Open() with drifted dimension error = %v, want ErrDimensionMismatch", err)
	}

	// Crossing the vector/lexical boundary is a mode violation
	if _, err := Open(path, 0); !errors.Is(err, ErrModeViolation) {
		t.Errorf("Open() in lexical mode error = %v, want ErrModeViolation", err)
	}

	// The original dimension still opens and queries
	reopened, err := Open(path, 3)
	if err != nil {
		t.Fatalf("reopen with original dimension error = %v", err)
	}
	defer func() { _ = reopened.Close() }()

	results, err := reopened.Query([]float64{1, 0, 0}, 1)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(results) != 1 {
		t.Errorf("len(results) = %d, want 1", len(results))
	}
}

func TestOpen_LexicalThenVectorFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")

	ix, err := Open(path, 0)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := ix.Upsert([]Entry{{Chunk: testChunk("doc.pdf", 0, 1, "lexical only")}}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := ix.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if _, err := Open(path, 4); !errors.Is(err, ErrModeViolation) {
		t.Errorf("Open() in vector mode error = %v, want ErrModeViolation", err)
	}
}

func TestOpenRebuild_ReplacesDriftedIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")

	ix, err := Open(path, 3)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := ix.Upsert([]Entry{{Chunk: testChunk("doc.pdf", 0, 1, "old model"), Vector: []float64{1, 0, 0}}}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := ix.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	rebuilt, err := OpenRebuild(path, 2)
	if err != nil {
		t.Fatalf("OpenRebuild() error = %v", err)
	}

	count, err := rebuilt.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 0 {
		t.Errorf("Count() = %d after rebuild, want 0", count)
	}

	if err := rebuilt.Upsert([]Entry{{Chunk: testChunk("doc.pdf", 0, 1, "new model"), Vector: []float64{0, 1}}}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := rebuilt.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// The new dimension is now the pinned one
	reopened, err := Open(path, 2)
	if err != nil {
		t.Fatalf("reopen after rebuild error = %v", err)
	}
	defer func() { _ = reopened.Close() }()

	results, err := reopened.Query([]float64{0, 1}, 1)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(results) != 1 || results[0].Content != "new model" {
		t.Errorf("results = %+v, want the re-ingested chunk", results)
	}
}

func TestQuery_RejectsMismatchedStoredVector(t *testing.T) {
	ix := mustOpen(t, 2)

	// Bypass Upsert validation to plant a row with a wrong-length vector
	_, err := ix.db.Exec(
		"INSERT INTO chunks (id, content, filename, source_path, chunk_index, total_chunks, vector) VALUES (?, ?, ?, ?, ?, ?, ?)",
		"doc.pdf_chunk_0", "text", "doc.pdf", "/corpus/doc.pdf", 0, 1, vectorToBlob([]float64{1, 0, 0}))
	if err != nil {
		t.Fatalf("planting row: %v", err)
	}

	if _, err := ix.Query([]float64{1, 0}, 1); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("Query() error = %v, want ErrDimensionMismatch", err)
	}
}

func TestVectorBlobRoundTrip(t *testing.T) {
	vec := []float64{0.123456789, -42.5, 0, math.Pi}
	got := blobToVector(vectorToBlob(vec))
	if len(got) != len(vec) {
		t.Fatalf("len = %d, want %d", len(got), len(vec))
	}
	for i := range vec {
		if got[i] != vec[i] {
			t.Errorf("round trip differs at %d: %v != %v", i, got[i], vec[i])
		}
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical unit vectors", []float64{1, 0}, []float64{1, 0}, 1.0},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0.0},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1.0},
		{"mismatched lengths", []float64{1, 0}, []float64{1}, 0.0},
		{"zero vector", []float64{0, 0}, []float64{1, 0}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CosineSimilarity(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CosineSimilarity() = %f, want %f", got, tt.want)
			}
		})
	}
}
