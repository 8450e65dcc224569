// ABOUTME: SQLite connection and schema for the persistent document index
// ABOUTME: Uses modernc.org/sqlite for pure-Go SQLite support
package index

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Schema contains all SQL statements for index initialization
const schema = `
-- Document chunks with optional embedding vectors.
-- vector is NULL for every row in lexical mode and NOT NULL for every row
-- in vector mode; the two are never mixed within one index.
CREATE TABLE IF NOT EXISTS chunks (
    id TEXT PRIMARY KEY,
    content TEXT NOT NULL,
    filename TEXT NOT NULL,
    source_path TEXT,
    chunk_index INTEGER NOT NULL,
    total_chunks INTEGER NOT NULL,
    vector BLOB,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_chunks_filename ON chunks(filename);

-- Index-level settings. The 'dimension' row pins the vector dimension
-- (0 for lexical mode) for the lifetime of the persisted index.
CREATE TABLE IF NOT EXISTS index_meta (
    key TEXT PRIMARY KEY,
    value INTEGER NOT NULL
);
`

func openDB(dsn string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := conn.Exec(schema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return conn, nil
}

// Open opens or creates the index database at the given path.
// Re-opening an existing path preserves prior entries; callers check Count
// to decide whether ingestion is needed. A persisted index carries its
// dimension, and reopening with a different one fails with
// ErrDimensionMismatch (or ErrModeViolation across the vector/lexical
// boundary) instead of scoring against incompatible vectors.
func Open(path string, dimension int) (*Index, error) {
	conn, err := openFile(path)
	if err != nil {
		return nil, err
	}

	return newIndex(conn, dimension)
}

// OpenRebuild opens the index at path for a full re-ingestion: stored
// chunks are dropped and the persisted dimension is replaced, so changing
// embedding models does not block the rebuild.
func OpenRebuild(path string, dimension int) (*Index, error) {
	conn, err := openFile(path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec("DELETE FROM chunks"); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("dropping stored chunks: %w", err)
	}
	if err := writeDimension(conn, dimension); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return newIndex(conn, dimension)
}

func openFile(path string) (*sql.DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return openDB(path + "?_pragma=journal_mode(WAL)")
}

// OpenInMemory creates an in-memory index (for testing)
func OpenInMemory(dimension int) (*Index, error) {
	conn, err := openDB(":memory:")
	if err != nil {
		return nil, err
	}

	return newIndex(conn, dimension)
}
