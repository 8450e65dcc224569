// ABOUTME: Chunk represents a fixed-size overlapping text window from a source document
// ABOUTME: The atomic retrieval unit stored in the document index
package models

import "fmt"

// Chunk is one overlapping word window cut from a source document.
// IDs are deterministic, so re-ingesting the same file with the same
// chunking parameters overwrites prior entries instead of duplicating them.
type Chunk struct {
	ID             string `json:"id"`
	Text           string `json:"text"`
	SourceFilename string `json:"source_filename"`
	SourcePath     string `json:"source_path"`
	Index          int    `json:"chunk_index"`
	TotalChunks    int    `json:"total_chunks"`
}

// ChunkID builds the deterministic chunk identifier for a file and position.
func ChunkID(filename string, index int) string {
	return fmt.Sprintf("%s_chunk_%d", filename, index)
}
