// ABOUTME: RetrievalResult is a scored chunk returned by semantic or lexical search
// ABOUTME: Ordered ascending by distance, closest match first
package models

// ResultMetadata carries the provenance of a retrieved chunk.
type ResultMetadata struct {
	Filename    string `json:"filename"`
	Source      string `json:"source"`
	ChunkIndex  int    `json:"chunk_index"`
	TotalChunks int    `json:"total_chunks"`
}

// RetrievalResult is one search hit. Distance is cosine distance in vector
// mode (0 = identical) or a lexical score mapped onto the same ascending
// scale in degraded mode.
type RetrievalResult struct {
	Content  string         `json:"content"`
	Metadata ResultMetadata `json:"metadata"`
	Distance float64        `json:"distance"`
}
