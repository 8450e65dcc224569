// ABOUTME: Document represents extracted text from one corpus source file
// ABOUTME: Produced by the extraction layer and consumed by the chunker
package models

// Document is the extraction result for a single source file.
type Document struct {
	Filename   string `json:"filename"`
	Content    string `json:"content"`
	SourcePath string `json:"source"`
}
