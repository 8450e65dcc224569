// ABOUTME: Text extraction boundary for corpus source files
// ABOUTME: PDF extraction shells out to pdftotext; plain text formats are read directly
package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Extractor turns one source file into plain text.
type Extractor interface {
	// Extract returns the text content of the file at path.
	Extract(ctx context.Context, path string) (string, error)
	// Supports reports whether this extractor handles the file extension.
	Supports(ext string) bool
}

// PlainText reads .txt and .md files verbatim.
type PlainText struct{}

// NewPlainText creates a plain-text extractor.
func NewPlainText() *PlainText {
	return &PlainText{}
}

// Supports reports true for plain-text extensions.
func (p *PlainText) Supports(ext string) bool {
	switch strings.ToLower(ext) {
	case ".txt", ".md":
		return true
	}
	return false
}

// Extract reads the file contents.
func (p *PlainText) Extract(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	return string(data), nil
}
