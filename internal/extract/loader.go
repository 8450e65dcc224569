// ABOUTME: Directory loader that extracts every supported corpus document
// ABOUTME: Unreadable files are logged and skipped; ingestion is partial-failure tolerant
package extract

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/docchat-labs/docchat/internal/models"
)

// Loader walks a corpus directory and extracts text from every file a
// registered extractor supports.
type Loader struct {
	extractors []Extractor
}

// NewLoader creates a Loader with the default extractor set.
func NewLoader() *Loader {
	return &Loader{
		extractors: []Extractor{NewPDFToText(), NewPlainText()},
	}
}

// NewLoaderWithExtractors creates a Loader with a custom extractor set (for testing).
func NewLoaderWithExtractors(extractors ...Extractor) *Loader {
	return &Loader{extractors: extractors}
}

// LoadDirectory extracts all supported documents under dir, top level only.
// A document that fails to extract is logged and skipped; the rest of the
// corpus still loads. An unreadable directory is an error.
func (l *Loader) LoadDirectory(ctx context.Context, dir string) ([]models.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading corpus directory %s: %w", dir, err)
	}

	var docs []models.Document
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ext := filepath.Ext(entry.Name())
		extractor := l.extractorFor(ext)
		if extractor == nil {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		content, err := extractor.Extract(ctx, path)
		if err != nil {
			log.Printf("Warning: skipping %s: %v", entry.Name(), err)
			continue
		}
		if strings.TrimSpace(content) == "" {
			log.Printf("Warning: skipping %s: no extractable text", entry.Name())
			continue
		}

		docs = append(docs, models.Document{
			Filename:   entry.Name(),
			Content:    content,
			SourcePath: path,
		})
	}

	return docs, nil
}

func (l *Loader) extractorFor(ext string) Extractor {
	for _, e := range l.extractors {
		if e.Supports(ext) {
			return e
		}
	}
	return nil
}
