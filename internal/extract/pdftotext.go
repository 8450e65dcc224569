// ABOUTME: PDF text extraction via the poppler pdftotext command
// ABOUTME: CommandRunner seam keeps the subprocess call testable
package extract

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrPDFToolNotFound is returned when pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH (install poppler-utils)")

// CommandRunner executes an external command and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// PDFToText extracts text from PDF files using the pdftotext tool.
type PDFToText struct {
	runner CommandRunner
}

// NewPDFToText creates a PDF extractor backed by the system pdftotext.
func NewPDFToText() *PDFToText {
	return &PDFToText{runner: execRunner{}}
}

// NewPDFToTextWithRunner creates a PDF extractor with a custom runner (for testing).
func NewPDFToTextWithRunner(runner CommandRunner) *PDFToText {
	return &PDFToText{runner: runner}
}

// Supports reports true for .pdf files.
func (p *PDFToText) Supports(ext string) bool {
	return strings.EqualFold(ext, ".pdf")
}

// Extract runs pdftotext and returns the extracted text.
func (p *PDFToText) Extract(ctx context.Context, path string) (string, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return "", ErrPDFToolNotFound
	}

	// "-" writes the extracted text to stdout
	out, err := p.runner.Run(ctx, "pdftotext", "-layout", path, "-")
	if err != nil {
		return "", fmt.Errorf("extracting %s: %w", filepath.Base(path), err)
	}

	return string(out), nil
}
