// Package extract provides the content-extraction capability used to fill
// PDF and image placeholders in document bodies. Extraction is best-effort:
// availability depends on which external tools are installed.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Extractor is the capability surface consumed by the placeholder resolver.
type Extractor interface {
	// PDFAvailable reports whether PDF text extraction can be attempted.
	PDFAvailable() bool
	// OCRAvailable reports whether image OCR can be attempted.
	OCRAvailable() bool
	// ExtractPDF extracts the text of a PDF file.
	ExtractPDF(ctx context.Context, path string) (string, error)
	// ExtractImage runs OCR over an image file.
	ExtractImage(ctx context.Context, path string) (string, error)
}

// ToolExtractor extracts content by shelling out to pdftotext and
// tesseract when they are present on PATH. It implements Extractor.
type ToolExtractor struct {
	pdftotext string
	tesseract string
	logger    *slog.Logger
}

// NewToolExtractor probes PATH for the extraction tools and logs which
// optional features are available.
func NewToolExtractor(logger *slog.Logger) *ToolExtractor {
	e := &ToolExtractor{logger: logger}
	e.pdftotext, _ = exec.LookPath("pdftotext")
	e.tesseract, _ = exec.LookPath("tesseract")

	var features []string
	if e.PDFAvailable() {
		features = append(features, "PDF text extraction")
	}
	if e.OCRAvailable() {
		features = append(features, "Image OCR")
	}
	if len(features) > 0 {
		logger.Info("optional features available", "features", strings.Join(features, ", "))
	} else {
		logger.Info("no optional content extraction features available")
	}
	if !e.PDFAvailable() {
		logger.Debug("PDF extraction unavailable - install poppler-utils (pdftotext)")
	}
	if !e.OCRAvailable() {
		logger.Debug("Image OCR unavailable - install tesseract")
	}

	return e
}

// PDFAvailable reports whether pdftotext was found on PATH.
func (e *ToolExtractor) PDFAvailable() bool {
	return e.pdftotext != ""
}

// OCRAvailable reports whether tesseract was found on PATH.
func (e *ToolExtractor) OCRAvailable() bool {
	return e.tesseract != ""
}

// ExtractPDF extracts the text of a PDF file, labelling each page.
func (e *ToolExtractor) ExtractPDF(ctx context.Context, path string) (string, error) {
	if !e.PDFAvailable() {
		return "", fmt.Errorf("pdftotext not available")
	}

	out, err := exec.CommandContext(ctx, e.pdftotext, "-layout", path, "-").Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext failed: %w", err)
	}
	return formatPDFPages(string(out)), nil
}

// ExtractImage runs tesseract OCR over an image file.
func (e *ToolExtractor) ExtractImage(ctx context.Context, path string) (string, error) {
	if !e.OCRAvailable() {
		return "", fmt.Errorf("tesseract not available")
	}

	out, err := exec.CommandContext(ctx, e.tesseract, path, "stdout").Output()
	if err != nil {
		return "", fmt.Errorf("tesseract failed: %w", err)
	}
	return string(out), nil
}

// formatPDFPages converts pdftotext output, which separates pages with a
// form feed, into page-labelled sections. Empty pages are skipped.
func formatPDFPages(raw string) string {
	pages := strings.Split(raw, "\f")
	var b strings.Builder
	for i, page := range pages {
		trimmed := strings.TrimSpace(page)
		if trimmed == "" {
			continue
		}
		b.WriteString(fmt.Sprintf("Page %d:\n%s\n\n", i+1, trimmed))
	}
	return strings.TrimSpace(b.String())
}
