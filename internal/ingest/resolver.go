package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"vaultsync/internal/extract"
)

// Placeholder markers inserted by the vault-sync plugin for content that
// must be extracted on this side of the pipe.
const (
	pdfPlaceholder = "[PDF_CONTENT_PLACEHOLDER]"
	ocrPlaceholder = "[IMAGE_OCR_PLACEHOLDER]"
)

var imageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".bmp": true, ".tiff": true, ".tif": true, ".webp": true,
}

// Resolver substitutes extraction placeholders in document text with
// extracted content, or with a deterministic bracketed diagnostic when
// extraction cannot be performed. It never fails: a collaborator error
// degrades to a diagnostic so the upsert pipeline always makes progress.
type Resolver struct {
	extractor extract.Extractor
	vaultRoot string
	logger    *slog.Logger
}

// NewResolver creates a resolver. vaultRoot is joined with relative file
// paths from action metadata to locate source files; it may be empty.
func NewResolver(extractor extract.Extractor, vaultRoot string, logger *slog.Logger) *Resolver {
	return &Resolver{
		extractor: extractor,
		vaultRoot: vaultRoot,
		logger:    logger,
	}
}

// Resolve runs the substitution passes over text. Re-running it on
// already-resolved text is a no-op because no placeholder tokens remain.
func (r *Resolver) Resolve(ctx context.Context, text string, metadata map[string]any, filePath string) string {
	if metaBool(metadata, "requiresExtraction") && strings.HasSuffix(strings.ToLower(filePath), ".pdf") {
		text = r.resolvePDF(ctx, text, filePath)
	}

	if metaBool(metadata, "requiresOCR") && IsImageFile(filePath) {
		text = r.resolveImage(ctx, text, filePath)
	}

	// Any marker still present means extraction was never attempted
	// (collaborator missing, or flags absent). A raw placeholder must
	// never reach the store.
	text = strings.ReplaceAll(text, pdfPlaceholder, "[PDF content extraction not configured]")
	text = strings.ReplaceAll(text, ocrPlaceholder, "[Image OCR not configured]")
	return text
}

func (r *Resolver) resolvePDF(ctx context.Context, text, filePath string) string {
	if r.extractor == nil || !r.extractor.PDFAvailable() {
		r.logger.Warn("PDF extraction requested but not available", "path", filePath)
		return text
	}
	if !strings.Contains(text, pdfPlaceholder) {
		return text
	}

	fullPath := r.fullPath(filePath)
	if _, err := os.Stat(fullPath); err != nil {
		r.logger.Warn("PDF file not found", "path", fullPath)
		return strings.ReplaceAll(text, pdfPlaceholder, "[PDF file not found]")
	}

	extracted, err := r.extractor.ExtractPDF(ctx, fullPath)
	if err != nil {
		r.logger.Error("failed to extract PDF text", "path", filePath, "error", err)
		return strings.ReplaceAll(text, pdfPlaceholder, fmt.Sprintf("[PDF extraction failed: %v]", err))
	}

	extracted = strings.TrimSpace(extracted)
	if extracted == "" {
		return strings.ReplaceAll(text, pdfPlaceholder, "[PDF extraction failed - no text found]")
	}

	r.logger.Debug("extracted PDF text", "path", filePath, "chars", len(extracted))
	return strings.ReplaceAll(text, pdfPlaceholder, extracted)
}

func (r *Resolver) resolveImage(ctx context.Context, text, filePath string) string {
	if r.extractor == nil || !r.extractor.OCRAvailable() {
		r.logger.Warn("image OCR requested but not available", "path", filePath)
		return text
	}
	if !strings.Contains(text, ocrPlaceholder) {
		return text
	}

	fullPath := r.fullPath(filePath)
	if _, err := os.Stat(fullPath); err != nil {
		r.logger.Warn("image file not found", "path", fullPath)
		return strings.ReplaceAll(text, ocrPlaceholder, "[Image file not found]")
	}

	extracted, err := r.extractor.ExtractImage(ctx, fullPath)
	if err != nil {
		r.logger.Error("failed to extract text from image", "path", filePath, "error", err)
		return strings.ReplaceAll(text, ocrPlaceholder, fmt.Sprintf("[OCR extraction failed: %v]", err))
	}

	extracted = strings.TrimSpace(extracted)
	if extracted == "" {
		return strings.ReplaceAll(text, ocrPlaceholder, "[OCR extraction failed - no text found]")
	}

	r.logger.Debug("extracted image text", "path", filePath, "chars", len(extracted))
	return strings.ReplaceAll(text, ocrPlaceholder, extracted)
}

func (r *Resolver) fullPath(filePath string) string {
	if r.vaultRoot == "" {
		return filePath
	}
	return filepath.Join(r.vaultRoot, filePath)
}

// IsImageFile reports whether the path has a supported image extension.
func IsImageFile(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}
