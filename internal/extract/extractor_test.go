package extract

import (
	"io"
	"log/slog"
	"testing"
)

func TestFormatPDFPages(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "empty output",
			raw:  "",
			want: "",
		},
		{
			name: "single page",
			raw:  "hello world\n",
			want: "Page 1:\nhello world",
		},
		{
			name: "two pages",
			raw:  "first page\fsecond page",
			want: "Page 1:\nfirst page\n\nPage 2:\nsecond page",
		},
		{
			name: "blank page skipped but numbering kept",
			raw:  "first\f  \n\fthird",
			want: "Page 1:\nfirst\n\nPage 3:\nthird",
		},
		{
			name: "whitespace trimmed per page",
			raw:  "  padded  \f\n content \n",
			want: "Page 1:\npadded\n\nPage 2:\ncontent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatPDFPages(tt.raw); got != tt.want {
				t.Errorf("formatPDFPages(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNewToolExtractor(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e := NewToolExtractor(logger)
	if e == nil {
		t.Fatal("NewToolExtractor() returned nil")
	}

	// Availability must agree with the probed tool paths either way.
	if e.PDFAvailable() != (e.pdftotext != "") {
		t.Error("PDFAvailable() disagrees with probe result")
	}
	if e.OCRAvailable() != (e.tesseract != "") {
		t.Error("OCRAvailable() disagrees with probe result")
	}
}
