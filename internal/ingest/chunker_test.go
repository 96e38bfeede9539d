package ingest

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestChunkDocument_ShortTextSingleChunk(t *testing.T) {
	metadata := map[string]any{"path": "notes/short.md"}
	chunks := ChunkDocument("notes_short.md", "small body", metadata, ChunkSizeBytes)

	if len(chunks) != 1 {
		t.Fatalf("ChunkDocument() returned %d chunks, want 1", len(chunks))
	}
	if chunks[0].ID != "notes_short.md" {
		t.Errorf("chunk ID = %q, want original doc id", chunks[0].ID)
	}
	if chunks[0].Text != "small body" {
		t.Errorf("chunk text = %q, want original text", chunks[0].Text)
	}
	if _, ok := chunks[0].Metadata["is_chunk"]; ok {
		t.Error("single-chunk document must not carry chunk metadata")
	}
}

func TestChunkDocument_SplitsAndRoundTrips(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		chunkSize int
	}{
		{
			name:      "ascii",
			text:      strings.Repeat("The quick brown fox. ", 50),
			chunkSize: 100,
		},
		{
			name:      "two byte runes",
			text:      strings.Repeat("héllo wörld ", 60),
			chunkSize: 64,
		},
		{
			name:      "three byte runes",
			text:      strings.Repeat("日本語のテキスト", 40),
			chunkSize: 50,
		},
		{
			name:      "four byte runes",
			text:      strings.Repeat("𝕏𝕐𝕑 ", 30),
			chunkSize: 21,
		},
		{
			name:      "boundary lands inside code point",
			text:      "ab" + strings.Repeat("é", 100),
			chunkSize: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := ChunkDocument("doc", tt.text, nil, tt.chunkSize)

			if len(chunks) < 2 {
				t.Fatalf("ChunkDocument() returned %d chunks, want >= 2", len(chunks))
			}

			var rebuilt strings.Builder
			for i, chunk := range chunks {
				if len(chunk.Text) > tt.chunkSize {
					t.Errorf("chunk %d is %d bytes, want <= %d", i, len(chunk.Text), tt.chunkSize)
				}
				if !utf8.ValidString(chunk.Text) {
					t.Errorf("chunk %d is not valid UTF-8", i)
				}
				rebuilt.WriteString(chunk.Text)
			}

			if rebuilt.String() != tt.text {
				t.Error("concatenated chunks do not reproduce the original text")
			}
		})
	}
}

func TestChunkDocument_ChunkMetadata(t *testing.T) {
	metadata := map[string]any{"path": "notes/big.md", "size": 1000}
	text := strings.Repeat("x", 250)
	chunks := ChunkDocument("notes_big.md", text, metadata, 100)

	if len(chunks) != 3 {
		t.Fatalf("ChunkDocument() returned %d chunks, want 3", len(chunks))
	}

	for i, chunk := range chunks {
		wantID := fmt.Sprintf("notes_big.md_chunk_%d", i)
		if chunk.ID != wantID {
			t.Errorf("chunk %d ID = %q, want %q", i, chunk.ID, wantID)
		}
		if chunk.Metadata["is_chunk"] != true {
			t.Errorf("chunk %d is_chunk = %v, want true", i, chunk.Metadata["is_chunk"])
		}
		if chunk.Metadata["chunk_number"] != i {
			t.Errorf("chunk %d chunk_number = %v, want %d", i, chunk.Metadata["chunk_number"], i)
		}
		if chunk.Metadata["total_chunks"] != 3 {
			t.Errorf("chunk %d total_chunks = %v, want 3", i, chunk.Metadata["total_chunks"])
		}
		if chunk.Metadata["original_doc_id"] != "notes_big.md" {
			t.Errorf("chunk %d original_doc_id = %v", i, chunk.Metadata["original_doc_id"])
		}
		// Source metadata is carried into every chunk.
		if chunk.Metadata["path"] != "notes/big.md" {
			t.Errorf("chunk %d lost source metadata", i)
		}
	}

	// The original metadata map must not be mutated.
	if _, ok := metadata["is_chunk"]; ok {
		t.Error("ChunkDocument() mutated the caller's metadata map")
	}
}

func TestChunkDocument_LongDocIDNormalized(t *testing.T) {
	longID := strings.Repeat("a", 200)
	text := strings.Repeat("x", 250)
	chunks := ChunkDocument(longID, text, nil, 100)

	for i, chunk := range chunks {
		if len(chunk.ID) > MaxIDBytes+len("_chunk_0") {
			t.Errorf("chunk %d ID is %d bytes: %q", i, len(chunk.ID), chunk.ID)
		}
		if !strings.Contains(chunk.ID, "...") {
			t.Errorf("chunk %d ID = %q, want normalized base id", i, chunk.ID)
		}
		if !strings.HasSuffix(chunk.ID, fmt.Sprintf("_chunk_%d", i)) {
			t.Errorf("chunk %d ID = %q, want _chunk_%d suffix", i, chunk.ID, i)
		}
		// The original id survives untruncated in metadata.
		if chunk.Metadata["original_doc_id"] != longID {
			t.Errorf("chunk %d original_doc_id was truncated", i)
		}
	}
}

func TestChunkDocument_ExactBoundary(t *testing.T) {
	text := strings.Repeat("a", 200)
	chunks := ChunkDocument("doc", text, nil, 100)

	if len(chunks) != 2 {
		t.Fatalf("ChunkDocument() returned %d chunks, want 2", len(chunks))
	}
	if len(chunks[0].Text) != 100 || len(chunks[1].Text) != 100 {
		t.Errorf("chunk sizes = %d, %d, want 100, 100", len(chunks[0].Text), len(chunks[1].Text))
	}
}
