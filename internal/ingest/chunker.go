package ingest

import "fmt"

const (
	// MaxDocumentBytes is the largest body ever sent as a single document.
	MaxDocumentBytes = 16000
	// ChunkSizeBytes targets chunk bodies below MaxDocumentBytes, leaving
	// headroom for metadata overhead.
	ChunkSizeBytes = 15000
)

// Chunk is one byte-bounded slice of an oversized document, persisted as
// an independent store entity.
type Chunk struct {
	ID       string
	Text     string
	Metadata map[string]any
}

// ChunkDocument splits text into UTF-8-safe chunks of at most chunkSize
// bytes. Text that already fits is returned as a single chunk with the
// original id and metadata. Chunk ids are "{docID}_chunk_{n}" (0-indexed),
// with docID normalized first when the composed id would exceed the store
// limit. Every chunk's metadata carries is_chunk, chunk_number,
// total_chunks, and original_doc_id; total_chunks is back-filled once the
// whole sequence is known.
//
// Concatenating the chunk texts in order reproduces the input exactly.
func ChunkDocument(docID, text string, metadata map[string]any, chunkSize int) []Chunk {
	data := []byte(text)
	if len(data) <= chunkSize {
		return []Chunk{{ID: docID, Text: text, Metadata: metadata}}
	}

	var chunks []Chunk
	start := 0
	for start < len(data) {
		end := start + chunkSize
		if end > len(data) {
			end = len(data)
		}

		// A continuation byte after the boundary means the boundary sits
		// inside a multi-byte code point; retract to the code point start.
		for end < len(data) && data[end]&0xC0 == 0x80 {
			end--
		}

		num := len(chunks)
		chunkID := fmt.Sprintf("%s_chunk_%d", docID, num)
		if len(chunkID) > MaxIDBytes {
			chunkID = fmt.Sprintf("%s_chunk_%d", NormalizeID(docID), num)
		}

		chunkMeta := make(map[string]any, len(metadata)+4)
		for k, v := range metadata {
			chunkMeta[k] = v
		}
		chunkMeta["is_chunk"] = true
		chunkMeta["chunk_number"] = num
		chunkMeta["original_doc_id"] = docID

		chunks = append(chunks, Chunk{
			ID:       chunkID,
			Text:     string(data[start:end]),
			Metadata: chunkMeta,
		})
		start = end
	}

	// The count is only known after the full pass.
	for i := range chunks {
		chunks[i].Metadata["total_chunks"] = len(chunks)
	}

	return chunks
}
