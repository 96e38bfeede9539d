package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"vaultsync/internal/chroma"
)

// Outcome classifies the result of one store operation. Quota-exceeded
// responses are soft failures: surfaced as warnings but reported as
// succeeded, so a store at capacity does not fail the whole run.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeSoftFailure
	OutcomeHardFailure
)

// Succeeded reports whether the outcome counts as success for run
// accounting.
func (o Outcome) Succeeded() bool {
	return o != OutcomeHardFailure
}

// Recorder receives the result of every processed action. Implementations
// must not influence processing; a nil Recorder disables recording.
type Recorder interface {
	Record(ctx context.Context, action Action, succeeded bool)
}

// Engine drives per-action processing against one remote collection.
type Engine struct {
	collection chroma.Collection
	resolver   *Resolver
	recorder   Recorder
	logger     *slog.Logger
}

// NewEngine creates an ingestion engine. recorder may be nil.
func NewEngine(collection chroma.Collection, resolver *Resolver, recorder Recorder, logger *slog.Logger) *Engine {
	return &Engine{
		collection: collection,
		resolver:   resolver,
		recorder:   recorder,
		logger:     logger,
	}
}

// Process handles one action and reports whether it succeeded. Failures
// are isolated to the action: Process never returns an error and never
// panics the batch.
func (e *Engine) Process(ctx context.Context, action Action) bool {
	ok := e.process(ctx, action)
	if e.recorder != nil {
		e.recorder.Record(ctx, action, ok)
	}
	return ok
}

func (e *Engine) process(ctx context.Context, action Action) bool {
	if action.ID == "" {
		e.logger.Error("action missing document ID")
		return false
	}

	switch action.Kind {
	case ActionUpsert:
		return e.upsert(ctx, action)
	case ActionDelete:
		return e.delete(ctx, action.ID)
	default:
		e.logger.Error("unknown action type", "action", action.Kind, "id", action.ID)
		return false
	}
}

// upsert resolves placeholders and persists the document, chunking it
// when the encoded body exceeds the single-document limit.
func (e *Engine) upsert(ctx context.Context, action Action) bool {
	text := e.resolver.Resolve(ctx, action.Text, action.Metadata, action.Path())

	if len(text) > MaxDocumentBytes {
		return e.upsertChunked(ctx, action.ID, text, action.Metadata)
	}

	docID := action.ID
	if len(docID) > MaxIDBytes {
		docID = NormalizeID(docID)
		e.logger.Warn("truncated document ID",
			"original_bytes", len(action.ID), "truncated_bytes", len(docID), "id", docID)
	}

	outcome := e.upsertOne(ctx, docID, text, action.Metadata)
	if outcome == OutcomeSuccess {
		e.logger.Debug("upserted document", "id", docID)
	}
	return outcome.Succeeded()
}

// upsertChunked persists an oversized document as a sequence of chunks.
// Chunks are submitted sequentially and independently; the document is
// reported successful when at least half of its chunks persisted.
func (e *Engine) upsertChunked(ctx context.Context, docID, text string, metadata map[string]any) bool {
	chunks := ChunkDocument(docID, text, metadata, ChunkSizeBytes)

	succeeded := 0
	for _, chunk := range chunks {
		if e.upsertOne(ctx, chunk.ID, chunk.Text, chunk.Metadata).Succeeded() {
			succeeded++
		} else {
			e.logger.Error("failed to upload chunk", "chunk_id", chunk.ID)
		}
	}

	if succeeded*2 >= len(chunks) {
		e.logger.Info("chunked and uploaded document",
			"id", docID, "chunks", len(chunks), "succeeded", succeeded)
		return true
	}
	e.logger.Error("failed to upload chunked document",
		"id", docID, "chunks", len(chunks), "succeeded", succeeded)
	return false
}

// upsertOne performs a single upsert call and classifies the result.
func (e *Engine) upsertOne(ctx context.Context, docID, text string, metadata map[string]any) Outcome {
	err := e.collection.Upsert(ctx,
		[]string{docID},
		[]string{text},
		[]map[string]any{CleanMetadata(metadata)},
	)
	if err == nil {
		return OutcomeSuccess
	}
	if chroma.IsQuotaExceeded(err) {
		e.logger.Warn("quota exceeded for document", "id", docID, "error", err)
		return OutcomeSoftFailure
	}
	e.logger.Error("failed to upsert document", "id", docID, "error", err)
	return OutcomeHardFailure
}

// delete removes a document. Deleting an id absent from the store is not
// an error; the outcome is already what the caller asked for.
func (e *Engine) delete(ctx context.Context, docID string) bool {
	result, err := e.collection.Get(ctx, []string{docID})
	if err == nil && len(result.IDs) == 0 {
		e.logger.Warn("document not found for deletion", "id", docID)
		return true
	}
	// If the existence check itself failed, attempt the delete anyway.

	if err := e.collection.Delete(ctx, []string{docID}); err != nil {
		e.logger.Error("failed to delete document", "id", docID, "error", err)
		return false
	}
	e.logger.Debug("deleted document", "id", docID)
	return true
}

// CleanMetadata converts metadata to the closed scalar set the store
// accepts: strings, numbers, and booleans pass through, nulls are
// dropped, and anything else is stringified.
func CleanMetadata(metadata map[string]any) map[string]any {
	clean := make(map[string]any, len(metadata))
	for key, value := range metadata {
		switch value.(type) {
		case nil:
			continue
		case string, bool,
			int, int32, int64, float32, float64:
			clean[key] = value
		default:
			clean[key] = fmt.Sprintf("%v", value)
		}
	}
	return clean
}
