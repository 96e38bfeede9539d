// Package verify audits local-vs-remote consistency: it diffs a local
// file-state snapshot against the remote collection's full document
// listing without mutating either side, so audits are repeatable.
package verify

import (
	"context"
	"log/slog"
	"sort"

	"vaultsync/internal/chroma"
	"vaultsync/internal/ingest"
	"vaultsync/internal/progress"
)

// FileInfo is one locally tracked file as reported by the vault-sync
// plugin.
type FileInfo struct {
	Path  string  `json:"path"`
	Hash  string  `json:"hash"`
	MTime float64 `json:"mtime"`
	Size  int64   `json:"size"`
}

// HashMismatch records a file whose local content hash differs from the
// remote copy.
type HashMismatch struct {
	Path     string `json:"path"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

// Result is the outcome of one reconciliation pass.
type Result struct {
	Verified             bool
	MissingInChroma      []string
	ExtraInChroma        []string
	HashMismatches       []HashMismatch
	TotalLocalFiles      int
	TotalChromaDocuments int
	CollectionCount      int
}

// Verifier computes the three-way difference between local files and the
// remote document set.
type Verifier struct {
	collection chroma.Collection
	reporter   *progress.Reporter
	logger     *slog.Logger
}

// New creates a verifier for one collection.
func New(collection chroma.Collection, reporter *progress.Reporter, logger *slog.Logger) *Verifier {
	return &Verifier{
		collection: collection,
		reporter:   reporter,
		logger:     logger,
	}
}

// Verify diffs localFiles against the remote listing. Document ids for
// local files are derived with the same scheme the ingestion side uses,
// so the two sets are directly comparable. When the remote listing cannot
// be fetched the result is unverified with empty difference lists.
func (v *Verifier) Verify(ctx context.Context, localFiles map[string]FileInfo) *Result {
	result := &Result{
		MissingInChroma: []string{},
		ExtraInChroma:   []string{},
		HashMismatches:  []HashMismatch{},
		TotalLocalFiles: len(localFiles),
	}

	v.reporter.Emit("Fetching Chroma collection data...")

	listing, err := v.collection.Get(ctx, nil)
	if err != nil {
		v.logger.Error("failed to retrieve documents from Chroma", "error", err)
		return result
	}
	v.logger.Info("retrieved documents from Chroma collection", "count", len(listing.IDs))

	v.reporter.Emit("Analyzing differences...")

	localIDs := make(map[string]string, len(localFiles)) // path -> derived id
	idToPath := make(map[string]string, len(localFiles)) // derived id -> path
	for path := range localFiles {
		id := ingest.DocIDFromPath(path)
		localIDs[path] = id
		idToPath[id] = path
	}

	remoteIDs := make(map[string]bool, len(listing.IDs))
	remoteMeta := make(map[string]map[string]any, len(listing.IDs))
	for i, id := range listing.IDs {
		remoteIDs[id] = true
		if i < len(listing.Metadatas) {
			remoteMeta[id] = listing.Metadatas[i]
		}
	}
	result.TotalChromaDocuments = len(remoteIDs)

	// Local files whose derived id is absent remotely.
	for path, id := range localIDs {
		if !remoteIDs[id] {
			result.MissingInChroma = append(result.MissingInChroma, path)
		}
	}

	// Remote ids with no corresponding local file; recover a readable
	// label from the stored path metadata when present.
	for id := range remoteIDs {
		if _, ok := idToPath[id]; ok {
			continue
		}
		label := id
		if meta := remoteMeta[id]; meta != nil {
			if path, ok := meta["path"].(string); ok && path != "" {
				label = path
			}
		}
		result.ExtraInChroma = append(result.ExtraInChroma, label)
	}

	// Deterministic output order regardless of map iteration.
	sort.Strings(result.MissingInChroma)
	sort.Strings(result.ExtraInChroma)

	// Content-hash comparison is reserved: the store does not retain
	// local file hashes yet, so HashMismatches stays empty until hashes
	// are persisted in document metadata.

	result.Verified = len(result.MissingInChroma) == 0 &&
		len(result.ExtraInChroma) == 0 &&
		len(result.HashMismatches) == 0

	if count, err := v.collection.Count(ctx); err != nil {
		v.logger.Warn("could not get collection count", "error", err)
	} else {
		result.CollectionCount = count
	}

	return result
}

// CompleteEvent is the terminal JSON object written after verification.
type CompleteEvent struct {
	Type            string         `json:"type"`
	Verified        bool           `json:"verified"`
	MissingInChroma []string       `json:"missing_in_chroma"`
	ExtraInChroma   []string       `json:"extra_in_chroma"`
	HashMismatches  []HashMismatch `json:"hash_mismatches"`
	Stats           CompleteStats  `json:"stats"`
}

// CompleteStats is the summary block of the terminal event.
type CompleteStats struct {
	TotalLocalFiles      int `json:"total_local_files"`
	TotalChromaDocuments int `json:"total_chroma_documents"`
	CollectionCount      int `json:"collection_count"`
	MissingCount         int `json:"missing_count"`
	ExtraCount           int `json:"extra_count"`
	MismatchCount        int `json:"mismatch_count"`
}

// Event converts the result into its wire representation.
func (r *Result) Event() CompleteEvent {
	return CompleteEvent{
		Type:            "complete",
		Verified:        r.Verified,
		MissingInChroma: r.MissingInChroma,
		ExtraInChroma:   r.ExtraInChroma,
		HashMismatches:  r.HashMismatches,
		Stats: CompleteStats{
			TotalLocalFiles:      r.TotalLocalFiles,
			TotalChromaDocuments: r.TotalChromaDocuments,
			CollectionCount:      r.CollectionCount,
			MissingCount:         len(r.MissingInChroma),
			ExtraCount:           len(r.ExtraInChroma),
			MismatchCount:        len(r.HashMismatches),
		},
	}
}
