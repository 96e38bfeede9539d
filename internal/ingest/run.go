package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"vaultsync/internal/progress"
)

// RunStats summarizes an ingestion run.
type RunStats struct {
	Processed int
	Failed    int
	Total     int
}

// Run processes actions strictly in input order, emitting progress events
// before and after each action. failedSoFar carries failures already
// counted while reading the stream (malformed lines). The returned error
// is non-nil only when ctx was cancelled mid-run.
func (e *Engine) Run(ctx context.Context, actions []Action, failedSoFar int, reporter *progress.Reporter) (RunStats, error) {
	stats := RunStats{Total: len(actions), Failed: failedSoFar}

	reporter.EmitCount(fmt.Sprintf("Starting to process %d actions", stats.Total), 0, stats.Total)

	for _, action := range actions {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		if action.NeedsExtraction() {
			path := action.Path()
			reporter.EmitCount(
				fmt.Sprintf("Extracting content from %s: %s", extractionKind(path), filepath.Base(path)),
				stats.Processed, stats.Total)
		}

		if e.Process(ctx, action) {
			stats.Processed++
		} else {
			stats.Failed++
		}

		reporter.EmitCount(
			fmt.Sprintf("Processed %d of %d documents", stats.Processed, stats.Total),
			stats.Processed, stats.Total)
	}

	reporter.EmitCount(
		fmt.Sprintf("Completed: %d processed, %d failed", stats.Processed, stats.Failed),
		stats.Processed, stats.Total)

	if count, err := e.collection.Count(ctx); err != nil {
		e.logger.Warn("could not get collection count", "error", err)
	} else {
		e.logger.Info("collection document count", "count", count)
	}

	return stats, nil
}

func extractionKind(path string) string {
	switch {
	case strings.HasSuffix(strings.ToLower(path), ".pdf"):
		return "PDF"
	case IsImageFile(path):
		return "image"
	default:
		return "file"
	}
}
