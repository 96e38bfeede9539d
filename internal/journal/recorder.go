package journal

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"vaultsync/internal/ingest"
)

// Recorder journals the actions of one ingest run. It implements
// ingest.Recorder.
type Recorder struct {
	db     *sql.DB
	runID  string
	logger *slog.Logger
}

// NewRecorder starts a new journalled run against the given collection.
func NewRecorder(db *sql.DB, collection string, logger *slog.Logger) (*Recorder, error) {
	runID := uuid.New().String()
	_, err := db.Exec("INSERT INTO runs (id, collection) VALUES (?, ?)", runID, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to insert run: %w", err)
	}
	return &Recorder{db: db, runID: runID, logger: logger}, nil
}

// RunID returns the identifier of the journalled run.
func (r *Recorder) RunID() string {
	return r.runID
}

// Record journals one action outcome. Errors are logged, not returned:
// the journal must never influence processing.
func (r *Recorder) Record(ctx context.Context, action ingest.Action, succeeded bool) {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO actions (run_id, kind, doc_id, succeeded) VALUES (?, ?, ?, ?)",
		r.runID, action.Kind, action.ID, succeeded,
	)
	if err != nil {
		r.logger.Warn("failed to journal action", "id", action.ID, "error", err)
	}
}

// Finish stamps the run row with its final counters.
func (r *Recorder) Finish(ctx context.Context, processed, failed int) {
	_, err := r.db.ExecContext(ctx,
		"UPDATE runs SET finished_at = CURRENT_TIMESTAMP, processed = ?, failed = ? WHERE id = ?",
		processed, failed, r.runID,
	)
	if err != nil {
		r.logger.Warn("failed to finalize journal run", "run_id", r.runID, "error", err)
	}
}
