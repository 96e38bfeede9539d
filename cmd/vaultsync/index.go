package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"vaultsync/internal/chroma"
	"vaultsync/internal/config"
	"vaultsync/internal/contextutil"
	"vaultsync/internal/extract"
	"vaultsync/internal/ingest"
	"vaultsync/internal/journal"
	"vaultsync/internal/progress"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Ingest a document action stream into the Chroma collection",
	Long: `Reads a config line followed by one action per line (JSONL) on stdin,
applies each upsert or delete against the configured Chroma collection,
and emits progress events on stdout. Exits non-zero if any action failed.`,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = contextutil.WithLogger(ctx, logger)

	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := readLine(reader)
	if err != nil {
		logger.Error("no input provided")
		return fmt.Errorf("no input provided")
	}

	frame, err := config.ParseFrame([]byte(line))
	if err != nil {
		logger.Error("invalid config line", "error", err)
		return err
	}

	reporter := progress.NewReporter(cmd.OutOrStdout())
	reporter.Emit("Connecting to Chroma Cloud...")

	client := chroma.NewHTTPClient(frame.Config)
	collection, err := connect(ctx, client, frame.Config.Collection, logger)
	if err != nil {
		logger.Error("failed to connect to Chroma Cloud", "error", err)
		return err
	}

	extractor := extract.NewToolExtractor(logger)
	resolver := ingest.NewResolver(extractor, frame.VaultRoot, logger)

	var recorder ingest.Recorder
	journalRec, closeJournal := openJournal(env.JournalPath, frame.Config.Collection, logger)
	defer closeJournal()
	if journalRec != nil {
		recorder = journalRec
	}

	engine := ingest.NewEngine(collection, resolver, recorder, logger)

	actions, malformed := ingest.ReadActions(reader, logger)

	stats, runErr := engine.Run(ctx, actions, malformed, reporter)

	if journalRec != nil {
		// Finish with a fresh context: ctx may already be cancelled.
		journalRec.Finish(cmd.Context(), stats.Processed, stats.Failed)
	}

	if runErr != nil {
		logger.Info("interrupted", "error", runErr)
		return runErr
	}
	if stats.Failed > 0 {
		return fmt.Errorf("%d of %d actions failed", stats.Failed, stats.Total+malformed)
	}
	return nil
}

// connect verifies the connection by listing collections, then returns the
// target collection, creating it if it does not exist.
func connect(ctx context.Context, client chroma.Client, name string, logger *slog.Logger) (chroma.Collection, error) {
	collections, err := client.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	logger.Info("connected to Chroma Cloud", "collections", len(collections))

	collection, err := client.GetCollection(ctx, name)
	if err == nil {
		logger.Info("using existing collection", "collection", name)
		return collection, nil
	}

	collection, err = client.CreateCollection(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}
	logger.Info("created new collection", "collection", name)
	return collection, nil
}

// readLine reads one line, returning an error on empty input.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		if err != nil {
			return "", io.EOF
		}
		return "", fmt.Errorf("empty line")
	}
	return line, nil
}

// openJournal opens the optional ingest journal. Any failure disables the
// journal with a warning; it never blocks the run.
func openJournal(path, collection string, logger *slog.Logger) (*journal.Recorder, func()) {
	noop := func() {}
	if path == "" {
		return nil, noop
	}

	db, err := journal.New(path)
	if err != nil {
		logger.Warn("ingest journal disabled", "path", path, "error", err)
		return nil, noop
	}
	if err := journal.Migrate(db); err != nil {
		logger.Warn("ingest journal disabled", "path", path, "error", err)
		_ = db.Close()
		return nil, noop
	}

	recorder, err := journal.NewRecorder(db, collection, logger)
	if err != nil {
		logger.Warn("ingest journal disabled", "path", path, "error", err)
		_ = db.Close()
		return nil, noop
	}

	logger.Info("ingest journal enabled", "path", path, "run_id", recorder.RunID())
	return recorder, func() { _ = db.Close() }
}
