package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"vaultsync/internal/chroma"
	"vaultsync/internal/config"
	"vaultsync/internal/contextutil"
	"vaultsync/internal/progress"
	"vaultsync/internal/verify"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Audit local file state against the Chroma collection",
	Long: `Reads a config line and a file-state line (JSONL) on stdin, compares
the local snapshot with the collection's document listing, and emits a
terminal "complete" JSON object on stdout. Exits non-zero unless the two
sides are fully consistent.`,
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

// fileState is the second stdin line of a verify run.
type fileState struct {
	Files map[string]verify.FileInfo `json:"files"`
}

func runVerify(cmd *cobra.Command, args []string) error {
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = contextutil.WithLogger(ctx, logger)

	reader := bufio.NewReader(cmd.InOrStdin())

	configLine, err := readLine(reader)
	if err != nil {
		logger.Error("expected at least config and file state data")
		return fmt.Errorf("expected at least config and file state data")
	}
	frame, err := config.ParseFrame([]byte(configLine))
	if err != nil {
		logger.Error("invalid config line", "error", err)
		return err
	}

	stateLine, err := readLine(reader)
	if err != nil {
		logger.Error("expected at least config and file state data")
		return fmt.Errorf("expected at least config and file state data")
	}
	var state fileState
	if err := json.Unmarshal([]byte(stateLine), &state); err != nil {
		logger.Error("invalid file state JSON", "error", err)
		return fmt.Errorf("invalid file state JSON: %w", err)
	}
	if state.Files == nil {
		logger.Error("second line must contain file state")
		return fmt.Errorf("second line must contain file state")
	}

	reporter := progress.NewReporter(cmd.OutOrStdout())
	reporter.Emit("Connecting to Chroma Cloud...")

	client := chroma.NewHTTPClient(frame.Config)
	collections, err := client.ListCollections(ctx)
	if err != nil {
		logger.Error("failed to connect to Chroma Cloud", "error", err)
		return err
	}
	logger.Info("connected to Chroma Cloud", "collections", len(collections))

	// Verification never creates the collection; a missing collection is
	// a setup failure, not an empty remote side.
	collection, err := client.GetCollection(ctx, frame.Config.Collection)
	if err != nil {
		logger.Error("collection not found", "collection", frame.Config.Collection, "error", err)
		return err
	}
	logger.Info("using collection", "collection", frame.Config.Collection)

	reporter.Emit("Starting verification...")
	verifier := verify.New(collection, reporter, logger)
	result := verifier.Verify(ctx, state.Files)

	if err := json.NewEncoder(cmd.OutOrStdout()).Encode(result.Event()); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}

	if !result.Verified {
		return fmt.Errorf("verification failed: %d missing, %d extra",
			len(result.MissingInChroma), len(result.ExtraInChroma))
	}
	return nil
}
