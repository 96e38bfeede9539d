package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"vaultsync/internal/chroma"
	"vaultsync/internal/config"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Test the connection to the Chroma collection",
	Long: `Reads a bare config JSON object on stdin, connects, and gets or creates
the configured collection. Prints a single JSON result object on stdout.`,
	RunE: runPing,
}

func init() {
	rootCmd.AddCommand(pingCmd)
}

// pingResult is the single JSON object printed by ping.
type pingResult struct {
	Success          bool   `json:"success"`
	CollectionsCount *int   `json:"collections_count,omitempty"`
	Collection       string `json:"collection,omitempty"`
	Error            string `json:"error,omitempty"`
}

func runPing(cmd *cobra.Command, args []string) error {
	out := json.NewEncoder(cmd.OutOrStdout())
	fail := func(msg string) error {
		_ = out.Encode(pingResult{Success: false, Error: msg})
		return errors.New(msg)
	}

	raw, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fail(fmt.Sprintf("failed to read config: %v", err))
	}
	if strings.TrimSpace(string(raw)) == "" {
		return fail("No config provided")
	}

	var cfg config.Chroma
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return fail(fmt.Sprintf("Invalid JSON: %v", err))
	}
	if err := cfg.Validate(); err != nil {
		return fail(err.Error())
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := chroma.NewHTTPClient(&cfg)
	collections, err := client.ListCollections(ctx)
	if err != nil {
		return fail(err.Error())
	}

	collection, err := client.GetOrCreateCollection(ctx, cfg.Collection)
	if err != nil {
		return fail(err.Error())
	}

	count := len(collections)
	_ = out.Encode(pingResult{
		Success:          true,
		CollectionsCount: &count,
		Collection:       collection.Name(),
	})
	return nil
}
