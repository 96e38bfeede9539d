package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"vaultsync/internal/config"
)

// env holds ambient process configuration, loaded before any command runs.
var env *config.Env

var rootCmd = &cobra.Command{
	Use:   "vaultsync",
	Short: "Chroma Cloud indexer and verifier for Obsidian vault sync",
	Long: `vaultsync reconciles a stream of document mutations against a Chroma
Cloud collection and audits local-vs-remote consistency.

It is driven by the vault-sync plugin over stdin/stdout: configuration and
actions arrive as JSONL on stdin, progress events leave as JSONL on stdout.
Logs go to stderr so they never interfere with the JSON protocol.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		env = config.LoadEnv()

		// stdout carries the JSON protocol; all logging goes to stderr.
		opts := &slog.HandlerOptions{Level: env.LogLevel}
		var handler slog.Handler
		if env.LogFormat == "json" {
			handler = slog.NewJSONHandler(os.Stderr, opts)
		} else {
			handler = slog.NewTextHandler(os.Stderr, opts)
		}
		slog.SetDefault(slog.New(handler))
	},
}
