package ingest

import (
	"bufio"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
)

// Action kinds accepted on the input stream.
const (
	ActionUpsert = "upsert"
	ActionDelete = "delete"
)

// Action is one requested mutation against the remote store, decoded from
// a single JSONL input line.
type Action struct {
	Kind     string         `json:"action"`
	ID       string         `json:"id"`
	Text     string         `json:"text,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Path returns the source file path carried in the action metadata, or ""
// when absent.
func (a *Action) Path() string {
	return metaString(a.Metadata, "path")
}

// NeedsExtraction reports whether the action carries a content-extraction
// flag (PDF extraction or image OCR).
func (a *Action) NeedsExtraction() bool {
	return metaBool(a.Metadata, "requiresExtraction") || metaBool(a.Metadata, "requiresOCR")
}

// ReadActions reads the whole action stream before processing begins so
// that progress totals are exact. Lines that fail to decode are counted
// as failures but do not abort the read.
func ReadActions(r io.Reader, logger *slog.Logger) (actions []Action, malformed int) {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			var action Action
			if jsonErr := json.Unmarshal([]byte(trimmed), &action); jsonErr != nil {
				logger.Error("invalid action JSON", "error", jsonErr)
				malformed++
			} else {
				actions = append(actions, action)
			}
		}
		if err != nil {
			break
		}
	}
	return actions, malformed
}

func metaString(meta map[string]any, key string) string {
	if v, ok := meta[key].(string); ok {
		return v
	}
	return ""
}

func metaBool(meta map[string]any, key string) bool {
	if v, ok := meta[key].(bool); ok {
		return v
	}
	return false
}
