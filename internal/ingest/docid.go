package ingest

import "strings"

// MaxIDBytes is the ceiling for identifiers persisted to the store,
// a conservative margin below the store's 128-byte limit.
const MaxIDBytes = 120

var pathSeparators = strings.NewReplacer("/", "_", "\\", "_", " ", "_")

// DocIDFromPath derives the stable document key for a file path. It must
// match byte-for-byte the scheme the vault-sync plugin uses when it
// assigns action ids, since verification recomputes it independently.
func DocIDFromPath(path string) string {
	return pathSeparators.Replace(path)
}

// NormalizeID truncates an identifier to MaxIDBytes while keeping the
// most identifying parts of the original key, the start and the end,
// joined by an ellipsis. Ids already within the bound are returned
// unchanged. Truncation never splits a multi-byte UTF-8 code point.
//
// Two distinct ids can normalize to the same truncated id; that collision
// risk is accepted here rather than resolved.
func NormalizeID(id string) string {
	if len(id) <= MaxIDBytes {
		return id
	}

	runes := []rune(id)

	start := MaxIDBytes / 3
	end := MaxIDBytes / 3
	if start > len(runes) {
		start = len(runes)
	}
	if end > len(runes) {
		end = len(runes)
	}

	// Shrink each side until its byte length fits within its character
	// budget, stepping whole runes so slices stay valid UTF-8.
	for start > 0 && len(string(runes[:start])) > start {
		start--
	}
	for end > 0 && len(string(runes[len(runes)-end:])) > end {
		end--
	}

	truncated := string(runes[:start]) + "..." + string(runes[len(runes)-end:])
	for len(truncated) > MaxIDBytes && start > 1 {
		start--
		truncated = string(runes[:start]) + "..." + string(runes[len(runes)-end:])
	}

	return truncated
}
