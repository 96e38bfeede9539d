// Package progress emits the line-delimited JSON progress events consumed
// by the vault-sync plugin on the other side of the pipe.
package progress

import (
	"encoding/json"
	"fmt"
	"io"
)

// Event is one progress line. Processed and Total are omitted when the
// total action count is not yet known.
type Event struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Processed *int   `json:"processed,omitempty"`
	Total     *int   `json:"total,omitempty"`
}

// Reporter writes progress events to an output stream, one JSON object
// per line.
type Reporter struct {
	w io.Writer
}

// NewReporter creates a reporter writing to w.
func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

// Emit writes a progress event with a message only.
func (r *Reporter) Emit(message string) {
	r.write(Event{Type: "progress", Message: message})
}

// EmitCount writes a progress event with processed/total counters.
func (r *Reporter) EmitCount(message string, processed, total int) {
	r.write(Event{
		Type:      "progress",
		Message:   message,
		Processed: &processed,
		Total:     &total,
	})
}

func (r *Reporter) write(event Event) {
	raw, err := json.Marshal(event)
	if err != nil {
		return
	}
	fmt.Fprintln(r.w, string(raw))
}
