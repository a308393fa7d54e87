// Package alfred emits script filter feedback for launcher hosts.
//
// The host invokes the binary with a query string and renders the JSON
// document written to stdout as a selectable list. The format follows the
// Alfred script filter contract: a single "items" array where each entry has
// a title, a subtitle, a validity flag, and an action argument.
package alfred

import (
	"encoding/json"
	"io"
)

// Icon references an icon file shipped with the workflow bundle.
type Icon struct {
	Path string `json:"path"`
}

// Item is a single selectable row in the launcher list.
//
// Valid controls whether the host allows actioning the row; informational
// rows (errors, usage hints, "keep typing") are emitted with Valid=false.
// Arg is the payload handed back to the workflow when the row is actioned.
type Item struct {
	Title        string `json:"title"`
	Subtitle     string `json:"subtitle,omitempty"`
	Arg          string `json:"arg,omitempty"`
	Valid        bool   `json:"valid"`
	Autocomplete string `json:"autocomplete,omitempty"`
	Icon         *Icon  `json:"icon,omitempty"`
}

// Feedback collects items and serializes them as a script filter document.
type Feedback struct {
	Items []Item `json:"items"`
}

// NewFeedback returns an empty feedback document.
func NewFeedback() *Feedback {
	return &Feedback{Items: []Item{}}
}

// Add appends an item to the feedback list, preserving insertion order.
func (f *Feedback) Add(items ...Item) {
	f.Items = append(f.Items, items...)
}

// Write serializes the feedback document to w.
// The items array is always present, even when empty.
func (f *Feedback) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(f)
}
