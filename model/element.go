package model

import "time"

// ElementCandidate is one row produced by an element-type query extension:
// a matching element id, the subtype it belongs to, and optional sort hints
// used by the static sort orders. Non-trashed/enabled/published restriction
// is the responsibility of the producing handler.
type ElementCandidate struct {
	ID        int64
	Type      string
	SubtypeID *int64
	Priority  int // configured sort order of the producing SearchGroupElement

	// Sort hints, nil/empty when the type has no such notion.
	Title    string
	Position *float64   // structural position
	PostDate *time.Time // content date
}

// Element is a materialized element as returned by an element-type
// collaborator for display.
type Element struct {
	ID      int64    `json:"id"`
	Type    string   `json:"type"`
	Title   string   `json:"title"`
	EditURL string   `json:"edit_url,omitempty"`
	Score   *float64 `json:"score,omitempty"`
}
