package model

import "time"

// SearchRecord logs one executed search for usage statistics. Filters holds
// the applied filter values as serialized JSON. Recording is best-effort
// and never affects the search result.
type SearchRecord struct {
	ID        int64     `json:"id"`
	SubjectID string    `json:"subject_id"` // caller/session identifier, 32 chars
	Time      time.Time `json:"time"`
	Term      string    `json:"term,omitempty"`
	Filters   string    `json:"filters,omitempty"`
}
