package model

import "strconv"

// FieldOrAttributeKey collapses a (fieldId, attribute) pair to a single map
// key. Exactly one of the two is expected to be set; field ids win when
// both are present, matching the fieldId-first coalescing used throughout
// the index pipeline.
func FieldOrAttributeKey(fieldID *int64, attribute *string) string {
	if fieldID != nil {
		return "f:" + strconv.FormatInt(*fieldID, 10)
	}
	if attribute != nil {
		return "a:" + *attribute
	}
	return ""
}

// IndexEntry is the per-field/per-attribute indexed-content record for one
// element in one site. The id is a client-generated UUID, stable across
// re-index passes as long as the same field/attribute still has content.
type IndexEntry struct {
	ID         string
	ElementID  int64
	SiteID     int64
	FieldID    *int64
	Attribute  *string
	NgramCount int
}

// TargetKey returns the field-or-attribute key this entry indexes.
func (e *IndexEntry) TargetKey() string {
	return FieldOrAttributeKey(e.FieldID, e.Attribute)
}

// Posting is a single (index entry, position, gram) record forming the
// inverted index. Offset is the 0-based position of the gram within the
// entry's normalized text.
type Posting struct {
	IndexID string
	Offset  int
	Key     string
}

// QueueValue is a pending raw text value awaiting normalization and
// indexing, already deduplicated to the latest queued value per
// field/attribute group.
type QueueValue struct {
	FieldID   *int64  `json:"field_id,omitempty"`
	Attribute *string `json:"attribute,omitempty"`
	Value     string  `json:"value"`
}

// TargetKey returns the field-or-attribute key this value belongs to.
func (v *QueueValue) TargetKey() string {
	return FieldOrAttributeKey(v.FieldID, v.Attribute)
}
