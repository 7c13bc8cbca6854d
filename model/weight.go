package model

import "time"

// CustomFieldWeight is a multiplier applied to a specific field/attribute's
// contribution to relevance score, optionally scoped to an element type and
// subtype. Absent entries default to a multiplier of 1.
type CustomFieldWeight struct {
	ID            int64     `json:"id"`
	FieldID       *int64    `json:"field_id,omitempty"`
	Attribute     *string   `json:"attribute,omitempty"`
	ElementType   string    `json:"element_type"`
	ElementTypeID *int64    `json:"element_type_id,omitempty"`
	Multiplier    float64   `json:"multiplier"`
	DateCreated   time.Time `json:"date_created"`
	DateUpdated   time.Time `json:"date_updated"`
	UID           string    `json:"uid"`
}

// TargetKey returns the field-or-attribute key this weight applies to.
func (w *CustomFieldWeight) TargetKey() string {
	return FieldOrAttributeKey(w.FieldID, w.Attribute)
}
