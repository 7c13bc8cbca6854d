package model

import "time"

// Search order values configurable per group. "default" orders each element
// type separately by its configured priority, then by each candidate's sort
// hints; "default nogroup" sorts all candidates together by hints alone.
const (
	SearchOrderDefault        = "default"
	SearchOrderDefaultNoGroup = "default nogroup"
	SearchOrderIDAsc          = "id asc"
	SearchOrderIDDesc         = "id desc"
	SearchOrderTitleAsc       = "title asc"
	SearchOrderTitleDesc      = "title desc"
	SearchOrderDateAsc        = "date asc"
	SearchOrderDateDesc       = "date desc"
)

// SearchGroup is a named, site-scoped configuration selecting which element
// types/subtypes and filters participate in one searchable context.
type SearchGroup struct {
	ID          int64     `json:"id"`
	SiteID      int64     `json:"site_id"`
	Handle      string    `json:"handle"`
	Name        string    `json:"name"`
	Template    string    `json:"template"`
	PageSize    int       `json:"page_size"`
	SearchOrder string    `json:"search_order"`
	SortOrder   int       `json:"sort_order"`
	DateCreated time.Time `json:"date_created"`
	DateUpdated time.Time `json:"date_updated"`
	UID         string    `json:"uid"`
}

// SearchGroupElement selects one element type (optionally narrowed to a
// subtype) as searchable within a group.
type SearchGroupElement struct {
	ID            int64     `json:"id"`
	GroupID       int64     `json:"group_id"`
	ElementType   string    `json:"element_type"`
	ElementTypeID *int64    `json:"element_type_id,omitempty"` // subtype, nil for all
	SortOrder     int       `json:"sort_order"`
	DateCreated   time.Time `json:"date_created"`
	DateUpdated   time.Time `json:"date_updated"`
	UID           string    `json:"uid"`
}

// SearchGroupFilter is a user-facing, named, searchable dimension bound to
// either a content field or a built-in element attribute. Exactly one of
// FieldID and Attribute is set.
type SearchGroupFilter struct {
	ID          int64     `json:"id"`
	GroupID     int64     `json:"group_id"`
	FieldID     *int64    `json:"field_id,omitempty"`
	Attribute   *string   `json:"attribute,omitempty"`
	Handle      string    `json:"handle"`
	Name        string    `json:"name"`
	SortOrder   int       `json:"sort_order"`
	DateCreated time.Time `json:"date_created"`
	DateUpdated time.Time `json:"date_updated"`
	UID         string    `json:"uid"`
}

// TargetKey returns the field-or-attribute key this filter is bound to.
func (f *SearchGroupFilter) TargetKey() string {
	return FieldOrAttributeKey(f.FieldID, f.Attribute)
}
