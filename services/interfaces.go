package services

import (
	"context"

	"github.com/charliedev/reliquary/model"
)

// SearchOption is one entry of a search request's option set: a value bound
// to a specific filter, or a general search term when Filter is nil.
type SearchOption struct {
	Filter *int64      `json:"filter,omitempty"`
	Value  interface{} `json:"value"`
}

// SearchResult is the fully-formed paginated result envelope.
type SearchResult struct {
	TotalElements int64            `json:"total_elements"`
	TotalPages    int              `json:"total_pages"`
	FirstElement  int64            `json:"first_element"` // 1-based ordinal of the first element on the page
	LastElement   int64            `json:"last_element"`  // 1-based ordinal of the last element on the page
	Elements      []*model.Element `json:"elements"`
	CurrentPage   int              `json:"current_page"`
	PreviousPage  *int             `json:"previous_page"`
	NextPage      *int             `json:"next_page"`
	PageSize      int              `json:"page_size"`
	QueryTime     float64          `json:"query_time"` // milliseconds
	QueryID       string           `json:"query_id"`
}

// ScoreExplanation describes one index entry's contribution to an element's
// aggregate score.
type ScoreExplanation struct {
	ElementID  int64    `json:"element_id"`
	FieldID    *int64   `json:"field_id,omitempty"`
	Attribute  *string  `json:"attribute,omitempty"`
	NgramCount int      `json:"ngram_count"`
	Runs       int      `json:"runs"`
	RunScore   float64  `json:"run_score"`
	Weight     float64  `json:"weight"`     // run score after the length penalty
	Multiplier float64  `json:"multiplier"` // custom field weight applied
	FilterID   *int64   `json:"filter_id,omitempty"`
	Grams      []string `json:"grams"` // distinct matched grams
}

// OptionType classifies the value space of a filter's options.
type OptionType string

const (
	OptionTypeString       OptionType = "string"
	OptionTypeNumber       OptionType = "number"
	OptionTypeDate         OptionType = "date"
	OptionTypeSingleChoice OptionType = "single"
	OptionTypeMultiChoice  OptionType = "multiple"
	OptionTypeComposite    OptionType = "composite"
)

// OptionPair is one selectable value/label pair for a choice-type filter.
type OptionPair struct {
	Value interface{} `json:"value"`
	Label string      `json:"label"`
}

// OptionSet describes the options available for a filter. For choice types
// Options holds the available pairs; Partial is true when the listing was
// truncated at the configured page size.
type OptionSet struct {
	Type    OptionType   `json:"type"`
	Options []OptionPair `json:"options,omitempty"`
	Total   int          `json:"total"`
	Partial bool         `json:"partial"`
}

// FilterQuery collects the structural predicates a filter handler applies
// to the candidate set, and records whether the filter's value should be
// forwarded to the text searching system instead of (or in addition to)
// a structural predicate.
type FilterQuery struct {
	predicates []func(*model.ElementCandidate) bool
	textSearch bool
}

// AddPredicate narrows the candidate set; candidates failing any predicate
// are excluded (predicates are intersected).
func (q *FilterQuery) AddPredicate(pred func(*model.ElementCandidate) bool) {
	q.predicates = append(q.predicates, pred)
}

// RequestTextSearch marks the filter's value to be treated as search text.
func (q *FilterQuery) RequestTextSearch() {
	q.textSearch = true
}

// TextSearchRequested reports whether a handler redirected the value to the
// text searching system.
func (q *FilterQuery) TextSearchRequested() bool {
	return q.textSearch
}

// Match reports whether a candidate satisfies every applied predicate.
func (q *FilterQuery) Match(c *model.ElementCandidate) bool {
	for _, pred := range q.predicates {
		if !pred(c) {
			return false
		}
	}
	return true
}

// ElementTypeHandler is the capability interface an element type implements
// to participate in search. One implementation must be registered for every
// element type referenced by any SearchGroupElement.
type ElementTypeHandler interface {
	// ExtendTypeQuery produces the candidates matching one SearchGroupElement
	// selector, restricted to non-trashed/enabled/published content.
	ExtendTypeQuery(ctx context.Context, selector *model.SearchGroupElement, siteID int64) ([]model.ElementCandidate, error)

	// GetElements returns fully-loaded elements for display, keyed by id.
	GetElements(ctx context.Context, ids []int64, siteID int64) (map[int64]*model.Element, error)

	// GetAttributeOptions lists the options for an attribute filter. The
	// boolean result reports whether this type handles the attribute at all.
	GetAttributeOptions(ctx context.Context, attribute string, hint string, pageSize int) (*OptionSet, bool, error)

	// ModifyAttributeFilterQuery applies an attribute filter's value to the
	// candidate query. The boolean result reports whether the attribute was
	// handled.
	ModifyAttributeFilterQuery(ctx context.Context, filter *model.SearchGroupFilter, value interface{}, query *FilterQuery) (bool, error)
}

// FieldTypeHandler is the capability interface a field type implements to
// participate in filtering and option listing.
type FieldTypeHandler interface {
	// GetFieldOptions lists the options available for a field-bound filter.
	GetFieldOptions(ctx context.Context, fieldID int64, hint string, pageSize int) (*OptionSet, error)

	// ModifyFilterQuery applies a field filter's value to the candidate
	// query.
	ModifyFilterQuery(ctx context.Context, filter *model.SearchGroupFilter, value interface{}, query *FilterQuery) error
}

// Searcher is the orchestration entry point used by the API layer.
type Searcher interface {
	Search(ctx context.Context, groupKey string, options []SearchOption, page int, subjectID string) (*SearchResult, error)
	Explain(ctx context.Context, groupKey string, options []SearchOption, elementID int64) ([]ScoreExplanation, error)
	GetOptions(ctx context.Context, filterID int64, hint string) (*OptionSet, error)
}

// IndexScheduler schedules background reindex passes for saved elements.
type IndexScheduler interface {
	Schedule(elementID, siteID int64)
}
