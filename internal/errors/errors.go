package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions
var (
	// ErrSearchGroupNotFound is returned when a search group is not found
	ErrSearchGroupNotFound = errors.New("search group not found")

	// ErrFilterNotFound is returned when a search group filter is not found
	ErrFilterNotFound = errors.New("search group filter not found")

	// ErrDuplicateFilter is returned when the same filter (or the general
	// term) is supplied more than once in a single request
	ErrDuplicateFilter = errors.New("duplicate search filter")

	// ErrMissingHandler is returned when no handler is registered for a
	// required element-type or field-type operation
	ErrMissingHandler = errors.New("missing handler")

	// ErrConflictingOptions is returned when multiple element types report
	// incompatible option metadata for the same shared attribute filter
	ErrConflictingOptions = errors.New("conflicting attribute options")

	// ErrMalformedFilterValue is returned when a filter value fails its
	// expected shape
	ErrMalformedFilterValue = errors.New("malformed filter value")
)

// SearchGroupNotFoundError represents a search group not found error with context
type SearchGroupNotFoundError struct {
	GroupKey string
}

func (e *SearchGroupNotFoundError) Error() string {
	return fmt.Sprintf("search group '%s' not found", e.GroupKey)
}

func (e *SearchGroupNotFoundError) Is(target error) bool {
	return target == ErrSearchGroupNotFound
}

// NewSearchGroupNotFoundError creates a new SearchGroupNotFoundError
func NewSearchGroupNotFoundError(groupKey string) *SearchGroupNotFoundError {
	return &SearchGroupNotFoundError{GroupKey: groupKey}
}

// FilterNotFoundError represents a filter not found error with context
type FilterNotFoundError struct {
	FilterID int64
}

func (e *FilterNotFoundError) Error() string {
	return fmt.Sprintf("search group filter with ID %d not found", e.FilterID)
}

func (e *FilterNotFoundError) Is(target error) bool {
	return target == ErrFilterNotFound
}

// NewFilterNotFoundError creates a new FilterNotFoundError
func NewFilterNotFoundError(filterID int64) *FilterNotFoundError {
	return &FilterNotFoundError{FilterID: filterID}
}

// DuplicateFilterError represents a duplicate filter usage error.
// FilterID is -1 when the duplicated option is the general search term.
type DuplicateFilterError struct {
	FilterID int64
}

func (e *DuplicateFilterError) Error() string {
	if e.FilterID < 0 {
		return "general search term provided more than once"
	}
	return fmt.Sprintf("filter with ID %d provided more than once", e.FilterID)
}

func (e *DuplicateFilterError) Is(target error) bool {
	return target == ErrDuplicateFilter
}

// NewDuplicateFilterError creates a new DuplicateFilterError
func NewDuplicateFilterError(filterID int64) *DuplicateFilterError {
	return &DuplicateFilterError{FilterID: filterID}
}

// MissingHandlerError represents an absent extension point for a type that
// is actually in use. It is always fatal to the request: silently skipping
// a type would silently drop whole categories of results.
type MissingHandlerError struct {
	Operation string // e.g. "extend type query", "get elements"
	TypeName  string // element type or field type the handler was looked up for
}

func (e *MissingHandlerError) Error() string {
	return fmt.Sprintf("no '%s' handler registered for '%s'", e.Operation, e.TypeName)
}

func (e *MissingHandlerError) Is(target error) bool {
	return target == ErrMissingHandler
}

// NewMissingHandlerError creates a new MissingHandlerError
func NewMissingHandlerError(operation, typeName string) *MissingHandlerError {
	return &MissingHandlerError{Operation: operation, TypeName: typeName}
}

// ConflictingOptionsError represents incompatible option metadata reported
// by multiple element types for the same shared attribute filter
type ConflictingOptionsError struct {
	Attribute string
}

func (e *ConflictingOptionsError) Error() string {
	return fmt.Sprintf("multiple conflicting option sets provided for attribute '%s'", e.Attribute)
}

func (e *ConflictingOptionsError) Is(target error) bool {
	return target == ErrConflictingOptions
}

// NewConflictingOptionsError creates a new ConflictingOptionsError
func NewConflictingOptionsError(attribute string) *ConflictingOptionsError {
	return &ConflictingOptionsError{Attribute: attribute}
}

// MalformedFilterValueError represents a filter value that fails its
// expected shape (e.g. expects an array, got a scalar)
type MalformedFilterValueError struct {
	FilterID int64
	Reason   string
}

func (e *MalformedFilterValueError) Error() string {
	return fmt.Sprintf("malformed value for filter %d: %s", e.FilterID, e.Reason)
}

func (e *MalformedFilterValueError) Is(target error) bool {
	return target == ErrMalformedFilterValue
}

// NewMalformedFilterValueError creates a new MalformedFilterValueError
func NewMalformedFilterValueError(filterID int64, reason string) *MalformedFilterValueError {
	return &MalformedFilterValueError{FilterID: filterID, Reason: reason}
}
