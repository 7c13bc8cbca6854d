package api

import (
	stderrors "errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/charliedev/reliquary/internal/errors"
)

// ErrorCode represents standardized error codes for the API
type ErrorCode string

const (
	// Client Error Codes (4xx)
	ErrorCodeGroupNotFound      ErrorCode = "SEARCH_GROUP_NOT_FOUND"
	ErrorCodeFilterNotFound     ErrorCode = "FILTER_NOT_FOUND"
	ErrorCodeDuplicateFilter    ErrorCode = "DUPLICATE_FILTER"
	ErrorCodeMalformedFilter    ErrorCode = "MALFORMED_FILTER_VALUE"
	ErrorCodeConflictingOptions ErrorCode = "CONFLICTING_OPTIONS"
	ErrorCodeInvalidRequest     ErrorCode = "INVALID_REQUEST"
	ErrorCodeInvalidJSON        ErrorCode = "INVALID_JSON"

	// Server Error Codes (5xx)
	ErrorCodeMissingHandler ErrorCode = "MISSING_HANDLER"
	ErrorCodeInternalError  ErrorCode = "INTERNAL_ERROR"
	ErrorCodeSearchFailed   ErrorCode = "SEARCH_FAILED"
)

// ErrorDetail provides additional context for an error
type ErrorDetail struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// APIError represents a standardized API error response
type APIError struct {
	Error     string        `json:"error"`
	Code      ErrorCode     `json:"code"`
	Message   string        `json:"message"`
	Details   []ErrorDetail `json:"details,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	RequestID string        `json:"request_id,omitempty"`
}

// SendError sends a standardized error response
func SendError(c *gin.Context, statusCode int, code ErrorCode, message string, details ...ErrorDetail) {
	errorResponse := &APIError{
		Error:     "Request failed",
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now(),
	}
	if requestID, exists := c.Get("request_id"); exists {
		if id, ok := requestID.(string); ok {
			errorResponse.RequestID = id
		}
	}
	c.JSON(statusCode, errorResponse)
}

// SendInvalidJSONError sends a standardized invalid JSON error
func SendInvalidJSONError(c *gin.Context, err error) {
	SendError(c, http.StatusBadRequest, ErrorCodeInvalidJSON,
		"Invalid JSON in request body: "+err.Error())
}

// SendInternalError sends a standardized internal server error
func SendInternalError(c *gin.Context, operation string, err error) {
	SendError(c, http.StatusInternalServerError, ErrorCodeInternalError,
		"Internal error during "+operation+": "+err.Error())
}

// SendServiceError maps the typed errors of the search subsystem onto HTTP
// statuses: not-found family → 404, duplicate/malformed → 400, conflicting
// option metadata → 409, missing handlers and everything else → 500.
func SendServiceError(c *gin.Context, operation string, err error) {
	switch {
	case stderrors.Is(err, errors.ErrSearchGroupNotFound):
		SendError(c, http.StatusNotFound, ErrorCodeGroupNotFound, err.Error())
	case stderrors.Is(err, errors.ErrFilterNotFound):
		SendError(c, http.StatusNotFound, ErrorCodeFilterNotFound, err.Error())
	case stderrors.Is(err, errors.ErrDuplicateFilter):
		SendError(c, http.StatusBadRequest, ErrorCodeDuplicateFilter, err.Error())
	case stderrors.Is(err, errors.ErrMalformedFilterValue):
		SendError(c, http.StatusBadRequest, ErrorCodeMalformedFilter, err.Error())
	case stderrors.Is(err, errors.ErrConflictingOptions):
		SendError(c, http.StatusConflict, ErrorCodeConflictingOptions, err.Error())
	case stderrors.Is(err, errors.ErrMissingHandler):
		SendError(c, http.StatusInternalServerError, ErrorCodeMissingHandler, err.Error())
	default:
		SendInternalError(c, operation, err)
	}
}
