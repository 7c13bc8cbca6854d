package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/charliedev/reliquary/services"
)

// SearchRequest is the body of a search execution request. Group accepts a
// numeric id or a handle.
type SearchRequest struct {
	Group     string                  `json:"group"`
	Options   []services.SearchOption `json:"options"`
	Page      int                     `json:"page"`
	SubjectID string                  `json:"subject_id"`
}

// ExplainRequest asks for the score breakdown of one element under a search.
type ExplainRequest struct {
	Group   string                  `json:"group"`
	Options []services.SearchOption `json:"options"`
	Element int64                   `json:"element"`
}

// SearchHandler executes one paginated search against a group.
func (api *API) SearchHandler(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendInvalidJSONError(c, err)
		return
	}
	if req.Group == "" {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidRequest, "Search group is required")
		return
	}

	result, err := api.searcher.Search(c.Request.Context(), req.Group, req.Options, req.Page, req.SubjectID)
	if err != nil {
		SendServiceError(c, "search", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ExplainHandler returns the per-entry score contributions of one element.
func (api *API) ExplainHandler(c *gin.Context) {
	var req ExplainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendInvalidJSONError(c, err)
		return
	}
	if req.Group == "" || req.Element == 0 {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidRequest, "Search group and element are required")
		return
	}

	explanations, err := api.searcher.Explain(c.Request.Context(), req.Group, req.Options, req.Element)
	if err != nil {
		SendServiceError(c, "explain", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"element":       req.Element,
		"contributions": explanations,
	})
}

// GetFilterOptionsHandler lists the selectable options of one filter.
func (api *API) GetFilterOptionsHandler(c *gin.Context) {
	filterID, err := strconv.ParseInt(c.Param("filterId"), 10, 64)
	if err != nil {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidRequest, "Filter id must be numeric")
		return
	}

	options, err := api.searcher.GetOptions(c.Request.Context(), filterID, c.Query("hint"))
	if err != nil {
		SendServiceError(c, "option listing", err)
		return
	}
	c.JSON(http.StatusOK, options)
}
