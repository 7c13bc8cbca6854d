package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/charliedev/reliquary/model"
)

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidRequest, name+" must be numeric")
		return 0, false
	}
	return id, true
}

// ListGroupsHandler lists every configured search group in sort order.
func (api *API) ListGroupsHandler(c *gin.Context) {
	groups, err := api.store.AllGroups(c.Request.Context())
	if err != nil {
		SendInternalError(c, "group listing", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

// GetGroupHandler retrieves one group with its elements and filters.
func (api *API) GetGroupHandler(c *gin.Context) {
	groupID, ok := parseIDParam(c, "groupId")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	group, err := api.store.GroupByID(ctx, groupID)
	if err != nil {
		SendInternalError(c, "group lookup", err)
		return
	}
	if group == nil {
		SendError(c, http.StatusNotFound, ErrorCodeGroupNotFound, "Search group "+c.Param("groupId")+" not found")
		return
	}
	elements, err := api.store.SearchElementsByGroup(ctx, groupID)
	if err != nil {
		SendInternalError(c, "group lookup", err)
		return
	}
	filters, err := api.store.FiltersByGroup(ctx, groupID)
	if err != nil {
		SendInternalError(c, "group lookup", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"group":    group,
		"elements": elements,
		"filters":  filters,
	})
}

// SaveGroupHandler creates or updates a search group.
func (api *API) SaveGroupHandler(c *gin.Context) {
	var group model.SearchGroup
	if err := c.ShouldBindJSON(&group); err != nil {
		SendInvalidJSONError(c, err)
		return
	}
	if group.Handle == "" || group.Name == "" {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidRequest, "Group handle and name are required")
		return
	}
	if err := api.store.SaveGroup(c.Request.Context(), &group); err != nil {
		SendInternalError(c, "group save", err)
		return
	}
	c.JSON(http.StatusOK, group)
}

// DeleteGroupHandler removes a group and its elements and filters.
func (api *API) DeleteGroupHandler(c *gin.Context) {
	groupID, ok := parseIDParam(c, "groupId")
	if !ok {
		return
	}
	if err := api.store.DeleteGroup(c.Request.Context(), groupID); err != nil {
		SendInternalError(c, "group deletion", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ReorderGroupsHandler rewrites the display order of all groups.
func (api *API) ReorderGroupsHandler(c *gin.Context) {
	var req struct {
		IDs []int64 `json:"ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		SendInvalidJSONError(c, err)
		return
	}
	if err := api.store.ReorderGroups(c.Request.Context(), req.IDs); err != nil {
		SendInternalError(c, "group reorder", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListGroupElementsHandler lists the element-type selectors of a group.
func (api *API) ListGroupElementsHandler(c *gin.Context) {
	groupID, ok := parseIDParam(c, "groupId")
	if !ok {
		return
	}
	elements, err := api.store.SearchElementsByGroup(c.Request.Context(), groupID)
	if err != nil {
		SendInternalError(c, "element listing", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"elements": elements})
}

// SaveGroupElementHandler adds or updates one element-type selector.
func (api *API) SaveGroupElementHandler(c *gin.Context) {
	groupID, ok := parseIDParam(c, "groupId")
	if !ok {
		return
	}
	var element model.SearchGroupElement
	if err := c.ShouldBindJSON(&element); err != nil {
		SendInvalidJSONError(c, err)
		return
	}
	if element.ElementType == "" {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidRequest, "Element type is required")
		return
	}
	element.GroupID = groupID
	if err := api.store.SaveSearchElement(c.Request.Context(), &element); err != nil {
		SendInternalError(c, "element save", err)
		return
	}
	c.JSON(http.StatusOK, element)
}

// DeleteGroupElementHandler removes one element-type selector.
func (api *API) DeleteGroupElementHandler(c *gin.Context) {
	groupID, ok := parseIDParam(c, "groupId")
	if !ok {
		return
	}
	elementID, ok := parseIDParam(c, "elementId")
	if !ok {
		return
	}
	if err := api.store.DeleteSearchElement(c.Request.Context(), elementID, groupID); err != nil {
		SendInternalError(c, "element deletion", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListGroupFiltersHandler lists the filters of a group.
func (api *API) ListGroupFiltersHandler(c *gin.Context) {
	groupID, ok := parseIDParam(c, "groupId")
	if !ok {
		return
	}
	filters, err := api.store.FiltersByGroup(c.Request.Context(), groupID)
	if err != nil {
		SendInternalError(c, "filter listing", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"filters": filters})
}

// SaveGroupFilterHandler adds or updates one filter.
func (api *API) SaveGroupFilterHandler(c *gin.Context) {
	groupID, ok := parseIDParam(c, "groupId")
	if !ok {
		return
	}
	var filter model.SearchGroupFilter
	if err := c.ShouldBindJSON(&filter); err != nil {
		SendInvalidJSONError(c, err)
		return
	}
	if (filter.FieldID == nil) == (filter.Attribute == nil) {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidRequest, "Exactly one of field_id and attribute must be set",
			ErrorDetail{Field: "field_id", Message: "a filter targets either a content field or an element attribute"})
		return
	}
	if filter.Handle == "" {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidRequest, "Filter handle is required")
		return
	}
	filter.GroupID = groupID
	if err := api.store.SaveFilter(c.Request.Context(), &filter); err != nil {
		SendInternalError(c, "filter save", err)
		return
	}
	c.JSON(http.StatusOK, filter)
}

// DeleteGroupFilterHandler removes one filter.
func (api *API) DeleteGroupFilterHandler(c *gin.Context) {
	if _, ok := parseIDParam(c, "groupId"); !ok {
		return
	}
	filterID, ok := parseIDParam(c, "filterId")
	if !ok {
		return
	}
	if err := api.store.DeleteFilter(c.Request.Context(), filterID); err != nil {
		SendInternalError(c, "filter deletion", err)
		return
	}
	c.Status(http.StatusNoContent)
}
