package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charliedev/reliquary/model"
)

// ElementSavedRequest carries the searchable values of one saved element.
type ElementSavedRequest struct {
	Values []model.QueueValue `json:"values"`
}

// ElementSavedHandler is the save notification from the host application:
// pending queue rows from older saves are cleared so a stale pass cannot
// index intermediate content, the new values are queued, and a background
// reindex pass is scheduled.
func (api *API) ElementSavedHandler(c *gin.Context) {
	elementID, ok := parseIDParam(c, "elementId")
	if !ok {
		return
	}
	siteID, ok := parseIDParam(c, "siteId")
	if !ok {
		return
	}
	var req ElementSavedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendInvalidJSONError(c, err)
		return
	}
	for _, v := range req.Values {
		if (v.FieldID == nil) == (v.Attribute == nil) {
			SendError(c, http.StatusBadRequest, ErrorCodeInvalidRequest, "Each value needs exactly one of field_id and attribute")
			return
		}
	}

	ctx := c.Request.Context()
	if err := api.store.ClearPendingQueue(ctx, elementID, siteID); err != nil {
		SendInternalError(c, "queue clear", err)
		return
	}
	if len(req.Values) > 0 {
		if err := api.store.EnqueueValues(ctx, elementID, siteID, req.Values); err != nil {
			SendInternalError(c, "value enqueue", err)
			return
		}
	}
	api.scheduler.Schedule(elementID, siteID)
	c.JSON(http.StatusAccepted, gin.H{"queued": len(req.Values)})
}

// ElementDeletedHandler drops every trace of a deleted element from the
// index, across all sites.
func (api *API) ElementDeletedHandler(c *gin.Context) {
	elementID, ok := parseIDParam(c, "elementId")
	if !ok {
		return
	}
	if err := api.writer.DeleteElement(c.Request.Context(), elementID); err != nil {
		SendInternalError(c, "element index deletion", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ReindexHandler schedules a manual reindex pass for one element and site.
func (api *API) ReindexHandler(c *gin.Context) {
	elementID, ok := parseIDParam(c, "elementId")
	if !ok {
		return
	}
	siteID, ok := parseIDParam(c, "siteId")
	if !ok {
		return
	}
	api.scheduler.Schedule(elementID, siteID)
	c.JSON(http.StatusAccepted, gin.H{"element": elementID, "site": siteID})
}

// RebuildHandler truncates the index tables; content re-enters through the
// save notifications as the host re-saves its elements.
func (api *API) RebuildHandler(c *gin.Context) {
	if err := api.writer.ClearAll(c.Request.Context()); err != nil {
		SendInternalError(c, "index rebuild", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// QueueDepthHandler reports the number of pending queue rows.
func (api *API) QueueDepthHandler(c *gin.Context) {
	depth, err := api.store.QueueDepth(c.Request.Context())
	if err != nil {
		SendInternalError(c, "queue inspection", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"queue_depth": depth})
}
