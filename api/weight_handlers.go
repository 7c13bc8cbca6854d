package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charliedev/reliquary/model"
)

// ListWeightsHandler lists every configured custom field weight.
func (api *API) ListWeightsHandler(c *gin.Context) {
	weights, err := api.store.AllWeights(c.Request.Context())
	if err != nil {
		SendInternalError(c, "weight listing", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"weights": weights})
}

// SaveWeightHandler creates or updates a custom field weight.
func (api *API) SaveWeightHandler(c *gin.Context) {
	var weight model.CustomFieldWeight
	if err := c.ShouldBindJSON(&weight); err != nil {
		SendInvalidJSONError(c, err)
		return
	}
	if (weight.FieldID == nil) == (weight.Attribute == nil) {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidRequest, "Exactly one of field_id and attribute must be set")
		return
	}
	if weight.ElementType == "" {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidRequest, "Element type is required")
		return
	}
	if weight.Multiplier <= 0 {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidRequest, "Multiplier must be positive")
		return
	}
	if err := api.store.SaveWeight(c.Request.Context(), &weight); err != nil {
		SendInternalError(c, "weight save", err)
		return
	}
	c.JSON(http.StatusOK, weight)
}

// DeleteWeightHandler removes a custom field weight.
func (api *API) DeleteWeightHandler(c *gin.Context) {
	weightID, ok := parseIDParam(c, "weightId")
	if !ok {
		return
	}
	if err := api.store.DeleteWeight(c.Request.Context(), weightID); err != nil {
		SendInternalError(c, "weight deletion", err)
		return
	}
	c.Status(http.StatusNoContent)
}
