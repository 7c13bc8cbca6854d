// Package api exposes the search subsystem over HTTP: search execution,
// option listing, group/filter/weight configuration, and the content-change
// notifications that drive indexing.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charliedev/reliquary/internal/indexer"
	"github.com/charliedev/reliquary/internal/store"
	"github.com/charliedev/reliquary/services"
)

// API holds dependencies for API handlers.
type API struct {
	searcher  services.Searcher
	scheduler services.IndexScheduler
	writer    *indexer.Writer
	store     *store.Store
}

// NewAPI creates a new API handler structure.
func NewAPI(searcher services.Searcher, scheduler services.IndexScheduler, writer *indexer.Writer, st *store.Store) *API {
	return &API{
		searcher:  searcher,
		scheduler: scheduler,
		writer:    writer,
		store:     st,
	}
}

// SetupRoutes defines all the API routes.
func SetupRoutes(router *gin.Engine, searcher services.Searcher, scheduler services.IndexScheduler, writer *indexer.Writer, st *store.Store) {
	apiHandler := NewAPI(searcher, scheduler, writer, st)

	router.GET("/health", apiHandler.HealthCheckHandler)

	// Search execution
	router.POST("/search", apiHandler.SearchHandler)
	router.POST("/search/explain", apiHandler.ExplainHandler)
	router.GET("/filters/:filterId/options", apiHandler.GetFilterOptionsHandler)

	// Group configuration
	groupRoutes := router.Group("/groups")
	{
		groupRoutes.GET("", apiHandler.ListGroupsHandler)
		groupRoutes.POST("", apiHandler.SaveGroupHandler)
		groupRoutes.POST("/reorder", apiHandler.ReorderGroupsHandler)
		groupRoutes.GET("/:groupId", apiHandler.GetGroupHandler)
		groupRoutes.DELETE("/:groupId", apiHandler.DeleteGroupHandler)

		groupRoutes.GET("/:groupId/elements", apiHandler.ListGroupElementsHandler)
		groupRoutes.POST("/:groupId/elements", apiHandler.SaveGroupElementHandler)
		groupRoutes.DELETE("/:groupId/elements/:elementId", apiHandler.DeleteGroupElementHandler)

		groupRoutes.GET("/:groupId/filters", apiHandler.ListGroupFiltersHandler)
		groupRoutes.POST("/:groupId/filters", apiHandler.SaveGroupFilterHandler)
		groupRoutes.DELETE("/:groupId/filters/:filterId", apiHandler.DeleteGroupFilterHandler)
	}

	// Relevance weighting
	weightRoutes := router.Group("/weights")
	{
		weightRoutes.GET("", apiHandler.ListWeightsHandler)
		weightRoutes.POST("", apiHandler.SaveWeightHandler)
		weightRoutes.DELETE("/:weightId", apiHandler.DeleteWeightHandler)
	}

	// Content-change notifications from the host application
	elementRoutes := router.Group("/elements")
	{
		elementRoutes.PUT("/:elementId/sites/:siteId", apiHandler.ElementSavedHandler)
		elementRoutes.DELETE("/:elementId", apiHandler.ElementDeletedHandler)
	}

	// Index administration
	adminRoutes := router.Group("/admin")
	{
		adminRoutes.POST("/reindex/:elementId/:siteId", apiHandler.ReindexHandler)
		adminRoutes.POST("/rebuild", apiHandler.RebuildHandler)
		adminRoutes.GET("/queue", apiHandler.QueueDepthHandler)
	}
}

// HealthCheckHandler reports service liveness and queue depth.
func (api *API) HealthCheckHandler(c *gin.Context) {
	depth, err := api.store.QueueDepth(c.Request.Context())
	if err != nil {
		SendInternalError(c, "health check", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"queue_depth": depth,
	})
}
