package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter registers the API routes on a gin engine
func NewRouter(caseHandler *CaseHandler, metricsHandler http.Handler) *gin.Engine {
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	if metricsHandler != nil {
		r.GET("/metrics", gin.WrapH(metricsHandler))
	}

	// API routes
	api := r.Group("/api")
	{
		api.POST("/cases/search", caseHandler.SearchCases)
		api.POST("/cases/summarize", caseHandler.Summarize)
		api.POST("/ask", caseHandler.Ask)
	}

	return r
}
