package endpoints

import (
	"net/http"

	"elexon/internal/api/service"
	"elexon/internal/metric"

	"github.com/gin-gonic/gin"
)

// SystemHandler serves the liveness probe and the prometheus scrape endpoint.
func SystemHandler(router gin.IRouter, catalog *service.DatasetService, metrics *metric.Metrics) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "datasets": catalog.Count()})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
}
