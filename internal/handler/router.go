package handler

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the sync and academic endpoints under prefix.
func RegisterRoutes(r gin.IRouter, prefix string, sync *SyncHandler, academic *AcademicHandler) {
	api := r.Group(prefix)

	syncGroup := api.Group("/sync")
	syncGroup.POST("", sync.Start)
	syncGroup.GET("", sync.List)
	syncGroup.GET("/statistics", sync.Statistics)
	syncGroup.GET("/connection", sync.Connection)
	syncGroup.GET("/tables", sync.Tables)
	syncGroup.GET("/:id", sync.Status)
	syncGroup.POST("/:id/process", sync.Process)
	syncGroup.POST("/:id/pause", sync.Pause)

	academics := api.Group("/academics")
	academics.GET("/students/:regno/snapshot", academic.Snapshot)
	academics.GET("/summary", academic.Summary)
	academics.GET("/missing-marks", academic.MissingMarks)
}

// RegisterObservability mounts probes and metrics at the root.
func RegisterObservability(r gin.IRouter, metrics *MetricsHandler) {
	r.GET("/health", metrics.Health)
	r.GET("/ready", metrics.Ready)
	r.GET("/metrics", metrics.Prometheus)
	r.GET("/metrics/snapshot", metrics.Snapshot)
}
