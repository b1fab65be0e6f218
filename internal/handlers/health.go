package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AshenDulsanka/PUSL-3190-Phisher/internal/analysis"
	"github.com/AshenDulsanka/PUSL-3190-Phisher/internal/cache"
)

type HealthHandler struct {
	Service   *analysis.Service
	Cache     *cache.Store
	Version   string
	StartTime time.Time
}

func NewHealthHandler(service *analysis.Service, store *cache.Store, version string) *HealthHandler {
	return &HealthHandler{
		Service:   service,
		Cache:     store,
		Version:   version,
		StartTime: time.Now(),
	}
}

// HealthCheck serves GET /health. It reports degraded collaborators rather
// than failing: a node with no Redis and no deep model still answers 200 so
// the load balancer keeps routing the traffic it can serve.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	redisStatus := "unavailable"
	queueSize := int64(-1)
	if h.Cache.Available(c.Request.Context()) {
		redisStatus = "healthy"
		queueSize = h.Cache.QueueSize(c.Request.Context())
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"runtime": "go",
		"version": h.Version,
		"uptime":  time.Since(h.StartTime).String(),
		"models": gin.H{
			"lightweight_loaded": h.Service.ModelLoaded("lightweight"),
			"deep_loaded":        h.Service.ModelLoaded("deep"),
		},
		"redis": gin.H{
			"status":     redisStatus,
			"queue_size": queueSize,
		},
		"memory": gin.H{
			"alloc_mb":       memStats.Alloc / 1024 / 1024,
			"sys_mb":         memStats.Sys / 1024 / 1024,
			"num_goroutines": runtime.NumGoroutine(),
		},
	})
}
