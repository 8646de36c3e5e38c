package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"field-metrics-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router around the handler.
// Read endpoints are cached until the next snapshot publish; the whole API
// group is rate limited per client IP.
func NewRouter(h *Handler, rateLimitPerSec float64, cacheStore *cache.Cache, cacheTTL time.Duration) *gin.Engine {
	r := gin.Default()

	if rateLimitPerSec <= 0 {
		rateLimitPerSec = 10
	}
	rateLimiter := mw.RateLimiter(rate.Limit(rateLimitPerSec), 5)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.POST("/uploads", h.PostUpload)
		api.POST("/demo", h.PostDemo)

		api.GET("/metrics", caching, h.GetMetrics)
		api.GET("/summary", caching, h.GetSummary)
		api.GET("/quarantine", caching, h.GetQuarantine)
		api.GET("/dataset", h.GetDataset)

		api.GET("/subscriptions", h.GetSubscription)
		api.PUT("/subscriptions", h.PutSubscription)
		api.DELETE("/subscriptions", h.DeleteSubscription)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
	}

	return r
}
