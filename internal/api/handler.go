package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/patrickmn/go-cache"

	"field-metrics-backend/config"
	"field-metrics-backend/internal/notification"
	"field-metrics-backend/internal/schema"
	"field-metrics-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store     store.Store
	cfg       *config.Config
	reference *schema.Reference
	location  *time.Location
	webpush   *webpush.Options
	alerts    *notification.WorkerPool
	respCache *cache.Cache
}

// NewHandler creates a new API handler. The reference bundle and location
// are built once at startup and shared read-only across requests.
func NewHandler(s store.Store, cfg *config.Config, ref *schema.Reference, loc *time.Location, webpushOptions *webpush.Options, alerts *notification.WorkerPool, respCache *cache.Cache) *Handler {
	return &Handler{
		store:     s,
		cfg:       cfg,
		reference: ref,
		location:  loc,
		webpush:   webpushOptions,
		alerts:    alerts,
		respCache: respCache,
	}
}
