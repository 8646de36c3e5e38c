package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"field-metrics-backend/internal/store"
)

// GetMetrics handles GET /api/metrics. All filters are optional; a filter
// nothing matches yields an empty list, not an error.
func (h *Handler) GetMetrics(c *gin.Context) {
	filter := store.MetricsFilter{
		EquipmentID: c.Query("equipment"),
		Category:    c.Query("category"),
	}

	var err error
	if filter.From, err = parseTimeParam(c.Query("from")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if filter.To, err = parseTimeParam(c.Query("to")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.store.MetricsFor(filter))
}

// GetSummary handles GET /api/summary.
func (h *Handler) GetSummary(c *gin.Context) {
	from, err := parseTimeParam(c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	to, err := parseTimeParam(c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.store.Summary(from, to))
}

// GetQuarantine handles GET /api/quarantine: the diagnostics feed with one
// reason code per excluded row.
func (h *Handler) GetQuarantine(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"quarantined": h.store.QuarantineReport(),
		"warnings":    h.store.Warnings(),
	})
}

// GetDataset handles GET /api/dataset: provenance of the current snapshot.
func (h *Handler) GetDataset(c *gin.Context) {
	snap := h.store.Snapshot()
	if snap == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no dataset has been analyzed yet"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"source":      snap.Source,
		"created_at":  snap.CreatedAt,
		"granularity": snap.Granularity,
		"row_count":   snap.RowCount,
		"events":      len(snap.Events),
		"metrics":     len(snap.Metrics),
		"quarantined": len(snap.Quarantined),
		"warnings":    len(snap.Warnings),
	})
}

// parseTimeParam accepts either a bare date or an RFC3339 timestamp.
func parseTimeParam(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid time %q: use YYYY-MM-DD or RFC3339", raw)
}
