package api

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"field-metrics-backend/internal/metrics"
	"field-metrics-backend/internal/pipeline"
	"field-metrics-backend/internal/schema"
	"field-metrics-backend/internal/sheet"
)

// PostUpload handles POST /api/uploads: one xlsx file, analyzed in full
// before anything is published.
func (h *Handler) PostUpload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field 'file' is required"})
		return
	}

	if max := int64(h.cfg.Server.MaxUploadMB) << 20; max > 0 && fileHeader.Size > max {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": fmt.Sprintf("file exceeds the %d MB upload limit", h.cfg.Server.MaxUploadMB),
		})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open uploaded file"})
		return
	}
	defer f.Close()

	raw, err := sheet.FromExcel(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	raw.Name = fileHeader.Filename

	h.runPipeline(c, raw)
}

// PostDemo handles POST /api/demo: runs the pipeline over the bundled demo
// dataset so the dashboard has data before any upload.
func (h *Handler) PostDemo(c *gin.Context) {
	if !h.cfg.Demo.Enabled {
		c.JSON(http.StatusNotFound, gin.H{"error": "demo data is disabled"})
		return
	}
	h.runPipeline(c, sheet.Demo())
}

// runPipeline executes a full analysis run and, on success, atomically
// publishes the snapshot. A schema resolution failure leaves the previous
// snapshot untouched.
func (h *Handler) runPipeline(c *gin.Context, raw sheet.RawSheet) {
	opts, err := h.pipelineOptions(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snap, err := pipeline.Run(raw, opts)
	if err != nil {
		var resErr *schema.ResolutionError
		if errors.As(err, &resErr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":          resErr.Error(),
				"missing_fields": resErr.Missing,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	record, err := h.store.Publish(c.Request.Context(), snap)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// The old snapshot's cached responses are stale the moment the swap
	// happens.
	if h.respCache != nil {
		h.respCache.Flush()
	}

	if h.alerts != nil && record.QuarantineRatio() >= h.cfg.Push.QuarantineAlertRatio && record.QuarantinedCount > 0 {
		log.Printf("Upload %d quarantined %.0f%% of rows; dispatching quality alert", record.ID, record.QuarantineRatio()*100)
		h.alerts.Dispatch(record.ID)
	}

	c.JSON(http.StatusCreated, gin.H{
		"upload":           record,
		"quarantine_ratio": record.QuarantineRatio(),
		"granularity":      snap.Granularity,
	})
}

// pipelineOptions builds the per-run options from the configured defaults
// plus optional request overrides (granularity, hours_per_day).
func (h *Handler) pipelineOptions(c *gin.Context) (pipeline.Options, error) {
	granRaw := c.DefaultQuery("granularity", c.PostForm("granularity"))
	if granRaw == "" {
		granRaw = h.cfg.Pipeline.Granularity
	}
	gran, err := metrics.ParseGranularity(granRaw)
	if err != nil {
		return pipeline.Options{}, err
	}

	hoursPerDay := h.cfg.Pipeline.HoursPerDay
	if raw := c.DefaultQuery("hours_per_day", c.PostForm("hours_per_day")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 || v > 24 {
			return pipeline.Options{}, errors.New("hours_per_day must be a number in (0, 24]")
		}
		hoursPerDay = v
	}

	return pipeline.Options{
		Granularity:  gran,
		Availability: metrics.AvailabilityPolicy{HoursPerDay: hoursPerDay},
		Reference:    h.reference,
		Location:     h.location,
	}, nil
}
