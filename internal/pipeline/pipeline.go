// Package pipeline runs one full analysis pass: schema resolution, record
// extraction, normalization and metrics computation, in that order, over a
// single RawSheet. Each invocation owns its intermediate state; the only
// shared input is the immutable schema reference bundle.
package pipeline

import (
	"time"

	"field-metrics-backend/internal/extract"
	"field-metrics-backend/internal/metrics"
	"field-metrics-backend/internal/normalize"
	"field-metrics-backend/internal/schema"
	"field-metrics-backend/internal/sheet"
)

// Options carries the per-run configuration. Everything is explicit; there
// is no ambient pipeline configuration.
type Options struct {
	Granularity  metrics.Granularity
	Availability metrics.AvailabilityPolicy
	Reference    *schema.Reference
	Location     *time.Location
}

func (o Options) withDefaults() Options {
	if o.Granularity == "" {
		o.Granularity = metrics.GranularityDay
	}
	if o.Availability.HoursPerDay <= 0 {
		o.Availability.HoursPerDay = 24
	}
	if o.Reference == nil {
		o.Reference = schema.DefaultReference()
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	return o
}

// Snapshot is the immutable result of one pipeline run. Once built it is
// published wholesale; nothing ever mutates a published snapshot.
type Snapshot struct {
	Source      string
	CreatedAt   time.Time
	Granularity metrics.Granularity
	Mapping     schema.ColumnMapping
	Events      []extract.EquipmentEvent
	Metrics     []metrics.MetricsRow
	Quarantined []extract.QuarantinedRow
	Warnings    []metrics.ConsistencyWarning
	RowCount    int
}

// Run executes the full pipeline over one sheet. A schema resolution
// failure aborts the run and is returned as a *schema.ResolutionError;
// row-level problems never abort, they accumulate in the snapshot's
// quarantine report.
func Run(s sheet.RawSheet, opts Options) (*Snapshot, error) {
	opts = opts.withDefaults()

	mapping, err := schema.Resolve(s, opts.Reference)
	if err != nil {
		return nil, err
	}

	events, quarantined := extract.Extract(s, mapping, opts.Location)

	normalized, rejected := normalize.Normalize(events)
	for _, r := range rejected {
		quarantined = append(quarantined, extract.QuarantinedRow{
			Row:    r.Row,
			Cells:  s.Row(r.Row),
			Reason: r.Reason,
		})
	}

	rows, warnings := metrics.Compute(normalized, opts.Granularity, opts.Availability, opts.Location)

	return &Snapshot{
		Source:      s.Name,
		CreatedAt:   time.Now().UTC(),
		Granularity: opts.Granularity,
		Mapping:     mapping,
		Events:      normalized,
		Metrics:     rows,
		Quarantined: quarantined,
		Warnings:    warnings,
		RowCount:    len(s.Rows),
	}, nil
}
