// Package store owns the current analysis session: the immutable snapshot
// published by the last successful pipeline run, the audit log of uploads,
// and the read-only query operations the presentation layer consumes.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"field-metrics-backend/internal/extract"
	"field-metrics-backend/internal/metrics"
	"field-metrics-backend/internal/model"
	"field-metrics-backend/internal/pipeline"
)

// Store defines the session-store interface.
type Store interface {
	Publish(ctx context.Context, snap *pipeline.Snapshot) (*model.UploadRecord, error)
	Snapshot() *pipeline.Snapshot
	MetricsFor(f MetricsFilter) []metrics.MetricsRow
	Summary(from, to time.Time) Summary
	QuarantineReport() []extract.QuarantinedRow
	Warnings() []metrics.ConsistencyWarning
	DB() *gorm.DB
}

// MetricsFilter narrows a metrics query. Zero values mean "no constraint";
// an unsatisfiable filter yields an empty result, never an error.
type MetricsFilter struct {
	EquipmentID string
	Category    string
	From        time.Time // inclusive period start bound
	To          time.Time // exclusive period start bound
}

// EquipmentUtilization is one equipment's mean utilization over the
// periods a summary covers.
type EquipmentUtilization struct {
	EquipmentID      string  `json:"equipment_id"`
	UtilizationRatio float64 `json:"utilization_ratio"`
}

// Summary condenses a period range for the dashboard headline figures.
type Summary struct {
	TopUtilized   *EquipmentUtilization `json:"top_utilized"`
	LeastUtilized *EquipmentUtilization `json:"least_utilized"`
	TotalEvents   int                   `json:"total_events"`
}

type sessionStore struct {
	mu   sync.RWMutex
	snap *pipeline.Snapshot
	db   *gorm.DB
}

// NewSessionStore creates a store with no published snapshot. The gorm
// handle backs the upload audit log and push subscriptions; it may be nil
// in tests that only exercise the query side.
func NewSessionStore(db *gorm.DB) Store {
	return &sessionStore{db: db}
}

// Publish atomically replaces the session snapshot and appends an audit
// record. The swap happens only after the audit write succeeds, so readers
// never observe a snapshot whose upload was not recorded.
func (s *sessionStore) Publish(ctx context.Context, snap *pipeline.Snapshot) (*model.UploadRecord, error) {
	record := &model.UploadRecord{
		Source:           snap.Source,
		RowCount:         snap.RowCount,
		EventCount:       len(snap.Events),
		QuarantinedCount: len(snap.Quarantined),
		MetricsCount:     len(snap.Metrics),
		WarningCount:     len(snap.Warnings),
		UploadedAt:       snap.CreatedAt,
	}

	if s.db != nil {
		if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
			return nil, fmt.Errorf("failed to record upload: %w", err)
		}
	}

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()

	return record, nil
}

// Snapshot returns the currently published snapshot, or nil before the
// first successful run.
func (s *sessionStore) Snapshot() *pipeline.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// MetricsFor answers a filtered read over the current metrics table.
func (s *sessionStore) MetricsFor(f MetricsFilter) []metrics.MetricsRow {
	snap := s.Snapshot()
	out := []metrics.MetricsRow{}
	if snap == nil {
		return out
	}
	for _, row := range snap.Metrics {
		if f.EquipmentID != "" && row.EquipmentID != f.EquipmentID {
			continue
		}
		if f.Category != "" && row.Category != f.Category {
			continue
		}
		if !f.From.IsZero() && row.PeriodStart.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && !row.PeriodStart.Before(f.To) {
			continue
		}
		out = append(out, row)
	}
	return out
}

// Summary aggregates the filtered range into headline figures: the mean
// utilization per equipment picks the top and bottom performers.
func (s *sessionStore) Summary(from, to time.Time) Summary {
	rows := s.MetricsFor(MetricsFilter{From: from, To: to})

	totals := make(map[string]float64)
	counts := make(map[string]int)
	summary := Summary{}
	for _, row := range rows {
		totals[row.EquipmentID] += row.UtilizationRatio
		counts[row.EquipmentID]++
		summary.TotalEvents += row.EventCount
	}

	for equipmentID, total := range totals {
		mean := total / float64(counts[equipmentID])
		candidate := EquipmentUtilization{EquipmentID: equipmentID, UtilizationRatio: mean}
		if summary.TopUtilized == nil || better(candidate, *summary.TopUtilized) {
			c := candidate
			summary.TopUtilized = &c
		}
		if summary.LeastUtilized == nil || better(*summary.LeastUtilized, candidate) {
			c := candidate
			summary.LeastUtilized = &c
		}
	}
	return summary
}

// better orders by utilization descending, breaking ties on equipment id so
// summaries stay deterministic across runs.
func better(a, b EquipmentUtilization) bool {
	if a.UtilizationRatio != b.UtilizationRatio {
		return a.UtilizationRatio > b.UtilizationRatio
	}
	return a.EquipmentID < b.EquipmentID
}

// QuarantineReport returns the diagnostics feed for the current snapshot.
func (s *sessionStore) QuarantineReport() []extract.QuarantinedRow {
	snap := s.Snapshot()
	if snap == nil {
		return []extract.QuarantinedRow{}
	}
	return snap.Quarantined
}

// Warnings returns the consistency warnings for the current snapshot.
func (s *sessionStore) Warnings() []metrics.ConsistencyWarning {
	snap := s.Snapshot()
	if snap == nil {
		return []metrics.ConsistencyWarning{}
	}
	return snap.Warnings
}

// DB exposes the underlying gorm handle for collaborators that manage their
// own tables (subscriptions, audit queries).
func (s *sessionStore) DB() *gorm.DB {
	return s.db
}
