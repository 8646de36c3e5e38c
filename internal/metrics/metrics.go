// Package metrics turns a normalized event set into the immutable
// utilization/frequency table the query layer serves. Computation is a pure
// aggregation over the full event set: no state survives between runs, so
// identical inputs always produce identical output.
package metrics

import (
	"fmt"
	"sort"
	"time"

	"field-metrics-backend/internal/extract"
)

// Consistency warning codes.
const (
	WarningUtilizationClamped = "utilization_clamped"
	WarningUndatedEvent       = "undated_event"
	WarningZeroAvailability   = "zero_availability"
)

// AvailabilityPolicy defines how much time equipment is assumed to be
// available per day: a fixed calendar assumption, optionally overridden per
// equipment by a supplied operating-hours reference.
type AvailabilityPolicy struct {
	HoursPerDay  float64
	PerEquipment map[string]float64
}

func (p AvailabilityPolicy) hoursFor(equipmentID string) float64 {
	if h, ok := p.PerEquipment[equipmentID]; ok {
		return h
	}
	return p.HoursPerDay
}

// MetricsRow is one (equipment, period) cell of the metrics table.
type MetricsRow struct {
	EquipmentID string    `json:"equipment_id"`
	Period      string    `json:"period"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	// Category is the category of the first event that landed in the
	// bucket; a period mixing categories is reported under that one.
	Category         string        `json:"category,omitempty"`
	UtilizationRatio float64       `json:"utilization_ratio"`
	EventCount       int           `json:"event_count"`
	TotalDuration    time.Duration `json:"total_duration"`
}

// ConsistencyWarning is a non-fatal data-quality finding produced during
// aggregation; it is reported alongside the metrics, never instead of them.
type ConsistencyWarning struct {
	EquipmentID string `json:"equipment_id,omitempty"`
	Period      string `json:"period,omitempty"`
	Code        string `json:"code"`
	Message     string `json:"message"`
}

type bucket struct {
	start     time.Time
	operating time.Duration
	total     time.Duration
	count     int
	category  string
}

// Compute aggregates the normalized events into one MetricsRow per
// (equipment, period) pair observed. Events spanning a period boundary are
// split proportionally by overlap into each period they touch; the event
// itself is counted once, in the period its start falls in. Utilization
// exceeding 1.0 is clamped and reported as a consistency warning, since it
// signals overlapping or duplicated source events.
func Compute(events []extract.EquipmentEvent, g Granularity, avail AvailabilityPolicy, loc *time.Location) ([]MetricsRow, []ConsistencyWarning) {
	if loc == nil {
		loc = time.UTC
	}

	buckets := make(map[string]map[time.Time]*bucket)
	var warnings []ConsistencyWarning

	for _, ev := range events {
		if ev.StartTime.IsZero() {
			warnings = append(warnings, ConsistencyWarning{
				EquipmentID: ev.EquipmentID,
				Code:        WarningUndatedEvent,
				Message:     fmt.Sprintf("row %d has a duration but no start time; excluded from period metrics", ev.Row),
			})
			continue
		}
		spread(buckets, ev, g, loc)
	}

	var rows []MetricsRow
	for equipmentID, periods := range buckets {
		hoursPerDay := avail.hoursFor(equipmentID)
		for _, b := range periods {
			end := periodEnd(b.start, g)
			label := periodLabel(b.start, g)
			days := end.Sub(b.start).Hours() / 24

			available := time.Duration(hoursPerDay * days * float64(time.Hour))
			ratio := 0.0
			if available > 0 {
				ratio = float64(b.operating) / float64(available)
			} else if b.operating > 0 {
				warnings = append(warnings, ConsistencyWarning{
					EquipmentID: equipmentID,
					Period:      label,
					Code:        WarningZeroAvailability,
					Message:     "operating time recorded against zero available time",
				})
			}
			if ratio > 1 {
				warnings = append(warnings, ConsistencyWarning{
					EquipmentID: equipmentID,
					Period:      label,
					Code:        WarningUtilizationClamped,
					Message:     fmt.Sprintf("utilization %.3f exceeds 1.0; clamped (likely overlapping or duplicate events)", ratio),
				})
				ratio = 1
			}

			rows = append(rows, MetricsRow{
				EquipmentID:      equipmentID,
				Period:           label,
				PeriodStart:      b.start,
				PeriodEnd:        end,
				Category:         b.category,
				UtilizationRatio: ratio,
				EventCount:       b.count,
				TotalDuration:    b.total,
			})
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].EquipmentID != rows[j].EquipmentID {
			return rows[i].EquipmentID < rows[j].EquipmentID
		}
		return rows[i].PeriodStart.Before(rows[j].PeriodStart)
	})
	sortWarnings(warnings)
	return rows, warnings
}

// spread distributes one event's duration over every period it touches.
// The proportional split guarantees no double counting and no truncation:
// the shares always sum to the event's full duration.
func spread(buckets map[string]map[time.Time]*bucket, ev extract.EquipmentEvent, g Granularity, loc *time.Location) {
	start := ev.StartTime.In(loc)
	end := ev.EndTime.In(loc)
	if ev.EndTime.IsZero() {
		end = start.Add(ev.Duration)
	}

	startBucket := getBucket(buckets, ev, periodStart(start, g, loc))
	if ev.EventType == extract.EventOperating {
		startBucket.count++
	}

	span := end.Sub(start)
	if span <= 0 {
		// Zero-length or point-in-time event: the whole duration lands in
		// the start period.
		addShare(startBucket, ev, ev.Duration)
		return
	}

	for p := periodStart(start, g, loc); p.Before(end); p = periodEnd(p, g) {
		pEnd := periodEnd(p, g)
		overlapStart, overlapEnd := start, end
		if p.After(overlapStart) {
			overlapStart = p
		}
		if pEnd.Before(overlapEnd) {
			overlapEnd = pEnd
		}
		overlap := overlapEnd.Sub(overlapStart)
		if overlap <= 0 {
			continue
		}
		share := time.Duration(float64(ev.Duration) * float64(overlap) / float64(span))
		addShare(getBucket(buckets, ev, p), ev, share)
	}
}

func getBucket(buckets map[string]map[time.Time]*bucket, ev extract.EquipmentEvent, start time.Time) *bucket {
	periods, ok := buckets[ev.EquipmentID]
	if !ok {
		periods = make(map[time.Time]*bucket)
		buckets[ev.EquipmentID] = periods
	}
	b, ok := periods[start]
	if !ok {
		b = &bucket{start: start}
		periods[start] = b
	}
	if b.category == "" {
		b.category = ev.Category
	}
	return b
}

func addShare(b *bucket, ev extract.EquipmentEvent, share time.Duration) {
	b.total += share
	if ev.EventType == extract.EventOperating {
		b.operating += share
	}
}

func sortWarnings(warnings []ConsistencyWarning) {
	sort.SliceStable(warnings, func(i, j int) bool {
		if warnings[i].EquipmentID != warnings[j].EquipmentID {
			return warnings[i].EquipmentID < warnings[j].EquipmentID
		}
		return warnings[i].Period < warnings[j].Period
	})
}
