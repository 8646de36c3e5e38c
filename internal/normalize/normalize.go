// Package normalize reconciles extracted events into a canonical,
// deduplicated set: one duration unit, durations derived where absent, and
// duplicate rows collapsed so re-uploading the same export cannot
// double-count utilization.
package normalize

import (
	"time"

	"field-metrics-backend/internal/extract"
)

// Rejection marks an event that failed a normalization rule and must be
// re-quarantined by the caller.
type Rejection struct {
	Row    int
	Reason string
}

type dedupKey struct {
	equipmentID string
	start       time.Time
	end         time.Time
	eventType   extract.EventType
	// duration only participates for undated events, which would otherwise
	// collapse on their zero timestamps alone.
	duration time.Duration
}

// Normalize applies the normalization rules in order: unit reconciliation,
// duration derivation, deduplication. The input slice is not modified; a
// record that fails a rule is dropped from the returned set and reported as
// a Rejection. Nothing is ever fabricated: a record either carries enough
// fields to resolve or it is rejected.
func Normalize(events []extract.EquipmentEvent) ([]extract.EquipmentEvent, []Rejection) {
	inferred := inferSheetUnit(events)

	out := make([]extract.EquipmentEvent, 0, len(events))
	var rejected []Rejection
	seen := make(map[dedupKey]bool)

	for _, ev := range events {
		// Timestamp ordering holds for every record that carries both
		// timestamps, whether or not a duration column backed it.
		if !ev.StartTime.IsZero() && !ev.EndTime.IsZero() && ev.EndTime.Before(ev.StartTime) {
			rejected = append(rejected, Rejection{Row: ev.Row, Reason: extract.ReasonNegativeDuration})
			continue
		}

		// Rule 1: unit reconciliation.
		if ev.HasDuration {
			unit := ev.DurationUnit
			if unit == "" {
				unit = inferred
			}
			d, ok := toDuration(ev.DurationValue, unit)
			if !ok || d < 0 {
				reason := extract.ReasonUnresolvableDuration
				if d < 0 {
					reason = extract.ReasonNegativeDuration
				}
				rejected = append(rejected, Rejection{Row: ev.Row, Reason: reason})
				continue
			}
			ev.Duration = d
		}

		// Rule 2: duration derivation from the timestamp pair.
		if !ev.HasDuration {
			d := ev.EndTime.Sub(ev.StartTime)
			if d < 0 {
				rejected = append(rejected, Rejection{Row: ev.Row, Reason: extract.ReasonNegativeDuration})
				continue
			}
			ev.Duration = d
		}

		// Rule 3: deduplication, keeping the first occurrence.
		key := dedupKey{
			equipmentID: ev.EquipmentID,
			start:       ev.StartTime,
			end:         ev.EndTime,
			eventType:   ev.EventType,
		}
		if ev.StartTime.IsZero() && ev.EndTime.IsZero() {
			key.duration = ev.Duration
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, ev)
	}
	return out, rejected
}

// inferSheetUnit decides the duration unit for events without an explicit
// one. The inference is per sheet, not per row, so one outlier cannot flip
// individual rows: if every unitless duration fits in a day when read as
// hours, the sheet is in hours, otherwise minutes.
func inferSheetUnit(events []extract.EquipmentEvent) string {
	sawAny := false
	maxVal := 0.0
	for _, ev := range events {
		if !ev.HasDuration || ev.DurationUnit != "" {
			continue
		}
		sawAny = true
		if v := ev.DurationValue; v > maxVal {
			maxVal = v
		}
	}
	if !sawAny || maxVal <= 24 {
		return "hours"
	}
	return "minutes"
}

func toDuration(value float64, unit string) (time.Duration, bool) {
	switch unit {
	case "s", "sec", "secs", "second", "seconds":
		return time.Duration(value * float64(time.Second)), true
	case "m", "min", "mins", "minute", "minutes":
		return time.Duration(value * float64(time.Minute)), true
	case "h", "hr", "hrs", "hour", "hours":
		return time.Duration(value * float64(time.Hour)), true
	case "d", "day", "days":
		return time.Duration(value * 24 * float64(time.Hour)), true
	default:
		return 0, false
	}
}
