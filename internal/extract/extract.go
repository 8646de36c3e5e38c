package extract

import (
	"strconv"
	"strings"
	"time"

	"field-metrics-backend/internal/schema"
	"field-metrics-backend/internal/sheet"
)

// timestampLayouts is the fixed priority order for timestamp parsing; the
// first successful parse wins.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
	"2006/01/02 15:04",
	"2006/01/02",
	"01/02/2006 15:04",
	"01/02/2006",
}

// Extract converts the sheet's data rows into canonical EquipmentEvents
// using the resolved column mapping. Rows that cannot yield a non-empty
// equipment id plus some way to derive a duration are quarantined with a
// reason code, never dropped. Extraction has no side effects; identical
// input always yields identical output.
func Extract(s sheet.RawSheet, mapping schema.ColumnMapping, loc *time.Location) ([]EquipmentEvent, []QuarantinedRow) {
	if loc == nil {
		loc = time.UTC
	}

	var events []EquipmentEvent
	var quarantined []QuarantinedRow

	for i := range s.Rows {
		ev, reason := extractRow(s, mapping, i, loc)
		if reason != "" {
			quarantined = append(quarantined, QuarantinedRow{Row: i, Cells: s.Row(i), Reason: reason})
			continue
		}
		events = append(events, ev)
	}
	return events, quarantined
}

func extractRow(s sheet.RawSheet, mapping schema.ColumnMapping, row int, loc *time.Location) (EquipmentEvent, string) {
	ev := EquipmentEvent{Row: row, EventType: EventUnknown}

	ev.EquipmentID = strings.TrimSpace(mappedCell(s, mapping, schema.FieldEquipmentID, row))
	if ev.EquipmentID == "" {
		return EquipmentEvent{}, ReasonMissingEquipmentID
	}

	start, ok := parseOptionalTime(mappedCell(s, mapping, schema.FieldStartTime, row), loc)
	if !ok {
		return EquipmentEvent{}, ReasonInvalidTimestamp
	}
	end, ok := parseOptionalTime(mappedCell(s, mapping, schema.FieldEndTime, row), loc)
	if !ok {
		return EquipmentEvent{}, ReasonInvalidTimestamp
	}
	ev.StartTime, ev.EndTime = start, end

	if raw := strings.TrimSpace(mappedCell(s, mapping, schema.FieldDuration, row)); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return EquipmentEvent{}, ReasonUnresolvableDuration
		}
		ev.DurationValue = v
		ev.HasDuration = true
		ev.DurationUnit = strings.ToLower(strings.TrimSpace(mappedCell(s, mapping, schema.FieldDurationUnit, row)))
	}

	// The invariant: a duration must be resolvable, either directly or from
	// the timestamp pair.
	if !ev.HasDuration && (ev.StartTime.IsZero() || ev.EndTime.IsZero()) {
		return EquipmentEvent{}, ReasonUnresolvableDuration
	}

	ev.EventType = ParseEventType(mappedCell(s, mapping, schema.FieldEventType, row))
	ev.Category = strings.TrimSpace(mappedCell(s, mapping, schema.FieldCategory, row))
	ev.Location = strings.TrimSpace(mappedCell(s, mapping, schema.FieldLocation, row))

	return ev, ""
}

func mappedCell(s sheet.RawSheet, mapping schema.ColumnMapping, field schema.Field, row int) string {
	col, ok := mapping.Column(field)
	if !ok {
		return ""
	}
	return s.Cell(row, col)
}

// parseOptionalTime parses a timestamp cell. A blank cell is a valid absent
// value; a non-blank cell that matches no layout is a parse failure.
func parseOptionalTime(raw string, loc *time.Location) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, true
	}
	t, err := ParseTimestamp(raw, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ParseTimestamp tries each supported layout in priority order. It also
// accepts Excel serial date numbers, which survive in exports whose cells
// were never given a date format.
func ParseTimestamp(raw string, loc *time.Location) (time.Time, error) {
	var firstErr error
	for _, layout := range timestampLayouts {
		t, err := time.ParseInLocation(layout, raw, loc)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}

	// Excel serial dates: days since 1899-12-30. Bound the range to avoid
	// misreading plain numeric columns as dates.
	if serial, err := strconv.ParseFloat(raw, 64); err == nil && serial > 20000 && serial < 80000 {
		epoch := time.Date(1899, time.December, 30, 0, 0, 0, 0, loc)
		days := int(serial)
		frac := serial - float64(days)
		return epoch.AddDate(0, 0, days).Add(time.Duration(frac * 24 * float64(time.Hour))), nil
	}

	return time.Time{}, firstErr
}

// ParseEventType maps a raw status cell onto the event-type enumeration.
// Unrecognized values become EventUnknown rather than failing the row.
func ParseEventType(raw string) EventType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "operating", "operation", "running", "working", "active":
		return EventOperating
	case "idle", "standby", "waiting":
		return EventIdle
	case "maintenance", "repair", "down", "downtime":
		return EventMaintenance
	default:
		return EventUnknown
	}
}
