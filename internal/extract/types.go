package extract

import "time"

// EventType enumerates the recognized operational states.
type EventType string

const (
	EventOperating   EventType = "operating"
	EventIdle        EventType = "idle"
	EventMaintenance EventType = "maintenance"
	EventUnknown     EventType = "unknown"
)

// Quarantine reason codes. Every excluded row carries exactly one.
const (
	ReasonMissingEquipmentID   = "missing_equipment_id"
	ReasonInvalidTimestamp     = "invalid_timestamp"
	ReasonUnresolvableDuration = "unresolvable_duration"
	ReasonNegativeDuration     = "negative_duration"
)

// EquipmentEvent is the canonical record of one equipment operational event.
// Duration starts out raw (value + unit token as found in the sheet) and is
// reconciled to a time.Duration by the normalizer.
type EquipmentEvent struct {
	Row         int // source data-row index, for diagnostics
	EquipmentID string
	StartTime   time.Time // zero when the source had no start
	EndTime     time.Time // zero when the source had no end
	EventType   EventType
	Category    string
	Location    string

	// Raw duration as extracted; canonical Duration is set by normalization.
	DurationValue float64
	HasDuration   bool
	DurationUnit  string

	Duration time.Duration
}

// QuarantinedRow is a source row excluded from metrics, retained only for
// the diagnostics report.
type QuarantinedRow struct {
	Row    int      `json:"row"`
	Cells  []string `json:"cells"`
	Reason string   `json:"reason"`
}
