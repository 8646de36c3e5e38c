package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"field-metrics-backend/internal/extract"
)

func TestNormalizeDerivesDuration(t *testing.T) {
	start := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	events := []extract.EquipmentEvent{
		{EquipmentID: "EXC-12", StartTime: start, EndTime: start.Add(8 * time.Hour), EventType: extract.EventOperating},
	}

	out, rejected := Normalize(events)

	require.Len(t, out, 1)
	assert.Empty(t, rejected)
	assert.Equal(t, 8*time.Hour, out[0].Duration)
}

func TestNormalizeNegativeDerivedDuration(t *testing.T) {
	start := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	events := []extract.EquipmentEvent{
		{Row: 3, EquipmentID: "EXC-12", StartTime: start, EndTime: start.Add(-time.Hour)},
	}

	out, rejected := Normalize(events)

	assert.Empty(t, out)
	require.Len(t, rejected, 1)
	assert.Equal(t, 3, rejected[0].Row)
	assert.Equal(t, extract.ReasonNegativeDuration, rejected[0].Reason)
}

func TestNormalizeRejectsInvertedTimestampsWithExplicitDuration(t *testing.T) {
	// An explicit duration column must not rescue a row whose timestamps
	// are inverted; the ordering rule applies either way.
	start := time.Date(2024, 1, 1, 16, 0, 0, 0, time.UTC)
	events := []extract.EquipmentEvent{
		{
			Row:           2,
			EquipmentID:   "EXC-12",
			StartTime:     start,
			EndTime:       start.Add(-8 * time.Hour),
			EventType:     extract.EventOperating,
			HasDuration:   true,
			DurationValue: 8,
			DurationUnit:  "h",
		},
	}

	out, rejected := Normalize(events)

	assert.Empty(t, out)
	require.Len(t, rejected, 1)
	assert.Equal(t, 2, rejected[0].Row)
	assert.Equal(t, extract.ReasonNegativeDuration, rejected[0].Reason)
}

func TestNormalizeUnitReconciliation(t *testing.T) {
	testCases := []struct {
		name     string
		events   []extract.EquipmentEvent
		expected []time.Duration
	}{
		{
			name: "Explicit unit column wins",
			events: []extract.EquipmentEvent{
				{EquipmentID: "A", HasDuration: true, DurationValue: 90, DurationUnit: "min"},
				{EquipmentID: "B", HasDuration: true, DurationValue: 2, DurationUnit: "h"},
			},
			expected: []time.Duration{90 * time.Minute, 2 * time.Hour},
		},
		{
			name: "Small magnitudes read as hours",
			events: []extract.EquipmentEvent{
				{EquipmentID: "A", HasDuration: true, DurationValue: 8},
				{EquipmentID: "B", HasDuration: true, DurationValue: 3.5},
			},
			expected: []time.Duration{8 * time.Hour, 3*time.Hour + 30*time.Minute},
		},
		{
			name: "Large magnitudes flip the whole sheet to minutes",
			events: []extract.EquipmentEvent{
				{EquipmentID: "A", HasDuration: true, DurationValue: 480},
				{EquipmentID: "B", HasDuration: true, DurationValue: 15},
			},
			expected: []time.Duration{480 * time.Minute, 15 * time.Minute},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, rejected := Normalize(tc.events)
			require.Empty(t, rejected)
			require.Len(t, out, len(tc.expected))
			for i, want := range tc.expected {
				assert.Equal(t, want, out[i].Duration)
			}
		})
	}
}

func TestNormalizeRejectsBadDurations(t *testing.T) {
	events := []extract.EquipmentEvent{
		{Row: 0, EquipmentID: "A", HasDuration: true, DurationValue: -2, DurationUnit: "h"},
		{Row: 1, EquipmentID: "B", HasDuration: true, DurationValue: 5, DurationUnit: "furlongs"},
	}

	out, rejected := Normalize(events)

	assert.Empty(t, out)
	require.Len(t, rejected, 2)
	assert.Equal(t, extract.ReasonNegativeDuration, rejected[0].Reason)
	assert.Equal(t, extract.ReasonUnresolvableDuration, rejected[1].Reason)
}

func TestNormalizeDeduplicates(t *testing.T) {
	start := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	end := start.Add(4 * time.Hour)
	dup := extract.EquipmentEvent{EquipmentID: "EXC-12", StartTime: start, EndTime: end, EventType: extract.EventOperating}

	out, rejected := Normalize([]extract.EquipmentEvent{dup, dup, dup})

	assert.Empty(t, rejected)
	require.Len(t, out, 1)
	assert.Equal(t, 4*time.Hour, out[0].Duration)
}

func TestNormalizeKeepsDistinctUndatedEvents(t *testing.T) {
	// Undated events only carry a duration; without it in the identity key
	// they would all collapse onto their zero timestamps.
	events := []extract.EquipmentEvent{
		{EquipmentID: "A", HasDuration: true, DurationValue: 2, DurationUnit: "h", EventType: extract.EventOperating},
		{EquipmentID: "A", HasDuration: true, DurationValue: 3, DurationUnit: "h", EventType: extract.EventOperating},
		{EquipmentID: "A", HasDuration: true, DurationValue: 2, DurationUnit: "h", EventType: extract.EventOperating},
	}

	out, rejected := Normalize(events)

	assert.Empty(t, rejected)
	assert.Len(t, out, 2)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	start := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	events := []extract.EquipmentEvent{
		{EquipmentID: "A", StartTime: start, EndTime: start.Add(2 * time.Hour), EventType: extract.EventOperating},
		{EquipmentID: "A", StartTime: start, EndTime: start.Add(2 * time.Hour), EventType: extract.EventOperating},
		{EquipmentID: "B", HasDuration: true, DurationValue: 6, EventType: extract.EventIdle},
	}

	once, rejected := Normalize(events)
	require.Empty(t, rejected)

	twice, rejected := Normalize(once)
	require.Empty(t, rejected)
	assert.Equal(t, once, twice)
}
