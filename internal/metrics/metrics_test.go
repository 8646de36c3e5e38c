package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"field-metrics-backend/internal/extract"
)

func dated(id string, start, end time.Time, et extract.EventType) extract.EquipmentEvent {
	return extract.EquipmentEvent{
		EquipmentID: id,
		StartTime:   start,
		EndTime:     end,
		EventType:   et,
		Duration:    end.Sub(start),
	}
}

func TestComputeSingleDay(t *testing.T) {
	start := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	events := []extract.EquipmentEvent{
		dated("EXC-12", start, start.Add(8*time.Hour), extract.EventOperating),
	}

	rows, warnings := Compute(events, GranularityDay, AvailabilityPolicy{HoursPerDay: 24}, time.UTC)

	require.Len(t, rows, 1)
	assert.Empty(t, warnings)
	row := rows[0]
	assert.Equal(t, "EXC-12", row.EquipmentID)
	assert.Equal(t, "2024-01-01", row.Period)
	assert.InDelta(t, 0.333, row.UtilizationRatio, 0.001)
	assert.Equal(t, 1, row.EventCount)
	assert.Equal(t, 8*time.Hour, row.TotalDuration)
}

func TestComputeBoundarySpanningEvent(t *testing.T) {
	// 2024-01-01 22:00 to 2024-01-02 02:00: two hours on each side of
	// midnight, never four on either.
	start := time.Date(2024, 1, 1, 22, 0, 0, 0, time.UTC)
	events := []extract.EquipmentEvent{
		dated("EXC-12", start, start.Add(4*time.Hour), extract.EventOperating),
	}

	rows, warnings := Compute(events, GranularityDay, AvailabilityPolicy{HoursPerDay: 24}, time.UTC)

	assert.Empty(t, warnings)
	require.Len(t, rows, 2)

	assert.Equal(t, "2024-01-01", rows[0].Period)
	assert.Equal(t, 2*time.Hour, rows[0].TotalDuration)
	assert.Equal(t, 1, rows[0].EventCount, "event counts once, in its start period")

	assert.Equal(t, "2024-01-02", rows[1].Period)
	assert.Equal(t, 2*time.Hour, rows[1].TotalDuration)
	assert.Equal(t, 0, rows[1].EventCount)

	total := rows[0].TotalDuration + rows[1].TotalDuration
	assert.Equal(t, 4*time.Hour, total, "no double counting, no truncation loss")
}

func TestComputeClampsUtilization(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	events := []extract.EquipmentEvent{
		dated("EXC-12", start, start.Add(10*time.Hour), extract.EventOperating),
		dated("EXC-12", start.Add(2*time.Hour), start.Add(12*time.Hour), extract.EventOperating),
	}

	rows, warnings := Compute(events, GranularityDay, AvailabilityPolicy{HoursPerDay: 12}, time.UTC)

	require.Len(t, rows, 1)
	assert.Equal(t, 1.0, rows[0].UtilizationRatio, "ratio is clamped to 1.0")
	require.Len(t, warnings, 1)
	assert.Equal(t, WarningUtilizationClamped, warnings[0].Code)
	assert.Equal(t, "EXC-12", warnings[0].EquipmentID)
}

func TestComputeNonOperatingExcludedFromUtilization(t *testing.T) {
	start := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	events := []extract.EquipmentEvent{
		dated("EXC-12", start, start.Add(6*time.Hour), extract.EventOperating),
		dated("EXC-12", start.Add(6*time.Hour), start.Add(12*time.Hour), extract.EventMaintenance),
	}

	rows, _ := Compute(events, GranularityDay, AvailabilityPolicy{HoursPerDay: 24}, time.UTC)

	require.Len(t, rows, 1)
	assert.InDelta(t, 0.25, rows[0].UtilizationRatio, 0.001, "only operating time counts toward utilization")
	assert.Equal(t, 12*time.Hour, rows[0].TotalDuration, "total duration covers all event types")
	assert.Equal(t, 1, rows[0].EventCount, "only operating events are counted")
}

func TestComputeCategoryComesFromFirstEvent(t *testing.T) {
	start := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	first := dated("EXC-12", start, start.Add(2*time.Hour), extract.EventOperating)
	first.Category = "fishing"
	second := dated("EXC-12", start.Add(2*time.Hour), start.Add(4*time.Hour), extract.EventOperating)
	second.Category = "milling"

	rows, _ := Compute([]extract.EquipmentEvent{first, second}, GranularityDay, AvailabilityPolicy{HoursPerDay: 24}, time.UTC)

	require.Len(t, rows, 1)
	assert.Equal(t, "fishing", rows[0].Category)
	assert.Equal(t, 4*time.Hour, rows[0].TotalDuration)
}

func TestComputePerEquipmentAvailability(t *testing.T) {
	start := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	events := []extract.EquipmentEvent{
		dated("EXC-12", start, start.Add(6*time.Hour), extract.EventOperating),
	}
	avail := AvailabilityPolicy{
		HoursPerDay:  24,
		PerEquipment: map[string]float64{"EXC-12": 12},
	}

	rows, _ := Compute(events, GranularityDay, avail, time.UTC)

	require.Len(t, rows, 1)
	assert.InDelta(t, 0.5, rows[0].UtilizationRatio, 0.001)
}

func TestComputeUndatedEventWarns(t *testing.T) {
	events := []extract.EquipmentEvent{
		{Row: 7, EquipmentID: "EXC-12", EventType: extract.EventOperating, Duration: 4 * time.Hour},
	}

	rows, warnings := Compute(events, GranularityDay, AvailabilityPolicy{HoursPerDay: 24}, time.UTC)

	assert.Empty(t, rows)
	require.Len(t, warnings, 1)
	assert.Equal(t, WarningUndatedEvent, warnings[0].Code)
}

func TestComputeWeekAndMonthBuckets(t *testing.T) {
	// 2024-06-15 is a Saturday; its ISO week starts Monday 2024-06-10.
	start := time.Date(2024, 6, 15, 8, 0, 0, 0, time.UTC)
	events := []extract.EquipmentEvent{
		dated("FT1", start, start.Add(12*time.Hour), extract.EventOperating),
	}

	weekRows, _ := Compute(events, GranularityWeek, AvailabilityPolicy{HoursPerDay: 24}, time.UTC)
	require.Len(t, weekRows, 1)
	assert.Equal(t, "2024-W24", weekRows[0].Period)
	assert.Equal(t, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), weekRows[0].PeriodStart)
	assert.InDelta(t, 12.0/(7*24), weekRows[0].UtilizationRatio, 0.001)

	monthRows, _ := Compute(events, GranularityMonth, AvailabilityPolicy{HoursPerDay: 24}, time.UTC)
	require.Len(t, monthRows, 1)
	assert.Equal(t, "2024-06", monthRows[0].Period)
	assert.InDelta(t, 12.0/(30*24), monthRows[0].UtilizationRatio, 0.001)
}

func TestComputeIsDeterministic(t *testing.T) {
	base := time.Date(2024, 6, 15, 6, 0, 0, 0, time.UTC)
	var events []extract.EquipmentEvent
	for day := 0; day < 5; day++ {
		for _, id := range []string{"FT3", "FT1", "FT2"} {
			s := base.AddDate(0, 0, day)
			events = append(events, dated(id, s, s.Add(7*time.Hour), extract.EventOperating))
		}
	}

	rows1, warn1 := Compute(events, GranularityDay, AvailabilityPolicy{HoursPerDay: 24}, time.UTC)
	rows2, warn2 := Compute(events, GranularityDay, AvailabilityPolicy{HoursPerDay: 24}, time.UTC)

	assert.Equal(t, rows1, rows2)
	assert.Equal(t, warn1, warn2)
	for i := 1; i < len(rows1); i++ {
		prev, cur := rows1[i-1], rows1[i]
		ordered := prev.EquipmentID < cur.EquipmentID ||
			(prev.EquipmentID == cur.EquipmentID && prev.PeriodStart.Before(cur.PeriodStart))
		assert.True(t, ordered, "rows must be sorted by equipment then period")
	}
}

func TestParseGranularity(t *testing.T) {
	g, err := ParseGranularity("")
	assert.NoError(t, err)
	assert.Equal(t, GranularityDay, g)

	g, err = ParseGranularity("week")
	assert.NoError(t, err)
	assert.Equal(t, GranularityWeek, g)

	_, err = ParseGranularity("fortnight")
	assert.Error(t, err)
}
