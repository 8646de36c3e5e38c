package metrics

import (
	"fmt"
	"time"
)

// Granularity selects the period bucket size for aggregation.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

// ParseGranularity validates a granularity string, defaulting blank to day.
func ParseGranularity(raw string) (Granularity, error) {
	switch Granularity(raw) {
	case "":
		return GranularityDay, nil
	case GranularityDay, GranularityWeek, GranularityMonth:
		return Granularity(raw), nil
	default:
		return "", fmt.Errorf("unknown granularity %q", raw)
	}
}

// periodStart truncates t to the start of its period. Weeks start Monday;
// months are calendar months.
func periodStart(t time.Time, g Granularity, loc *time.Location) time.Time {
	t = t.In(loc)
	switch g {
	case GranularityWeek:
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		offset := (int(day.Weekday()) + 6) % 7 // Monday == 0
		return day.AddDate(0, 0, -offset)
	case GranularityMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	}
}

// periodEnd returns the exclusive end of the period starting at start.
func periodEnd(start time.Time, g Granularity) time.Time {
	switch g {
	case GranularityWeek:
		return start.AddDate(0, 0, 7)
	case GranularityMonth:
		return start.AddDate(0, 1, 0)
	default:
		return start.AddDate(0, 0, 1)
	}
}

// periodLabel renders the stable identifier used in API responses:
// "2024-01-01" for days, "2024-W23" for weeks, "2024-06" for months.
func periodLabel(start time.Time, g Granularity) string {
	switch g {
	case GranularityWeek:
		year, week := start.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case GranularityMonth:
		return start.Format("2006-01")
	default:
		return start.Format("2006-01-02")
	}
}
