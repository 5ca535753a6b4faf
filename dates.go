package datagrid

import (
	"fmt"
	"strings"
	"time"
)

// nativeWhenLayouts cover the broad ISO/RFC forms tried before the
// explicit fallback list. Zoned values keep their offset; everything
// else is read as local time.
var nativeWhenLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
}

// whenLayouts are the explicit fallback patterns, tried in order after
// the native attempt. The order is load-bearing: the numeric M/D/YYYY
// branch is ambiguous against day-first locales and callers depend on
// this tie-break, so do not reorder or "fix" it.
var whenLayouts = []string{
	"Jan 2, 2006",
	"1/2/2006",
	"1/2/2006 3:04:05 PM",
	"Jan 2, 2006 3:04:05 PM",
	"2006-01-02",
	"2006-01-02T15:04:05",
}

// parseWhen maps a raw field value to a comparable instant. The second
// return is false when the value has no recognizable date form; the
// caller must treat that as "exclude from date filtering", never as
// epoch zero.
func parseWhen(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return t, true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, true
	}

	s := strings.TrimSpace(fmt.Sprintf("%v", v))
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range nativeWhenLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	for _, layout := range whenLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// startOfDay and endOfDay turn a calendar date into the inclusive
// range boundaries: 00:00:00.000 and 23:59:59.999 of that day.
func startOfDay(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
}

func endOfDay(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 999_000_000, d.Location())
}

// DatePreset is a named shortcut that fills both ends of the range at
// once. Selecting a preset and editing a bound by hand are mutually
// exclusive.
type DatePreset string

const (
	PresetLastMonth DatePreset = "lastMonth"
	PresetLastWeek  DatePreset = "lastWeek"
	PresetThisMonth DatePreset = "thisMonth"
	PresetThisWeek  DatePreset = "thisWeek"
)

// presetRange computes the concrete calendar range for a preset
// relative to now. Weeks start on Sunday.
func presetRange(p DatePreset, now time.Time) (start, end time.Time, ok bool) {
	today := startOfDay(now)
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	weekStart := today.AddDate(0, 0, -int(today.Weekday()))

	switch p {
	case PresetLastMonth:
		return firstOfMonth.AddDate(0, -1, 0), firstOfMonth.AddDate(0, 0, -1), true
	case PresetLastWeek:
		end = weekStart.AddDate(0, 0, -1)
		return end.AddDate(0, 0, -6), end, true
	case PresetThisMonth:
		return firstOfMonth, today, true
	case PresetThisWeek:
		return weekStart, today, true
	}
	return time.Time{}, time.Time{}, false
}
