package datagrid

import (
	"testing"
	"time"
)

func TestParseWhenFormats(t *testing.T) {
	cases := []struct {
		in   interface{}
		want time.Time
	}{
		{"Mar 5, 2021", time.Date(2021, 3, 5, 0, 0, 0, 0, time.Local)},
		{"3/5/2021", time.Date(2021, 3, 5, 0, 0, 0, 0, time.Local)},
		{"3/5/2021 1:02:03 PM", time.Date(2021, 3, 5, 13, 2, 3, 0, time.Local)},
		{"Mar 5, 2021 9:15:00 AM", time.Date(2021, 3, 5, 9, 15, 0, 0, time.Local)},
		{"2021-03-05", time.Date(2021, 3, 5, 0, 0, 0, 0, time.Local)},
		{"2021-03-05T14:30:00", time.Date(2021, 3, 5, 14, 30, 0, 0, time.Local)},
		{"2021-03-05T14:30:00Z", time.Date(2021, 3, 5, 14, 30, 0, 0, time.UTC)},
	}
	for _, c := range cases {
		got, ok := parseWhen(c.in)
		if !ok {
			t.Errorf("parseWhen(%q) failed, expected %v", c.in, c.want)
			continue
		}
		if !got.Equal(c.want) {
			t.Errorf("parseWhen(%q) = %v, expected %v", c.in, got, c.want)
		}
	}
}

func TestParseWhenTwelveHourClock(t *testing.T) {
	got, ok := parseWhen("12/31/2020 12:00:00 AM")
	if !ok || got.Hour() != 0 {
		t.Errorf("12 AM must map to hour 0, got %v (ok=%v)", got, ok)
	}

	got, ok = parseWhen("12/31/2020 12:30:00 PM")
	if !ok || got.Hour() != 12 {
		t.Errorf("12 PM must stay hour 12, got %v (ok=%v)", got, ok)
	}

	got, ok = parseWhen("12/31/2020 11:59:00 PM")
	if !ok || got.Hour() != 23 {
		t.Errorf("11 PM must map to hour 23, got %v (ok=%v)", got, ok)
	}
}

func TestParseWhenRejectsGarbage(t *testing.T) {
	for _, in := range []interface{}{nil, "", "   ", "not a date", "13/45/2020 huh"} {
		if got, ok := parseWhen(in); ok {
			t.Errorf("parseWhen(%v) should fail, got %v", in, got)
		}
	}
}

func TestParseWhenPassesThroughTime(t *testing.T) {
	now := time.Now()
	got, ok := parseWhen(now)
	if !ok || !got.Equal(now) {
		t.Errorf("time.Time values pass through unchanged, got %v (ok=%v)", got, ok)
	}

	var nilTime *time.Time
	if _, ok := parseWhen(nilTime); ok {
		t.Errorf("nil *time.Time must fail")
	}
}

func TestDayBoundaries(t *testing.T) {
	d := time.Date(2024, 6, 10, 13, 45, 0, 0, time.Local)
	lo := startOfDay(d)
	hi := endOfDay(d)

	if lo.Hour() != 0 || lo.Minute() != 0 || lo.Second() != 0 || lo.Nanosecond() != 0 {
		t.Errorf("startOfDay: got %v", lo)
	}
	if hi.Hour() != 23 || hi.Minute() != 59 || hi.Second() != 59 || hi.Nanosecond() != 999_000_000 {
		t.Errorf("endOfDay: got %v", hi)
	}
}

func TestPresetRanges(t *testing.T) {
	// Wednesday, May 15th 2024.
	now := time.Date(2024, 5, 15, 11, 30, 0, 0, time.Local)
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
	}

	cases := []struct {
		preset     DatePreset
		start, end time.Time
	}{
		{PresetThisWeek, day(2024, 5, 12), day(2024, 5, 15)},
		{PresetLastWeek, day(2024, 5, 5), day(2024, 5, 11)},
		{PresetThisMonth, day(2024, 5, 1), day(2024, 5, 15)},
		{PresetLastMonth, day(2024, 4, 1), day(2024, 4, 30)},
	}
	for _, c := range cases {
		start, end, ok := presetRange(c.preset, now)
		if !ok {
			t.Errorf("%s: preset not recognized", c.preset)
			continue
		}
		if !start.Equal(c.start) || !end.Equal(c.end) {
			t.Errorf("%s: got %v..%v, expected %v..%v", c.preset, start, end, c.start, c.end)
		}
	}

	if _, _, ok := presetRange("fortnight", now); ok {
		t.Errorf("Unknown preset must not resolve")
	}
}

func TestPresetRangeAcrossYearBoundary(t *testing.T) {
	now := time.Date(2024, 1, 3, 9, 0, 0, 0, time.Local)
	start, end, ok := presetRange(PresetLastMonth, now)
	if !ok {
		t.Fatal("lastMonth not recognized")
	}
	if start.Year() != 2023 || start.Month() != time.December || start.Day() != 1 {
		t.Errorf("lastMonth start: got %v", start)
	}
	if end.Year() != 2023 || end.Month() != time.December || end.Day() != 31 {
		t.Errorf("lastMonth end: got %v", end)
	}
}
