// Package report holds the pure aggregation helpers behind the admin reports:
// date-range presets, bucket granularity, group-by counts and gap-filled series.
package report

import (
	"strings"
	"time"

	"github.com/vertinimas/portal/internal/domain/shared"
)

// DateLayout is the wire format of custom range bounds
const DateLayout = "2006-01-02"

// maxCustomSpan bounds custom ranges so series stay small
const maxCustomSpan = 10 * 366 * 24 * time.Hour

// Preset is a named shorthand for a date range
type Preset string

const (
	PresetToday  Preset = "today"
	PresetWeek   Preset = "week"
	PresetMonth  Preset = "month"
	PresetYear   Preset = "year"
	PresetCustom Preset = "custom"
)

var (
	ErrUnknownPreset   = shared.ErrInvalidInput.WithReason("report.preset_invalid", "Unknown date range preset %q")
	ErrInvalidDate     = shared.ErrInvalidInput.WithReason("report.date_invalid", "%s: invalid date format, expected YYYY-MM-DD")
	ErrMissingDate     = shared.ErrInvalidInput.WithReason("report.date_required", "%s is required for a custom range")
	ErrRangeReversed   = shared.ErrInvalidInput.WithReason("report.range_reversed", "Start date must not be after end date")
	ErrRangeTooLong    = shared.ErrInvalidInput.WithReason("report.range_too_long", "Date range must not exceed 10 years")
	ErrUnknownReport   = shared.ErrInvalidInput.WithReason("report.kind_invalid", "Unknown report %q")
	ErrUnknownFormat   = shared.ErrInvalidInput.WithReason("report.format_invalid", "Unknown export format %q")
	ErrUnknownGrouping = shared.ErrInvalidInput.WithReason("report.granularity_invalid", "Unknown granularity %q")
)

// ParsePreset normalizes a preset name. An empty name means month.
func ParsePreset(s string) (Preset, error) {
	p := Preset(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case "":
		return PresetMonth, nil
	case PresetToday, PresetWeek, PresetMonth, PresetYear, PresetCustom:
		return p, nil
	}
	return "", ErrUnknownPreset.WithArgs(s)
}

// DateRange is a closed interval [Start, End]
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the range
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Days returns the number of calendar days the range touches
func (r DateRange) Days() int {
	s := StartOfDay(r.Start)
	e := StartOfDay(r.End)
	days := 1
	for d := s; d.Before(e); d = d.AddDate(0, 0, 1) {
		days++
	}
	return days
}

// FromLabel returns the start date formatted as YYYY-MM-DD
func (r DateRange) FromLabel() string {
	return r.Start.Format(DateLayout)
}

// ToLabel returns the end date formatted as YYYY-MM-DD
func (r DateRange) ToLabel() string {
	return r.End.Format(DateLayout)
}

// StartOfDay truncates t to midnight in its own location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable instant of t's day
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// ResolveRange turns a preset into concrete instants in loc. Named presets
// end at the end of today; custom ranges take inclusive YYYY-MM-DD bounds.
func ResolveRange(preset Preset, now time.Time, from, to string, loc *time.Location) (DateRange, error) {
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)
	today := StartOfDay(now)
	end := EndOfDay(now)

	switch preset {
	case "", PresetMonth:
		return DateRange{Start: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc), End: end}, nil
	case PresetToday:
		return DateRange{Start: today, End: end}, nil
	case PresetWeek:
		return DateRange{Start: startOfWeek(today), End: end}, nil
	case PresetYear:
		return DateRange{Start: time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, loc), End: end}, nil
	case PresetCustom:
		return customRange(from, to, loc)
	}
	return DateRange{}, ErrUnknownPreset.WithArgs(string(preset))
}

func customRange(from, to string, loc *time.Location) (DateRange, error) {
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)
	if from == "" {
		return DateRange{}, ErrMissingDate.WithArgs("from")
	}
	if to == "" {
		return DateRange{}, ErrMissingDate.WithArgs("to")
	}
	start, err := time.ParseInLocation(DateLayout, from, loc)
	if err != nil {
		return DateRange{}, ErrInvalidDate.WithArgs("from")
	}
	last, err := time.ParseInLocation(DateLayout, to, loc)
	if err != nil {
		return DateRange{}, ErrInvalidDate.WithArgs("to")
	}
	if start.After(last) {
		return DateRange{}, ErrRangeReversed
	}
	r := DateRange{Start: start, End: EndOfDay(last)}
	if r.End.Sub(r.Start) > maxCustomSpan {
		return DateRange{}, ErrRangeTooLong
	}
	return r, nil
}

// startOfWeek returns Monday of the ISO week containing day
func startOfWeek(day time.Time) time.Time {
	offset := (int(day.Weekday()) + 6) % 7
	return StartOfDay(day).AddDate(0, 0, -offset)
}
