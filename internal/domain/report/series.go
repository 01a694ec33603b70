package report

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Granularity is the width of one time-series bucket
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

const (
	dayBucketLimit  = 31 * 24 * time.Hour
	weekBucketLimit = 184 * 24 * time.Hour
)

// ParseGranularity accepts an explicit override. Empty returns "" so callers
// fall back to ChooseGranularity.
func ParseGranularity(s string) (Granularity, error) {
	g := Granularity(strings.ToLower(strings.TrimSpace(s)))
	switch g {
	case "", GranularityDay, GranularityWeek, GranularityMonth:
		return g, nil
	}
	return "", ErrUnknownGrouping.WithArgs(s)
}

// ChooseGranularity picks day buckets for spans up to a month, weeks up to
// about half a year and months beyond that.
func ChooseGranularity(start, end time.Time) Granularity {
	span := end.Sub(start)
	switch {
	case span <= dayBucketLimit:
		return GranularityDay
	case span <= weekBucketLimit:
		return GranularityWeek
	default:
		return GranularityMonth
	}
}

// BucketStart truncates t to the start of its bucket in t's location.
// Weeks start on Monday.
func BucketStart(t time.Time, g Granularity) time.Time {
	switch g {
	case GranularityWeek:
		return startOfWeek(t)
	case GranularityMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	default:
		return StartOfDay(t)
	}
}

// NextBucket returns the start of the bucket following b
func NextBucket(b time.Time, g Granularity) time.Time {
	switch g {
	case GranularityWeek:
		return b.AddDate(0, 0, 7)
	case GranularityMonth:
		return b.AddDate(0, 1, 0)
	default:
		return b.AddDate(0, 0, 1)
	}
}

// BucketKey formats the bucket containing t. Day and week buckets use the
// first day's date, month buckets use YYYY-MM.
func BucketKey(t time.Time, g Granularity) string {
	b := BucketStart(t, g)
	if g == GranularityMonth {
		return b.Format("2006-01")
	}
	return b.Format(DateLayout)
}

// Point is a single observation fed into a series
type Point struct {
	At    time.Time
	Count int
	Total decimal.Decimal
}

// SeriesPoint is one bucket of a gap-filled series
type SeriesPoint struct {
	Bucket time.Time       `json:"bucket"`
	Label  string          `json:"label"`
	Count  int             `json:"count"`
	Total  decimal.Decimal `json:"total"`
}

// FillGaps sums points into buckets and returns exactly one entry per
// calendar unit from BucketStart(start) to BucketStart(end) inclusive, in
// ascending order. Points outside [start, end] are dropped.
func FillGaps(points []Point, start, end time.Time, g Granularity) []SeriesPoint {
	if end.Before(start) {
		return []SeriesPoint{}
	}
	loc := start.Location()
	end = end.In(loc)

	first := BucketStart(start, g)
	last := BucketStart(end, g)

	index := make(map[string]int)
	series := make([]SeriesPoint, 0)
	for b := first; !b.After(last); b = NextBucket(b, g) {
		key := BucketKey(b, g)
		index[key] = len(series)
		series = append(series, SeriesPoint{Bucket: b, Label: key, Total: decimal.Zero})
	}

	for _, p := range points {
		at := p.At.In(loc)
		if at.Before(start) || at.After(end) {
			continue
		}
		i, ok := index[BucketKey(at, g)]
		if !ok {
			continue
		}
		series[i].Count += p.Count
		series[i].Total = series[i].Total.Add(p.Total)
	}
	return series
}
