// Package resolution picks the time-bucket granularity for a range query
// based on the width of the requested interval.
package resolution

import (
	"errors"
	"fmt"
)

// BucketFormat is the truncation granularity applied to reading timestamps
// before grouping. It is a closed set; the query builder only ever receives
// one of these values.
type BucketFormat int

const (
	FormatSecond BucketFormat = iota // raw resolution, no truncation
	FormatHour
	FormatDay
	FormatMonth
	FormatYear
)

const (
	day  int64 = 24 * 60 * 60
	year int64 = 365 * day

	// Thresholds target at most ~1000 returned rows per query, assuming one
	// raw sample every 5 minutes (12 per hour). Raw data stays under the cap
	// for about 3.5 days; hourly buckets for 40 days; daily for 2.7 years;
	// monthly for 83 years. Beyond that, yearly.
	UngroupedLimit = int64(float64(day) * 3.5)
	HourLimit      = day * 40
	DayLimit       = int64(float64(year) * 2.7)
	MonthLimit     = year * 83
)

// ErrInvalidSpan is returned for zero-width or inverted intervals.
var ErrInvalidSpan = errors.New("query span must be at least one second")

// SelectBucketFormat maps a query span in seconds to a bucket format.
// Tiers are half-open: the first tier whose upper bound exceeds the span wins.
func SelectBucketFormat(spanSeconds int64) (BucketFormat, error) {
	switch {
	case spanSeconds < 1:
		return 0, ErrInvalidSpan
	case spanSeconds < UngroupedLimit:
		return FormatSecond, nil
	case spanSeconds < HourLimit:
		return FormatHour, nil
	case spanSeconds < DayLimit:
		return FormatDay, nil
	case spanSeconds < MonthLimit:
		return FormatMonth, nil
	default:
		return FormatYear, nil
	}
}

// ToCharPattern returns the Postgres to_char pattern that truncates a UTC
// timestamp to this format's bucket boundary. Fixed-width output means
// lexicographic order equals chronological order, so the store can group
// and sort on the formatted string directly.
func (f BucketFormat) ToCharPattern() string {
	switch f {
	case FormatSecond:
		return `YYYY-MM-DD"T"HH24:MI:SS"Z"`
	case FormatHour:
		return `YYYY-MM-DD"T"HH24:00:00"Z"`
	case FormatDay:
		return `YYYY-MM-DD"T"00:00:00"Z"`
	case FormatMonth:
		return `YYYY-MM-01"T"00:00:00"Z"`
	case FormatYear:
		return `YYYY-01-01"T"00:00:00"Z"`
	default:
		panic(fmt.Sprintf("unknown bucket format %d", int(f)))
	}
}

func (f BucketFormat) String() string {
	switch f {
	case FormatSecond:
		return "second"
	case FormatHour:
		return "hour"
	case FormatDay:
		return "day"
	case FormatMonth:
		return "month"
	case FormatYear:
		return "year"
	default:
		return fmt.Sprintf("BucketFormat(%d)", int(f))
	}
}
