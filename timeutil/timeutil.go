// Package timeutil converts between Julian dates (the time coordinate the
// ephemeris and scanner packages operate in) and calendar time in an
// IANA-zoned local timezone (the coordinate every external-facing record
// is reported in), and computes the UTC instant bounds of a calendar
// month.
package timeutil

import (
	"time"

	"github.com/pkg/errors"
)

const (
	unixEpochJD = 2440587.5 // Julian date of 1970-01-01T00:00:00 UTC
	secPerDay   = 86400.0
)

// JulianDay returns the Julian date (UT) corresponding to t.
func JulianDay(t time.Time) float64 {
	return unixEpochJD + float64(t.UnixNano())/1e9/secPerDay
}

// FromJulianDay returns the UTC time.Time corresponding to a Julian date.
func FromJulianDay(jd float64) time.Time {
	secs := (jd - unixEpochJD) * secPerDay
	whole := int64(secs)
	frac := secs - float64(whole)
	return time.Unix(whole, int64(frac*1e9)).UTC()
}

// ParseLocal parses a "YYYY-MM-DD" date string as local midnight in the
// named IANA timezone and returns the corresponding time.Time.
func ParseLocal(dateStr, tzName string) (time.Time, error) {
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "timeutil: loading timezone %q", tzName)
	}
	t, err := time.ParseInLocation("2006-01-02", dateStr, loc)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "timeutil: parsing date %q", dateStr)
	}
	return t, nil
}

// FormatLocal converts t (any timezone) to tzName and formats it as
// RFC3339 with the zone offset.
func FormatLocal(t time.Time, tzName string) (string, error) {
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return "", errors.Wrapf(err, "timeutil: loading timezone %q", tzName)
	}
	return t.In(loc).Format(time.RFC3339), nil
}

// wallClockLayout is the wire format every emitted event instant is
// rendered in: a local wall-clock timestamp with no zone suffix.
const wallClockLayout = "2006-01-02 15:04:05"

// FormatWallClock renders t (any timezone) as a "YYYY-MM-DD HH:MM:SS" local
// wall-clock string in tzName.
func FormatWallClock(t time.Time, tzName string) (string, error) {
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return "", errors.Wrapf(err, "timeutil: loading timezone %q", tzName)
	}
	return t.In(loc).Format(wallClockLayout), nil
}

// ParseWallClock parses a "YYYY-MM-DD HH:MM:SS" string as wall-clock time
// in the named IANA timezone. FormatWallClock(ParseWallClock(s, tz), tz)
// round-trips to s for every string this package emits.
func ParseWallClock(s, tzName string) (time.Time, error) {
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "timeutil: loading timezone %q", tzName)
	}
	t, err := time.ParseInLocation(wallClockLayout, s, loc)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "timeutil: parsing wall-clock time %q", s)
	}
	return t, nil
}

// MonthBounds returns the UTC instants of the first instant of the given
// calendar month and the first instant of the following month (an
// exclusive upper bound), as observed in the named IANA timezone. month is
// 1-12; values outside that range are clamped into it so a caller that
// computes month+1 or month-1 without checking the edges still gets a
// valid adjacent month rather than an error.
func MonthBounds(year, month int, tzName string) (start, end time.Time, err error) {
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return time.Time{}, time.Time{}, errors.Wrapf(err, "timeutil: loading timezone %q", tzName)
	}
	year, month = clampMonth(year, month)
	start = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	nextYear, nextMonth := clampMonth(year, month+1)
	end = time.Date(nextYear, time.Month(nextMonth), 1, 0, 0, 0, 0, loc)
	return start, end, nil
}

// clampMonth normalizes a (year, month) pair so month falls within 1-12,
// carrying the overflow/underflow into year.
func clampMonth(year, month int) (int, int) {
	for month > 12 {
		month -= 12
		year++
	}
	for month < 1 {
		month += 12
		year--
	}
	return year, month
}
