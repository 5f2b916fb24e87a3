// Package dates holds the calendar helpers shared by the source adapters:
// expanding a range into daily index keys, bounding timestamps to a range,
// and parsing the Indonesian-language dates some sites print.
package dates

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

// ErrInvalidRange is returned when a range ends before it starts.
var ErrInvalidRange = errors.New("end date is before start date")

// DailyLayout is the path format Berau Terkini uses for its daily index.
const DailyLayout = "2006/01/02"

// QueryLayout is the day/month/year format Detik expects in search queries.
const QueryLayout = "02/01/2006"

// ISODate is the normalized output format for parsed publication dates.
const ISODate = "2006-01-02"

// DateRange is an inclusive pair of calendar dates. Only the year, month and
// day of Start and End are significant.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange builds a range truncated to calendar days in UTC.
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: civilDay(start), End: civilDay(end)}
}

// ParseDateRange parses two YYYY-MM-DD strings into a validated range.
func ParseDateRange(start, end string) (DateRange, error) {
	s, err := time.Parse(ISODate, strings.TrimSpace(start))
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid start date: %w", err)
	}
	e, err := time.Parse(ISODate, strings.TrimSpace(end))
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid end date: %w", err)
	}
	r := NewDateRange(s, e)
	if err := r.Validate(); err != nil {
		return DateRange{}, err
	}
	return r, nil
}

// Validate rejects ranges whose end precedes their start.
func (r DateRange) Validate() error {
	if civilDay(r.End).Before(civilDay(r.Start)) {
		return fmt.Errorf("%w: %s > %s", ErrInvalidRange,
			r.Start.Format(ISODate), r.End.Format(ISODate))
	}
	return nil
}

// Days returns the number of calendar days covered, both ends included.
// An invalid range covers zero days.
func (r DateRange) Days() int {
	start, end := civilDay(r.Start), civilDay(r.End)
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Hours()/24) + 1
}

// Contains reports whether t falls on any day of the range.
func (r DateRange) Contains(t time.Time) bool {
	return InRange(t, r.Start, r.End)
}

// String implements fmt.Stringer.
func (r DateRange) String() string {
	return r.Start.Format(ISODate) + ".." + r.End.Format(ISODate)
}

// ExpandDaily lists every day from start to end inclusive, formatted with
// layout, in ascending order. It returns an empty slice when end is before
// start.
func ExpandDaily(start, end time.Time, layout string) []string {
	first, last := civilDay(start), civilDay(end)
	if last.Before(first) {
		return []string{}
	}

	days := make([]string, 0, int(last.Sub(first).Hours()/24)+1)
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(layout))
	}
	return days
}

// InRange reports whether t falls between the start of start's day and the
// last instant of end's day. Bounds are taken on t's own calendar so a
// timestamp with its zone stripped compares by wall clock.
func InRange(t, start, end time.Time) bool {
	loc := t.Location()
	lower := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
	upper := time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 999999999, loc)
	return !t.Before(lower) && !t.After(upper)
}

// civilDay drops the clock and zone, keeping the calendar date.
func civilDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// localeTokens maps Indonesian weekday and month names to English. Names
// that are spelled the same in both languages map to themselves.
var localeTokens = map[string]string{
	"senin":  "Monday",
	"selasa": "Tuesday",
	"rabu":   "Wednesday",
	"kamis":  "Thursday",
	"jumat":  "Friday",
	"jum'at": "Friday",
	"jum’at": "Friday",
	"sabtu":  "Saturday",
	"minggu": "Sunday",

	"januari":   "January",
	"februari":  "February",
	"maret":     "March",
	"april":     "April",
	"mei":       "May",
	"juni":      "June",
	"juli":      "July",
	"agustus":   "August",
	"september": "September",
	"oktober":   "October",
	"november":  "November",
	"desember":  "December",
}

var localeTokenPattern = buildTokenPattern(localeTokens)

func buildTokenPattern(tokens map[string]string) *regexp.Regexp {
	keys := make([]string, 0, len(tokens))
	for k := range tokens {
		keys = append(keys, regexp.QuoteMeta(k))
	}
	// Longest first so "jum'at" wins over "jumat" style prefixes.
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(keys, "|") + `)\b`)
}

// TranslateLocaleTokens replaces whole-word Indonesian weekday and month
// names in s with their English equivalents. Matching is case-insensitive
// and never touches a token embedded in a longer word.
func TranslateLocaleTokens(s string) string {
	return localeTokenPattern.ReplaceAllStringFunc(s, func(tok string) string {
		if en, ok := localeTokens[strings.ToLower(tok)]; ok {
			return en
		}
		return tok
	})
}

var (
	citationPattern  = regexp.MustCompile(`\[\d+\]|\(\d+\)`)
	localeDatePrefix = regexp.MustCompile(`([A-Za-z]+),\s*(\d{1,2})\s+([A-Za-z]+)\s+(\d{4})`)
)

// LocaleDateLayout is the layout a translated locale date is parsed with.
const LocaleDateLayout = "Monday, 2 January 2006"

// StripCitations removes numeric citation markers such as "[3]" or "(12)"
// and collapses the whitespace left behind.
func StripCitations(s string) string {
	return strings.Join(strings.Fields(citationPattern.ReplaceAllString(s, " ")), " ")
}

// ParseLocaleDate parses an Indonesian date such as
// "Senin, 15 Januari 2024 10:30 WITA [2]". Citation markers are stripped,
// locale names translated, and the weekday/day/month/year prefix parsed.
// Anything after the year is ignored.
func ParseLocaleDate(raw string) (time.Time, error) {
	cleaned := TranslateLocaleTokens(StripCitations(raw))

	m := localeDatePrefix.FindStringSubmatch(cleaned)
	if m == nil {
		return time.Time{}, fmt.Errorf("no locale date in %q", raw)
	}

	normalized := fmt.Sprintf("%s, %s %s %s", m[1], m[2], m[3], m[4])
	t, err := time.Parse(LocaleDateLayout, normalized)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse locale date %q: %w", raw, err)
	}
	return t, nil
}

var timestampPattern = regexp.MustCompile(
	`^\s*(\d{4}-\d{2}-\d{2})(?:[T ](\d{2}:\d{2})(?::(\d{2}))?(?:\.\d+)?)?`)

// ParseTimestamp parses an ISO-8601-like timestamp and discards its zone
// designator, returning the wall-clock time in UTC. "2024-01-15T23:30:00+08:00"
// becomes 2024-01-15 23:30:00 UTC.
func ParseTimestamp(raw string) (time.Time, error) {
	m := timestampPattern.FindStringSubmatch(raw)
	if m == nil {
		return time.Time{}, fmt.Errorf("no timestamp in %q", raw)
	}

	clock := "00:00"
	if m[2] != "" {
		clock = m[2]
	}
	seconds := "00"
	if m[3] != "" {
		seconds = m[3]
	}

	t, err := time.Parse("2006-01-02 15:04:05", m[1]+" "+clock+":"+seconds)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", raw, err)
	}
	return t, nil
}
