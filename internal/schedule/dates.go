package schedule

import (
	"slices"
	"strconv"
	"strings"
	"time"
)

// KeyLayout is the layout of date keys in the sheet (dd/mm/yyyy).
const KeyLayout = "02/01/2006"

// DateResult is the outcome of parsing a date key. Date is only meaningful
// when OK is true.
type DateResult struct {
	Key  string
	Date time.Time
	OK   bool
}

// ParseDateKey parses a day/month/year key in loc. Components are not range
// checked: like time.Date, day 32 of January becomes February 1st. Anything
// that is not three integers separated by slashes fails.
func ParseDateKey(key string, loc *time.Location) DateResult {
	res := DateResult{Key: key}

	parts := strings.Split(strings.TrimSpace(key), "/")
	if len(parts) != 3 {
		return res
	}

	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return res
		}
		nums[i] = n
	}

	if loc == nil {
		loc = time.Local
	}
	res.Date = time.Date(nums[2], time.Month(nums[1]), nums[0], 0, 0, 0, 0, loc)
	res.OK = true
	return res
}

// StartOfDay strips the time of day from t, keeping its location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// FormatKey renders t the way the sheet writes dates.
func FormatKey(t time.Time) string {
	return t.Format(KeyLayout)
}

// UpcomingKeys returns the keys dated today or later, oldest first. Keys that
// do not parse are dropped.
func UpcomingKeys(keys []string, now time.Time) []string {
	today := StartOfDay(now)

	results := make([]DateResult, 0, len(keys))
	for _, key := range keys {
		res := ParseDateKey(key, now.Location())
		if !res.OK || res.Date.Before(today) {
			continue
		}
		results = append(results, res)
	}

	sortResults(results)

	out := make([]string, len(results))
	for i, res := range results {
		out[i] = res.Key
	}
	return out
}

// SortKeys orders keys chronologically, past days included. Keys that do not
// parse are dropped.
func SortKeys(keys []string, loc *time.Location) []string {
	results := make([]DateResult, 0, len(keys))
	for _, key := range keys {
		if res := ParseDateKey(key, loc); res.OK {
			results = append(results, res)
		}
	}
	sortResults(results)

	out := make([]string, len(results))
	for i, res := range results {
		out[i] = res.Key
	}
	return out
}

func sortResults(results []DateResult) {
	slices.SortStableFunc(results, compareResults)
}

// compareResults orders by date, then by key text for keys naming the same day.
func compareResults(a, b DateResult) int {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c
	}
	return strings.Compare(a.Key, b.Key)
}

// IsToday reports whether key names the same calendar day as now.
func IsToday(key string, now time.Time) bool {
	res := ParseDateKey(key, now.Location())
	return res.OK && res.Date.Equal(StartOfDay(now))
}
