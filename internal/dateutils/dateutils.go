// Package dateutils normalizes the transaction dates returned by the
// categorization service (DD/MM/YYYY) and the looser shapes found in
// statement files.
package dateutils

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"fjacquet/ledger-ingest/internal/logging"
	"fjacquet/ledger-ingest/internal/pipelineerror"
)

// Common date layouts
const (
	DateLayoutISO       = "2006-01-02"
	DateLayoutDDMMYYYY  = "02/01/2006"
	DateLayoutEuropean  = "02.01.2006"
	DateLayoutFull      = "2006-01-02 15:04:05"
	DateLayoutWithMonth = "2-Jan-2006"
)

// CommonFormats are tried in order for dates that are not slash separated.
var CommonFormats = []string{
	DateLayoutISO,
	time.RFC3339,
	DateLayoutISO + "T15:04:05",
	DateLayoutFull,
	DateLayoutEuropean,
	"02-01-2006",
	"2006.01.02",
	DateLayoutWithMonth,
	"02-Jan-2006",
	"02 Jan 2006",
	"2 Jan 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 02 2006",
	"Mon, 02 Jan 2006",
}

// Epoch is the sentinel returned by ParseDate for empty or unreadable input.
var Epoch = time.Unix(0, 0).UTC()

// Years outside this range cannot be stored as YYYY-MM-DD.
const (
	MinYear = 1
	MaxYear = 9999
)

var (
	whitespace = regexp.MustCompile(`\s+`)
	leadingInt = regexp.MustCompile(`^[+-]?\d+`)

	logMu sync.RWMutex
	log   = logging.GetLogger()
)

// SetLogger replaces the logger used for sentinel warnings.
func SetLogger(logger logging.Logger) {
	if logger == nil {
		return
	}
	logMu.Lock()
	log = logger
	logMu.Unlock()
}

func getLogger() logging.Logger {
	logMu.RLock()
	defer logMu.RUnlock()
	return log
}

// ParseDate never fails: empty or unreadable input yields Epoch and, for
// unreadable input, a warning. Slash-separated input is read as day, month,
// year; out-of-range parts roll over the way time.Date normalizes them
// (31/02/2024 is 2 March 2024).
func ParseDate(s string) time.Time {
	if strings.TrimSpace(s) == "" {
		return Epoch
	}
	t, err := ParseDateStrict(s)
	if err != nil {
		getLogger().Warn("Unparseable date, using epoch sentinel",
			logging.Field{Key: logging.FieldDate, Value: s})
		return Epoch
	}
	return t
}

// ParseDateStrict is ParseDate returning a *pipelineerror.DateParseError
// instead of the sentinel.
func ParseDateStrict(s string) (time.Time, error) {
	clean := CleanDateString(s)
	if clean == "" {
		return time.Time{}, &pipelineerror.DateParseError{Value: s, Err: errors.New("empty date")}
	}

	if parts := strings.Split(clean, "/"); len(parts) == 3 {
		t, err := parsePositional(s, parts)
		if err != nil {
			return time.Time{}, err
		}
		return checkYear(s, t)
	}

	for _, layout := range CommonFormats {
		if t, err := time.Parse(layout, clean); err == nil {
			return checkYear(s, time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC))
		}
	}
	return time.Time{}, &pipelineerror.DateParseError{Value: s, Err: errors.New("no matching layout")}
}

// checkYear rejects dates whose year, after rollover, falls outside
// MinYear..MaxYear.
func checkYear(raw string, t time.Time) (time.Time, error) {
	if y := t.Year(); y < MinYear || y > MaxYear {
		return time.Time{}, &pipelineerror.DateParseError{Value: raw, Err: fmt.Errorf("year %d out of range", y)}
	}
	return t, nil
}

// parsePositional reads day/month/year with leading-integer semantics, so
// "05/01/2024 10:30" still yields 5 January 2024.
func parsePositional(raw string, parts []string) (time.Time, error) {
	nums := make([]int, 3)
	for i, p := range parts {
		m := leadingInt.FindString(strings.TrimSpace(p))
		if m == "" {
			return time.Time{}, &pipelineerror.DateParseError{Value: raw, Err: errors.New("non-numeric date component")}
		}
		n, err := strconv.Atoi(m)
		if err != nil {
			return time.Time{}, &pipelineerror.DateParseError{Value: raw, Err: err}
		}
		nums[i] = n
	}
	day, month, year := nums[0], nums[1], nums[2]
	if year >= 0 && year < 100 {
		year += 2000
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}

// IsSentinel reports whether t is the epoch sentinel.
func IsSentinel(t time.Time) bool {
	return t.Equal(Epoch)
}

// FormatDDMMYYYY formats t as DD/MM/YYYY.
func FormatDDMMYYYY(t time.Time) string {
	return t.Format(DateLayoutDDMMYYYY)
}

// ToISODate formats a time.Time value as an ISO date (YYYY-MM-DD)
func ToISODate(date time.Time) string {
	return date.Format(DateLayoutISO)
}

// CleanDateString trims and collapses internal whitespace.
func CleanDateString(dateStr string) string {
	return whitespace.ReplaceAllString(strings.TrimSpace(dateStr), " ")
}

// SameDay reports whether a and b fall on the same UTC calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
