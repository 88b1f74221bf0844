package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrValidation indicates malformed user input.
var ErrValidation = errors.New("validation failed")

const (
	minYear = 1970
	maxYear = 9999
)

// MonthYear identifies a calendar month
type MonthYear struct {
	Month time.Month
	Year  int
}

// ISOWeek identifies an ISO-8601 week
type ISOWeek struct {
	Year int
	Week int
}

// ParseMonthYear parses month (1-12) and year query values. Missing
// values default to now's month and year. Invalid values also default, and
// the returned error (wrapping ErrValidation) says which ones were replaced;
// the result is always usable.
func ParseMonthYear(month, year string, now time.Time) (MonthYear, error) {
	result := MonthYear{Month: now.Month(), Year: now.Year()}
	var problems []string

	if m, ok, err := parseBounded(month, 1, 12); err != nil {
		problems = append(problems, fmt.Sprintf("month %q", month))
	} else if ok {
		result.Month = time.Month(m)
	}

	if y, ok, err := parseBounded(year, minYear, maxYear); err != nil {
		problems = append(problems, fmt.Sprintf("year %q", year))
	} else if ok {
		result.Year = y
	}

	return result, problemsErr(problems)
}

// ParseISOWeek parses week (1-53) and ISO year query values with the same
// defaulting rules as ParseMonthYear. A week the year does not have (53 in a
// 52-week year) is rejected.
func ParseISOWeek(week, year string, now time.Time) (ISOWeek, error) {
	nowYear, nowWeek := now.ISOWeek()
	result := ISOWeek{Year: nowYear, Week: nowWeek}
	var problems []string

	y, yearSet, err := parseBounded(year, minYear, maxYear)
	if err != nil {
		problems = append(problems, fmt.Sprintf("year %q", year))
	} else if yearSet {
		result.Year = y
	}

	w, weekSet, err := parseBounded(week, 1, 53)
	switch {
	case err != nil:
		problems = append(problems, fmt.Sprintf("week %q", week))
	case weekSet && w > WeeksInYear(result.Year):
		problems = append(problems, fmt.Sprintf("week %q", week))
	case weekSet:
		result.Week = w
	}

	// A defaulted week may not exist in the requested year
	if result.Week > WeeksInYear(result.Year) {
		result.Week = WeeksInYear(result.Year)
	}

	return result, problemsErr(problems)
}

// WeeksInYear returns 52 or 53, the number of ISO weeks in year.
func WeeksInYear(year int) int {
	// Dec 28 always falls in the last ISO week of its year
	_, week := time.Date(year, time.December, 28, 12, 0, 0, 0, time.UTC).ISOWeek()
	return week
}

func parseBounded(raw string, lo, hi int) (value int, ok bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, err
	}
	if n < lo || n > hi {
		return 0, false, fmt.Errorf("must be between %d and %d", lo, hi)
	}
	return n, true, nil
}

func problemsErr(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: invalid %s, using current period", ErrValidation, strings.Join(problems, ", "))
}
