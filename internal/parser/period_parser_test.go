package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var now = time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)

func TestParseMonthYear(t *testing.T) {
	cases := []struct {
		name    string
		month   string
		year    string
		want    MonthYear
		invalid bool
	}{
		{name: "explicit", month: "2", year: "2023", want: MonthYear{time.February, 2023}},
		{name: "padded", month: " 07 ", year: "2024", want: MonthYear{time.July, 2024}},
		{name: "missing", want: MonthYear{time.March, 2024}},
		{name: "month only", month: "12", want: MonthYear{time.December, 2024}},
		{name: "month out of range", month: "13", year: "2022", want: MonthYear{time.March, 2022}, invalid: true},
		{name: "garbage", month: "march", year: "twenty", want: MonthYear{time.March, 2024}, invalid: true},
		{name: "year too small", month: "1", year: "12", want: MonthYear{time.January, 2024}, invalid: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseMonthYear(tc.month, tc.year, now)
			assert.Equal(t, tc.want, got)
			if tc.invalid {
				assert.ErrorIs(t, err, ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseISOWeek(t *testing.T) {
	cases := []struct {
		name    string
		week    string
		year    string
		want    ISOWeek
		invalid bool
	}{
		{name: "explicit", week: "1", year: "2025", want: ISOWeek{2025, 1}},
		{name: "missing", want: ISOWeek{2024, 11}},
		{name: "week 53 exists", week: "53", year: "2020", want: ISOWeek{2020, 53}},
		{name: "week 53 missing", week: "53", year: "2023", want: ISOWeek{2023, 11}, invalid: true},
		{name: "zero", week: "0", want: ISOWeek{2024, 11}, invalid: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseISOWeek(tc.week, tc.year, now)
			assert.Equal(t, tc.want, got)
			if tc.invalid {
				assert.ErrorIs(t, err, ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWeeksInYear(t *testing.T) {
	assert.Equal(t, 53, WeeksInYear(2020))
	assert.Equal(t, 52, WeeksInYear(2023))
	assert.Equal(t, 52, WeeksInYear(2024))
	assert.Equal(t, 53, WeeksInYear(2026))
}
