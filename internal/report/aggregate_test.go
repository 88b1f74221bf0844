package report

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/punch/internal/models"
)

func closed(start time.Time, d time.Duration) models.TimeTracker {
	t := models.TimeTracker{StartAt: start}
	t.Close(start.Add(d))
	return t
}

func at(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02T15:04", s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func TestDailySeriesSingleFullDay(t *testing.T) {
	trackers := []models.TimeTracker{closed(at("2024-03-01T09:00"), 8*time.Hour)}

	series, err := DailySeries(GroupByDay(trackers, time.UTC), time.March, 2024)
	require.NoError(t, err)
	require.Len(t, series, 31)

	assert.Equal(t, "2024-03-01", series[0].Date)
	assert.Equal(t, "01", series[0].Day)
	assert.Equal(t, 8.0, series[0].WorkingHours)
	assert.Equal(t, TagComplete, series[0].Tag)

	for _, p := range series[1:] {
		assert.Zero(t, p.WorkingHours, p.Date)
		assert.Equal(t, TagIncomplete, p.Tag)
	}
}

func TestDailySeriesCoversEveryDay(t *testing.T) {
	cases := []struct {
		month time.Month
		year  int
		days  int
	}{
		{time.January, 2023, 31},
		{time.February, 2023, 28},
		{time.February, 2024, 29},
		{time.February, 1900, 28},
		{time.February, 2000, 29},
		{time.April, 2024, 30},
		{time.December, 2024, 31},
	}

	for _, tc := range cases {
		series, err := DailySeries(nil, tc.month, tc.year)
		require.NoError(t, err)
		require.Len(t, series, tc.days, "%s %d", tc.month, tc.year)

		prev := time.Time{}
		for i, p := range series {
			day, err := time.Parse(DayKeyLayout, p.Date)
			require.NoError(t, err)
			assert.Equal(t, i+1, day.Day())
			assert.Equal(t, tc.month, day.Month())
			if !prev.IsZero() {
				assert.Equal(t, prev.AddDate(0, 0, 1), day)
			}
			prev = day
		}
	}
}

func TestDailySeriesInvalidMonth(t *testing.T) {
	_, err := DailySeries(nil, 13, 2024)
	assert.Error(t, err)
}

func TestDailySeriesSumsAndRounds(t *testing.T) {
	trackers := []models.TimeTracker{
		closed(at("2024-03-04T09:00"), 3*time.Hour+20*time.Minute),
		closed(at("2024-03-04T13:00"), 4*time.Hour+39*time.Minute),
		closed(at("2024-03-05T09:00"), 7*time.Hour+58*time.Minute),
	}

	series, err := DailySeries(GroupByDay(trackers, time.UTC), time.March, 2024)
	require.NoError(t, err)

	// 7h59m
	assert.Equal(t, 8.0, series[3].WorkingHours)
	assert.Equal(t, TagIncomplete, series[3].Tag)
	assert.Equal(t, 8.0, series[4].WorkingHours)
	assert.Equal(t, TagIncomplete, series[4].Tag)
}

func TestDailySeriesRejectsOpenTrackers(t *testing.T) {
	open := models.TimeTracker{StartAt: at("2024-03-01T09:00")}
	_, err := DailySeries(GroupByDay([]models.TimeTracker{open}, time.UTC), time.March, 2024)
	assert.ErrorIs(t, err, ErrOpenTracker)
}

func TestSumDuration(t *testing.T) {
	total, err := SumDuration([]models.TimeTracker{
		closed(at("2024-03-01T09:00"), time.Hour),
		closed(at("2024-03-01T11:00"), 30*time.Minute),
		closed(at("2024-03-01T12:00"), 0),
	})
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, total)

	total, err = SumDuration(nil)
	require.NoError(t, err)
	assert.Zero(t, total)

	_, err = SumDuration([]models.TimeTracker{{ID: 3, StartAt: at("2024-03-01T09:00")}})
	assert.ErrorIs(t, err, ErrOpenTracker)
}

func TestClosedOnly(t *testing.T) {
	trackers := []models.TimeTracker{
		closed(at("2024-03-01T09:00"), time.Hour),
		{StartAt: at("2024-03-01T11:00")},
	}
	got := ClosedOnly(trackers)
	require.Len(t, got, 1)
	total, err := SumDuration(got)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, total)
}

func TestGroupByDayUsesLocation(t *testing.T) {
	nyc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 02:00 UTC on Mar 2 is still Mar 1 in New York
	trackers := []models.TimeTracker{closed(at("2024-03-02T02:00"), time.Hour)}

	assert.Contains(t, GroupByDay(trackers, time.UTC), "2024-03-02")
	assert.Contains(t, GroupByDay(trackers, nyc), "2024-03-01")
}

func TestISOWeekStart(t *testing.T) {
	cases := []struct {
		year, week int
		want       string
	}{
		{2024, 1, "2024-01-01"},
		{2024, 9, "2024-02-26"},
		{2025, 1, "2024-12-30"},
		{2020, 53, "2020-12-28"},
		{2021, 1, "2021-01-04"},
	}
	for _, tc := range cases {
		got := ISOWeekStart(tc.year, tc.week, time.UTC)
		assert.Equal(t, tc.want, got.Format(DayKeyLayout))
		assert.Equal(t, time.Monday, got.Weekday())
		y, w := got.ISOWeek()
		assert.Equal(t, tc.year, y)
		assert.Equal(t, tc.week, w)
	}
}

func TestWeeklySeries(t *testing.T) {
	trackers := []models.TimeTracker{
		closed(at("2024-12-30T09:00"), 8*time.Hour),
		closed(at("2025-01-05T10:00"), 90*time.Minute),
	}

	series, err := WeeklySeries(GroupByDay(trackers, time.UTC), 2025, 1)
	require.NoError(t, err)
	require.Len(t, series, 7)
	assert.Equal(t, "2024-12-30", series[0].Date)
	assert.Equal(t, "Mon", series[0].Weekday)
	assert.Equal(t, 8.0, series[0].WorkingHours)
	assert.Equal(t, "2025-01-05", series[6].Date)
	assert.Equal(t, "Sun", series[6].Weekday)
	assert.Equal(t, 1.5, series[6].WorkingHours)
}

func TestMonthlySeries(t *testing.T) {
	trackers := []models.TimeTracker{
		closed(at("2024-01-02T09:00"), 2*time.Hour),
		closed(at("2024-01-02T14:00"), time.Hour),
		closed(at("2024-01-03T09:00"), time.Hour),
		closed(at("2024-06-10T09:00"), 45*time.Minute),
		closed(at("2023-12-31T09:00"), 5*time.Hour),
		{StartAt: at("2024-06-11T09:00")},
	}

	series := MonthlySeries(trackers, 2024, time.UTC)
	require.Len(t, series, 12)
	assert.Equal(t, MonthlyPoint{Month: "2024-01", WorkingHours: 4, Seconds: 4 * 3600, DaysWorked: 2}, series[0])
	assert.Equal(t, MonthlyPoint{Month: "2024-06", WorkingHours: 0.8, Seconds: 45 * 60, DaysWorked: 1}, series[5])
	assert.Equal(t, MonthlyPoint{Month: "2024-12"}, series[11])
	assert.Equal(t, 4.8, TotalHours(series))
}

func TestTotalHoursRoundsOnce(t *testing.T) {
	// 4 minutes shows as 0.1 but three of them are 0.2h, not 0.3h
	trackers := []models.TimeTracker{
		closed(at("2024-03-01T09:00"), 4*time.Minute),
		closed(at("2024-03-02T09:00"), 4*time.Minute),
		closed(at("2024-03-03T09:00"), 4*time.Minute),
	}
	series, err := DailySeries(GroupByDay(trackers, time.UTC), time.March, 2024)
	require.NoError(t, err)
	assert.Equal(t, 0.1, series[0].WorkingHours)
	assert.Equal(t, 0.2, TotalHours(series))

	// Float sums of 0.1 and 0.2 would give 0.30000000000000004
	points := []DailyPoint{{Seconds: 360}, {Seconds: 720}}
	assert.Equal(t, 0.3, TotalHours(points))

	assert.Zero(t, TotalHours([]MonthlyPoint(nil)))
}
