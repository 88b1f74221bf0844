// Package report turns closed trackers into worked-hours series for charts.
package report

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/balkashynov/punch/internal/models"
)

// ErrOpenTracker is returned when a duration is requested over a tracker
// that has not been clocked out.
var ErrOpenTracker = errors.New("tracker is still open")

// DayKeyLayout formats the grouping key of GroupByDay
const DayKeyLayout = "2006-01-02"

// CompleteHours is the daily total at which a day counts as complete
const CompleteHours = 8.0

// Day classification tags
const (
	TagComplete   = "complete"
	TagIncomplete = "incomplete"
)

// DailyPoint is one day of a series
type DailyPoint struct {
	Date         string  `json:"date"` // YYYY-MM-DD
	Day          string  `json:"day"`  // DD
	Weekday      string  `json:"weekday"`
	WorkingHours float64 `json:"working_hours"`
	Seconds      int64   `json:"seconds"` // exact worked time
	Tag          string  `json:"tag"`
}

// MonthlyPoint is one month of a yearly series
type MonthlyPoint struct {
	Month        string  `json:"month"` // YYYY-MM
	WorkingHours float64 `json:"working_hours"`
	Seconds      int64   `json:"seconds"`
	DaysWorked   int     `json:"days_worked"`
}

// Worked returns the exact worked time of the day
func (p DailyPoint) Worked() time.Duration { return time.Duration(p.Seconds) * time.Second }

// Worked returns the exact worked time of the month
func (p MonthlyPoint) Worked() time.Duration { return time.Duration(p.Seconds) * time.Second }

// TotalHours sums the exact worked time of points and rounds once to one
// decimal place.
func TotalHours[P interface{ Worked() time.Duration }](points []P) float64 {
	var total time.Duration
	for _, p := range points {
		total += p.Worked()
	}
	return roundHours(total)
}

// GroupByDay buckets trackers by the calendar day of StartAt in loc.
// Trackers keep their input order inside a bucket.
func GroupByDay(trackers []models.TimeTracker, loc *time.Location) map[string][]models.TimeTracker {
	if loc == nil {
		loc = time.Local
	}
	grouped := make(map[string][]models.TimeTracker)
	for _, t := range trackers {
		key := t.StartAt.In(loc).Format(DayKeyLayout)
		grouped[key] = append(grouped[key], t)
	}
	return grouped
}

// SumDuration adds up the worked time of closed trackers. Any open tracker
// makes the sum undefined and returns ErrOpenTracker.
func SumDuration(trackers []models.TimeTracker) (time.Duration, error) {
	var total time.Duration
	for i := range trackers {
		d, ok := trackers[i].Duration()
		if !ok {
			return 0, fmt.Errorf("tracker #%d: %w", trackers[i].ID, ErrOpenTracker)
		}
		total += d
	}
	return total, nil
}

// ClosedOnly drops open trackers
func ClosedOnly(trackers []models.TimeTracker) []models.TimeTracker {
	closed := make([]models.TimeTracker, 0, len(trackers))
	for _, t := range trackers {
		if !t.IsOpen() {
			closed = append(closed, t)
		}
	}
	return closed
}

// DailySeries returns one point per calendar day of month in year, in
// ascending order, from trackers grouped by GroupByDay.
func DailySeries(grouped map[string][]models.TimeTracker, month time.Month, year int) ([]DailyPoint, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("invalid month %d", month)
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return seriesFrom(grouped, first, daysIn(month, year))
}

// WeeklySeries returns the seven days, Monday first, of ISO week isoWeek
// of isoYear.
func WeeklySeries(grouped map[string][]models.TimeTracker, isoYear, isoWeek int) ([]DailyPoint, error) {
	return seriesFrom(grouped, ISOWeekStart(isoYear, isoWeek, time.UTC), 7)
}

// MonthlySeries totals closed trackers per calendar month of year in loc.
// Open trackers are skipped.
func MonthlySeries(trackers []models.TimeTracker, year int, loc *time.Location) []MonthlyPoint {
	if loc == nil {
		loc = time.Local
	}
	var totals [12]time.Duration
	var days [12]map[int]struct{}
	for i := range trackers {
		d, ok := trackers[i].Duration()
		if !ok {
			continue
		}
		start := trackers[i].StartAt.In(loc)
		if start.Year() != year {
			continue
		}
		m := int(start.Month()) - 1
		totals[m] += d
		if days[m] == nil {
			days[m] = make(map[int]struct{})
		}
		days[m][start.Day()] = struct{}{}
	}

	points := make([]MonthlyPoint, 12)
	for i := range points {
		points[i] = MonthlyPoint{
			Month:        fmt.Sprintf("%04d-%02d", year, i+1),
			WorkingHours: roundHours(totals[i]),
			Seconds:      int64(totals[i] / time.Second),
			DaysWorked:   len(days[i]),
		}
	}
	return points
}

// ISOWeekStart returns midnight of the Monday that starts ISO week isoWeek
// of isoYear in loc.
func ISOWeekStart(isoYear, isoWeek int, loc *time.Location) time.Time {
	// Jan 4 is always in week 1
	jan4 := time.Date(isoYear, time.January, 4, 0, 0, 0, 0, loc)
	offset := (int(jan4.Weekday()) + 6) % 7 // days since Monday
	return jan4.AddDate(0, 0, -offset+(isoWeek-1)*7)
}

func seriesFrom(grouped map[string][]models.TimeTracker, first time.Time, days int) ([]DailyPoint, error) {
	points := make([]DailyPoint, 0, days)
	for i := 0; i < days; i++ {
		day := first.AddDate(0, 0, i)
		key := day.Format(DayKeyLayout)

		var total time.Duration
		if trackers := grouped[key]; len(trackers) > 0 {
			var err error
			if total, err = SumDuration(trackers); err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
		}

		points = append(points, DailyPoint{
			Date:         key,
			Day:          day.Format("02"),
			Weekday:      day.Weekday().String()[:3],
			WorkingHours: roundHours(total),
			Seconds:      int64(total / time.Second),
			Tag:          classify(total),
		})
	}
	return points, nil
}

func classify(total time.Duration) string {
	if total.Hours() >= CompleteHours {
		return TagComplete
	}
	return TagIncomplete
}

// roundHours converts d to hours rounded to one decimal place
func roundHours(d time.Duration) float64 {
	return math.Round(d.Hours()*10) / 10
}

func daysIn(month time.Month, year int) int {
	// Day 0 of the next month is the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
