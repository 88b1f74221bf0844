package commands

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/punch/internal/models"
	"github.com/balkashynov/punch/internal/report"
)

// useConfig points the commands at a private database for the test
func useConfig(t *testing.T, extra string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "punch.yaml")
	body := "database:\n  dsn: " + filepath.Join(dir, "punch.db") + "\nlog:\n  level: error\n" + extra
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	prev := configFile
	configFile = path
	t.Cleanup(func() { configFile = prev })
}

func openApp(t *testing.T, serve bool) *app {
	t.Helper()
	a, err := initApp(serve)
	require.NoError(t, err)
	t.Cleanup(a.close)
	return a
}

func TestServeReportsSeeTrackersWrittenByCLI(t *testing.T) {
	useConfig(t, "")
	srv := openApp(t, true)
	cli := openApp(t, false)
	ctx := context.Background()

	loc := srv.trackers.Location()
	now := time.Now().In(loc)
	month, year := now.Month(), now.Year()

	before, err := srv.reports.Daily(ctx, srv.subject(), month, year)
	require.NoError(t, err)
	assert.Zero(t, firstDayHours(before))

	// a write that never passes through the server process
	start := time.Date(year, month, 1, 9, 0, 0, 0, loc)
	isoYear, week := start.ISOWeek()
	tr := &models.TimeTracker{OwnerID: cli.owner.UserID, Scope: cli.owner.Scope, StartAt: start, Week: week, Year: isoYear}
	require.NoError(t, cli.store.CreateOpenTracker(ctx, tr))
	_, err = cli.store.CloseTracker(ctx, tr.OwnerID, tr.ID, start.Add(8*time.Hour))
	require.NoError(t, err)

	after, err := srv.reports.Daily(ctx, srv.subject(), month, year)
	require.NoError(t, err)
	assert.Equal(t, 8.0, firstDayHours(after))
}

func TestReportCacheChoice(t *testing.T) {
	t.Run("default serve", func(t *testing.T) {
		useConfig(t, "")
		a := openApp(t, true)
		assert.Nil(t, a.memory)
		assert.Nil(t, a.reportCache(true))
	})

	t.Run("memory opt in", func(t *testing.T) {
		useConfig(t, "server:\n  report_cache: memory\n")
		a := openApp(t, true)
		assert.NotNil(t, a.memory)
	})

	t.Run("cli never caches", func(t *testing.T) {
		useConfig(t, "server:\n  report_cache: memory\n")
		a := openApp(t, false)
		assert.Nil(t, a.memory)
		assert.Nil(t, a.reportCache(false))
	})
}

func firstDayHours(series []report.DailyPoint) float64 {
	return series[0].WorkingHours
}
