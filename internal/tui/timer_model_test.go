package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/punch/internal/models"
)

var start = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestTimer(now *time.Time) TimerModel {
	t := &models.TimeTracker{ID: 3, OwnerID: 1, StartAt: start, Week: 9, Year: 2024}
	return NewTimerModel(t, func() time.Time { return *now })
}

func TestTimerTickUpdatesElapsed(t *testing.T) {
	now := start.Add(90 * time.Second)
	m := newTestTimer(&now)
	assert.Equal(t, 90*time.Second, m.elapsed)

	now = start.Add(2 * time.Hour)
	next, cmd := m.Update(timerTickMsg{})
	assert.NotNil(t, cmd, "keeps ticking")
	assert.Equal(t, 2*time.Hour, next.(TimerModel).elapsed)
}

func TestTimerKeys(t *testing.T) {
	now := start
	tests := []struct {
		key      tea.KeyMsg
		stopping bool
		exiting  bool
	}{
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")}, true, false},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}, false, true},
		{tea.KeyMsg{Type: tea.KeyEsc}, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.key.String(), func(t *testing.T) {
			next, cmd := newTestTimer(&now).Update(tt.key)
			m := next.(TimerModel)
			assert.Equal(t, tt.stopping, m.stopping)
			assert.Equal(t, tt.exiting, m.exiting)
			require.NotNil(t, cmd)
			assert.IsType(t, tea.QuitMsg{}, cmd())
		})
	}
}

func TestTimerStopsTickingAfterQuit(t *testing.T) {
	now := start
	next, _ := newTestTimer(&now).Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	_, cmd := next.Update(timerTickMsg{})
	assert.Nil(t, cmd)
}

func TestClockText(t *testing.T) {
	assert.Equal(t, "00:00", clockText(-time.Second))
	assert.Equal(t, "05:07", clockText(5*time.Minute+7*time.Second))
	assert.Equal(t, "08:00:01", clockText(8*time.Hour+time.Second))
}

func TestBigClockHasFiveRows(t *testing.T) {
	now := start.Add(61 * time.Minute)
	m := newTestTimer(&now)
	assert.Len(t, strings.Split(m.renderBigClock(), "\n"), 5)
}

func TestViewWaitsForWindowSize(t *testing.T) {
	now := start
	m := newTestTimer(&now)
	assert.Equal(t, "Loading...", m.View())

	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	view := next.View()
	assert.Contains(t, view, "tracker #3")
	assert.Contains(t, view, "Week 9 of 2024")
}

func TestViewShowsItemProgress(t *testing.T) {
	now := start
	m := newTestTimer(&now)
	m.tracker.Items = []models.TrackerItem{
		{ID: 1, TaskID: 7, Progress: 40, Task: models.Task{ID: 7, Title: "Write report"}},
	}

	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	view := next.View()
	assert.Contains(t, view, "Write report")
	assert.Contains(t, view, "40%")
	assert.Contains(t, view, "clock out")
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "45s", FormatDuration(45*time.Second))
	assert.Equal(t, "12m", FormatDuration(12*time.Minute))
	assert.Equal(t, "1.5h", FormatDuration(90*time.Minute))
}
