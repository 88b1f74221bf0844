package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/punch/internal/models"
)

// StopFunc clocks out the tracker shown by the timer
type StopFunc func() (*models.TimeTracker, error)

type timerKeys struct {
	Stop  key.Binding
	Leave key.Binding
	Quit  key.Binding
}

func (k timerKeys) ShortHelp() []key.Binding { return []key.Binding{k.Stop, k.Leave, k.Quit} }

func (k timerKeys) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

var defaultTimerKeys = timerKeys{
	Stop:  key.NewBinding(key.WithKeys("s", "S"), key.WithHelp("s", "clock out")),
	Leave: key.NewBinding(key.WithKeys("esc", "q"), key.WithHelp("esc/q", "exit (stay clocked in)")),
	Quit:  key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "force quit")),
}

// TimerModel is the live clock shown while clocked in
type TimerModel struct {
	width   int
	height  int
	tracker *models.TimeTracker
	now     func() time.Time
	keys    timerKeys
	help    help.Model

	elapsed time.Duration
	frame   int // animation frame

	stopping bool // s pressed: clock out on exit
	exiting  bool // esc/q pressed: leave the tracker open
}

type timerTickMsg struct{}

type animationTickMsg struct{}

// NewTimerModel creates a timer for an open tracker
func NewTimerModel(t *models.TimeTracker, now func() time.Time) TimerModel {
	if now == nil {
		now = time.Now
	}
	return TimerModel{
		tracker: t,
		now:     now,
		keys:    defaultTimerKeys,
		help:    help.New(),
		elapsed: now().Sub(t.StartAt),
	}
}

func timerTick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return timerTickMsg{} })
}

func animationTick() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(time.Time) tea.Msg { return animationTickMsg{} })
}

// Init starts the timer and animation tickers
func (m TimerModel) Init() tea.Cmd {
	return tea.Batch(timerTick(), animationTick())
}

// Update handles messages
func (m TimerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	done := m.stopping || m.exiting

	switch msg := msg.(type) {
	case timerTickMsg:
		m.elapsed = m.now().Sub(m.tracker.StartAt)
		if done {
			return m, nil
		}
		return m, timerTick()

	case animationTickMsg:
		m.frame = (m.frame + 1) % 4
		if done {
			return m, nil
		}
		return m, animationTick()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Stop):
			m.stopping = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Leave, m.keys.Quit):
			m.exiting = true
			return m, tea.Quit
		}
	}

	return m, nil
}

// View renders the timer
func (m TimerModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	helpBar := m.renderHelpBar()
	contentHeight := m.height - 2

	if m.width < 90 {
		return lipgloss.JoinVertical(lipgloss.Left, m.renderTimerPanel(m.width, contentHeight), helpBar)
	}

	leftWidth := m.width / 2
	rightWidth := m.width - leftWidth - 2
	content := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderTimerPanel(leftWidth, contentHeight),
		"  ",
		m.renderDetailsPanel(rightWidth, contentHeight),
	)
	return lipgloss.JoinVertical(lipgloss.Left, content, helpBar)
}

func (m TimerModel) renderTimerPanel(width, height int) string {
	center := lipgloss.NewStyle().Align(lipgloss.Center).Width(width)

	anim := []string{"⏱", "⏲", "⏱", "⏲"}[m.frame]
	header := center.Foreground(lipgloss.Color(ColorAccentBright)).Bold(true).
		Render(fmt.Sprintf("%s  CLOCKED IN  %s", anim, anim))
	id := center.Foreground(lipgloss.Color(ColorAccentMain)).Bold(true).
		Render(fmt.Sprintf("tracker #%d", m.tracker.ID))

	var clock []string
	for _, line := range strings.Split(m.renderBigClock(), "\n") {
		clock = append(clock, center.Render(line))
	}

	started := center.Foreground(lipgloss.Color(ColorSecondaryText)).Italic(true).
		Render("Started at " + m.tracker.StartAt.Format("15:04:05"))

	content := strings.Join([]string{header, id, strings.Join(clock, "\n"), started}, "\n\n")
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

// bigDigits is a 5-row block font for the clock
var bigDigits = map[rune][5]string{
	'0': {" ███ ", "█   █", "█   █", "█   █", " ███ "},
	'1': {"  █  ", " ██  ", "  █  ", "  █  ", "█████"},
	'2': {" ███ ", "█   █", "   █ ", "  █  ", "█████"},
	'3': {" ███ ", "█   █", "  ██ ", "█   █", " ███ "},
	'4': {"█   █", "█   █", "█████", "    █", "    █"},
	'5': {"█████", "█    ", "████ ", "    █", "████ "},
	'6': {" ███ ", "█    ", "████ ", "█   █", " ███ "},
	'7': {"█████", "    █", "   █ ", "  █  ", " █   "},
	'8': {" ███ ", "█   █", " ███ ", "█   █", " ███ "},
	'9': {" ███ ", "█   █", " ████", "    █", " ███ "},
	':': {"     ", "  █  ", "     ", "  █  ", "     "},
}

// clockText is HH:MM:SS once an hour has passed, MM:SS before
func clockText(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

func (m TimerModel) renderBigClock() string {
	var lines [5]strings.Builder
	for _, r := range clockText(m.elapsed) {
		art, ok := bigDigits[r]
		if !ok {
			continue
		}
		for i := range lines {
			lines[i].WriteString(art[i])
			lines[i].WriteString(" ")
		}
	}

	style := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright)).Bold(true)
	rendered := make([]string, len(lines))
	for i := range lines {
		rendered[i] = style.Render(lines[i].String())
	}
	return strings.Join(rendered, "\n")
}

// renderDetailsPanel shows the week bucket and the progress items
func (m TimerModel) renderDetailsPanel(width, height int) string {
	t := m.tracker
	line := lipgloss.NewStyle().Align(lipgloss.Center).Width(width - 8)
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDisabledText))
	accent := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright))

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(line.Foreground(lipgloss.Color(ColorAccentMain)).Bold(true).Render("P U N C H"))
	b.WriteString("\n\n")
	b.WriteString(line.Foreground(lipgloss.Color(ColorBorder)).Render(strings.Repeat("─", min(width-12, 40))))
	b.WriteString("\n\n")

	b.WriteString(line.Render("📅 " + accent.Render(fmt.Sprintf("Week %d of %d", t.Week, t.Year))))
	b.WriteString("\n")
	b.WriteString(line.Render("🕘 Started: " + accent.Render(t.StartAt.Format("Mon Jan 02, 15:04"))))
	b.WriteString("\n\n")

	if len(t.Items) == 0 {
		b.WriteString(line.Render(muted.Render("No progress recorded yet")))
		return lipgloss.NewStyle().Height(height).Render(b.String())
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorAccentMain)).
		Width(width-12).
		Padding(0, 1)
	bar := progress.New(
		progress.WithSolidFill(ColorAccentBright),
		progress.WithWidth(min(width-20, 30)),
	)
	bar.PercentageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText))
	var items []string
	for _, item := range t.Items {
		title := item.Task.Title
		if title == "" {
			title = fmt.Sprintf("task #%d", item.TaskID)
		}
		if item.Progress == 100 {
			title = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSuccess)).Render(title)
		}
		items = append(items, title+"\n"+bar.ViewAs(float64(item.Progress)/100))
	}
	b.WriteString(lipgloss.PlaceHorizontal(width-8, lipgloss.Center, box.Render(strings.Join(items, "\n"))))
	return lipgloss.NewStyle().Height(height).Render(b.String())
}

func (m TimerModel) renderHelpBar() string {
	return lipgloss.NewStyle().
		Align(lipgloss.Center).
		Width(m.width).
		Render(m.help.View(m.keys))
}

// RunTimerTUI shows the live timer for t and clocks out through stop when
// the user presses s.
func RunTimerTUI(t *models.TimeTracker, stop StopFunc) error {
	p := tea.NewProgram(NewTimerModel(t, time.Now), tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	timer := finalModel.(TimerModel)
	switch {
	case timer.stopping:
		closed, err := stop()
		if err != nil {
			return fmt.Errorf("failed to clock out: %w", err)
		}
		d, _ := closed.Duration()
		fmt.Printf("⏹️  Clocked out of tracker #%d\n", closed.ID)
		fmt.Printf("📊 Worked: %s\n", FormatDuration(d))
	case timer.exiting:
		fmt.Printf("\n💡 Still clocked in on tracker #%d since %s\n", t.ID, t.StartAt.Format("15:04"))
		fmt.Printf("   Use 'punch status' to check or 'punch out' to clock out.\n")
	}
	return nil
}

// FormatDuration formats a duration in a human-readable way
func FormatDuration(d time.Duration) string {
	if d.Hours() >= 1 {
		return fmt.Sprintf("%.1fh", d.Hours())
	} else if d.Minutes() >= 1 {
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
	return fmt.Sprintf("%.0fs", d.Seconds())
}
