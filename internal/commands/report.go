package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/balkashynov/punch/internal/parser"
	"github.com/balkashynov/punch/internal/report"
	"github.com/balkashynov/punch/internal/tui"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show worked hours per day or month",
}

var reportDailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Hours per day of a month",
	Long: `Hours per day of a month. Days with 8 hours or more are complete.

Examples:
  punch report daily                  # current month
  punch report daily --month 2 --year 2024`,
	Args: cobra.NoArgs,
	RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
		month, _ := cmd.Flags().GetString("month")
		year, _ := cmd.Flags().GetString("year")
		period, err := parser.ParseMonthYear(month, year, time.Now().In(a.trackers.Location()))
		if err != nil {
			fmt.Printf("⚠️  %v, showing %s %d\n", err, period.Month, period.Year)
		}

		series, err := a.reports.Daily(cmd.Context(), a.subject(), period.Month, period.Year)
		if err != nil {
			return err
		}
		fmt.Println(headerStyle.Render(fmt.Sprintf("%s %d", period.Month, period.Year)))
		fmt.Println(renderDaily(series))
		return nil
	}),
}

var reportWeeklyCmd = &cobra.Command{
	Use:   "weekly",
	Short: "Hours per day of an ISO week",
	Args:  cobra.NoArgs,
	RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
		week, _ := cmd.Flags().GetString("week")
		year, _ := cmd.Flags().GetString("year")
		period, err := parser.ParseISOWeek(week, year, time.Now().In(a.trackers.Location()))
		if err != nil {
			fmt.Printf("⚠️  %v, showing week %d of %d\n", err, period.Week, period.Year)
		}

		series, err := a.reports.Weekly(cmd.Context(), a.subject(), period.Year, period.Week)
		if err != nil {
			return err
		}
		start := report.ISOWeekStart(period.Year, period.Week, a.trackers.Location())
		fmt.Println(headerStyle.Render(fmt.Sprintf("Week %d: %s to %s",
			period.Week, start.Format("Jan 2"), start.AddDate(0, 0, 6).Format("Jan 2, 2006"))))
		fmt.Println(renderDaily(series))
		return nil
	}),
}

var reportMonthlyCmd = &cobra.Command{
	Use:   "monthly",
	Short: "Hours per month of a year",
	Args:  cobra.NoArgs,
	RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
		year, _ := cmd.Flags().GetString("year")
		period, err := parser.ParseMonthYear("", year, time.Now().In(a.trackers.Location()))
		if err != nil {
			fmt.Printf("⚠️  %v, showing %d\n", err, period.Year)
		}

		series, err := a.reports.Monthly(cmd.Context(), a.subject(), period.Year)
		if err != nil {
			return err
		}
		fmt.Println(headerStyle.Render(fmt.Sprintf("%d", period.Year)))
		fmt.Println(renderMonthly(series))
		return nil
	}),
}

var (
	headerStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(tui.ColorAccentBright)).MarginTop(1)
	cellStyle       = lipgloss.NewStyle().Padding(0, 1)
	completeStyle   = cellStyle.Foreground(lipgloss.Color(tui.ColorSuccess))
	incompleteStyle = cellStyle.Foreground(lipgloss.Color(tui.ColorSecondaryText))
	emptyStyle      = cellStyle.Foreground(lipgloss.Color(tui.ColorDisabledText))
	tableHeader     = cellStyle.Bold(true).Foreground(lipgloss.Color(tui.ColorPrimaryText))
)

// bar draws half an hour per block
func bar(hours float64) string {
	return strings.Repeat("█", int(hours*2+0.5))
}

func renderDaily(series []report.DailyPoint) string {
	rows := make([][]string, 0, len(series)+1)
	for _, p := range series {
		rows = append(rows, []string{p.Date, p.Weekday, fmt.Sprintf("%.1f", p.WorkingHours), p.Tag, bar(p.WorkingHours)})
	}
	rows = append(rows, []string{"Total", "", fmt.Sprintf("%.1f", report.TotalHours(series)), "", ""})

	last := len(rows) - 1
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(tui.ColorBorder))).
		Headers("Date", "Day", "Hours", "Tag", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return tableHeader
			case row == last:
				return tableHeader
			case series[row].Tag == report.TagComplete:
				return completeStyle
			case series[row].WorkingHours == 0:
				return emptyStyle
			default:
				return incompleteStyle
			}
		})
	return t.Render()
}

func renderMonthly(series []report.MonthlyPoint) string {
	rows := make([][]string, 0, len(series)+1)
	var days int
	for _, p := range series {
		rows = append(rows, []string{p.Month, fmt.Sprintf("%.1f", p.WorkingHours), fmt.Sprintf("%d", p.DaysWorked)})
		days += p.DaysWorked
	}
	rows = append(rows, []string{"Total", fmt.Sprintf("%.1f", report.TotalHours(series)), fmt.Sprintf("%d", days)})

	last := len(rows) - 1
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(tui.ColorBorder))).
		Headers("Month", "Hours", "Days").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow, row == last:
				return tableHeader
			case series[row].WorkingHours == 0:
				return emptyStyle
			default:
				return incompleteStyle
			}
		})
	return t.Render()
}

// subject is the CLI user within the CLI scope
func (a *app) subject() report.Subject {
	return report.Subject{UserID: a.owner.UserID, Scope: a.owner.Scope}
}

func init() {
	reportDailyCmd.Flags().String("month", "", "Month 1-12 (default: current)")
	reportDailyCmd.Flags().String("year", "", "Year (default: current)")
	reportWeeklyCmd.Flags().String("week", "", "ISO week 1-53 (default: current)")
	reportWeeklyCmd.Flags().String("year", "", "ISO year (default: current)")
	reportMonthlyCmd.Flags().String("year", "", "Year (default: current)")
	reportCmd.AddCommand(reportDailyCmd, reportWeeklyCmd, reportMonthlyCmd)
}
