package commands

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/balkashynov/punch/internal/models"
	"github.com/balkashynov/punch/internal/tui"
)

var inCmd = &cobra.Command{
	Use:   "in",
	Short: "Clock in",
	Long: `Clock in. Opens the live timer by default, use --no-ui for a plain start.

Examples:
  punch in            # Clock in and watch the timer
  punch in --no-ui    # Clock in and return`,
	Args: cobra.NoArgs,
	RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		t, err := a.trackers.ClockIn(ctx, a.owner)
		if err != nil {
			return err
		}

		noUI, _ := cmd.Flags().GetBool("no-ui")
		if noUI {
			fmt.Printf("⏱️  Clocked in (tracker #%d, week %d of %d)\n", t.ID, t.Week, t.Year)
			fmt.Printf("Started at: %s\n", t.StartAt.Format("15:04:05"))
			return nil
		}
		return tui.RunTimerTUI(t, clockOutFunc(ctx, a, t.ID))
	}),
}

var outCmd = &cobra.Command{
	Use:   "out [tracker-id]",
	Short: "Clock out",
	Long:  "Clock out of the open tracker, or of the given tracker id",
	Args:  cobra.MaximumNArgs(1),
	RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		var id uint
		if len(args) == 1 {
			parsed, err := parseID(args[0])
			if err != nil {
				return err
			}
			id = parsed
		} else {
			open, err := a.trackers.Active(ctx, a.owner)
			if err != nil {
				return err
			}
			if open == nil {
				fmt.Println("Not clocked in")
				return nil
			}
			id = open.ID
		}

		t, err := a.trackers.ClockOut(ctx, a.owner, id)
		if err != nil {
			return err
		}
		printClockedOut(t)
		return nil
	}),
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether you are clocked in",
	Args:  cobra.NoArgs,
	RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		t, err := a.trackers.Active(ctx, a.owner)
		if err != nil {
			return err
		}
		if t == nil {
			fmt.Println("Not clocked in")
			return nil
		}

		watch, _ := cmd.Flags().GetBool("watch")
		if watch {
			return tui.RunTimerTUI(t, clockOutFunc(ctx, a, t.ID))
		}

		fmt.Printf("⏱️  Clocked in: tracker #%d\n", t.ID)
		fmt.Printf("Started at: %s\n", t.StartAt.Format("Mon Jan 2 15:04:05"))
		fmt.Printf("Elapsed time: %s\n", tui.FormatDuration(time.Since(t.StartAt)))
		for _, item := range t.Items {
			fmt.Printf("  • #%d %s  %d%%\n", item.TaskID, item.Task.Title, item.Progress)
		}
		return nil
	}),
}

var rmCmd = &cobra.Command{
	Use:   "rm [tracker-id]",
	Short: "Delete a tracker",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := a.trackers.Delete(cmd.Context(), a.owner, id); err != nil {
			return err
		}
		fmt.Printf("🗑️  Deleted tracker #%d\n", id)
		return nil
	}),
}

func init() {
	inCmd.Flags().Bool("no-ui", false, "Clock in without the interactive timer")
	statusCmd.Flags().BoolP("watch", "w", false, "Open the live timer")
}

func clockOutFunc(ctx context.Context, a *app, id uint) tui.StopFunc {
	return func() (*models.TimeTracker, error) {
		return a.trackers.ClockOut(ctx, a.owner, id)
	}
}

func printClockedOut(t *models.TimeTracker) {
	d, _ := t.Duration()
	fmt.Printf("⏹️  Clocked out of tracker #%d\n", t.ID)
	fmt.Printf("Worked: %s (%s - %s)\n", tui.FormatDuration(d), t.StartAt.Format("15:04"), t.EndAt.Format("15:04"))
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id '%s'", raw)
	}
	return uint(id), nil
}
