package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/balkashynov/punch/internal/tracker"
)

var itemCmd = &cobra.Command{
	Use:   "item",
	Short: "Attach task progress to a tracker",
}

var itemAddCmd = &cobra.Command{
	Use:   "add [task-id]",
	Short: "Record progress on a task against a tracker",
	Long: `Record progress on a task. Uses the open tracker unless --tracker is given.

Examples:
  punch item add 7 --progress 50 --note "first draft"
  punch item add 7 --tracker 12 --progress 100`,
	Args: cobra.ExactArgs(1),
	RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		taskID, err := parseID(args[0])
		if err != nil {
			return err
		}
		trackerID, _ := cmd.Flags().GetUint("tracker")
		if trackerID == 0 {
			open, err := a.trackers.Active(ctx, a.owner)
			if err != nil {
				return err
			}
			if open == nil {
				return fmt.Errorf("not clocked in, pass --tracker")
			}
			trackerID = open.ID
		}
		progress, _ := cmd.Flags().GetInt("progress")
		note, _ := cmd.Flags().GetString("note")

		item, err := a.trackers.AttachItem(ctx, a.owner, trackerID, tracker.ItemInput{
			TaskID:   taskID,
			Progress: progress,
			Note:     note,
		})
		if err != nil {
			return err
		}
		fmt.Printf("📌 Task #%d at %d%% on tracker #%d (item #%d)\n", item.TaskID, item.Progress, trackerID, item.ID)
		return nil
	}),
}

var itemRmCmd = &cobra.Command{
	Use:   "rm [tracker-id] [item-id]",
	Short: "Remove an item from a tracker",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
		trackerID, err := parseID(args[0])
		if err != nil {
			return err
		}
		itemID, err := parseID(args[1])
		if err != nil {
			return err
		}
		if err := a.trackers.RemoveItem(cmd.Context(), a.owner, trackerID, itemID); err != nil {
			return err
		}
		fmt.Printf("🗑️  Removed item #%d from tracker #%d\n", itemID, trackerID)
		return nil
	}),
}

func init() {
	itemAddCmd.Flags().Uint("tracker", 0, "Tracker id (default: open tracker)")
	itemAddCmd.Flags().IntP("progress", "p", 0, "Progress percentage 0-100")
	itemAddCmd.Flags().StringP("note", "n", "", "Note")
	itemCmd.AddCommand(itemAddCmd, itemRmCmd)
}
