package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/balkashynov/punch/internal/db"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage the tasks tracker items attach to",
}

var taskAddCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Create a task",
	Args:  cobra.MinimumNArgs(1),
	RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
		project, _ := cmd.Flags().GetString("project")
		note, _ := cmd.Flags().GetString("note")

		task, err := a.store.CreateTask(cmd.Context(), db.CreateTaskRequest{
			OwnerID: a.owner.UserID,
			Title:   strings.Join(args, " "),
			Project: project,
			Note:    note,
		})
		if err != nil {
			return err
		}
		fmt.Printf("✅ New task \"%s\" added - ID: %d\n", task.Title, task.ID)
		return nil
	}),
}

var taskListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List tasks",
	Args:    cobra.NoArgs,
	RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
		tasks, err := a.store.GetTasks(cmd.Context(), a.owner.UserID)
		if err != nil {
			return fmt.Errorf("fetching tasks: %w", err)
		}
		if len(tasks) == 0 {
			fmt.Println("No tasks found. Use 'punch task add \"title\"' to create your first task.")
			return nil
		}

		fmt.Printf("%-4s %-6s %-40s %s\n", "ID", "STATUS", "TITLE", "PROJECT")
		fmt.Println(strings.Repeat("-", 70))
		for _, task := range tasks {
			title := task.Title
			if len(title) > 38 {
				title = title[:35] + "..."
			}
			fmt.Printf("%-4d %-6s %-40s %s\n", task.ID, task.Status, title, task.Project)
		}
		return nil
	}),
}

var taskDoneCmd = &cobra.Command{
	Use:   "done [task-id]",
	Short: "Mark a task as completed",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		task, err := a.store.MarkTaskDone(cmd.Context(), a.owner.UserID, id)
		if err != nil {
			return err
		}
		fmt.Printf("✅ Marked task #%d as done: %s\n", task.ID, task.Title)
		return nil
	}),
}

func init() {
	taskAddCmd.Flags().StringP("project", "p", "", "Project name")
	taskAddCmd.Flags().String("note", "", "Additional notes")
	taskCmd.AddCommand(taskAddCmd, taskListCmd, taskDoneCmd)
}
