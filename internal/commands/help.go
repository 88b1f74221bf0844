package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var helpCmd = &cobra.Command{
	Use:   "help",
	Short: "Show comprehensive help for punch",
	Long:  `Display detailed help for all punch commands and flags.`,
	Run: func(cmd *cobra.Command, args []string) {
		showCustomHelp()
	},
}

func showCustomHelp() {
	fmt.Print(`
██████╗ ██╗   ██╗███╗   ██╗ ██████╗██╗  ██╗
██╔══██╗██║   ██║████╗  ██║██╔════╝██║  ██║
██████╔╝██║   ██║██╔██╗ ██║██║     ███████║
██╔═══╝ ██║   ██║██║╚██╗██║██║     ██╔══██║
██║     ╚██████╔╝██║ ╚████║╚██████╗██║  ██║
╚═╝      ╚═════╝ ╚═╝  ╚═══╝ ╚═════╝╚═╝  ╚═╝

punch - clock in, clock out, see the hours

COMMANDS:

  in                      Clock in (one open tracker at a time)
    --no-ui               Skip the live timer
  out [tracker-id]        Clock out of the open tracker
  status                  Show whether you are clocked in
    -w, --watch           Open the live timer
  rm <tracker-id>         Delete a tracker

  item add <task-id>      Record progress on a task
    --tracker             Tracker id (default: open tracker)
    -p, --progress        Percentage 0-100
    -n, --note            Note
  item rm <tracker> <id>  Remove an item

  task add <title>        Create a task
    -p, --project         Project name
  task ls                 List tasks
  task done <id>          Mark task as completed

  report daily            Hours per day, complete at 8h
    --month, --year
  report weekly           Hours per day of an ISO week
    --week, --year
  report monthly          Hours per month
    --year

  serve                   Run the HTTP API and event stream
  token                   Issue an API bearer token
    --ttl, --admin
  version                 Print version
  help                    Show this help

GLOBAL FLAGS:

  --config <file>         Config file (./punch.yaml, ~/.punch/config.yaml)
  -u, --user <id>         Act as this user (default 1)
  --scope <name>          Tenant scope (default from config)

Keys in the live timer:
  s             Clock out and save
  esc/q         Leave the timer running

`)
}
