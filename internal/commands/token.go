package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/balkashynov/punch/internal/auth"
	"github.com/balkashynov/punch/internal/config"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for the HTTP API",
	Long: `Issue a bearer token for --user within --scope, signed with the configured secret.

Examples:
  punch token --user 7
  punch token --user 1 --admin --ttl 1h`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}
		ttl, _ := cmd.Flags().GetDuration("ttl")
		if ttl <= 0 {
			ttl = cfg.Auth.TokenTTL
		}
		role := ""
		if admin, _ := cmd.Flags().GetBool("admin"); admin {
			role = auth.RoleAdmin
		}
		tokenScope := scope
		if tokenScope == "" {
			tokenScope = cfg.Tracker.Scope
		}

		raw, err := auth.Issue([]byte(cfg.Auth.JWTSecret), userID, tokenScope, role, ttl, time.Now())
		if err != nil {
			return err
		}
		fmt.Println(raw)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("punch %s (commit %s, built %s)\n", version, commit, date)
	},
}

func init() {
	tokenCmd.Flags().Duration("ttl", 0, "Token lifetime (default from config)")
	tokenCmd.Flags().Bool("admin", false, "Allow reading other users' reports")
}
