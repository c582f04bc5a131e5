package cli

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/doorman-bot/doorman/internal/infrastructure/config"
	"github.com/doorman-bot/doorman/internal/infrastructure/wiring"
	"github.com/doorman-bot/doorman/pkg/domain/access"
)

var dataDir string

// resolveDataDir prefers the explicit flag, then the config file, then the
// stock default. Listing works without a bot token.
func resolveDataDir() string {
	if dataDir != "" {
		return dataDir
	}
	if cfg, err := config.Load(configPath); err == nil {
		return cfg.DataDir
	}
	return config.Default().DataDir
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List members with time-limited access",
	RunE: func(cmd *cobra.Command, args []string) error {
		workspace, err := wiring.NewWorkspace(resolveDataDir(), slog.Default())
		if err != nil {
			return err
		}
		printRoster(cmd.OutOrStdout(), workspace)
		return nil
	},
}

var vipsCmd = &cobra.Command{
	Use:   "vips",
	Short: "List members with permanent access",
	RunE: func(cmd *cobra.Command, args []string) error {
		workspace, err := wiring.NewWorkspace(resolveDataDir(), slog.Default())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		vips := workspace.Roster.Vips()
		if len(vips) == 0 {
			fmt.Fprintln(out, "No VIP members.")
			return nil
		}
		for _, vip := range vips {
			fmt.Fprintln(out, vip)
		}
		fmt.Fprintf(out, "\nTotal: %d\n", len(vips))
		return nil
	},
}

func printRoster(out io.Writer, workspace *wiring.Workspace) {
	roster := workspace.Roster.Snapshot()
	if len(roster.Active) == 0 && len(roster.Expired) == 0 {
		fmt.Fprintln(out, "No members with time-limited access.")
		return
	}

	now := time.Now()
	if len(roster.Active) > 0 {
		fmt.Fprintf(out, "Active (%d):\n", len(roster.Active))
		for _, grant := range roster.Active {
			fmt.Fprintf(out, "  %-20s until %s (%s left)\n",
				access.DisplayName(grant.UserID, grant.Username),
				access.ExpiryDate(*grant.ExpiresAt),
				access.RemainingLabel(*grant.ExpiresAt, now))
		}
	}
	if len(roster.Expired) > 0 {
		fmt.Fprintf(out, "Expired (%d):\n", len(roster.Expired))
		for _, grant := range roster.Expired {
			fmt.Fprintf(out, "  %-20s expired %s\n",
				access.DisplayName(grant.UserID, grant.Username),
				access.ExpiryDate(*grant.ExpiresAt))
		}
	}
}

func init() {
	for _, cmd := range []*cobra.Command{usersCmd, vipsCmd} {
		cmd.Flags().StringVar(&dataDir, "data", "", "data directory (overrides the config file)")
		RootCmd.AddCommand(cmd)
	}
}
