package cmd

import (
	"github.com/spf13/cobra"

	"github.com/flocklens/flocklens/internal/output"
)

var usersCmd = &cobra.Command{
	Use:   "users <id> [id...]",
	Short: "Hydrate accounts by id",
	Long:  "Look up full account records for the given ids, batched to the remote limit.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDArgs(args)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		db, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		sched, err := buildScheduler(ctx, db)
		if err != nil {
			return err
		}

		users, err := sched.LookupUsers(ctx, ids)
		if err != nil {
			return err
		}

		return render(users, func() string { return output.FormatUsers(users) })
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
}
