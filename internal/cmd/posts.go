package cmd

import (
	"github.com/spf13/cobra"

	"github.com/flocklens/flocklens/internal/output"
)

var postsCmd = &cobra.Command{
	Use:   "posts <id> [id...]",
	Short: "Hydrate posts by id",
	Long:  "Look up full post records for the given ids, batched to the remote limit.",
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

		posts, err := sched.LookupPosts(ctx, ids)
		if err != nil {
			return err
		}

		return render(posts, func() string { return output.FormatPosts(posts) })
	},
}

func init() {
	rootCmd.AddCommand(postsCmd)
}
