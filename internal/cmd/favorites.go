package cmd

import (
	"github.com/spf13/cobra"

	"github.com/flocklens/flocklens/internal/output"
)

var favoritesCmd = &cobra.Command{
	Use:   "favorites <user-id>",
	Short: "Fetch posts an account has favorited",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDArgs(args)
		if err != nil {
			return err
		}
		userID := ids[0]

		count, err := cmd.Flags().GetInt("count")
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

		posts, err := sched.FetchFavorites(ctx, userID, count)
		if err != nil {
			return err
		}

		return render(posts, func() string { return output.FormatPosts(posts) })
	},
}

func init() {
	rootCmd.AddCommand(favoritesCmd)
	favoritesCmd.Flags().Int("count", 200, "max favorites to fetch")
}
