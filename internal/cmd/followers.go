package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/flocklens/flocklens/internal/core/engine"
	"github.com/flocklens/flocklens/internal/output"
)

var followersCmd = &cobra.Command{
	Use:   "followers <user-id>",
	Short: "Fetch follower ids for an account",
	Long: `Walk the cursor-paged follower listing for one account until at
least --min ids have been fetched or the listing ends.`,
	Args: cobra.ExactArgs(1),
	RunE: runFollowers,
}

func init() {
	rootCmd.AddCommand(followersCmd)

	followersCmd.Flags().Int("min", 5000, "minimum ids to fetch before stopping")
	followersCmd.Flags().Bool("hydrate", false, "hydrate each page and keep only verified accounts")
}

func runFollowers(cmd *cobra.Command, args []string) error {
	ids, err := parseIDArgs(args)
	if err != nil {
		return err
	}
	userID := ids[0]

	minCount, err := cmd.Flags().GetInt("min")
	if err != nil {
		return err
	}
	hydrate, err := cmd.Flags().GetBool("hydrate")
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

	var transform engine.PageTransform
	if hydrate {
		transform = keepVerified(sched)
	}

	followerIDs, err := sched.FetchFollowerIDs(ctx, userID, minCount, transform)
	if err != nil {
		return err
	}

	return render(followerIDs, func() string { return output.FormatIDs(followerIDs) })
}

// keepVerified hydrates one raw follower page at a time and keeps only the
// ids of verified accounts, so full user objects never accumulate.
func keepVerified(sched *engine.Scheduler) engine.PageTransform {
	return func(ctx context.Context, ids []int64) ([]int64, error) {
		users, err := sched.LookupUsers(ctx, ids)
		if err != nil {
			return nil, err
		}
		kept := make([]int64, 0, len(users))
		for _, u := range users {
			if u.Verified {
				kept = append(kept, u.ID)
			}
		}
		return kept, nil
	}
}
