package cmd

import (
	"github.com/spf13/cobra"

	"github.com/flocklens/flocklens/internal/config"
	"github.com/flocklens/flocklens/internal/core/social"
	"github.com/flocklens/flocklens/internal/output"
)

var timelineCmd = &cobra.Command{
	Use:   "timeline <user-id>",
	Short: "Fetch recent posts from an account",
	Long: `Walk an account's timeline backwards, page by page, until at
least --count posts have been fetched, the timeline ends, or the call
budget runs out.`,
	Args: cobra.ExactArgs(1),
	RunE: runTimeline,
}

func init() {
	rootCmd.AddCommand(timelineCmd)

	timelineCmd.Flags().Int("count", 200, "minimum posts to fetch before stopping")
	timelineCmd.Flags().Int("max-calls", 0, "max timeline pages to request (0 uses the configured default)")
	timelineCmd.Flags().Bool("include-reposts", true, "include reposts in the timeline")
	timelineCmd.Flags().Bool("exclude-replies", false, "exclude replies from the timeline")
	timelineCmd.Flags().Bool("trim-user", false, "omit full author objects from the response")
}

func runTimeline(cmd *cobra.Command, args []string) error {
	ids, err := parseIDArgs(args)
	if err != nil {
		return err
	}
	userID := ids[0]

	count, err := cmd.Flags().GetInt("count")
	if err != nil {
		return err
	}
	maxCalls, err := cmd.Flags().GetInt("max-calls")
	if err != nil {
		return err
	}
	includeReposts, err := cmd.Flags().GetBool("include-reposts")
	if err != nil {
		return err
	}
	excludeReplies, err := cmd.Flags().GetBool("exclude-replies")
	if err != nil {
		return err
	}
	trimUser, err := cmd.Flags().GetBool("trim-user")
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	db, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close() // nolint:errcheck // best-effort cleanup

	if maxCalls <= 0 {
		maxCalls = config.GetConfig().Scheduler.TimelineCalls
	}

	sched, err := buildScheduler(ctx, db)
	if err != nil {
		return err
	}

	params := social.TimelineParams{
		UserID:         userID,
		TrimUser:       trimUser,
		IncludeReposts: includeReposts,
		ExcludeReplies: excludeReplies,
	}

	posts, err := sched.FetchTimeline(ctx, params, count, maxCalls)
	if err != nil {
		return err
	}

	return render(posts, func() string { return output.FormatPosts(posts) })
}
