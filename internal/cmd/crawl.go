package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/flocklens/flocklens/internal/config"
	"github.com/flocklens/flocklens/internal/core"
	"github.com/flocklens/flocklens/internal/metrics"
	"github.com/flocklens/flocklens/internal/observability"
	"github.com/flocklens/flocklens/internal/output"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl <seed-id> [seed-id...]",
	Short: "Crawl the following graph from seed accounts",
	Long: `Breadth-first crawl of following edges starting from the seed
accounts, counting how often each account is followed inside the crawled
neighborhood. Accounts followed by many seeds rank highest.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCrawl,
}

func init() {
	rootCmd.AddCommand(crawlCmd)

	crawlCmd.Flags().Int("depth", 0, "crawl depth (0 uses the configured default)")
	crawlCmd.Flags().Int("fan-out", 0, "max following edges fetched per account (0 uses the configured default)")
	crawlCmd.Flags().Bool("no-record", false, "skip recording the crawl run in the store")
}

func runCrawl(cmd *cobra.Command, args []string) error {
	seeds, err := parseIDArgs(args)
	if err != nil {
		return err
	}

	depth, err := cmd.Flags().GetInt("depth")
	if err != nil {
		return err
	}
	fanOut, err := cmd.Flags().GetInt("fan-out")
	if err != nil {
		return err
	}
	noRecord, err := cmd.Flags().GetBool("no-record")
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	db, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close() // nolint:errcheck // best-effort cleanup

	cfg := config.GetConfig()
	if depth <= 0 {
		depth = cfg.Scheduler.MaxDepth
	}
	if fanOut <= 0 {
		fanOut = cfg.Scheduler.FanOut
	}

	sched, err := buildScheduler(ctx, db)
	if err != nil {
		return err
	}

	observability.CLILogger.Info("Starting crawl",
		zap.Int64s("seeds", seeds),
		zap.Int("depth", depth),
		zap.Int("fan_out", fanOut))

	result, err := sched.IndustryGroup(ctx, seeds, depth, fanOut)
	if err != nil {
		return err
	}

	metrics.RecordCrawl(len(result.InDegree), result.CompletedAt.Sub(result.StartedAt))

	if !noRecord {
		run := &core.CrawlRun{
			Seeds:       result.Seeds,
			Depth:       result.Depth,
			Nodes:       len(result.InDegree),
			Requests:    result.Requests,
			StartedAt:   result.StartedAt,
			CompletedAt: result.CompletedAt,
		}
		if _, err := db.RecordCrawlRun(ctx, run); err != nil {
			observability.CLILogger.Warn("Failed to record crawl run", zap.Error(err))
		}
	}

	return render(result, func() string { return output.FormatGroup(result) })
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded crawl runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, err := cmd.Flags().GetInt("limit")
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		db, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		runs, err := db.ListCrawlRuns(ctx, limit)
		if err != nil {
			return err
		}

		return render(runs, func() string { return output.FormatCrawlRuns(runs) })
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.Flags().Int("limit", 20, "max runs to list")
}
