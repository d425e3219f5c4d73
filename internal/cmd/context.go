package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/flocklens/flocklens/internal/config"
	"github.com/flocklens/flocklens/internal/core/engine"
	"github.com/flocklens/flocklens/internal/core/social"
	"github.com/flocklens/flocklens/internal/core/store"
	"github.com/flocklens/flocklens/internal/metrics"
	"github.com/flocklens/flocklens/internal/observability"
	"github.com/flocklens/flocklens/internal/output"
)

func openStore(ctx context.Context) (*store.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	db, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// buildScheduler loads every stored credential, wraps each one in a REST
// client, and probes the pool's quotas. Fails when no credential survives
// probing.
func buildScheduler(ctx context.Context, db *store.Store) (*engine.Scheduler, error) {
	cfg := config.GetConfig()
	if cfg == nil {
		return nil, fmt.Errorf("config not loaded")
	}

	records, err := db.ListCredentials(ctx)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no credentials stored; add one with %q", "flocklens keys add")
	}

	clients := make([]engine.NamedClient, 0, len(records))
	for _, rec := range records {
		client := social.NewRESTClient(social.Credential{
			Label:  rec.Label,
			Token:  rec.Token,
			Secret: rec.Secret,
		}, cfg.Social.BaseURL)
		if cfg.Social.Timeout > 0 {
			client.Timeout = cfg.Social.Timeout
		}
		clients = append(clients, engine.NamedClient{
			ID:     rec.ID,
			Label:  rec.Label,
			Client: client,
		})
	}

	sched, err := engine.NewScheduler(ctx, clients, observability.CLILogger)
	if err != nil {
		return nil, err
	}
	metrics.SetCredentialsActive(int64(len(records)))
	return sched, nil
}

func parseIDArgs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: must be a positive integer", arg)
		}
		if id <= 0 {
			return nil, fmt.Errorf("invalid id %d: must be positive", id)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// render prints value in the format chosen via the global --output flag.
func render(value any, tableFn func() string) error {
	format, err := output.ParseFormat(outputFormat)
	if err != nil {
		return err
	}
	text, err := output.Render(format, value, tableFn)
	if err != nil {
		return err
	}
	fmt.Println(text)
	return nil
}
