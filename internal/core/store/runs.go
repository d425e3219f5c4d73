package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/flocklens/flocklens/internal/core"
)

// RecordCrawlRun persists the summary of one industry-group crawl and
// returns its assigned id.
func (s *Store) RecordCrawlRun(ctx context.Context, run *core.CrawlRun) (int64, error) {
	if s == nil || s.DB == nil {
		return 0, errors.New("store is not initialized")
	}
	if run == nil {
		return 0, errors.New("crawl run is required")
	}

	seeds, err := json.Marshal(run.Seeds)
	if err != nil {
		return 0, fmt.Errorf("encode crawl seeds: %w", err)
	}

	result, err := s.DB.ExecContext(ctx,
		`INSERT INTO crawl_runs (seeds, depth, nodes, requests, started_at, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		string(seeds), run.Depth, run.Nodes, run.Requests,
		run.StartedAt.Unix(), run.CompletedAt.Unix())
	if err != nil {
		return 0, fmt.Errorf("record crawl run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("record crawl run: %w", err)
	}
	run.ID = id
	return id, nil
}

// ListCrawlRuns returns the most recent crawl runs, newest first.
func (s *Store) ListCrawlRuns(ctx context.Context, limit int) ([]core.CrawlRun, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, seeds, depth, nodes, requests, started_at, completed_at
		 FROM crawl_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list crawl runs: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	var runs []core.CrawlRun
	for rows.Next() {
		var (
			run         core.CrawlRun
			seeds       string
			startedAt   int64
			completedAt int64
		)
		if err := rows.Scan(&run.ID, &seeds, &run.Depth, &run.Nodes, &run.Requests, &startedAt, &completedAt); err != nil {
			return nil, fmt.Errorf("scan crawl run: %w", err)
		}
		if err := json.Unmarshal([]byte(seeds), &run.Seeds); err != nil {
			return nil, fmt.Errorf("decode crawl seeds: %w", err)
		}
		run.StartedAt = time.Unix(startedAt, 0).UTC()
		run.CompletedAt = time.Unix(completedAt, 0).UTC()
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list crawl runs: %w", err)
	}

	return runs, nil
}
