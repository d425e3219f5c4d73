//go:build cgo

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/flocklens/flocklens/internal/config"
	"github.com/flocklens/flocklens/internal/core"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), config.StoreConfig{Driver: "libsql", Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestCredentialRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec, err := s.AddCredential(ctx, "primary", "tok-1", "sec-1")
	require.NoError(t, err)
	require.NotZero(t, rec.ID)

	_, err = s.AddCredential(ctx, "secondary", "tok-2", "sec-2")
	require.NoError(t, err)

	list, err := s.ListCredentials(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "primary", list[0].Label)
	require.Equal(t, "tok-1", list[0].Token)

	got, err := s.GetCredential(ctx, "secondary")
	require.NoError(t, err)
	require.Equal(t, "sec-2", got.Secret)

	require.NoError(t, s.RemoveCredential(ctx, "primary"))
	list, err = s.ListCredentials(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestAddCredentialRejectsDuplicateLabel(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.AddCredential(ctx, "primary", "tok-1", "sec-1")
	require.NoError(t, err)
	_, err = s.AddCredential(ctx, "primary", "tok-2", "sec-2")
	require.Error(t, err)
}

func TestRemoveCredentialMissingLabel(t *testing.T) {
	s := openTestStore(t)
	err := s.RemoveCredential(context.Background(), "no-such-label")
	require.ErrorIs(t, err, ErrCredentialNotFound)
}

func TestCrawlRunRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	started := time.Now().UTC().Truncate(time.Second)
	run := &core.CrawlRun{
		Seeds:       []int64{1, 2},
		Depth:       2,
		Nodes:       120,
		Requests:    47,
		StartedAt:   started,
		CompletedAt: started.Add(3 * time.Minute),
	}

	id, err := s.RecordCrawlRun(ctx, run)
	require.NoError(t, err)
	require.NotZero(t, id)

	runs, err := s.ListCrawlRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, []int64{1, 2}, runs[0].Seeds)
	require.Equal(t, 120, runs[0].Nodes)
	require.Equal(t, started, runs[0].StartedAt)
}
