package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/flocklens/flocklens/internal/core"
	"github.com/flocklens/flocklens/internal/core/social"
)

// fakeClient scripts per-method behavior and records call counts.
type fakeClient struct {
	label string

	rateLimitFn func(endpoint string) (core.RateLimitStatus, error)
	followingFn func(userID int64) ([]int64, error)
	favoritesFn func(userID int64) ([]core.Post, error)

	followerPages []*core.FollowerPage
	timelinePages [][]core.Post
	userBatches   [][]int64

	followingCalls int
	favoritesCalls int
	followerCalls  int
	timelineCalls  int
	lookupCalls    int
	probeCalls     int
}

func (f *fakeClient) FollowingIDs(_ context.Context, userID int64, _ int) ([]int64, error) {
	f.followingCalls++
	if f.followingFn != nil {
		return f.followingFn(userID)
	}
	return nil, nil
}

func (f *fakeClient) FollowerIDsPage(_ context.Context, _ int64, _ int64, _ int) (*core.FollowerPage, error) {
	if f.followerCalls >= len(f.followerPages) {
		f.followerCalls++
		return &core.FollowerPage{}, nil
	}
	page := f.followerPages[f.followerCalls]
	f.followerCalls++
	return page, nil
}

func (f *fakeClient) Timeline(_ context.Context, _ social.TimelineParams) ([]core.Post, error) {
	if f.timelineCalls >= len(f.timelinePages) {
		f.timelineCalls++
		return nil, nil
	}
	page := f.timelinePages[f.timelineCalls]
	f.timelineCalls++
	return page, nil
}

func (f *fakeClient) UsersLookup(_ context.Context, ids []int64) ([]core.User, error) {
	f.lookupCalls++
	f.userBatches = append(f.userBatches, append([]int64(nil), ids...))
	users := make([]core.User, 0, len(ids))
	for _, id := range ids {
		users = append(users, core.User{ID: id})
	}
	return users, nil
}

func (f *fakeClient) PostsLookup(_ context.Context, ids []int64) ([]core.Post, error) {
	f.lookupCalls++
	posts := make([]core.Post, 0, len(ids))
	for _, id := range ids {
		posts = append(posts, core.Post{ID: id})
	}
	return posts, nil
}

func (f *fakeClient) Favorites(_ context.Context, userID int64, _ int) ([]core.Post, error) {
	f.favoritesCalls++
	if f.favoritesFn != nil {
		return f.favoritesFn(userID)
	}
	return nil, nil
}

func (f *fakeClient) CheckRateLimit(_ context.Context, endpoint string) (core.RateLimitStatus, error) {
	f.probeCalls++
	if f.rateLimitFn != nil {
		return f.rateLimitFn(endpoint)
	}
	return core.RateLimitStatus{Limit: 15, Remaining: 15}, nil
}

// testHarness wires a scheduler with a fake clock whose time advances by
// exactly the slept duration, so waits are observable without real delay.
type testHarness struct {
	now    time.Time
	sleeps []time.Duration
}

func newHarness() *testHarness {
	return &testHarness{now: time.Unix(1_700_000_000, 0)}
}

func (h *testHarness) scheduler(t *testing.T, clients ...social.Client) *Scheduler {
	t.Helper()
	named := make([]NamedClient, 0, len(clients))
	for i, c := range clients {
		named = append(named, NamedClient{ID: int64(i + 1), Client: c})
	}
	s, err := NewScheduler(context.Background(), named, nil)
	require.NoError(t, err)
	s.Clock = func() time.Time { return h.now }
	s.Sleep = func(_ context.Context, d time.Duration) error {
		h.sleeps = append(h.sleeps, d)
		h.now = h.now.Add(d)
		return nil
	}
	return s
}

func (h *testHarness) totalSlept() time.Duration {
	var total time.Duration
	for _, d := range h.sleeps {
		total += d
	}
	return total
}

func TestHealthyCredentialNoRenewalWait(t *testing.T) {
	h := newHarness()
	client := &fakeClient{favoritesFn: func(int64) ([]core.Post, error) {
		return []core.Post{{ID: 1}}, nil
	}}
	s := h.scheduler(t, client)

	posts, err := s.FetchFavorites(context.Background(), 42, 10)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	// First dispatch: no stagger backlog, no renewal wait.
	require.Empty(t, h.sleeps)
}

func TestBlockedCredentialWaitsForRenewal(t *testing.T) {
	h := newHarness()
	reset := h.now.Add(30 * time.Second).Unix()
	client := &fakeClient{
		rateLimitFn: func(endpoint string) (core.RateLimitStatus, error) {
			if endpoint == "/favorites/list.json" {
				return core.RateLimitStatus{Limit: 15, Remaining: 0, Reset: reset}, nil
			}
			return core.RateLimitStatus{Limit: 15, Remaining: 15}, nil
		},
		favoritesFn: func(int64) ([]core.Post, error) { return []core.Post{{ID: 1}}, nil },
	}
	s := h.scheduler(t, client)

	_, err := s.FetchFavorites(context.Background(), 42, 10)
	require.NoError(t, err)
	// 30s to renewal plus the one-second buffer.
	require.GreaterOrEqual(t, h.totalSlept(), 31*time.Second)
}

func TestHealthyCredentialSkipsBlockedOne(t *testing.T) {
	h := newHarness()
	reset := h.now.Add(10 * time.Minute).Unix()
	blocked := &fakeClient{
		rateLimitFn: func(string) (core.RateLimitStatus, error) {
			return core.RateLimitStatus{Limit: 15, Remaining: 0, Reset: reset}, nil
		},
	}
	healthy := &fakeClient{favoritesFn: func(int64) ([]core.Post, error) {
		return []core.Post{{ID: 7}}, nil
	}}
	s := h.scheduler(t, blocked, healthy)

	posts, err := s.FetchFavorites(context.Background(), 42, 10)
	require.NoError(t, err)
	require.Equal(t, int64(7), posts[0].ID)
	require.Zero(t, blocked.favoritesCalls)
	// Never waited out the blocked credential's ten minutes.
	require.Less(t, h.totalSlept(), time.Minute)
}

func TestNotAuthorizedShortCircuits(t *testing.T) {
	h := newHarness()
	private := &fakeClient{favoritesFn: func(int64) ([]core.Post, error) {
		return nil, &social.Error{Kind: social.KindNotAuthorized, StatusCode: 401, Message: "Not authorized."}
	}}
	spare := &fakeClient{favoritesFn: func(int64) ([]core.Post, error) {
		t.Fatal("second credential must not be tried for a private resource")
		return nil, nil
	}}
	s := h.scheduler(t, private, spare)
	// Pin rotation order so the private refusal comes first.
	s.queues[core.OpFavorites] = &credentialQueue{
		{id: 1, client: private},
		{id: 2, client: spare},
	}

	posts, err := s.FetchFavorites(context.Background(), 42, 10)
	require.NoError(t, err)
	require.Empty(t, posts)
}

func TestRateLimitedRotatesToNextCredential(t *testing.T) {
	h := newHarness()
	limited := &fakeClient{favoritesFn: func(int64) ([]core.Post, error) {
		return nil, &social.Error{Kind: social.KindRateLimited, StatusCode: 429, Code: 88}
	}}
	healthy := &fakeClient{favoritesFn: func(int64) ([]core.Post, error) {
		return []core.Post{{ID: 9}}, nil
	}}
	s := h.scheduler(t, limited, healthy)
	s.queues[core.OpFavorites] = &credentialQueue{
		{id: 1, client: limited},
		{id: 2, client: healthy},
	}

	posts, err := s.FetchFavorites(context.Background(), 42, 10)
	require.NoError(t, err)
	require.Equal(t, int64(9), posts[0].ID)
	require.Equal(t, 1, limited.favoritesCalls)
	// The failed credential's quota was re-probed before requeueing.
	require.Positive(t, limited.probeCalls)
}

func TestOutOfCredentials(t *testing.T) {
	h := newHarness()
	limited := &fakeClient{favoritesFn: func(int64) ([]core.Post, error) {
		return nil, &social.Error{Kind: social.KindRateLimited, StatusCode: 429}
	}}
	s := h.scheduler(t, limited)

	_, err := s.FetchFavorites(context.Background(), 42, 10)
	require.ErrorIs(t, err, ErrOutOfCredentials)
}

func TestUnclassifiedErrorKeepsCredentialInRotation(t *testing.T) {
	h := newHarness()
	calls := 0
	flaky := &fakeClient{favoritesFn: func(int64) ([]core.Post, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("connection reset")
		}
		return []core.Post{{ID: 3}}, nil
	}}
	s := h.scheduler(t, flaky)

	_, err := s.FetchFavorites(context.Background(), 42, 10)
	require.ErrorIs(t, err, ErrOutOfCredentials)

	// The credential stayed in rotation and serves the next call.
	posts, err := s.FetchFavorites(context.Background(), 42, 10)
	require.NoError(t, err)
	require.Equal(t, int64(3), posts[0].ID)
}

func TestStaggerSpacesConsecutiveCalls(t *testing.T) {
	h := newHarness()
	client := &fakeClient{favoritesFn: func(int64) ([]core.Post, error) {
		return []core.Post{{ID: 1}}, nil
	}}
	s := h.scheduler(t, client)

	_, err := s.FetchFavorites(context.Background(), 42, 10)
	require.NoError(t, err)
	_, err = s.FetchFavorites(context.Background(), 42, 10)
	require.NoError(t, err)

	// One credential at 5 rpm: 12 seconds between dispatches.
	require.Equal(t, 12*time.Second, h.totalSlept())
}

func TestSchedulerConstructionDiscardsFailedProbes(t *testing.T) {
	broken := &fakeClient{rateLimitFn: func(string) (core.RateLimitStatus, error) {
		return core.RateLimitStatus{}, errors.New("probe failed")
	}}
	_, err := NewScheduler(context.Background(), []NamedClient{{ID: 1, Client: broken}}, nil)
	require.ErrorIs(t, err, ErrOutOfCredentials)
}

func TestContextCancellationBetweenAttempts(t *testing.T) {
	h := newHarness()
	client := &fakeClient{favoritesFn: func(int64) ([]core.Post, error) {
		return []core.Post{{ID: 1}}, nil
	}}
	s := h.scheduler(t, client)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.FetchFavorites(ctx, 42, 10)
	require.ErrorIs(t, err, context.Canceled)
}
