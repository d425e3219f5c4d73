package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flocklens/flocklens/internal/core"
	"github.com/flocklens/flocklens/internal/core/social"
)

func TestFetchFollowerIDsStopsOnZeroCursor(t *testing.T) {
	h := newHarness()
	client := &fakeClient{followerPages: []*core.FollowerPage{
		{IDs: []int64{1, 2, 3}, NextCursor: 500, PreviousCursor: 0},
		{IDs: []int64{4, 5}, NextCursor: 0, PreviousCursor: 500},
	}}
	s := h.scheduler(t, client)

	ids, err := s.FetchFollowerIDs(context.Background(), 42, 1000, nil)
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2, 3, 4, 5}, ids)
	require.Equal(t, 2, client.followerCalls)
}

func TestFetchFollowerIDsStopsOnStuckCursor(t *testing.T) {
	h := newHarness()
	client := &fakeClient{followerPages: []*core.FollowerPage{
		{IDs: []int64{1, 2}, NextCursor: 7, PreviousCursor: 7},
	}}
	s := h.scheduler(t, client)

	ids, err := s.FetchFollowerIDs(context.Background(), 42, 1000, nil)
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2}, ids)
	require.Equal(t, 1, client.followerCalls)
}

func TestFetchFollowerIDsStopsAtMinCount(t *testing.T) {
	h := newHarness()
	client := &fakeClient{followerPages: []*core.FollowerPage{
		{IDs: []int64{1, 2, 3}, NextCursor: 10},
		{IDs: []int64{4, 5, 6}, NextCursor: 20},
		{IDs: []int64{7, 8, 9}, NextCursor: 30},
	}}
	s := h.scheduler(t, client)

	ids, err := s.FetchFollowerIDs(context.Background(), 42, 5, nil)
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2, 3, 4, 5, 6}, ids)
	require.Equal(t, 2, client.followerCalls)
}

func TestFetchFollowerIDsAppliesTransform(t *testing.T) {
	h := newHarness()
	client := &fakeClient{followerPages: []*core.FollowerPage{
		{IDs: []int64{1, 2, 3, 4}, NextCursor: 0},
	}}
	s := h.scheduler(t, client)

	evens := func(_ context.Context, ids []int64) ([]int64, error) {
		var kept []int64
		for _, id := range ids {
			if id%2 == 0 {
				kept = append(kept, id)
			}
		}
		return kept, nil
	}

	ids, err := s.FetchFollowerIDs(context.Background(), 42, 100, evens)
	require.NoError(t, err)
	require.Equal(t, []int64{2, 4}, ids)
}

func TestFetchTimelineDropsBoundaryDuplicate(t *testing.T) {
	h := newHarness()
	client := &fakeClient{timelinePages: [][]core.Post{
		{{ID: 10}, {ID: 9}, {ID: 8}},
		{{ID: 8}, {ID: 7}, {ID: 6}},
	}}
	s := h.scheduler(t, client)

	posts, err := s.FetchTimeline(context.Background(), social.TimelineParams{UserID: 42}, 5, 10)
	require.NoError(t, err)

	got := make([]int64, 0, len(posts))
	for _, p := range posts {
		got = append(got, p.ID)
	}
	require.Equal(t, []int64{10, 9, 8, 7, 6}, got)
}

func TestFetchTimelineStopsOnEmptyPage(t *testing.T) {
	h := newHarness()
	client := &fakeClient{timelinePages: [][]core.Post{
		{{ID: 5}, {ID: 4}},
		{},
	}}
	s := h.scheduler(t, client)

	posts, err := s.FetchTimeline(context.Background(), social.TimelineParams{UserID: 42}, 100, 10)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	require.Equal(t, 2, client.timelineCalls)
}

func TestFetchTimelineStopsOnLoneWatermarkPost(t *testing.T) {
	h := newHarness()
	client := &fakeClient{timelinePages: [][]core.Post{
		{{ID: 5}, {ID: 4}},
		{{ID: 4}},
	}}
	s := h.scheduler(t, client)

	posts, err := s.FetchTimeline(context.Background(), social.TimelineParams{UserID: 42}, 100, 10)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	require.Equal(t, 2, client.timelineCalls)
}

func TestFetchTimelineRespectsCallBudget(t *testing.T) {
	h := newHarness()
	client := &fakeClient{timelinePages: [][]core.Post{
		{{ID: 10}, {ID: 9}},
		{{ID: 9}, {ID: 8}},
		{{ID: 8}, {ID: 7}},
	}}
	s := h.scheduler(t, client)

	_, err := s.FetchTimeline(context.Background(), social.TimelineParams{UserID: 42}, 100, 2)
	require.NoError(t, err)
	require.Equal(t, 2, client.timelineCalls)
}

func TestLookupUsersEmptyInputMakesNoCalls(t *testing.T) {
	h := newHarness()
	client := &fakeClient{}
	s := h.scheduler(t, client)

	users, err := s.LookupUsers(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, users)
	require.Zero(t, client.lookupCalls)
}

func TestLookupUsersChunksAt100(t *testing.T) {
	h := newHarness()
	client := &fakeClient{}
	s := h.scheduler(t, client)

	ids := make([]int64, 150)
	for i := range ids {
		ids[i] = int64(i + 1)
	}

	users, err := s.LookupUsers(context.Background(), ids)
	require.NoError(t, err)
	require.Len(t, users, 150)
	require.Equal(t, 2, client.lookupCalls)
	require.Len(t, client.userBatches[0], 100)
	require.Len(t, client.userBatches[1], 50)
	// Order is preserved across the chunk boundary.
	require.Equal(t, int64(1), users[0].ID)
	require.Equal(t, int64(101), users[100].ID)
	require.Equal(t, int64(150), users[149].ID)
}

func TestLookupPostsChunksInOrder(t *testing.T) {
	h := newHarness()
	client := &fakeClient{}
	s := h.scheduler(t, client)

	posts, err := s.LookupPosts(context.Background(), []int64{3, 1, 2})
	require.NoError(t, err)
	require.Len(t, posts, 3)
	require.Equal(t, int64(3), posts[0].ID)
	require.Equal(t, 1, client.lookupCalls)
}
