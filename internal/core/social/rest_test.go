package social

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *RESTClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewRESTClient(Credential{Label: "test", Token: "tok"}, srv.URL)
	return client
}

func TestFollowingIDs(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/friends/ids.json", r.URL.Path)
		require.Equal(t, "42", r.URL.Query().Get("user_id"))
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ids":[7,8,9]}`)) // nolint:errcheck
	})

	ids, err := client.FollowingIDs(context.Background(), 42, 5000)
	require.NoError(t, err)
	require.Equal(t, []int64{7, 8, 9}, ids)
}

func TestFollowerIDsPage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/followers/ids.json", r.URL.Path)
		require.Equal(t, "-1", r.URL.Query().Get("cursor"))
		w.Write([]byte(`{"ids":[1,2,3],"next_cursor":1234,"previous_cursor":0}`)) // nolint:errcheck
	})

	page, err := client.FollowerIDsPage(context.Background(), 42, -1, 5000)
	require.NoError(t, err)
	require.Equal(t, int64(1234), page.NextCursor)
	require.Equal(t, []int64{1, 2, 3}, page.IDs)
}

func TestTimelineMaxID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/statuses/user_timeline.json", r.URL.Path)
		require.Equal(t, "99", r.URL.Query().Get("max_id"))
		require.Equal(t, "200", r.URL.Query().Get("count"))
		w.Write([]byte(`[{"id":99,"text":"hi","user":{"id":42,"screen_name":"someone"}}]`)) // nolint:errcheck
	})

	posts, err := client.Timeline(context.Background(), TimelineParams{UserID: 42, MaxID: 99})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	require.Equal(t, int64(99), posts[0].ID)
	require.Equal(t, "someone", posts[0].UserHandle)
}

func TestUsersLookupJoinsIDs(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/lookup.json", r.URL.Path)
		require.Equal(t, "1,2,3", r.URL.Query().Get("user_id"))
		w.Write([]byte(`[{"id":1,"screen_name":"a","followers_count":10}]`)) // nolint:errcheck
	})

	users, err := client.UsersLookup(context.Background(), []int64{1, 2, 3})
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Equal(t, "a", users[0].Handle)
	require.Equal(t, 10, users[0].FollowersCount)
}

func TestCheckRateLimit(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/application/rate_limit_status.json", r.URL.Path)
		w.Write([]byte(`{"resources":{"friends":{"/friends/ids.json":{"limit":15,"remaining":3,"reset":1700000000}}}}`)) // nolint:errcheck
	})

	status, err := client.CheckRateLimit(context.Background(), "/friends/ids.json")
	require.NoError(t, err)
	require.Equal(t, 3, status.Remaining)
	require.Equal(t, int64(1700000000), status.Reset)
}

func TestCheckRateLimitUnknownEndpoint(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"resources":{}}`)) // nolint:errcheck
	})

	_, err := client.CheckRateLimit(context.Background(), "/favorites/list.json")
	require.Error(t, err)
}

func TestRateLimitedStatusCode(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"errors":[{"code":88,"message":"Rate limit exceeded"}]}`)) // nolint:errcheck
	})

	_, err := client.FollowingIDs(context.Background(), 42, 0)
	require.Error(t, err)
	require.True(t, IsRateLimited(err))
	require.False(t, IsNotAuthorized(err))
}

func TestRateLimitedPayloadCodeOnly(t *testing.T) {
	// Some deployments answer 200-family-adjacent errors with a 403 carrying
	// the quota code in the body.
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"errors":[{"code":88,"message":"Rate limit exceeded"}]}`)) // nolint:errcheck
	})

	_, err := client.FollowingIDs(context.Background(), 42, 0)
	require.True(t, IsRateLimited(err))
}

func TestNotAuthorized(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"Not authorized."}`)) // nolint:errcheck
	})

	_, err := client.Timeline(context.Background(), TimelineParams{UserID: 42})
	require.True(t, IsNotAuthorized(err))
	require.False(t, IsRateLimited(err))
}

func TestOtherErrorKind(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"errors":[{"code":131,"message":"Internal error"}]}`)) // nolint:errcheck
	})

	_, err := client.FollowingIDs(context.Background(), 42, 0)
	require.Error(t, err)
	require.False(t, IsRateLimited(err))
	require.False(t, IsNotAuthorized(err))
}
