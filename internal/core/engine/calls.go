package engine

import (
	"context"

	"github.com/flocklens/flocklens/internal/core"
	"github.com/flocklens/flocklens/internal/core/social"
)

// Single-call wrappers over attempt. Each binds one operation kind to its
// client method; pagination and chunking live in paginate.go.

func (s *Scheduler) followingIDs(ctx context.Context, userID int64, maxCount int) ([]int64, error) {
	return attempt(ctx, s, core.OpFollowingIDs, nil, func(ctx context.Context, c social.Client) ([]int64, error) {
		return c.FollowingIDs(ctx, userID, maxCount)
	})
}

func (s *Scheduler) followerIDsPage(ctx context.Context, userID int64, cursor int64, count int) (*core.FollowerPage, error) {
	return attempt(ctx, s, core.OpFollowerIDsPage, &core.FollowerPage{}, func(ctx context.Context, c social.Client) (*core.FollowerPage, error) {
		return c.FollowerIDsPage(ctx, userID, cursor, count)
	})
}

func (s *Scheduler) timelinePage(ctx context.Context, params social.TimelineParams) ([]core.Post, error) {
	return attempt(ctx, s, core.OpTimeline, nil, func(ctx context.Context, c social.Client) ([]core.Post, error) {
		return c.Timeline(ctx, params)
	})
}

func (s *Scheduler) usersLookupChunk(ctx context.Context, ids []int64) ([]core.User, error) {
	return attempt(ctx, s, core.OpUsersLookup, nil, func(ctx context.Context, c social.Client) ([]core.User, error) {
		return c.UsersLookup(ctx, ids)
	})
}

func (s *Scheduler) postsLookupChunk(ctx context.Context, ids []int64) ([]core.Post, error) {
	return attempt(ctx, s, core.OpPostsLookup, nil, func(ctx context.Context, c social.Client) ([]core.Post, error) {
		return c.PostsLookup(ctx, ids)
	})
}

// FetchFavorites returns up to count posts the user has favorited. A private
// account yields an empty slice.
func (s *Scheduler) FetchFavorites(ctx context.Context, userID int64, count int) ([]core.Post, error) {
	return attempt(ctx, s, core.OpFavorites, nil, func(ctx context.Context, c social.Client) ([]core.Post, error) {
		return c.Favorites(ctx, userID, count)
	})
}

// FetchFollowingIDs returns the ids the user follows, up to maxCount (0 for
// the server default). A private account yields an empty slice.
func (s *Scheduler) FetchFollowingIDs(ctx context.Context, userID int64, maxCount int) ([]int64, error) {
	return s.followingIDs(ctx, userID, maxCount)
}
