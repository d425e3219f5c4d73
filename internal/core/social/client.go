// Package social talks to the remote social-graph REST API. One Client is
// bound to one credential; rotation across credentials happens a layer up in
// the engine package.
package social

import (
	"context"

	"github.com/flocklens/flocklens/internal/core"
)

// TimelineParams selects a slice of a user's timeline.
type TimelineParams struct {
	UserID         int64
	TrimUser       bool
	IncludeReposts bool
	ExcludeReplies bool

	// MaxID bounds the page to posts at or older than this id. Zero means
	// unbounded (newest first).
	MaxID int64
}

// Client is the per-credential capability the engine schedules calls through.
type Client interface {
	// FollowingIDs returns the ids the user follows, up to maxCount.
	FollowingIDs(ctx context.Context, userID int64, maxCount int) ([]int64, error)

	// FollowerIDsPage returns one cursor-addressed page of the user's
	// followers. A cursor of -1 requests the first page.
	FollowerIDsPage(ctx context.Context, userID int64, cursor int64, count int) (*core.FollowerPage, error)

	// Timeline returns up to one page (200 posts) of the user's timeline.
	Timeline(ctx context.Context, params TimelineParams) ([]core.Post, error)

	// UsersLookup hydrates up to 100 user ids.
	UsersLookup(ctx context.Context, ids []int64) ([]core.User, error)

	// PostsLookup hydrates up to 100 post ids.
	PostsLookup(ctx context.Context, ids []int64) ([]core.Post, error)

	// Favorites returns up to count posts the user has favorited.
	Favorites(ctx context.Context, userID int64, count int) ([]core.Post, error)

	// CheckRateLimit probes the remote quota for one endpoint bucket.
	CheckRateLimit(ctx context.Context, endpoint string) (core.RateLimitStatus, error)
}
