package engine

import (
	"context"

	"github.com/flocklens/flocklens/internal/core"
	"github.com/flocklens/flocklens/internal/core/social"
)

const (
	// lookupChunkSize is the remote limit on ids per lookup call.
	lookupChunkSize = 100

	// defaultFollowerPageSize is the largest follower page the remote serves.
	defaultFollowerPageSize = 5000

	// defaultTimelineCalls bounds a timeline walk when the caller gives no
	// budget of its own.
	defaultTimelineCalls = 16
)

// PageTransform maps one raw follower page to the ids worth keeping, e.g.
// hydrate then filter. Nil keeps the page as is.
type PageTransform func(ctx context.Context, ids []int64) ([]int64, error)

// FetchFollowerIDs walks the cursor-paged follower listing until at least
// minCount raw ids have been seen or the server signals the end. The
// transform, when set, runs per page and its output is what accumulates.
func (s *Scheduler) FetchFollowerIDs(ctx context.Context, userID int64, minCount int, transform PageTransform) ([]int64, error) {
	if minCount <= 0 {
		return nil, nil
	}

	pageSize := defaultFollowerPageSize
	if minCount < pageSize {
		pageSize = minCount
	}

	var (
		results []int64
		seen    int
		cursor  int64 = -1
	)

	for {
		page, err := s.followerIDsPage(ctx, userID, cursor, pageSize)
		if err != nil {
			return nil, err
		}

		seen += len(page.IDs)

		ids := page.IDs
		if transform != nil {
			ids, err = transform(ctx, page.IDs)
			if err != nil {
				return nil, err
			}
		}
		results = append(results, ids...)

		// next_cursor == 0 is the server's end marker; a cursor that stopped
		// moving would loop forever.
		if page.NextCursor == 0 || page.NextCursor == page.PreviousCursor || seen >= minCount {
			return results, nil
		}
		cursor = page.NextCursor
	}
}

// FetchTimeline walks a user's timeline backwards using a max-id watermark
// until minCount posts are accumulated or maxCalls scheduler calls have been
// spent. maxCalls <= 0 uses a default budget.
func (s *Scheduler) FetchTimeline(ctx context.Context, params social.TimelineParams, minCount int, maxCalls int) ([]core.Post, error) {
	if minCount <= 0 {
		return nil, nil
	}
	if maxCalls <= 0 {
		maxCalls = defaultTimelineCalls
	}

	var (
		posts     []core.Post
		watermark int64
	)

	for call := 0; call < maxCalls; call++ {
		params.MaxID = watermark
		page, err := s.timelinePage(ctx, params)
		if err != nil {
			return nil, err
		}

		if len(page) == 0 {
			return posts, nil
		}
		// A single post equal to the watermark means the previous page
		// already ended at the oldest post.
		if len(page) == 1 && page[0].ID == watermark {
			return posts, nil
		}

		minID := page[0].ID
		for _, post := range page {
			if post.ID < minID {
				minID = post.ID
			}
			if watermark != 0 && post.ID == watermark {
				// Boundary duplicate: max_id is inclusive on the remote side.
				continue
			}
			posts = append(posts, post)
		}

		if len(posts) >= minCount {
			return posts, nil
		}
		watermark = minID
	}

	return posts, nil
}

// LookupUsers hydrates ids in order, 100 per call. An empty input makes no
// calls at all.
func (s *Scheduler) LookupUsers(ctx context.Context, ids []int64) ([]core.User, error) {
	var users []core.User
	for _, chunk := range chunkIDs(ids, lookupChunkSize) {
		batch, err := s.usersLookupChunk(ctx, chunk)
		if err != nil {
			return nil, err
		}
		users = append(users, batch...)
	}
	return users, nil
}

// LookupPosts hydrates post ids in order, 100 per call.
func (s *Scheduler) LookupPosts(ctx context.Context, ids []int64) ([]core.Post, error) {
	var posts []core.Post
	for _, chunk := range chunkIDs(ids, lookupChunkSize) {
		batch, err := s.postsLookupChunk(ctx, chunk)
		if err != nil {
			return nil, err
		}
		posts = append(posts, batch...)
	}
	return posts, nil
}

func chunkIDs(ids []int64, size int) [][]int64 {
	if len(ids) == 0 {
		return nil
	}
	chunks := make([][]int64, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}
