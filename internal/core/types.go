package core

import "time"

// OpKind identifies one kind of read-only query against the remote service.
type OpKind string

const (
	OpFollowingIDs    OpKind = "following_ids"
	OpFollowerIDsPage OpKind = "follower_ids_page"
	OpTimeline        OpKind = "timeline"
	OpUsersLookup     OpKind = "users_lookup"
	OpPostsLookup     OpKind = "posts_lookup"
	OpFavorites       OpKind = "favorites"
)

// User is a hydrated account record.
type User struct {
	ID             int64  `json:"id"`
	Handle         string `json:"handle"`
	Location       string `json:"location,omitempty"`
	Verified       bool   `json:"verified"`
	FollowersCount int    `json:"followers_count"`
	FriendsCount   int    `json:"friends_count"`
	Protected      bool   `json:"protected"`
}

// Post is a hydrated post record.
type Post struct {
	ID            int64  `json:"id"`
	UserID        int64  `json:"user_id"`
	UserHandle    string `json:"user_handle,omitempty"`
	Text          string `json:"text,omitempty"`
	FullText      string `json:"full_text,omitempty"`
	FavoriteCount int    `json:"favorite_count"`
	RepostCount   int    `json:"repost_count"`
	CreatedAtUnix int64  `json:"created_at_unix"`
}

// FollowerPage is one page of a cursor-paged follower listing.
type FollowerPage struct {
	NextCursor     int64   `json:"next_cursor"`
	PreviousCursor int64   `json:"previous_cursor"`
	IDs            []int64 `json:"ids"`
}

// RateLimitStatus reports the remote quota for one endpoint bucket.
type RateLimitStatus struct {
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	Reset     int64 `json:"reset"`
}

// GroupResult is the outcome of one industry-group crawl: for every node
// reached, the number of in-group nodes that follow it.
type GroupResult struct {
	Seeds       []int64       `json:"seeds"`
	Depth       int           `json:"depth"`
	InDegree    map[int64]int `json:"in_degree"`
	Requests    int           `json:"requests"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt time.Time     `json:"completed_at"`
}

// CredentialRecord is one stored credential pair.
type CredentialRecord struct {
	ID        int64     `json:"id"`
	Label     string    `json:"label"`
	Token     string    `json:"-"`
	Secret    string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// CrawlRun is the persisted summary of one industry-group run.
type CrawlRun struct {
	ID          int64     `json:"id"`
	Seeds       []int64   `json:"seeds"`
	Depth       int       `json:"depth"`
	Nodes       int       `json:"nodes"`
	Requests    int       `json:"requests"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
}
