package core

// OpDescriptor is static metadata for one query kind: the remote quota bucket
// it draws from and how many requests a single credential may issue per
// minute against it.
type OpDescriptor struct {
	Kind              OpKind
	RateLimitEndpoint string
	RequestsPerMinute int
}

// Descriptors is the fixed operation table. Budgets follow the remote
// service's published per-credential windows.
var Descriptors = map[OpKind]OpDescriptor{
	OpFollowingIDs: {
		Kind:              OpFollowingIDs,
		RateLimitEndpoint: "/friends/ids.json",
		RequestsPerMinute: 1,
	},
	OpFollowerIDsPage: {
		Kind:              OpFollowerIDsPage,
		RateLimitEndpoint: "/followers/ids.json",
		RequestsPerMinute: 1,
	},
	OpTimeline: {
		Kind:              OpTimeline,
		RateLimitEndpoint: "/statuses/user_timeline.json",
		RequestsPerMinute: 60,
	},
	OpUsersLookup: {
		Kind:              OpUsersLookup,
		RateLimitEndpoint: "/users/lookup.json",
		RequestsPerMinute: 60,
	},
	OpPostsLookup: {
		Kind:              OpPostsLookup,
		RateLimitEndpoint: "/statuses/lookup.json",
		RequestsPerMinute: 60,
	},
	OpFavorites: {
		Kind:              OpFavorites,
		RateLimitEndpoint: "/favorites/list.json",
		RequestsPerMinute: 5,
	},
}

// OpKinds lists every operation kind in a stable order.
func OpKinds() []OpKind {
	return []OpKind{
		OpFollowingIDs,
		OpFollowerIDsPage,
		OpTimeline,
		OpUsersLookup,
		OpPostsLookup,
		OpFavorites,
	}
}
