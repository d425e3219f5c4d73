package social

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/flocklens/flocklens/internal/core"
)

const (
	defaultBaseURL     = "https://api.flock.example"
	defaultTimeout     = 10 * time.Second
	timelinePageSize   = 200
	rateLimitStatusURL = "/application/rate_limit_status.json"
)

// Credential is one token pair granting independent quota.
type Credential struct {
	Label  string
	Token  string
	Secret string
}

// RESTClient implements Client over the remote HTTP API for one credential.
type RESTClient struct {
	Credential Credential
	BaseURL    string
	Client     *http.Client
	Timeout    time.Duration
}

// NewRESTClient builds a client whose transport retries only network-level
// failures. HTTP-level rejections (401/403/429/5xx) surface unretried so the
// scheduler can classify them.
func NewRESTClient(cred Credential, baseURL string) *RESTClient {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.RetryWaitMin = 500 * time.Millisecond
	retryClient.RetryWaitMax = 5 * time.Second
	retryClient.Logger = nil
	retryClient.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		// Transport errors only; any HTTP response belongs to the caller.
		return err != nil, nil
	}

	return &RESTClient{
		Credential: cred,
		BaseURL:    baseURL,
		Client:     retryClient.StandardClient(),
		Timeout:    defaultTimeout,
	}
}

// FollowingIDs returns the ids the user follows, up to maxCount.
func (c *RESTClient) FollowingIDs(ctx context.Context, userID int64, maxCount int) ([]int64, error) {
	query := url.Values{}
	query.Set("user_id", strconv.FormatInt(userID, 10))
	if maxCount > 0 {
		query.Set("count", strconv.Itoa(maxCount))
	}

	var payload struct {
		IDs []int64 `json:"ids"`
	}
	if err := c.get(ctx, "/friends/ids.json", query, &payload); err != nil {
		return nil, err
	}
	return payload.IDs, nil
}

// FollowerIDsPage returns one cursor-addressed page of the user's followers.
func (c *RESTClient) FollowerIDsPage(ctx context.Context, userID int64, cursor int64, count int) (*core.FollowerPage, error) {
	query := url.Values{}
	query.Set("user_id", strconv.FormatInt(userID, 10))
	query.Set("cursor", strconv.FormatInt(cursor, 10))
	if count > 0 {
		query.Set("count", strconv.Itoa(count))
	}

	var payload struct {
		IDs            []int64 `json:"ids"`
		NextCursor     int64   `json:"next_cursor"`
		PreviousCursor int64   `json:"previous_cursor"`
	}
	if err := c.get(ctx, "/followers/ids.json", query, &payload); err != nil {
		return nil, err
	}
	return &core.FollowerPage{
		NextCursor:     payload.NextCursor,
		PreviousCursor: payload.PreviousCursor,
		IDs:            payload.IDs,
	}, nil
}

// Timeline returns up to one page of the user's timeline, newest first.
func (c *RESTClient) Timeline(ctx context.Context, params TimelineParams) ([]core.Post, error) {
	query := url.Values{}
	query.Set("user_id", strconv.FormatInt(params.UserID, 10))
	query.Set("count", strconv.Itoa(timelinePageSize))
	query.Set("trim_user", strconv.FormatBool(params.TrimUser))
	query.Set("include_rts", strconv.FormatBool(params.IncludeReposts))
	query.Set("exclude_replies", strconv.FormatBool(params.ExcludeReplies))
	if params.MaxID > 0 {
		query.Set("max_id", strconv.FormatInt(params.MaxID, 10))
	}

	var payload []wirePost
	if err := c.get(ctx, "/statuses/user_timeline.json", query, &payload); err != nil {
		return nil, err
	}
	return decodePosts(payload), nil
}

// UsersLookup hydrates up to 100 user ids in one call.
func (c *RESTClient) UsersLookup(ctx context.Context, ids []int64) ([]core.User, error) {
	query := url.Values{}
	query.Set("user_id", joinIDs(ids))

	var payload []wireUser
	if err := c.get(ctx, "/users/lookup.json", query, &payload); err != nil {
		return nil, err
	}

	users := make([]core.User, 0, len(payload))
	for _, u := range payload {
		users = append(users, core.User{
			ID:             u.ID,
			Handle:         u.ScreenName,
			Location:       u.Location,
			Verified:       u.Verified,
			FollowersCount: u.FollowersCount,
			FriendsCount:   u.FriendsCount,
			Protected:      u.Protected,
		})
	}
	return users, nil
}

// PostsLookup hydrates up to 100 post ids in one call.
func (c *RESTClient) PostsLookup(ctx context.Context, ids []int64) ([]core.Post, error) {
	query := url.Values{}
	query.Set("id", joinIDs(ids))
	query.Set("include_entities", "true")

	var payload []wirePost
	if err := c.get(ctx, "/statuses/lookup.json", query, &payload); err != nil {
		return nil, err
	}
	return decodePosts(payload), nil
}

// Favorites returns up to count posts the user has favorited.
func (c *RESTClient) Favorites(ctx context.Context, userID int64, count int) ([]core.Post, error) {
	query := url.Values{}
	query.Set("user_id", strconv.FormatInt(userID, 10))
	if count > 0 {
		query.Set("count", strconv.Itoa(count))
	}
	query.Set("include_entities", "false")

	var payload []wirePost
	if err := c.get(ctx, "/favorites/list.json", query, &payload); err != nil {
		return nil, err
	}
	return decodePosts(payload), nil
}

// CheckRateLimit probes the remote quota bucket for one endpoint.
func (c *RESTClient) CheckRateLimit(ctx context.Context, endpoint string) (core.RateLimitStatus, error) {
	var payload struct {
		Resources map[string]map[string]struct {
			Limit     int   `json:"limit"`
			Remaining int   `json:"remaining"`
			Reset     int64 `json:"reset"`
		} `json:"resources"`
	}
	if err := c.get(ctx, rateLimitStatusURL, nil, &payload); err != nil {
		return core.RateLimitStatus{}, err
	}

	for _, family := range payload.Resources {
		if status, ok := family[endpoint]; ok {
			return core.RateLimitStatus{
				Limit:     status.Limit,
				Remaining: status.Remaining,
				Reset:     status.Reset,
			}, nil
		}
	}

	return core.RateLimitStatus{}, fmt.Errorf("no rate limit status for endpoint %s", endpoint)
}

func (c *RESTClient) get(ctx context.Context, path string, query url.Values, out any) error {
	base := c.baseURL()
	reqURL := base.ResolveReference(&url.URL{Path: path})
	if len(query) > 0 {
		reqURL.RawQuery = query.Encode()
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if token := strings.TrimSpace(c.Credential.Token); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := c.Client
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup on HTTP response body

	if resp.StatusCode != http.StatusOK {
		return decodeAPIError(resp)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *RESTClient) baseURL() *url.URL {
	if c != nil && c.BaseURL != "" {
		if parsed, err := url.Parse(c.BaseURL); err == nil {
			return parsed
		}
	}
	parsed, _ := url.Parse(defaultBaseURL)
	return parsed
}

func decodeAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	var payload struct {
		Errors []struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"errors"`
		Error string `json:"error"`
	}

	apiErr := &Error{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case len(payload.Errors) > 0:
			apiErr.Code = payload.Errors[0].Code
			apiErr.Message = payload.Errors[0].Message
		case payload.Error != "":
			apiErr.Message = payload.Error
		}
	}

	apiErr.Kind = classify(apiErr.StatusCode, apiErr.Code, apiErr.Message)
	return apiErr
}

type wireUser struct {
	ID             int64  `json:"id"`
	ScreenName     string `json:"screen_name"`
	Location       string `json:"location"`
	Verified       bool   `json:"verified"`
	FollowersCount int    `json:"followers_count"`
	FriendsCount   int    `json:"friends_count"`
	Protected      bool   `json:"protected"`
}

type wirePost struct {
	ID            int64  `json:"id"`
	Text          string `json:"text"`
	FullText      string `json:"full_text"`
	FavoriteCount int    `json:"favorite_count"`
	RetweetCount  int    `json:"retweet_count"`
	TimestampSecs int64  `json:"timestamp_secs"`
	User          struct {
		ID         int64  `json:"id"`
		ScreenName string `json:"screen_name"`
	} `json:"user"`
}

func decodePosts(payload []wirePost) []core.Post {
	posts := make([]core.Post, 0, len(payload))
	for _, p := range payload {
		posts = append(posts, core.Post{
			ID:            p.ID,
			UserID:        p.User.ID,
			UserHandle:    p.User.ScreenName,
			Text:          p.Text,
			FullText:      p.FullText,
			FavoriteCount: p.FavoriteCount,
			RepostCount:   p.RetweetCount,
			CreatedAtUnix: p.TimestampSecs,
		})
	}
	return posts
}

func joinIDs(ids []int64) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	return strings.Join(parts, ",")
}
