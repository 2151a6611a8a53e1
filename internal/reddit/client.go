package reddit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	authBaseURL = "https://www.reddit.com"
	apiBaseURL  = "https://oauth.reddit.com"
)

// Client is a read-only HTTP client for the Reddit data API using the
// application-only OAuth2 flow. Tokens are fetched lazily and refreshed
// shortly before expiry.
type Client struct {
	clientID     string
	clientSecret string
	userAgent    string
	httpClient   *http.Client

	authBaseURL string
	apiBaseURL  string

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewClient(clientID, clientSecret, userAgent string) *Client {
	return &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		userAgent:    userAgent,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		authBaseURL: authBaseURL,
		apiBaseURL:  apiBaseURL,
	}
}

// ListNewPosts returns up to limit of the newest submissions in the
// subreddit, newest first.
func (c *Client) ListNewPosts(ctx context.Context, subreddit string, limit int) ([]Post, error) {
	path := fmt.Sprintf("/r/%s/new?limit=%d&raw_json=1", subreddit, limit)
	var result listing
	if err := c.get(ctx, path, &result); err != nil {
		return nil, fmt.Errorf("listing new posts in r/%s: %w", subreddit, err)
	}
	return postsFromListing(result), nil
}

// ListNewComments returns up to limit of the newest comments in the
// subreddit, newest first.
func (c *Client) ListNewComments(ctx context.Context, subreddit string, limit int) ([]Comment, error) {
	path := fmt.Sprintf("/r/%s/comments?limit=%d&raw_json=1", subreddit, limit)
	var result listing
	if err := c.get(ctx, path, &result); err != nil {
		return nil, fmt.Errorf("listing new comments in r/%s: %w", subreddit, err)
	}
	return commentsFromListing(result), nil
}

// ListPostComments returns the full comment tree of a submission, flattened
// depth-first.
func (c *Client) ListPostComments(ctx context.Context, postID string) ([]Comment, error) {
	path := fmt.Sprintf("/comments/%s?limit=500&raw_json=1", postID)
	var result []listing
	if err := c.get(ctx, path, &result); err != nil {
		return nil, fmt.Errorf("listing comments of post %s: %w", postID, err)
	}
	// The endpoint returns two listings: the submission and its comments.
	if len(result) < 2 {
		return nil, nil
	}
	return flattenComments(result[1]), nil
}

// GetPost fetches a single submission by id. Returns ErrNotFound when the id
// resolves to nothing.
func (c *Client) GetPost(ctx context.Context, id string) (Post, error) {
	var result listing
	if err := c.get(ctx, "/api/info?id=t3_"+url.QueryEscape(id)+"&raw_json=1", &result); err != nil {
		return Post{}, fmt.Errorf("fetching post %s: %w", id, err)
	}
	posts := postsFromListing(result)
	if len(posts) == 0 {
		return Post{}, ErrNotFound
	}
	return posts[0], nil
}

// GetComment fetches a single comment by id. Returns ErrNotFound when the id
// resolves to nothing.
func (c *Client) GetComment(ctx context.Context, id string) (Comment, error) {
	var result listing
	if err := c.get(ctx, "/api/info?id=t1_"+url.QueryEscape(id)+"&raw_json=1", &result); err != nil {
		return Comment{}, fmt.Errorf("fetching comment %s: %w", id, err)
	}
	comments := commentsFromListing(result)
	if len(comments) == 0 {
		return Comment{}, ErrNotFound
	}
	return comments[0], nil
}

var (
	// ErrNotFound is returned when an id resolves to no post or comment.
	ErrNotFound = errors.New("reddit item not found")

	// ErrBadURL is returned for links ParsePermalink cannot interpret.
	ErrBadURL = errors.New("not a reddit item link")
)

func (c *Client) get(ctx context.Context, path string, result any) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		// The ratelimit-reset header counts seconds until the window rolls.
		wait := 10 * time.Second
		if header := resp.Header.Get("x-ratelimit-reset"); header != "" {
			if seconds, err := strconv.Atoi(header); err == nil {
				wait = time.Duration(seconds) * time.Second
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		return c.get(ctx, path, result)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		// Token may have been revoked server-side; drop it so the next call
		// re-authenticates.
		c.mu.Lock()
		c.accessToken = ""
		c.mu.Unlock()
		return fmt.Errorf("unauthorized on GET %s", path)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d on GET %s: %s", resp.StatusCode, path, string(body))
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("unmarshaling response from GET %s: %w", path, err)
	}
	return nil
}

// token returns a valid application-only access token, refreshing it when
// within a minute of expiry.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry.Add(-time.Minute)) {
		return c.accessToken, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.authBaseURL+"/api/v1/access_token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("creating token request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("requesting access token: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d requesting access token: %s", resp.StatusCode, string(body))
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", fmt.Errorf("unmarshaling token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("empty access token in response")
	}

	c.accessToken = tokenResp.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)
	return c.accessToken, nil
}

// ParsePermalink extracts the item id from a reddit permalink. Links of the
// form /r/<sub>/comments/<post>/<slug>/<comment> resolve to the comment id;
// shorter forms resolve to the post id.
func ParsePermalink(link string) (id string, isComment bool, err error) {
	parsed, err := url.Parse(link)
	if err != nil {
		return "", false, fmt.Errorf("parsing permalink: %w", err)
	}

	parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	// r/<sub>/comments/<post>[/<slug>[/<comment>]]
	for i, part := range parts {
		if part != "comments" || i+1 >= len(parts) {
			continue
		}
		rest := parts[i+1:]
		if len(rest) >= 3 && rest[2] != "" {
			return rest[2], true, nil
		}
		return rest[0], false, nil
	}
	return "", false, fmt.Errorf("%w: %q", ErrBadURL, link)
}

func postsFromListing(l listing) []Post {
	posts := make([]Post, 0, len(l.Data.Children))
	for _, child := range l.Data.Children {
		if child.Kind != "t3" {
			continue
		}
		var data postData
		if err := json.Unmarshal(child.Data, &data); err != nil {
			continue
		}
		posts = append(posts, data.toPost())
	}
	return posts
}

func commentsFromListing(l listing) []Comment {
	comments := make([]Comment, 0, len(l.Data.Children))
	for _, child := range l.Data.Children {
		if child.Kind != "t1" {
			continue
		}
		var data commentData
		if err := json.Unmarshal(child.Data, &data); err != nil {
			continue
		}
		comments = append(comments, data.toComment())
	}
	return comments
}

// flattenComments walks a comment listing depth-first, descending into reply
// listings. "more" stubs are skipped.
func flattenComments(l listing) []Comment {
	var comments []Comment
	for _, child := range l.Data.Children {
		if child.Kind != "t1" {
			continue
		}
		var data commentData
		if err := json.Unmarshal(child.Data, &data); err != nil {
			continue
		}
		comments = append(comments, data.toComment())

		// Replies are either an empty string or a nested listing.
		raw, err := json.Marshal(data.Replies)
		if err != nil {
			continue
		}
		var replies listing
		if err := json.Unmarshal(raw, &replies); err == nil {
			comments = append(comments, flattenComments(replies)...)
		}
	}
	return comments
}
