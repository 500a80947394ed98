// Package xclient talks to the X API v2. The Client interface is the
// capability surface the rest of the bot consumes; HTTPClient is the real
// implementation with pacing and retry.
package xclient

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"growthbot/internal/model"
)

// Client defines the platform operations the bot uses. All methods are
// fallible; callers treat failures as "no effect" and continue.
type Client interface {
	SearchRecent(ctx context.Context, query string, limit int) ([]model.Tweet, error)
	GetUserByUsername(ctx context.Context, username string) (model.User, error)
	GetMentions(ctx context.Context, userID string, limit int) ([]model.Tweet, error)
	GetFollowerIDs(ctx context.Context, userID string) ([]string, error)
	GetFollowingIDs(ctx context.Context, userID string) ([]string, error)

	PostTweet(ctx context.Context, text string) (string, error)
	Reply(ctx context.Context, parentID, text string) (string, error)
	Like(ctx context.Context, userID, tweetID string) error
	Retweet(ctx context.Context, userID, tweetID string) error
	Follow(ctx context.Context, userID, targetID string) error
	Unfollow(ctx context.Context, userID, targetID string) error
}

// HTTPClient is a bearer-token client for X API v2. Reads use the app
// bearer token; writes use the user-auth token when provided.
type HTTPClient struct {
	baseURL     string
	bearerToken string
	userToken   string
	httpClient  *http.Client
	limiter     *rate.Limiter
	maxAttempts int
	baseBackoff time.Duration
}

func NewHTTPClient(bearerToken, userToken string) *HTTPClient {
	return &HTTPClient{
		baseURL:     "https://api.twitter.com/2",
		bearerToken: bearerToken,
		userToken:   userToken,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		limiter:     newDefaultLimiter(),
		maxAttempts: getEnvInt("X_API_MAX_ATTEMPTS", 5),
		baseBackoff: time.Duration(getEnvInt("X_API_BASE_BACKOFF_MS", 500)) * time.Millisecond,
	}
}

func (c *HTTPClient) auth(req *http.Request, write bool) {
	token := c.bearerToken
	if write && c.userToken != "" {
		token = c.userToken
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", "application/json")
}

func (c *HTTPClient) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	backoff := c.baseBackoff
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		resp, err := c.httpClient.Do(req.Clone(ctx))
		if err == nil {
			if resp.StatusCode == http.StatusTooManyRequests || (resp.StatusCode >= 500 && resp.StatusCode <= 599) {
				ra := resp.Header.Get("Retry-After")
				_ = resp.Body.Close()
				wait := backoff
				if ra != "" {
					if secs, err := strconv.Atoi(ra); err == nil {
						wait = time.Duration(secs) * time.Second
					} else if t, err := http.ParseTime(ra); err == nil {
						if d := time.Until(t); d > 0 {
							wait = d
						}
					}
				}
				// jitter +/-20%
				jitter := time.Duration(float64(wait) * 0.2)
				if jitter > 0 {
					wait = wait - jitter + time.Duration(time.Now().UnixNano()%int64(2*jitter))
				}
				select {
				case <-time.After(wait):
				case <-ctx.Done():
					return nil, ctx.Err()
				}
				backoff *= 2
				continue
			}
			return resp, nil
		}
		lastErr = err
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		backoff *= 2
	}
	return nil, fmt.Errorf("request failed after %d attempts: %v", c.maxAttempts, lastErr)
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if i, err := strconv.Atoi(v); err == nil && i > 0 {
		return i
	}
	return def
}
