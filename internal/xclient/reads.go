package xclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"growthbot/internal/model"
)

type rawUser struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Username      string    `json:"username"`
	CreatedAt     time.Time `json:"created_at"`
	Verified      bool      `json:"verified"`
	Description   string    `json:"description"`
	PublicMetrics struct {
		FollowersCount int `json:"followers_count"`
		FollowingCount int `json:"following_count"`
		TweetCount     int `json:"tweet_count"`
	} `json:"public_metrics"`
}

func (r rawUser) toModel() model.User {
	return model.User{
		ID:             r.ID,
		Username:       r.Username,
		Name:           r.Name,
		CreatedAt:      r.CreatedAt,
		Verified:       r.Verified,
		Description:    r.Description,
		FollowersCount: r.PublicMetrics.FollowersCount,
		FollowingCount: r.PublicMetrics.FollowingCount,
		TweetCount:     r.PublicMetrics.TweetCount,
	}
}

type rawTweet struct {
	ID            string    `json:"id"`
	Text          string    `json:"text"`
	CreatedAt     time.Time `json:"created_at"`
	Lang          string    `json:"lang"`
	AuthorID      string    `json:"author_id"`
	PublicMetrics struct {
		LikeCount    int `json:"like_count"`
		ReplyCount   int `json:"reply_count"`
		RetweetCount int `json:"retweet_count"`
	} `json:"public_metrics"`
}

func (r rawTweet) toModel() model.Tweet {
	return model.Tweet{
		ID:           r.ID,
		Text:         r.Text,
		CreatedAt:    r.CreatedAt,
		Language:     r.Lang,
		AuthorID:     r.AuthorID,
		LikeCount:    r.PublicMetrics.LikeCount,
		ReplyCount:   r.PublicMetrics.ReplyCount,
		RetweetCount: r.PublicMetrics.RetweetCount,
	}
}

const userFields = "public_metrics,created_at,verified,description"
const tweetFields = "created_at,public_metrics,lang,author_id"

// GetUserByUsername fetches one user's public profile.
func (c *HTTPClient) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	var out model.User
	if username == "" {
		return out, errors.New("empty username")
	}
	u := fmt.Sprintf("%s/users/by/username/%s?user.fields=%s", c.baseURL, url.PathEscape(username), userFields)
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	c.auth(req, false)
	if err := c.limiter.Wait(ctx); err != nil {
		return out, err
	}
	resp, err := c.doWithRetry(ctx, req)
	if err != nil {
		return out, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return out, fmt.Errorf("x api status %d", resp.StatusCode)
	}
	var raw struct {
		Data rawUser `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return out, err
	}
	return raw.Data.toModel(), nil
}

// SearchRecent searches recent tweets and attaches author profiles from
// the response's user expansion.
func (c *HTTPClient) SearchRecent(ctx context.Context, query string, limit int) ([]model.Tweet, error) {
	u := fmt.Sprintf("%s/tweets/search/recent?max_results=%d&tweet.fields=%s&expansions=author_id&user.fields=%s&query=%s",
		c.baseURL, clamp(limit, 10, 100), tweetFields, userFields, url.QueryEscape(query))
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	c.auth(req, false)
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := c.doWithRetry(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("x api status %d", resp.StatusCode)
	}
	var raw struct {
		Data     []rawTweet `json:"data"`
		Includes struct {
			Users []rawUser `json:"users"`
		} `json:"includes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}
	authors := make(map[string]model.User, len(raw.Includes.Users))
	for _, ru := range raw.Includes.Users {
		authors[ru.ID] = ru.toModel()
	}
	out := make([]model.Tweet, 0, len(raw.Data))
	for _, rt := range raw.Data {
		t := rt.toModel()
		t.Author = authors[t.AuthorID]
		out = append(out, t)
	}
	return out, nil
}

// GetMentions returns recent tweets mentioning the user.
func (c *HTTPClient) GetMentions(ctx context.Context, userID string, limit int) ([]model.Tweet, error) {
	u := fmt.Sprintf("%s/users/%s/mentions?max_results=%d&tweet.fields=%s",
		c.baseURL, url.PathEscape(userID), clamp(limit, 5, 100), tweetFields)
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	c.auth(req, false)
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := c.doWithRetry(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("x api status %d", resp.StatusCode)
	}
	var raw struct {
		Data []rawTweet `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}
	out := make([]model.Tweet, 0, len(raw.Data))
	for _, rt := range raw.Data {
		out = append(out, rt.toModel())
	}
	return out, nil
}

// GetFollowerIDs pages through the user's followers and returns their IDs.
func (c *HTTPClient) GetFollowerIDs(ctx context.Context, userID string) ([]string, error) {
	return c.collectUserIDs(ctx, fmt.Sprintf("%s/users/%s/followers", c.baseURL, url.PathEscape(userID)))
}

// GetFollowingIDs pages through the accounts the user follows and returns their IDs.
func (c *HTTPClient) GetFollowingIDs(ctx context.Context, userID string) ([]string, error) {
	return c.collectUserIDs(ctx, fmt.Sprintf("%s/users/%s/following", c.baseURL, url.PathEscape(userID)))
}

func (c *HTTPClient) collectUserIDs(ctx context.Context, endpoint string) ([]string, error) {
	var out []string
	token := ""
	for page := 0; page < 15; page++ {
		u := endpoint + "?max_results=1000"
		if token != "" {
			u += "&pagination_token=" + url.QueryEscape(token)
		}
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		c.auth(req, false)
		if err := c.limiter.Wait(ctx); err != nil {
			return out, err
		}
		resp, err := c.doWithRetry(ctx, req)
		if err != nil {
			return out, err
		}
		var raw struct {
			Data []struct {
				ID string `json:"id"`
			} `json:"data"`
			Meta struct {
				NextToken string `json:"next_token"`
			} `json:"meta"`
		}
		if resp.StatusCode >= 400 {
			_ = resp.Body.Close()
			return out, fmt.Errorf("x api status %d", resp.StatusCode)
		}
		err = json.NewDecoder(resp.Body).Decode(&raw)
		_ = resp.Body.Close()
		if err != nil {
			return out, err
		}
		for _, d := range raw.Data {
			out = append(out, d.ID)
		}
		if raw.Meta.NextToken == "" {
			break
		}
		token = raw.Meta.NextToken
	}
	return out, nil
}
