package xclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

func (c *HTTPClient) postJSON(ctx context.Context, path string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.auth(req, true)
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return c.doWithRetry(ctx, req)
}

func decodeCreatedID(resp *http.Response) (string, error) {
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("x api status %d", resp.StatusCode)
	}
	var raw struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", err
	}
	return raw.Data.ID, nil
}

func closeChecked(resp *http.Response) error {
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("x api status %d", resp.StatusCode)
	}
	return nil
}

// PostTweet publishes a new tweet and returns its ID.
func (c *HTTPClient) PostTweet(ctx context.Context, text string) (string, error) {
	resp, err := c.postJSON(ctx, "/tweets", map[string]any{"text": text})
	if err != nil {
		return "", err
	}
	return decodeCreatedID(resp)
}

// Reply publishes a reply to parentID and returns the new tweet's ID.
func (c *HTTPClient) Reply(ctx context.Context, parentID, text string) (string, error) {
	resp, err := c.postJSON(ctx, "/tweets", map[string]any{
		"text":  text,
		"reply": map[string]string{"in_reply_to_tweet_id": parentID},
	})
	if err != nil {
		return "", err
	}
	return decodeCreatedID(resp)
}

// Like records a like of tweetID on behalf of userID.
func (c *HTTPClient) Like(ctx context.Context, userID, tweetID string) error {
	resp, err := c.postJSON(ctx, fmt.Sprintf("/users/%s/likes", url.PathEscape(userID)), map[string]string{"tweet_id": tweetID})
	if err != nil {
		return err
	}
	return closeChecked(resp)
}

// Retweet retweets tweetID on behalf of userID.
func (c *HTTPClient) Retweet(ctx context.Context, userID, tweetID string) error {
	resp, err := c.postJSON(ctx, fmt.Sprintf("/users/%s/retweets", url.PathEscape(userID)), map[string]string{"tweet_id": tweetID})
	if err != nil {
		return err
	}
	return closeChecked(resp)
}

// Follow makes userID follow targetID.
func (c *HTTPClient) Follow(ctx context.Context, userID, targetID string) error {
	resp, err := c.postJSON(ctx, fmt.Sprintf("/users/%s/following", url.PathEscape(userID)), map[string]string{"target_user_id": targetID})
	if err != nil {
		return err
	}
	return closeChecked(resp)
}

// Unfollow removes targetID from userID's following.
func (c *HTTPClient) Unfollow(ctx context.Context, userID, targetID string) error {
	u := fmt.Sprintf("%s/users/%s/following/%s", c.baseURL, url.PathEscape(userID), url.PathEscape(targetID))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return err
	}
	c.auth(req, true)
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	resp, err := c.doWithRetry(ctx, req)
	if err != nil {
		return err
	}
	return closeChecked(resp)
}
