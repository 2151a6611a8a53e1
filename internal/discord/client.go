package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://discord.com/api/v10"

// Client is an HTTP client for the Discord REST API, used for the few
// endpoints the gateway cannot serve: opening DM channels and posting
// messages.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	maxRetries int
}

func NewClient(token string) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		maxRetries: 3,
	}
}

// SendDirect opens (or reuses) the DM channel with the user and posts the
// given content there.
func (c *Client) SendDirect(ctx context.Context, userID, content string) error {
	var channel struct {
		ID string `json:"id"`
	}
	err := c.do(ctx, http.MethodPost, "/users/@me/channels",
		map[string]string{"recipient_id": userID}, &channel)
	if err != nil {
		return fmt.Errorf("opening DM channel with %s: %w", userID, err)
	}

	err = c.do(ctx, http.MethodPost, "/channels/"+channel.ID+"/messages",
		map[string]string{"content": content}, nil)
	if err != nil {
		return fmt.Errorf("sending DM to %s: %w", userID, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, result any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request body: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Authorization", "Bot "+c.token)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("executing %s %s: %w", method, path, err)
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return fmt.Errorf("reading response body: %w", readErr)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			var rateLimit struct {
				RetryAfter float64 `json:"retry_after"`
			}
			wait := 5 * time.Second
			if json.Unmarshal(respBody, &rateLimit) == nil && rateLimit.RetryAfter > 0 {
				wait = time.Duration(rateLimit.RetryAfter * float64(time.Second))
			}
			lastErr = fmt.Errorf("rate limited (429) on %s %s", method, path)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
				continue
			}
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("unexpected status %d on %s %s: %s", resp.StatusCode, method, path, string(respBody))
		}

		if result == nil {
			return nil
		}
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshaling response from %s %s: %w", method, path, err)
		}
		return nil
	}

	return fmt.Errorf("max retries (%d) exceeded: %w", c.maxRetries, lastErr)
}
