package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.telegram.org"

// Client is an HTTP client for the Telegram Bot API. Rate-limit responses
// are retried after the server-advised delay.
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
			// Long polling holds the connection open for up to longPollTimeout.
			Timeout: 60 * time.Second,
		},
		maxRetries: 3,
	}
}

// SendOptions are the optional parameters of SendMessage and
// EditMessageText.
type SendOptions struct {
	ReplyMarkup           *InlineKeyboardMarkup
	ParseMode             string
	DisableWebPagePreview bool
}

// SendMessage posts a text message to the chat.
func (c *Client) SendMessage(ctx context.Context, chatID, text string, opts *SendOptions) (Message, error) {
	payload := map[string]any{
		"chat_id": chatID,
		"text":    text,
	}
	applySendOptions(payload, opts)

	var msg Message
	if err := c.call(ctx, "sendMessage", payload, &msg); err != nil {
		return Message{}, fmt.Errorf("sending message: %w", err)
	}
	return msg, nil
}

// EditMessageText rewrites the text and keyboard of a previously sent
// message.
func (c *Client) EditMessageText(ctx context.Context, chatID string, messageID int64, text string, opts *SendOptions) error {
	payload := map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
		"text":       text,
	}
	applySendOptions(payload, opts)

	if err := c.call(ctx, "editMessageText", payload, nil); err != nil {
		return fmt.Errorf("editing message %d: %w", messageID, err)
	}
	return nil
}

// SendDocument uploads a file as an attachment with an optional caption.
func (c *Client) SendDocument(ctx context.Context, chatID, filename string, content []byte, caption string) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writer.WriteField("chat_id", chatID); err != nil {
		return fmt.Errorf("writing chat_id field: %w", err)
	}
	if caption != "" {
		if err := writer.WriteField("caption", caption); err != nil {
			return fmt.Errorf("writing caption field: %w", err)
		}
	}
	part, err := writer.CreateFormFile("document", filename)
	if err != nil {
		return fmt.Errorf("creating document part: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return fmt.Errorf("writing document content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalizing multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.methodURL("sendDocument"), &buf)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("uploading document %s: %w", filename, err)
	}
	defer resp.Body.Close()

	if _, err := decodeResponse(resp); err != nil {
		return fmt.Errorf("uploading document %s: %w", filename, err)
	}
	return nil
}

// AnswerCallbackQuery acknowledges a button press so the client stops
// showing a progress indicator.
func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackID, text string) error {
	payload := map[string]any{"callback_query_id": callbackID}
	if text != "" {
		payload["text"] = text
	}
	if err := c.call(ctx, "answerCallbackQuery", payload, nil); err != nil {
		return fmt.Errorf("answering callback query: %w", err)
	}
	return nil
}

// DeleteWebhook removes any configured webhook so long polling can take
// over update delivery.
func (c *Client) DeleteWebhook(ctx context.Context) error {
	if err := c.call(ctx, "deleteWebhook", map[string]any{}, nil); err != nil {
		return fmt.Errorf("deleting webhook: %w", err)
	}
	return nil
}

// GetUpdates long-polls for updates past the given offset, waiting up to
// timeout seconds for something to arrive.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout int) ([]Update, error) {
	payload := map[string]any{
		"offset":  offset,
		"timeout": timeout,
	}
	var updates []Update
	if err := c.call(ctx, "getUpdates", payload, &updates); err != nil {
		return nil, fmt.Errorf("polling updates: %w", err)
	}
	return updates, nil
}

func applySendOptions(payload map[string]any, opts *SendOptions) {
	if opts == nil {
		return
	}
	if opts.ReplyMarkup != nil {
		payload["reply_markup"] = opts.ReplyMarkup
	}
	if opts.ParseMode != "" {
		payload["parse_mode"] = opts.ParseMode
	}
	if opts.DisableWebPagePreview {
		payload["disable_web_page_preview"] = true
	}
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
	ErrorCode   int             `json:"error_code"`
	Parameters  *struct {
		RetryAfter int `json:"retry_after"`
	} `json:"parameters"`
}

func (c *Client) call(ctx context.Context, method string, payload any, result any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling request body: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.methodURL(method), bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("executing %s: %w", method, err)
		}

		apiResp, err := decodeResponse(resp)
		resp.Body.Close()
		if err != nil {
			var rateErr *rateLimitError
			if errors.As(err, &rateErr) {
				lastErr = err
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(rateErr.retryAfter):
					continue
				}
			}
			return fmt.Errorf("%s: %w", method, err)
		}

		if result == nil {
			return nil
		}
		if err := json.Unmarshal(apiResp.Result, result); err != nil {
			return fmt.Errorf("unmarshaling %s result: %w", method, err)
		}
		return nil
	}

	return fmt.Errorf("max retries (%d) exceeded on %s: %w", c.maxRetries, method, lastErr)
}

func (c *Client) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
}

type rateLimitError struct {
	retryAfter time.Duration
}

func (e *rateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.retryAfter)
}

func decodeResponse(resp *http.Response) (*apiResponse, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("unmarshaling response (status %d): %w", resp.StatusCode, err)
	}
	if !apiResp.OK {
		if apiResp.ErrorCode == http.StatusTooManyRequests && apiResp.Parameters != nil {
			return nil, &rateLimitError{
				retryAfter: time.Duration(apiResp.Parameters.RetryAfter) * time.Second,
			}
		}
		return nil, fmt.Errorf("API error %d: %s", apiResp.ErrorCode, apiResp.Description)
	}
	return &apiResp, nil
}
