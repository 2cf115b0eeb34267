package line

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultEndpoint = "https://api.line.me"
	replyPath       = "/v2/bot/message/reply"
	pushPath        = "/v2/bot/message/push"
	profilePath     = "/v2/bot/profile/"

	defaultRequestTimeout = 10 * time.Second

	// MaxMessagesPerCall is the Messaging API limit on messages per reply or
	// push call.
	MaxMessagesPerCall = 5
)

// Client talks to the LINE Messaging API. It is the only component that
// performs network I/O toward the platform.
type Client struct {
	accessToken string
	endpoint    string
	httpClient  *http.Client
	log         *slog.Logger
}

// ClientOption adjusts Client construction.
type ClientOption func(*Client)

// WithEndpoint points the client at an alternative API base URL.
func WithEndpoint(endpoint string) ClientOption {
	return func(c *Client) {
		c.endpoint = strings.TrimRight(endpoint, "/")
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient validates the channel access token and constructs a client.
func NewClient(accessToken string, log *slog.Logger, opts ...ClientOption) (*Client, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, errors.New("line.channel_access_token is required")
	}

	if log == nil {
		log = slog.Default()
	}

	client := &Client{
		accessToken: strings.TrimSpace(accessToken),
		endpoint:    defaultEndpoint,
		httpClient:  &http.Client{Timeout: defaultRequestTimeout},
		log:         log.With("component", "line.client"),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

type replyRequest struct {
	ReplyToken string    `json:"replyToken"`
	Messages   []Message `json:"messages"`
}

type pushRequest struct {
	To       string    `json:"to"`
	Messages []Message `json:"messages"`
}

// Reply answers one webhook event with an ordered batch of messages. The
// reply token is single use and the batch is delivered atomically.
func (c *Client) Reply(ctx context.Context, replyToken string, messages []Message) error {
	if strings.TrimSpace(replyToken) == "" {
		return errors.New("reply token is required")
	}
	if err := validateBatch(messages); err != nil {
		return err
	}

	return c.post(ctx, replyPath, replyRequest{ReplyToken: replyToken, Messages: messages})
}

// Push sends messages to a user outside a reply window.
func (c *Client) Push(ctx context.Context, to string, messages []Message) error {
	if strings.TrimSpace(to) == "" {
		return errors.New("push recipient is required")
	}
	if err := validateBatch(messages); err != nil {
		return err
	}

	return c.post(ctx, pushPath, pushRequest{To: to, Messages: messages})
}

// Profile is the public profile of one platform user.
type Profile struct {
	UserID        string `json:"userId"`
	DisplayName   string `json:"displayName"`
	PictureURL    string `json:"pictureUrl,omitempty"`
	StatusMessage string `json:"statusMessage,omitempty"`
}

// GetProfile fetches the profile of the given user.
func (c *Client) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errors.New("user id is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+profilePath+url.PathEscape(userID), nil)
	if err != nil {
		return nil, fmt.Errorf("build profile request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError("get profile", resp)
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("decode profile response: %w", err)
	}

	return &profile, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(path, resp)
	}

	c.log.Debug("Messaging API call succeeded", "path", path, "status", resp.StatusCode)
	return nil
}

func validateBatch(messages []Message) error {
	if len(messages) == 0 {
		return errors.New("at least one message is required")
	}
	if len(messages) > MaxMessagesPerCall {
		return fmt.Errorf("too many messages in one call: %d > %d", len(messages), MaxMessagesPerCall)
	}

	return nil
}

func apiError(operation string, resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	detail := strings.TrimSpace(string(snippet))
	if detail == "" {
		return fmt.Errorf("%s: unexpected status %d", operation, resp.StatusCode)
	}

	return fmt.Errorf("%s: unexpected status %d: %s", operation, resp.StatusCode, detail)
}
