package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client provides typed access to the peer-support chat backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new REST API client.
// baseURL should be the base URL of the API, e.g., "http://localhost:8080/api".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetHTTPClient allows setting a custom HTTP client.
func (c *Client) SetHTTPClient(client *http.Client) {
	if client != nil {
		c.httpClient = client
	}
}

// SetTimeout adjusts the timeout of the underlying HTTP client.
func (c *Client) SetTimeout(d time.Duration) {
	if d > 0 {
		c.httpClient.Timeout = d
	}
}

// Room catalog

// ListRooms returns all available rooms with their live member counts.
func (c *Client) ListRooms(ctx context.Context) ([]Room, error) {
	var resp []Room
	if err := c.get(ctx, "/rooms", &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Session lifecycle

// Join enters a room anonymously. The response carries the server-issued
// identity and any inline message history.
func (c *Client) Join(ctx context.Context, roomID, userID string) (*JoinResponse, error) {
	var resp JoinResponse
	path := fmt.Sprintf("/rooms/%s/join", url.PathEscape(roomID))
	if err := c.post(ctx, path, JoinRequest{UserID: userID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Leave ends a room session.
func (c *Client) Leave(ctx context.Context, roomID, sessionID string) error {
	path := fmt.Sprintf("/rooms/%s/leave", url.PathEscape(roomID))
	return c.post(ctx, path, LeaveRequest{SessionID: sessionID}, nil)
}

// Messages

// Messages returns messages posted after sinceID, oldest first. An empty
// sinceID requests the room history from the start.
func (c *Client) Messages(ctx context.Context, roomID, sinceID, sessionID string) ([]Message, error) {
	path := fmt.Sprintf("/rooms/%s/messages?since=%s&session_id=%s",
		url.PathEscape(roomID), url.QueryEscape(sinceID), url.QueryEscape(sessionID))

	var resp []Message
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// PostMessage sends a message to a room. The server echoes the stored
// message back, including its assigned id and timestamp.
func (c *Client) PostMessage(ctx context.Context, roomID string, req PostMessageRequest) (*Message, error) {
	var resp Message
	path := fmt.Sprintf("/rooms/%s/messages", url.PathEscape(roomID))
	if err := c.post(ctx, path, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Moderation

// Like registers a like on a message and returns the authoritative count.
func (c *Client) Like(ctx context.Context, messageID, sessionID string) (*LikeResponse, error) {
	var resp LikeResponse
	path := fmt.Sprintf("/messages/%s/like", url.PathEscape(messageID))
	if err := c.post(ctx, path, LikeRequest{SessionID: sessionID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Report flags a message for moderation.
func (c *Client) Report(ctx context.Context, messageID, sessionID, reason string) (bool, error) {
	var resp bool
	path := fmt.Sprintf("/messages/%s/report", url.PathEscape(messageID))
	if err := c.post(ctx, path, ReportRequest{SessionID: sessionID, Reason: reason}, &resp); err != nil {
		return false, err
	}
	return resp, nil
}

// Presence

// SetTyping pushes the local typing state to the room.
func (c *Client) SetTyping(ctx context.Context, roomID, sessionID string, typing bool) error {
	path := fmt.Sprintf("/rooms/%s/typing", url.PathEscape(roomID))
	return c.post(ctx, path, TypingRequest{SessionID: sessionID, Typing: typing}, nil)
}

// Presence returns the current presence snapshot for a room.
func (c *Client) Presence(ctx context.Context, roomID string) (*PresenceSnapshot, error) {
	var resp PresenceSnapshot
	path := fmt.Sprintf("/rooms/%s/presence", url.PathEscape(roomID))
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Helper methods

func (c *Client) post(ctx context.Context, path string, body, dest any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(req, dest)
}

func (c *Client) get(ctx context.Context, path string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	return c.do(req, dest)
}

func (c *Client) do(req *http.Request, dest any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	// Handle error responses
	if resp.StatusCode >= 400 {
		var errResp ErrorResponse
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
			return fmt.Errorf("api error (status %d): %s", resp.StatusCode, errResp.Error)
		}
		return fmt.Errorf("http error: %s (status %d)", string(body), resp.StatusCode)
	}

	// Unmarshal success response
	if dest != nil && len(body) > 0 {
		if err := json.Unmarshal(body, dest); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}

	return nil
}
