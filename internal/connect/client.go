// ABOUTME: HTTP client implementing Sender and TeamNotifier over the
// ABOUTME: transport's conversation REST surface

package connect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// Client talks to the transport's conversation API. It implements both
// Sender and TeamNotifier.
type Client struct {
	serviceURL string
	token      string
	http       *http.Client
	logger     *slog.Logger
}

// NewClient creates a Client for the transport at serviceURL.
func NewClient(serviceURL, token string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		serviceURL: serviceURL,
		token:      token,
		http:       &http.Client{Timeout: 15 * time.Second},
		logger:     logger.With("component", "connect"),
	}
}

// createConversationRequest asks the transport for a new conversation
// scoped to a team channel, seeded with one activity.
type createConversationRequest struct {
	IsGroup     bool    `json:"isGroup"`
	ChannelData any     `json:"channelData"`
	Activity    Message `json:"activity"`
}

// conversationResponse is the transport's identifier pair for a created
// conversation and its first message.
type conversationResponse struct {
	ID         string `json:"id"`
	ActivityID string `json:"activityId"`
}

// activityResponse carries the id of a posted or updated message.
type activityResponse struct {
	ID string `json:"id"`
}

// PostToTeam creates a conversation in the team channel with msg as its
// first message and returns the thread linkage for later updates.
func (c *Client) PostToTeam(ctx context.Context, teamID string, msg Message) (ThreadRef, error) {
	reqBody := createConversationRequest{
		IsGroup: true,
		ChannelData: map[string]any{
			"channel": map[string]string{"id": teamID},
		},
		Activity: msg,
	}

	var resp conversationResponse
	if err := c.post(ctx, "/v3/conversations", reqBody, &resp); err != nil {
		return ThreadRef{}, fmt.Errorf("posting to team %s: %w", teamID, err)
	}

	return ThreadRef{ConversationID: resp.ID, MessageID: resp.ActivityID}, nil
}

// UpdateMessage replaces the referenced message in place.
func (c *Client) UpdateMessage(ctx context.Context, ref ThreadRef, msg Message) error {
	path := fmt.Sprintf("/v3/conversations/%s/activities/%s",
		url.PathEscape(ref.ConversationID), url.PathEscape(ref.MessageID))

	if err := c.put(ctx, path, msg, nil); err != nil {
		return fmt.Errorf("updating message %s in %s: %w", ref.MessageID, ref.ConversationID, err)
	}
	return nil
}

// SendToConversation posts msg into an existing conversation.
func (c *Client) SendToConversation(ctx context.Context, conversationID string, msg Message) (string, error) {
	path := fmt.Sprintf("/v3/conversations/%s/activities", url.PathEscape(conversationID))

	var resp activityResponse
	if err := c.post(ctx, path, msg, &resp); err != nil {
		return "", fmt.Errorf("sending to conversation %s: %w", conversationID, err)
	}
	return resp.ID, nil
}

// SendTyping emits a typing signal into the conversation.
func (c *Client) SendTyping(ctx context.Context, conversationID string) error {
	_, err := c.SendToConversation(ctx, conversationID, Message{Type: "typing"})
	return err
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.serviceURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", ErrDeliveryFailed, resp.StatusCode, detail)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}
