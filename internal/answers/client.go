// ABOUTME: HTTP client for the external answer-scoring service
// ABOUTME: Distinguishes bad-request rejections from fatal backend errors

package answers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Client resolves questions against an HTTP answer-scoring backend.
type Client struct {
	endpoint string
	key      string
	http     *http.Client
	logger   *slog.Logger
}

// NewClient creates a Client for the backend at endpoint, authenticating
// with the given endpoint key.
func NewClient(endpoint, key string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		endpoint: endpoint,
		key:      key,
		http:     &http.Client{Timeout: 30 * time.Second},
		logger:   logger.With("component", "answers"),
	}
}

// generateRequest is the backend's query body.
type generateRequest struct {
	Question string           `json:"question"`
	IsTest   bool             `json:"isTest,omitempty"`
	Top      int              `json:"top"`
	Context  *questionContext `json:"context,omitempty"`
}

type questionContext struct {
	PreviousAnswerID int    `json:"previousQnaId"`
	PreviousQuery    string `json:"previousUserQuery"`
}

// wireCandidate mirrors the backend's answer shape, where prompts hang off
// a nested context object.
type wireCandidate struct {
	ID        int      `json:"id"`
	Answer    string   `json:"answer"`
	Questions []string `json:"questions"`
	Score     float64  `json:"score"`
	Context   struct {
		Prompts []Prompt `json:"prompts"`
	} `json:"context"`
}

type generateResponse struct {
	Answers []wireCandidate `json:"answers"`
}

// Resolve queries the backend and classifies the outcome. A bad-request
// response triggers a publish-status probe and surfaces as
// BackendUnavailable; every other failure is returned as an error.
func (c *Client) Resolve(ctx context.Context, q Query) (Result, error) {
	reqBody := generateRequest{
		Question: q.Text,
		IsTest:   q.Test,
		Top:      1,
	}
	if q.PreviousAnswerID != 0 || q.PreviousQuestion != "" {
		reqBody.Context = &questionContext{
			PreviousAnswerID: q.PreviousAnswerID,
			PreviousQuery:    q.PreviousQuestion,
		}
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return Result{}, fmt.Errorf("encoding answer query: %w", err)
	}

	url := fmt.Sprintf("%s/knowledgebases/%s/generateAnswer", c.endpoint, q.KnowledgeBaseID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("creating answer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "EndpointKey "+c.key)

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("querying answer backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest {
		// Bad-request-shaped rejections usually mean the knowledge base is
		// empty or has never been published. Probe the publish status so
		// the caller can choose a pending response over a hard failure.
		published, perr := c.IsKnowledgeBasePublished(ctx, q.KnowledgeBaseID)
		if perr != nil {
			return Result{}, fmt.Errorf("answer backend rejected query and publish probe failed: %w", perr)
		}
		c.logger.Warn("answer backend rejected query",
			"knowledge_base", q.KnowledgeBaseID,
			"published", published,
		)
		return Result{Kind: BackendUnavailable, Published: published}, nil
	}

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Result{}, fmt.Errorf("answer backend returned status %d: %s", resp.StatusCode, detail)
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Result{}, fmt.Errorf("decoding answer response: %w", err)
	}
	if len(decoded.Answers) == 0 {
		return Result{Kind: NoMatch}, nil
	}

	top := decoded.Answers[0]
	if top.ID == NoMatchID {
		return Result{Kind: NoMatch}, nil
	}

	return Result{
		Kind: Answered,
		Answer: &Candidate{
			ID:        top.ID,
			Answer:    top.Answer,
			Questions: top.Questions,
			Score:     top.Score,
			Prompts:   top.Context.Prompts,
		},
	}, nil
}

// publishStatus is the backend's knowledge-base detail shape. Only the
// publish timestamp matters here.
type publishStatus struct {
	LastPublishedTimestamp string `json:"lastPublishedTimestamp"`
}

// IsKnowledgeBasePublished reports whether the knowledge base has ever
// been published.
func (c *Client) IsKnowledgeBasePublished(ctx context.Context, knowledgeBaseID string) (bool, error) {
	url := fmt.Sprintf("%s/knowledgebases/%s", c.endpoint, knowledgeBaseID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("creating publish status request: %w", err)
	}
	req.Header.Set("Authorization", "EndpointKey "+c.key)

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("querying publish status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("publish status returned %d", resp.StatusCode)
	}

	var status publishStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return false, fmt.Errorf("decoding publish status: %w", err)
	}
	return status.LastPublishedTimestamp != "", nil
}
