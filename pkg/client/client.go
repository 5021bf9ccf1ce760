package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/terra-clan/roadmap-engine/internal/models"
)

// Client is a Go SDK for the roadmap-engine API
type Client struct {
	baseURL      string
	sessionToken string
	httpClient   *http.Client
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new roadmap-engine client. The session token may
// be empty for read-only use.
func NewClient(baseURL, sessionToken string, opts ...Option) *Client {
	c := &Client{
		baseURL:      baseURL,
		sessionToken: sessionToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ListOptions contains options for listing roadmaps
type ListOptions struct {
	Difficulty string
	Technology string
	Limit      int
	Offset     int
}

// ListRoadmaps retrieves roadmaps matching the options
func (c *Client) ListRoadmaps(ctx context.Context, opts ListOptions) ([]*models.Roadmap, error) {
	path := "/api/v1/roadmaps?"
	if opts.Difficulty != "" {
		path += fmt.Sprintf("difficulty=%s&", opts.Difficulty)
	}
	if opts.Technology != "" {
		path += fmt.Sprintf("technology=%s&", opts.Technology)
	}
	if opts.Limit > 0 {
		path += fmt.Sprintf("limit=%d&", opts.Limit)
	}
	if opts.Offset > 0 {
		path += fmt.Sprintf("offset=%d&", opts.Offset)
	}

	resp, err := c.doRequest(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Success bool `json:"success"`
		Data    struct {
			Roadmaps []*models.Roadmap `json:"roadmaps"`
			Total    int               `json:"total"`
		} `json:"data"`
		Error *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !result.Success {
		return nil, fmt.Errorf("API error: %s - %s", result.Error.Code, result.Error.Message)
	}

	return result.Data.Roadmaps, nil
}

// GetRoadmap retrieves a roadmap by ID
func (c *Client) GetRoadmap(ctx context.Context, id string) (*models.Roadmap, error) {
	resp, err := c.doRequest(ctx, "GET", fmt.Sprintf("/api/v1/roadmaps/%s", id), nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Success bool `json:"success"`
		Data    struct {
			Roadmap          *models.Roadmap `json:"roadmap"`
			FlowchartSummary string          `json:"flowchartSummary"`
		} `json:"data"`
		Error *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !result.Success {
		return nil, fmt.Errorf("API error: %s - %s", result.Error.Code, result.Error.Message)
	}

	return result.Data.Roadmap, nil
}

// ListReviews retrieves all reviews for a roadmap
func (c *Client) ListReviews(ctx context.Context, roadmapID string) ([]*models.ReviewEntry, error) {
	resp, err := c.doRequest(ctx, "GET", fmt.Sprintf("/api/v1/roadmaps/%s/reviews", roadmapID), nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Success bool `json:"success"`
		Data    struct {
			Reviews []*models.ReviewEntry `json:"reviews"`
			Total   int                   `json:"total"`
		} `json:"data"`
		Error *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !result.Success {
		return nil, fmt.Errorf("API error: %s - %s", result.Error.Code, result.Error.Message)
	}

	return result.Data.Reviews, nil
}

// SubmitReview submits a rating and optional review text
func (c *Client) SubmitReview(ctx context.Context, roadmapID string, rating int, review string) (*models.ReviewEntry, error) {
	body, err := json.Marshal(models.SubmitReviewRequest{Rating: rating, Review: review})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.doRequest(ctx, "POST", fmt.Sprintf("/api/v1/roadmaps/%s/reviews", roadmapID), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var result struct {
		Success bool                `json:"success"`
		Data    *models.ReviewEntry `json:"data"`
		Error   *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !result.Success {
		return nil, fmt.Errorf("API error: %s - %s", result.Error.Code, result.Error.Message)
	}

	return result.Data, nil
}

// GetProgress retrieves the caller's saved progress for a roadmap
func (c *Client) GetProgress(ctx context.Context, roadmapID string) (*models.ProgressSession, error) {
	resp, err := c.doRequest(ctx, "GET", fmt.Sprintf("/api/v1/roadmaps/%s/progress", roadmapID), nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Success bool                    `json:"success"`
		Data    *models.ProgressSession `json:"data"`
		Error   *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !result.Success {
		return nil, fmt.Errorf("API error: %s - %s", result.Error.Code, result.Error.Message)
	}

	return result.Data, nil
}

// SaveProgress replaces the caller's saved progress for a roadmap
func (c *Client) SaveProgress(ctx context.Context, roadmapID string, req models.SaveProgressRequest) (*models.ProgressSession, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.doRequest(ctx, "PUT", fmt.Sprintf("/api/v1/roadmaps/%s/progress", roadmapID), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var result struct {
		Success bool                    `json:"success"`
		Data    *models.ProgressSession `json:"data"`
		Error   *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !result.Success {
		return nil, fmt.Errorf("API error: %s - %s", result.Error.Code, result.Error.Message)
	}

	return result.Data, nil
}

// RecordDownload records a download event for a roadmap
func (c *Client) RecordDownload(ctx context.Context, roadmapID string) error {
	_, err := c.doRequest(ctx, "POST", fmt.Sprintf("/api/v1/roadmaps/%s/download", roadmapID), nil)
	return err
}

// RecordShare records a share event for a roadmap
func (c *Client) RecordShare(ctx context.Context, roadmapID string) error {
	_, err := c.doRequest(ctx, "POST", fmt.Sprintf("/api/v1/roadmaps/%s/share", roadmapID), nil)
	return err
}

// ExportPNG downloads the rendered flowchart image for a roadmap
func (c *Client) ExportPNG(ctx context.Context, roadmapID string) ([]byte, error) {
	return c.doRequest(ctx, "GET", fmt.Sprintf("/api/v1/roadmaps/%s/export.png", roadmapID), nil)
}

// Health checks if the service is healthy
func (c *Client) Health(ctx context.Context) error {
	_, err := c.doRequest(ctx, "GET", "/health", nil)
	return err
}

// doRequest performs an HTTP request
func (c *Client) doRequest(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	url := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.sessionToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.sessionToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}
