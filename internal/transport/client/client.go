package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/joshdurbin/shortlinks/internal/domain"
)

// Client represents an HTTP client for the shortlinks API
type Client struct {
	serverURL  string
	httpClient *http.Client
}

// NewClient creates a new shortlinks client
func NewClient(serverURL string) *Client {
	return &Client{
		serverURL: serverURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// CreateLink creates a short URL
func (c *Client) CreateLink(ctx context.Context, originalURL, customAlias string, expiresAt *time.Time) (*domain.CreateLinkResponse, error) {
	reqBody := domain.CreateLinkRequest{
		OriginalURL: originalURL,
		CustomAlias: customAlias,
		ExpiresAt:   expiresAt,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL+"/api/urls", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, apiError(resp)
	}

	var result domain.CreateLinkResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}

// GetLink retrieves information about a short URL
func (c *Client) GetLink(ctx context.Context, shortCode string) (*domain.Link, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.serverURL+"/api/urls/"+shortCode, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("short code '%s' not found", shortCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var link domain.Link
	if err := json.NewDecoder(resp.Body).Decode(&link); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &link, nil
}

// SetStatus activates or deactivates a short URL
func (c *Client) SetStatus(ctx context.Context, shortCode string, isActive bool) (*domain.Link, error) {
	jsonData, err := json.Marshal(domain.UpdateStatusRequest{IsActive: isActive})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.serverURL+"/api/urls/"+shortCode+"/status", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("short code '%s' not found", shortCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var link domain.Link
	if err := json.NewDecoder(resp.Body).Decode(&link); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &link, nil
}

// DeleteLink deletes a short URL
func (c *Client) DeleteLink(ctx context.Context, shortCode string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.serverURL+"/api/urls/"+shortCode, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("short code '%s' not found", shortCode)
	}
	if resp.StatusCode != http.StatusNoContent {
		return apiError(resp)
	}

	return nil
}

// GetStats retrieves click statistics for a short URL
func (c *Client) GetStats(ctx context.Context, shortCode string, from, to *time.Time) (*domain.Stats, error) {
	endpoint := c.serverURL + "/api/urls/" + shortCode + "/stats"
	query := url.Values{}
	if from != nil {
		query.Set("from_utc", from.UTC().Format(time.RFC3339))
	}
	if to != nil {
		query.Set("to_utc", to.UTC().Format(time.RFC3339))
	}
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("short code '%s' not found", shortCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var stats domain.Stats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &stats, nil
}

// apiError extracts the error envelope from a non-success response.
func apiError(resp *http.Response) error {
	var envelope domain.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Error != "" {
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, envelope.Error)
	}
	return fmt.Errorf("server returned status %d", resp.StatusCode)
}
