package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tsubasa0119/repo-insights/internal/domain"
	"github.com/tsubasa0119/repo-insights/internal/metrics"
)

// Client is the API client for repo-insights
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Analytics is the analytics payload of one repository.
type Analytics struct {
	Repository domain.RepositorySummary `json:"repository"`
	Metrics    *metrics.Summary         `json:"metrics"`
	Health     *metrics.HealthReport    `json:"health"`
	FetchedAt  time.Time                `json:"fetched_at"`
}

// Comparison is the result of comparing two repositories.
type Comparison struct {
	A          Analytics               `json:"a"`
	B          Analytics               `json:"b"`
	Comparison []metrics.ComparisonRow `json:"comparison"`
}

// GetAnalytics retrieves the full analytics of one repository
func (c *Client) GetAnalytics(owner, repo string) (*Analytics, error) {
	path := fmt.Sprintf("/api/v1/repos/%s/%s/analytics", owner, repo)

	var response struct {
		Data *Analytics `json:"data"`
	}
	if err := c.get(path, nil, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// GetHealth retrieves the health report of one repository
func (c *Client) GetHealth(owner, repo string) (*metrics.HealthReport, error) {
	path := fmt.Sprintf("/api/v1/repos/%s/%s/health", owner, repo)

	var response struct {
		Data *metrics.HealthReport `json:"data"`
	}
	if err := c.get(path, nil, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// Compare retrieves the side-by-side comparison of two repositories,
// each given as "owner/repo".
func (c *Client) Compare(refA, refB string) (*Comparison, error) {
	params := url.Values{}
	params.Set("a", refA)
	params.Set("b", refB)

	var response struct {
		Data *Comparison `json:"data"`
	}
	if err := c.get("/api/v1/compare", params, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// HealthCheck checks if the API is healthy
func (c *Client) HealthCheck() error {
	var response struct {
		Status string `json:"status"`
	}
	if err := c.get("/health", nil, &response); err != nil {
		return err
	}
	if response.Status != "ok" {
		return fmt.Errorf("unhealthy status: %s", response.Status)
	}
	return nil
}

func (c *Client) get(path string, params url.Values, result interface{}) error {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return err
	}
	if params != nil {
		u.RawQuery = params.Encode()
	}

	resp, err := c.httpClient.Get(u.String())
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error: %s - %s", resp.Status, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(result)
}
