// Package azdo is a minimal authenticated client for the Azure DevOps REST
// API, covering the work item tracking and git surfaces the audit needs.
package azdo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://dev.azure.com"
const defaultTimeout = 30 * time.Second

const (
	apiVersion        = "7.0"
	apiVersionPreview = "7.1-preview.1"
)

type Config struct {
	Organization string
	PAT          string
	BaseURL      string        // defaults to the public dev.azure.com endpoint
	Timeout      time.Duration // per-request ceiling, defaults to 30s
}

type Client struct {
	organization string
	authHeader   string
	baseURL      string
	httpClient   *http.Client
	logger       *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		organization: cfg.Organization,
		authHeader:   BasicAuthHeader(cfg.PAT),
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		httpClient:   &http.Client{Timeout: timeout},
		logger:       logger,
	}
}

func (c *Client) Organization() string {
	return c.organization
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d: %s", e.URL, e.StatusCode, e.Body)
}

func (c *Client) get(ctx context.Context, requestURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Debug("request failed", "url", requestURL, "status", resp.StatusCode)
		return nil, &StatusError{
			URL:        requestURL,
			StatusCode: resp.StatusCode,
			Body:       truncate(string(body), 512),
		}
	}

	return body, nil
}

// GetJSON performs an authorized GET and decodes the response body into out.
func (c *Client) GetJSON(ctx context.Context, requestURL string, out any) error {
	body, err := c.get(ctx, requestURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response from %s: %w", requestURL, err)
	}
	return nil
}

func (c *Client) orgAPIs() string {
	return c.baseURL + "/" + url.PathEscape(c.organization) + "/_apis"
}

func (c *Client) projectAPIs(project string) string {
	return c.baseURL + "/" + url.PathEscape(c.organization) + "/" + url.PathEscape(project) + "/_apis"
}

func (c *Client) repositoryAPIs(project, repository string) string {
	return c.projectAPIs(project) + "/git/repositories/" + url.PathEscape(repository)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
