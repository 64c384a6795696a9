// ABOUTME: HTTP client for the VM allocation API
// ABOUTME: Wraps API calls with proper error handling for CLI usage

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/markalston/vm-allocator/models"
)

// Client is the API client for the allocation server
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new API client with the given base URL
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// BaseURL returns the server URL the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// HealthResponse represents the /api/v1/health endpoint response
type HealthResponse struct {
	Status   string `json:"status"`
	Catalogs int    `json:"catalogs"`
}

// APIError is returned when the server answers with a non-200 status
type APIError struct {
	StatusCode int
	Message    string
	Details    string
	Field      string
}

func (e *APIError) Error() string {
	msg := "backend error: " + e.Message
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Field != "" {
		msg += fmt.Sprintf(" (field %s)", e.Field)
	}
	return msg
}

// AllocationRequest is the body of the allocation endpoints. Set either
// Catalog or CatalogName; with neither the server default is used.
type AllocationRequest struct {
	Workload    models.WorkloadInput  `json:"workload"`
	Catalog     *models.VMSizeCatalog `json:"catalog,omitempty"`
	CatalogName string                `json:"catalog_name,omitempty"`
}

type catalogsResponse struct {
	Catalogs []*models.VMSizeCatalog `json:"catalogs"`
}

// Health calls GET /api/v1/health
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var health HealthResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/health", nil, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// Catalogs calls GET /api/v1/catalogs
func (c *Client) Catalogs(ctx context.Context) ([]*models.VMSizeCatalog, error) {
	var resp catalogsResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/catalogs", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Catalogs, nil
}

// Catalog calls GET /api/v1/catalogs/{name}
func (c *Client) Catalog(ctx context.Context, name string) (*models.VMSizeCatalog, error) {
	var catalog models.VMSizeCatalog
	if err := c.do(ctx, http.MethodGet, "/api/v1/catalogs/"+url.PathEscape(name), nil, &catalog); err != nil {
		return nil, err
	}
	return &catalog, nil
}

// Allocate calls POST /api/v1/allocations
func (c *Client) Allocate(ctx context.Context, input *AllocationRequest) (*models.AllocationResult, error) {
	var result models.AllocationResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/allocations", input, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// BestAllocation calls POST /api/v1/allocations/best
func (c *Client) BestAllocation(ctx context.Context, input *AllocationRequest) (*models.BestAllocation, error) {
	var result models.BestAllocation
	if err := c.do(ctx, http.MethodPost, "/api/v1/allocations/best", input, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// do sends a JSON request and decodes a JSON response into out
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal input: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.handleErrorResponse(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("invalid response from backend: %w", err)
	}
	return nil
}

// handleRequestError converts context errors to user-friendly messages
func (c *Client) handleRequestError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("request canceled")
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("request timed out")
	}
	return fmt.Errorf("cannot connect to backend at %s: %w", c.baseURL, err)
}

// handleErrorResponse parses API error responses
func (c *Client) handleErrorResponse(resp *http.Response) error {
	var errResp models.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil || errResp.Error == "" {
		return &APIError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("status %d", resp.StatusCode)}
	}
	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    errResp.Error,
		Details:    errResp.Details,
		Field:      errResp.Field,
	}
}
