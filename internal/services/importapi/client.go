// Package importapi is the HTTP client for the list manager's subscriber
// import endpoints.
package importapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/subimport/internal/common"
	"github.com/ternarybob/subimport/internal/httpclient"
	"github.com/ternarybob/subimport/internal/interfaces"
	"github.com/ternarybob/subimport/internal/models"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 10

	importPath = "/api/import/subscribers"
	logsPath   = "/api/import/subscribers/logs"
	listsPath  = "/api/lists"
)

// Client is the import API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
}

var _ interfaces.ImportAPI = (*Client)(nil)

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithBasicAuth authenticates every request with an API user and token.
func WithBasicAuth(username, token string, timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient = httpclient.NewHTTPClientWithAuth(username, token, timeout)
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets a custom rate limit. Zero disables limiting.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// NewClient creates a new import API client for the given base URL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpclient.NewDefaultHTTPClient(DefaultTimeout),
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an error from the import API.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("import API error: %s (status %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// ErrorMessage returns the server supplied message of an API error, or the
// plain error text for transport failures.
func ErrorMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

// do performs a request and decodes the "data" field of the response into result.
// A nil result discards the body.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, body io.Reader, contentType string, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit exceeded: %w", err)
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL = reqURL + "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	requestID := common.NewRequestID()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	if c.logger != nil {
		c.logger.Debug().
			Str("method", method).
			Str("url", c.baseURL+path).
			Str("request_id", requestID).
			Msg("Import API request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.apiError(resp, path)
	}

	if result == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if len(env.Data) == 0 {
		return fmt.Errorf("failed to decode response: missing data field")
	}
	if err := json.Unmarshal(env.Data, result); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}

	return nil
}

// apiError builds an APIError, preferring the JSON "message" field over the raw body.
func (c *Client) apiError(resp *http.Response, path string) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	message := strings.TrimSpace(string(body))
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
		message = errResp.Message
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    message,
		Endpoint:   path,
	}
}

// StartImport uploads the dataset with its JSON configuration as a
// multipart form: "params" holds the configuration, "file" the archive.
func (c *Client) StartImport(ctx context.Context, params models.ImportParams, file *models.UploadFile) (*models.JobState, error) {
	if file == nil {
		return nil, fmt.Errorf("failed to start import: no file given")
	}

	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode import params: %w", err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("params", string(paramsJSON)); err != nil {
		return nil, fmt.Errorf("failed to write params field: %w", err)
	}
	part, err := mw.CreateFormFile("file", file.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := part.Write(file.Content); err != nil {
		return nil, fmt.Errorf("failed to write file part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalise multipart body: %w", err)
	}

	var status importStatus
	if err := c.do(ctx, http.MethodPost, importPath, nil, &buf, mw.FormDataContentType(), &status); err != nil {
		return nil, fmt.Errorf("failed to start import: %w", err)
	}

	// Some servers acknowledge without a status object
	if status.Status == "" {
		return nil, nil
	}
	return status.toJobState()
}

// GetStatus fetches the current import status.
func (c *Client) GetStatus(ctx context.Context) (*models.JobState, error) {
	var status importStatus
	if err := c.do(ctx, http.MethodGet, importPath, nil, nil, "", &status); err != nil {
		return nil, fmt.Errorf("failed to fetch import status: %w", err)
	}

	state, err := status.toJobState()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch import status: %w", err)
	}
	return state, nil
}

// GetLogs fetches the full cumulative import log.
func (c *Client) GetLogs(ctx context.Context) (string, error) {
	var logs string
	if err := c.do(ctx, http.MethodGet, logsPath, nil, nil, "", &logs); err != nil {
		return "", fmt.Errorf("failed to fetch import logs: %w", err)
	}
	return logs, nil
}

// StopImport stops a running import or clears a finished one.
func (c *Client) StopImport(ctx context.Context) error {
	if err := c.do(ctx, http.MethodDelete, importPath, nil, nil, "", nil); err != nil {
		return fmt.Errorf("failed to stop import: %w", err)
	}
	return nil
}

// GetLists retrieves every subscriber list.
func (c *Client) GetLists(ctx context.Context) ([]models.List, error) {
	params := url.Values{}
	params.Set("per_page", "all")

	var page listsPage
	if err := c.do(ctx, http.MethodGet, listsPath, params, nil, "", &page); err != nil {
		return nil, fmt.Errorf("failed to fetch lists: %w", err)
	}
	return page.Results, nil
}
