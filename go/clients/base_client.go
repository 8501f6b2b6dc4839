package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const requestIDHeader = "X-Request-ID"

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

type BaseClient struct {
	baseURL string
	client  *http.Client
	headers map[string]string
}

func NewBaseClient(baseURL string) *BaseClient {
	return &BaseClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		headers: make(map[string]string),
	}
}

func (c *BaseClient) SetHeader(key, value string) {
	c.headers[key] = value
}

func (c *BaseClient) SetTimeout(timeout time.Duration) {
	c.client.Timeout = timeout
}

// ResolveURL prefixes relative paths with the configured base URL.
// Absolute http(s) URLs pass through unchanged.
func (c *BaseClient) ResolveURL(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	if c.baseURL == "" {
		return endpoint
	}
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	return c.baseURL + endpoint
}

// GameAPIPath rewrites path to the game-scoped API prefix,
// e.g. ("root", "/api/matches/3") -> "/api/games/ROOT/matches/3".
func GameAPIPath(gameKey, path string) string {
	normalized := path
	if normalized == "/api" || strings.HasPrefix(normalized, "/api/") {
		normalized = strings.TrimPrefix(normalized, "/api")
	}
	if normalized != "" && !strings.HasPrefix(normalized, "/") {
		normalized = "/" + normalized
	}
	return fmt.Sprintf("/api/games/%s%s", strings.ToUpper(gameKey), normalized)
}

// MakeRequest sends body as JSON when it is non-nil and returns the raw response body.
// A 204 or an empty body yields a nil slice and no error.
func (c *BaseClient) MakeRequest(ctx context.Context, method, endpoint string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	url := c.ResolveURL(endpoint)
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.New().String()
	req.Header.Set(requestIDHeader, requestID)

	log.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("url", url).
		Msg("sending request")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		responseBody, _ := io.ReadAll(resp.Body)
		apiErr := newAPIError(resp, responseBody)
		log.Debug().
			Str("request_id", requestID).
			Int("status", resp.StatusCode).
			Str("error", apiErr.Message).
			Msg("request failed")
		return nil, apiErr
	}

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(bytes.TrimSpace(responseBody)) == 0 {
		return nil, nil
	}

	return responseBody, nil
}

func newAPIError(resp *http.Response, body []byte) *APIError {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return &APIError{StatusCode: resp.StatusCode, Message: payload.Message}
	}
	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}

// DoJSON performs the request and decodes a non-empty response into out.
func (c *BaseClient) DoJSON(ctx context.Context, method, endpoint string, body, out any) error {
	data, err := c.MakeRequest(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	if out == nil || data == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w, raw response: %s", err, string(data))
	}
	return nil
}

func (c *BaseClient) Get(ctx context.Context, endpoint string, out any) error {
	return c.DoJSON(ctx, http.MethodGet, endpoint, nil, out)
}

func (c *BaseClient) Post(ctx context.Context, endpoint string, body, out any) error {
	return c.DoJSON(ctx, http.MethodPost, endpoint, body, out)
}

func (c *BaseClient) Put(ctx context.Context, endpoint string, body, out any) error {
	return c.DoJSON(ctx, http.MethodPut, endpoint, body, out)
}

func (c *BaseClient) Delete(ctx context.Context, endpoint string) error {
	return c.DoJSON(ctx, http.MethodDelete, endpoint, nil, nil)
}

// ErrorMessage turns any error into the plain string shown to the user.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
