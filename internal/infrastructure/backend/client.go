// internal/infrastructure/backend/client.go
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/freshmilk-storefront/internal/config"
)

const maxResponseBytes = 1 << 20

// ErrEmptyResponse is returned when a successful call carries no body
var ErrEmptyResponse = errors.New("backend returned no data")

// APIError is a failed backend call
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend error (status %d): %s", e.Status, e.Message)
}

// Unauthorized reports whether the backend rejected the caller's token
func (e *APIError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// errorBody covers the error shapes the backend answers with: {"error": ...},
// {"detail": ...} or a field map of validation messages
type errorBody struct {
	Error  string
	Detail string
	Fields map[string]json.RawMessage
}

func (b *errorBody) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		var list []string
		if listErr := json.Unmarshal(data, &list); listErr != nil {
			return err
		}
		b.Detail = strings.Join(list, "; ")
		return nil
	}
	b.Fields = fields
	_ = json.Unmarshal(fields["error"], &b.Error)
	_ = json.Unmarshal(fields["detail"], &b.Detail)
	return nil
}

func (b *errorBody) message() string {
	if b.Error != "" {
		return b.Error
	}
	if b.Detail != "" {
		return b.Detail
	}

	keys := make([]string, 0, len(b.Fields))
	for k := range b.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		var msgs []string
		if err := json.Unmarshal(b.Fields[k], &msgs); err == nil {
			parts = append(parts, k+": "+strings.Join(msgs, ", "))
			continue
		}
		var msg string
		if err := json.Unmarshal(b.Fields[k], &msg); err == nil {
			parts = append(parts, k+": "+msg)
		}
	}
	return strings.Join(parts, "; ")
}

// List decodes a collection endpoint, paginated ({"results": [...]}) or not
type List[T any] struct {
	Items []T
}

func (l *List[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &l.Items)
	}

	var page struct {
		Results []T `json:"results"`
	}
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return err
	}
	l.Items = page.Results
	return nil
}

// Client calls the storefront REST backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient creates a new backend client
func NewClient(cfg *config.Config, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.Backend.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Backend.Timeout,
		},
		logger: logger,
	}
}

type callOptions struct {
	token          string
	idempotencyKey string
}

// do sends a request and decodes the response body into T
func do[T any](ctx context.Context, c *Client, method, endpoint string, body interface{}, opts callOptions) (*T, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request data: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if opts.token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.token)
	}
	if opts.idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", opts.idempotencyKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call backend %s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"method":   method,
		"endpoint": endpoint,
		"status":   resp.StatusCode,
		"latency":  time.Since(start).String(),
	}).Debug("Backend call")

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		var body errorBody
		if err := json.Unmarshal(raw, &body); err == nil {
			apiErr.Message = body.message()
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return nil, apiErr
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, ErrEmptyResponse
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode backend response: %w", err)
	}
	return &out, nil
}
