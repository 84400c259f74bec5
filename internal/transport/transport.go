// Package transport issues JSON requests against the feedback backend and
// turns non-2xx responses into *errors.HTTPError values.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/NomadCrew/feedback-client/errors"
	"github.com/NomadCrew/feedback-client/internal/metrics"
	"github.com/NomadCrew/feedback-client/logger"
	"github.com/NomadCrew/feedback-client/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:8080"

// RequestIDHeader carries a per-request identifier for server-side log correlation.
const RequestIDHeader = "X-Request-ID"

// Transport sends requests to a single backend origin.
type Transport struct {
	baseURL    string
	httpClient *http.Client
	metrics    *metrics.Metrics
	log        *zap.SugaredLogger
	userAgent  string
}

// Option is a function that configures the Transport.
type Option func(*Transport)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(t *Transport) {
		t.httpClient = client
	}
}

// WithMetrics records every request on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(t *Transport) {
		t.metrics = m
	}
}

// WithUserAgent sets the User-Agent header sent with each request.
func WithUserAgent(ua string) Option {
	return func(t *Transport) {
		t.userAgent = ua
	}
}

// New creates a Transport for baseURL. An empty baseURL resolves to
// DefaultBaseURL. The default HTTP client has no timeout; deadlines come
// from the caller's context.
func New(baseURL string, opts ...Option) *Transport {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	t := &Transport{
		baseURL:    baseURL,
		httpClient: &http.Client{},
		log:        logger.GetLogger(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// BaseURL returns the resolved backend origin.
func (t *Transport) BaseURL() string {
	return t.baseURL
}

// Get issues a GET request and decodes the JSON response into out.
func (t *Transport) Get(ctx context.Context, path string, query url.Values, out any) error {
	return t.Send(ctx, http.MethodGet, path, query, nil, out)
}

// Post issues a POST request with body encoded as JSON and decodes the
// JSON response into out.
func (t *Transport) Post(ctx context.Context, path string, body any, out any) error {
	return t.Send(ctx, http.MethodPost, path, nil, body, out)
}

// Send performs exactly one HTTP round trip. On a 2xx response the body is
// decoded into out (skipped when out is nil or the body is empty). On any
// other status it returns an *errors.HTTPError. Nothing is retried.
func (t *Transport) Send(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	endpoint := t.baseURL + path
	if len(query) > 0 {
		endpoint = endpoint + "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.New().String()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}

	t.log.Debugw("Sending feedback API request", "method", method, "url", endpoint, "requestId", requestID)

	start := time.Now()
	resp, err := t.httpClient.Do(req)
	if err != nil {
		t.metrics.ObserveFailure(method, path, metrics.FailureNetwork)
		t.log.Warnw("Feedback API request failed", "method", method, "url", endpoint, "requestId", requestID, "error", err)
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	elapsed := time.Since(start)
	t.metrics.ObserveRequest(method, path, resp.StatusCode, elapsed)
	t.log.Debugw("Feedback API response received",
		"method", method,
		"url", endpoint,
		"requestId", requestID,
		"statusCode", resp.StatusCode,
		"elapsed", elapsed,
	)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.metrics.ObserveFailure(method, path, metrics.FailureNetwork)
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		httpErr := apperrors.NewHTTPError(resp.StatusCode, reasonPhrase(resp), parseErrorBody(data))
		t.log.Warnw("Feedback API returned non-2xx status",
			"method", method,
			"url", endpoint,
			"requestId", requestID,
			"statusCode", resp.StatusCode,
			"message", httpErr.Message,
		)
		return httpErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		t.metrics.ObserveFailure(method, path, metrics.FailureDecode)
		t.log.Errorw("Failed to decode feedback API response", "url", endpoint, "requestId", requestID, "error", err)
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// parseErrorBody returns the decoded error body, or nil when the body is not
// a JSON object.
func parseErrorBody(data []byte) *types.APIError {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	var body *types.APIError
	if err := json.Unmarshal(data, &body); err != nil {
		return nil
	}
	return body
}

// reasonPhrase prefers the phrase the server put on the status line and
// falls back to the standard text for the code.
func reasonPhrase(resp *http.Response) string {
	phrase := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if phrase != "" {
		return phrase
	}
	return http.StatusText(resp.StatusCode)
}
