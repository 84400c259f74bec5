package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/NomadCrew/feedback-client/errors"
	"github.com/NomadCrew/feedback-client/internal/metrics"
	"github.com/NomadCrew/feedback-client/logger"
	"github.com/NomadCrew/feedback-client/types"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.IsTest = true
}

func TestNew_DefaultsAndOptions(t *testing.T) {
	tr := New("")
	assert.Equal(t, DefaultBaseURL, tr.BaseURL())
	assert.NotNil(t, tr.httpClient)
	assert.Zero(t, tr.httpClient.Timeout)

	custom := &http.Client{Timeout: 5 * time.Second}
	tr = New(" https://api.example.com/ ", WithHTTPClient(custom), WithUserAgent("feedback-cli/test"))
	assert.Equal(t, "https://api.example.com", tr.BaseURL())
	assert.Same(t, custom, tr.httpClient)
	assert.Equal(t, "feedback-cli/test", tr.userAgent)
}

func TestSend_PostEncodesBodyAndDecodesResponse(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/feedback", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, err := uuid.Parse(r.Header.Get(RequestIDHeader))
		assert.NoError(t, err, "request id should be a uuid")

		var req types.FeedbackRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "John Doe", req.Name)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":1,"name":"John Doe","message":"Hi","createdAt":"2024-01-01T00:00:00Z"}`))
	}))
	defer server.Close()

	tr := New(server.URL)
	var out types.FeedbackResponse
	err := tr.Post(context.Background(), "/api/feedback", types.FeedbackRequest{Name: "John Doe", Email: "john@example.com", Message: "Hi"}, &out)

	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, types.FeedbackResponse{ID: 1, Name: "John Doe", Message: "Hi", CreatedAt: "2024-01-01T00:00:00Z"}, out)
}

func TestSend_GetEncodesQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "10", r.URL.Query().Get("size"))
		assert.Empty(t, r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.Empty(t, body)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	var out json.RawMessage
	err := New(server.URL).Get(context.Background(), "/api/feedback", url.Values{"page": {"2"}, "size": {"10"}}, &out)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(out))
}

func TestSend_ErrorResponses(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantMsg    string
		wantBody   *types.APIError
		wantStatus int
	}{
		{
			name:   "json body with message and details",
			status: http.StatusBadRequest,
			body:   `{"timestamp":"2024-01-01T00:00:00Z","status":400,"error":"Bad Request","message":"Validation error","details":["name must not be blank"]}`,
			wantBody: &types.APIError{
				Timestamp: "2024-01-01T00:00:00Z",
				Status:    400,
				Error:     "Bad Request",
				Message:   "Validation error",
				Details:   []string{"name must not be blank"},
			},
			wantMsg:    "Validation error",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "json body with error only",
			status:     http.StatusInternalServerError,
			body:       `{"status":500,"error":"Internal Server Error"}`,
			wantBody:   &types.APIError{Status: 500, Error: "Internal Server Error"},
			wantMsg:    "Internal Server Error",
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "non-json body falls back to reason phrase",
			status:     http.StatusInternalServerError,
			body:       `<html>oops</html>`,
			wantMsg:    "Internal Server Error",
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "empty body falls back to reason phrase",
			status:     http.StatusServiceUnavailable,
			wantMsg:    "Service Unavailable",
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "json array is not an error body",
			status:     http.StatusNotFound,
			body:       `["nope"]`,
			wantMsg:    "Not Found",
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			err := New(server.URL).Get(context.Background(), "/api/feedback", nil, nil)

			httpErr, ok := apperrors.AsHTTPError(err)
			require.True(t, ok, "expected HTTPError, got %v", err)
			assert.Equal(t, tt.wantStatus, httpErr.Status)
			assert.Equal(t, tt.wantMsg, httpErr.Message)
			assert.Equal(t, tt.wantBody, httpErr.Body)
		})
	}
}

func TestSend_NoRetryOnFailure(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	err := New(server.URL).Get(context.Background(), "/api/feedback", nil, nil)
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestSend_MalformedSuccessBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer server.Close()

	var out types.FeedbackResponse
	err := New(server.URL).Get(context.Background(), "/api/feedback", nil, &out)

	require.Error(t, err)
	_, isHTTP := apperrors.AsHTTPError(err)
	assert.False(t, isHTTP)
	assert.Contains(t, err.Error(), "failed to decode response")
}

func TestSend_EmptySuccessBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	var out types.FeedbackResponse
	err := New(server.URL).Post(context.Background(), "/api/feedback", map[string]string{}, &out)
	require.NoError(t, err)
	assert.Equal(t, types.FeedbackResponse{}, out)
}

func TestSend_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	err := New(baseURL, WithMetrics(m)).Get(context.Background(), "/api/feedback", nil, nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.NetworkErrorType, apperrors.TypeOf(err))
	assert.Contains(t, err.Error(), "failed to send request")

	count, err := testutil.GatherAndCount(reg, "feedback_api_failures_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSend_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New(server.URL).Get(ctx, "/api/feedback", nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestSend_RecordsMetrics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	reg := prometheus.NewRegistry()
	tr := New(server.URL, WithMetrics(metrics.New(reg)))

	require.NoError(t, tr.Get(context.Background(), "/api/feedback", nil, nil))
	require.Error(t, tr.Post(context.Background(), "/api/feedback", map[string]string{}, nil))

	count, err := testutil.GatherAndCount(reg, "feedback_api_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "one series per method/status pair")
}
