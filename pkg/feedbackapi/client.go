package feedbackapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/NomadCrew/feedback-client/internal/transport"
	"github.com/NomadCrew/feedback-client/logger"
	"github.com/NomadCrew/feedback-client/types"
)

const (
	// FeedbackPath is the collection resource on the backend.
	FeedbackPath = "/api/feedback"
	// DefaultPageSize is the page size used by list views.
	DefaultPageSize = 10
)

// ErrInvalidPageRequest is returned when page is negative or size is not positive.
var ErrInvalidPageRequest = errors.New("invalid page request")

// ClientInterface defines the interface for feedback API operations
type ClientInterface interface {
	SubmitFeedback(ctx context.Context, req types.FeedbackRequest) (*types.FeedbackResponse, error)
	GetFeedbacksPage(ctx context.Context, page, size int) (*types.FeedbackPage, error)
	GetFeedbacks(ctx context.Context) ([]types.FeedbackResponse, error)
}

// Sender is the part of the transport the client needs.
type Sender interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body any, out any) error
}

type Client struct {
	sender Sender
}

var _ ClientInterface = (*Client)(nil)

func NewClient(sender Sender) *Client {
	return &Client{sender: sender}
}

// NewClientForURL builds a client on a fresh transport for baseURL.
func NewClientForURL(baseURL string, opts ...transport.Option) *Client {
	return NewClient(transport.New(baseURL, opts...))
}

// SubmitFeedback posts a feedback entry and returns the record the server
// created. Errors from the transport are returned unchanged.
func (c *Client) SubmitFeedback(ctx context.Context, req types.FeedbackRequest) (*types.FeedbackResponse, error) {
	logger.GetLogger().Debugw("Submitting feedback", "name", req.Name, "email", logger.MaskEmail(req.Email))

	var resp types.FeedbackResponse
	if err := c.sender.Post(ctx, FeedbackPath, req, &resp); err != nil {
		return nil, err
	}

	logger.GetLogger().Debugw("Feedback created", "id", resp.ID)
	return &resp, nil
}

// GetFeedbacksPage fetches one page of feedback. The backend may answer with
// a page envelope or with the complete list as a bare array; both come back
// as a page.
func (c *Client) GetFeedbacksPage(ctx context.Context, page, size int) (*types.FeedbackPage, error) {
	if page < 0 || size <= 0 {
		return nil, fmt.Errorf("%w: page=%d size=%d", ErrInvalidPageRequest, page, size)
	}

	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("size", strconv.Itoa(size))

	var body json.RawMessage
	if err := c.sender.Get(ctx, FeedbackPath, params, &body); err != nil {
		return nil, err
	}

	raw, err := DecodeRawPage(body)
	if err != nil {
		logger.GetLogger().Errorw("Failed to decode feedback page", "page", page, "size", size, "error", err)
		return nil, err
	}

	normalized := Normalize(raw, page, size)
	logger.GetLogger().Debugw("Feedback page fetched",
		"shape", raw.Kind.String(),
		"page", normalized.Page,
		"items", len(normalized.Items),
		"hasNext", normalized.HasNext,
	)
	return &normalized, nil
}

// GetFeedbacks returns the items of the first page, for callers that do not
// paginate.
func (c *Client) GetFeedbacks(ctx context.Context) ([]types.FeedbackResponse, error) {
	first, err := c.GetFeedbacksPage(ctx, 0, DefaultPageSize)
	if err != nil {
		return nil, err
	}
	return first.Items, nil
}
