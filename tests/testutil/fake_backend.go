package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/NomadCrew/feedback-client/types"
	"github.com/gin-gonic/gin"
)

// ResponseShape selects how the fake backend answers list requests.
type ResponseShape int

const (
	// ShapeEnvelope answers GET /api/feedback with a page object.
	ShapeEnvelope ResponseShape = iota
	// ShapeLegacy answers with the complete list as a bare array.
	ShapeLegacy
)

// RecordedRequest is one request seen by the fake backend.
type RecordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Body   string
}

type cannedResponse struct {
	status      int
	contentType string
	body        string
}

// FakeBackend is an in-process stand-in for the feedback service. Items are
// kept newest first, the order the real service returns them in.
type FakeBackend struct {
	mu       sync.Mutex
	server   *httptest.Server
	shape    ResponseShape
	items    []types.FeedbackResponse
	nextID   int64
	canned   []cannedResponse
	requests []RecordedRequest
	hold     chan struct{}
	clock    time.Time
}

// NewFakeBackend starts a fake backend that is shut down when the test ends.
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()
	gin.SetMode(gin.TestMode)

	b := &FakeBackend{
		nextID: 1,
		clock:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	r := gin.New()
	r.Use(b.record(), b.serveCanned())
	r.POST("/api/feedback", b.create)
	r.GET("/api/feedback", b.list)

	b.server = httptest.NewServer(r)
	t.Cleanup(b.server.Close)
	return b
}

// URL returns the backend origin.
func (b *FakeBackend) URL() string {
	return b.server.URL
}

// SetShape switches between envelope and legacy list responses.
func (b *FakeBackend) SetShape(shape ResponseShape) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.shape = shape
}

// Seed stores n entries named "User <id>".
func (b *FakeBackend) Seed(n int) {
	for i := 0; i < n; i++ {
		b.add("User "+strconv.FormatInt(b.peekID(), 10), "Message")
	}
}

// FailNext makes the next request answer with status and a raw body.
func (b *FakeBackend) FailNext(status int, contentType, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.canned = append(b.canned, cannedResponse{status: status, contentType: contentType, body: body})
}

// Hold blocks list requests until the returned release func is called.
func (b *FakeBackend) Hold() (release func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan struct{})
	b.hold = ch
	var once sync.Once
	return func() {
		once.Do(func() { close(ch) })
	}
}

// Requests returns a copy of every request received so far.
func (b *FakeBackend) Requests() []RecordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]RecordedRequest, len(b.requests))
	copy(out, b.requests)
	return out
}

// Items returns the stored entries, newest first.
func (b *FakeBackend) Items() []types.FeedbackResponse {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]types.FeedbackResponse, len(b.items))
	copy(out, b.items)
	return out
}

func (b *FakeBackend) peekID() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.nextID
}

func (b *FakeBackend) add(name, message string) types.FeedbackResponse {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clock = b.clock.Add(time.Minute)
	item := types.FeedbackResponse{
		ID:        b.nextID,
		Name:      name,
		Message:   message,
		CreatedAt: b.clock.Format(time.RFC3339),
	}
	b.nextID++
	b.items = append([]types.FeedbackResponse{item}, b.items...)
	return item
}

func (b *FakeBackend) record() gin.HandlerFunc {
	return func(c *gin.Context) {
		body, _ := c.GetRawData()
		c.Request.Body = http.NoBody
		c.Set("rawBody", body)

		b.mu.Lock()
		b.requests = append(b.requests, RecordedRequest{
			Method: c.Request.Method,
			Path:   c.Request.URL.Path,
			Query:  c.Request.URL.Query(),
			Body:   string(body),
		})
		b.mu.Unlock()
		c.Next()
	}
}

func (b *FakeBackend) serveCanned() gin.HandlerFunc {
	return func(c *gin.Context) {
		b.mu.Lock()
		if len(b.canned) == 0 {
			b.mu.Unlock()
			c.Next()
			return
		}
		resp := b.canned[0]
		b.canned = b.canned[1:]
		b.mu.Unlock()

		if resp.contentType == "" {
			resp.contentType = "text/plain"
		}
		c.Data(resp.status, resp.contentType, []byte(resp.body))
		c.Abort()
	}
}

func (b *FakeBackend) create(c *gin.Context) {
	raw, _ := c.Get("rawBody")
	var req types.FeedbackRequest
	if err := bindRaw(raw, &req); err != nil {
		c.JSON(http.StatusBadRequest, types.APIError{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Status:    http.StatusBadRequest,
			Error:     "Bad Request",
			Message:   "Malformed JSON request",
		})
		return
	}

	var details []string
	if strings.TrimSpace(req.Name) == "" {
		details = append(details, "name must not be blank")
	}
	if strings.TrimSpace(req.Email) == "" || !strings.Contains(req.Email, "@") {
		details = append(details, "email must be a well-formed email address")
	}
	if strings.TrimSpace(req.Message) == "" {
		details = append(details, "message must not be blank")
	}
	if len(details) > 0 {
		c.JSON(http.StatusBadRequest, types.APIError{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Status:    http.StatusBadRequest,
			Error:     "Bad Request",
			Message:   "Validation error",
			Details:   details,
		})
		return
	}

	c.JSON(http.StatusOK, b.add(req.Name, req.Message))
}

func bindRaw(raw any, out any) error {
	data, _ := raw.([]byte)
	return json.Unmarshal(data, out)
}

func (b *FakeBackend) list(c *gin.Context) {
	b.mu.Lock()
	hold := b.hold
	b.hold = nil
	b.mu.Unlock()
	if hold != nil {
		<-hold
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))

	b.mu.Lock()
	shape := b.shape
	all := make([]types.FeedbackResponse, len(b.items))
	copy(all, b.items)
	b.mu.Unlock()

	if shape == ShapeLegacy {
		c.JSON(http.StatusOK, all)
		return
	}
	if size <= 0 {
		size = 10
	}

	total := len(all)
	totalPages := (total + size - 1) / size
	start := min(page*size, total)
	end := min(start+size, total)

	c.JSON(http.StatusOK, &types.FeedbackPage{
		Items:         all[start:end],
		Page:          page,
		Size:          size,
		TotalElements: int64(total),
		TotalPages:    totalPages,
		HasNext:       page+1 < totalPages,
	})
}
