package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/NomadCrew/feedback-client/internal/metrics"
	"github.com/NomadCrew/feedback-client/logger"
	"github.com/NomadCrew/feedback-client/pkg/feedbackapi"
	"github.com/NomadCrew/feedback-client/types"
	"go.uber.org/zap"
)

var (
	// ErrNoMorePages is returned by BeginFetchMore when the last page has
	// already been loaded.
	ErrNoMorePages = errors.New("no more pages")
	// ErrFetchInFlight is returned by BeginFetchMore while another page
	// request is outstanding.
	ErrFetchInFlight = errors.New("page fetch already in flight")
)

// DefaultStaleAfter is how long a loaded list counts as fresh.
const DefaultStaleAfter = 60 * time.Second

// PageRequestKind distinguishes a first-page load from a fetch-more.
type PageRequestKind string

const (
	PageRefresh PageRequestKind = "refresh"
	PageMore    PageRequestKind = "more"
)

// PageRequest describes one page fetch, tagged with the list generation it
// was issued for.
type PageRequest struct {
	Kind       PageRequestKind
	Generation uint64
	Page       int
	Size       int
}

// PageResult is the outcome of a PageRequest.
type PageResult struct {
	Request PageRequest
	Page    *types.FeedbackPage
	Err     error
}

// ListSnapshot is a read-only copy of the list state.
type ListSnapshot struct {
	Items        []types.FeedbackResponse
	PagesLoaded  int
	HasMore      bool
	Loading      bool
	FetchingMore bool
	Err          error
	Generation   uint64
	FetchedAt    time.Time
}

// Empty reports whether the list finished loading with nothing to show.
func (s ListSnapshot) Empty() bool {
	return len(s.Items) == 0 && !s.Loading && s.Err == nil
}

// ListOption configures a FeedbackListService.
type ListOption func(*FeedbackListService)

// WithPageSize overrides DefaultPageSize.
func WithPageSize(size int) ListOption {
	return func(s *FeedbackListService) {
		if size > 0 {
			s.pageSize = size
		}
	}
}

// WithStaleAfter sets the window used by RefreshIfStale.
func WithStaleAfter(d time.Duration) ListOption {
	return func(s *FeedbackListService) {
		s.staleAfter = d
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) ListOption {
	return func(s *FeedbackListService) {
		s.now = now
	}
}

// WithListMetrics records applied and discarded results on m.
func WithListMetrics(m *metrics.Metrics) ListOption {
	return func(s *FeedbackListService) {
		s.metrics = m
	}
}

// FeedbackListService accumulates feedback pages for an infinitely scrolling
// list. Fetches may run on any goroutine; Begin* and Apply are expected to be
// called from the owner's event loop, and results from a superseded
// generation are discarded.
type FeedbackListService struct {
	api        FeedbackAPI
	pageSize   int
	staleAfter time.Duration
	now        func() time.Time
	metrics    *metrics.Metrics
	log        *zap.SugaredLogger

	mu           sync.Mutex
	pages        []types.FeedbackPage
	hasMore      bool
	loading      bool
	fetchingMore bool
	err          error
	generation   uint64
	fetchedAt    time.Time
}

func NewFeedbackListService(api FeedbackAPI, opts ...ListOption) *FeedbackListService {
	s := &FeedbackListService{
		api:        api,
		pageSize:   feedbackapi.DefaultPageSize,
		staleAfter: DefaultStaleAfter,
		now:        time.Now,
		log:        logger.GetLogger().Named("feedback-list"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PageSize returns the size used for every page request.
func (s *FeedbackListService) PageSize() int {
	return s.pageSize
}

// BeginRefresh starts a new generation and returns the request for its first
// page. Pages already loaded stay visible until the result is applied.
func (s *FeedbackListService) BeginRefresh() PageRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.loading = true
	s.fetchingMore = false

	s.log.Debugw("Refreshing feedback list", "generation", s.generation)
	return PageRequest{Kind: PageRefresh, Generation: s.generation, Page: 0, Size: s.pageSize}
}

// BeginFetchMore returns the request for the page after the last loaded one.
func (s *FeedbackListService) BeginFetchMore() (PageRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loading || s.fetchingMore {
		return PageRequest{}, ErrFetchInFlight
	}
	if !s.hasMore {
		return PageRequest{}, ErrNoMorePages
	}

	next := 0
	if n := len(s.pages); n > 0 {
		next = s.pages[n-1].Page + 1
	}
	s.fetchingMore = true

	s.log.Debugw("Fetching more feedback", "generation", s.generation, "page", next)
	return PageRequest{Kind: PageMore, Generation: s.generation, Page: next, Size: s.pageSize}, nil
}

// Fetch performs the network call for req. It does not touch list state.
func (s *FeedbackListService) Fetch(ctx context.Context, req PageRequest) PageResult {
	page, err := s.api.GetFeedbacksPage(ctx, req.Page, req.Size)
	return PageResult{Request: req, Page: page, Err: err}
}

// Apply merges res into the list. It returns false when res belongs to an
// older generation and was dropped.
func (s *FeedbackListService) Apply(res PageResult) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if res.Request.Generation != s.generation {
		s.metrics.StaleResultDiscarded()
		s.log.Debugw("Discarding stale page result",
			"kind", res.Request.Kind,
			"page", res.Request.Page,
			"resultGeneration", res.Request.Generation,
			"currentGeneration", s.generation,
		)
		return false
	}

	switch res.Request.Kind {
	case PageRefresh:
		s.loading = false
	case PageMore:
		s.fetchingMore = false
	}

	if res.Err != nil {
		s.err = res.Err
		s.log.Warnw("Failed to load feedback page", "kind", res.Request.Kind, "page", res.Request.Page, "error", res.Err)
		return true
	}

	page := types.FeedbackPage{}
	if res.Page != nil {
		page = *res.Page
	}
	if page.Items == nil {
		page.Items = []types.FeedbackResponse{}
	}

	if res.Request.Kind == PageRefresh {
		s.pages = []types.FeedbackPage{page}
		s.fetchedAt = s.now()
	} else {
		s.pages = append(s.pages, page)
	}
	s.hasMore = page.HasNext
	s.err = nil
	s.metrics.PageApplied(string(res.Request.Kind))
	return true
}

// Refresh reloads the first page synchronously.
func (s *FeedbackListService) Refresh(ctx context.Context) error {
	req := s.BeginRefresh()
	res := s.Fetch(ctx, req)
	s.Apply(res)
	return res.Err
}

// FetchMore loads the next page synchronously.
func (s *FeedbackListService) FetchMore(ctx context.Context) error {
	req, err := s.BeginFetchMore()
	if err != nil {
		return err
	}
	res := s.Fetch(ctx, req)
	s.Apply(res)
	return res.Err
}

// IsStale reports whether the list has never loaded successfully or its first
// page is older than the staleness window.
func (s *FeedbackListService) IsStale() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isStaleLocked()
}

func (s *FeedbackListService) isStaleLocked() bool {
	if s.fetchedAt.IsZero() {
		return true
	}
	return s.now().Sub(s.fetchedAt) >= s.staleAfter
}

// MarkStale forces the next RefreshIfStale to refetch.
func (s *FeedbackListService) MarkStale() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetchedAt = time.Time{}
}

// BeginRefreshIfStale is BeginRefresh gated on the staleness window. It
// returns false when the list is still fresh or a refresh is already running.
func (s *FeedbackListService) BeginRefreshIfStale() (PageRequest, bool) {
	s.mu.Lock()
	if s.loading || !s.isStaleLocked() {
		s.mu.Unlock()
		return PageRequest{}, false
	}
	s.mu.Unlock()
	return s.BeginRefresh(), true
}

// RefreshIfStale refreshes synchronously when the list is stale. It reports
// whether a request was made.
func (s *FeedbackListService) RefreshIfStale(ctx context.Context) (bool, error) {
	req, ok := s.BeginRefreshIfStale()
	if !ok {
		return false, nil
	}
	res := s.Fetch(ctx, req)
	s.Apply(res)
	return true, res.Err
}

// Snapshot returns a copy of the current list state with pages flattened in
// load order.
func (s *FeedbackListService) Snapshot() ListSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := []types.FeedbackResponse{}
	for _, p := range s.pages {
		items = append(items, p.Items...)
	}

	return ListSnapshot{
		Items:        items,
		PagesLoaded:  len(s.pages),
		HasMore:      s.hasMore,
		Loading:      s.loading,
		FetchingMore: s.fetchingMore,
		Err:          s.err,
		Generation:   s.generation,
		FetchedAt:    s.fetchedAt,
	}
}
