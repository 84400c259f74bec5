package types

// PageResponse is the paginated envelope returned by list endpoints.
// Page is zero-based.
type PageResponse[T any] struct {
	Items         []T   `json:"items" yaml:"items"`
	Page          int   `json:"page" yaml:"page"`
	Size          int   `json:"size" yaml:"size"`
	TotalElements int64 `json:"totalElements" yaml:"totalElements"`
	TotalPages    int   `json:"totalPages" yaml:"totalPages"`
	HasNext       bool  `json:"hasNext" yaml:"hasNext"`
}

// FeedbackPage is the page type served by the feedback endpoint.
type FeedbackPage = PageResponse[FeedbackResponse]

// APIError is the error body the backend sends with non-2xx responses.
// Details carries per-field validation messages.
type APIError struct {
	Timestamp string   `json:"timestamp,omitempty"`
	Status    int      `json:"status"`
	Error     string   `json:"error,omitempty"`
	Message   string   `json:"message,omitempty"`
	Details   []string `json:"details,omitempty"`
}
