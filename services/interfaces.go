package services

import (
	"context"

	"github.com/NomadCrew/feedback-client/types"
)

// FeedbackAPI is the backend surface the services depend on.
// *feedbackapi.Client satisfies it.
type FeedbackAPI interface {
	SubmitFeedback(ctx context.Context, req types.FeedbackRequest) (*types.FeedbackResponse, error)
	GetFeedbacksPage(ctx context.Context, page, size int) (*types.FeedbackPage, error)
	GetFeedbacks(ctx context.Context) ([]types.FeedbackResponse, error)
}
