package mocks

import (
	"context"

	"github.com/NomadCrew/feedback-client/types"
	"github.com/stretchr/testify/mock"
)

type MockFeedbackAPI struct {
	mock.Mock
}

func (m *MockFeedbackAPI) SubmitFeedback(ctx context.Context, req types.FeedbackRequest) (*types.FeedbackResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.FeedbackResponse), args.Error(1)
}

func (m *MockFeedbackAPI) GetFeedbacksPage(ctx context.Context, page, size int) (*types.FeedbackPage, error) {
	args := m.Called(ctx, page, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.FeedbackPage), args.Error(1)
}

func (m *MockFeedbackAPI) GetFeedbacks(ctx context.Context) ([]types.FeedbackResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.FeedbackResponse), args.Error(1)
}
