package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/NomadCrew/feedback-client/config"
	"github.com/NomadCrew/feedback-client/tests/mocks"
	"github.com/NomadCrew/feedback-client/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func importConfig() config.WorkerPoolConfig {
	return config.WorkerPoolConfig{MaxWorkers: 3, QueueSize: 2, ShutdownTimeoutSeconds: 5}
}

func TestImportService_SubmitsValidEntries(t *testing.T) {
	entries := make([]types.FeedbackRequest, 8)
	for i := range entries {
		entries[i] = types.FeedbackRequest{
			Name:    fmt.Sprintf("User %d", i),
			Email:   fmt.Sprintf("user%d@example.com", i),
			Message: "Imported",
		}
	}

	api := new(mocks.MockFeedbackAPI)
	for i, entry := range entries {
		api.On("SubmitFeedback", mock.Anything, entry).
			Return(&types.FeedbackResponse{ID: int64(i + 1), Name: entry.Name, Message: entry.Message}, nil).Once()
	}

	report := NewImportService(api, importConfig(), nil).Import(context.Background(), entries)

	assert.Equal(t, 8, report.Submitted)
	assert.Zero(t, report.Invalid)
	assert.Zero(t, report.Failed)
	require.Len(t, report.Results, 8)
	for i, r := range report.Results {
		assert.Equal(t, i, r.Index)
		require.True(t, r.OK())
		assert.Equal(t, entries[i].Name, r.Response.Name, "results stay in input order")
	}
	api.AssertNumberOfCalls(t, "SubmitFeedback", 8)
}

func TestImportService_InvalidAndFailedEntries(t *testing.T) {
	good := types.FeedbackRequest{Name: "Ok", Email: "ok@example.com", Message: "fine"}
	rejected := types.FeedbackRequest{Name: "Server", Email: "server@example.com", Message: "rejected"}
	invalid := types.FeedbackRequest{Name: "", Email: "nope", Message: "x"}

	api := new(mocks.MockFeedbackAPI)
	api.On("SubmitFeedback", mock.Anything, good).Return(&types.FeedbackResponse{ID: 1, Name: "Ok"}, nil).Once()
	api.On("SubmitFeedback", mock.Anything, rejected).Return(nil, errors.New("Internal Server Error (status 500)")).Once()

	report := NewImportService(api, importConfig(), nil).
		Import(context.Background(), []types.FeedbackRequest{good, invalid, rejected})

	assert.Equal(t, 1, report.Submitted)
	assert.Equal(t, 1, report.Invalid)
	assert.Equal(t, 1, report.Failed)

	assert.True(t, report.Results[0].OK())
	assert.Len(t, report.Results[1].FieldErrors, 2)
	assert.Nil(t, report.Results[1].Response)
	assert.EqualError(t, report.Results[2].Err, "Internal Server Error (status 500)")

	api.AssertExpectations(t)
	api.AssertNotCalled(t, "SubmitFeedback", mock.Anything, invalid)
}

func TestImportService_CancelledContext(t *testing.T) {
	api := new(mocks.MockFeedbackAPI)
	api.On("SubmitFeedback", mock.Anything, mock.Anything).Return(nil, context.Canceled).Maybe()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	entries := []types.FeedbackRequest{
		{Name: "A", Email: "a@example.com", Message: "a"},
		{Name: "B", Email: "b@example.com", Message: "b"},
	}
	report := NewImportService(api, importConfig(), nil).Import(ctx, entries)

	assert.Zero(t, report.Submitted)
	assert.Equal(t, 2, report.Failed)
	for _, r := range report.Results {
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
}

func TestImportService_Empty(t *testing.T) {
	report := NewImportService(new(mocks.MockFeedbackAPI), importConfig(), nil).Import(context.Background(), nil)
	assert.Empty(t, report.Results)
	assert.Zero(t, report.Submitted)
}
