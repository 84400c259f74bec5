package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	apperrors "github.com/NomadCrew/feedback-client/errors"
	"github.com/NomadCrew/feedback-client/tests/mocks"
	"github.com/NomadCrew/feedback-client/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// steppingClock advances by step on every call.
func steppingClock(step time.Duration) func() time.Time {
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(step)
		return t
	}
}

func TestHealthService_CheckHealth(t *testing.T) {
	tests := []struct {
		name       string
		page       *types.FeedbackPage
		err        error
		step       time.Duration
		wantStatus types.HealthStatus
		wantDetail string
	}{
		{
			name:       "up",
			page:       makePage(0, 1, 3),
			step:       10 * time.Millisecond,
			wantStatus: types.HealthStatusUp,
		},
		{
			name:       "slow",
			page:       makePage(0, 1, 3),
			step:       3 * time.Second,
			wantStatus: types.HealthStatusDegraded,
			wantDetail: "slow response: 3s",
		},
		{
			name:       "down",
			err:        apperrors.NewHTTPError(http.StatusServiceUnavailable, "Service Unavailable", nil),
			step:       time.Millisecond,
			wantStatus: types.HealthStatusDown,
			wantDetail: "Service Unavailable (status 503)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := new(mocks.MockFeedbackAPI)
			if tt.page != nil {
				api.On("GetFeedbacksPage", mock.Anything, 0, 1).Return(tt.page, nil).Once()
			} else {
				api.On("GetFeedbacksPage", mock.Anything, 0, 1).Return(nil, tt.err).Once()
			}

			h := NewHealthService(api, "1.2.3")
			h.now = steppingClock(tt.step)

			got := h.CheckHealth(context.Background())
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, "1.2.3", got.Version)
			assert.Equal(t, tt.wantStatus, got.Components["feedback_api"].Status)
			assert.Equal(t, tt.wantDetail, got.Components["feedback_api"].Details)
			api.AssertExpectations(t)
		})
	}
}
