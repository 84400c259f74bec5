package services

import (
	"context"
	"time"

	"github.com/NomadCrew/feedback-client/logger"
	"github.com/NomadCrew/feedback-client/types"
	"go.uber.org/zap"
)

// DefaultSlowThreshold is the probe latency above which the API counts as
// degraded.
const DefaultSlowThreshold = 2 * time.Second

// HealthService probes the feedback API with a one-entry page request.
type HealthService struct {
	api           FeedbackAPI
	version       string
	slowThreshold time.Duration
	started       time.Time
	now           func() time.Time
	log           *zap.SugaredLogger
}

func NewHealthService(api FeedbackAPI, version string) *HealthService {
	return &HealthService{
		api:           api,
		version:       version,
		slowThreshold: DefaultSlowThreshold,
		started:       time.Now(),
		now:           time.Now,
		log:           logger.GetLogger().Named("health"),
	}
}

func (h *HealthService) CheckHealth(ctx context.Context) types.HealthCheck {
	api := h.checkAPI(ctx)

	return types.HealthCheck{
		Status:     api.Status,
		Components: map[string]types.HealthComponent{"feedback_api": api},
		Version:    h.version,
		Timestamp:  h.now().UTC().Format(time.RFC3339),
		Uptime:     h.now().Sub(h.started).Round(time.Second).String(),
	}
}

func (h *HealthService) checkAPI(ctx context.Context) types.HealthComponent {
	start := h.now()
	_, err := h.api.GetFeedbacksPage(ctx, 0, 1)
	elapsed := h.now().Sub(start)

	if err != nil {
		h.log.Errorw("Feedback API health check failed", "error", err)
		return types.HealthComponent{
			Status:  types.HealthStatusDown,
			Details: err.Error(),
		}
	}

	if elapsed > h.slowThreshold {
		return types.HealthComponent{
			Status:  types.HealthStatusDegraded,
			Details: "slow response: " + elapsed.Round(time.Millisecond).String(),
		}
	}

	return types.HealthComponent{
		Status: types.HealthStatusUp,
	}
}
