package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/NomadCrew/feedback-client/config"
	apperrors "github.com/NomadCrew/feedback-client/errors"
	"github.com/NomadCrew/feedback-client/internal/metrics"
	"github.com/NomadCrew/feedback-client/internal/validation"
	"github.com/NomadCrew/feedback-client/logger"
	"github.com/NomadCrew/feedback-client/types"
	"go.uber.org/zap"
)

// ImportEntryResult is the outcome of one entry of a bulk import.
type ImportEntryResult struct {
	Index       int
	Request     types.FeedbackRequest
	Response    *types.FeedbackResponse
	FieldErrors []apperrors.FieldError
	Err         error
}

// OK reports whether the entry was created on the backend.
func (r ImportEntryResult) OK() bool {
	return r.Response != nil && r.Err == nil && len(r.FieldErrors) == 0
}

// ImportReport collects per-entry results in input order.
type ImportReport struct {
	Results   []ImportEntryResult
	Submitted int
	Invalid   int
	Failed    int
}

// ImportService submits many feedback entries concurrently through a bounded
// worker pool. Entries are validated locally first; invalid entries are
// reported and never sent.
type ImportService struct {
	api     FeedbackAPI
	cfg     config.WorkerPoolConfig
	metrics *metrics.Metrics
	log     *zap.SugaredLogger
}

func NewImportService(api FeedbackAPI, cfg config.WorkerPoolConfig, m *metrics.Metrics) *ImportService {
	return &ImportService{
		api:     api,
		cfg:     cfg,
		metrics: m,
		log:     logger.GetLogger().Named("import"),
	}
}

// Import submits entries and waits for every one to resolve or for ctx to
// end. Entries not yet sent when ctx ends are reported with ctx.Err().
func (s *ImportService) Import(ctx context.Context, entries []types.FeedbackRequest) ImportReport {
	results := make([]ImportEntryResult, len(entries))
	for i, entry := range entries {
		results[i] = ImportEntryResult{Index: i, Request: entry}
	}

	pool := NewWorkerPool(s.cfg, s.metrics)
	pool.Start()

	var wg sync.WaitGroup
	for i := range entries {
		if err := validation.Struct(entries[i]); err != nil {
			if vErr, ok := apperrors.AsValidationError(err); ok {
				results[i].FieldErrors = vErr.Fields
			} else {
				results[i].Err = err
			}
			continue
		}

		i := i
		wg.Add(1)
		job := Job{
			Name: fmt.Sprintf("import-%d", i),
			Execute: func(_ context.Context) error {
				defer wg.Done()
				resp, err := s.api.SubmitFeedback(ctx, entries[i])
				results[i].Response = resp
				results[i].Err = err
				return err
			},
		}
		if err := pool.SubmitWait(ctx, job); err != nil {
			wg.Done()
			results[i].Err = err
		}
	}

	wg.Wait()

	timeout := time.Duration(s.cfg.ShutdownTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := pool.Shutdown(shutdownCtx); err != nil {
		s.log.Warnw("Import worker pool did not stop cleanly", "error", err)
	}

	report := ImportReport{Results: results}
	for _, r := range results {
		switch {
		case len(r.FieldErrors) > 0:
			report.Invalid++
		case r.OK():
			report.Submitted++
		default:
			report.Failed++
		}
	}

	s.log.Infow("Import finished",
		"entries", len(entries),
		"submitted", report.Submitted,
		"invalid", report.Invalid,
		"failed", report.Failed)
	return report
}
