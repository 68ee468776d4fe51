package worker

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"paperhulp/internal/config"
	"paperhulp/internal/domain"
	"paperhulp/internal/domain/ports/repository"
	"paperhulp/internal/infra/metrics"
	"paperhulp/internal/usecase"
)

// JobPoller drains the pending-job queue onto a worker pool. Several poller
// instances can run against the same database; the conditional claim inside
// ProcessJob keeps each job on exactly one of them.
type JobPoller struct {
	jobs      repository.JobRepository
	processor usecase.ProcessUseCase
	cfg       config.WorkerConfig
	logger    *zerolog.Logger
}

func NewJobPoller(jobs repository.JobRepository, processor usecase.ProcessUseCase, cfg config.WorkerConfig, logger *zerolog.Logger) *JobPoller {
	return &JobPoller{jobs: jobs, processor: processor, cfg: cfg, logger: logger}
}

// Start runs the polling loop until ctx is cancelled.
// This should be run in a goroutine.
func (p *JobPoller) Start(ctx context.Context, pool *Pool) {
	p.logger.Info().Dur("poll_interval", p.cfg.PollInterval).Msg("job poller started")
	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Msg("job poller stopping")
			return
		case <-ticker.C:
			p.sweepStale(ctx)
			_ = pool.Submit(func(ctx context.Context) error {
				return p.processNext(ctx)
			})
		}
	}
}

func (p *JobPoller) processNext(ctx context.Context) error {
	err := p.processor.ProcessNext(ctx)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrNotFound):
		return nil // empty queue
	case errors.Is(err, domain.ErrClaimConflict):
		return nil // another poller won the race
	default:
		// already logged and recorded by the pipeline itself
		return nil
	}
}

// sweepStale returns PROCESSING jobs older than the configured threshold to
// the queue. Covers workers that died mid-pipeline or lost their transaction.
func (p *JobPoller) sweepStale(ctx context.Context) {
	if p.cfg.StaleAfter <= 0 {
		return
	}
	n, err := p.jobs.ResetStale(ctx, time.Now().Add(-p.cfg.StaleAfter))
	if err != nil {
		p.logger.Error().Err(err).Msg("stale-job sweep failed")
		return
	}
	if n > 0 {
		metrics.StaleSwept(n)
		p.logger.Warn().Int("count", n).Msg("returned stale jobs to the queue")
	}
}
