package usecase

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"paperhulp/internal/domain"
	"paperhulp/internal/domain/model"
	"paperhulp/internal/domain/ports/repository"
	"paperhulp/internal/infra/logging"
	"paperhulp/internal/infra/metrics"
)

// Compile-time check
var _ RetryUseCase = (*retryUC)(nil)

type RetryUseCase interface {
	// Retry resets a document/job pair so it re-enters the pipeline.
	// Allowed for any job status except DONE; a completed document would
	// lose user edits for no benefit.
	Retry(ctx context.Context, userID, documentID string) error
}

type retryUC struct {
	jobs      repository.JobRepository
	docs      repository.DocumentRepository
	items     repository.ActionItemRepository
	tm        repository.TransactionManager
	processor ProcessUseCase // optional immediate trigger
	logger    *zerolog.Logger
}

// NewRetryUseCase builds the retry controller. Pass a nil processor to leave
// reprocessing to the polling worker.
func NewRetryUseCase(
	jobs repository.JobRepository,
	docs repository.DocumentRepository,
	items repository.ActionItemRepository,
	tm repository.TransactionManager,
	processor ProcessUseCase,
	logger *zerolog.Logger,
) *retryUC {
	return &retryUC{
		jobs:      jobs,
		docs:      docs,
		items:     items,
		tm:        tm,
		processor: processor,
		logger:    logger,
	}
}

func (u *retryUC) Retry(ctx context.Context, userID, documentID string) error {
	ctx = logging.WithDocumentID(ctx, documentID)
	logger := logging.With(ctx, u.logger)

	doc, err := u.docs.FindByIDForUser(ctx, nil, documentID, userID)
	if err != nil {
		return err
	}
	job, err := u.jobs.FindByDocumentID(ctx, nil, doc.ID)
	if err != nil {
		return err
	}
	if job.Status == model.JobStatusDone {
		return domain.ErrRetryNotAllowed
	}

	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := u.docs.ClearExtraction(ctx, tx, doc.ID); err != nil {
			return err
		}
		if err := u.items.DeleteForDocument(ctx, tx, doc.ID); err != nil {
			return err
		}
		return u.jobs.Reset(ctx, tx, job.ID)
	})
	if err != nil {
		return err
	}

	metrics.JobRetried()
	logger.Info().Str("job_id", job.ID).Msg("document reset for reprocessing")

	if u.processor != nil {
		// fire and forget; the claim keeps this safe alongside the poller
		go func() {
			bg := logging.WithDocumentID(context.Background(), documentID)
			if err := u.processor.ProcessJob(bg, job.ID); err != nil {
				logging.With(bg, u.logger).Debug().Err(err).Msg("immediate reprocess did not complete")
			}
		}()
	}
	return nil
}
