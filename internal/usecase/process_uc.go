package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"paperhulp/internal/domain"
	"paperhulp/internal/domain/model"
	"paperhulp/internal/domain/ports/adapter"
	"paperhulp/internal/domain/ports/repository"
	"paperhulp/internal/infra/i18n"
	"paperhulp/internal/infra/logging"
	"paperhulp/internal/infra/metrics"
)

// TextExtractor turns stored file bytes into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte, mimetype, language string) (string, error)
}

// StructuredExtractor turns raw text into a validated extraction result.
type StructuredExtractor interface {
	Extract(ctx context.Context, text, lang string) (*model.ExtractionResult, error)
}

// Compile-time check
var _ ProcessUseCase = (*processUC)(nil)

type ProcessUseCase interface {
	// ProcessJob drives one job through claim, extraction and persistence.
	// A lost claim race returns domain.ErrClaimConflict and does nothing else.
	ProcessJob(ctx context.Context, jobID string) error
	// ProcessDocument is the immediate-mode entry point used right after
	// ingestion and by manual retry.
	ProcessDocument(ctx context.Context, documentID string) error
	// ProcessNext picks the oldest pending job, if any, and processes it.
	// Returns domain.ErrNotFound when the queue is empty.
	ProcessNext(ctx context.Context) error
}

type processUC struct {
	jobs      repository.JobRepository
	docs      repository.DocumentRepository
	items     repository.ActionItemRepository
	tm        repository.TransactionManager
	storage   adapter.FileStorage
	text      TextExtractor
	extractor StructuredExtractor
	notifier  adapter.Notifier
	bundle    *i18n.Bundle
	logger    *zerolog.Logger
}

func NewProcessUseCase(
	jobs repository.JobRepository,
	docs repository.DocumentRepository,
	items repository.ActionItemRepository,
	tm repository.TransactionManager,
	storage adapter.FileStorage,
	text TextExtractor,
	extractor StructuredExtractor,
	notifier adapter.Notifier,
	bundle *i18n.Bundle,
	logger *zerolog.Logger,
) *processUC {
	return &processUC{
		jobs:      jobs,
		docs:      docs,
		items:     items,
		tm:        tm,
		storage:   storage,
		text:      text,
		extractor: extractor,
		notifier:  notifier,
		bundle:    bundle,
		logger:    logger,
	}
}

func (u *processUC) ProcessNext(ctx context.Context) error {
	job, err := u.jobs.NextPending(ctx)
	if err != nil {
		return err
	}
	return u.ProcessJob(ctx, job.ID)
}

func (u *processUC) ProcessDocument(ctx context.Context, documentID string) error {
	job, err := u.jobs.FindByDocumentID(ctx, nil, documentID)
	if err != nil {
		return err
	}
	return u.ProcessJob(ctx, job.ID)
}

func (u *processUC) ProcessJob(ctx context.Context, jobID string) error {
	ctx = logging.WithJobID(ctx, jobID)
	logger := logging.With(ctx, u.logger)
	start := time.Now()

	// claim is the only mutual exclusion: losers stop here
	if err := u.jobs.Claim(ctx, jobID); err != nil {
		if errors.Is(err, domain.ErrClaimConflict) {
			metrics.ClaimConflict()
			logger.Debug().Msg("job already claimed by another worker")
		}
		return err
	}

	job, err := u.jobs.FindByID(ctx, nil, jobID)
	if err != nil {
		return u.fail(ctx, jobID, "", "", start, err)
	}
	doc, err := u.docs.FindByID(ctx, nil, job.DocumentID)
	if err != nil {
		return u.fail(ctx, jobID, "", "", start, err)
	}
	ctx = logging.WithDocumentID(ctx, doc.ID)
	logger = logging.With(ctx, u.logger)

	data, err := u.storage.Read(ctx, doc.FilePath)
	if err != nil {
		return u.fail(ctx, jobID, doc.UserID, doc.ID, start, fmt.Errorf("read stored file: %w", err))
	}

	extractedText, err := u.text.Extract(ctx, data, doc.Mimetype, doc.Language)
	if err != nil {
		return u.fail(ctx, jobID, doc.UserID, doc.ID, start, err)
	}

	// the generative step always gets non-empty input
	input := extractedText
	if input == "" {
		input = u.bundle.For(doc.Language).T("no_text_found")
	}

	res, err := u.extractor.Extract(ctx, input, doc.Language)
	if err != nil {
		return u.fail(ctx, jobID, doc.UserID, doc.ID, start, err)
	}

	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := u.docs.ApplyExtraction(ctx, tx, doc.ID, extractedText, res); err != nil {
			return err
		}
		if err := u.items.ReplaceForDocument(ctx, tx, doc.ID, u.buildItems(doc, res)); err != nil {
			return err
		}
		return u.jobs.MarkDone(ctx, tx, jobID)
	})
	if err != nil {
		// an uncommitted transaction leaves the job PROCESSING; a stale
		// sweep or manual retry recovers it, so no FAILED transition here
		metrics.JobFinished("failed", int(time.Since(start).Milliseconds()))
		logger.Error().Err(err).Msg("persistence transaction failed")
		return err
	}

	metrics.JobFinished("done", int(time.Since(start).Milliseconds()))
	logger.Info().Str("doc_type", string(res.DocType)).Msg("document processed")
	_ = u.notifier.NotifyProcessed(ctx, doc.UserID, doc.ID, res.Summary)
	return nil
}

// buildItems maps proposed actions to action items, or produces the single
// fallback item when the extraction proposed none.
func (u *processUC) buildItems(doc *model.Document, res *model.ExtractionResult) []*model.ActionItem {
	if len(res.Actions) > 0 {
		items := make([]*model.ActionItem, 0, len(res.Actions))
		for _, a := range res.Actions {
			items = append(items, model.NewActionItem(doc.ID, a.Title, a.Description, model.DateFromISO(a.Deadline)))
		}
		return items
	}
	tr := u.bundle.For(doc.Language)
	fallback := model.NewActionItem(doc.ID,
		tr.T("fallback_action_title"),
		tr.T("fallback_action_description"),
		res.DeadlineDate())
	return []*model.ActionItem{fallback}
}

// fail converts a fatal pipeline error into a FAILED job with a stored
// message, then surfaces the original error to the caller.
func (u *processUC) fail(ctx context.Context, jobID, userID, documentID string, start time.Time, cause error) error {
	logger := logging.With(ctx, u.logger)
	logger.Error().Err(cause).Msg("job processing failed")

	if err := u.jobs.MarkFailed(ctx, jobID, cause.Error()); err != nil {
		logger.Error().Err(err).Msg("could not mark job failed")
	}
	metrics.JobFinished("failed", int(time.Since(start).Milliseconds()))
	if userID != "" {
		_ = u.notifier.NotifyFailed(ctx, userID, documentID, cause.Error())
	}
	return cause
}
