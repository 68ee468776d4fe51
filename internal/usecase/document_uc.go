package usecase

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"paperhulp/internal/domain/model"
	"paperhulp/internal/domain/ports/adapter"
	"paperhulp/internal/domain/ports/repository"
	"paperhulp/internal/infra/logging"
	"paperhulp/internal/infra/metrics"
)

// Compile-time check
var _ DocumentUseCase = (*documentUC)(nil)

type DocumentUseCase interface {
	// Upload stores the file, creates the document with its PENDING job and
	// triggers immediate processing when a processor is wired.
	Upload(ctx context.Context, userID, filename, mimetype, language string, data []byte) (*model.Document, *model.ProcessingJob, error)
	// Get returns one owned document with its action items and job.
	Get(ctx context.Context, userID, documentID string) (*model.Document, []*model.ActionItem, *model.ProcessingJob, error)
	List(ctx context.Context, userID string, f repository.DocumentFilter) ([]*model.Document, error)
	ListJobs(ctx context.Context, userID string, limit int) ([]*model.ProcessingJob, error)
	// UpdateActionItem patches status and/or notes on one owned item.
	UpdateActionItem(ctx context.Context, userID, itemID string, status *model.ActionStatus, notes *string) (*model.ActionItem, error)
}

type documentUC struct {
	docs      repository.DocumentRepository
	jobs      repository.JobRepository
	items     repository.ActionItemRepository
	tm        repository.TransactionManager
	storage   adapter.FileStorage
	processor ProcessUseCase // optional immediate trigger
	logger    *zerolog.Logger
}

func NewDocumentUseCase(
	docs repository.DocumentRepository,
	jobs repository.JobRepository,
	items repository.ActionItemRepository,
	tm repository.TransactionManager,
	storage adapter.FileStorage,
	processor ProcessUseCase,
	logger *zerolog.Logger,
) *documentUC {
	return &documentUC{
		docs:      docs,
		jobs:      jobs,
		items:     items,
		tm:        tm,
		storage:   storage,
		processor: processor,
		logger:    logger,
	}
}

var supportedLanguages = map[string]bool{"nl": true, "ar": true, "en": true}

func (u *documentUC) Upload(ctx context.Context, userID, filename, mimetype, language string, data []byte) (*model.Document, *model.ProcessingJob, error) {
	if !supportedLanguages[language] {
		language = "nl"
	}

	doc := model.NewDocument(userID, "", filename, mimetype, language)
	stored, err := u.storage.Write(ctx, userID, doc.ID, filename, mimetype, data)
	if err != nil {
		return nil, nil, err
	}
	doc.FilePath = stored.Path

	job := model.NewProcessingJob(doc.ID)
	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := u.docs.Save(ctx, tx, doc); err != nil {
			return err
		}
		return u.jobs.Save(ctx, tx, job)
	})
	if err != nil {
		return nil, nil, err
	}

	metrics.DocumentUploaded()
	logging.With(logging.WithDocumentID(ctx, doc.ID), u.logger).
		Info().Str("mimetype", mimetype).Str("language", language).Msg("document ingested")

	if u.processor != nil {
		go func() {
			bg := logging.WithDocumentID(context.Background(), doc.ID)
			if err := u.processor.ProcessJob(bg, job.ID); err != nil {
				logging.With(bg, u.logger).Debug().Err(err).Msg("immediate processing did not complete")
			}
		}()
	}
	return doc, job, nil
}

func (u *documentUC) Get(ctx context.Context, userID, documentID string) (*model.Document, []*model.ActionItem, *model.ProcessingJob, error) {
	doc, err := u.docs.FindByIDForUser(ctx, nil, documentID, userID)
	if err != nil {
		return nil, nil, nil, err
	}
	items, err := u.items.ListByDocument(ctx, nil, doc.ID, "")
	if err != nil {
		return nil, nil, nil, err
	}
	job, err := u.jobs.FindByDocumentID(ctx, nil, doc.ID)
	if err != nil {
		return nil, nil, nil, err
	}
	return doc, items, job, nil
}

func (u *documentUC) List(ctx context.Context, userID string, f repository.DocumentFilter) ([]*model.Document, error) {
	return u.docs.ListByUser(ctx, nil, userID, f)
}

func (u *documentUC) ListJobs(ctx context.Context, userID string, limit int) ([]*model.ProcessingJob, error) {
	return u.jobs.ListByUser(ctx, nil, userID, limit)
}

func (u *documentUC) UpdateActionItem(ctx context.Context, userID, itemID string, status *model.ActionStatus, notes *string) (*model.ActionItem, error) {
	return u.items.Update(ctx, nil, itemID, userID, status, notes)
}
