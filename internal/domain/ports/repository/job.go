package repository

import (
	"context"
	"time"

	"paperhulp/internal/domain/model"
)

type JobRepository interface {
	Save(ctx context.Context, tx Tx, job *model.ProcessingJob) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.ProcessingJob, error)
	FindByDocumentID(ctx context.Context, tx Tx, documentID string) (*model.ProcessingJob, error)

	// Claim transitions PENDING→PROCESSING and clears any stale error, as a
	// single conditional UPDATE. Under concurrent attempts exactly one caller
	// gets a nil error; every other caller gets domain.ErrClaimConflict and
	// must not touch the job.
	Claim(ctx context.Context, jobID string) error

	// NextPending returns the oldest PENDING job by creation order, or
	// domain.ErrNotFound when the queue is empty. It does not claim.
	NextPending(ctx context.Context) (*model.ProcessingJob, error)

	// MarkDone and MarkFailed finish an attempt. MarkDone participates in the
	// persistence transaction; MarkFailed runs outside any transaction.
	MarkDone(ctx context.Context, tx Tx, jobID string) error
	MarkFailed(ctx context.Context, jobID string, message string) error

	// Reset returns a job to PENDING with its error cleared (retry path).
	Reset(ctx context.Context, tx Tx, jobID string) error

	// ResetStale returns PROCESSING jobs untouched since the cutoff to
	// PENDING and reports how many were swept.
	ResetStale(ctx context.Context, olderThan time.Time) (int, error)

	// ListByUser returns the caller's jobs, most recently updated first.
	ListByUser(ctx context.Context, tx Tx, userID string, limit int) ([]*model.ProcessingJob, error)
}
