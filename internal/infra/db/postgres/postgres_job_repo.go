package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"paperhulp/internal/domain"
	"paperhulp/internal/domain/model"
	"paperhulp/internal/domain/ports/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Ensure jobRepo implements repository.JobRepository
var _ repository.JobRepository = (*jobRepo)(nil)

type jobRepo struct {
	pool *pgxpool.Pool
}

func NewJobRepo(pool *pgxpool.Pool) *jobRepo {
	return &jobRepo{pool: pool}
}

const jobColumns = `id, document_id, status, error, created_at, updated_at`

func (r *jobRepo) Save(ctx context.Context, tx repository.Tx, job *model.ProcessingJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	job.UpdatedAt = time.Now()

	const q = `
INSERT INTO processing_jobs (id, document_id, status, error, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (id) DO UPDATE SET
  status = EXCLUDED.status,
  error = EXCLUDED.error,
  updated_at = EXCLUDED.updated_at;`

	_, err := execSQL(ctx, r.pool, tx, q,
		job.ID, job.DocumentID, job.Status, job.Error, job.CreatedAt, job.UpdatedAt)
	return err
}

func (r *jobRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.ProcessingJob, error) {
	q := fmt.Sprintf(`SELECT %s FROM processing_jobs WHERE id = $1;`, jobColumns)
	return r.queryOne(ctx, tx, q, id)
}

func (r *jobRepo) FindByDocumentID(ctx context.Context, tx repository.Tx, documentID string) (*model.ProcessingJob, error) {
	q := fmt.Sprintf(`SELECT %s FROM processing_jobs WHERE document_id = $1;`, jobColumns)
	return r.queryOne(ctx, tx, q, documentID)
}

// Claim transitions PENDING→PROCESSING as one conditional UPDATE. The WHERE
// clause is the entire mutual-exclusion mechanism: under concurrent attempts
// only one statement matches the row.
func (r *jobRepo) Claim(ctx context.Context, jobID string) error {
	const q = `
UPDATE processing_jobs
   SET status = 'PROCESSING', error = NULL, updated_at = now()
 WHERE id = $1 AND status = 'PENDING';`

	tag, err := execSQL(ctx, r.pool, nil, q, jobID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrClaimConflict
	}
	return nil
}

func (r *jobRepo) NextPending(ctx context.Context) (*model.ProcessingJob, error) {
	q := fmt.Sprintf(`
SELECT %s FROM processing_jobs
 WHERE status = 'PENDING'
 ORDER BY created_at
 LIMIT 1;`, jobColumns)
	return r.queryOne(ctx, nil, q)
}

func (r *jobRepo) MarkDone(ctx context.Context, tx repository.Tx, jobID string) error {
	const q = `
UPDATE processing_jobs
   SET status = 'DONE', error = NULL, updated_at = now()
 WHERE id = $1;`

	tag, err := execSQL(ctx, r.pool, tx, q, jobID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *jobRepo) MarkFailed(ctx context.Context, jobID string, message string) error {
	const q = `
UPDATE processing_jobs
   SET status = 'FAILED', error = $2, updated_at = now()
 WHERE id = $1;`

	tag, err := execSQL(ctx, r.pool, nil, q, jobID, message)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *jobRepo) Reset(ctx context.Context, tx repository.Tx, jobID string) error {
	const q = `
UPDATE processing_jobs
   SET status = 'PENDING', error = NULL, updated_at = now()
 WHERE id = $1;`

	tag, err := execSQL(ctx, r.pool, tx, q, jobID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *jobRepo) ResetStale(ctx context.Context, olderThan time.Time) (int, error) {
	const q = `
UPDATE processing_jobs
   SET status = 'PENDING', error = NULL, updated_at = now()
 WHERE status = 'PROCESSING' AND updated_at < $1;`

	tag, err := execSQL(ctx, r.pool, nil, q, olderThan)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *jobRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, limit int) ([]*model.ProcessingJob, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `
SELECT j.id, j.document_id, j.status, j.error, j.created_at, j.updated_at
  FROM processing_jobs j
  JOIN documents d ON d.id = j.document_id
 WHERE d.user_id = $1
 ORDER BY j.updated_at DESC
 LIMIT $2;`

	rows, err := queryRows(ctx, r.pool, tx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*model.ProcessingJob
	for rows.Next() {
		var job model.ProcessingJob
		if err := rows.Scan(&job.ID, &job.DocumentID, &job.Status, &job.Error, &job.CreatedAt, &job.UpdatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		jobs = append(jobs, &job)
	}
	return jobs, rows.Err()
}

func (r *jobRepo) queryOne(ctx context.Context, tx repository.Tx, q string, args ...interface{}) (*model.ProcessingJob, error) {
	row, err := pickRow(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, err
	}
	var job model.ProcessingJob
	err = row.Scan(&job.ID, &job.DocumentID, &job.Status, &job.Error, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &job, nil
}
