package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"paperhulp/internal/domain"
	"paperhulp/internal/domain/model"
	"paperhulp/internal/domain/ports/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Ensure documentRepo implements repository.DocumentRepository
var _ repository.DocumentRepository = (*documentRepo)(nil)

type documentRepo struct {
	pool *pgxpool.Pool
}

func NewDocumentRepo(pool *pgxpool.Pool) *documentRepo {
	return &documentRepo{pool: pool}
}

const documentColumns = `id, user_id, file_path, original_filename, mimetype, language,
  extracted_text, doc_type, sender, amount, deadline, summary, confidence, created_at, updated_at`

func (r *documentRepo) Save(ctx context.Context, tx repository.Tx, doc *model.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	doc.UpdatedAt = time.Now()

	const q = `
INSERT INTO documents (id, user_id, file_path, original_filename, mimetype, language,
  extracted_text, doc_type, sender, amount, deadline, summary, confidence, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
ON CONFLICT (id) DO UPDATE SET
  file_path = EXCLUDED.file_path,
  original_filename = EXCLUDED.original_filename,
  mimetype = EXCLUDED.mimetype,
  language = EXCLUDED.language,
  extracted_text = EXCLUDED.extracted_text,
  doc_type = EXCLUDED.doc_type,
  sender = EXCLUDED.sender,
  amount = EXCLUDED.amount,
  deadline = EXCLUDED.deadline,
  summary = EXCLUDED.summary,
  confidence = EXCLUDED.confidence,
  updated_at = EXCLUDED.updated_at;`

	_, err := execSQL(ctx, r.pool, tx, q,
		doc.ID, doc.UserID, doc.FilePath, doc.OriginalFilename, doc.Mimetype, doc.Language,
		doc.ExtractedText, doc.DocType, doc.Sender, doc.Amount, doc.Deadline, doc.Summary,
		doc.Confidence, doc.CreatedAt, doc.UpdatedAt)
	return err
}

func (r *documentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Document, error) {
	q := fmt.Sprintf(`SELECT %s FROM documents WHERE id = $1;`, documentColumns)
	return r.queryOne(ctx, tx, q, id)
}

func (r *documentRepo) FindByIDForUser(ctx context.Context, tx repository.Tx, id, userID string) (*model.Document, error) {
	q := fmt.Sprintf(`SELECT %s FROM documents WHERE id = $1 AND user_id = $2;`, documentColumns)
	return r.queryOne(ctx, tx, q, id, userID)
}

func (r *documentRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, f repository.DocumentFilter) ([]*model.Document, error) {
	conds := []string{"user_id = $1"}
	args := []interface{}{userID}

	if f.DocType != "" {
		args = append(args, f.DocType)
		conds = append(conds, fmt.Sprintf("doc_type = $%d", len(args)))
	}
	if f.ActionStatus != "" {
		args = append(args, f.ActionStatus)
		conds = append(conds, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM action_items a WHERE a.document_id = documents.id AND a.status = $%d)", len(args)))
	}
	if f.Query != "" {
		args = append(args, "%"+f.Query+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(sender ILIKE $%d OR summary ILIKE $%d OR original_filename ILIKE $%d OR extracted_text ILIKE $%d)", n, n, n, n))
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit)

	q := fmt.Sprintf(`SELECT %s FROM documents WHERE %s ORDER BY created_at DESC LIMIT $%d;`,
		documentColumns, strings.Join(conds, " AND "), len(args))

	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*model.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (r *documentRepo) ApplyExtraction(ctx context.Context, tx repository.Tx, id string, text string, res *model.ExtractionResult) error {
	const q = `
UPDATE documents SET
  extracted_text = $2,
  doc_type = $3,
  sender = $4,
  amount = $5,
  deadline = $6,
  summary = $7,
  confidence = $8,
  updated_at = now()
WHERE id = $1;`

	tag, err := execSQL(ctx, r.pool, tx, q,
		id, text, res.DocType, res.Sender, res.AmountEUR, res.DeadlineDate(), res.Summary, res.RoundedConfidence())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *documentRepo) ClearExtraction(ctx context.Context, tx repository.Tx, id string) error {
	const q = `
UPDATE documents SET
  extracted_text = NULL,
  doc_type = NULL,
  sender = NULL,
  amount = NULL,
  deadline = NULL,
  summary = NULL,
  confidence = NULL,
  updated_at = now()
WHERE id = $1;`

	tag, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *documentRepo) queryOne(ctx context.Context, tx repository.Tx, q string, args ...interface{}) (*model.Document, error) {
	row, err := pickRow(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, err
	}
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return doc, nil
}

func scanDocument(row pgx.Row) (*model.Document, error) {
	var doc model.Document
	err := row.Scan(
		&doc.ID, &doc.UserID, &doc.FilePath, &doc.OriginalFilename, &doc.Mimetype, &doc.Language,
		&doc.ExtractedText, &doc.DocType, &doc.Sender, &doc.Amount, &doc.Deadline, &doc.Summary,
		&doc.Confidence, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}
