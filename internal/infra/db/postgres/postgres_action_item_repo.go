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

// Ensure actionItemRepo implements repository.ActionItemRepository
var _ repository.ActionItemRepository = (*actionItemRepo)(nil)

type actionItemRepo struct {
	pool *pgxpool.Pool
}

func NewActionItemRepo(pool *pgxpool.Pool) *actionItemRepo {
	return &actionItemRepo{pool: pool}
}

const actionItemColumns = `id, document_id, title, description, deadline, status, notes, created_at, updated_at`

// ReplaceForDocument swaps the full item set for a document. Callers run it
// inside the persistence transaction so readers never observe a partial set.
func (r *actionItemRepo) ReplaceForDocument(ctx context.Context, tx repository.Tx, documentID string, items []*model.ActionItem) error {
	if err := r.DeleteForDocument(ctx, tx, documentID); err != nil {
		return err
	}
	for _, item := range items {
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		item.DocumentID = documentID
		item.UpdatedAt = time.Now()

		const q = `
INSERT INTO action_items (id, document_id, title, description, deadline, status, notes, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9);`

		if _, err := execSQL(ctx, r.pool, tx, q,
			item.ID, item.DocumentID, item.Title, item.Description, item.Deadline,
			item.Status, item.Notes, item.CreatedAt, item.UpdatedAt); err != nil {
			return err
		}
	}
	return nil
}

func (r *actionItemRepo) DeleteForDocument(ctx context.Context, tx repository.Tx, documentID string) error {
	_, err := execSQL(ctx, r.pool, tx, `DELETE FROM action_items WHERE document_id = $1;`, documentID)
	return err
}

func (r *actionItemRepo) ListByDocument(ctx context.Context, tx repository.Tx, documentID string, status string) ([]*model.ActionItem, error) {
	conds := []string{"document_id = $1"}
	args := []interface{}{documentID}
	if status != "" {
		args = append(args, status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}

	q := fmt.Sprintf(`SELECT %s FROM action_items WHERE %s ORDER BY deadline NULLS LAST, created_at;`,
		actionItemColumns, strings.Join(conds, " AND "))

	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*model.ActionItem
	for rows.Next() {
		item, err := scanActionItem(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Update patches status and/or notes on one item, scoped to the document
// owner so users cannot touch each other's tasks.
func (r *actionItemRepo) Update(ctx context.Context, tx repository.Tx, itemID, userID string, status *model.ActionStatus, notes *string) (*model.ActionItem, error) {
	sets := []string{"updated_at = now()"}
	args := []interface{}{itemID, userID}
	if status != nil {
		args = append(args, *status)
		sets = append(sets, fmt.Sprintf("status = $%d", len(args)))
	}
	if notes != nil {
		args = append(args, *notes)
		sets = append(sets, fmt.Sprintf("notes = $%d", len(args)))
	}

	q := fmt.Sprintf(`
UPDATE action_items ai
   SET %s
  FROM documents d
 WHERE ai.id = $1 AND ai.document_id = d.id AND d.user_id = $2
RETURNING ai.id, ai.document_id, ai.title, ai.description, ai.deadline, ai.status, ai.notes, ai.created_at, ai.updated_at;`,
		strings.Join(sets, ", "))

	row, err := pickRow(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, err
	}
	item, err := scanActionItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return item, nil
}

func scanActionItem(row pgx.Row) (*model.ActionItem, error) {
	var item model.ActionItem
	err := row.Scan(
		&item.ID, &item.DocumentID, &item.Title, &item.Description, &item.Deadline,
		&item.Status, &item.Notes, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}
