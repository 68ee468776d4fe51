package repository

import (
	"context"

	"paperhulp/internal/domain/model"
)

// DocumentFilter narrows ListByUser. Zero values mean "no constraint".
type DocumentFilter struct {
	DocType      string // one of the closed taxonomy values
	ActionStatus string // "OPEN" or "DONE"; filters returned action items
	Query        string // case-insensitive match on sender/summary/filename/text
	Limit        int    // defaults to 50
}

type DocumentRepository interface {
	Save(ctx context.Context, tx Tx, doc *model.Document) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Document, error)
	// FindByIDForUser scopes the lookup to an owner; used by every API read.
	FindByIDForUser(ctx context.Context, tx Tx, id, userID string) (*model.Document, error)
	ListByUser(ctx context.Context, tx Tx, userID string, f DocumentFilter) ([]*model.Document, error)
	// ApplyExtraction sets all derived fields (plus raw text) in one statement.
	ApplyExtraction(ctx context.Context, tx Tx, id string, text string, res *model.ExtractionResult) error
	// ClearExtraction nulls every derived field; the retry reset.
	ClearExtraction(ctx context.Context, tx Tx, id string) error
}
