package repository

import (
	"context"

	"paperhulp/internal/domain/model"
)

type ActionItemRepository interface {
	// ReplaceForDocument deletes every existing item for the document and
	// inserts the given set; callers run it inside the persistence
	// transaction so the swap is atomic.
	ReplaceForDocument(ctx context.Context, tx Tx, documentID string, items []*model.ActionItem) error
	DeleteForDocument(ctx context.Context, tx Tx, documentID string) error
	ListByDocument(ctx context.Context, tx Tx, documentID string, status string) ([]*model.ActionItem, error)
	// Update patches status and/or notes on one item owned by userID.
	Update(ctx context.Context, tx Tx, itemID, userID string, status *model.ActionStatus, notes *string) (*model.ActionItem, error)
}
