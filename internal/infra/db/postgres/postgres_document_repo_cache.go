package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"paperhulp/internal/domain/model"
	"paperhulp/internal/domain/ports/repository"
	"paperhulp/internal/infra/metrics"
	red "paperhulp/internal/infra/redis"
)

var _ repository.DocumentRepository = (*documentRepoCacheDecorator)(nil)

// documentRepoCacheDecorator caches single-document reads. Every write path,
// including the extraction apply and the retry reset, invalidates the entry
// so API reads never serve stale derived fields.
type documentRepoCacheDecorator struct {
	inner repository.DocumentRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewDocumentRepoCacheDecorator(inner repository.DocumentRepository, cache red.RedisClient, ttl time.Duration) repository.DocumentRepository {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &documentRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl}
}

func docKey(id string) string { return fmt.Sprintf("document:id:%s", id) }

func (d *documentRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, doc *model.Document) error {
	_ = d.cache.Del(ctx, docKey(doc.ID))
	return d.inner.Save(ctx, tx, doc)
}

func (d *documentRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Document, error) {
	if doc, ok := d.lookup(ctx, id); ok {
		return doc, nil
	}
	doc, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	d.store(ctx, doc)
	return doc, nil
}

func (d *documentRepoCacheDecorator) FindByIDForUser(ctx context.Context, tx repository.Tx, id, userID string) (*model.Document, error) {
	if doc, ok := d.lookup(ctx, id); ok {
		// cached entries are keyed by id only, so re-check ownership
		if doc.UserID == userID {
			return doc, nil
		}
	}
	doc, err := d.inner.FindByIDForUser(ctx, tx, id, userID)
	if err != nil {
		return nil, err
	}
	d.store(ctx, doc)
	return doc, nil
}

// ListByUser is filter-heavy and bounded; it always goes to the database.
func (d *documentRepoCacheDecorator) ListByUser(ctx context.Context, tx repository.Tx, userID string, f repository.DocumentFilter) ([]*model.Document, error) {
	return d.inner.ListByUser(ctx, tx, userID, f)
}

func (d *documentRepoCacheDecorator) ApplyExtraction(ctx context.Context, tx repository.Tx, id string, text string, res *model.ExtractionResult) error {
	_ = d.cache.Del(ctx, docKey(id))
	return d.inner.ApplyExtraction(ctx, tx, id, text, res)
}

func (d *documentRepoCacheDecorator) ClearExtraction(ctx context.Context, tx repository.Tx, id string) error {
	_ = d.cache.Del(ctx, docKey(id))
	return d.inner.ClearExtraction(ctx, tx, id)
}

func (d *documentRepoCacheDecorator) lookup(ctx context.Context, id string) (*model.Document, bool) {
	val, err := d.cache.Get(ctx, docKey(id))
	if err != nil {
		metrics.IncCacheRequest("document", "miss")
		return nil, false
	}
	var doc model.Document
	if json.Unmarshal([]byte(val), &doc) != nil {
		metrics.IncCacheRequest("document", "miss")
		return nil, false
	}
	metrics.IncCacheRequest("document", "hit")
	return &doc, true
}

func (d *documentRepoCacheDecorator) store(ctx context.Context, doc *model.Document) {
	if doc == nil {
		return
	}
	bytes, err := json.Marshal(doc)
	if err != nil {
		return
	}
	_ = d.cache.Set(ctx, docKey(doc.ID), bytes, d.ttl)
}
