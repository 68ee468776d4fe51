//go:build !integration

package usecase_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"paperhulp/internal/domain"
	"paperhulp/internal/domain/model"
	"paperhulp/internal/domain/ports/adapter"
	"paperhulp/internal/domain/ports/repository"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// memDocumentRepo is a small in-memory implementation used by unit tests.
type memDocumentRepo struct {
	mu       sync.RWMutex
	store    map[string]*model.Document
	applyErr error // used by tests to simulate persistence failures
}

func newMemDocumentRepo() *memDocumentRepo {
	return &memDocumentRepo{store: make(map[string]*model.Document)}
}

func (m *memDocumentRepo) Save(ctx context.Context, tx repository.Tx, doc *model.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *doc
	m.store[doc.ID] = &cp
	return nil
}

func (m *memDocumentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *memDocumentRepo) FindByIDForUser(ctx context.Context, tx repository.Tx, id, userID string) (*model.Document, error) {
	d, err := m.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if d.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return d, nil
}

func (m *memDocumentRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, f repository.DocumentFilter) ([]*model.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Document
	for _, d := range m.store {
		if d.UserID != userID {
			continue
		}
		if f.DocType != "" && (d.DocType == nil || string(*d.DocType) != f.DocType) {
			continue
		}
		if f.Query != "" {
			q := strings.ToLower(f.Query)
			hay := strings.ToLower(d.OriginalFilename)
			if d.Sender != nil {
				hay += " " + strings.ToLower(*d.Sender)
			}
			if d.Summary != nil {
				hay += " " + strings.ToLower(*d.Summary)
			}
			if !strings.Contains(hay, q) {
				continue
			}
		}
		cp := *d
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memDocumentRepo) ApplyExtraction(ctx context.Context, tx repository.Tx, id string, text string, res *model.ExtractionResult) error {
	if m.applyErr != nil {
		return m.applyErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	t := text
	conf := res.RoundedConfidence()
	docType := res.DocType
	d.ExtractedText = &t
	d.DocType = &docType
	d.Sender = res.Sender
	d.Amount = res.AmountEUR
	d.Deadline = res.DeadlineDate()
	d.Summary = &res.Summary
	d.Confidence = &conf
	d.UpdatedAt = time.Now()
	return nil
}

func (m *memDocumentRepo) ClearExtraction(ctx context.Context, tx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	d.ExtractedText = nil
	d.DocType = nil
	d.Sender = nil
	d.Amount = nil
	d.Deadline = nil
	d.Summary = nil
	d.Confidence = nil
	d.UpdatedAt = time.Now()
	return nil
}

// memJobRepo keeps jobs in memory; Claim performs the same conditional
// transition the SQL implementation does.
type memJobRepo struct {
	mu      sync.Mutex
	store   map[string]*model.ProcessingJob
	docs    *memDocumentRepo
	doneErr error // injected MarkDone failure
}

func newMemJobRepo(docs *memDocumentRepo) *memJobRepo {
	return &memJobRepo{store: make(map[string]*model.ProcessingJob), docs: docs}
}

func (m *memJobRepo) Save(ctx context.Context, tx repository.Tx, job *model.ProcessingJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *job
	m.store[job.ID] = &cp
	return nil
}

func (m *memJobRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.ProcessingJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (m *memJobRepo) FindByDocumentID(ctx context.Context, tx repository.Tx, documentID string) (*model.ProcessingJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, j := range m.store {
		if j.DocumentID == documentID {
			cp := *j
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memJobRepo) Claim(ctx context.Context, jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.store[jobID]
	if !ok || j.Status != model.JobStatusPending {
		return domain.ErrClaimConflict
	}
	j.Status = model.JobStatusProcessing
	j.Error = nil
	j.UpdatedAt = time.Now()
	return nil
}

func (m *memJobRepo) NextPending(ctx context.Context) (*model.ProcessingJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var oldest *model.ProcessingJob
	for _, j := range m.store {
		if j.Status != model.JobStatusPending {
			continue
		}
		if oldest == nil || j.CreatedAt.Before(oldest.CreatedAt) {
			oldest = j
		}
	}
	if oldest == nil {
		return nil, domain.ErrNotFound
	}
	cp := *oldest
	return &cp, nil
}

func (m *memJobRepo) MarkDone(ctx context.Context, tx repository.Tx, jobID string) error {
	if m.doneErr != nil {
		return m.doneErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.store[jobID]
	if !ok {
		return domain.ErrNotFound
	}
	j.Status = model.JobStatusDone
	j.Error = nil
	j.UpdatedAt = time.Now()
	return nil
}

func (m *memJobRepo) MarkFailed(ctx context.Context, jobID string, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.store[jobID]
	if !ok {
		return domain.ErrNotFound
	}
	j.Status = model.JobStatusFailed
	j.Error = &message
	j.UpdatedAt = time.Now()
	return nil
}

func (m *memJobRepo) Reset(ctx context.Context, tx repository.Tx, jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.store[jobID]
	if !ok {
		return domain.ErrNotFound
	}
	j.Status = model.JobStatusPending
	j.Error = nil
	j.UpdatedAt = time.Now()
	return nil
}

func (m *memJobRepo) ResetStale(ctx context.Context, olderThan time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, j := range m.store {
		if j.Status == model.JobStatusProcessing && j.UpdatedAt.Before(olderThan) {
			j.Status = model.JobStatusPending
			j.Error = nil
			j.UpdatedAt = time.Now()
			n++
		}
	}
	return n, nil
}

func (m *memJobRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, limit int) ([]*model.ProcessingJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.ProcessingJob
	for _, j := range m.store {
		if doc, err := m.docs.FindByID(ctx, nil, j.DocumentID); err == nil && doc.UserID == userID {
			cp := *j
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// memActionItemRepo stores items per document.
type memActionItemRepo struct {
	mu         sync.Mutex
	store      map[string][]*model.ActionItem // by document id
	replaceErr error
}

func newMemActionItemRepo() *memActionItemRepo {
	return &memActionItemRepo{store: make(map[string][]*model.ActionItem)}
}

func (m *memActionItemRepo) ReplaceForDocument(ctx context.Context, tx repository.Tx, documentID string, items []*model.ActionItem) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]*model.ActionItem, len(items))
	for i, it := range items {
		c := *it
		cp[i] = &c
	}
	m.store[documentID] = cp
	return nil
}

func (m *memActionItemRepo) DeleteForDocument(ctx context.Context, tx repository.Tx, documentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, documentID)
	return nil
}

func (m *memActionItemRepo) ListByDocument(ctx context.Context, tx repository.Tx, documentID string, status string) ([]*model.ActionItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.ActionItem
	for _, it := range m.store[documentID] {
		if status != "" && string(it.Status) != status {
			continue
		}
		c := *it
		out = append(out, &c)
	}
	return out, nil
}

func (m *memActionItemRepo) Update(ctx context.Context, tx repository.Tx, itemID, userID string, status *model.ActionStatus, notes *string) (*model.ActionItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, items := range m.store {
		for _, it := range items {
			if it.ID != itemID {
				continue
			}
			if status != nil {
				it.Status = *status
			}
			if notes != nil {
				it.Notes = notes
			}
			it.UpdatedAt = time.Now()
			c := *it
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

// memTxManager runs the callback without a real transaction; rollback
// semantics are covered by the postgres integration tests.
type memTxManager struct{}

func (memTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, nil)
}

// memStorage is an in-memory FileStorage.
type memStorage struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newMemStorage() *memStorage { return &memStorage{files: make(map[string][]byte)} }

func (m *memStorage) Write(ctx context.Context, userID, documentID, filename, mimetype string, data []byte) (*adapter.StoredFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path := "mem://" + userID + "/" + documentID + "-" + filename
	m.files[path] = data
	return &adapter.StoredFile{Path: path, OriginalFilename: filename, Mimetype: mimetype, SizeBytes: int64(len(data))}, nil
}

func (m *memStorage) Read(ctx context.Context, path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return data, nil
}

// fakeTextExtractor returns canned text or an error.
type fakeTextExtractor struct {
	text string
	err  error
}

func (f *fakeTextExtractor) Extract(ctx context.Context, data []byte, mimetype, language string) (string, error) {
	return f.text, f.err
}

// fakeStructuredExtractor records inputs and replays a scripted result.
type fakeStructuredExtractor struct {
	mu     sync.Mutex
	inputs []string
	res    *model.ExtractionResult
	err    error
}

func (f *fakeStructuredExtractor) Extract(ctx context.Context, text, lang string) (*model.ExtractionResult, error) {
	f.mu.Lock()
	f.inputs = append(f.inputs, text)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.res, nil
}

// memNotifier records notifications.
type memNotifier struct {
	mu        sync.Mutex
	processed []string // document ids
	failed    []string
}

func (m *memNotifier) NotifyProcessed(ctx context.Context, userID, documentID, summary string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.processed = append(m.processed, documentID)
	return nil
}

func (m *memNotifier) NotifyFailed(ctx context.Context, userID, documentID, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed = append(m.failed, documentID)
	return nil
}
