//go:build !integration

package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"paperhulp/internal/domain"
	"paperhulp/internal/domain/model"
	"paperhulp/internal/domain/ports/repository"
	"paperhulp/internal/usecase"
)

type documentDeps struct {
	docs    *memDocumentRepo
	jobs    *memJobRepo
	items   *memActionItemRepo
	storage *memStorage
	uc      usecase.DocumentUseCase
}

func newDocumentDeps(processor usecase.ProcessUseCase) *documentDeps {
	docs := newMemDocumentRepo()
	d := &documentDeps{
		docs:    docs,
		jobs:    newMemJobRepo(docs),
		items:   newMemActionItemRepo(),
		storage: newMemStorage(),
	}
	d.uc = usecase.NewDocumentUseCase(d.docs, d.jobs, d.items, memTxManager{}, d.storage, processor, newTestLogger())
	return d
}

func TestDocumentUseCase_Upload(t *testing.T) {
	ctx := context.Background()
	payload := []byte("%PDF-1.4 fake")

	t.Run("should store the file and create the document with a pending job", func(t *testing.T) {
		deps := newDocumentDeps(nil)

		doc, job, err := deps.uc.Upload(ctx, "user-1", "aanslag.pdf", "application/pdf", "nl", payload)
		if err != nil {
			t.Fatalf("Upload: %v", err)
		}
		if doc.FilePath == "" {
			t.Fatal("document has no storage path")
		}
		if job.Status != model.JobStatusPending {
			t.Errorf("job status = %s, want PENDING", job.Status)
		}
		if job.DocumentID != doc.ID {
			t.Errorf("job document = %s, want %s", job.DocumentID, doc.ID)
		}

		data, err := deps.storage.Read(ctx, doc.FilePath)
		if err != nil {
			t.Fatalf("read stored file: %v", err)
		}
		if !bytes.Equal(data, payload) {
			t.Error("stored bytes differ from the upload")
		}

		if _, err := deps.docs.FindByID(ctx, nil, doc.ID); err != nil {
			t.Errorf("document not persisted: %v", err)
		}
		if _, err := deps.jobs.FindByID(ctx, nil, job.ID); err != nil {
			t.Errorf("job not persisted: %v", err)
		}
	})

	t.Run("should fall back to Dutch for an unsupported language", func(t *testing.T) {
		deps := newDocumentDeps(nil)

		doc, _, err := deps.uc.Upload(ctx, "user-1", "brief.jpg", "image/jpeg", "de", payload)
		if err != nil {
			t.Fatalf("Upload: %v", err)
		}
		if doc.Language != "nl" {
			t.Errorf("language = %s, want nl", doc.Language)
		}
	})

	t.Run("should trigger immediate processing when a processor is wired", func(t *testing.T) {
		proc := newProcessorStub()
		deps := newDocumentDeps(proc)

		_, job, err := deps.uc.Upload(ctx, "user-1", "brief.jpg", "image/jpeg", "nl", payload)
		if err != nil {
			t.Fatalf("Upload: %v", err)
		}
		select {
		case id := <-proc.triggered:
			if id != job.ID {
				t.Errorf("triggered job = %s, want %s", id, job.ID)
			}
		case <-time.After(time.Second):
			t.Fatal("processor was never triggered")
		}
	})
}

func TestDocumentUseCase_Get(t *testing.T) {
	ctx := context.Background()
	deps := newDocumentDeps(nil)

	doc, job, err := deps.uc.Upload(ctx, "user-1", "aanslag.pdf", "application/pdf", "nl", []byte("x"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	item := model.NewActionItem(doc.ID, "Betaal", "Maak het bedrag over.", nil)
	if err := deps.items.ReplaceForDocument(ctx, nil, doc.ID, []*model.ActionItem{item}); err != nil {
		t.Fatalf("seed items: %v", err)
	}

	t.Run("should return the document with items and job", func(t *testing.T) {
		gotDoc, gotItems, gotJob, err := deps.uc.Get(ctx, "user-1", doc.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if gotDoc.ID != doc.ID {
			t.Errorf("doc = %s, want %s", gotDoc.ID, doc.ID)
		}
		if len(gotItems) != 1 {
			t.Errorf("items = %d, want 1", len(gotItems))
		}
		if gotJob.ID != job.ID {
			t.Errorf("job = %s, want %s", gotJob.ID, job.ID)
		}
	})

	t.Run("should hide other users' documents", func(t *testing.T) {
		if _, _, _, err := deps.uc.Get(ctx, "user-2", doc.ID); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestDocumentUseCase_List(t *testing.T) {
	ctx := context.Background()
	deps := newDocumentDeps(nil)

	docA, _, _ := deps.uc.Upload(ctx, "user-1", "boete-cjib.pdf", "application/pdf", "nl", []byte("x"))
	deps.uc.Upload(ctx, "user-1", "polis.pdf", "application/pdf", "nl", []byte("x"))
	deps.uc.Upload(ctx, "user-2", "andere.pdf", "application/pdf", "nl", []byte("x"))

	all, err := deps.uc.List(ctx, "user-1", repository.DocumentFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("documents = %d, want 2", len(all))
	}

	matched, err := deps.uc.List(ctx, "user-1", repository.DocumentFilter{Query: "cjib"})
	if err != nil {
		t.Fatalf("List with query: %v", err)
	}
	if len(matched) != 1 || matched[0].ID != docA.ID {
		t.Errorf("query match = %v, want only %s", matched, docA.ID)
	}
}

func TestDocumentUseCase_UpdateActionItem(t *testing.T) {
	ctx := context.Background()
	deps := newDocumentDeps(nil)

	doc, _, _ := deps.uc.Upload(ctx, "user-1", "boete.pdf", "application/pdf", "nl", []byte("x"))
	item := model.NewActionItem(doc.ID, "Betaal", "Maak het bedrag over.", nil)
	if err := deps.items.ReplaceForDocument(ctx, nil, doc.ID, []*model.ActionItem{item}); err != nil {
		t.Fatalf("seed items: %v", err)
	}

	done := model.ActionStatusDone
	notes := "betaald via iDEAL"
	updated, err := deps.uc.UpdateActionItem(ctx, "user-1", item.ID, &done, &notes)
	if err != nil {
		t.Fatalf("UpdateActionItem: %v", err)
	}
	if updated.Status != model.ActionStatusDone {
		t.Errorf("status = %s, want DONE", updated.Status)
	}
	if updated.Notes == nil || *updated.Notes != notes {
		t.Errorf("notes = %v, want %q", updated.Notes, notes)
	}

	if _, err := deps.uc.UpdateActionItem(ctx, "user-1", "missing", &done, nil); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
