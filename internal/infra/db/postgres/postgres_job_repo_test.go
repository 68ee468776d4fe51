//go:build integration

package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"paperhulp/internal/domain"
	"paperhulp/internal/domain/model"
)

func seedDocumentWithJob(t *testing.T) (*model.Document, *model.ProcessingJob) {
	t.Helper()
	ctx := context.Background()
	docRepo := NewDocumentRepo(testPool)
	jobRepo := NewJobRepo(testPool)

	doc := model.NewDocument("user-1", "uploads/user-1/letter.pdf", "letter.pdf", "application/pdf", "nl")
	if err := docRepo.Save(ctx, nil, doc); err != nil {
		t.Fatalf("save document: %v", err)
	}
	job := model.NewProcessingJob(doc.ID)
	if err := jobRepo.Save(ctx, nil, job); err != nil {
		t.Fatalf("save job: %v", err)
	}
	return doc, job
}

func TestJobRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}
	ctx := context.Background()
	repo := NewJobRepo(testPool)

	t.Run("claim succeeds once and flips status", func(t *testing.T) {
		cleanup(t)
		_, job := seedDocumentWithJob(t)

		if err := repo.Claim(ctx, job.ID); err != nil {
			t.Fatalf("first claim: %v", err)
		}
		got, err := repo.FindByID(ctx, nil, job.ID)
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if got.Status != model.JobStatusProcessing {
			t.Errorf("status after claim: %s", got.Status)
		}

		if err := repo.Claim(ctx, job.ID); !errors.Is(err, domain.ErrClaimConflict) {
			t.Errorf("second claim should conflict, got %v", err)
		}
	})

	t.Run("concurrent claims let exactly one worker through", func(t *testing.T) {
		cleanup(t)
		_, job := seedDocumentWithJob(t)

		const workers = 8
		var wg sync.WaitGroup
		results := make(chan error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results <- repo.Claim(ctx, job.ID)
			}()
		}
		wg.Wait()
		close(results)

		var wins, conflicts int
		for err := range results {
			switch {
			case err == nil:
				wins++
			case errors.Is(err, domain.ErrClaimConflict):
				conflicts++
			default:
				t.Fatalf("unexpected claim error: %v", err)
			}
		}
		if wins != 1 || conflicts != workers-1 {
			t.Errorf("wins=%d conflicts=%d", wins, conflicts)
		}
	})

	t.Run("claim clears a stale error message", func(t *testing.T) {
		cleanup(t)
		_, job := seedDocumentWithJob(t)

		if err := repo.MarkFailed(ctx, job.ID, "boom"); err != nil {
			t.Fatalf("mark failed: %v", err)
		}
		if err := repo.Reset(ctx, nil, job.ID); err != nil {
			t.Fatalf("reset: %v", err)
		}
		if err := repo.Claim(ctx, job.ID); err != nil {
			t.Fatalf("claim: %v", err)
		}
		got, _ := repo.FindByID(ctx, nil, job.ID)
		if got.Error != nil {
			t.Errorf("error should be cleared on claim, got %q", *got.Error)
		}
	})

	t.Run("next pending returns oldest first", func(t *testing.T) {
		cleanup(t)
		_, first := seedDocumentWithJob(t)
		time.Sleep(10 * time.Millisecond)
		seedDocumentWithJob(t)

		got, err := repo.NextPending(ctx)
		if err != nil {
			t.Fatalf("next pending: %v", err)
		}
		if got.ID != first.ID {
			t.Errorf("expected oldest job %s, got %s", first.ID, got.ID)
		}
	})

	t.Run("next pending on empty queue", func(t *testing.T) {
		cleanup(t)
		if _, err := repo.NextPending(ctx); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("reset stale sweeps only old processing jobs", func(t *testing.T) {
		cleanup(t)
		_, stale := seedDocumentWithJob(t)
		_, fresh := seedDocumentWithJob(t)

		if err := repo.Claim(ctx, stale.ID); err != nil {
			t.Fatalf("claim stale: %v", err)
		}
		if err := repo.Claim(ctx, fresh.ID); err != nil {
			t.Fatalf("claim fresh: %v", err)
		}
		// backdate the stale job
		if _, err := testPool.Exec(ctx,
			`UPDATE processing_jobs SET updated_at = now() - interval '1 hour' WHERE id = $1`, stale.ID); err != nil {
			t.Fatalf("backdate: %v", err)
		}

		n, err := repo.ResetStale(ctx, time.Now().Add(-30*time.Minute))
		if err != nil {
			t.Fatalf("reset stale: %v", err)
		}
		if n != 1 {
			t.Errorf("expected 1 swept job, got %d", n)
		}
		got, _ := repo.FindByID(ctx, nil, stale.ID)
		if got.Status != model.JobStatusPending {
			t.Errorf("stale job status: %s", got.Status)
		}
		got, _ = repo.FindByID(ctx, nil, fresh.ID)
		if got.Status != model.JobStatusProcessing {
			t.Errorf("fresh job should stay PROCESSING, got %s", got.Status)
		}
	})

	t.Run("list by user orders by updated_at desc", func(t *testing.T) {
		cleanup(t)
		_, first := seedDocumentWithJob(t)
		_, second := seedDocumentWithJob(t)

		if err := repo.MarkFailed(ctx, first.ID, "late update"); err != nil {
			t.Fatalf("mark failed: %v", err)
		}

		jobs, err := repo.ListByUser(ctx, nil, "user-1", 50)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(jobs) != 2 {
			t.Fatalf("expected 2 jobs, got %d", len(jobs))
		}
		if jobs[0].ID != first.ID || jobs[1].ID != second.ID {
			t.Errorf("order wrong: %s, %s", jobs[0].ID, jobs[1].ID)
		}
	})
}
