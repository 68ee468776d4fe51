package adapter

import "context"

// Notifier pushes a short processing-outcome message to the document owner.
// Implementations must be safe to call from worker goroutines; delivery is
// best-effort and never fails a job.
type Notifier interface {
	NotifyProcessed(ctx context.Context, userID, documentID, summary string) error
	NotifyFailed(ctx context.Context, userID, documentID, reason string) error
}
