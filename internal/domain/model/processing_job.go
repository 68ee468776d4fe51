package model

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

// Stable wire strings; stored verbatim in the database and returned by the API.
const (
	JobStatusPending    JobStatus = "PENDING"
	JobStatusProcessing JobStatus = "PROCESSING"
	JobStatusDone       JobStatus = "DONE"
	JobStatusFailed     JobStatus = "FAILED"
)

// ProcessingJob tracks one document's trip through the pipeline. Exactly one
// exists per document. Transitions: PENDING→PROCESSING via the atomic claim,
// PROCESSING→DONE inside the persistence transaction, PROCESSING→FAILED on a
// fatal pipeline error, and anything-but-DONE→PENDING via retry.
type ProcessingJob struct {
	ID         string
	DocumentID string
	Status     JobStatus
	Error      *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func NewProcessingJob(documentID string) *ProcessingJob {
	now := time.Now()
	return &ProcessingJob{
		ID:         uuid.NewString(),
		DocumentID: documentID,
		Status:     JobStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Terminal reports whether the job finished its current attempt.
func (j *ProcessingJob) Terminal() bool {
	return j.Status == JobStatusDone || j.Status == JobStatusFailed
}
