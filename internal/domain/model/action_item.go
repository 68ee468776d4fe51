package model

import (
	"time"

	"github.com/google/uuid"
)

type ActionStatus string

const (
	ActionStatusOpen ActionStatus = "OPEN"
	ActionStatusDone ActionStatus = "DONE"
)

// ActionItem is a discrete task derived from a document ("pay by date X").
// The full set for a document is replaced wholesale on every successful
// extraction; user notes and completion state do not survive a reprocess.
type ActionItem struct {
	ID          string
	DocumentID  string
	Title       string
	Description string
	Deadline    *time.Time // calendar date, midnight UTC
	Status      ActionStatus
	Notes       *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func NewActionItem(documentID, title, description string, deadline *time.Time) *ActionItem {
	now := time.Now()
	return &ActionItem{
		ID:          uuid.NewString(),
		DocumentID:  documentID,
		Title:       title,
		Description: description,
		Deadline:    deadline,
		Status:      ActionStatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
