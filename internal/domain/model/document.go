package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DocType string

const (
	DocTypeBelasting   DocType = "BELASTING"
	DocTypeBoete       DocType = "BOETE"
	DocTypeVerzekering DocType = "VERZEKERING"
	DocTypeAbonnement  DocType = "ABONNEMENT"
	DocTypeOverig      DocType = "OVERIG"
)

// DocTypes lists the closed document taxonomy in wire order.
var DocTypes = []DocType{DocTypeBelasting, DocTypeBoete, DocTypeVerzekering, DocTypeAbonnement, DocTypeOverig}

func ValidDocType(s string) bool {
	for _, t := range DocTypes {
		if string(t) == s {
			return true
		}
	}
	return false
}

// Document is one uploaded administrative letter. The derived fields
// (DocType .. ExtractedText) are nil until its job reaches DONE and are
// reset to nil again on retry.
type Document struct {
	ID               string
	UserID           string
	FilePath         string
	OriginalFilename string
	Mimetype         string
	Language         string // "nl" unless the uploader chose otherwise

	ExtractedText *string
	DocType       *DocType
	Sender        *string
	Amount        *decimal.Decimal
	Deadline      *time.Time // calendar date, stored as midnight UTC
	Summary       *string
	Confidence    *int

	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewDocument(userID, filePath, originalFilename, mimetype, language string) *Document {
	if language == "" {
		language = "nl"
	}
	now := time.Now()
	return &Document{
		ID:               uuid.NewString(),
		UserID:           userID,
		FilePath:         filePath,
		OriginalFilename: originalFilename,
		Mimetype:         mimetype,
		Language:         language,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// Processed reports whether the derived fields have been filled in.
func (d *Document) Processed() bool { return d.DocType != nil }
