package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"paperhulp/internal/domain"
	"paperhulp/internal/domain/model"
)

// Document is the wire shape of a document. Derived fields stay null until
// the job reaches DONE.
type Document struct {
	ID               string    `json:"id"`
	OriginalFilename string    `json:"original_filename"`
	Mimetype         string    `json:"mimetype"`
	Language         string    `json:"language"`
	ExtractedText    *string   `json:"extracted_text"`
	DocType          *string   `json:"doc_type"`
	Sender           *string   `json:"sender"`
	AmountEUR        *float64  `json:"amount_eur"`
	Deadline         *string   `json:"deadline"`
	Summary          *string   `json:"summary"`
	Confidence       *int      `json:"confidence"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type Job struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	Status     string    `json:"status"`
	Error      *string   `json:"error"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type ActionItem struct {
	ID          string    `json:"id"`
	DocumentID  string    `json:"document_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Deadline    *string   `json:"deadline"`
	Status      string    `json:"status"`
	Notes       *string   `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toDocument(d *model.Document) Document {
	out := Document{
		ID:               d.ID,
		OriginalFilename: d.OriginalFilename,
		Mimetype:         d.Mimetype,
		Language:         d.Language,
		ExtractedText:    d.ExtractedText,
		Sender:           d.Sender,
		Summary:          d.Summary,
		Confidence:       d.Confidence,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
	if d.DocType != nil {
		s := string(*d.DocType)
		out.DocType = &s
	}
	if d.Amount != nil {
		f := d.Amount.InexactFloat64()
		out.AmountEUR = &f
	}
	if d.Deadline != nil {
		s := d.Deadline.Format("2006-01-02")
		out.Deadline = &s
	}
	return out
}

func toJob(j *model.ProcessingJob) Job {
	return Job{
		ID:         j.ID,
		DocumentID: j.DocumentID,
		Status:     string(j.Status),
		Error:      j.Error,
		CreatedAt:  j.CreatedAt,
		UpdatedAt:  j.UpdatedAt,
	}
}

func toActionItem(it *model.ActionItem) ActionItem {
	out := ActionItem{
		ID:          it.ID,
		DocumentID:  it.DocumentID,
		Title:       it.Title,
		Description: it.Description,
		Status:      string(it.Status),
		Notes:       it.Notes,
		CreatedAt:   it.CreatedAt,
		UpdatedAt:   it.UpdatedAt,
	}
	if it.Deadline != nil {
		s := it.Deadline.Format("2006-01-02")
		out.Deadline = &s
	}
	return out
}

func toActionItems(items []*model.ActionItem) []ActionItem {
	out := make([]ActionItem, 0, len(items))
	for _, it := range items {
		out = append(out, toActionItem(it))
	}
	return out
}

func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorMessage(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// writeError maps domain errors onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	var vErr *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeErrorMessage(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrUnauthorized):
		writeErrorMessage(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrRetryNotAllowed), errors.Is(err, domain.ErrAlreadyExists):
		writeErrorMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrUnsupportedMediaType):
		writeErrorMessage(w, http.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, domain.ErrInvalidArgument), errors.As(err, &vErr):
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
	default:
		writeErrorMessage(w, http.StatusInternalServerError, "internal error")
	}
}
