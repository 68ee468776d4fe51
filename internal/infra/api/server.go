package api

import (
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"paperhulp/internal/config"
	"paperhulp/internal/domain"
	"paperhulp/internal/domain/model"
	"paperhulp/internal/domain/ports/repository"
	"paperhulp/internal/infra/logging"
	"paperhulp/internal/usecase"
)

const maxUploadBytes = 20 << 20 // hard cap per file

// Server exposes the document API.
type Server struct {
	docs   usecase.DocumentUseCase
	retry  usecase.RetryUseCase
	auth   config.AuthConfig
	logger *zerolog.Logger
}

func NewServer(docs usecase.DocumentUseCase, retry usecase.RetryUseCase, auth config.AuthConfig, logger *zerolog.Logger) *Server {
	return &Server{docs: docs, retry: retry, auth: auth, logger: logger}
}

// RegisterRoutes attaches all routes and middleware to the router.
func (s *Server) RegisterRoutes(r *chi.Mux) {
	r.Use(TraceID())
	r.Use(Recover(s.logger))
	r.Use(RequestLog(s.logger))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(Auth(s.auth))
		r.Use(Timeout(60 * time.Second))

		r.Post("/documents", s.handleUpload)
		r.Get("/documents", s.handleListDocuments)
		r.Get("/documents/{documentID}", s.handleGetDocument)
		r.Post("/documents/{documentID}/retry", s.handleRetry)
		r.Get("/jobs", s.handleListJobs)
		r.Patch("/action-items/{itemID}", s.handleUpdateActionItem)
		r.Post("/action-items/{itemID}/done", s.handleCompleteActionItem)
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	userID := logging.UserID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "could not read upload")
		return
	}

	mimetype := header.Header.Get("Content-Type")
	if mt, _, err := mime.ParseMediaType(mimetype); err == nil {
		mimetype = mt
	}
	if mimetype == "" || mimetype == "application/octet-stream" {
		mimetype = http.DetectContentType(data)
	}
	if mimetype != "application/pdf" && !strings.HasPrefix(mimetype, "image/") {
		writeError(w, domain.ErrUnsupportedMediaType)
		return
	}

	doc, job, err := s.docs.Upload(r.Context(), userID, header.Filename, mimetype, r.FormValue("language"), data)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, struct {
		Document Document `json:"document"`
		Job      Job      `json:"job"`
	}{toDocument(doc), toJob(job)})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.DocumentFilter{
		Query: q.Get("q"),
	}
	if t := q.Get("type"); t != "" {
		if !model.ValidDocType(t) {
			writeErrorMessage(w, http.StatusBadRequest, "unknown document type")
			return
		}
		filter.DocType = t
	}
	if a := q.Get("action"); a != "" {
		if a != string(model.ActionStatusOpen) && a != string(model.ActionStatusDone) {
			writeErrorMessage(w, http.StatusBadRequest, "unknown action status")
			return
		}
		filter.ActionStatus = a
	}
	if l, err := strconv.Atoi(q.Get("limit")); err == nil && l > 0 {
		filter.Limit = l
	}

	docs, err := s.docs.List(r.Context(), logging.UserID(r.Context()), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]Document, 0, len(docs))
	for _, d := range docs {
		out = append(out, toDocument(d))
	}
	writeJSON(w, http.StatusOK, struct {
		Items []Document `json:"items"`
	}{out})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, items, job, err := s.docs.Get(r.Context(), logging.UserID(r.Context()), chi.URLParam(r, "documentID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Document    Document     `json:"document"`
		ActionItems []ActionItem `json:"action_items"`
		Job         Job          `json:"job"`
	}{toDocument(doc), toActionItems(items), toJob(job)})
}

func (s *Server) handleRetry(w http.ResponseWriter, r *http.Request) {
	documentID := chi.URLParam(r, "documentID")
	if err := s.retry.Retry(r.Context(), logging.UserID(r.Context()), documentID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	jobs, err := s.docs.ListJobs(r.Context(), logging.UserID(r.Context()), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]Job, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, toJob(j))
	}
	writeJSON(w, http.StatusOK, struct {
		Items []Job `json:"items"`
	}{out})
}

type actionItemPatch struct {
	Status *string `json:"status"`
	Notes  *string `json:"notes"`
}

func (s *Server) handleUpdateActionItem(w http.ResponseWriter, r *http.Request) {
	var req actionItemPatch
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Status == nil && req.Notes == nil {
		writeErrorMessage(w, http.StatusBadRequest, "nothing to update")
		return
	}
	var status *model.ActionStatus
	if req.Status != nil {
		if *req.Status != string(model.ActionStatusOpen) && *req.Status != string(model.ActionStatusDone) {
			writeErrorMessage(w, http.StatusBadRequest, "unknown action status")
			return
		}
		st := model.ActionStatus(*req.Status)
		status = &st
	}

	item, err := s.docs.UpdateActionItem(r.Context(), logging.UserID(r.Context()), chi.URLParam(r, "itemID"), status, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toActionItem(item))
}

func (s *Server) handleCompleteActionItem(w http.ResponseWriter, r *http.Request) {
	done := model.ActionStatusDone
	item, err := s.docs.UpdateActionItem(r.Context(), logging.UserID(r.Context()), chi.URLParam(r, "itemID"), &done, nil)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toActionItem(item))
}
