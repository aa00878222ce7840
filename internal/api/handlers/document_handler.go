package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	middleware "github.com/markdave123-py/scipaper/internal/api/middlewares"
	"github.com/markdave123-py/scipaper/internal/core"
	"github.com/markdave123-py/scipaper/internal/models"
	"github.com/markdave123-py/scipaper/internal/services"
)

// maxUploadBytes bounds one uploaded paper.
const maxUploadBytes = 50 << 20

// Papers is the document service as seen by the paper endpoints.
type Papers interface {
	Upload(ctx context.Context, userID, filename, contentType string, data []byte) (*services.UploadResult, error)
	Queue(ctx context.Context, userID, filename, contentType string, data []byte) (*models.Document, error)
	ListByUser(ctx context.Context, userID string) ([]models.Document, error)
	Summary(ctx context.Context, paperID string) (string, error)
}

// Analyzer expands and ingests a URL corpus.
type Analyzer interface {
	Analyze(ctx context.Context, urls []string) (*services.AnalyzeResult, error)
}

type DocumentHandler struct {
	papers   Papers
	analyzer Analyzer
}

func NewDocumentHandler(papers Papers, analyzer Analyzer) *DocumentHandler {
	return &DocumentHandler{papers: papers, analyzer: analyzer}
}

// UploadDocument ingests a multipart "file". With ?async=true the paper is
// queued and 202 is returned.
func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+(1<<20))
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "invalid file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !services.AcceptsUpload(contentType) {
		http.Error(w, "Only PDF uploads are supported.", http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		http.Error(w, "invalid file", http.StatusBadRequest)
		return
	}
	if len(data) > maxUploadBytes {
		http.Error(w, fmt.Sprintf("file larger than %d bytes", maxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	if async, _ := strconv.ParseBool(r.URL.Query().Get("async")); async {
		doc, err := h.papers.Queue(r.Context(), userID, header.Filename, contentType, data)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, doc)
		return
	}

	res, err := h.papers.Upload(r.Context(), userID, header.Filename, contentType, data)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *DocumentHandler) GetDocuments(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "user_id not found in context", http.StatusUnauthorized)
		return
	}

	documents, err := h.papers.ListByUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	if documents == nil {
		documents = []models.Document{}
	}
	writeJSON(w, http.StatusOK, documents)
}

func (h *DocumentHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	paperID := chi.URLParam(r, "paperID")

	summary, err := h.papers.Summary(r.Context(), paperID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			http.Error(w, "Summary not found", http.StatusNotFound)
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"paper_id": paperID, "summary": summary})
}

type analyzeRequest struct {
	URLs []string `json:"urls"`
}

func (h *DocumentHandler) AnalyzeURLs(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.analyzer.Analyze(r.Context(), req.URLs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
