package services

import (
	"context"
	"fmt"
	"log"
	"mime"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/markdave123-py/scipaper/internal/core"
	"github.com/markdave123-py/scipaper/internal/core/ingestion_engine"
	"github.com/markdave123-py/scipaper/internal/models"
)

// DocumentStore is the document table.
type DocumentStore interface {
	CreateDocument(ctx context.Context, doc *models.Document) error
	GetDocumentByID(ctx context.Context, id string) (*models.Document, error)
	ListDocumentsByUser(ctx context.Context, userID string) ([]models.Document, error)
	UpdateDocumentStatus(ctx context.Context, id string, status string) error
}

// UploadResult is returned for a synchronously ingested upload.
type UploadResult struct {
	PaperID    string `json:"paper_id"`
	Summary    string `json:"summary"`
	StorageURL string `json:"storage_url,omitempty"`
	Chunks     int    `json:"chunks"`
	Status     string `json:"status"`
}

type DocumentService struct {
	db        DocumentStore
	storage   core.ObjectClient
	ingestor  ingestion_engine.Ingestor
	summaries core.SummaryStore
}

// NewDocumentService builds the service; storage may be nil, in which case
// uploads are not archived and cannot be queued.
func NewDocumentService(db DocumentStore, storage core.ObjectClient, ing ingestion_engine.Ingestor, summaries core.SummaryStore) *DocumentService {
	return &DocumentService{db: db, storage: storage, ingestor: ing, summaries: summaries}
}

// AcceptsUpload reports whether contentType may be uploaded.
func AcceptsUpload(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/pdf" || mt == "application/octet-stream"
}

// Upload archives the file when storage is configured, records the document
// and ingests it before returning.
func (s *DocumentService) Upload(ctx context.Context, userID, filename, contentType string, data []byte) (*UploadResult, error) {
	doc, err := s.create(ctx, userID, filename, contentType, data, models.StatusProcessing)
	if err != nil {
		return nil, err
	}

	res, err := s.ingestor.Ingest(ctx, ingestion_engine.IngestRequest{
		DocumentID:  doc.ID,
		Data:        data,
		ContentType: contentType,
	})
	if err != nil {
		s.setStatus(ctx, doc.ID, models.StatusFailed)
		return nil, err
	}
	s.setStatus(ctx, doc.ID, models.StatusReady)

	return &UploadResult{
		PaperID:    res.DocumentID,
		Summary:    res.Summary,
		StorageURL: doc.StorageURL,
		Chunks:     res.Chunks,
		Status:     res.Status,
	}, nil
}

// Queue archives the file and hands it to the background workers.
func (s *DocumentService) Queue(ctx context.Context, userID, filename, contentType string, data []byte) (*models.Document, error) {
	if s.storage == nil {
		return nil, fmt.Errorf("%w: background ingestion needs object storage", core.ErrInvalidInput)
	}
	doc, err := s.create(ctx, userID, filename, contentType, data, models.StatusUploaded)
	if err != nil {
		return nil, err
	}
	s.ingestor.Enqueue(doc.ID)
	return doc, nil
}

func (s *DocumentService) create(ctx context.Context, userID, filename, contentType string, data []byte, status string) (*models.Document, error) {
	if !AcceptsUpload(contentType) {
		return nil, fmt.Errorf("%w: only PDF uploads are supported", core.ErrInvalidInput)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", core.ErrInvalidInput)
	}

	doc := &models.Document{
		ID:          uuid.NewString(),
		UserID:      userID,
		FileName:    cleanFilename(filename),
		SourceType:  "upload",
		ContentType: contentType,
		Status:      status,
	}

	if s.storage != nil {
		url, err := s.storage.UploadFile(ctx, ObjectKey(doc.ID), data, contentType)
		if err != nil {
			return nil, err
		}
		doc.StorageURL = url
	}

	if err := s.db.CreateDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("store document metadata: %w", err)
	}
	return doc, nil
}

func (s *DocumentService) setStatus(ctx context.Context, id, status string) {
	if err := s.db.UpdateDocumentStatus(ctx, id, status); err != nil {
		log.Printf("DocumentService: could not set status %s on %s: %v", status, id, err)
	}
}

func (s *DocumentService) Get(ctx context.Context, id string) (*models.Document, error) {
	doc, err := s.db.GetDocumentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("document %s: %w", id, core.ErrNotFound)
	}
	return doc, nil
}

func (s *DocumentService) ListByUser(ctx context.Context, userID string) ([]models.Document, error) {
	return s.db.ListDocumentsByUser(ctx, userID)
}

// Summary returns the stored summary of a paper.
func (s *DocumentService) Summary(ctx context.Context, paperID string) (string, error) {
	summary, found, err := s.summaries.GetSummary(ctx, paperID)
	if err != nil {
		return "", err
	}
	if !found {
		return "", fmt.Errorf("summary for %s: %w", paperID, core.ErrNotFound)
	}
	return summary, nil
}

// ObjectKey is where an upload is archived.
func ObjectKey(docID string) string {
	return "papers/" + docID + ".pdf"
}

// cleanFilename drops any path components and spaces.
func cleanFilename(filename string) string {
	filename = filepath.Base(strings.TrimSpace(filename))
	if filename == "." || filename == string(filepath.Separator) {
		return ""
	}
	return strings.ReplaceAll(filename, " ", "_")
}
