package core

import (
	"context"

	"github.com/markdave123-py/scipaper/internal/models"
)

// VectorIndex stores chunk embeddings keyed by composite chunk id.
type VectorIndex interface {
	UpsertVectors(ctx context.Context, records []models.VectorRecord) error
	// QueryVectors returns the topK nearest ids. An empty documentIDs slice
	// searches every document.
	QueryVectors(ctx context.Context, vec []float32, topK int, documentIDs []string) ([]models.VectorMatch, error)
}

// TextStore keeps chunk text keyed by composite chunk id.
type TextStore interface {
	PutChunks(ctx context.Context, chunks []models.DocumentChunk) error
	// GetChunks omits ids that are not stored.
	GetChunks(ctx context.Context, ids []string) (map[string]models.DocumentChunk, error)
	ListChunks(ctx context.Context, documentID string) ([]models.DocumentChunk, error)
}

// SummaryStore keeps one summary per paper; PutSummary overwrites.
type SummaryStore interface {
	PutSummary(ctx context.Context, paperID, summary string) error
	GetSummary(ctx context.Context, paperID string) (summary string, found bool, err error)
}

// ChatStore persists per-session chat history.
type ChatStore interface {
	SaveMessage(ctx context.Context, msg *models.ChatMessage) error
	// RecentMessages returns up to limit of the newest messages, oldest first.
	RecentMessages(ctx context.Context, sessionID string, limit int) ([]models.ChatMessage, error)
}

// DbClient defines all persistence operations your services will need.
// It abstracts Postgres/pgvector so higher layers never depend on a specific DB.
type DbClient interface {
	VectorIndex
	TextStore
	SummaryStore
	ChatStore

	CreateUser(ctx context.Context, user *models.User) (err error)
	GetUserByEmail(ctx context.Context, email string) (user *models.User, err error)
	ListUsers(ctx context.Context) ([]models.User, error)

	CreateDocument(ctx context.Context, doc *models.Document) error
	GetDocumentByID(ctx context.Context, id string) (*models.Document, error)
	ListDocumentsByUser(ctx context.Context, userID string) ([]models.Document, error)
	UpdateDocumentStatus(ctx context.Context, id string, status string) error

	Close() error
}

// ObjectClient defines interactions with S3 or any object storage.
type ObjectClient interface {
	UploadFile(ctx context.Context, key string, data []byte, contentType string) (url string, err error)
	GetFile(ctx context.Context, key string) ([]byte, error)
}
