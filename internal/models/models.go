package models

import (
	"time"
)

// Document status values.
const (
	StatusUploaded   = "uploaded"
	StatusProcessing = "processing"
	StatusReady      = "ready"
	StatusFailed     = "failed"
)

// Chat roles.
const (
	RoleUser      = "user"
	RoleAssistant = "ai"
)

// User represents an authenticated user of the system.
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	Role         string    `db:"role" json:"role"` // student | admin
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Document represents an uploaded or fetched paper.
type Document struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	FileName    string    `db:"file_name" json:"file_name"`
	StorageURL  string    `db:"storage_url" json:"storage_url"` // S3 URL or original link
	SourceType  string    `db:"source_type" json:"source_type"` // "upload" or "url"
	ContentType string    `db:"content_type" json:"content_type"`
	Status      string    `db:"status" json:"status"` // uploaded | processing | ready | failed
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// DocumentChunk is one stored text window of a paper. ID is the composite
// "{document_id}-{position}" key shared with the vector index.
type DocumentChunk struct {
	ID         string    `db:"id" json:"id"`
	DocumentID string    `db:"document_id" json:"document_id"`
	Position   int       `db:"position" json:"position"`
	Text       string    `db:"text" json:"text"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// VectorRecord is one entry written to the vector index.
type VectorRecord struct {
	ID         string
	DocumentID string
	Embedding  []float32
}

// VectorMatch is one vector index hit, ordered by decreasing relevance.
type VectorMatch struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// ChatMessage represents an individual chat message (user or assistant).
type ChatMessage struct {
	ID        string    `db:"id" json:"id"`
	SessionID string    `db:"session_id" json:"session_id"`
	Role      string    `db:"role" json:"role"`       // "user" or "ai"
	Content   string    `db:"content" json:"content"` // message text
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
