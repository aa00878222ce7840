package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/markdave123-py/scipaper/internal/core/ingestion_engine"
	"github.com/markdave123-py/scipaper/internal/core/paperrec"
	"github.com/markdave123-py/scipaper/internal/models"
)

// memDB is an in-memory stand-in for the Postgres client.
type memDB struct {
	mu        sync.Mutex
	users     map[string]models.User
	docs      map[string]*models.Document
	chunks    map[string]models.DocumentChunk
	summaries map[string]string
	messages  []models.ChatMessage
	matches   []models.VectorMatch
	queried   struct {
		topK int
		ids  []string
	}
	createErr error
}

func newMemDB() *memDB {
	return &memDB{
		users:     map[string]models.User{},
		docs:      map[string]*models.Document{},
		chunks:    map[string]models.DocumentChunk{},
		summaries: map[string]string{},
	}
}

func (m *memDB) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.Email] = *u
	return nil
}

func (m *memDB) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *memDB) ListUsers(_ context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Email < out[b].Email })
	return out, nil
}

func (m *memDB) CreateDocument(_ context.Context, d *models.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	cp := *d
	m.docs[d.ID] = &cp
	return nil
}

func (m *memDB) GetDocumentByID(_ context.Context, id string) (*models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (m *memDB) ListDocumentsByUser(_ context.Context, userID string) ([]models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Document
	for _, d := range m.docs {
		if d.UserID == userID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (m *memDB) UpdateDocumentStatus(_ context.Context, id, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok {
		return errors.New("no document " + id)
	}
	d.Status = status
	return nil
}

func (m *memDB) status(id string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.docs[id]; ok {
		return d.Status
	}
	return ""
}

func (m *memDB) UpsertVectors(context.Context, []models.VectorRecord) error { return nil }

func (m *memDB) QueryVectors(_ context.Context, _ []float32, topK int, ids []string) ([]models.VectorMatch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queried.topK = topK
	m.queried.ids = ids
	return m.matches, nil
}

func (m *memDB) PutChunks(_ context.Context, chunks []models.DocumentChunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range chunks {
		m.chunks[c.ID] = c
	}
	return nil
}

func (m *memDB) GetChunks(_ context.Context, ids []string) (map[string]models.DocumentChunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]models.DocumentChunk{}
	for _, id := range ids {
		if c, ok := m.chunks[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

func (m *memDB) ListChunks(_ context.Context, documentID string) ([]models.DocumentChunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.DocumentChunk
	for _, c := range m.chunks {
		if c.DocumentID == documentID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Position < out[b].Position })
	return out, nil
}

func (m *memDB) PutSummary(_ context.Context, id, s string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaries[id] = s
	return nil
}

func (m *memDB) GetSummary(_ context.Context, id string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.summaries[id]
	return s, ok, nil
}

func (m *memDB) SaveMessage(_ context.Context, msg *models.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, *msg)
	return nil
}

func (m *memDB) RecentMessages(_ context.Context, sessionID string, limit int) ([]models.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []models.ChatMessage
	for _, msg := range m.messages {
		if msg.SessionID == sessionID {
			all = append(all, msg)
		}
	}
	if len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all, nil
}

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for k := range texts {
		out[k] = []float32{1, 0}
	}
	return out, nil
}

type fakeLLM struct {
	mu     sync.Mutex
	reply  string
	err    error
	prompt []string
}

func (f *fakeLLM) Generate(_ context.Context, _ string, parts ...string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompt = append(f.prompt, strings.Join(parts, "\n"))
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

// fakeIngestor records work and stores one chunk per ingested document.
type fakeIngestor struct {
	mu        sync.Mutex
	db        *memDB
	ingested  []string
	enqueued  []string
	ingestErr map[string]error
	failAll   error
	summary   string
	summarize [][]string
}

func (f *fakeIngestor) Start(context.Context, int) {}

func (f *fakeIngestor) Enqueue(docID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enqueued = append(f.enqueued, docID)
}

func (f *fakeIngestor) Ingest(ctx context.Context, req ingestion_engine.IngestRequest) (*ingestion_engine.IngestResult, error) {
	f.mu.Lock()
	f.ingested = append(f.ingested, req.DocumentID)
	err := f.ingestErr[req.DocumentID]
	if f.failAll != nil {
		err = f.failAll
	}
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if f.db != nil {
		_ = f.db.PutChunks(ctx, []models.DocumentChunk{{
			ID:         ingestion_engine.ChunkID(req.DocumentID, 0),
			DocumentID: req.DocumentID,
			Text:       "body of " + req.DocumentID,
		}})
	}
	return &ingestion_engine.IngestResult{DocumentID: req.DocumentID, Summary: "summary", Chunks: 1, Status: ingestion_engine.StatusIndexed}, nil
}

func (f *fakeIngestor) Summarize(_ context.Context, chunks []string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summarize = append(f.summarize, chunks)
	return f.summary, nil
}

func (f *fakeIngestor) ingestedSorted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]string(nil), f.ingested...)
	sort.Strings(out)
	return out
}

type fakeSource struct {
	enabled    bool
	neighbours map[string][]paperrec.Neighbor
	searchErr  error
	files      map[string][]byte
	mu         sync.Mutex
	downloads  []string
}

func (f *fakeSource) Enabled() bool { return f.enabled }

func (f *fakeSource) Search(_ context.Context, url string, _ int) ([]paperrec.Neighbor, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.neighbours[url], nil
}

func (f *fakeSource) Download(_ context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	f.downloads = append(f.downloads, url)
	f.mu.Unlock()
	data, ok := f.files[url]
	if !ok {
		return nil, errors.New("404 " + url)
	}
	return data, nil
}

type fakeObjects struct {
	mu    sync.Mutex
	files map[string][]byte
	err   error
}

func (f *fakeObjects) UploadFile(_ context.Context, key string, data []byte, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[key] = data
	return "https://bucket.s3.us-east-2.amazonaws.com/" + key, nil
}

func (f *fakeObjects) GetFile(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.files[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return data, nil
}
