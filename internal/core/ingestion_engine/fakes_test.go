package ingestion_engine

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/markdave123-py/scipaper/internal/models"
)

// memStore is a test double for the vector index, text store, summary store
// and document tracker.
type memStore struct {
	mu         sync.Mutex
	vectors    map[string]models.VectorRecord
	chunks     map[string]models.DocumentChunk
	summaries  map[string]string
	docs       map[string]*models.Document
	upserts    int
	upsertErr  error
	putErr     error
	summaryErr error
	// honorCtx makes status writes fail on a done context, like a real driver.
	honorCtx bool
}

func newMemStore() *memStore {
	return &memStore{
		vectors:   make(map[string]models.VectorRecord),
		chunks:    make(map[string]models.DocumentChunk),
		summaries: make(map[string]string),
		docs:      make(map[string]*models.Document),
	}
}

func (m *memStore) UpsertVectors(_ context.Context, records []models.VectorRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserts++
	for _, r := range records {
		m.vectors[r.ID] = r
	}
	return nil
}

func (m *memStore) QueryVectors(_ context.Context, _ []float32, _ int, _ []string) ([]models.VectorMatch, error) {
	return nil, nil
}

func (m *memStore) PutChunks(_ context.Context, chunks []models.DocumentChunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	for _, c := range chunks {
		m.chunks[c.ID] = c
	}
	return nil
}

func (m *memStore) GetChunks(_ context.Context, ids []string) (map[string]models.DocumentChunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]models.DocumentChunk)
	for _, id := range ids {
		if c, ok := m.chunks[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

func (m *memStore) ListChunks(_ context.Context, documentID string) ([]models.DocumentChunk, error) {
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

func (m *memStore) PutSummary(_ context.Context, paperID, summary string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.summaryErr != nil {
		return m.summaryErr
	}
	m.summaries[paperID] = summary
	return nil
}

func (m *memStore) GetSummary(_ context.Context, paperID string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.summaries[paperID]
	return s, ok, nil
}

func (m *memStore) GetDocumentByID(_ context.Context, id string) (*models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.docs[id], nil
}

func (m *memStore) UpdateDocumentStatus(ctx context.Context, id string, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.honorCtx && ctx.Err() != nil {
		return ctx.Err()
	}
	d, ok := m.docs[id]
	if !ok {
		return errors.New("document not found: " + id)
	}
	d.Status = status
	return nil
}

func (m *memStore) status(id string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.docs[id]; ok {
		return d.Status
	}
	return ""
}

func (m *memStore) vectorIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.vectors))
	for id := range m.vectors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (m *memStore) chunkIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.chunks))
	for id := range m.chunks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// fakeEmbedder returns a one-dimensional vector holding each text's length.
// With block set it waits for ctx to end instead.
type fakeEmbedder struct {
	mu      sync.Mutex
	calls   [][]string
	err     error
	dropOne bool
	block   bool
}

func (f *fakeEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, texts)
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for k, t := range texts {
		out[k] = []float32{float32(len(t))}
	}
	if f.dropOne && len(out) > 0 {
		out = out[1:]
	}
	return out, nil
}

// fakeLLM records prompt parts and answers with a fixed reply.
type fakeLLM struct {
	mu     sync.Mutex
	reply  string
	err    error
	prompt [][]string
}

func (f *fakeLLM) Generate(_ context.Context, _ string, parts ...string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompt = append(f.prompt, parts)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

// fakeExtractor returns text verbatim or a fixed error.
type fakeExtractor struct {
	err error
}

func (f *fakeExtractor) ExtractText(_ context.Context, data []byte, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	kept, _ := TruncateReferences(string(data), DefaultReferencePolicy())
	return kept, nil
}

// fakeObjects serves fixed bytes by key.
type fakeObjects struct {
	files map[string][]byte
}

func (f *fakeObjects) UploadFile(_ context.Context, key string, data []byte, _ string) (string, error) {
	f.files[key] = data
	return "https://bucket.s3.us-east-2.amazonaws.com/" + key, nil
}

func (f *fakeObjects) GetFile(_ context.Context, key string) ([]byte, error) {
	data, ok := f.files[key]
	if !ok {
		return nil, errors.New("no such key: " + key)
	}
	return data, nil
}

// fakePages is a test double for PageReader.
type fakePages struct {
	pages []string
	err   error
}

func (f fakePages) ReadPages(_ []byte) ([]string, error) {
	return f.pages, f.err
}
