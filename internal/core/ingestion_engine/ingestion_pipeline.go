package ingestion_engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/markdave123-py/scipaper/internal/core"
	"github.com/markdave123-py/scipaper/internal/models"
)

// Ingestion outcomes.
const (
	StatusIndexed   = "indexed"
	StatusNoContent = "no_content"
)

const summaryPrompt = "You are summarizing a scientific paper for researchers. " +
	"Provide a concise summary that captures main contributions and methods."

// queuedTimeout bounds one background ingestion.
const queuedTimeout = 5 * time.Minute

// statusTimeout bounds the status write after a failed job.
const statusTimeout = 5 * time.Second

// IngestRequest carries one document. Text, when set, is used as is and Data
// is ignored.
type IngestRequest struct {
	DocumentID  string
	Data        []byte
	ContentType string
	Text        string
}

// IngestResult is what ingestion hands back to callers.
type IngestResult struct {
	DocumentID string `json:"paper_id"`
	Summary    string `json:"summary"`
	Chunks     int    `json:"chunks"`
	Status     string `json:"status"`
}

// DocumentTracker is the slice of the document table the job queue needs.
type DocumentTracker interface {
	GetDocumentByID(ctx context.Context, id string) (*models.Document, error)
	UpdateDocumentStatus(ctx context.Context, id string, status string) error
}

// Collaborators are the process-scoped clients ingestion talks to.
// Documents and Objects are only needed by the background queue.
type Collaborators struct {
	Vectors   core.VectorIndex
	Texts     core.TextStore
	Summaries core.SummaryStore
	Embedder  core.EmbeddingProvider
	LLM       core.LLMProvider
	Extractor core.DocumentExtractor
	Documents DocumentTracker
	Objects   core.ObjectClient
}

// DocumentIngestor orchestrates ingestion:
//
// vectors:   vector index for chunk embeddings.
// texts:     chunk text store keyed by composite id.
// summaries: per-paper summary store.
// embedder:  embedding provider (Gemini).
// llm:       generation provider used for summaries.
// extractor: bytes to text.
// cfg:       runtime tuning knobs for the pipeline.
// jobs:      in-memory queue of document IDs to process.
type DocumentIngestor struct {
	vectors   core.VectorIndex
	texts     core.TextStore
	summaries core.SummaryStore
	embedder  core.EmbeddingProvider
	llm       core.LLMProvider
	extractor core.DocumentExtractor
	docs      DocumentTracker
	obj       core.ObjectClient
	cfg       *IngestConfig
	jobs      chan string
}

// NewDocumentIngestor validates the configuration and builds the ingestor
// with a bounded job queue.
func NewDocumentIngestor(c Collaborators, cfg *IngestConfig) (*DocumentIngestor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch {
	case c.Vectors == nil:
		return nil, fmt.Errorf("%w: vector index is required", core.ErrInvalidConfig)
	case c.Texts == nil:
		return nil, fmt.Errorf("%w: text store is required", core.ErrInvalidConfig)
	case c.Summaries == nil:
		return nil, fmt.Errorf("%w: summary store is required", core.ErrInvalidConfig)
	case c.Embedder == nil:
		return nil, fmt.Errorf("%w: embedding provider is required", core.ErrInvalidConfig)
	case c.LLM == nil:
		return nil, fmt.Errorf("%w: generation provider is required", core.ErrInvalidConfig)
	case c.Extractor == nil:
		return nil, fmt.Errorf("%w: extractor is required", core.ErrInvalidConfig)
	}

	return &DocumentIngestor{
		vectors:   c.Vectors,
		texts:     c.Texts,
		summaries: c.Summaries,
		embedder:  c.Embedder,
		llm:       c.LLM,
		extractor: c.Extractor,
		docs:      c.Documents,
		obj:       c.Objects,
		cfg:       cfg,
		jobs:      make(chan string, cfg.QueueSize),
	}, nil
}

// Ingest extracts, chunks, embeds, stores and summarizes one document.
// Provider failures are returned wrapped with the failing stage; batches
// already written stay written and are overwritten on retry.
func (i *DocumentIngestor) Ingest(ctx context.Context, req IngestRequest) (*IngestResult, error) {
	docID := req.DocumentID
	if docID == "" {
		docID = uuid.NewString()
	}

	text := req.Text
	if text == "" && len(req.Data) > 0 {
		extracted, err := i.extractor.ExtractText(ctx, req.Data, req.ContentType)
		if err != nil {
			return nil, fmt.Errorf("extract %s: %w", docID, err)
		}
		text = extracted
	}

	chunks, err := ChunkText(text, i.cfg.ChunkSize, i.cfg.ChunkOverlap)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		log.Printf("DocumentIngestor: document %s has no content", docID)
		return &IngestResult{DocumentID: docID, Status: StatusNoContent}, nil
	}

	if err := i.embedAndUpsert(ctx, docID, chunks); err != nil {
		return nil, err
	}

	if err := i.persistChunks(ctx, docID, chunks); err != nil {
		return nil, err
	}

	summary, err := i.Summarize(ctx, chunks)
	if err != nil {
		return nil, err
	}
	if err := i.summaries.PutSummary(ctx, docID, summary); err != nil {
		return nil, fmt.Errorf("persist summary: %w", err)
	}

	log.Printf("DocumentIngestor: document %s indexed with %d chunks", docID, len(chunks))
	return &IngestResult{DocumentID: docID, Summary: summary, Chunks: len(chunks), Status: StatusIndexed}, nil
}

// embedAndUpsert embeds chunks in batches and writes each batch's vectors in
// one upsert. Up to EmbedConcurrency batches run at once.
func (i *DocumentIngestor) embedAndUpsert(ctx context.Context, docID string, chunks []string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.cfg.EmbedConcurrency)

	for start := 0; start < len(chunks); start += i.cfg.BatchSize {
		end := min(start+i.cfg.BatchSize, len(chunks))
		batch := chunks[start:end]
		offset := start
		g.Go(func() error {
			return i.embedBatch(gctx, docID, offset, batch)
		})
	}
	return g.Wait()
}

func (i *DocumentIngestor) embedBatch(ctx context.Context, docID string, start int, batch []string) error {
	vecs, err := i.embedder.EmbedTexts(ctx, batch)
	if err != nil {
		return fmt.Errorf("embed batch at %d: %w", start, err)
	}
	if len(vecs) != len(batch) {
		return fmt.Errorf("embed size mismatch: got %d want %d", len(vecs), len(batch))
	}

	ids := AssignIDs(docID, start, len(batch))
	records := make([]models.VectorRecord, len(batch))
	for k := range batch {
		records[k] = models.VectorRecord{ID: ids[k], DocumentID: docID, Embedding: vecs[k]}
	}
	if err := i.vectors.UpsertVectors(ctx, records); err != nil {
		return fmt.Errorf("upsert vectors at %d: %w", start, err)
	}
	return nil
}

func (i *DocumentIngestor) persistChunks(ctx context.Context, docID string, chunks []string) error {
	rows := make([]models.DocumentChunk, len(chunks))
	for k, text := range chunks {
		rows[k] = models.DocumentChunk{
			ID:         ChunkID(docID, k),
			DocumentID: docID,
			Position:   k,
			Text:       text,
		}
	}
	if err := i.texts.PutChunks(ctx, rows); err != nil {
		return fmt.Errorf("persist chunks: %w", err)
	}
	return nil
}

// Summarize asks the generation provider for a summary of the leading chunks.
func (i *DocumentIngestor) Summarize(ctx context.Context, chunks []string) (string, error) {
	n := min(len(chunks), i.cfg.SummaryChunks)
	if n == 0 {
		return "", nil
	}

	parts := make([]string, 0, n+1)
	parts = append(parts, summaryPrompt)
	for _, c := range chunks[:n] {
		parts = append(parts, truncateChars(c, i.cfg.SummaryChunkChars))
	}

	summary, err := i.llm.Generate(ctx, "", parts...)
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	return summary, nil
}

// Start runs numWorkers goroutines reading from the jobs channel.
func (i *DocumentIngestor) Start(ctx context.Context, numWorkers int) {
	for w := 1; w <= numWorkers; w++ {
		go func(w int) {
			for {
				select {
				case <-ctx.Done():
					log.Println("DocumentIngestor: Worker shutting down.")
					return
				case docID := <-i.jobs:
					log.Printf("DocumentIngestor: Processing document %s by worker with ID %d", docID, w)

					if err := i.processOne(ctx, docID); err != nil {
						log.Printf("DocumentIngestor: Error processing document %s: %v", docID, err)
					}
				}
			}
		}(w)
	}
}

// Enqueue schedules a document ID for ingestion.
// If the queue is full, this call will block until space frees up.
func (i *DocumentIngestor) Enqueue(docID string) {
	i.jobs <- docID
}

// processOne downloads a stored upload and ingests it under its document ID.
func (i *DocumentIngestor) processOne(ctx context.Context, docID string) error {
	if i.docs == nil || i.obj == nil {
		return errors.New("background ingestion needs document and object stores")
	}

	proctx, cancel := context.WithTimeout(ctx, queuedTimeout)
	defer cancel()

	doc, err := i.docs.GetDocumentByID(proctx, docID)
	if err != nil {
		return fmt.Errorf("load document %s: %w", docID, err)
	}
	if doc == nil {
		return fmt.Errorf("document %s: %w", docID, core.ErrNotFound)
	}

	if err := i.docs.UpdateDocumentStatus(proctx, docID, models.StatusProcessing); err != nil {
		log.Printf("DocumentIngestor: could not mark document %s processing: %v", docID, err)
	}

	_, key := parseS3URL(doc.StorageURL)
	data, err := i.obj.GetFile(proctx, key)
	if err != nil {
		i.markFailed(ctx, docID)
		return fmt.Errorf("get object: %w", err)
	}

	if _, err := i.Ingest(proctx, IngestRequest{DocumentID: docID, Data: data, ContentType: doc.ContentType}); err != nil {
		i.markFailed(ctx, docID)
		return err
	}

	return i.docs.UpdateDocumentStatus(proctx, docID, models.StatusReady)
}

// markFailed records a failed job even when the job's context is already done.
func (i *DocumentIngestor) markFailed(ctx context.Context, docID string) {
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), statusTimeout)
	defer cancel()
	if err := i.docs.UpdateDocumentStatus(sctx, docID, models.StatusFailed); err != nil {
		log.Printf("DocumentIngestor: could not mark document %s failed: %v", docID, err)
	}
}

// parseS3URL extracts the bucket and key from a typical virtual-hosted–style S3 URL.
// Example: https://my-bucket.s3.us-east-2.amazonaws.com/path/to/file.pdf
func parseS3URL(u string) (bucket, key string) {
	hostPath := strings.SplitN(strings.TrimPrefix(u, "https://"), "/", 2)
	host := hostPath[0]
	if len(hostPath) == 2 {
		key = hostPath[1]
	}
	parts := strings.Split(host, ".")
	if len(parts) > 0 {
		bucket = parts[0]
	}
	return bucket, key
}

// truncateChars keeps at most n characters of s.
func truncateChars(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
