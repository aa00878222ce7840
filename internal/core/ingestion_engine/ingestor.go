package ingestion_engine

import "context"

type Ingestor interface {
	Start(ctx context.Context, numWorkers int)
	Enqueue(docID string)
	Ingest(ctx context.Context, req IngestRequest) (*IngestResult, error)
	Summarize(ctx context.Context, chunks []string) (string, error)
}

var _ Ingestor = (*DocumentIngestor)(nil)
